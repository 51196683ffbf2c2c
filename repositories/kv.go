package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrKeyNotFound    = errors.New("storage key not found")
	ErrMalformedState = errors.New("malformed persisted state")
)

// Ключи хранилища. Каждая коллекция живёт под собственным ключом
// и перезаписывается целиком при каждой мутации (last-writer-wins).
const (
	KeyMembers       = "club_members"
	KeyPayments      = "club_payments"
	KeySessions      = "club_training_sessions"
	KeyEquipment     = "club_equipment"
	KeyLoans         = "club_equipment_loans"
	KeyMessages      = "club_messages"
	KeyUsers         = "club_users"
	KeyBackupHistory = "club_backup_history"
	KeySyncSettings  = "club_sync_settings"
)

// KeyValueStore - порт персистентности: именованный ключ -> один JSON-документ.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type postgresKeyValueStore struct {
	db *sql.DB
}

func NewPostgresKeyValueStore(db *sql.DB) KeyValueStore {
	return &postgresKeyValueStore{db: db}
}

func (s *postgresKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM club_state WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return value, nil
}

func (s *postgresKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO club_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	return nil
}
