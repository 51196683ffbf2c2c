package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrBackupNotFound = errors.New("backup not found")

type BackupRepository interface {
	Load(ctx context.Context) error
	AppendHistory(ctx context.Context, backup *models.Backup) error
	GetByID(ctx context.Context, id string) (*models.Backup, error)
	GetHistory(ctx context.Context) ([]models.Backup, error)
	GetSyncSettings(ctx context.Context) (models.SyncSettings, error)
	SaveSyncSettings(ctx context.Context, settings models.SyncSettings) error
}

type backupRepository struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	history  []models.Backup
	settings models.SyncSettings
}

// NewBackupRepository создаёт репозиторий истории резервных копий
// с настройками синхронизации по умолчанию.
func NewBackupRepository(kv KeyValueStore) BackupRepository {
	return &backupRepository{
		kv:      kv,
		history: []models.Backup{},
		settings: models.SyncSettings{
			AutoBackup:     true,
			BackupInterval: "24h",
		},
	}
}

func (r *backupRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var history []models.Backup
	if err := loadList(ctx, r.kv, KeyBackupHistory, &history); err != nil {
		return err
	}
	for i := range history {
		if history[i].ID == "" {
			return fmt.Errorf("%w: key %q: backup record without id", ErrMalformedState, KeyBackupHistory)
		}
	}
	if history != nil {
		r.history = history
	}

	raw, err := r.kv.Get(ctx, KeySyncSettings)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil
		}
		return err
	}
	var settings models.SyncSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeySyncSettings, err)
	}
	r.settings = settings
	return nil
}

func (r *backupRepository) AppendHistory(ctx context.Context, backup *models.Backup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, *backup)
	if err := saveList(ctx, r.kv, KeyBackupHistory, r.history); err != nil {
		r.history = r.history[:len(r.history)-1]
		return err
	}
	return nil
}

func (r *backupRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.history {
		if r.history[i].ID == id {
			backup := r.history[i]
			return &backup, nil
		}
	}
	return nil, ErrBackupNotFound
}

func (r *backupRepository) GetHistory(ctx context.Context) ([]models.Backup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Backup, len(r.history))
	copy(result, r.history)
	return result, nil
}

func (r *backupRepository) GetSyncSettings(ctx context.Context) (models.SyncSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

func (r *backupRepository) SaveSyncSettings(ctx context.Context, settings models.SyncSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal sync settings: %w", err)
	}
	if err := r.kv.Put(ctx, KeySyncSettings, raw); err != nil {
		return err
	}
	r.settings = settings
	return nil
}
