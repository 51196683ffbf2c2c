package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/Dosada05/club-system/storage"
	"github.com/google/uuid"
)

// Имена коллекций в снимке и при экспорте.
const (
	CollectionMembers   = "members"
	CollectionPayments  = "payments"
	CollectionSessions  = "training_sessions"
	CollectionEquipment = "equipment"
	CollectionLoans     = "equipment_loans"
	CollectionMessages  = "messages"
)

type BackupService interface {
	CreateBackup(ctx context.Context, user string, backupType models.BackupType) (*models.Backup, error)
	RestoreBackup(ctx context.Context, backupID string) error
	GetBackupHistory(ctx context.Context) ([]models.Backup, error)
	ExportCollection(ctx context.Context, collection string) (json.RawMessage, error)
	ImportCollection(ctx context.Context, collection string, payload json.RawMessage) error
	GetSyncSettings(ctx context.Context) (models.SyncSettings, error)
	UpdateSyncSettings(ctx context.Context, settings models.SyncSettings) error
}

type backupService struct {
	backupRepo    repositories.BackupRepository
	memberRepo    repositories.MemberRepository
	paymentRepo   repositories.PaymentRepository
	sessionRepo   repositories.SessionRepository
	equipmentRepo repositories.EquipmentRepository
	loanRepo      repositories.LoanRepository
	messageRepo   repositories.MessageRepository
	uploader      storage.FileUploader
	now           func() time.Time
}

// NewBackupService создаёт сервис резервных копий. uploader может быть nil,
// тогда снимки хранятся только локально.
func NewBackupService(
	backupRepo repositories.BackupRepository,
	memberRepo repositories.MemberRepository,
	paymentRepo repositories.PaymentRepository,
	sessionRepo repositories.SessionRepository,
	equipmentRepo repositories.EquipmentRepository,
	loanRepo repositories.LoanRepository,
	messageRepo repositories.MessageRepository,
	uploader storage.FileUploader,
) BackupService {
	return &backupService{
		backupRepo:    backupRepo,
		memberRepo:    memberRepo,
		paymentRepo:   paymentRepo,
		sessionRepo:   sessionRepo,
		equipmentRepo: equipmentRepo,
		loanRepo:      loanRepo,
		messageRepo:   messageRepo,
		uploader:      uploader,
		now:           time.Now,
	}
}

func (s *backupService) snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage, 6)

	collect := func(name string, load func() (interface{}, error)) error {
		items, err := load()
		if err != nil {
			return fmt.Errorf("failed to snapshot %s: %w", name, err)
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("failed to marshal %s snapshot: %w", name, err)
		}
		data[name] = raw
		return nil
	}

	if err := collect(CollectionMembers, func() (interface{}, error) { return s.memberRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	if err := collect(CollectionPayments, func() (interface{}, error) { return s.paymentRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	if err := collect(CollectionSessions, func() (interface{}, error) { return s.sessionRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	if err := collect(CollectionEquipment, func() (interface{}, error) { return s.equipmentRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	if err := collect(CollectionLoans, func() (interface{}, error) { return s.loanRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	if err := collect(CollectionMessages, func() (interface{}, error) { return s.messageRepo.GetAll(ctx) }); err != nil {
		return nil, err
	}
	return data, nil
}

// CreateBackup снимает все коллекции, пишет снимок в историю и, если
// настроена выгрузка, отправляет его во внешнее хранилище.
func (s *backupService) CreateBackup(ctx context.Context, user string, backupType models.BackupType) (*models.Backup, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	size := 0
	for _, raw := range data {
		size += len(raw)
	}

	backup := &models.Backup{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		User:      user,
		Type:      backupType,
		Data:      data,
		Size:      size,
	}
	if err := s.backupRepo.AppendHistory(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to store backup: %w", err)
	}

	settings, err := s.backupRepo.GetSyncSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync settings: %w", err)
	}

	now := s.now()
	settings.LastBackup = &now

	if settings.RemoteEnabled && s.uploader != nil {
		payload, err := json.Marshal(backup)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal backup for upload: %w", err)
		}
		key := fmt.Sprintf("backups/%s/%s.json", backup.Timestamp.Format("2006-01-02"), backup.ID)
		if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
			return nil, fmt.Errorf("failed to upload backup %s: %w", backup.ID, err)
		}
		settings.LastSync = &now
	}

	if err := s.backupRepo.SaveSyncSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save sync settings: %w", err)
	}
	return backup, nil
}

// RestoreBackup заменяет содержимое всех коллекций данными снимка.
// Коллекции, отсутствующие в снимке, не трогаются.
func (s *backupService) RestoreBackup(ctx context.Context, backupID string) error {
	backup, err := s.backupRepo.GetByID(ctx, backupID)
	if err != nil {
		if errors.Is(err, repositories.ErrBackupNotFound) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to get backup %s: %w", backupID, err)
	}

	if raw, ok := backup.Data[CollectionMembers]; ok {
		var members []models.Member
		if err := json.Unmarshal(raw, &members); err != nil {
			return fmt.Errorf("%w: members: %v", ErrInvalidImportPayload, err)
		}
		if err := s.memberRepo.ReplaceAll(ctx, members); err != nil {
			return fmt.Errorf("failed to restore members: %w", err)
		}
	}
	if raw, ok := backup.Data[CollectionPayments]; ok {
		var payments []models.Payment
		if err := json.Unmarshal(raw, &payments); err != nil {
			return fmt.Errorf("%w: payments: %v", ErrInvalidImportPayload, err)
		}
		if err := s.paymentRepo.ReplaceAll(ctx, payments); err != nil {
			return fmt.Errorf("failed to restore payments: %w", err)
		}
	}
	if raw, ok := backup.Data[CollectionSessions]; ok {
		var sessions []models.TrainingSession
		if err := json.Unmarshal(raw, &sessions); err != nil {
			return fmt.Errorf("%w: training sessions: %v", ErrInvalidImportPayload, err)
		}
		if err := s.sessionRepo.ReplaceAll(ctx, sessions); err != nil {
			return fmt.Errorf("failed to restore training sessions: %w", err)
		}
	}
	if raw, ok := backup.Data[CollectionEquipment]; ok {
		var equipment []models.Equipment
		if err := json.Unmarshal(raw, &equipment); err != nil {
			return fmt.Errorf("%w: equipment: %v", ErrInvalidImportPayload, err)
		}
		if err := s.equipmentRepo.ReplaceAll(ctx, equipment); err != nil {
			return fmt.Errorf("failed to restore equipment: %w", err)
		}
	}
	if raw, ok := backup.Data[CollectionLoans]; ok {
		var loans []models.EquipmentLoan
		if err := json.Unmarshal(raw, &loans); err != nil {
			return fmt.Errorf("%w: equipment loans: %v", ErrInvalidImportPayload, err)
		}
		if err := s.loanRepo.ReplaceAll(ctx, loans); err != nil {
			return fmt.Errorf("failed to restore equipment loans: %w", err)
		}
	}
	if raw, ok := backup.Data[CollectionMessages]; ok {
		var messages []models.Message
		if err := json.Unmarshal(raw, &messages); err != nil {
			return fmt.Errorf("%w: messages: %v", ErrInvalidImportPayload, err)
		}
		if err := s.messageRepo.ReplaceAll(ctx, messages); err != nil {
			return fmt.Errorf("failed to restore messages: %w", err)
		}
	}
	return nil
}

func (s *backupService) GetBackupHistory(ctx context.Context) ([]models.Backup, error) {
	history, err := s.backupRepo.GetHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get backup history: %w", err)
	}
	return history, nil
}

// ExportCollection возвращает одну коллекцию сырым JSON-массивом.
func (s *backupService) ExportCollection(ctx context.Context, collection string) (json.RawMessage, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := data[collection]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", ErrInvalidImportPayload, collection)
	}
	return raw, nil
}

// ImportCollection заменяет коллекцию данными из payload. Неразбираемый
// payload отклоняется до каких-либо изменений.
func (s *backupService) ImportCollection(ctx context.Context, collection string, payload json.RawMessage) error {
	switch collection {
	case CollectionMembers:
		var members []models.Member
		if err := json.Unmarshal(payload, &members); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.memberRepo.ReplaceAll(ctx, members); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import members: %w", err)
		}
	case CollectionPayments:
		var payments []models.Payment
		if err := json.Unmarshal(payload, &payments); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.paymentRepo.ReplaceAll(ctx, payments); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import payments: %w", err)
		}
	case CollectionSessions:
		var sessions []models.TrainingSession
		if err := json.Unmarshal(payload, &sessions); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.sessionRepo.ReplaceAll(ctx, sessions); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import training sessions: %w", err)
		}
	case CollectionEquipment:
		var equipment []models.Equipment
		if err := json.Unmarshal(payload, &equipment); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.equipmentRepo.ReplaceAll(ctx, equipment); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import equipment: %w", err)
		}
	case CollectionLoans:
		var loans []models.EquipmentLoan
		if err := json.Unmarshal(payload, &loans); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.loanRepo.ReplaceAll(ctx, loans); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import equipment loans: %w", err)
		}
	case CollectionMessages:
		var messages []models.Message
		if err := json.Unmarshal(payload, &messages); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
		}
		if err := s.messageRepo.ReplaceAll(ctx, messages); err != nil {
			if errors.Is(err, repositories.ErrMalformedState) {
				return fmt.Errorf("%w: %v", ErrInvalidImportPayload, err)
			}
			return fmt.Errorf("failed to import messages: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown collection %q", ErrInvalidImportPayload, collection)
	}
	return nil
}

func (s *backupService) GetSyncSettings(ctx context.Context) (models.SyncSettings, error) {
	settings, err := s.backupRepo.GetSyncSettings(ctx)
	if err != nil {
		return models.SyncSettings{}, fmt.Errorf("failed to get sync settings: %w", err)
	}
	return settings, nil
}

func (s *backupService) UpdateSyncSettings(ctx context.Context, settings models.SyncSettings) error {
	if settings.BackupInterval != "" {
		if _, err := time.ParseDuration(settings.BackupInterval); err != nil {
			v := newValidationError()
			v.add("backup_interval", "backup interval must be a valid duration")
			return v
		}
	}
	if err := s.backupRepo.SaveSyncSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save sync settings: %w", err)
	}
	return nil
}
