package models

import (
	"encoding/json"
	"time"
)

// BackupType различает ручные и автоматические резервные копии.
type BackupType string

const (
	BackupManual    BackupType = "manual"
	BackupAutomatic BackupType = "automatic"
)

// Backup представляет снимок всех коллекций на момент времени.
// Data хранится сырым JSON, чтобы восстановление не зависело от текущих моделей.
type Backup struct {
	ID        string                     `json:"id"`
	Timestamp time.Time                  `json:"timestamp"`
	User      string                     `json:"user"`
	Type      BackupType                 `json:"type"`
	Data      map[string]json.RawMessage `json:"data"`
	Size      int                        `json:"size"`
}

// SyncSettings представляет настройки автоматического резервирования
// и выгрузки во внешнее хранилище.
type SyncSettings struct {
	AutoBackup     bool       `json:"auto_backup"`
	BackupInterval string     `json:"backup_interval"`
	RemoteEnabled  bool       `json:"remote_enabled"`
	LastBackup     *time.Time `json:"last_backup,omitempty"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
}
