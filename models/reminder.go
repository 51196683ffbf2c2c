package models

// ReminderType различает источники напоминаний.
type ReminderType string

const (
	ReminderPayment  ReminderType = "payment"
	ReminderTraining ReminderType = "training"
)

// ReminderLevel - срочность напоминания.
type ReminderLevel string

const (
	ReminderOverdue ReminderLevel = "overdue"
	ReminderDueSoon ReminderLevel = "due-soon"
	ReminderToday   ReminderLevel = "today"
)

// Reminder - производная запись движка напоминаний. Никогда не сохраняется,
// пересчитывается целиком при каждом запросе.
type Reminder struct {
	Type        ReminderType  `json:"type"`
	Level       ReminderLevel `json:"level"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Days        int           `json:"days,omitempty"`
}
