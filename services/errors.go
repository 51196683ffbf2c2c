package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")

	// Участники
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberEmailConflict = errors.New("member email is already in use")

	// Платежи
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentNotPayable       = errors.New("payment can only be paid from pending or overdue status")
	ErrPaymentNotCancellable   = errors.New("payment can only be cancelled from pending or overdue status")
	ErrPaymentNotReactivatable = errors.New("only a cancelled payment can be reactivated")

	// Тренировки
	ErrSessionNotFound         = errors.New("training session not found")
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")

	// Инвентарь и выдачи
	ErrEquipmentNotFound       = errors.New("equipment not found")
	ErrLoanNotFound            = errors.New("equipment loan not found")
	ErrInsufficientQuantity    = errors.New("requested quantity exceeds available quantity")
	ErrEquipmentHasActiveLoans = errors.New("equipment with active loans cannot be deleted")
	ErrQuantityBelowLoaned     = errors.New("quantity cannot be lower than the number of loaned items")

	// Сообщения
	ErrMessageNotFound = errors.New("message not found")

	// Учётные записи и доступ
	ErrUserNotFound           = errors.New("user not found")
	ErrUsernameConflict       = errors.New("username is already in use")
	ErrUserEmailConflict      = errors.New("user email is already in use")
	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive           = errors.New("user account is deactivated")
	ErrPermissionDenied       = errors.New("operation not allowed for the current user")

	// Резервные копии и импорт
	ErrBackupNotFound       = errors.New("backup not found")
	ErrInvalidImportPayload = errors.New("import payload has unexpected shape")
)
