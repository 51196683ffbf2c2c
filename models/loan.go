package models

import "time"

// LoanStatus представляет статусы выдачи инвентаря. Просрочка не хранится
// отдельным статусом, она выводится сравнением дат (IsOverdue).
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// EquipmentLoan представляет выдачу инвентаря участнику.
// MemberName - кэшированное отображаемое имя на момент выдачи.
type EquipmentLoan struct {
	ID                 string     `json:"id"`
	EquipmentID        string     `json:"equipment_id"`
	MemberID           string     `json:"member_id"`
	MemberName         string     `json:"member_name"`
	Quantity           int        `json:"quantity"`
	LoanDate           time.Time  `json:"loan_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	Status             LoanStatus `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsOverdue сообщает, просрочен ли возврат на указанный момент времени.
func (l *EquipmentLoan) IsOverdue(now time.Time) bool {
	if l.Status != LoanActive {
		return false
	}
	return DateOnly(l.ExpectedReturnDate).Before(DateOnly(now))
}

// OverdueDays возвращает количество дней просрочки возврата, 0 для возвращённых.
func (l *EquipmentLoan) OverdueDays(now time.Time) int {
	if l.Status != LoanActive {
		return 0
	}
	diff := DateOnly(now).Sub(DateOnly(l.ExpectedReturnDate))
	if diff <= 0 {
		return 0
	}
	return int((diff + 24*time.Hour - 1) / (24 * time.Hour))
}
