package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus представляет статусы платежа.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Payment представляет месячный взнос участника.
type Payment struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// IsOverdue сообщает, просрочен ли платеж на указанный момент времени.
// Платёж, срок которого наступает сегодня, просроченным не считается.
func (p *Payment) IsOverdue(now time.Time) bool {
	if p.Status != PaymentPending && p.Status != PaymentOverdue {
		return false
	}
	return DateOnly(p.DueDate).Before(DateOnly(now))
}

// DaysOverdue возвращает количество дней просрочки.
// Определено только для pending/overdue, иначе 0.
func (p *Payment) DaysOverdue(now time.Time) int {
	if p.Status != PaymentPending && p.Status != PaymentOverdue {
		return 0
	}
	diff := DateOnly(now).Sub(DateOnly(p.DueDate))
	if diff <= 0 {
		return 0
	}
	return int((diff + 24*time.Hour - 1) / (24 * time.Hour))
}

// EffectiveStatus возвращает актуальный статус с учётом текущей даты,
// не полагаясь на возможно устаревшее сохранённое значение.
func (p *Payment) EffectiveStatus(now time.Time) PaymentStatus {
	if p.Status == PaymentPending && p.IsOverdue(now) {
		return PaymentOverdue
	}
	return p.Status
}

// DateOnly отбрасывает время, оставляя локальную календарную дату.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isValidPaymentTransition(current, next PaymentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[PaymentStatus][]PaymentStatus{
		PaymentPending:   {PaymentOverdue, PaymentPaid, PaymentCancelled},
		PaymentOverdue:   {PaymentPaid, PaymentCancelled},
		PaymentPaid:      {},
		PaymentCancelled: {PaymentPending},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода статуса платежа.
func (p *Payment) CanTransitionTo(next PaymentStatus) bool {
	return isValidPaymentTransition(p.Status, next)
}
