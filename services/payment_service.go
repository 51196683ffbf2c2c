package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dueDayOfMonth - число месяца, на которое назначается срок взноса.
const dueDayOfMonth = 5

type PaymentService interface {
	GenerateMonthlyPayments(ctx context.Context, referenceDate time.Time) ([]models.Payment, error)
	AddPayment(ctx context.Context, input AddPaymentInput) (*models.Payment, error)
	MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*models.Payment, error)
	Cancel(ctx context.Context, id string, reason string) (*models.Payment, error)
	Reactivate(ctx context.Context, id string) (*models.Payment, error)
	CheckOverduePayments(ctx context.Context) (int, error)
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	GetAllPayments(ctx context.Context) ([]models.Payment, error)
	GetPaymentsByMember(ctx context.Context, memberID string) ([]models.Payment, error)
	GetPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	GetOverduePayments(ctx context.Context) ([]models.Payment, error)
	GetFinancialStats(ctx context.Context) (*models.FinancialStats, error)
	GetMonthlyReport(ctx context.Context, month time.Month, year int) (*models.MonthlyReport, error)
}

type AddPaymentInput struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  time.Time       `json:"due_date"`
	Notes    string          `json:"notes"`
}

type MarkPaidInput struct {
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod *string    `json:"payment_method"`
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	memberRepo  repositories.MemberRepository
	now         func() time.Time
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, memberRepo repositories.MemberRepository) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		now:         time.Now,
	}
}

// GenerateMonthlyPayments создаёт недостающие взносы за месяц referenceDate.
// Генератор идемпотентен: участник, у которого за этот календарный месяц уже
// есть любой платёж кроме отменённого, пропускается. Повторный запуск в том же
// месяце ничего не создаёт.
func (s *paymentService) GenerateMonthlyPayments(ctx context.Context, referenceDate time.Time) ([]models.Payment, error) {
	members, err := s.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members for generation: %w", err)
	}
	existing, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments for generation: %w", err)
	}

	covered := make(map[string]bool, len(members))
	for i := range existing {
		p := &existing[i]
		if p.Status == models.PaymentCancelled {
			continue
		}
		if sameCalendarMonth(p.DueDate, referenceDate) {
			covered[p.MemberID] = true
		}
	}

	dueDate := time.Date(referenceDate.Year(), referenceDate.Month(), dueDayOfMonth, 0, 0, 0, 0, referenceDate.Location())
	now := s.now()

	var created []models.Payment
	for i := range members {
		member := &members[i]
		if covered[member.ID] {
			continue
		}
		created = append(created, models.Payment{
			ID:        uuid.NewString(),
			MemberID:  member.ID,
			Amount:    member.MonthlyFee,
			DueDate:   dueDate,
			Status:    models.PaymentPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.paymentRepo.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to store generated payments: %w", err)
	}
	return created, nil
}

func (s *paymentService) AddPayment(ctx context.Context, input AddPaymentInput) (*models.Payment, error) {
	v := newValidationError()
	if input.MemberID == "" {
		v.add("member_id", "member id is required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		v.add("amount", "amount must be greater than zero")
	}
	if input.DueDate.IsZero() {
		v.add("due_date", "due date is required")
	}
	if v.hasErrors() {
		return nil, v
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to check member %s: %w", input.MemberID, err)
	}

	now := s.now()
	payment := &models.Payment{
		ID:        uuid.NewString(),
		MemberID:  input.MemberID,
		Amount:    input.Amount,
		DueDate:   input.DueDate,
		Status:    models.PaymentPending,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return payment, nil
}

// MarkPaid отмечает платёж оплаченным. Разрешено только из pending и overdue,
// при этом просрочка определяется по актуальному статусу.
func (s *paymentService) MarkPaid(ctx context.Context, id string, input MarkPaidInput) (*models.Payment, error) {
	payment, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	effective := payment.EffectiveStatus(s.now())
	if effective != models.PaymentPending && effective != models.PaymentOverdue {
		return nil, ErrPaymentNotPayable
	}

	now := s.now()
	paymentDate := now
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment.Status = models.PaymentPaid
	payment.PaymentDate = &paymentDate
	payment.PaymentMethod = input.PaymentMethod
	payment.UpdatedAt = now

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to mark payment %s paid: %w", id, err)
	}
	return payment, nil
}

// Cancel отменяет платёж с указанием причины. Повторная отмена уже
// отменённого платежа не считается ошибкой и возвращает платёж как есть.
func (s *paymentService) Cancel(ctx context.Context, id string, reason string) (*models.Payment, error) {
	payment, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.PaymentCancelled {
		return payment, nil
	}
	if !payment.CanTransitionTo(models.PaymentCancelled) {
		return nil, ErrPaymentNotCancellable
	}

	payment.Status = models.PaymentCancelled
	payment.Notes = reason
	payment.UpdatedAt = s.now()

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to cancel payment %s: %w", id, err)
	}
	return payment, nil
}

// Reactivate возвращает отменённый платёж в pending и очищает причину отмены.
func (s *paymentService) Reactivate(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.GetPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status != models.PaymentCancelled {
		return nil, ErrPaymentNotReactivatable
	}

	payment.Status = models.PaymentPending
	payment.Notes = ""
	payment.UpdatedAt = s.now()

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to reactivate payment %s: %w", id, err)
	}
	return payment, nil
}

// CheckOverduePayments переводит просроченные pending-платежи в overdue и
// возвращает количество переведённых. Сохранение выполняется одной записью.
func (s *paymentService) CheckOverduePayments(ctx context.Context) (int, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load payments for overdue check: %w", err)
	}

	now := s.now()
	var updated []models.Payment
	for i := range payments {
		p := payments[i]
		if p.Status == models.PaymentPending && p.IsOverdue(now) {
			p.Status = models.PaymentOverdue
			p.UpdatedAt = now
			updated = append(updated, p)
		}
	}

	if err := s.paymentRepo.UpdateBatch(ctx, updated); err != nil {
		return 0, fmt.Errorf("failed to store overdue payments: %w", err)
	}
	return len(updated), nil
}

func (s *paymentService) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return payment, nil
}

func (s *paymentService) GetAllPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) GetPaymentsByMember(ctx context.Context, memberID string) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for member %s: %w", memberID, err)
	}

	result := make([]models.Payment, 0)
	for i := range payments {
		if payments[i].MemberID == memberID {
			result = append(result, payments[i])
		}
	}
	return result, nil
}

// GetPaymentsByStatus фильтрует по актуальному статусу: pending-платёж с
// прошедшим сроком попадает в выборку overdue, даже если фоновая проверка
// ещё не перевела его.
func (s *paymentService) GetPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments by status: %w", err)
	}

	now := s.now()
	result := make([]models.Payment, 0)
	for i := range payments {
		if payments[i].EffectiveStatus(now) == status {
			result = append(result, payments[i])
		}
	}
	return result, nil
}

func (s *paymentService) GetOverduePayments(ctx context.Context) ([]models.Payment, error) {
	return s.GetPaymentsByStatus(ctx, models.PaymentOverdue)
}

func (s *paymentService) GetFinancialStats(ctx context.Context) (*models.FinancialStats, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments for stats: %w", err)
	}

	now := s.now()
	stats := &models.FinancialStats{
		TotalRevenue:   decimal.Zero,
		PendingRevenue: decimal.Zero,
		OverdueRevenue: decimal.Zero,
	}
	countable := 0
	for i := range payments {
		p := &payments[i]
		switch p.EffectiveStatus(now) {
		case models.PaymentPaid:
			stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
			stats.PaidPayments++
			countable++
		case models.PaymentPending:
			stats.PendingRevenue = stats.PendingRevenue.Add(p.Amount)
			countable++
		case models.PaymentOverdue:
			stats.OverdueRevenue = stats.OverdueRevenue.Add(p.Amount)
			stats.OverduePayments++
			countable++
		case models.PaymentCancelled:
			// отменённые не участвуют ни в суммах, ни в доле оплаченных
		}
		stats.TotalPayments++
	}
	if countable > 0 {
		stats.PaymentRate = float64(stats.PaidPayments) / float64(countable)
	}
	return stats, nil
}

func (s *paymentService) GetMonthlyReport(ctx context.Context, month time.Month, year int) (*models.MonthlyReport, error) {
	payments, err := s.paymentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments for monthly report: %w", err)
	}

	now := s.now()
	report := &models.MonthlyReport{
		Month:   int(month),
		Year:    year,
		Revenue: decimal.Zero,
	}
	for i := range payments {
		p := &payments[i]
		if p.DueDate.Year() != year || p.DueDate.Month() != month {
			continue
		}
		switch p.EffectiveStatus(now) {
		case models.PaymentPaid:
			report.Paid++
			report.Revenue = report.Revenue.Add(p.Amount)
		case models.PaymentPending:
			report.Pending++
		case models.PaymentOverdue:
			report.Overdue++
		case models.PaymentCancelled:
			continue
		}
		report.Total++
	}
	return report, nil
}
