package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
)

type EquipmentService interface {
	AddEquipment(ctx context.Context, input AddEquipmentInput) (*models.Equipment, error)
	GetEquipmentByID(ctx context.Context, id string) (*models.Equipment, error)
	GetAllEquipment(ctx context.Context) ([]models.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, input UpdateEquipmentInput) (*models.Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
	MarkMaintenanceDone(ctx context.Context, id string) (*models.Equipment, error)
	GetMaintenanceDue(ctx context.Context) ([]models.Equipment, error)

	CreateLoan(ctx context.Context, input CreateLoanInput) (*models.EquipmentLoan, error)
	ReturnLoan(ctx context.Context, loanID string) (*models.EquipmentLoan, error)
	GetLoanByID(ctx context.Context, id string) (*models.EquipmentLoan, error)
	GetAllLoans(ctx context.Context) ([]models.EquipmentLoan, error)
	GetOverdueLoans(ctx context.Context) ([]models.EquipmentLoan, error)

	GetEquipmentStats(ctx context.Context) (*models.EquipmentStats, error)
}

type AddEquipmentInput struct {
	Name         string                    `json:"name"`
	Category     models.EquipmentCategory  `json:"category"`
	Quantity     int                       `json:"quantity"`
	Condition    models.EquipmentCondition `json:"condition"`
	PurchaseDate time.Time                 `json:"purchase_date"`
	Notes        string                    `json:"notes"`
}

type UpdateEquipmentInput struct {
	Name      string                    `json:"name"`
	Quantity  int                       `json:"quantity"`
	Condition models.EquipmentCondition `json:"condition"`
	Notes     string                    `json:"notes"`
}

type CreateLoanInput struct {
	EquipmentID        string    `json:"equipment_id"`
	MemberID           string    `json:"member_id"`
	Quantity           int       `json:"quantity"`
	ExpectedReturnDate time.Time `json:"expected_return_date"`
	Notes              string    `json:"notes"`
}

type equipmentService struct {
	equipmentRepo repositories.EquipmentRepository
	loanRepo      repositories.LoanRepository
	memberRepo    repositories.MemberRepository
	now           func() time.Time
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepository,
	loanRepo repositories.LoanRepository,
	memberRepo repositories.MemberRepository,
) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		loanRepo:      loanRepo,
		memberRepo:    memberRepo,
		now:           time.Now,
	}
}

func (s *equipmentService) AddEquipment(ctx context.Context, input AddEquipmentInput) (*models.Equipment, error) {
	v := newValidationError()
	if input.Name == "" {
		v.add("name", "name is required")
	}
	if !models.ValidEquipmentCategory(input.Category) {
		v.add("category", "category must be one of: ball, net, uniform, gear")
	}
	if input.Quantity <= 0 {
		v.add("quantity", "quantity must be greater than zero")
	}
	if !models.ValidEquipmentCondition(input.Condition) {
		v.add("condition", "condition is invalid")
	}
	if v.hasErrors() {
		return nil, v
	}

	now := s.now()
	equipment := &models.Equipment{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Category:        input.Category,
		Quantity:        input.Quantity,
		Available:       input.Quantity,
		Condition:       input.Condition,
		PurchaseDate:    input.PurchaseDate,
		LastMaintenance: now,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	equipment.NextMaintenance = equipment.CalculateNextMaintenance()

	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}
	return equipment, nil
}

func (s *equipmentService) GetEquipmentByID(ctx context.Context, id string) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEquipmentNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment %s: %w", id, err)
	}
	return equipment, nil
}

func (s *equipmentService) GetAllEquipment(ctx context.Context) ([]models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all equipment: %w", err)
	}
	return equipment, nil
}

// UpdateEquipment меняет описание позиции. Новое количество не может быть
// меньше числа единиц на руках, Available пересчитывается от выданного.
func (s *equipmentService) UpdateEquipment(ctx context.Context, id string, input UpdateEquipmentInput) (*models.Equipment, error) {
	equipment, err := s.GetEquipmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := newValidationError()
	if input.Name == "" {
		v.add("name", "name is required")
	}
	if input.Quantity <= 0 {
		v.add("quantity", "quantity must be greater than zero")
	}
	if !models.ValidEquipmentCondition(input.Condition) {
		v.add("condition", "condition is invalid")
	}
	if v.hasErrors() {
		return nil, v
	}

	loaned := equipment.Quantity - equipment.Available
	if input.Quantity < loaned {
		return nil, ErrQuantityBelowLoaned
	}

	equipment.Name = input.Name
	equipment.Quantity = input.Quantity
	equipment.Available = input.Quantity - loaned
	equipment.Condition = input.Condition
	equipment.Notes = input.Notes
	equipment.UpdatedAt = s.now()

	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to update equipment %s: %w", id, err)
	}
	return equipment, nil
}

// DeleteEquipment удаляет позицию. Позиция с активными выдачами не удаляется.
func (s *equipmentService) DeleteEquipment(ctx context.Context, id string) error {
	if _, err := s.GetEquipmentByID(ctx, id); err != nil {
		return err
	}

	active, err := s.loanRepo.ListActiveByEquipment(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check active loans for equipment %s: %w", id, err)
	}
	if len(active) > 0 {
		return ErrEquipmentHasActiveLoans
	}

	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrEquipmentNotFound) {
			return ErrEquipmentNotFound
		}
		return fmt.Errorf("failed to delete equipment %s: %w", id, err)
	}
	return nil
}

// MarkMaintenanceDone фиксирует обслуживание и сдвигает срок следующего
// на интервал категории.
func (s *equipmentService) MarkMaintenanceDone(ctx context.Context, id string) (*models.Equipment, error) {
	equipment, err := s.GetEquipmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	equipment.LastMaintenance = now
	equipment.NextMaintenance = equipment.CalculateNextMaintenance()
	equipment.UpdatedAt = now

	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to record maintenance for equipment %s: %w", id, err)
	}
	return equipment, nil
}

func (s *equipmentService) GetMaintenanceDue(ctx context.Context) ([]models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}

	now := s.now()
	result := make([]models.Equipment, 0)
	for i := range equipment {
		if equipment[i].NeedsMaintenance(now) {
			result = append(result, equipment[i])
		}
	}
	return result, nil
}

// CreateLoan выдаёт инвентарь участнику и уменьшает доступный остаток.
// Выдача сверх доступного запрещена.
func (s *equipmentService) CreateLoan(ctx context.Context, input CreateLoanInput) (*models.EquipmentLoan, error) {
	v := newValidationError()
	if input.EquipmentID == "" {
		v.add("equipment_id", "equipment id is required")
	}
	if input.MemberID == "" {
		v.add("member_id", "member id is required")
	}
	if input.Quantity <= 0 {
		v.add("quantity", "quantity must be greater than zero")
	}
	if input.ExpectedReturnDate.IsZero() {
		v.add("expected_return_date", "expected return date is required")
	}
	if v.hasErrors() {
		return nil, v
	}

	member, err := s.memberRepo.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to check member %s: %w", input.MemberID, err)
	}

	equipment, err := s.GetEquipmentByID(ctx, input.EquipmentID)
	if err != nil {
		return nil, err
	}
	if input.Quantity > equipment.Available {
		return nil, ErrInsufficientQuantity
	}

	now := s.now()
	loan := &models.EquipmentLoan{
		ID:                 uuid.NewString(),
		EquipmentID:        equipment.ID,
		MemberID:           member.ID,
		MemberName:         member.Name,
		Quantity:           input.Quantity,
		LoanDate:           now,
		ExpectedReturnDate: input.ExpectedReturnDate,
		Status:             models.LoanActive,
		Notes:              input.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	equipment.Available -= input.Quantity
	equipment.UpdatedAt = now
	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		// компенсация: выдача без списания остатка не должна остаться в журнале
		if delErr := s.loanRepo.Delete(ctx, loan.ID); delErr != nil {
			return nil, fmt.Errorf("failed to reserve equipment %s, loan %s not rolled back (%v): %w",
				equipment.ID, loan.ID, delErr, err)
		}
		return nil, fmt.Errorf("failed to reserve equipment %s: %w", equipment.ID, err)
	}
	return loan, nil
}

// ReturnLoan закрывает выдачу и возвращает единицы в доступный остаток.
// Повторный возврат не считается ошибкой и возвращает выдачу как есть.
func (s *equipmentService) ReturnLoan(ctx context.Context, loanID string) (*models.EquipmentLoan, error) {
	loan, err := s.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status == models.LoanReturned {
		return loan, nil
	}

	now := s.now()
	loan.Status = models.LoanReturned
	loan.ActualReturnDate = &now
	loan.UpdatedAt = now

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to return loan %s: %w", loanID, err)
	}

	equipment, err := s.GetEquipmentByID(ctx, loan.EquipmentID)
	if err != nil {
		return nil, err
	}
	equipment.Available += loan.Quantity
	if equipment.Available > equipment.Quantity {
		equipment.Available = equipment.Quantity
	}
	equipment.UpdatedAt = now
	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		// компенсация: возврат без зачисления остатка откатывается
		loan.Status = models.LoanActive
		loan.ActualReturnDate = nil
		if revErr := s.loanRepo.Update(ctx, loan); revErr != nil {
			return nil, fmt.Errorf("failed to release equipment %s, loan %s not rolled back (%v): %w",
				equipment.ID, loan.ID, revErr, err)
		}
		return nil, fmt.Errorf("failed to release equipment %s: %w", equipment.ID, err)
	}
	return loan, nil
}

func (s *equipmentService) GetLoanByID(ctx context.Context, id string) (*models.EquipmentLoan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLoanNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan %s: %w", id, err)
	}
	return loan, nil
}

func (s *equipmentService) GetAllLoans(ctx context.Context) ([]models.EquipmentLoan, error) {
	loans, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	return loans, nil
}

func (s *equipmentService) GetOverdueLoans(ctx context.Context) ([]models.EquipmentLoan, error) {
	loans, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	now := s.now()
	result := make([]models.EquipmentLoan, 0)
	for i := range loans {
		if loans[i].IsOverdue(now) {
			result = append(result, loans[i])
		}
	}
	return result, nil
}

func (s *equipmentService) GetEquipmentStats(ctx context.Context) (*models.EquipmentStats, error) {
	equipment, err := s.equipmentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	loans, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}

	now := s.now()
	stats := &models.EquipmentStats{TotalEquipment: len(equipment)}
	for i := range equipment {
		e := &equipment[i]
		stats.TotalItems += e.Quantity
		stats.AvailableItems += e.Available
		stats.LoanedItems += e.Quantity - e.Available
		if e.NeedsMaintenance(now) {
			stats.NeedsMaintenance++
		}
	}
	for i := range loans {
		if loans[i].IsOverdue(now) {
			stats.OverdueLoans++
		}
	}
	return stats, nil
}
