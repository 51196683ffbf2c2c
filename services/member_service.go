package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemberService interface {
	CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error)
	GetMemberByID(ctx context.Context, id string) (*models.Member, error)
	GetAllMembers(ctx context.Context) ([]models.Member, error)
	UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*models.Member, error)
	DeleteMember(ctx context.Context, id string) error
	RosterSize(ctx context.Context) (int, error)
}

type CreateMemberInput struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Age        int             `json:"age"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	JoinDate   time.Time       `json:"join_date"`
	Position   *string         `json:"position"`
	Notes      *string         `json:"notes"`
}

type UpdateMemberInput struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Age        int             `json:"age"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	Position   *string         `json:"position"`
	Notes      *string         `json:"notes"`
}

type memberService struct {
	memberRepo repositories.MemberRepository
	now        func() time.Time
}

func NewMemberService(memberRepo repositories.MemberRepository) MemberService {
	return &memberService{
		memberRepo: memberRepo,
		now:        time.Now,
	}
}

// validateMemberFields собирает все ошибки полей, а не только первую.
func validateMemberFields(name, email string, age int, fee decimal.Decimal, joinDate time.Time) *ValidationError {
	v := newValidationError()
	if len(strings.TrimSpace(name)) < 2 {
		v.add("name", "name must be at least 2 characters long")
	}
	if !isValidEmail(email) {
		v.add("email", "email is invalid")
	}
	if age < 14 || age > 80 {
		v.add("age", "age must be between 14 and 80")
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		v.add("monthly_fee", "monthly fee must be greater than zero")
	}
	if joinDate.IsZero() {
		v.add("join_date", "join date is required")
	}
	return v
}

func (s *memberService) CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	if v := validateMemberFields(input.Name, input.Email, input.Age, input.MonthlyFee, input.JoinDate); v.hasErrors() {
		return nil, v
	}

	now := s.now()
	member := &models.Member{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Age:        input.Age,
		MonthlyFee: input.MonthlyFee,
		JoinDate:   input.JoinDate,
		Position:   input.Position,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrMemberEmailConflict) {
			return nil, ErrMemberEmailConflict
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetMemberByID(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	return member, nil
}

func (s *memberService) GetAllMembers(ctx context.Context) ([]models.Member, error) {
	members, err := s.memberRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all members: %w", err)
	}
	return members, nil
}

// UpdateMember меняет данные участника. Смена месячного взноса не трогает
// уже сгенерированные платежи - новая сумма применяется к будущим месяцам
// при следующем запуске генератора.
func (s *memberService) UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*models.Member, error) {
	member, err := s.GetMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := validateMemberFields(input.Name, input.Email, input.Age, input.MonthlyFee, member.JoinDate); v.hasErrors() {
		return nil, v
	}

	member.Name = strings.TrimSpace(input.Name)
	member.Email = strings.TrimSpace(input.Email)
	member.Phone = strings.TrimSpace(input.Phone)
	member.Age = input.Age
	member.MonthlyFee = input.MonthlyFee
	member.Position = input.Position
	member.Notes = input.Notes
	member.UpdatedAt = s.now()

	if err := s.memberRepo.Update(ctx, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMemberNotFound):
			return nil, ErrMemberNotFound
		case errors.Is(err, repositories.ErrMemberEmailConflict):
			return nil, ErrMemberEmailConflict
		default:
			return nil, fmt.Errorf("failed to update member %s: %w", id, err)
		}
	}
	return member, nil
}

func (s *memberService) DeleteMember(ctx context.Context, id string) error {
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete member %s: %w", id, err)
	}
	return nil
}

// RosterSize возвращает текущий размер ростера. Именно он служит
// знаменателем статистики посещаемости, в том числе для прошлых тренировок.
func (s *memberService) RosterSize(ctx context.Context) (int, error) {
	count, err := s.memberRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
