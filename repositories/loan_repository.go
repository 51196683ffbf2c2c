package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrLoanNotFound = errors.New("equipment loan not found")

type LoanRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, loan *models.EquipmentLoan) error
	GetByID(ctx context.Context, id string) (*models.EquipmentLoan, error)
	Update(ctx context.Context, loan *models.EquipmentLoan) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.EquipmentLoan, error)
	ListActiveByEquipment(ctx context.Context, equipmentID string) ([]models.EquipmentLoan, error)
	ReplaceAll(ctx context.Context, loans []models.EquipmentLoan) error
}

type loanRepository struct {
	mu    sync.RWMutex
	kv    KeyValueStore
	loans []models.EquipmentLoan
}

func NewLoanRepository(kv KeyValueStore) LoanRepository {
	return &loanRepository{kv: kv, loans: []models.EquipmentLoan{}}
}

func validateLoan(l *models.EquipmentLoan) error {
	if l.ID == "" {
		return errors.New("loan record without id")
	}
	if l.EquipmentID == "" || l.MemberID == "" {
		return fmt.Errorf("loan %s without equipment or member reference", l.ID)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("loan %s has non-positive quantity %d", l.ID, l.Quantity)
	}
	switch l.Status {
	case models.LoanActive, models.LoanReturned:
	default:
		return fmt.Errorf("loan %s has unknown status %q", l.ID, l.Status)
	}
	return nil
}

func (r *loanRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.EquipmentLoan
	if err := loadList(ctx, r.kv, KeyLoans, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateLoan(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyLoans, err)
		}
	}
	r.loans = loaded
	if r.loans == nil {
		r.loans = []models.EquipmentLoan{}
	}
	return nil
}

func (r *loanRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyLoans, r.loans)
}

func (r *loanRepository) Create(ctx context.Context, loan *models.EquipmentLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loans = append(r.loans, *loan)
	if err := r.persist(ctx); err != nil {
		r.loans = r.loans[:len(r.loans)-1]
		return err
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*models.EquipmentLoan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.loans {
		if r.loans[i].ID == id {
			loan := r.loans[i]
			return &loan, nil
		}
	}
	return nil, ErrLoanNotFound
}

func (r *loanRepository) Update(ctx context.Context, loan *models.EquipmentLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.loans {
		if r.loans[i].ID == loan.ID {
			previous := r.loans[i]
			r.loans[i] = *loan
			if err := r.persist(ctx); err != nil {
				r.loans[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrLoanNotFound
}

func (r *loanRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.loans {
		if r.loans[i].ID == id {
			removed := r.loans[i]
			r.loans = append(r.loans[:i], r.loans[i+1:]...)
			if err := r.persist(ctx); err != nil {
				r.loans = append(r.loans, removed)
				return err
			}
			return nil
		}
	}
	return ErrLoanNotFound
}

func (r *loanRepository) GetAll(ctx context.Context) ([]models.EquipmentLoan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.EquipmentLoan, len(r.loans))
	copy(result, r.loans)
	return result, nil
}

func (r *loanRepository) ListActiveByEquipment(ctx context.Context, equipmentID string) ([]models.EquipmentLoan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.EquipmentLoan, 0)
	for i := range r.loans {
		if r.loans[i].EquipmentID == equipmentID && r.loans[i].Status == models.LoanActive {
			result = append(result, r.loans[i])
		}
	}
	return result, nil
}

func (r *loanRepository) ReplaceAll(ctx context.Context, loans []models.EquipmentLoan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range loans {
		if err := validateLoan(&loans[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.loans
	r.loans = make([]models.EquipmentLoan, len(loans))
	copy(r.loans, loans)
	if err := r.persist(ctx); err != nil {
		r.loans = previous
		return err
	}
	return nil
}
