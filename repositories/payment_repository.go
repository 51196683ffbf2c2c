package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, payment *models.Payment) error
	CreateBatch(ctx context.Context, payments []models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
	UpdateBatch(ctx context.Context, payments []models.Payment) error
	GetAll(ctx context.Context) ([]models.Payment, error)
	ReplaceAll(ctx context.Context, payments []models.Payment) error
}

type paymentRepository struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	payments []models.Payment
}

func NewPaymentRepository(kv KeyValueStore) PaymentRepository {
	return &paymentRepository{kv: kv, payments: []models.Payment{}}
}

func validatePayment(p *models.Payment) error {
	if p.ID == "" {
		return errors.New("payment record without id")
	}
	if p.MemberID == "" {
		return fmt.Errorf("payment %s without member id", p.ID)
	}
	switch p.Status {
	case models.PaymentPending, models.PaymentPaid, models.PaymentOverdue, models.PaymentCancelled:
	default:
		return fmt.Errorf("payment %s has unknown status %q", p.ID, p.Status)
	}
	return nil
}

func (r *paymentRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.Payment
	if err := loadList(ctx, r.kv, KeyPayments, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validatePayment(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyPayments, err)
		}
	}
	r.payments = loaded
	if r.payments == nil {
		r.payments = []models.Payment{}
	}
	return nil
}

func (r *paymentRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyPayments, r.payments)
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments = append(r.payments, *payment)
	if err := r.persist(ctx); err != nil {
		r.payments = r.payments[:len(r.payments)-1]
		return err
	}
	return nil
}

// CreateBatch добавляет платежи одной записью в хранилище. Генератор взносов
// создаёт платежи помесячно пачкой, нет смысла перезаписывать ключ на каждый.
func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previousLen := len(r.payments)
	r.payments = append(r.payments, payments...)
	if err := r.persist(ctx); err != nil {
		r.payments = r.payments[:previousLen]
		return err
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.payments {
		if r.payments[i].ID == id {
			payment := r.payments[i]
			return &payment, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.payments {
		if r.payments[i].ID == payment.ID {
			previous := r.payments[i]
			r.payments[i] = *payment
			if err := r.persist(ctx); err != nil {
				r.payments[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrPaymentNotFound
}

// UpdateBatch применяет изменения нескольких платежей и сохраняет коллекцию
// один раз. Используется периодической проверкой просрочки.
func (r *paymentRepository) UpdateBatch(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := make([]models.Payment, len(r.payments))
	copy(previous, r.payments)

	byID := make(map[string]models.Payment, len(payments))
	for _, p := range payments {
		byID[p.ID] = p
	}
	for i := range r.payments {
		if updated, ok := byID[r.payments[i].ID]; ok {
			r.payments[i] = updated
			delete(byID, updated.ID)
		}
	}
	if len(byID) > 0 {
		return ErrPaymentNotFound
	}

	if err := r.persist(ctx); err != nil {
		r.payments = previous
		return err
	}
	return nil
}

func (r *paymentRepository) GetAll(ctx context.Context) ([]models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Payment, len(r.payments))
	copy(result, r.payments)
	return result, nil
}

func (r *paymentRepository) ReplaceAll(ctx context.Context, payments []models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range payments {
		if err := validatePayment(&payments[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.payments
	r.payments = make([]models.Payment, len(payments))
	copy(r.payments, payments)
	if err := r.persist(ctx); err != nil {
		r.payments = previous
		return err
	}
	return nil
}
