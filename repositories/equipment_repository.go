package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrEquipmentNotFound = errors.New("equipment not found")

type EquipmentRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, equipment *models.Equipment) error
	GetByID(ctx context.Context, id string) (*models.Equipment, error)
	Update(ctx context.Context, equipment *models.Equipment) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Equipment, error)
	ReplaceAll(ctx context.Context, equipment []models.Equipment) error
}

type equipmentRepository struct {
	mu        sync.RWMutex
	kv        KeyValueStore
	equipment []models.Equipment
}

func NewEquipmentRepository(kv KeyValueStore) EquipmentRepository {
	return &equipmentRepository{kv: kv, equipment: []models.Equipment{}}
}

func validateEquipment(e *models.Equipment) error {
	if e.ID == "" {
		return errors.New("equipment record without id")
	}
	if !models.ValidEquipmentCategory(e.Category) {
		return fmt.Errorf("equipment %s has unknown category %q", e.ID, e.Category)
	}
	if e.Available < 0 || e.Available > e.Quantity {
		return fmt.Errorf("equipment %s availability %d out of range [0, %d]", e.ID, e.Available, e.Quantity)
	}
	return nil
}

func (r *equipmentRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.Equipment
	if err := loadList(ctx, r.kv, KeyEquipment, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateEquipment(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyEquipment, err)
		}
	}
	r.equipment = loaded
	if r.equipment == nil {
		r.equipment = []models.Equipment{}
	}
	return nil
}

func (r *equipmentRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyEquipment, r.equipment)
}

func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.equipment = append(r.equipment, *equipment)
	if err := r.persist(ctx); err != nil {
		r.equipment = r.equipment[:len(r.equipment)-1]
		return err
	}
	return nil
}

func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.equipment {
		if r.equipment[i].ID == id {
			equipment := r.equipment[i]
			return &equipment, nil
		}
	}
	return nil, ErrEquipmentNotFound
}

func (r *equipmentRepository) Update(ctx context.Context, equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.equipment {
		if r.equipment[i].ID == equipment.ID {
			previous := r.equipment[i]
			r.equipment[i] = *equipment
			if err := r.persist(ctx); err != nil {
				r.equipment[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrEquipmentNotFound
}

func (r *equipmentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.equipment {
		if r.equipment[i].ID == id {
			removed := r.equipment[i]
			r.equipment = append(r.equipment[:i], r.equipment[i+1:]...)
			if err := r.persist(ctx); err != nil {
				r.equipment = append(r.equipment, removed)
				return err
			}
			return nil
		}
	}
	return ErrEquipmentNotFound
}

func (r *equipmentRepository) GetAll(ctx context.Context) ([]models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Equipment, len(r.equipment))
	copy(result, r.equipment)
	return result, nil
}

func (r *equipmentRepository) ReplaceAll(ctx context.Context, equipment []models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range equipment {
		if err := validateEquipment(&equipment[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.equipment
	r.equipment = make([]models.Equipment, len(equipment))
	copy(r.equipment, equipment)
	if err := r.persist(ctx); err != nil {
		r.equipment = previous
		return err
	}
	return nil
}
