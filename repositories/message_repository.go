package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	Update(ctx context.Context, message *models.Message) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]models.Message, error)
	ReplaceAll(ctx context.Context, messages []models.Message) error
}

type messageRepository struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	messages []models.Message
}

func NewMessageRepository(kv KeyValueStore) MessageRepository {
	return &messageRepository{kv: kv, messages: []models.Message{}}
}

func validateMessage(m *models.Message) error {
	if m.ID == "" {
		return errors.New("message record without id")
	}
	if !models.ValidMessageType(m.Type) {
		return fmt.Errorf("message %s has unknown type %q", m.ID, m.Type)
	}
	return nil
}

func (r *messageRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.Message
	if err := loadList(ctx, r.kv, KeyMessages, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateMessage(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyMessages, err)
		}
	}
	r.messages = loaded
	if r.messages == nil {
		r.messages = []models.Message{}
	}
	return nil
}

func (r *messageRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyMessages, r.messages)
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, *message)
	if err := r.persist(ctx); err != nil {
		r.messages = r.messages[:len(r.messages)-1]
		return err
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			message := r.messages[i]
			return &message, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == message.ID {
			previous := r.messages[i]
			r.messages[i] = *message
			if err := r.persist(ctx); err != nil {
				r.messages[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.messages {
		if r.messages[i].ID == id {
			removed := r.messages[i]
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			if err := r.persist(ctx); err != nil {
				r.messages = append(r.messages, removed)
				return err
			}
			return nil
		}
	}
	return ErrMessageNotFound
}

func (r *messageRepository) GetAll(ctx context.Context) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Message, len(r.messages))
	copy(result, r.messages)
	return result, nil
}

func (r *messageRepository) ReplaceAll(ctx context.Context, messages []models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range messages {
		if err := validateMessage(&messages[i]); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedState, err)
		}
	}

	previous := r.messages
	r.messages = make([]models.Message, len(messages))
	copy(r.messages, messages)
	if err := r.persist(ctx); err != nil {
		r.messages = previous
		return err
	}
	return nil
}
