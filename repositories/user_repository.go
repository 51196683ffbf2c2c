package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Dosada05/club-system/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrUserEmailConflict    = errors.New("user email is already in use")
)

type UserRepository interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	mu    sync.RWMutex
	kv    KeyValueStore
	users []models.User
}

func NewUserRepository(kv KeyValueStore) UserRepository {
	return &userRepository{kv: kv, users: []models.User{}}
}

func validateUser(u *models.User) error {
	if u.ID == "" {
		return errors.New("user record without id")
	}
	if u.Username == "" {
		return fmt.Errorf("user %s without username", u.ID)
	}
	if !models.ValidUserRole(u.Role) {
		return fmt.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}
	return nil
}

func (r *userRepository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var loaded []models.User
	if err := loadList(ctx, r.kv, KeyUsers, &loaded); err != nil {
		return err
	}
	for i := range loaded {
		if err := validateUser(&loaded[i]); err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformedState, KeyUsers, err)
		}
	}
	r.users = loaded
	if r.users == nil {
		r.users = []models.User{}
	}
	return nil
}

func (r *userRepository) persist(ctx context.Context) error {
	return saveList(ctx, r.kv, KeyUsers, r.users)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Username, user.Username) {
			return ErrUserUsernameConflict
		}
		if strings.EqualFold(r.users[i].Email, user.Email) {
			return ErrUserEmailConflict
		}
	}

	r.users = append(r.users, *user)
	if err := r.persist(ctx); err != nil {
		r.users = r.users[:len(r.users)-1]
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if strings.EqualFold(r.users[i].Username, username) {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == user.ID {
			previous := r.users[i]
			r.users[i] = *user
			if err := r.persist(ctx); err != nil {
				r.users[i] = previous
				return err
			}
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.User, len(r.users))
	copy(result, r.users)
	return result, nil
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
