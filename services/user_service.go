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
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error)
	SetPermission(ctx context.Context, id string, permission models.Permission, granted bool) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	ChangePassword(ctx context.Context, id string, newPassword string) error
}

type CreateUserInput struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type userService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	v := newValidationError()
	if len(strings.TrimSpace(input.Username)) < 3 {
		v.add("username", "username must be at least 3 characters long")
	}
	if !isValidEmail(input.Email) {
		v.add("email", "email is invalid")
	}
	if len(input.Password) < 6 {
		v.add("password", "password must be at least 6 characters long")
	}
	if !models.ValidUserRole(input.Role) {
		v.add("role", "role must be one of: admin, manager, user")
	}
	if v.hasErrors() {
		return nil, v
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		Permissions:  models.DefaultPermissions(input.Role),
		IsActive:     true,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUsernameConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// UpdateRole меняет роль и сбрасывает набор возможностей на дефолтный
// для новой роли. Ручные правки возможностей при этом теряются.
func (s *userService) UpdateRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	if !models.ValidUserRole(role) {
		v := newValidationError()
		v.add("role", "role must be one of: admin, manager, user")
		return nil, v
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.Permissions = models.DefaultPermissions(role)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update role for user %s: %w", id, err)
	}
	return user, nil
}

// SetPermission выдаёт или отзывает отдельную возможность поверх дефолтов роли.
func (s *userService) SetPermission(ctx context.Context, id string, permission models.Permission, granted bool) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Permissions == nil {
		user.Permissions = models.DefaultPermissions(user.Role)
	}
	if granted {
		user.Permissions[permission] = true
	} else {
		delete(user.Permissions, permission)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update permissions for user %s: %w", id, err)
	}
	return user, nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id string, newPassword string) error {
	if len(newPassword) < 6 {
		v := newValidationError()
		v.add("password", "password must be at least 6 characters long")
		return v
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to change password for user %s: %w", id, err)
	}
	return nil
}
