package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/club-system/models"
	"github.com/Dosada05/club-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	EnsureDefaultAdmin(ctx context.Context) error
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authService struct {
	userRepo repositories.UserRepository
	users    UserService
	now      func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, users UserService) AuthService {
	return &authService{
		userRepo: userRepo,
		users:    users,
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to record login time: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// EnsureDefaultAdmin создаёт администратора по умолчанию, если в системе
// нет ни одной учётной записи. Пароль нужно сменить после первого входа.
func (s *authService) EnsureDefaultAdmin(ctx context.Context) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.users.CreateUser(ctx, CreateUserInput{
		Username: "admin",
		Email:    "admin@club.local",
		Password: "admin123",
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}
	return nil
}
