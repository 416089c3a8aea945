package services

import (
	"context"
	"fmt"
	"strings"

	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceError is the typed error set of the user service.
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound          UserServiceError = "user not found"
	ErrUserCreationFailed    UserServiceError = "user could not be created"
	ErrUserEmailTaken        UserServiceError = "email address is already registered"
	ErrUserInvalidInput      UserServiceError = "invalid user data"
	ErrUserHashingFailed     UserServiceError = "password could not be hashed"
	ErrUserInvalidCredential UserServiceError = "email or password is incorrect"
)

// IUserService is the account surface.
type IUserService interface {
	CreateUser(ctx context.Context, name, email, password string, isStaff bool) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// UserService implements IUserService.
type UserService struct {
	repo repositories.IUserRepository
}

// NewUserService builds the service on the shared connection.
func NewUserService() IUserService {
	return &UserService{repo: repositories.NewUserRepository()}
}

// NewUserServiceWith builds the service with an injected repository.
func NewUserServiceWith(repo repositories.IUserRepository) IUserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, name, email, password string, isStaff bool) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrUserInvalidInput
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrUserInvalidInput)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		configslog.Log.Error("UserService.CreateUser: hashing failed", zap.Error(err))
		return nil, ErrUserHashingFailed
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		IsStaff:      isStaff,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		configslog.Log.Error("UserService.CreateUser: DB error", zap.String("email", email), zap.Error(err))
		return nil, ErrUserCreationFailed
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Authenticate verifies the password; the error is the same for a missing user
// and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrUserInvalidCredential
	}
	if !user.IsActive {
		return nil, ErrUserInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUserInvalidCredential
	}
	return user, nil
}

var _ IUserService = (*UserService)(nil)
