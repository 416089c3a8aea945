package services

import (
	"context"
	"errors"
	"testing"

	"festgo.app/repositories"
)

func newUserService(t *testing.T) IUserService {
	t.Helper()
	db := newTestDB(t)
	return NewUserServiceWith(repositories.NewUserRepositoryTx(db))
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	service := newUserService(t)

	t.Run("normalizes the email and hashes the password", func(t *testing.T) {
		user, err := service.CreateUser(ctx, "Ada", "  Ada@Example.COM ", "correct horse", false)
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.Email != "ada@example.com" {
			t.Errorf("email = %q, want normalized", user.Email)
		}
		if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
			t.Errorf("password stored in the clear")
		}
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		if _, err := service.CreateUser(ctx, "Imposter", "ada@example.com", "longenough", false); !errors.Is(err, ErrUserEmailTaken) {
			t.Fatalf("expected ErrUserEmailTaken, got %v", err)
		}
	})

	t.Run("rejects short passwords and bad emails", func(t *testing.T) {
		if _, err := service.CreateUser(ctx, "Shorty", "shorty@example.com", "short", false); !errors.Is(err, ErrUserInvalidInput) {
			t.Fatalf("expected ErrUserInvalidInput, got %v", err)
		}
		if _, err := service.CreateUser(ctx, "Nomail", "not-an-email", "longenough", false); !errors.Is(err, ErrUserInvalidInput) {
			t.Fatalf("expected ErrUserInvalidInput, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	service := NewUserServiceWith(repositories.NewUserRepositoryTx(db))

	user, err := service.CreateUser(ctx, "Ada", "ada@example.com", "correct horse", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("valid credentials pass", func(t *testing.T) {
		got, err := service.Authenticate(ctx, "ADA@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("authenticated user %d, want %d", got.ID, user.ID)
		}
	})

	t.Run("wrong password, unknown user and inactive account fail alike", func(t *testing.T) {
		if _, err := service.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrUserInvalidCredential) {
			t.Fatalf("wrong password: got %v", err)
		}
		if _, err := service.Authenticate(ctx, "ghost@example.com", "whatever"); !errors.Is(err, ErrUserInvalidCredential) {
			t.Fatalf("unknown user: got %v", err)
		}

		if err := db.Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		if _, err := service.Authenticate(ctx, "ada@example.com", "correct horse"); !errors.Is(err, ErrUserInvalidCredential) {
			t.Fatalf("inactive account: got %v", err)
		}
	})
}
