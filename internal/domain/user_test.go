package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	validEmail := "test@example.com"
	validPassword := "longenoughpassword"

	user, err := NewUser(validEmail, validPassword)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID")
	}
	if user.Email != validEmail {
		t.Errorf("Expected email %s, got %s", validEmail, user.Email)
	}
	if user.Password != validPassword {
		t.Error("Expected plaintext password to be retained for hashing")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestNewUserValidation(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "longenoughpassword", ErrEmptyEmail},
		{"malformed email", "invalidemail", "longenoughpassword", ErrInvalidEmail},
		{"no domain dot", "user@localhost", "longenoughpassword", ErrInvalidEmail},
		{"empty password", "test@example.com", "", ErrEmptyPassword},
		{"short password", "test@example.com", "short", ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewUser(tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	// A user loaded from storage has a hash and no plaintext password.
	user := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	if err := user.Validate(); err != nil {
		t.Errorf("Expected stored user to validate, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected %v, got %v", ErrEmptyPassword, err)
	}
}

func TestUserValidateLongPassword(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := NewUser("test@example.com", string(long))
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Expected %v, got %v", ErrPasswordTooLong, err)
	}
}
