package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	m, err := NewManager("secret", time.Hour, "wes-estate")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	token, err := m.Generate("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" || claims.Issuer != "wes-estate" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateExpired(t *testing.T) {
	m, _ := NewManager("secret", time.Minute, "")
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate("user-1", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	m.now = time.Now
	if _, err := m.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	a, _ := NewManager("secret-a", time.Hour, "")
	b, _ := NewManager("secret-b", time.Hour, "")

	token, _ := a.Generate("user-1", "")
	if _, err := b.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
	}
	if _, err := a.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestNewManagerEmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour, ""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewManager() error = %v, want ErrEmptySecret", err)
	}
}
