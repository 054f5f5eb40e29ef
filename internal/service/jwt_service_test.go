package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rscms-dev/rscms/internal/domain"
)

func signTestToken(t *testing.T, secret, subject, issuer string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func TestJWTService_GenerateParseRoundtrip(t *testing.T) {
	svc := NewJWTService("secret", 24*time.Hour)

	token, err := svc.Generate(domain.User{ID: 42, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestJWTService_RejectsForeignKey(t *testing.T) {
	issuer := NewJWTService("secret-a", 24*time.Hour)
	validator := NewJWTService("secret-b", 24*time.Hour)

	token, err := issuer.Generate(domain.User{ID: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := validator.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign key, got %v", err)
	}
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("secret", 24*time.Hour)
	token := signTestToken(t, "secret", "1", "rscms", time.Now().UTC().Add(-time.Hour))

	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_RejectsNonNumericSubject(t *testing.T) {
	svc := NewJWTService("secret", 24*time.Hour)
	token := signTestToken(t, "secret", "not-a-number", "rscms", time.Now().UTC().Add(time.Hour))

	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for non-numeric subject, got %v", err)
	}
}

func TestJWTService_RejectsForeignIssuer(t *testing.T) {
	svc := NewJWTService("secret", 24*time.Hour)
	token := signTestToken(t, "secret", "1", "someone-else", time.Now().UTC().Add(time.Hour))

	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign issuer, got %v", err)
	}
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("secret", 24*time.Hour)

	for _, token := range []string{"", "   ", "not.a.jwt"} {
		if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}
