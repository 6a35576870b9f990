package auth

import (
	"errors"
	"testing"
	"time"
)

func newService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  5 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "secretaria-test",
	})
}

func TestTokenPairValidates(t *testing.T) {
	s := newService()
	access, refresh, err := s.GenerateTokenPair(7, "secretaria")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresh == "" || refresh == access {
		t.Fatalf("expected distinct opaque refresh token")
	}

	claims, err := s.ValidateAndExtractClaims(access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "secretaria" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredToken(t *testing.T) {
	s := newService()
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	access, err := s.GenerateAccessToken(1, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.now = time.Now
	if _, err := s.ValidateToken(access); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	access, _ := newService().GenerateAccessToken(1, "x")
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute})
	if _, err := other.ValidateToken(access); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestPeekExpiry(t *testing.T) {
	s := newService()
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	access, _ := s.GenerateAccessToken(1, "x")

	exp, err := PeekExpiry(access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exp.Equal(fixed.Add(5 * time.Minute)) {
		t.Fatalf("expected expiry %v, got %v", fixed.Add(5*time.Minute), exp)
	}
	if _, err := PeekExpiry("not-a-jwt"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if tok, _ := ExtractBearerToken("Bearer abc"); tok != "abc" {
		t.Fatalf("expected abc, got %q", tok)
	}
	if _, err := ExtractBearerToken(""); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected format error")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3nha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "s3nha") || CheckPassword(hash, "outra") {
		t.Fatalf("password check mismatch")
	}
}
