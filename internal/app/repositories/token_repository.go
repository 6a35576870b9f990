package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

type refreshToken struct {
	userID    int64
	expiresAt time.Time
}

// TokenRepository keeps issued refresh tokens
type TokenRepository struct {
	mu     sync.Mutex
	tokens map[string]refreshToken
}

// NewTokenRepository creates an empty TokenRepository
func NewTokenRepository() *TokenRepository {
	return &TokenRepository{tokens: map[string]refreshToken{}}
}

// CreateToken stores a refresh token for the user
func (r *TokenRepository) CreateToken(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; ok {
		return apperrors.ErrTokenInvalid
	}
	r.tokens[token] = refreshToken{userID: userID, expiresAt: expiresAt}
	return nil
}

// GetUserID resolves a refresh token; expired tokens are removed and rejected
func (r *TokenRepository) GetUserID(ctx context.Context, token string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenInvalid
	}
	if now.After(t.expiresAt) {
		delete(r.tokens, token)
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

// RevokeToken forgets a refresh token
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
}

// RevokeAll forgets every refresh token
func (r *TokenRepository) RevokeAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = map[string]refreshToken{}
}
