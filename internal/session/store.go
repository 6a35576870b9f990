// Package session persists the credentials of the signed-in user.
package session

import (
	"context"
	"fmt"
)

// Backend is a string key/value store holding the session values
type Backend interface {
	// Get returns the value and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Keys names the three session values inside the backend
type Keys struct {
	AccessToken   string
	RefreshToken  string
	Authenticated string
}

// DefaultKeys are the key names used when none are configured
var DefaultKeys = Keys{
	AccessToken:   "accessToken",
	RefreshToken:  "refreshToken",
	Authenticated: "isAuthenticated",
}

const authenticatedValue = "true"

// Store reads and writes the session credentials through a Backend
type Store struct {
	backend Backend
	keys    Keys
}

// NewStore creates a Store; empty key names fall back to DefaultKeys
func NewStore(backend Backend, keys Keys) *Store {
	if keys.AccessToken == "" {
		keys.AccessToken = DefaultKeys.AccessToken
	}
	if keys.RefreshToken == "" {
		keys.RefreshToken = DefaultKeys.RefreshToken
	}
	if keys.Authenticated == "" {
		keys.Authenticated = DefaultKeys.Authenticated
	}
	return &Store{backend: backend, keys: keys}
}

// Keys returns the key names in use
func (s *Store) Keys() Keys {
	return s.keys
}

// AccessToken returns the stored access token, empty when absent
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.AccessToken)
}

// RefreshToken returns the stored refresh token, empty when absent
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.RefreshToken)
}

// IsAuthenticated reports whether the authenticated flag is set
func (s *Store) IsAuthenticated(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, s.keys.Authenticated)
	if err != nil {
		return false, err
	}
	return v == authenticatedValue, nil
}

// SignIn stores both tokens and raises the authenticated flag
func (s *Store) SignIn(ctx context.Context, access, refresh string) error {
	if err := s.backend.Set(ctx, s.keys.AccessToken, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.backend.Set(ctx, s.keys.RefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	if err := s.backend.Set(ctx, s.keys.Authenticated, authenticatedValue); err != nil {
		return fmt.Errorf("store authenticated flag: %w", err)
	}
	return nil
}

// SetAccessToken replaces the access token after a refresh
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	if err := s.backend.Set(ctx, s.keys.AccessToken, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	return nil
}

// SetRefreshToken replaces the refresh token when the server rotates it
func (s *Store) SetRefreshToken(ctx context.Context, refresh string) error {
	if err := s.backend.Set(ctx, s.keys.RefreshToken, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Clear removes all three session values
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.keys.AccessToken, s.keys.RefreshToken, s.keys.Authenticated); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}
