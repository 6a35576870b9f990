package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// User is an API account
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// UserRepository holds API accounts keyed by username
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]User
}

// NewUserRepository creates an empty UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: map[string]User{}}
}

// Create stores a new user; usernames are unique ignoring case
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(username)
	if _, ok := r.users[key]; ok {
		return User{}, apperrors.NewConflictError("username already exists")
	}
	u := User{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.users[key] = u
	r.nextID++
	return u, nil
}

// GetByUsername finds a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[strings.ToLower(username)]
	if !ok {
		return User{}, apperrors.NewResourceNotFoundError("user not found")
	}
	return u, nil
}

// GetByID finds a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, apperrors.NewResourceNotFoundError("user not found")
}

// Exists reports whether the username is taken
func (r *UserRepository) Exists(ctx context.Context, username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[strings.ToLower(username)]
	return ok
}
