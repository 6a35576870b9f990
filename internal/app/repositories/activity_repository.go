package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/smartsecretaria/secretaria/internal/models"
)

const activityCap = 50

// ActivityRepository is a bounded log of recent changes, newest first
type ActivityRepository struct {
	mu      sync.RWMutex
	nextID  int64
	entries []models.Activity
}

// NewActivityRepository creates an empty ActivityRepository
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{nextID: 1}
}

// Record prepends an activity
func (r *ActivityRepository) Record(ctx context.Context, username, action string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := models.Activity{
		ID:       r.nextID,
		Action:   action,
		DateTime: at.UTC().Format(time.RFC3339),
		User:     models.ActivityUser{Username: username},
	}
	r.nextID++

	r.entries = append([]models.Activity{entry}, r.entries...)
	if len(r.entries) > activityCap {
		r.entries = r.entries[:activityCap]
	}
}

// Latest returns up to n activities, newest first
func (r *ActivityRepository) Latest(ctx context.Context, n int) []models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]models.Activity, n)
	copy(out, r.entries[:n])
	return out
}

// CountSince counts activities at or after since
func (r *ActivityRepository) CountSince(ctx context.Context, since time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.entries {
		at, err := time.Parse(time.RFC3339, e.DateTime)
		if err == nil && !at.Before(since) {
			count++
		}
	}
	return count
}
