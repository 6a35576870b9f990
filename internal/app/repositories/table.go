package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// Table is an in-memory collection with auto-increment ids
type Table[T any] struct {
	mu     sync.RWMutex
	name   string
	nextID int64
	rows   map[int64]T
	id     func(*T) *int64
}

// NewTable creates a Table; id returns a pointer to the record's id field
func NewTable[T any](name string, id func(*T) *int64) *Table[T] {
	return &Table[T]{
		name:   name,
		nextID: 1,
		rows:   map[int64]T{},
		id:     id,
	}
}

// List returns every record ordered by id
func (t *Table[T]) List(ctx context.Context) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

// Get returns one record or a not-found error
func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return row, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %d not found", t.name, id))
	}
	return row, nil
}

// Exists reports whether id is stored
func (t *Table[T]) Exists(ctx context.Context, id int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rows[id]
	return ok
}

// Insert assigns the next id and stores the record.
// conflict, when set, is checked against every stored record under the same lock.
func (t *Table[T]) Insert(ctx context.Context, row T, conflict func(existing T) bool) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if conflict != nil {
		for _, existing := range t.rows {
			if conflict(existing) {
				return row, apperrors.ErrConflict
			}
		}
	}

	*t.id(&row) = t.nextID
	t.rows[t.nextID] = row
	t.nextID++
	return row, nil
}

// Replace overwrites a stored record, keeping its id
func (t *Table[T]) Replace(ctx context.Context, row T, conflict func(existing T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := *t.id(&row)
	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %d not found", t.name, id))
	}
	if conflict != nil {
		for otherID, existing := range t.rows {
			if otherID != id && conflict(existing) {
				return apperrors.ErrConflict
			}
		}
	}
	t.rows[id] = row
	return nil
}

// Delete removes a record
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %d not found", t.name, id))
	}
	delete(t.rows, id)
	return nil
}

// Any reports whether a stored record matches pred
func (t *Table[T]) Any(ctx context.Context, pred func(T) bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if pred(row) {
			return true
		}
	}
	return false
}

// Count returns the number of stored records
func (t *Table[T]) Count(ctx context.Context) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
