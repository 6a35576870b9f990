// Package form holds the editable state of a single record while a user fills a form.
package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// SaveFailedMessage is shown under the general key when a save fails without field details
const SaveFailedMessage = "Erro ao salvar. Tente novamente."

// SaveFunc persists the submitted values
type SaveFunc[T any] func(ctx context.Context, values T) error

// ValidateFunc returns field -> message for every invalid field; empty when valid
type ValidateFunc[T any] func(values T) map[string]string

// Option configures a State
type Option[T any] func(*State[T])

// WithValidator sets the validator run before every save
func WithValidator[T any](fn ValidateFunc[T]) Option[T] {
	return func(s *State[T]) {
		s.validate = fn
	}
}

// WithLogger sets the logger used for save failures
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(s *State[T]) {
		s.log = log
	}
}

// State is the scratch copy of one record plus its field errors and submission flag
type State[T any] struct {
	mu         sync.RWMutex
	values     T
	errors     map[string]string
	submitting bool

	save     SaveFunc[T]
	validate ValidateFunc[T]
	log      zerolog.Logger
}

// New creates a State seeded with initial values
func New[T any](initial T, save SaveFunc[T], opts ...Option[T]) *State[T] {
	s := &State[T]{
		values: initial,
		errors: map[string]string{},
		save:   save,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Values returns a copy of the current values
func (s *State[T]) Values() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// SetValues replaces the values wholesale, leaving errors and the submission flag untouched
func (s *State[T]) SetValues(values T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
}

// Update mutates the values in place under the state lock
func (s *State[T]) Update(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.values)
}

// SetField sets one field addressed by its JSON name and clears that field's error.
// Other fields and their errors are left as they are.
func (s *State[T]) SetField(name string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := mergeField(s.values, name, value)
	if err != nil {
		return err
	}
	s.values = next
	delete(s.errors, name)
	return nil
}

// Errors returns a copy of the current field errors
func (s *State[T]) Errors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Error returns the message of one field, empty when the field is valid
func (s *State[T]) Error(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[name]
}

// SetErrors replaces the error map
func (s *State[T]) SetErrors(errs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = make(map[string]string, len(errs))
	for k, v := range errs {
		s.errors[k] = v
	}
}

// Submitting reports whether a save is in flight
func (s *State[T]) Submitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}

// Submit validates the values and, when valid, saves them.
// Validation failures never reach the save function.
func (s *State[T]) Submit(ctx context.Context) error {
	values := s.Values()

	// the validator runs unlocked and may read the state
	if s.validate != nil {
		if errs := s.validate(values); len(errs) > 0 {
			s.SetErrors(errs)
			return fmt.Errorf("%w: %d invalid field(s)", apperrors.ErrValidationFailed, len(errs))
		}
	}

	s.mu.Lock()
	s.errors = map[string]string{}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	err := s.save(ctx, values)
	if err == nil {
		return nil
	}

	fieldErrs := saveErrors(err)
	s.log.Warn().Err(err).Int("fields", len(fieldErrs)).Msg("Save failed")

	s.mu.Lock()
	s.errors = fieldErrs
	s.mu.Unlock()
	return err
}

// saveErrors maps a save failure onto the field error map
func saveErrors(err error) map[string]string {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if fields, ok := apiErr.FieldErrors(); ok {
			return fields
		}
	}
	return map[string]string{apperrors.GeneralField: SaveFailedMessage}
}

// mergeField decodes {name: value} over a deep copy of values
func mergeField[T any](values T, name string, value interface{}) (T, error) {
	var next T

	current, err := json.Marshal(values)
	if err != nil {
		return next, fmt.Errorf("encode values: %w", err)
	}
	if err := json.Unmarshal(current, &next); err != nil {
		return next, fmt.Errorf("copy values: %w", err)
	}

	patch, err := json.Marshal(map[string]interface{}{name: value})
	if err != nil {
		return next, fmt.Errorf("encode field %q: %w", name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		var zero T
		return zero, fmt.Errorf("set field %q: %w", name, err)
	}
	return next, nil
}
