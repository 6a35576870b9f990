// Package resource loads remote collections for screens and tracks their loading state.
package resource

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// FetchFunc loads the resource
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is the state a screen renders
type Snapshot[T any] struct {
	Data    T
	Loading bool
	Error   string
}

// Option configures a Hook
type Option[T any] func(*Hook[T])

// WithInitial sets the data shown before the first load completes
func WithInitial[T any](data T) Option[T] {
	return func(h *Hook[T]) {
		h.data = data
	}
}

// WithLogger sets the logger used for fetch failures
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(h *Hook[T]) {
		h.log = log
	}
}

// Hook runs a fetch on mount and on demand, keeping only the latest result
type Hook[T any] struct {
	mu         sync.Mutex
	fetch      FetchFunc[T]
	errMessage string
	log        zerolog.Logger

	data    T
	loading bool
	errText string

	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	mounted    bool
	// done is closed when the fetch of the current generation returns
	done chan struct{}
}

// New creates an unmounted Hook; errMessage is shown when a fetch fails
func New[T any](fetch FetchFunc[T], errMessage string, opts ...Option[T]) *Hook[T] {
	h := &Hook[T]{
		fetch:      fetch,
		errMessage: errMessage,
		log:        zerolog.Nop(),
		loading:    true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mount starts the first fetch. The hook stays bound to ctx until Unmount.
func (h *Hook[T]) Mount(ctx context.Context) {
	h.mu.Lock()
	if h.mounted {
		h.mu.Unlock()
		return
	}
	h.ctx, h.cancel = context.WithCancel(ctx)
	h.mounted = true
	h.mu.Unlock()

	h.Refetch()
}

// Refetch runs the fetch again; a newer call supersedes the results of older ones
func (h *Hook[T]) Refetch() {
	h.mu.Lock()
	if !h.mounted {
		h.mu.Unlock()
		return
	}
	h.generation++
	gen := h.generation
	h.loading = true
	ctx := h.ctx
	done := make(chan struct{})
	h.done = done
	h.mu.Unlock()

	go func() {
		defer close(done)
		data, err := h.fetch(ctx)
		h.finish(gen, data, err)
	}()
}

func (h *Hook[T]) finish(gen uint64, data T, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.mounted || gen != h.generation {
		return
	}

	if err != nil {
		h.log.Error().Err(err).Msg("Fetch failed")
		h.errText = h.errMessage
	} else {
		h.data = data
		h.errText = ""
	}
	h.loading = false
}

// Snapshot returns the current state
func (h *Hook[T]) Snapshot() Snapshot[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot[T]{Data: h.data, Loading: h.loading, Error: h.errText}
}

// Wait blocks until the latest started fetch has returned. Older fetches are
// superseded and may still be running.
func (h *Hook[T]) Wait() {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Load mounts when needed, refetches and waits, returning the resulting snapshot
func (h *Hook[T]) Load(ctx context.Context) Snapshot[T] {
	h.mu.Lock()
	mounted := h.mounted
	h.mu.Unlock()

	if mounted {
		h.Refetch()
	} else {
		h.Mount(ctx)
	}
	h.Wait()
	return h.Snapshot()
}

// Unmount cancels in-flight fetches and discards their results
func (h *Hook[T]) Unmount() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.mounted {
		return
	}
	h.mounted = false
	h.cancel()
}
