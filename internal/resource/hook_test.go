package resource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartsecretaria/secretaria/internal/models"
)

func TestHookLoadsData(t *testing.T) {
	h := New(func(ctx context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	}, "falhou", WithInitial([]string{}))

	before := h.Snapshot()
	if !before.Loading || before.Data == nil || len(before.Data) != 0 {
		t.Fatalf("expected loading with empty initial data, got %+v", before)
	}

	h.Mount(context.Background())
	h.Wait()

	snap := h.Snapshot()
	if snap.Loading || snap.Error != "" || len(snap.Data) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestHookErrorIsStatic(t *testing.T) {
	h := New(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("dial tcp 127.0.0.1:8000: connection refused")
	}, StudentsError, WithInitial([]string{}))

	snap := h.Load(context.Background())
	if snap.Error != StudentsError {
		t.Fatalf("expected static message, got %q", snap.Error)
	}
	if snap.Loading {
		t.Fatalf("expected loading to end on error")
	}
	if snap.Data == nil {
		t.Fatalf("expected initial data to be kept")
	}
}

func TestHookRefetchClearsError(t *testing.T) {
	var calls int32
	h := New(func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, errors.New("boom")
		}
		return 42, nil
	}, "falhou")

	if snap := h.Load(context.Background()); snap.Error == "" {
		t.Fatalf("expected first load to fail")
	}
	snap := h.Load(context.Background())
	if snap.Error != "" || snap.Data != 42 {
		t.Fatalf("expected refetch to recover, got %+v", snap)
	}
}

func TestHookLatestRefetchWins(t *testing.T) {
	slow := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	h := New(func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-slow
			return "old", nil
		}
		return "new", nil
	}, "falhou")

	h.Mount(context.Background())
	<-started
	h.Refetch()

	deadline := time.Now().Add(time.Second)
	for h.Snapshot().Data != "new" && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(slow)
	h.Wait()

	if got := h.Snapshot().Data; got != "new" {
		t.Fatalf("expected latest result, got %q", got)
	}
}

func TestHookUnmountDiscardsLateResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var sawCancel atomic.Bool
	h := New(func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return "late", nil
	}, "falhou", WithInitial("initial"))

	h.Mount(context.Background())
	<-started
	h.Unmount()
	close(release)
	h.Wait()

	snap := h.Snapshot()
	if snap.Data != "initial" {
		t.Fatalf("expected late result to be discarded, got %q", snap.Data)
	}
	if !sawCancel.Load() {
		t.Fatalf("expected fetch context to be cancelled")
	}

	h.Refetch()
	h.Wait()
	if h.Snapshot().Data != "initial" {
		t.Fatalf("expected refetch after unmount to be ignored")
	}
}

func TestSubjectNames(t *testing.T) {
	s := &SubjectsHook{Hook: New(func(ctx context.Context) ([]models.Subject, error) {
		return []models.Subject{{ID: 1, Name: "Matemática"}, {ID: 3, Name: "História"}}, nil
	}, SubjectsError, WithInitial([]models.Subject{}))}

	s.Load(context.Background())

	if s.NameMap()[3] != "História" {
		t.Fatalf("expected name map, got %v", s.NameMap())
	}
	names := s.Names([]int64{3, 2, 1})
	if len(names) != 2 || names[0] != "História" || names[1] != "Matemática" {
		t.Fatalf("expected ordered known names, got %v", names)
	}
}

func TestHookConcurrentLoads(t *testing.T) {
	var calls int32
	h := New(func(ctx context.Context) (int32, error) {
		return atomic.AddInt32(&calls, 1), nil
	}, "falhou")
	defer h.Unmount()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if snap := h.Load(context.Background()); snap.Error != "" {
					t.Errorf("expected no error, got %q", snap.Error)
					return
				}
			}
		}()
	}
	wg.Wait()
	h.Wait()

	snap := h.Snapshot()
	if snap.Loading || snap.Data == 0 {
		t.Fatalf("expected a finished load, got %+v", snap)
	}
}
