package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

func newSubjects() *Table[models.Subject] {
	return NewTable("disciplina", func(s *models.Subject) *int64 { return &s.ID })
}

func TestTableInsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	table := newSubjects()

	a, err := table.Insert(ctx, models.Subject{Name: "Artes"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := table.Insert(ctx, models.Subject{Name: "Biologia"}, nil)
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", a.ID, b.ID)
	}

	list := table.List(ctx)
	if len(list) != 2 || list[0].Name != "Artes" || list[1].Name != "Biologia" {
		t.Fatalf("expected records ordered by id, got %+v", list)
	}
}

func TestTableConflict(t *testing.T) {
	ctx := context.Background()
	table := newSubjects()
	sameName := func(name string) func(models.Subject) bool {
		return func(existing models.Subject) bool { return existing.Name == name }
	}

	first, _ := table.Insert(ctx, models.Subject{Name: "Artes"}, sameName("Artes"))
	if _, err := table.Insert(ctx, models.Subject{Name: "Artes"}, sameName("Artes")); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// a record never conflicts with itself
	first.Name = "Artes"
	if err := table.Replace(ctx, first, sameName("Artes")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Count(ctx) != 1 {
		t.Fatalf("expected 1 record, got %d", table.Count(ctx))
	}
}

func TestTableMissingRecords(t *testing.T) {
	ctx := context.Background()
	table := newSubjects()

	if _, err := table.Get(ctx, 9); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := table.Replace(ctx, models.Subject{ID: 9}, nil); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := table.Delete(ctx, 9); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if table.Exists(ctx, 9) || table.Any(ctx, func(models.Subject) bool { return true }) {
		t.Fatalf("expected empty table")
	}
}

func TestTableConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	table := newSubjects()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = table.Insert(ctx, models.Subject{Name: "x"}, nil)
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, s := range table.List(ctx) {
		if seen[s.ID] {
			t.Fatalf("duplicate id %d", s.ID)
		}
		seen[s.ID] = true
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 records, got %d", len(seen))
	}
}
