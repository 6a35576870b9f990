package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
	"github.com/smartsecretaria/secretaria/internal/pkg/filestorage"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

func newServices(t *testing.T) (*services.Services, *repositories.Repositories) {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8000/media")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Minute, RefreshTokenExp: time.Hour})
	repos := repositories.NewRepositories()
	return services.NewServices(repos, jwtService, storage, services.Options{Policy: validation.Strict}, zerolog.Nop()), repos
}

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	svc, repos := newServices(t)
	admin := Admin{Username: "admin", Password: "admin123"}

	if err := CreateDefaultData(ctx, svc, repos, admin, true, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected seed error: %v", err)
	}
	if repos.Subjects.Count(ctx) != 6 || repos.Teachers.Count(ctx) != 2 || repos.Classes.Count(ctx) != 2 || repos.Students.Count(ctx) != 2 {
		t.Fatalf("unexpected counts: %d subjects, %d teachers, %d classes, %d students",
			repos.Subjects.Count(ctx), repos.Teachers.Count(ctx), repos.Classes.Count(ctx), repos.Students.Count(ctx))
	}
	if len(repos.Events.All()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(repos.Events.All()))
	}
	for _, c := range repos.Classes.List(ctx) {
		if c.Name == "" || c.Level == "" {
			t.Fatalf("expected generated class name and level, got %+v", c)
		}
	}

	if _, err := svc.Auth.ObtainTokenPair(ctx, models.Credentials{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("expected seeded admin to sign in, got %v", err)
	}

	// a second run keeps the existing data
	if err := CreateDefaultData(ctx, svc, repos, admin, true, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if repos.Students.Count(ctx) != 2 || repos.Subjects.Count(ctx) != 6 {
		t.Fatalf("expected seed to be idempotent")
	}
}

func TestCreateDefaultDataAdminOnly(t *testing.T) {
	ctx := context.Background()
	svc, repos := newServices(t)

	if err := CreateDefaultData(ctx, svc, repos, Admin{Username: "secretaria", Password: "s3nha"}, false, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repos.Students.Count(ctx) != 0 || !repos.UserRepository.Exists(ctx, "secretaria") {
		t.Fatalf("expected only the account to be created")
	}
}
