package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
	"github.com/smartsecretaria/secretaria/internal/pkg/filestorage"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

func newTestServices(t *testing.T, rotate bool) (*Services, *repositories.Repositories) {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "http://localhost:8000/media")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
	repos := repositories.NewRepositories()
	svc := NewServices(repos, jwtService, storage, Options{Policy: validation.Strict, RotateRefresh: rotate}, zerolog.Nop())
	return svc, repos
}

func raw(t *testing.T, v interface{}) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func details(t *testing.T, err error) map[string]interface{} {
	t.Helper()
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) || !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ce.Details
}

func seedTeacherAndClass(t *testing.T, svc *Services) (models.Teacher, models.Class) {
	t.Helper()
	ctx := context.Background()
	teacher, err := svc.Teachers.Create(ctx, raw(t, map[string]interface{}{
		"nome":             "Maria Silva",
		"cpf":              "111.444.777-35",
		"email":            "maria@escola.com",
		"telefone_contato": "(11) 91234-5678",
		"data_admissao":    "2020-02-01",
	}), nil, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := json.Marshal(map[string]interface{}{
		"serie": 1, "turma_letra": "a", "ano": 2024, "periodo": "M", "professor_responsavel": teacher.ID,
	})
	class, err := svc.Classes.Create(ctx, body, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return teacher, class
}

func studentBody(classID int64) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"nome_completo":    "Ana Souza",
		"data_nascimento":  "2015-05-01",
		"endereco":         "Rua A, 10",
		"telefone_contato": "(11) 98765-4321",
		"cpf":              "529.982.247-25",
		"turma":            classID,
	})
	return body
}

func TestClassNameIsGenerated(t *testing.T) {
	svc, _ := newTestServices(t, false)
	_, class := seedTeacherAndClass(t, svc)

	if class.Name != "1º Ano A - Matutino" {
		t.Fatalf("expected generated name, got %q", class.Name)
	}
	if class.Level != models.LevelElementary {
		t.Fatalf("expected level derived from grade, got %q", class.Level)
	}
}

func TestClassRequiresExistingTeacher(t *testing.T) {
	svc, _ := newTestServices(t, false)
	body := []byte(`{"serie":1,"turma_letra":"A","ano":2024,"periodo":"M","professor_responsavel":42}`)

	_, err := svc.Classes.Create(context.Background(), body, "admin")
	if got := details(t, err)["professor_responsavel"]; got != `Pk inválido "42" - objeto não existe.` {
		t.Fatalf("unexpected message %v", got)
	}
}

func TestStudentCreateNormalizesDocuments(t *testing.T) {
	svc, repos := newTestServices(t, false)
	_, class := seedTeacherAndClass(t, svc)

	student, err := svc.Students.Create(context.Background(), studentBody(class.ID), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if student.CPF != "52998224725" || student.Phone != "11987654321" {
		t.Fatalf("expected digits only, got cpf %q phone %q", student.CPF, student.Phone)
	}
	if latest := repos.ActivityRepository.Latest(context.Background(), 1); len(latest) != 1 || latest[0].Action != "Aluno Ana Souza cadastrado" {
		t.Fatalf("expected activity recorded, got %+v", latest)
	}
}

func TestStudentCreateRejectsUnknownClassAndDuplicateCPF(t *testing.T) {
	svc, _ := newTestServices(t, false)
	_, class := seedTeacherAndClass(t, svc)
	ctx := context.Background()

	_, err := svc.Students.Create(ctx, studentBody(99), "admin")
	if got := details(t, err)["turma"]; got != `Pk inválido "99" - objeto não existe.` {
		t.Fatalf("unexpected message %v", got)
	}

	if _, err := svc.Students.Create(ctx, studentBody(class.ID), "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.Students.Create(ctx, studentBody(class.ID), "admin")
	if got := details(t, err)["cpf"]; got != "aluno com este cpf já existe." {
		t.Fatalf("unexpected message %v", got)
	}
}

func TestStudentCreateRejectsInvalidFields(t *testing.T) {
	svc, _ := newTestServices(t, false)
	_, err := svc.Students.Create(context.Background(), []byte(`{"nome_completo":"Al","cpf":"123"}`), "admin")

	d := details(t, err)
	if d["nome_completo"] != "Nome deve ter no mínimo 3 caracteres" || d["cpf"] != "CPF inválido" {
		t.Fatalf("unexpected details %v", d)
	}
	if d["turma"] != "Selecione uma turma" {
		t.Fatalf("expected missing class message, got %v", d["turma"])
	}
}

func TestStudentRejectsUnknownField(t *testing.T) {
	svc, _ := newTestServices(t, false)
	_, err := svc.Students.Create(context.Background(), []byte(`{"apelido":"x"}`), "admin")
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestStudentPatchKeepsOtherFieldsAndIgnoresReadOnly(t *testing.T) {
	svc, _ := newTestServices(t, false)
	_, class := seedTeacherAndClass(t, svc)
	ctx := context.Background()

	created, err := svc.Students.Create(ctx, studentBody(class.ID), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Students.Update(ctx, created.ID, raw(t, map[string]interface{}{
		"endereco": "Rua B, 20",
		"id":       999,
		"foto":     "http://elsewhere/x.png",
	}), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID || updated.Photo != nil {
		t.Fatalf("expected read-only fields untouched, got %+v", updated)
	}
	if updated.Address != "Rua B, 20" || updated.FullName != "Ana Souza" {
		t.Fatalf("expected patched address only, got %+v", updated)
	}
}

func TestDeleteProtectsReferencedRecords(t *testing.T) {
	svc, _ := newTestServices(t, false)
	teacher, class := seedTeacherAndClass(t, svc)
	ctx := context.Background()

	if _, err := svc.Students.Create(ctx, studentBody(class.ID), "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Teachers.Delete(ctx, teacher.ID, "admin"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict deleting a responsible teacher, got %v", err)
	}
	if err := svc.Classes.Delete(ctx, class.ID, "admin"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict deleting a class with students, got %v", err)
	}
	if err := svc.Students.Delete(ctx, 1, "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Classes.Delete(ctx, class.ID, "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Teachers.Delete(ctx, teacher.ID, "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Teachers.Get(ctx, teacher.ID); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTeacherSubjectsAndPhoto(t *testing.T) {
	svc, _ := newTestServices(t, false)
	ctx := context.Background()

	math, err := svc.Subjects.Create(ctx, []byte(`{"nome":"Matemática"}`), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := raw(t, map[string]interface{}{
		"nome":             "Carlos Lima",
		"cpf":              "52998224725",
		"email":            "carlos@escola.com",
		"telefone_contato": "11912345678",
		"data_admissao":    "2021-03-01",
		"disciplinas":      []int64{math.ID, 77},
	})
	_, err = svc.Teachers.Create(ctx, fields, nil, "admin")
	if got := details(t, err)["disciplinas"]; got != `Pk inválido "77" - objeto não existe.` {
		t.Fatalf("unexpected message %v", got)
	}

	fields["disciplinas"] = json.RawMessage(`[1]`)
	photo := &upload.Photo{Filename: "foto.png", MIME: "image/png", Data: []byte("png")}
	teacher, err := svc.Teachers.Create(ctx, fields, photo, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if teacher.Photo == nil || !teacher.HasSubject(math.ID) {
		t.Fatalf("expected photo and subject, got %+v", teacher)
	}

	if err := svc.Subjects.Delete(ctx, math.ID, "admin"); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict deleting a referenced subject, got %v", err)
	}
	if _, err := svc.Subjects.Create(ctx, []byte(`{"nome":"matemática"}`), "admin"); details(t, err)["nome"] != "disciplina com este nome já existe." {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestAuthObtainAndRefresh(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		svc, _ := newTestServices(t, rotate)
		ctx := context.Background()

		if _, err := svc.Auth.CreateUser(ctx, "admin", "admin123"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Auth.ObtainTokenPair(ctx, models.Credentials{Username: "admin", Password: "wrong"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}

		pair, err := svc.Auth.ObtainTokenPair(ctx, models.Credentials{Username: "admin", Password: "admin123"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		res, err := svc.Auth.RefreshAccessToken(ctx, pair.Refresh)
		if err != nil || res.Access == "" {
			t.Fatalf("expected new access token, got %+v (%v)", res, err)
		}

		_, err = svc.Auth.RefreshAccessToken(ctx, pair.Refresh)
		if rotate && !errors.Is(err, apperrors.ErrTokenInvalid) {
			t.Fatalf("expected rotated refresh token to be revoked, got %v", err)
		}
		if !rotate && err != nil {
			t.Fatalf("expected refresh token to stay valid, got %v", err)
		}
		if rotate && res.Refresh == "" {
			t.Fatalf("expected a rotated refresh token")
		}

		svc.Auth.RevokeAll(ctx)
		if _, err := svc.Auth.RefreshAccessToken(ctx, "unknown"); !errors.Is(err, apperrors.ErrTokenInvalid) {
			t.Fatalf("expected invalid token, got %v", err)
		}
	}
}

func TestDashboardSummary(t *testing.T) {
	svc, repos := newTestServices(t, false)
	_, class := seedTeacherAndClass(t, svc)
	ctx := context.Background()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.Dashboard.now = func() time.Time { return now }

	repos.Events.Add(models.UpcomingEvent{Title: "Reunião", StartDate: "2024-03-20", Kind: "reuniao"})
	repos.Events.Add(models.UpcomingEvent{Title: "Passado", StartDate: "2024-01-01", Kind: "feriado"})
	repos.Events.Add(models.UpcomingEvent{Title: "Provas", StartDate: "2024-03-12", Kind: "prova"})

	if _, err := svc.Students.Create(ctx, studentBody(class.ID), "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := svc.Dashboard.Summary(ctx)
	if d.TotalStudents != 1 || d.TotalTeachers != 1 || d.TotalClasses != 1 || d.ActiveEnrollments != 1 {
		t.Fatalf("unexpected totals %+v", d)
	}
	if len(d.UpcomingEvents) != 2 || d.UpcomingEvents[0].Title != "Provas" {
		t.Fatalf("expected upcoming events soonest first, got %+v", d.UpcomingEvents)
	}
	if len(d.LatestStudents) != 1 || d.LatestStudents[0].FullName != "Ana Souza" {
		t.Fatalf("unexpected latest students %+v", d.LatestStudents)
	}
	if len(d.LatestActivities) != 3 || d.LatestActivities[0].Action != "Aluno Ana Souza cadastrado" {
		t.Fatalf("unexpected latest activities %+v", d.LatestActivities)
	}
}
