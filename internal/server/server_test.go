package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/config"
	"github.com/smartsecretaria/secretaria/internal/models"
)

type apiFixture struct {
	ts     *httptest.Server
	access string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	cfg.MockAPI.Mode = "production"
	cfg.MockAPI.JWT.Secret = "test-secret"
	cfg.MockAPI.MediaPath = t.TempDir()
	cfg.MockAPI.Username = "admin"
	cfg.MockAPI.Password = "admin123"
	cfg.MockAPI.Seed = true

	srv, err := New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected server error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	f := &apiFixture{ts: ts}
	var pair models.TokenPair
	if status := f.do(t, http.MethodPost, "/api/token/", models.Credentials{Username: "admin", Password: "admin123"}, &pair); status != http.StatusOK {
		t.Fatalf("expected login to succeed, got %d", status)
	}
	f.access = pair.Access
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.access != "" {
		req.Header.Set("Authorization", "Bearer "+f.access)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestPing(t *testing.T) {
	f := newAPI(t)
	var body map[string]string
	if status := f.do(t, http.MethodGet, "/ping", nil, &body); status != http.StatusOK || body["message"] != "pong" {
		t.Fatalf("unexpected ping %d %v", status, body)
	}
}

func TestAuthenticationErrors(t *testing.T) {
	f := newAPI(t)
	f.access = ""

	var body map[string]interface{}
	if status := f.do(t, http.MethodGet, "/api/aluno/", nil, &body); status != http.StatusUnauthorized || body["code"] != "not_authenticated" {
		t.Fatalf("expected not_authenticated, got %d %v", status, body)
	}

	f.access = "garbage"
	body = nil
	if status := f.do(t, http.MethodGet, "/api/aluno/", nil, &body); status != http.StatusUnauthorized || body["code"] != "token_not_valid" {
		t.Fatalf("expected token_not_valid, got %d %v", status, body)
	}

	f.access = ""
	body = nil
	if status := f.do(t, http.MethodPost, "/api/token/", models.Credentials{Username: "admin", Password: "nope"}, &body); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d %v", status, body)
	}

	body = nil
	if status := f.do(t, http.MethodPost, "/api/token/refresh/", "{}", &body); status != http.StatusBadRequest || body["refresh"] == nil {
		t.Fatalf("expected refresh field error, got %d %v", status, body)
	}

	body = nil
	if status := f.do(t, http.MethodPost, "/api/token/refresh/", models.RefreshRequest{Refresh: "unknown"}, &body); status != http.StatusUnauthorized || body["code"] != "token_not_valid" {
		t.Fatalf("expected token_not_valid for unknown refresh, got %d %v", status, body)
	}
}

func TestRecordEndpoints(t *testing.T) {
	f := newAPI(t)

	var students []models.Student
	if status := f.do(t, http.MethodGet, "/api/aluno/", nil, &students); status != http.StatusOK || len(students) != 2 {
		t.Fatalf("expected 2 seeded students, got %d %d", status, len(students))
	}

	var body map[string]interface{}
	if status := f.do(t, http.MethodGet, "/api/aluno/999/", nil, &body); status != http.StatusNotFound || body["detail"] != "Não encontrado." {
		t.Fatalf("expected not found, got %d %v", status, body)
	}
	body = nil
	if status := f.do(t, http.MethodGet, "/api/aluno/abc/", nil, &body); status != http.StatusNotFound {
		t.Fatalf("expected not found for a non-numeric id, got %d", status)
	}

	body = nil
	invalid := models.Student{FullName: "Jo", CPF: "12345678900", ClassID: students[0].ClassID}
	if status := f.do(t, http.MethodPost, "/api/aluno/", invalid, &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %v", status, body)
	}
	for _, field := range []string{"nome_completo", "cpf", "endereco", "telefone_contato"} {
		msgs, ok := body[field].([]interface{})
		if !ok || len(msgs) != 1 {
			t.Fatalf("expected one message for %s, got %v", field, body)
		}
	}

	var patched models.Student
	if status := f.do(t, http.MethodPatch, "/api/aluno/1/", map[string]string{"email": "novo@email.com"}, &patched); status != http.StatusOK {
		t.Fatalf("expected patch to succeed, got %d", status)
	}
	if patched.Email != "novo@email.com" || patched.FullName != students[0].FullName {
		t.Fatalf("expected only email changed, got %+v", patched)
	}

	body = nil
	if status := f.do(t, http.MethodDelete, "/api/turma/1/", nil, &body); status != http.StatusConflict || body["detail"] == nil {
		t.Fatalf("expected conflict deleting a class with students, got %d %v", status, body)
	}
	if status := f.do(t, http.MethodDelete, "/api/aluno/1/", nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
}

func TestChoicesAndDashboard(t *testing.T) {
	f := newAPI(t)

	var choices models.ClassChoices
	if status := f.do(t, http.MethodGet, "/api/turma/choices/", nil, &choices); status != http.StatusOK || len(choices.Grades) != 12 {
		t.Fatalf("unexpected choices %d %+v", status, choices)
	}

	var d models.Dashboard
	if status := f.do(t, http.MethodGet, "/api/dashboard/", nil, &d); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if d.TotalStudents != 2 || d.TotalTeachers != 2 || d.TotalClasses != 2 || d.ActiveEnrollments != 2 {
		t.Fatalf("unexpected totals %+v", d)
	}
}
