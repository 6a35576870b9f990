package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHandleAPIError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		key    string
		want   interface{}
	}{
		{
			name:   "field errors",
			err:    apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid").WithDetails(map[string]interface{}{"cpf": "CPF inválido"}),
			status: http.StatusBadRequest,
			key:    "cpf",
			want:   []interface{}{"CPF inválido"},
		},
		{
			name:   "bad request without details",
			err:    apperrors.NewCustomError(apperrors.ErrBadRequest, "broken").WithStatusMsg("JSON inválido."),
			status: http.StatusBadRequest,
			key:    "detail",
			want:   "JSON inválido.",
		},
		{
			name:   "photo",
			err:    apperrors.NewCustomError(apperrors.ErrInvalidPhoto, "bad").WithStatusMsg("A imagem deve ter no máximo 5MB"),
			status: http.StatusBadRequest,
			key:    "foto",
			want:   []interface{}{"A imagem deve ter no máximo 5MB"},
		},
		{
			name:   "not found",
			err:    apperrors.NewResourceNotFoundError("student 3 not found"),
			status: http.StatusNotFound,
			key:    "detail",
			want:   NotFoundDetail,
		},
		{
			name:   "conflict",
			err:    apperrors.NewConflictError("Turma possui alunos matriculados."),
			status: http.StatusConflict,
			key:    "detail",
			want:   "Turma possui alunos matriculados.",
		},
		{
			name:   "credentials",
			err:    apperrors.ErrInvalidCredentials,
			status: http.StatusUnauthorized,
			key:    "detail",
			want:   InvalidCredentialsDetail,
		},
		{
			name:   "token",
			err:    apperrors.ErrTokenInvalid,
			status: http.StatusUnauthorized,
			key:    "code",
			want:   TokenNotValidCode,
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			key:    "detail",
			want:   InternalErrorDetail,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, w.Code)
			}
			body := decode(t, w)
			got, _ := json.Marshal(body[tc.key])
			want, _ := json.Marshal(tc.want)
			if string(got) != string(want) {
				t.Fatalf("expected %s=%s, got %s", tc.key, want, got)
			}
		})
	}
}

func newAuthRouter(jwt *auth.JWTService) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.Nop()))
	r.GET("/private", NewAuthMiddleware(jwt).JWTAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": Username(c)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Minute, TokenIssuer: "test"})
	router := newAuthRouter(jwt)
	access, err := jwt.GenerateAccessToken(1, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		header string
		status int
		code   string
	}{
		{"", http.StatusUnauthorized, NotAuthenticatedCode},
		{"Bearer garbage", http.StatusUnauthorized, TokenNotValidCode},
		{"Bearer " + access, http.StatusOK, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.status, w.Code)
		}
		body := decode(t, w)
		if tc.code != "" && body["code"] != tc.code {
			t.Fatalf("header %q: expected code %q, got %v", tc.header, tc.code, body["code"])
		}
		if tc.status == http.StatusOK && body["username"] != "admin" {
			t.Fatalf("expected username in context, got %v", body)
		}
		if w.Header().Get(RequestIDHeader) == "" {
			t.Fatalf("expected a request id header")
		}
	}
}

func TestRequestIDIsReused(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("expected request id abc, got %q", got)
	}
}

func TestValidateRequest(t *testing.T) {
	r := gin.New()
	r.POST("/token/", ValidateRequest[models.Credentials](), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": Body[models.Credentials](c).Username})
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/token/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"username": "admin"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	body := decode(t, w)
	msgs, _ := body["password"].([]interface{})
	if len(msgs) != 1 || msgs[0] != "Este campo é obrigatório." {
		t.Fatalf("expected password field error, got %v", body)
	}

	if w := send(`{`); w.Code != http.StatusBadRequest || decode(t, w)["detail"] == nil {
		t.Fatalf("expected parse error detail, got %d %s", w.Code, w.Body.String())
	}

	w = send(`{"username": "admin", "password": "x"}`)
	if w.Code != http.StatusOK || decode(t, w)["username"] != "admin" {
		t.Fatalf("expected bound body, got %d %s", w.Code, w.Body.String())
	}
}
