package api

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
	"github.com/smartsecretaria/secretaria/internal/session"
)

// fakeAPI scripts the server side: token refreshes and every other request are counted apart
type fakeAPI struct {
	mu        sync.Mutex
	protected int
	refreshes int
	tokens    int
	failWith  error

	onProtected func(req *http.Request, n int) *http.Response
	onRefresh   func(req *http.Request) *http.Response
	onToken     func(req *http.Request) *http.Response
}

func (f *fakeAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	if f.failWith != nil {
		f.mu.Unlock()
		return nil, f.failWith
	}
	switch {
	case strings.HasSuffix(req.URL.Path, TokenRefreshPath):
		f.refreshes++
		f.mu.Unlock()
		return f.onRefresh(req), nil
	case strings.HasSuffix(req.URL.Path, TokenPath):
		f.tokens++
		f.mu.Unlock()
		return f.onToken(req), nil
	}
	f.protected++
	n := f.protected
	f.mu.Unlock()
	return f.onProtected(req, n), nil
}

func (f *fakeAPI) counts() (protected, refreshes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.protected, f.refreshes
}

func respond(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func bearer(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
}

type fixture struct {
	api     *fakeAPI
	backend *session.MemoryBackend
	store   *session.Store
	history *navigation.History
	client  *Client
}

func newFixture(t *testing.T, api *fakeAPI) *fixture {
	t.Helper()
	backend := session.NewMemoryBackend()
	store := session.NewStore(backend, session.Keys{})
	history := navigation.NewHistory(navigation.StudentsPath)
	client := New(Config{BaseURL: "http://api.test/api", Timeout: 5 * time.Second}, store, history, WithTransport(api))
	return &fixture{api: api, backend: backend, store: store, history: history, client: client}
}

func (f *fixture) signIn(t *testing.T, access, refresh string) {
	t.Helper()
	if err := f.store.SignIn(context.Background(), access, refresh); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestValidTokenIsAttached(t *testing.T) {
	api := &fakeAPI{onProtected: func(req *http.Request, n int) *http.Response {
		if bearer(req) != "good" {
			return respond(req, 401, `{"detail":"no"}`)
		}
		return respond(req, 200, `[{"id":1,"nome":"Matemática"}]`)
	}}
	f := newFixture(t, api)
	f.signIn(t, "good", "r")

	subjects, err := f.client.Subjects().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(subjects) != 1 || subjects[0].Name != "Matemática" {
		t.Fatalf("unexpected subjects: %+v", subjects)
	}
	if p, r := api.counts(); p != 1 || r != 0 {
		t.Fatalf("expected 1 call and no refresh, got %d/%d", p, r)
	}
}

func TestUnauthorizedRefreshesOnceAndResends(t *testing.T) {
	api := &fakeAPI{
		onProtected: func(req *http.Request, n int) *http.Response {
			if bearer(req) != "fresh" {
				return respond(req, 401, `{"detail":"expired"}`)
			}
			return respond(req, 200, `{"id":4,"nome_completo":"Ana"}`)
		},
		onRefresh: func(req *http.Request) *http.Response {
			body, _ := io.ReadAll(req.Body)
			if !strings.Contains(string(body), `"refresh":"r1"`) {
				return respond(req, 401, `{}`)
			}
			return respond(req, 200, `{"access":"fresh"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "stale", "r1")

	student, err := f.client.Students().Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if student.FullName != "Ana" {
		t.Fatalf("expected resent response, got %+v", student)
	}
	if p, r := api.counts(); p != 2 || r != 1 {
		t.Fatalf("expected 2 calls and 1 refresh, got %d/%d", p, r)
	}
	if access, _ := f.store.AccessToken(context.Background()); access != "fresh" {
		t.Fatalf("expected stored access token to be replaced, got %q", access)
	}
	if refresh, _ := f.store.RefreshToken(context.Background()); refresh != "r1" {
		t.Fatalf("expected refresh token kept, got %q", refresh)
	}
}

func TestRotatedRefreshTokenIsStored(t *testing.T) {
	api := &fakeAPI{
		onProtected: func(req *http.Request, n int) *http.Response {
			if n == 1 {
				return respond(req, 401, `{}`)
			}
			return respond(req, 200, `[]`)
		},
		onRefresh: func(req *http.Request) *http.Response {
			return respond(req, 200, `{"access":"a2","refresh":"r2"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "a1", "r1")

	if _, err := f.client.Classes().List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresh, _ := f.store.RefreshToken(context.Background()); refresh != "r2" {
		t.Fatalf("expected rotated refresh token, got %q", refresh)
	}
}

func TestMissingRefreshTokenEndsSession(t *testing.T) {
	api := &fakeAPI{onProtected: func(req *http.Request, n int) *http.Response {
		return respond(req, 401, `{"detail":"expired"}`)
	}}
	f := newFixture(t, api)
	ctx := context.Background()
	_ = f.backend.Set(ctx, session.DefaultKeys.AccessToken, "stale")
	_ = f.backend.Set(ctx, session.DefaultKeys.Authenticated, "true")

	_, err := f.client.Students().List(ctx)

	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("expected original 401, got %v", err)
	}
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized sentinel, got %v", err)
	}
	if apiErr.Detail() != "expired" {
		t.Fatalf("expected original body, got %q", apiErr.Body)
	}
	if f.backend.Len() != 0 {
		t.Fatalf("expected all session keys removed")
	}
	if f.history.Current().Path != navigation.LoginPath {
		t.Fatalf("expected navigation to login, got %q", f.history.Current().Path)
	}
	if p, r := api.counts(); p != 1 || r != 0 {
		t.Fatalf("expected 1 call and no refresh, got %d/%d", p, r)
	}
}

func TestRefreshFailureEndsSession(t *testing.T) {
	statuses := []int{401, 500}
	for _, status := range statuses {
		api := &fakeAPI{
			onProtected: func(req *http.Request, n int) *http.Response {
				return respond(req, 401, `{}`)
			},
			onRefresh: func(req *http.Request) *http.Response {
				return respond(req, status, `{"detail":"token_not_valid"}`)
			},
		}
		f := newFixture(t, api)
		f.signIn(t, "stale", "r1")

		_, err := f.client.Teachers().List(context.Background())
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			t.Fatalf("status %d: expected 401 to propagate, got %v", status, err)
		}
		if f.backend.Len() != 0 {
			t.Fatalf("status %d: expected session cleared", status)
		}
		if f.history.Current().Path != navigation.LoginPath {
			t.Fatalf("status %d: expected login navigation", status)
		}
		if p, r := api.counts(); p != 1 || r != 1 {
			t.Fatalf("status %d: expected 1 call and 1 refresh, got %d/%d", status, p, r)
		}
	}
}

func TestSecondUnauthorizedIsFinal(t *testing.T) {
	api := &fakeAPI{
		onProtected: func(req *http.Request, n int) *http.Response {
			return respond(req, 401, `{}`)
		},
		onRefresh: func(req *http.Request) *http.Response {
			return respond(req, 200, `{"access":"fresh"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "stale", "r1")

	_, err := f.client.Dashboard(context.Background())
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if p, r := api.counts(); p != 2 || r != 1 {
		t.Fatalf("expected exactly one resend, got %d calls and %d refreshes", p, r)
	}
}

func TestConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		onProtected: func(req *http.Request, n int) *http.Response {
			if bearer(req) != "fresh" {
				return respond(req, 401, `{}`)
			}
			return respond(req, 200, `[]`)
		},
		onRefresh: func(req *http.Request) *http.Response {
			<-release
			return respond(req, 200, `{"access":"fresh"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "stale", "r1")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.client.Students().List(context.Background())
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, r := api.counts(); r != 1 {
		t.Fatalf("expected exactly 1 refresh, got %d", r)
	}
}

func TestResendReplaysBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	api := &fakeAPI{
		onProtected: func(req *http.Request, n int) *http.Response {
			data, _ := io.ReadAll(req.Body)
			mu.Lock()
			bodies = append(bodies, string(data))
			mu.Unlock()
			if n == 1 {
				return respond(req, 401, `{}`)
			}
			return respond(req, 201, string(data))
		},
		onRefresh: func(req *http.Request) *http.Response {
			return respond(req, 200, `{"access":"fresh"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "stale", "r1")

	created, err := f.client.Classes().Create(context.Background(), models.Class{Grade: 2, Section: "B", Year: 2025, Period: "V", TeacherID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Section != "B" {
		t.Fatalf("expected echoed class, got %+v", created)
	}
	if len(bodies) != 2 || bodies[0] != bodies[1] || bodies[1] == "" {
		t.Fatalf("expected identical bodies on both sends, got %q", bodies)
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	api := &fakeAPI{failWith: errors.New("connection refused")}
	f := newFixture(t, api)

	_, err := f.client.Students().List(context.Background())
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestLoginStoresTokens(t *testing.T) {
	api := &fakeAPI{onToken: func(req *http.Request) *http.Response {
		return respond(req, 200, `{"access":"a","refresh":"r"}`)
	}}
	f := newFixture(t, api)

	if err := f.client.Login(context.Background(), models.Credentials{Username: "u", Password: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, _ := f.store.IsAuthenticated(context.Background())
	access, _ := f.store.AccessToken(context.Background())
	if !ok || access != "a" {
		t.Fatalf("expected stored session, got %v %q", ok, access)
	}
}

func TestLoginRejectedBypassesRefresh(t *testing.T) {
	api := &fakeAPI{
		onToken: func(req *http.Request) *http.Response {
			return respond(req, 401, `{"detail":"No active account"}`)
		},
		onRefresh: func(req *http.Request) *http.Response {
			return respond(req, 200, `{"access":"x"}`)
		},
	}
	f := newFixture(t, api)
	f.signIn(t, "old", "old-r")

	err := f.client.Login(context.Background(), models.Credentials{Username: "u", Password: "bad"})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, r := api.counts(); r != 0 {
		t.Fatalf("expected no refresh for token endpoint, got %d", r)
	}
	if f.backend.Len() != 0 {
		t.Fatalf("expected session cleared after failed login")
	}
}

func TestTeacherPhotoIsMultipart(t *testing.T) {
	var fields map[string][]string
	var photoName string
	api := &fakeAPI{onProtected: func(req *http.Request, n int) *http.Response {
		_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
		if err != nil {
			return respond(req, 400, `{}`)
		}
		mr := multipart.NewReader(req.Body, params["boundary"])
		f, err := mr.ReadForm(1 << 20)
		if err != nil {
			return respond(req, 400, `{}`)
		}
		fields = f.Value
		if files := f.File[PhotoField]; len(files) == 1 {
			photoName = files[0].Filename
		}
		return respond(req, 201, `{"id":9,"nome":"João","disciplinas":[1,3]}`)
	}}
	f := newFixture(t, api)

	photo, err := upload.CheckPhoto("joao.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	teacher := models.Teacher{Name: "João", CPF: "52998224725", SubjectIDs: []int64{1, 3}}
	created, err := f.client.Teachers().CreateWithPhoto(context.Background(), teacher, photo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 9 {
		t.Fatalf("expected created teacher, got %+v", created)
	}
	if got := fields["disciplinas"]; len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("expected repeated disciplinas, got %v", got)
	}
	if fields["nome"][0] != "João" || fields["cpf"][0] != "52998224725" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if _, ok := fields["id"]; ok {
		t.Fatalf("expected id to be skipped")
	}
	if photoName != "joao.png" {
		t.Fatalf("expected photo part, got %q", photoName)
	}
}
