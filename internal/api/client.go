// Package api is the HTTP client of the school administration REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/session"
)

// API paths relative to the base URL
const (
	TokenPath        = "/token/"
	TokenRefreshPath = "/token/refresh/"
	StudentsPath     = "/aluno/"
	TeachersPath     = "/professor/"
	ClassesPath      = "/turma/"
	ClassChoicesPath = "/turma/choices/"
	SubjectsPath     = "/disciplina/"
	DashboardPath    = "/dashboard/"
)

// Default settings
const (
	DefaultBaseURL = "http://127.0.0.1:8000/api"
	DefaultTimeout = 10 * time.Second
)

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 64 << 10

// Config configures a Client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	LoginPath string
}

// Option configures a Client
type Option func(*Client)

// WithTransport replaces the underlying transport the auth interceptor wraps
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// Client talks to the API with bearer authentication and transparent token refresh
type Client struct {
	baseURL string
	http    *http.Client
	base    http.RoundTripper
	auth    *authTransport
	session *session.Store
	nav     navigation.Navigator
	log     zerolog.Logger
}

// New creates a Client
func New(cfg Config, store *session.Store, nav navigation.Navigator, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = navigation.LoginPath
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		base:    http.DefaultTransport,
		session: store,
		nav:     nav,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.auth = &authTransport{
		base:       c.base,
		session:    store,
		nav:        nav,
		loginPath:  cfg.LoginPath,
		refreshURL: c.baseURL + TokenRefreshPath,
		timeout:    cfg.Timeout,
		log:        c.log.With().Str("component", "auth").Logger(),
	}
	c.http = &http.Client{
		Transport: c.auth,
		Timeout:   cfg.Timeout,
	}
	return c
}

// Session returns the credential store used by the client
func (c *Client) Session() *session.Store {
	return c.session
}

// URL resolves an API path against the base URL
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// NewRequest builds a request with a JSON body; a nil body sends none
func (c *Client) NewRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req and decodes a 2xx JSON response into out (when non-nil).
// Non-2xx responses return *apperrors.APIError; network failures wrap apperrors.ErrTransport.
func (c *Client) Do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Error().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("Request failed")
		return apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &apperrors.APIError{
			Status: resp.StatusCode,
			Method: req.Method,
			Path:   req.URL.Path,
			Body:   body,
		}
		c.log.Debug().Int("status", resp.StatusCode).Str("method", req.Method).Str("path", req.URL.Path).Msg("API error response")
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Login exchanges credentials for a token pair and stores it in the session.
// Any failure leaves the session cleared.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	var pair models.TokenPair
	if err := c.call(ctx, http.MethodPost, TokenPath, creds, &pair); err != nil {
		c.clearSession(ctx)
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "login rejected").WithDetails(map[string]interface{}{"status": apiErr.Status})
		}
		return err
	}
	if pair.Access == "" || pair.Refresh == "" {
		c.clearSession(ctx)
		return apperrors.NewCustomError(apperrors.ErrTokenInvalid, "token response without tokens")
	}
	if err := c.session.SignIn(ctx, pair.Access, pair.Refresh); err != nil {
		return err
	}
	c.log.Info().Str("username", creds.Username).Msg("Signed in")
	return nil
}

// Logout forgets the stored credentials
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

func (c *Client) clearSession(ctx context.Context) {
	if err := c.session.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear session")
	}
}

// Students returns the /aluno/ resource
func (c *Client) Students() *Resource[models.Student] {
	return NewResource[models.Student](c, StudentsPath)
}

// Classes returns the /turma/ resource
func (c *Client) Classes() *Resource[models.Class] {
	return NewResource[models.Class](c, ClassesPath)
}

// Subjects returns the /disciplina/ resource
func (c *Client) Subjects() *Resource[models.Subject] {
	return NewResource[models.Subject](c, SubjectsPath)
}

// ClassChoices fetches the option lists of the class form
func (c *Client) ClassChoices(ctx context.Context) (models.ClassChoices, error) {
	var choices models.ClassChoices
	err := c.call(ctx, http.MethodGet, ClassChoicesPath, nil, &choices)
	return choices, err
}

// Dashboard fetches the dashboard summary
func (c *Client) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	err := c.call(ctx, http.MethodGet, DashboardPath, nil, &d)
	return d, err
}
