package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/session"
)

type retriedKey struct{}

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

func isTokenEndpoint(path string) bool {
	return strings.HasSuffix(path, TokenPath) || strings.HasSuffix(path, TokenRefreshPath)
}

// authTransport attaches the bearer token and renews it once when a request is rejected with 401
type authTransport struct {
	base       http.RoundTripper
	session    *session.Store
	nav        navigation.Navigator
	loginPath  string
	refreshURL string
	timeout    time.Duration
	group      singleflight.Group
	log        zerolog.Logger
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isTokenEndpoint(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	access, err := t.session.AccessToken(ctx)
	if err != nil {
		t.log.Warn().Err(err).Msg("Could not read access token")
		access = ""
	}

	out := req.Clone(ctx)
	out.Header.Del("Authorization")
	if access != "" {
		out.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRetried(ctx) {
		return resp, nil
	}

	retry := req.Clone(withRetried(ctx))
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			t.log.Warn().Str("path", req.URL.Path).Msg("Request body cannot be replayed, not refreshing")
			return resp, nil
		}
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	if _, err := t.refresh(ctx, access); err != nil {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return t.RoundTrip(retry)
}

// refresh obtains a fresh access token. Concurrent callers share one refresh call,
// and a caller whose token was already replaced gets the stored token back.
func (t *authTransport) refresh(ctx context.Context, stale string) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		if t.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}

		if current, err := t.session.AccessToken(ctx); err == nil && current != "" && current != stale {
			return current, nil
		}

		token, err := t.requestRefresh(ctx)
		if err != nil {
			t.expire(ctx, err)
			return "", err
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *authTransport) requestRefresh(ctx context.Context) (string, error) {
	refresh, err := t.session.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refresh == "" {
		return "", apperrors.ErrRefreshTokenMissing
	}

	body, err := json.Marshal(models.RefreshRequest{Refresh: refresh})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &apperrors.APIError{Status: resp.StatusCode, Method: req.Method, Path: req.URL.Path, Body: data}
	}

	var out models.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.Access == "" {
		return "", apperrors.ErrTokenInvalid
	}

	if err := t.session.SetAccessToken(ctx, out.Access); err != nil {
		return "", err
	}
	if out.Refresh != "" {
		if err := t.session.SetRefreshToken(ctx, out.Refresh); err != nil {
			return "", err
		}
	}
	t.log.Debug().Msg("Access token refreshed")
	return out.Access, nil
}

// expire ends the session after a failed refresh and sends the user to the login screen
func (t *authTransport) expire(ctx context.Context, cause error) {
	t.log.Warn().Err(cause).Msg("Token refresh failed, ending session")
	if err := t.session.Clear(ctx); err != nil {
		t.log.Error().Err(err).Msg("Failed to clear session")
	}
	if t.nav != nil && t.nav.Current().Path != t.loginPath {
		t.nav.Navigate(t.loginPath)
	}
}
