// Package screens holds the behaviour of the front-end screens: login, lists and forms.
// A screen reads and writes navigation state, drives a form.State and talks to the API.
package screens

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/session"
)

// User-facing messages
const (
	LoginFailedMessage = "Usuário ou senha inválidos. Por favor, tente novamente."
	LoadFailedMessage  = "Erro ao carregar dados. Tente novamente."
)

// Login is the sign-in screen
type Login struct {
	client *api.Client
	nav    navigation.Navigator
	log    zerolog.Logger
}

// NewLogin creates a Login screen
func NewLogin(client *api.Client, nav navigation.Navigator, log zerolog.Logger) *Login {
	return &Login{client: client, nav: nav, log: log}
}

// Submit signs in and opens the dashboard. Every failure carries LoginFailedMessage
// as its user message and leaves the session cleared.
func (l *Login) Submit(ctx context.Context, username, password string) error {
	creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := l.client.Login(ctx, creds); err != nil {
		l.log.Warn().Err(err).Str("username", creds.Username).Msg("Login failed")
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "login failed").
			WithStatusMsg(LoginFailedMessage).
			WithCause(err)
	}

	l.log.Info().Str("username", creds.Username).Msg("Login succeeded")
	l.nav.Navigate(navigation.DashboardPath)
	return nil
}

// Logout clears the session and returns to the login screen
func Logout(ctx context.Context, client *api.Client, nav navigation.Navigator) error {
	err := client.Logout(ctx)
	nav.Navigate(navigation.LoginPath)
	return err
}

// RequireAuth reports whether a protected screen may open; otherwise it navigates to login
func RequireAuth(ctx context.Context, store *session.Store, nav navigation.Navigator) (bool, error) {
	ok, err := store.IsAuthenticated(ctx)
	if err != nil {
		nav.Navigate(navigation.LoginPath)
		return false, err
	}
	if !ok {
		nav.Navigate(navigation.LoginPath)
	}
	return ok, nil
}
