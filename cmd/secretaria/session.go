package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/resource"
	"github.com/smartsecretaria/secretaria/internal/screens"
)

const notSignedInMessage = "sessão não autenticada, execute 'secretaria login'"

// requireAuth guards every command that talks to protected endpoints
func (a *cliApp) requireAuth(c *cli.Context) error {
	ok, err := screens.RequireAuth(c.Context, a.fe.Session, a.fe.History)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit(notSignedInMessage, 1)
	}
	return nil
}

func (a *cliApp) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "entra com usuário e senha",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "usuário"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"SECRETARIA_PASSWORD"}, Required: true, Usage: "senha"},
		},
		Action: func(c *cli.Context) error {
			login := screens.NewLogin(a.fe.Client, a.fe.History, a.fe.Logger)
			if err := login.Submit(c.Context, c.String("username"), c.String("password")); err != nil {
				return cli.Exit(apperrors.UserMessage(err, screens.LoginFailedMessage), 1)
			}
			fmt.Fprintln(c.App.Writer, "Login realizado.")
			return nil
		},
	}
}

func (a *cliApp) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "encerra a sessão",
		Action: func(c *cli.Context) error {
			if err := screens.Logout(c.Context, a.fe.Client, a.fe.History); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Sessão encerrada.")
			return nil
		},
	}
}

func (a *cliApp) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "mostra a sessão atual",
		Action: func(c *cli.Context) error {
			w := c.App.Writer
			fmt.Fprintf(w, "API: %s\n", a.fe.Config.API.BaseURL)
			fmt.Fprintf(w, "Armazenamento: %s\n", a.fe.Config.Storage.Driver)
			fmt.Fprintf(w, "Validação: %s\n", a.fe.Config.Policy())

			ok, err := a.fe.Session.IsAuthenticated(c.Context)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(w, "Sessão: não autenticada")
				return nil
			}

			access, err := a.fe.Session.AccessToken(c.Context)
			if err != nil {
				return err
			}
			exp, err := auth.PeekExpiry(access)
			switch {
			case err != nil:
				fmt.Fprintln(w, "Sessão: autenticada (expiração desconhecida)")
			case exp.Before(time.Now()):
				fmt.Fprintf(w, "Sessão: autenticada, token de acesso expirado em %s (será renovado)\n", exp.Local().Format("02/01/2006 15:04"))
			default:
				fmt.Fprintf(w, "Sessão: autenticada, token de acesso válido até %s\n", exp.Local().Format("02/01/2006 15:04"))
			}
			return nil
		},
	}
}

func (a *cliApp) dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:   "dashboard",
		Usage:  "mostra o resumo da escola",
		Before: a.requireAuth,
		Action: func(c *cli.Context) error {
			hook := resource.Dashboard(a.fe.Client, a.fe.Logger)
			defer hook.Unmount()

			snap := hook.Load(c.Context)
			if snap.Error != "" {
				return cli.Exit(snap.Error, 1)
			}
			d := snap.Data
			w := c.App.Writer
			fmt.Fprintf(w, "Alunos: %d\nProfessores: %d\nTurmas: %d\nMatrículas ativas: %d\nDocumentos no mês: %d\n",
				d.TotalStudents, d.TotalTeachers, d.TotalClasses, d.ActiveEnrollments, d.DocumentsCurrentMonth)

			if len(d.UpcomingEvents) > 0 {
				fmt.Fprintln(w, "\nPróximos eventos:")
				for _, e := range d.UpcomingEvents {
					fmt.Fprintf(w, "  %s  %s\n", mask.DateToBR(e.StartDate), e.Title)
				}
			}
			if len(d.LatestStudents) > 0 {
				fmt.Fprintln(w, "\nÚltimos alunos:")
				for _, s := range d.LatestStudents {
					fmt.Fprintf(w, "  #%d %s\n", s.ID, s.FullName)
				}
			}
			if len(d.LatestActivities) > 0 {
				fmt.Fprintln(w, "\nÚltimas atividades:")
				for _, act := range d.LatestActivities {
					fmt.Fprintf(w, "  %s  %s (%s)\n", act.DateTime, act.Action, act.User.Username)
				}
			}
			return nil
		},
	}
}
