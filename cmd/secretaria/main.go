package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/smartsecretaria/secretaria/internal/bootstrap"
	"github.com/smartsecretaria/secretaria/internal/pkg/logger"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliApp carries the frontend between Before, the actions and After
type cliApp struct {
	fe *bootstrap.Frontend
}

func newApp() *cli.App {
	a := &cliApp{}
	return &cli.App{
		Name:    "secretaria",
		Usage:   "secretaria escolar: alunos, professores e turmas",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "arquivo de configuração YAML",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.statusCommand(),
			a.dashboardCommand(),
			a.studentsCommand(),
			a.teachersCommand(),
			a.classesCommand(),
			a.subjectsCommand(),
		},
	}
}

func (a *cliApp) before(c *cli.Context) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("configuração inválida: %v", err), 2)
	}

	fe, err := bootstrap.BuildFrontend(c.Context, cfg, lgr)
	if err != nil {
		return cli.Exit(fmt.Sprintf("não foi possível abrir a sessão: %v", err), 2)
	}
	a.fe = fe
	return nil
}

func (a *cliApp) after(*cli.Context) error {
	if a.fe == nil {
		return nil
	}
	if err := a.fe.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close session storage")
	}
	return nil
}
