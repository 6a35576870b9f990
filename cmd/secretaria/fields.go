package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/smartsecretaria/secretaria/internal/form"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
)

type fieldKind int

const (
	textField fieldKind = iota
	dateField
	numberField
)

// fieldFlag binds a command line flag to a JSON field of a form
type fieldFlag struct {
	flag  string
	field string
	usage string
	kind  fieldKind
}

func cliFlags(specs []fieldFlag) []cli.Flag {
	flags := make([]cli.Flag, 0, len(specs))
	for _, s := range specs {
		switch s.kind {
		case numberField:
			flags = append(flags, &cli.Int64Flag{Name: s.flag, Usage: s.usage})
		case dateField:
			flags = append(flags, &cli.StringFlag{Name: s.flag, Usage: s.usage + " (DD/MM/AAAA)"})
		default:
			flags = append(flags, &cli.StringFlag{Name: s.flag, Usage: s.usage})
		}
	}
	return flags
}

// applyFlags sets the fields whose flags were given. Fields with a masked input
// go through their setter.
func applyFlags(c *cli.Context, specs []fieldFlag, set func(field string, value interface{}) error, masked map[string]func(string) error) error {
	for _, s := range specs {
		if !c.IsSet(s.flag) {
			continue
		}

		if setter, ok := masked[s.field]; ok {
			if err := setter(c.String(s.flag)); err != nil {
				return err
			}
			continue
		}

		var value interface{}
		switch s.kind {
		case numberField:
			value = c.Int64(s.flag)
		case dateField:
			iso, err := toISODate(c.String(s.flag))
			if err != nil {
				return cli.Exit(fmt.Sprintf("--%s: %v", s.flag, err), 2)
			}
			value = iso
		default:
			value = c.String(s.flag)
		}
		if err := set(s.field, value); err != nil {
			return err
		}
	}
	return nil
}

// toISODate accepts DD/MM/YYYY or YYYY-MM-DD
func toISODate(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	if strings.Contains(input, "-") {
		return input, nil
	}
	if !mask.IsValidDate(input) {
		return "", errors.New("data inválida")
	}
	return mask.DateToISO(input), nil
}

func parseID(c *cli.Context) (int64, error) {
	arg := c.Args().First()
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("id inválido: %q", arg), 2)
	}
	return id, nil
}

// formFailure renders a failed submit: one line per field error, or the general message
func formFailure(err error, fieldErrs map[string]string) error {
	if len(fieldErrs) == 0 {
		return cli.Exit(apperrors.UserMessage(err, form.SaveFailedMessage), 1)
	}

	names := make([]string, 0, len(fieldErrs))
	for name := range fieldErrs {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, fieldErrs[name]))
	}
	return cli.Exit(strings.Join(lines, "\n"), 1)
}

// deleteFailure prefers the API's explanation over the generic message
func deleteFailure(err error) error {
	msg := apperrors.UserMessage(err, err.Error())
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if detail := apiErr.Detail(); detail != "" {
			msg += " " + detail
		}
	}
	return cli.Exit(msg, 1)
}

func newTable(c *cli.Context, header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprint(col)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func createFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("não foi possível criar %s: %v", path, err), 1)
	}
	return f, nil
}

func exportFlag(def string) cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: def, Usage: "arquivo XLSX de saída"}
}
