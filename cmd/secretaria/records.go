package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/export"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
	"github.com/smartsecretaria/secretaria/internal/resource"
	"github.com/smartsecretaria/secretaria/internal/screens"
)

var studentFields = []fieldFlag{
	{flag: "nome", field: "nome_completo", usage: "nome completo"},
	{flag: "nascimento", field: "data_nascimento", usage: "data de nascimento", kind: dateField},
	{flag: "pai", field: "nome_pai", usage: "nome do pai"},
	{flag: "mae", field: "nome_mae", usage: "nome da mãe"},
	{flag: "responsavel", field: "nome_responsavel", usage: "nome do responsável"},
	{flag: "cpf", field: "cpf", usage: "CPF"},
	{flag: "rg", field: "rg", usage: "RG"},
	{flag: "orgao", field: "orgao_expedidor", usage: "órgão expedidor"},
	{flag: "endereco", field: "endereco", usage: "endereço"},
	{flag: "telefone", field: "telefone_contato", usage: "telefone de contato"},
	{flag: "email", field: "email", usage: "email"},
	{flag: "turma", field: "turma", usage: "id da turma", kind: numberField},
}

var teacherFields = []fieldFlag{
	{flag: "nome", field: "nome", usage: "nome"},
	{flag: "cpf", field: "cpf", usage: "CPF"},
	{flag: "rg", field: "rg", usage: "RG"},
	{flag: "orgao", field: "orgao_expedidor", usage: "órgão expedidor"},
	{flag: "nascimento", field: "data_nascimento", usage: "data de nascimento", kind: dateField},
	{flag: "endereco", field: "endereco", usage: "endereço"},
	{flag: "telefone", field: "telefone_contato", usage: "telefone de contato"},
	{flag: "email", field: "email", usage: "email"},
	{flag: "admissao", field: "data_admissao", usage: "data de admissão", kind: dateField},
	{flag: "naturalidade", field: "naturalidade", usage: "naturalidade"},
}

var classFields = []fieldFlag{
	{flag: "serie", field: "serie", usage: "série", kind: numberField},
	{flag: "nivel", field: "nivel", usage: "nível de ensino (EI, EF, EM)"},
	{flag: "letra", field: "turma_letra", usage: "letra da turma"},
	{flag: "ano", field: "ano", usage: "ano letivo", kind: numberField},
	{flag: "periodo", field: "periodo", usage: "período (M, V, N, I)"},
	{flag: "professor", field: "professor_responsavel", usage: "id do professor responsável", kind: numberField},
}

func (a *cliApp) studentsCommand() *cli.Command {
	return &cli.Command{
		Name:   "alunos",
		Usage:  "gerencia alunos",
		Before: a.requireAuth,
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "lista os alunos", Action: a.listStudents},
			{Name: "show", Usage: "mostra um aluno", ArgsUsage: "<id>", Action: a.showStudent},
			{Name: "create", Usage: "cadastra um aluno", Flags: cliFlags(studentFields), Action: a.saveStudent(false)},
			{Name: "update", Usage: "altera um aluno", ArgsUsage: "<id>", Flags: cliFlags(studentFields), Action: a.saveStudent(true)},
			{Name: "delete", Aliases: []string{"rm"}, Usage: "exclui um aluno", ArgsUsage: "<id>", Action: a.deleteStudent},
			{Name: "export", Usage: "exporta os alunos em XLSX", Flags: []cli.Flag{exportFlag("alunos.xlsx")}, Action: a.exportStudents},
		},
	}
}

func (a *cliApp) classNames(c *cli.Context) map[int64]string {
	hook := resource.Classes(a.fe.Client, a.fe.Logger)
	defer hook.Unmount()
	names := map[int64]string{}
	for _, cl := range hook.Load(c.Context).Data {
		names[cl.ID] = cl.Name
	}
	return names
}

func (a *cliApp) listStudents(c *cli.Context) error {
	list := screens.StudentList(a.fe.Client, a.fe.Logger)
	defer list.Close()

	snap := list.Load(c.Context)
	if snap.Error != "" {
		return cli.Exit(snap.Error, 1)
	}
	classes := a.classNames(c)

	w := newTable(c, "ID", "NOME", "CPF", "TELEFONE", "TURMA")
	for _, s := range snap.Data {
		row(w, s.ID, s.FullName, mask.MaskCPF(s.CPF), mask.MaskPhone(s.Phone), classes[s.ClassID])
	}
	return w.Flush()
}

func (a *cliApp) showStudent(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := a.fe.Client.Students().Get(c.Context, id)
	if err != nil {
		return cli.Exit(apperrors.UserMessage(err, "Aluno não encontrado."), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID: %d\nNome: %s\nNascimento: %s\n", s.ID, s.FullName, mask.DateToBR(s.BirthDate))
	fmt.Fprintf(w, "Pai: %s\nMãe: %s\nResponsável: %s\n", s.FatherName, s.MotherName, s.GuardianName)
	fmt.Fprintf(w, "CPF: %s\nRG: %s %s\n", mask.MaskCPF(s.CPF), mask.MaskRG(s.RG), s.IssuingAuthority)
	fmt.Fprintf(w, "Endereço: %s\nTelefone: %s\nEmail: %s\n", s.Address, mask.MaskPhone(s.Phone), s.Email)
	fmt.Fprintf(w, "Turma: %s\n", a.classNames(c)[s.ClassID])
	if s.Photo != nil {
		fmt.Fprintf(w, "Foto: %s\n", *s.Photo)
	}
	return nil
}

func (a *cliApp) saveStudent(edit bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		var id int64
		if edit {
			var err error
			if id, err = parseID(c); err != nil {
				return err
			}
		}

		f := screens.NewStudentForm(a.fe.Client, a.fe.History, a.fe.Config.Policy(), id, a.fe.Logger)
		defer f.Close()
		if err := f.Load(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}

		masked := map[string]func(string) error{
			"cpf":              f.SetCPF,
			"rg":               f.SetRG,
			"telefone_contato": f.SetPhone,
		}
		if err := applyFlags(c, studentFields, f.Form.SetField, masked); err != nil {
			return err
		}

		if err := f.Submit(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}
		fmt.Fprintln(c.App.Writer, "Aluno salvo.")
		return nil
	}
}

func (a *cliApp) deleteStudent(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	list := screens.StudentList(a.fe.Client, a.fe.Logger)
	defer list.Close()
	if err := list.Delete(c.Context, id); err != nil {
		return deleteFailure(err)
	}
	fmt.Fprintf(c.App.Writer, "Aluno %d excluído.\n", id)
	return nil
}

func (a *cliApp) exportStudents(c *cli.Context) error {
	students, err := a.fe.Client.Students().List(c.Context)
	if err != nil {
		return cli.Exit(resource.StudentsError, 1)
	}
	out, err := createFile(c.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.Students(out, students, a.classNames(c)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d aluno(s) exportado(s) para %s\n", len(students), c.String("out"))
	return nil
}

func (a *cliApp) teachersCommand() *cli.Command {
	saveFlags := append(cliFlags(teacherFields),
		&cli.Int64SliceFlag{Name: "disciplina", Usage: "id de disciplina (repita para várias)"},
		&cli.StringFlag{Name: "foto", Usage: "arquivo de imagem (até 5MB)"},
	)
	return &cli.Command{
		Name:   "professores",
		Usage:  "gerencia professores",
		Before: a.requireAuth,
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "lista os professores", Action: a.listTeachers},
			{Name: "show", Usage: "mostra um professor", ArgsUsage: "<id>", Action: a.showTeacher},
			{Name: "create", Usage: "cadastra um professor", Flags: saveFlags, Action: a.saveTeacher(false)},
			{Name: "update", Usage: "altera um professor", ArgsUsage: "<id>", Flags: saveFlags, Action: a.saveTeacher(true)},
			{Name: "delete", Aliases: []string{"rm"}, Usage: "exclui um professor", ArgsUsage: "<id>", Action: a.deleteTeacher},
			{Name: "export", Usage: "exporta os professores em XLSX", Flags: []cli.Flag{exportFlag("professores.xlsx")}, Action: a.exportTeachers},
		},
	}
}

func (a *cliApp) subjectNames(c *cli.Context) *resource.SubjectsHook {
	hook := resource.Subjects(a.fe.Client, a.fe.Logger)
	hook.Load(c.Context)
	hook.Unmount()
	return hook
}

func (a *cliApp) listTeachers(c *cli.Context) error {
	list := screens.TeacherList(a.fe.Client, a.fe.Logger)
	defer list.Close()

	snap := list.Load(c.Context)
	if snap.Error != "" {
		return cli.Exit(snap.Error, 1)
	}
	subjects := a.subjectNames(c)

	w := newTable(c, "ID", "NOME", "CPF", "EMAIL", "DISCIPLINAS")
	for _, t := range snap.Data {
		row(w, t.ID, t.Name, mask.MaskCPF(t.CPF), t.Email, strings.Join(subjects.Names(t.SubjectIDs), ", "))
	}
	return w.Flush()
}

func (a *cliApp) showTeacher(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	t, err := a.fe.Client.Teachers().Get(c.Context, id)
	if err != nil {
		return cli.Exit(apperrors.UserMessage(err, "Professor não encontrado."), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID: %d\nNome: %s\nCPF: %s\nRG: %s %s\n", t.ID, t.Name, mask.MaskCPF(t.CPF), mask.MaskRG(t.RG), t.IssuingAuthority)
	fmt.Fprintf(w, "Nascimento: %s\nNaturalidade: %s\n", mask.DateToBR(t.BirthDate), t.Birthplace)
	fmt.Fprintf(w, "Endereço: %s\nTelefone: %s\nEmail: %s\n", t.Address, mask.MaskPhone(t.Phone), t.Email)
	fmt.Fprintf(w, "Admissão: %s\nDisciplinas: %s\n", mask.DateToBR(t.AdmissionDate), strings.Join(a.subjectNames(c).Names(t.SubjectIDs), ", "))
	if t.Photo != nil {
		fmt.Fprintf(w, "Foto: %s\n", *t.Photo)
	}
	return nil
}

func (a *cliApp) saveTeacher(edit bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		var id int64
		if edit {
			var err error
			if id, err = parseID(c); err != nil {
				return err
			}
		}

		f := screens.NewTeacherForm(a.fe.Client, a.fe.History, a.fe.Config.Policy(), id, a.fe.Logger)
		defer f.Close()
		if err := f.Load(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}

		masked := map[string]func(string) error{
			"cpf":              f.SetCPF,
			"telefone_contato": f.SetPhone,
		}
		if err := applyFlags(c, teacherFields, f.Form.SetField, masked); err != nil {
			return err
		}
		if c.IsSet("disciplina") {
			if err := f.Form.SetField("disciplinas", c.Int64Slice("disciplina")); err != nil {
				return err
			}
		}
		if path := c.String("foto"); path != "" {
			photo, err := upload.ReadPhoto(path)
			if err != nil {
				return cli.Exit(apperrors.UserMessage(err, err.Error()), 1)
			}
			if err := f.SetPhoto(photo.Filename, photo.Data); err != nil {
				return formFailure(err, f.Form.Errors())
			}
		}

		if err := f.Submit(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}
		fmt.Fprintln(c.App.Writer, "Professor salvo.")
		return nil
	}
}

func (a *cliApp) deleteTeacher(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	list := screens.TeacherList(a.fe.Client, a.fe.Logger)
	defer list.Close()
	if err := list.Delete(c.Context, id); err != nil {
		return deleteFailure(err)
	}
	fmt.Fprintf(c.App.Writer, "Professor %d excluído.\n", id)
	return nil
}

func (a *cliApp) exportTeachers(c *cli.Context) error {
	teachers, err := a.fe.Client.Teachers().List(c.Context)
	if err != nil {
		return cli.Exit(resource.TeachersError, 1)
	}
	out, err := createFile(c.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.Teachers(out, teachers, a.subjectNames(c).NameMap()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d professor(es) exportado(s) para %s\n", len(teachers), c.String("out"))
	return nil
}

func (a *cliApp) classesCommand() *cli.Command {
	return &cli.Command{
		Name:   "turmas",
		Usage:  "gerencia turmas",
		Before: a.requireAuth,
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "lista as turmas", Action: a.listClasses},
			{Name: "show", Usage: "mostra uma turma", ArgsUsage: "<id>", Action: a.showClass},
			{Name: "choices", Usage: "lista as opções de série, nível, letra e período", Action: a.classChoices},
			{Name: "create", Usage: "cadastra uma turma", Flags: cliFlags(classFields), Action: a.saveClass(false)},
			{Name: "update", Usage: "altera uma turma", ArgsUsage: "<id>", Flags: cliFlags(classFields), Action: a.saveClass(true)},
			{Name: "delete", Aliases: []string{"rm"}, Usage: "exclui uma turma", ArgsUsage: "<id>", Action: a.deleteClass},
			{Name: "export", Usage: "exporta as turmas em XLSX", Flags: []cli.Flag{exportFlag("turmas.xlsx")}, Action: a.exportClasses},
		},
	}
}

func (a *cliApp) teacherNames(c *cli.Context) map[int64]string {
	hook := resource.Teachers(a.fe.Client, a.fe.Logger)
	defer hook.Unmount()
	names := map[int64]string{}
	for _, t := range hook.Load(c.Context).Data {
		names[t.ID] = t.Name
	}
	return names
}

func (a *cliApp) listClasses(c *cli.Context) error {
	list := screens.ClassList(a.fe.Client, a.fe.Logger)
	defer list.Close()

	snap := list.Load(c.Context)
	if snap.Error != "" {
		return cli.Exit(snap.Error, 1)
	}
	teachers := a.teacherNames(c)

	w := newTable(c, "ID", "NOME", "ANO", "PERÍODO", "PROFESSOR")
	for _, cl := range snap.Data {
		row(w, cl.ID, cl.Name, cl.Year, models.PeriodLabel(cl.Period), teachers[cl.TeacherID])
	}
	return w.Flush()
}

func (a *cliApp) showClass(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	cl, err := a.fe.Client.Classes().Get(c.Context, id)
	if err != nil {
		return cli.Exit(apperrors.UserMessage(err, "Turma não encontrada."), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID: %d\nNome: %s\nSérie: %d\nNível: %s\nLetra: %s\n", cl.ID, cl.Name, cl.Grade, cl.Level, cl.Section)
	fmt.Fprintf(w, "Ano: %d\nPeríodo: %s\nProfessor: %s\n", cl.Year, models.PeriodLabel(cl.Period), a.teacherNames(c)[cl.TeacherID])
	return nil
}

func (a *cliApp) classChoices(c *cli.Context) error {
	choices, err := a.fe.Client.ClassChoices(c.Context)
	if err != nil {
		return cli.Exit(resource.ClassChoicesError, 1)
	}

	w := newTable(c, "CAMPO", "VALOR", "RÓTULO")
	for _, g := range choices.Grades {
		row(w, "serie", g.Value, g.Label)
	}
	for _, group := range []struct {
		field   string
		options []models.StringOption
	}{
		{"nivel", choices.Levels},
		{"turma_letra", choices.Sections},
		{"periodo", choices.Periods},
	} {
		for _, o := range group.options {
			row(w, group.field, o.Value, o.Label)
		}
	}
	return w.Flush()
}

func (a *cliApp) saveClass(edit bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		var id int64
		if edit {
			var err error
			if id, err = parseID(c); err != nil {
				return err
			}
		}

		f := screens.NewClassForm(a.fe.Client, a.fe.History, a.fe.Config.Policy(), id, a.fe.Logger)
		defer f.Close()
		if err := f.Load(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}

		if err := applyFlags(c, classFields, f.SetField, nil); err != nil {
			return err
		}

		if err := f.Submit(c.Context); err != nil {
			return formFailure(err, f.Form.Errors())
		}
		fmt.Fprintf(c.App.Writer, "Turma %q salva.\n", f.Form.Values().Name)
		return nil
	}
}

func (a *cliApp) deleteClass(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	list := screens.ClassList(a.fe.Client, a.fe.Logger)
	defer list.Close()
	if err := list.Delete(c.Context, id); err != nil {
		return deleteFailure(err)
	}
	fmt.Fprintf(c.App.Writer, "Turma %d excluída.\n", id)
	return nil
}

func (a *cliApp) exportClasses(c *cli.Context) error {
	classes, err := a.fe.Client.Classes().List(c.Context)
	if err != nil {
		return cli.Exit(resource.ClassesError, 1)
	}
	out, err := createFile(c.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.Classes(out, classes, a.teacherNames(c)); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d turma(s) exportada(s) para %s\n", len(classes), c.String("out"))
	return nil
}

func (a *cliApp) subjectsCommand() *cli.Command {
	return &cli.Command{
		Name:   "disciplinas",
		Usage:  "lista as disciplinas",
		Before: a.requireAuth,
		Action: func(c *cli.Context) error {
			hook := a.subjectNames(c)
			snap := hook.Snapshot()
			if snap.Error != "" {
				return cli.Exit(snap.Error, 1)
			}
			w := newTable(c, "ID", "NOME")
			for _, s := range snap.Data {
				row(w, s.ID, s.Name)
			}
			return w.Flush()
		},
	}
}
