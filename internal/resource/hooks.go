package resource

import (
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/models"
)

// Messages shown when a load fails
const (
	StudentsError     = "Falha ao buscar alunos."
	TeachersError     = "Falha ao buscar professores."
	ClassesError      = "Falha ao buscar turmas."
	SubjectsError     = "Falha ao buscar disciplinas."
	ClassChoicesError = "Falha ao carregar opções de turma."
	DashboardError    = "Falha ao carregar os dados do dashboard. Verifique se você está logado."
)

// Students loads /aluno/
func Students(c *api.Client, log zerolog.Logger) *Hook[[]models.Student] {
	return New(c.Students().List, StudentsError,
		WithInitial([]models.Student{}), WithLogger[[]models.Student](log.With().Str("resource", "students").Logger()))
}

// Teachers loads /professor/
func Teachers(c *api.Client, log zerolog.Logger) *Hook[[]models.Teacher] {
	return New(c.Teachers().List, TeachersError,
		WithInitial([]models.Teacher{}), WithLogger[[]models.Teacher](log.With().Str("resource", "teachers").Logger()))
}

// Classes loads /turma/
func Classes(c *api.Client, log zerolog.Logger) *Hook[[]models.Class] {
	return New(c.Classes().List, ClassesError,
		WithInitial([]models.Class{}), WithLogger[[]models.Class](log.With().Str("resource", "classes").Logger()))
}

// ClassChoices loads /turma/choices/
func ClassChoices(c *api.Client, log zerolog.Logger) *Hook[models.ClassChoices] {
	return New(c.ClassChoices, ClassChoicesError,
		WithLogger[models.ClassChoices](log.With().Str("resource", "class_choices").Logger()))
}

// Dashboard loads /dashboard/
func Dashboard(c *api.Client, log zerolog.Logger) *Hook[models.Dashboard] {
	return New(c.Dashboard, DashboardError,
		WithLogger[models.Dashboard](log.With().Str("resource", "dashboard").Logger()))
}

// SubjectsHook loads /disciplina/ and resolves subject names by id
type SubjectsHook struct {
	*Hook[[]models.Subject]
}

// Subjects loads /disciplina/
func Subjects(c *api.Client, log zerolog.Logger) *SubjectsHook {
	return &SubjectsHook{Hook: New(c.Subjects().List, SubjectsError,
		WithInitial([]models.Subject{}), WithLogger[[]models.Subject](log.With().Str("resource", "subjects").Logger()))}
}

// NameMap returns id -> name of the loaded subjects
func (s *SubjectsHook) NameMap() map[int64]string {
	subjects := s.Snapshot().Data
	out := make(map[int64]string, len(subjects))
	for _, sub := range subjects {
		out[sub.ID] = sub.Name
	}
	return out
}

// Names returns the names of the given ids in order, skipping unknown ids
func (s *SubjectsHook) Names(ids []int64) []string {
	byID := s.NameMap()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			out = append(out, name)
		}
	}
	return out
}
