package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

// ClassService handles /turma/ records
type ClassService struct {
	classes    *repositories.Table[models.Class]
	teachers   *repositories.Table[models.Teacher]
	students   *repositories.Table[models.Student]
	activities *repositories.ActivityRepository
	choices    models.ClassChoices
	policy     validation.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClassService creates a new ClassService
func NewClassService(repos *repositories.Repositories, policy validation.Policy, logger zerolog.Logger) *ClassService {
	return &ClassService{
		classes:    repos.Classes,
		teachers:   repos.Teachers,
		students:   repos.Students,
		activities: repos.ActivityRepository,
		choices:    models.DefaultClassChoices(),
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// Choices returns the enumerated select options
func (s *ClassService) Choices() models.ClassChoices {
	return s.choices
}

// List returns every class
func (s *ClassService) List(ctx context.Context) []models.Class {
	return s.classes.List(ctx)
}

// Get returns one class
func (s *ClassService) Get(ctx context.Context, id int64) (models.Class, error) {
	return s.classes.Get(ctx, id)
}

// Create validates and stores a new class, naming it when no name is given
func (s *ClassService) Create(ctx context.Context, body []byte, actor string) (models.Class, error) {
	class, err := decodeRecord[models.Class](body)
	if err != nil {
		return models.Class{}, err
	}
	s.complete(&class)

	if err := s.check(ctx, class); err != nil {
		return models.Class{}, err
	}

	created, err := s.classes.Insert(ctx, class, nil)
	if err != nil {
		return models.Class{}, err
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Turma %s cadastrada", created.Name), s.now())
	s.logger.Info().Int64("classID", created.ID).Str("name", created.Name).Msg("Class created")
	return created, nil
}

// Update applies a partial update
func (s *ClassService) Update(ctx context.Context, id int64, patch map[string]json.RawMessage, actor string) (models.Class, error) {
	current, err := s.classes.Get(ctx, id)
	if err != nil {
		return models.Class{}, err
	}

	class, err := applyPatch(current, patch)
	if err != nil {
		return models.Class{}, err
	}
	class.ID = id
	s.complete(&class)

	if err := s.check(ctx, class); err != nil {
		return models.Class{}, err
	}

	if err := s.classes.Replace(ctx, class, nil); err != nil {
		return models.Class{}, err
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Turma %s atualizada", class.Name), s.now())
	s.logger.Info().Int64("classID", id).Msg("Class updated")
	return class, nil
}

// Delete removes a class without enrolled students
func (s *ClassService) Delete(ctx context.Context, id int64, actor string) error {
	class, err := s.classes.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.students.Any(ctx, func(st models.Student) bool { return st.ClassID == id }) {
		return apperrors.NewConflictError("Turma possui alunos matriculados.")
	}

	if err := s.classes.Delete(ctx, id); err != nil {
		return err
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Turma %s removida", class.Name), s.now())
	s.logger.Info().Int64("classID", id).Msg("Class deleted")
	return nil
}

// Enrollments counts students in existing classes
func (s *ClassService) Enrollments(ctx context.Context) int {
	count := 0
	for _, st := range s.students.List(ctx) {
		if s.classes.Exists(ctx, st.ClassID) {
			count++
		}
	}
	return count
}

func (s *ClassService) complete(c *models.Class) {
	c.Section = strings.ToUpper(strings.TrimSpace(c.Section))
	if c.Level == "" {
		c.Level = levelOf(c.Grade)
	}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = s.choices.ClassName(c.Grade, c.Section, c.Period)
	}
}

func (s *ClassService) check(ctx context.Context, class models.Class) error {
	errs := validation.ValidateClass(s.policy, class)
	if _, failed := errs["serie"]; !failed && s.choices.GradeLabel(class.Grade) == "" {
		errs["serie"] = fmt.Sprintf("\"%d\" não é um escolha válido.", class.Grade)
	}
	if _, failed := errs["professor_responsavel"]; !failed && !s.teachers.Exists(ctx, class.TeacherID) {
		errs["professor_responsavel"] = missingPK(class.TeacherID)
	}
	return errs.AsError()
}

func levelOf(grade int) string {
	switch {
	case grade <= 0:
		return ""
	case grade <= 9:
		return models.LevelElementary
	default:
		return models.LevelHighSchool
	}
}
