package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/helpers"
)

const dashboardListSize = 5

// SubjectService handles /disciplina/ records
type SubjectService struct {
	subjects   *repositories.Table[models.Subject]
	teachers   *repositories.Table[models.Teacher]
	activities *repositories.ActivityRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSubjectService creates a new SubjectService
func NewSubjectService(repos *repositories.Repositories, logger zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjects:   repos.Subjects,
		teachers:   repos.Teachers,
		activities: repos.ActivityRepository,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns every subject
func (s *SubjectService) List(ctx context.Context) []models.Subject {
	return s.subjects.List(ctx)
}

// Get returns one subject
func (s *SubjectService) Get(ctx context.Context, id int64) (models.Subject, error) {
	return s.subjects.Get(ctx, id)
}

// Create stores a subject with a unique name
func (s *SubjectService) Create(ctx context.Context, body []byte, actor string) (models.Subject, error) {
	subject, err := decodeRecord[models.Subject](body)
	if err != nil {
		return models.Subject{}, err
	}
	subject.Name = strings.TrimSpace(subject.Name)
	if subject.Name == "" {
		return models.Subject{}, fieldError("nome", "Este campo é obrigatório.")
	}

	created, err := s.subjects.Insert(ctx, subject, sameSubjectName(subject))
	if err != nil {
		return models.Subject{}, subjectStoreError(err)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Disciplina %s cadastrada", created.Name), s.now())
	return created, nil
}

// Update renames a subject
func (s *SubjectService) Update(ctx context.Context, id int64, patch map[string]json.RawMessage, actor string) (models.Subject, error) {
	current, err := s.subjects.Get(ctx, id)
	if err != nil {
		return models.Subject{}, err
	}
	subject, err := applyPatch(current, patch)
	if err != nil {
		return models.Subject{}, err
	}
	subject.ID = id
	subject.Name = strings.TrimSpace(subject.Name)
	if subject.Name == "" {
		return models.Subject{}, fieldError("nome", "Este campo é obrigatório.")
	}

	if err := s.subjects.Replace(ctx, subject, sameSubjectName(subject)); err != nil {
		return models.Subject{}, subjectStoreError(err)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Disciplina %s atualizada", subject.Name), s.now())
	return subject, nil
}

// Delete removes a subject no teacher references
func (s *SubjectService) Delete(ctx context.Context, id int64, actor string) error {
	subject, err := s.subjects.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.teachers.Any(ctx, func(t models.Teacher) bool { return t.HasSubject(id) }) {
		return apperrors.NewConflictError("Disciplina está associada a professores.")
	}
	if err := s.subjects.Delete(ctx, id); err != nil {
		return err
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Disciplina %s removida", subject.Name), s.now())
	s.logger.Info().Int64("subjectID", id).Msg("Subject deleted")
	return nil
}

func sameSubjectName(s models.Subject) func(models.Subject) bool {
	return func(existing models.Subject) bool { return strings.EqualFold(existing.Name, s.Name) }
}

func subjectStoreError(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return fieldError("nome", "disciplina com este nome já existe.")
	}
	return err
}

// DashboardService aggregates the /dashboard/ payload
type DashboardService struct {
	repos    *repositories.Repositories
	students *StudentService
	classes  *ClassService
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories, students *StudentService, classes *ClassService) *DashboardService {
	return &DashboardService{
		repos:    repos,
		students: students,
		classes:  classes,
		now:      time.Now,
	}
}

// Summary builds the dashboard for the current time
func (s *DashboardService) Summary(ctx context.Context) models.Dashboard {
	now := s.now().UTC()
	monthStart := helpers.StartOfMonth(now)

	return models.Dashboard{
		TotalStudents:         s.repos.Students.Count(ctx),
		TotalTeachers:         s.repos.Teachers.Count(ctx),
		TotalClasses:          s.repos.Classes.Count(ctx),
		ActiveEnrollments:     s.classes.Enrollments(ctx),
		DocumentsCurrentMonth: s.repos.ActivityRepository.CountSince(ctx, monthStart),
		UpcomingEvents:        upcoming(s.repos.Events.All(), now, dashboardListSize),
		LatestStudents:        s.students.LatestStudents(ctx, dashboardListSize),
		LatestActivities:      s.repos.ActivityRepository.Latest(ctx, dashboardListSize),
	}
}

// upcoming keeps events starting today or later, soonest first
func upcoming(events []models.UpcomingEvent, now time.Time, n int) []models.UpcomingEvent {
	today := now.Format("2006-01-02")
	out := make([]models.UpcomingEvent, 0, len(events))
	for _, e := range events {
		if e.StartDate >= today {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate < out[j].StartDate })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
