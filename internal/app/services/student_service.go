package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

// StudentService handles /aluno/ records
type StudentService struct {
	students   *repositories.Table[models.Student]
	classes    *repositories.Table[models.Class]
	activities *repositories.ActivityRepository
	policy     validation.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(repos *repositories.Repositories, policy validation.Policy, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students:   repos.Students,
		classes:    repos.Classes,
		activities: repos.ActivityRepository,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns every student
func (s *StudentService) List(ctx context.Context) []models.Student {
	return s.students.List(ctx)
}

// Get returns one student
func (s *StudentService) Get(ctx context.Context, id int64) (models.Student, error) {
	return s.students.Get(ctx, id)
}

// Create validates and stores a new student
func (s *StudentService) Create(ctx context.Context, body []byte, actor string) (models.Student, error) {
	student, err := decodeRecord[models.Student](body)
	if err != nil {
		return models.Student{}, err
	}
	normalizeStudent(&student)

	if err := s.check(ctx, student); err != nil {
		return models.Student{}, err
	}

	created, err := s.students.Insert(ctx, student, sameStudentCPF(student))
	if err != nil {
		return models.Student{}, s.storeError(err)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Aluno %s cadastrado", created.FullName), s.now())
	s.logger.Info().Int64("studentID", created.ID).Msg("Student created")
	return created, nil
}

// Update applies a partial update
func (s *StudentService) Update(ctx context.Context, id int64, patch map[string]json.RawMessage, actor string) (models.Student, error) {
	current, err := s.students.Get(ctx, id)
	if err != nil {
		return models.Student{}, err
	}

	student, err := applyPatch(current, patch)
	if err != nil {
		return models.Student{}, err
	}
	student.ID = id
	normalizeStudent(&student)

	if err := s.check(ctx, student); err != nil {
		return models.Student{}, err
	}

	if err := s.students.Replace(ctx, student, sameStudentCPF(student)); err != nil {
		return models.Student{}, s.storeError(err)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Aluno %s atualizado", student.FullName), s.now())
	s.logger.Info().Int64("studentID", id).Int("fields", len(patch)).Msg("Student updated")
	return student, nil
}

// Delete removes a student
func (s *StudentService) Delete(ctx context.Context, id int64, actor string) error {
	student, err := s.students.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Aluno %s removido", student.FullName), s.now())
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// LatestStudents returns up to n students, most recently created first
func (s *StudentService) LatestStudents(ctx context.Context, n int) []models.LatestStudent {
	all := s.students.List(ctx)
	out := make([]models.LatestStudent, 0, n)
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, models.LatestStudent{ID: all[i].ID, FullName: all[i].FullName, Photo: all[i].Photo})
	}
	return out
}

func (s *StudentService) check(ctx context.Context, student models.Student) error {
	errs := validation.ValidateStudent(s.policy, student)
	if _, failed := errs["turma"]; !failed && !s.classes.Exists(ctx, student.ClassID) {
		errs["turma"] = missingPK(student.ClassID)
	}
	return errs.AsError()
}

func (s *StudentService) storeError(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return fieldError("cpf", "aluno com este cpf já existe.")
	}
	return err
}

func normalizeStudent(s *models.Student) {
	s.CPF = mask.Digits(s.CPF)
	s.RG = mask.Digits(s.RG)
	s.Phone = mask.Digits(s.Phone)
}

func sameStudentCPF(s models.Student) func(models.Student) bool {
	if s.CPF == "" {
		return nil
	}
	return func(existing models.Student) bool { return existing.CPF == s.CPF }
}

// missingPK is the message for a reference to a record that does not exist
func missingPK(id int64) string {
	return fmt.Sprintf("Pk inválido \"%d\" - objeto não existe.", id)
}
