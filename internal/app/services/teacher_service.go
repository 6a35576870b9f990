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
	"github.com/smartsecretaria/secretaria/internal/pkg/filestorage"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

const teacherPhotoDir = "professores"

// TeacherService handles /professor/ records and their photos
type TeacherService struct {
	teachers   *repositories.Table[models.Teacher]
	subjects   *repositories.Table[models.Subject]
	classes    *repositories.Table[models.Class]
	activities *repositories.ActivityRepository
	storage    filestorage.FileStorage
	policy     validation.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTeacherService creates a new TeacherService
func NewTeacherService(
	repos *repositories.Repositories,
	storage filestorage.FileStorage,
	policy validation.Policy,
	logger zerolog.Logger,
) *TeacherService {
	return &TeacherService{
		teachers:   repos.Teachers,
		subjects:   repos.Subjects,
		classes:    repos.Classes,
		activities: repos.ActivityRepository,
		storage:    storage,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns every teacher
func (s *TeacherService) List(ctx context.Context) []models.Teacher {
	return s.teachers.List(ctx)
}

// Get returns one teacher
func (s *TeacherService) Get(ctx context.Context, id int64) (models.Teacher, error) {
	return s.teachers.Get(ctx, id)
}

// Create validates and stores a new teacher. photo may be nil.
func (s *TeacherService) Create(ctx context.Context, fields map[string]json.RawMessage, photo *upload.Photo, actor string) (models.Teacher, error) {
	teacher, err := applyPatch(models.Teacher{}, fields)
	if err != nil {
		return models.Teacher{}, err
	}
	normalizeTeacher(&teacher)

	if err := s.check(ctx, teacher); err != nil {
		return models.Teacher{}, err
	}

	if photo != nil {
		url, err := s.storage.SavePhotoWithPath(photo, teacherPhotoDir)
		if err != nil {
			return models.Teacher{}, err
		}
		teacher.Photo = &url
	}

	created, err := s.teachers.Insert(ctx, teacher, sameTeacherCPF(teacher))
	if err != nil {
		s.discardPhoto(teacher.Photo)
		return models.Teacher{}, s.storeError(err)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Professor %s cadastrado", created.Name), s.now())
	s.logger.Info().Int64("teacherID", created.ID).Bool("photo", photo != nil).Msg("Teacher created")
	return created, nil
}

// Update applies a partial update; a new photo replaces the stored one
func (s *TeacherService) Update(ctx context.Context, id int64, fields map[string]json.RawMessage, photo *upload.Photo, actor string) (models.Teacher, error) {
	current, err := s.teachers.Get(ctx, id)
	if err != nil {
		return models.Teacher{}, err
	}

	teacher, err := applyPatch(current, fields)
	if err != nil {
		return models.Teacher{}, err
	}
	teacher.ID = id
	normalizeTeacher(&teacher)

	if err := s.check(ctx, teacher); err != nil {
		return models.Teacher{}, err
	}

	if photo != nil {
		url, err := s.storage.SavePhotoWithPath(photo, teacherPhotoDir)
		if err != nil {
			return models.Teacher{}, err
		}
		teacher.Photo = &url
	}

	if err := s.teachers.Replace(ctx, teacher, sameTeacherCPF(teacher)); err != nil {
		if photo != nil {
			s.discardPhoto(teacher.Photo)
		}
		return models.Teacher{}, s.storeError(err)
	}
	if photo != nil {
		s.discardPhoto(current.Photo)
	}

	s.activities.Record(ctx, actor, fmt.Sprintf("Professor %s atualizado", teacher.Name), s.now())
	s.logger.Info().Int64("teacherID", id).Bool("photo", photo != nil).Msg("Teacher updated")
	return teacher, nil
}

// Delete removes a teacher that is not responsible for any class
func (s *TeacherService) Delete(ctx context.Context, id int64, actor string) error {
	teacher, err := s.teachers.Get(ctx, id)
	if err != nil {
		return err
	}

	if s.classes.Any(ctx, func(c models.Class) bool { return c.TeacherID == id }) {
		return apperrors.NewConflictError("Professor é responsável por uma ou mais turmas.")
	}

	if err := s.teachers.Delete(ctx, id); err != nil {
		return err
	}
	s.discardPhoto(teacher.Photo)

	s.activities.Record(ctx, actor, fmt.Sprintf("Professor %s removido", teacher.Name), s.now())
	s.logger.Info().Int64("teacherID", id).Msg("Teacher deleted")
	return nil
}

func (s *TeacherService) check(ctx context.Context, teacher models.Teacher) error {
	errs := validation.ValidateTeacher(s.policy, teacher)
	for _, id := range teacher.SubjectIDs {
		if !s.subjects.Exists(ctx, id) {
			errs["disciplinas"] = missingPK(id)
			break
		}
	}
	return errs.AsError()
}

func (s *TeacherService) storeError(err error) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return fieldError("cpf", "professor com este cpf já existe.")
	}
	return err
}

func (s *TeacherService) discardPhoto(url *string) {
	if url == nil {
		return
	}
	if err := s.storage.DeleteFile(*url); err != nil {
		s.logger.Warn().Err(err).Str("url", *url).Msg("Failed to delete teacher photo")
	}
}

func normalizeTeacher(t *models.Teacher) {
	t.CPF = mask.Digits(t.CPF)
	t.RG = mask.Digits(t.RG)
	t.Phone = mask.Digits(t.Phone)
	if t.SubjectIDs == nil {
		t.SubjectIDs = []int64{}
	}
}

func sameTeacherCPF(t models.Teacher) func(models.Teacher) bool {
	if t.CPF == "" {
		return nil
	}
	return func(existing models.Teacher) bool { return existing.CPF == t.CPF }
}
