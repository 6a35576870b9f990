// Package seed fills the development API with a small school.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/app/services"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

const seedActor = "sistema"

// Admin is the account created by CreateDefaultData
type Admin struct {
	Username string
	Password string
}

// CreateDefaultData creates the admin account and, with withSchool set, subjects,
// teachers, classes, students and calendar events. Failures are collected; the
// remaining records are still attempted.
func CreateDefaultData(ctx context.Context, svc *services.Services, repos *repositories.Repositories, admin Admin, withSchool bool, lgr zerolog.Logger) error {
	var finalErr error

	if _, err := svc.Auth.CreateUser(ctx, admin.Username, admin.Password); err != nil && !errors.Is(err, apperrors.ErrConflict) {
		lgr.Error().Err(err).Str("username", admin.Username).Msg("Error creating admin user")
		finalErr = errors.Join(finalErr, err)
	}

	if !withSchool || repos.Subjects.Count(ctx) > 0 {
		return finalErr
	}

	lgr.Info().Msg("Creating default school data...")

	subjectIDs := map[string]int64{}
	for _, name := range []string{"Matemática", "Português", "Ciências", "História", "Geografia", "Inglês"} {
		s, err := svc.Subjects.Create(ctx, mustJSON(models.Subject{Name: name}), seedActor)
		if err != nil {
			lgr.Error().Err(err).Str("subject", name).Msg("Error creating subject")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		subjectIDs[name] = s.ID
	}

	teachers := []models.Teacher{
		{
			Name: "Maria Aparecida Santos", CPF: "52998224725", RG: "1234567", IssuingAuthority: "SSP/SP",
			BirthDate: "1980-04-12", Address: "Rua das Flores, 120", Phone: "11987654321",
			Email: "maria.santos@escola.com", AdmissionDate: "2015-02-01", Birthplace: "São Paulo",
			SubjectIDs: ids(subjectIDs, "Matemática", "Ciências"),
		},
		{
			Name: "João Pedro Oliveira", CPF: "11144477735", Address: "Av. Brasil, 900",
			Phone: "21998765432", Email: "joao.oliveira@escola.com", AdmissionDate: "2018-08-15",
			Birthplace: "Rio de Janeiro", SubjectIDs: ids(subjectIDs, "Português", "História"),
		},
	}

	var teacherIDs []int64
	for _, t := range teachers {
		created, err := svc.Teachers.Create(ctx, rawFields(t), nil, seedActor)
		if err != nil {
			lgr.Error().Err(err).Str("teacher", t.Name).Msg("Error creating teacher")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		teacherIDs = append(teacherIDs, created.ID)
	}
	if len(teacherIDs) == 0 {
		return finalErr
	}

	year := time.Now().Year()
	classes := []models.Class{
		{Grade: 1, Section: "A", Year: year, Period: models.PeriodMorning, TeacherID: teacherIDs[0]},
		{Grade: 5, Section: "B", Year: year, Period: models.PeriodAfternoon, TeacherID: teacherIDs[len(teacherIDs)-1]},
	}

	var classIDs []int64
	for _, c := range classes {
		created, err := svc.Classes.Create(ctx, mustJSON(c), seedActor)
		if err != nil {
			lgr.Error().Err(err).Int("grade", c.Grade).Msg("Error creating class")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		classIDs = append(classIDs, created.ID)
	}
	if len(classIDs) == 0 {
		return finalErr
	}

	students := []models.Student{
		{
			FullName: "Ana Clara Souza", BirthDate: "2017-03-09", MotherName: "Juliana Souza",
			GuardianName: "Juliana Souza", CPF: "12345678909", Address: "Rua A, 10",
			Phone: "11912345678", Email: "juliana.souza@email.com", ClassID: classIDs[0],
		},
		{
			FullName: "Lucas Ferreira Lima", BirthDate: "2013-11-21", FatherName: "Carlos Lima",
			GuardianName: "Carlos Lima", RG: "7654321", IssuingAuthority: "SSP/RJ",
			Address: "Rua B, 25", Phone: "21987651234", ClassID: classIDs[len(classIDs)-1],
		},
	}
	for _, s := range students {
		if _, err := svc.Students.Create(ctx, mustJSON(s), seedActor); err != nil {
			lgr.Error().Err(err).Str("student", s.FullName).Msg("Error creating student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	now := time.Now()
	for _, e := range []models.UpcomingEvent{
		{Title: "Reunião de pais e mestres", StartDate: now.AddDate(0, 0, 7).Format("2006-01-02"), Kind: "reuniao"},
		{Title: "Semana de provas", StartDate: now.AddDate(0, 0, 21).Format("2006-01-02"), Kind: "avaliacao"},
		{Title: "Feira de ciências", StartDate: now.AddDate(0, 1, 0).Format("2006-01-02"), Kind: "evento"},
	} {
		repos.Events.Add(e)
	}

	lgr.Info().
		Int("subjects", len(subjectIDs)).
		Int("teachers", len(teacherIDs)).
		Int("classes", len(classIDs)).
		Msg("Default school data created")
	return finalErr
}

func ids(byName map[string]int64, names ...string) []int64 {
	out := make([]int64, 0, len(names))
	for _, n := range names {
		if id, ok := byName[n]; ok {
			out = append(out, id)
		}
	}
	return out
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func rawFields(v interface{}) map[string]json.RawMessage {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(mustJSON(v), &fields); err != nil {
		panic(err)
	}
	return fields
}
