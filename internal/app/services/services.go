// Package services holds the business rules of the development API.
package services

import (
	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/app/repositories"
	"github.com/smartsecretaria/secretaria/internal/pkg/auth"
	"github.com/smartsecretaria/secretaria/internal/pkg/filestorage"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
)

// Services groups every service over one set of repositories
type Services struct {
	Auth      *AuthService
	Students  *StudentService
	Teachers  *TeacherService
	Classes   *ClassService
	Subjects  *SubjectService
	Dashboard *DashboardService
}

// Options configures NewServices
type Options struct {
	Policy        validation.Policy
	RotateRefresh bool
}

// NewServices wires the services together
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	storage filestorage.FileStorage,
	opts Options,
	logger zerolog.Logger,
) *Services {
	students := NewStudentService(repos, opts.Policy, logger.With().Str("service", "students").Logger())
	classes := NewClassService(repos, opts.Policy, logger.With().Str("service", "classes").Logger())

	return &Services{
		Auth:      NewAuthService(repos.UserRepository, repos.TokenRepository, jwtService, opts.RotateRefresh, logger.With().Str("service", "auth").Logger()),
		Students:  students,
		Teachers:  NewTeacherService(repos, storage, opts.Policy, logger.With().Str("service", "teachers").Logger()),
		Classes:   classes,
		Subjects:  NewSubjectService(repos, logger.With().Str("service", "subjects").Logger()),
		Dashboard: NewDashboardService(repos, students, classes),
	}
}
