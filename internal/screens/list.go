package screens

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/resource"
)

const generalField = apperrors.GeneralField

// Option is an entry of a select input
type Option struct {
	Value int64
	Label string
}

// Messages shown when a delete fails
const (
	DeleteStudentFailedMessage = "Erro ao excluir aluno."
	DeleteTeacherFailedMessage = "Erro ao excluir professor."
	DeleteClassFailedMessage   = "Erro ao excluir turma."
)

// List is a list screen: a loaded collection plus delete
type List[T any] struct {
	*resource.Hook[[]T]

	remove        func(ctx context.Context, id int64) error
	deleteMessage string
	log           zerolog.Logger
}

// Delete removes a record and reloads the list
func (l *List[T]) Delete(ctx context.Context, id int64) error {
	if err := l.remove(ctx, id); err != nil {
		l.log.Error().Err(err).Int64("id", id).Msg("Delete failed")
		return apperrors.NewCustomError(err, "delete failed").WithStatusMsg(l.deleteMessage)
	}
	l.Refetch()
	l.Wait()
	return nil
}

// Close stops the background loads
func (l *List[T]) Close() {
	l.Unmount()
}

// StudentList is the /alunos screen
func StudentList(c *api.Client, log zerolog.Logger) *List[models.Student] {
	return &List[models.Student]{
		Hook:          resource.Students(c, log),
		remove:        c.Students().Delete,
		deleteMessage: DeleteStudentFailedMessage,
		log:           log.With().Str("screen", "students").Logger(),
	}
}

// TeacherList is the /professores screen
func TeacherList(c *api.Client, log zerolog.Logger) *List[models.Teacher] {
	return &List[models.Teacher]{
		Hook:          resource.Teachers(c, log),
		remove:        c.Teachers().Delete,
		deleteMessage: DeleteTeacherFailedMessage,
		log:           log.With().Str("screen", "teachers").Logger(),
	}
}

// ClassList is the /turmas screen
func ClassList(c *api.Client, log zerolog.Logger) *List[models.Class] {
	return &List[models.Class]{
		Hook:          resource.Classes(c, log),
		remove:        c.Classes().Delete,
		deleteMessage: DeleteClassFailedMessage,
		log:           log.With().Str("screen", "classes").Logger(),
	}
}
