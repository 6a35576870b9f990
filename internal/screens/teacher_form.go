package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/form"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/pkg/upload"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
	"github.com/smartsecretaria/secretaria/internal/resource"
)

const photoField = "foto"

// TeacherForm creates or edits a teacher with an optional photo
type TeacherForm struct {
	ID       int64
	Form     *form.State[models.Teacher]
	Subjects *resource.SubjectsHook

	client   *api.Client
	nav      navigation.Navigator
	original models.Teacher
	log      zerolog.Logger

	mu    sync.Mutex
	photo *upload.Photo
}

// NewTeacherForm creates the teacher form; id zero opens it in create mode
func NewTeacherForm(c *api.Client, nav navigation.Navigator, policy validation.Policy, id int64, log zerolog.Logger) *TeacherForm {
	log = log.With().Str("screen", "teacher_form").Int64("id", id).Logger()
	f := &TeacherForm{
		ID:       id,
		Subjects: resource.Subjects(c, log),
		client:   c,
		nav:      nav,
		log:      log,
	}
	f.Form = form.New(models.Teacher{SubjectIDs: []int64{}}, f.save,
		form.WithValidator(func(t models.Teacher) map[string]string {
			return validation.ValidateTeacher(policy, t)
		}),
		form.WithLogger[models.Teacher](log),
	)
	return f
}

// Load fetches the subjects and, in edit mode, the teacher
func (f *TeacherForm) Load(ctx context.Context) error {
	if snap := f.Subjects.Load(ctx); snap.Error != "" {
		f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
		return fmt.Errorf("load subjects: %s", snap.Error)
	}
	if f.ID == 0 {
		return nil
	}

	original, err := f.client.Teachers().Get(ctx, f.ID)
	if err != nil {
		f.log.Error().Err(err).Msg("Failed to load teacher")
		f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
		return err
	}
	if original.SubjectIDs == nil {
		original.SubjectIDs = []int64{}
	}
	f.original = original
	f.Form.SetValues(original)
	return nil
}

// SetCPF masks the input and stores its digits
func (f *TeacherForm) SetCPF(input string) error {
	return f.Form.SetField("cpf", mask.UnmaskCPF(mask.MaskCPF(input)))
}

// SetPhone masks the input and stores its digits
func (f *TeacherForm) SetPhone(input string) error {
	return f.Form.SetField("telefone_contato", mask.UnmaskPhone(mask.MaskPhone(input)))
}

// ToggleSubject adds the subject when absent and removes it when present
func (f *TeacherForm) ToggleSubject(id int64) {
	f.Form.Update(func(t *models.Teacher) {
		next := make([]int64, 0, len(t.SubjectIDs)+1)
		found := false
		for _, s := range t.SubjectIDs {
			if s == id {
				found = true
				continue
			}
			next = append(next, s)
		}
		if !found {
			next = append(next, id)
		}
		t.SubjectIDs = next
	})
}

// SetPhoto checks and attaches a photo. A rejected file is reported under "foto"
// and leaves the previously attached photo in place.
func (f *TeacherForm) SetPhoto(filename string, data []byte) error {
	photo, err := upload.CheckPhoto(filename, data)
	errs := f.Form.Errors()
	if err != nil {
		errs[photoField] = apperrors.UserMessage(err, upload.NotAnImageMessage)
		f.Form.SetErrors(errs)
		return err
	}
	delete(errs, photoField)
	f.Form.SetErrors(errs)

	f.mu.Lock()
	f.photo = photo
	f.mu.Unlock()
	return nil
}

// Photo returns the attached photo, nil when none
func (f *TeacherForm) Photo() *upload.Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.photo
}

// SubjectNames returns the names of the selected subjects
func (f *TeacherForm) SubjectNames() []string {
	return f.Subjects.Names(f.Form.Values().SubjectIDs)
}

// Submit validates and saves, then returns to the teacher list
func (f *TeacherForm) Submit(ctx context.Context) error {
	if err := f.Form.Submit(ctx); err != nil {
		return err
	}
	f.nav.Navigate(navigation.TeachersPath)
	return nil
}

// Cancel returns to the teacher list without saving
func (f *TeacherForm) Cancel() {
	f.nav.Navigate(navigation.TeachersPath)
}

// Close stops the background loads
func (f *TeacherForm) Close() {
	f.Subjects.Unmount()
}

func (f *TeacherForm) save(ctx context.Context, values models.Teacher) error {
	photo := f.Photo()
	teachers := f.client.Teachers()

	if f.ID == 0 {
		created, err := teachers.CreateWithPhoto(ctx, values, photo)
		if err != nil {
			return err
		}
		f.log.Info().Int64("teacher", created.ID).Bool("photo", photo != nil).Msg("Teacher created")
		return nil
	}

	changed, err := form.Diff(f.original, values)
	if err != nil {
		return err
	}
	if len(changed) == 0 && photo == nil {
		return nil
	}
	updated, err := teachers.UpdateWithPhoto(ctx, f.ID, changed, photo)
	if err != nil {
		return err
	}
	f.original = updated
	return nil
}
