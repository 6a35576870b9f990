package screens

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/form"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
	"github.com/smartsecretaria/secretaria/internal/resource"
)

// StudentDisplay holds the masked values shown in the student inputs
type StudentDisplay struct {
	CPF   string
	RG    string
	Phone string
}

// StudentForm creates or edits a student. ID is zero in create mode.
type StudentForm struct {
	ID      int64
	Form    *form.State[models.Student]
	Classes *resource.Hook[[]models.Class]

	// NewClassCreated is set when the form came back from the class form with a new class
	NewClassCreated bool

	client   *api.Client
	nav      navigation.Navigator
	original models.Student
	log      zerolog.Logger
}

// NewStudentForm creates the student form; id zero opens it in create mode
func NewStudentForm(c *api.Client, nav navigation.Navigator, policy validation.Policy, id int64, log zerolog.Logger) *StudentForm {
	log = log.With().Str("screen", "student_form").Int64("id", id).Logger()
	f := &StudentForm{
		ID:      id,
		Classes: resource.Classes(c, log),
		client:  c,
		nav:     nav,
		log:     log,
	}
	f.Form = form.New(models.Student{}, f.save,
		form.WithValidator(func(s models.Student) map[string]string {
			return validation.ValidateStudent(policy, s)
		}),
		form.WithLogger[models.Student](log),
	)
	return f
}

// Load fetches the classes and, in edit mode, the student. Values saved by BeginNewClass
// win over the fetched record, and a class created meanwhile is selected.
func (f *StudentForm) Load(ctx context.Context) error {
	if snap := f.Classes.Load(ctx); snap.Error != "" {
		f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
		return fmt.Errorf("load classes: %s", snap.Error)
	}

	if f.ID != 0 {
		original, err := f.client.Students().Get(ctx, f.ID)
		if err != nil {
			f.log.Error().Err(err).Msg("Failed to load student")
			f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
			return err
		}
		f.original = original
		f.Form.SetValues(original)
	}

	state := f.nav.Current().State
	if state == nil {
		return nil
	}

	if len(state.FormData) > 0 {
		var restored models.Student
		if err := navigation.DecodeFormData(state.FormData, &restored); err != nil {
			f.log.Warn().Err(err).Msg("Ignoring saved form data")
		} else {
			f.Form.SetValues(restored)
		}
	}

	if state.NewClassID != 0 {
		if err := f.Form.SetField("turma", state.NewClassID); err != nil {
			return err
		}
		f.NewClassCreated = true
	}
	return nil
}

// SetCPF masks the input and stores its digits
func (f *StudentForm) SetCPF(input string) error {
	return f.Form.SetField("cpf", mask.UnmaskCPF(mask.MaskCPF(input)))
}

// SetRG masks the input and stores its digits
func (f *StudentForm) SetRG(input string) error {
	return f.Form.SetField("rg", mask.UnmaskRG(mask.MaskRG(input)))
}

// SetPhone masks the input and stores its digits
func (f *StudentForm) SetPhone(input string) error {
	return f.Form.SetField("telefone_contato", mask.UnmaskPhone(mask.MaskPhone(input)))
}

// Display returns the document fields formatted for the inputs
func (f *StudentForm) Display() StudentDisplay {
	v := f.Form.Values()
	return StudentDisplay{
		CPF:   mask.MaskCPF(v.CPF),
		RG:    mask.MaskRG(v.RG),
		Phone: mask.MaskPhone(v.Phone),
	}
}

// ClassOptions lists the loaded classes for the class select
func (f *StudentForm) ClassOptions() []Option {
	classes := f.Classes.Snapshot().Data
	out := make([]Option, 0, len(classes))
	for _, c := range classes {
		out = append(out, Option{Value: c.ID, Label: c.Name})
	}
	return out
}

// BeginNewClass opens the class form, carrying the in-progress values so they survive the trip
func (f *StudentForm) BeginNewClass() error {
	data, err := navigation.EncodeFormData(f.Form.Values())
	if err != nil {
		return err
	}

	returnTo := navigation.NewStudentPath
	if f.ID != 0 {
		returnTo = navigation.StudentPath(f.ID)
	}

	f.nav.NavigateWithState(navigation.NewClassPath, navigation.State{
		ReturnTo: returnTo,
		FormData: data,
		Context:  navigation.ContextNewStudent,
	})
	return nil
}

// Submit validates and saves, then returns to the student list
func (f *StudentForm) Submit(ctx context.Context) error {
	if err := f.Form.Submit(ctx); err != nil {
		return err
	}
	f.nav.Navigate(navigation.StudentsPath)
	return nil
}

// Cancel returns to the student list without saving
func (f *StudentForm) Cancel() {
	f.nav.Navigate(navigation.StudentsPath)
}

// Close stops the background loads
func (f *StudentForm) Close() {
	f.Classes.Unmount()
}

func (f *StudentForm) save(ctx context.Context, values models.Student) error {
	if f.ID == 0 {
		created, err := f.client.Students().Create(ctx, values)
		if err != nil {
			return err
		}
		f.log.Info().Int64("student", created.ID).Msg("Student created")
		return nil
	}

	changed, err := form.Diff(f.original, values)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}
	updated, err := f.client.Students().Update(ctx, f.ID, changed)
	if err != nil {
		return err
	}
	f.original = updated
	f.log.Info().Int("fields", len(changed)).Msg("Student updated")
	return nil
}
