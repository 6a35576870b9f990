package screens

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartsecretaria/secretaria/internal/api"
	"github.com/smartsecretaria/secretaria/internal/form"
	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/navigation"
	"github.com/smartsecretaria/secretaria/internal/pkg/validation"
	"github.com/smartsecretaria/secretaria/internal/resource"
)

// nameFields change the generated class name
var nameFields = map[string]bool{"serie": true, "turma_letra": true, "periodo": true}

// ClassForm creates or edits a class. Launched from the student form it returns there
// with the student's values and the id of the saved class.
type ClassForm struct {
	ID       int64
	Form     *form.State[models.Class]
	Choices  *resource.Hook[models.ClassChoices]
	Teachers *resource.Hook[[]models.Teacher]

	client   *api.Client
	nav      navigation.Navigator
	original models.Class
	savedID  int64
	log      zerolog.Logger

	returnTo    string
	formData    json.RawMessage
	fromStudent bool
}

// NewClassDefaults returns the values of an empty class form
func NewClassDefaults(now time.Time) models.Class {
	return models.Class{
		Grade:   1,
		Level:   models.LevelEarlyChildhood,
		Section: "A",
		Year:    now.Year(),
		Period:  models.PeriodMorning,
	}
}

// NewClassForm creates the class form; id zero opens it in create mode
func NewClassForm(c *api.Client, nav navigation.Navigator, policy validation.Policy, id int64, log zerolog.Logger) *ClassForm {
	log = log.With().Str("screen", "class_form").Int64("id", id).Logger()
	f := &ClassForm{
		ID:       id,
		Choices:  resource.ClassChoices(c, log),
		Teachers: resource.Teachers(c, log),
		client:   c,
		nav:      nav,
		log:      log,
	}
	f.Form = form.New(NewClassDefaults(time.Now()), f.save,
		form.WithValidator(func(cl models.Class) map[string]string {
			return validation.ValidateClass(policy, cl)
		}),
		form.WithLogger[models.Class](log),
	)
	return f
}

// LaunchedFromStudent reports whether the form returns to the student form
func (f *ClassForm) LaunchedFromStudent() bool {
	return f.fromStudent
}

// Load reads the navigation state and fetches the choices, the teachers and, in edit mode, the class
func (f *ClassForm) Load(ctx context.Context) error {
	if state := f.nav.Current().State; state != nil {
		f.returnTo = state.ReturnTo
		f.formData = state.FormData
		f.fromStudent = state.Context == navigation.ContextNewStudent && state.ReturnTo != ""
	}

	choices := f.Choices.Load(ctx)
	teachers := f.Teachers.Load(ctx)
	if choices.Error != "" || teachers.Error != "" {
		f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
		return fmt.Errorf("load class form: %s%s", choices.Error, teachers.Error)
	}

	if f.ID != 0 {
		original, err := f.client.Classes().Get(ctx, f.ID)
		if err != nil {
			f.log.Error().Err(err).Msg("Failed to load class")
			f.Form.SetErrors(map[string]string{generalField: LoadFailedMessage})
			return err
		}
		f.original = original
		f.Form.SetValues(original)
		return nil
	}

	f.refreshName()
	return nil
}

// SetField sets a field by JSON name and regenerates the name when a part of it changed
func (f *ClassForm) SetField(name string, value interface{}) error {
	if err := f.Form.SetField(name, value); err != nil {
		return err
	}
	if nameFields[name] {
		f.refreshName()
	}
	return nil
}

func (f *ClassForm) refreshName() {
	choices := f.Choices.Snapshot().Data
	f.Form.Update(func(c *models.Class) {
		if name := choices.ClassName(c.Grade, c.Section, c.Period); name != "" {
			c.Name = name
		}
	})
}

// TeacherOptions lists the loaded teachers for the responsible teacher select
func (f *ClassForm) TeacherOptions() []Option {
	teachers := f.Teachers.Snapshot().Data
	out := make([]Option, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, Option{Value: t.ID, Label: t.Name})
	}
	return out
}

// Submit validates and saves. From the student form it navigates back carrying the
// student's values and the saved class id; otherwise it opens the class list.
func (f *ClassForm) Submit(ctx context.Context) error {
	if err := f.Form.Submit(ctx); err != nil {
		return err
	}

	if f.fromStudent {
		f.nav.NavigateWithState(f.returnTo, navigation.State{
			FormData:   f.formData,
			NewClassID: f.savedID,
		})
		return nil
	}
	f.nav.Navigate(navigation.ClassesPath)
	return nil
}

// Cancel leaves without saving; the student's values are handed back untouched
func (f *ClassForm) Cancel() {
	if f.fromStudent {
		f.nav.NavigateWithState(f.returnTo, navigation.State{FormData: f.formData})
		return
	}
	f.nav.Navigate(navigation.ClassesPath)
}

// Close stops the background loads
func (f *ClassForm) Close() {
	f.Choices.Unmount()
	f.Teachers.Unmount()
}

func (f *ClassForm) save(ctx context.Context, values models.Class) error {
	if f.ID == 0 {
		created, err := f.client.Classes().Create(ctx, values)
		if err != nil {
			return err
		}
		f.savedID = created.ID
		f.log.Info().Int64("class", created.ID).Str("name", created.Name).Msg("Class created")
		return nil
	}

	f.savedID = f.ID
	changed, err := form.Diff(f.original, values)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		return nil
	}
	updated, err := f.client.Classes().Update(ctx, f.ID, changed)
	if err != nil {
		return err
	}
	f.original = updated
	return nil
}
