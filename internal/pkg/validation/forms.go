package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/apperrors"
)

// FieldErrors maps a JSON field name to its user-facing message.
// A field absent from the map is valid.
type FieldErrors map[string]string

// messages maps field -> rule tag -> message
type messages map[string]map[string]string

const relaxedCPFTag = "cpf_relaxed"

var studentMessages = messages{
	"nome_completo": {
		"filled":  "Nome completo é obrigatório",
		"trimmin": "Nome deve ter no mínimo 3 caracteres",
	},
	"data_nascimento":  {"filled": "Data de nascimento é obrigatória"},
	"endereco":         {"filled": "Endereço é obrigatório"},
	"telefone_contato": {"filled": "Telefone é obrigatório", "phone": "Telefone inválido"},
	"turma":            {"required": "Selecione uma turma"},
	"cpf":              {"cpf": "CPF inválido", relaxedCPFTag: "🔧 DEV: CPF deve ter 11 dígitos"},
	"rg":               {"rg": "RG deve ter 7 dígitos"},
	"email":            {"looseemail": "Email inválido"},
}

var teacherMessages = messages{
	"nome": {
		"filled":  "Nome é obrigatório",
		"trimmin": "Nome deve ter no mínimo 3 caracteres",
	},
	"cpf": {
		"required":    "CPF é obrigatório",
		"cpf":         "CPF inválido",
		relaxedCPFTag: "DEV: CPF deve ter 11 dígitos",
	},
	"rg":               {"rg": "RG deve ter 7 dígitos"},
	"email":            {"filled": "Email é obrigatório", "looseemail": "Email inválido"},
	"telefone_contato": {"filled": "Telefone é obrigatório", "phone": "Telefone inválido"},
	"data_admissao":    {"filled": "Data de admissão é obrigatória"},
}

var classMessages = messages{
	"serie":                 {"required": "Série é obrigatória"},
	"turma_letra":           {"filled": "Letra da turma é obrigatória"},
	"ano":                   {"required": "Ano letivo é obrigatório", "min": "Ano inválido", "max": "Ano inválido"},
	"periodo":               {"filled": "Período é obrigatório", "period": "Período inválido"},
	"professor_responsavel": {"required": "Professor responsável é obrigatório"},
}

func (m messages) lookup(field, tag string, p Policy) string {
	if tag == "cpf" && p == Relaxed {
		tag = relaxedCPFTag
	}
	if msg, ok := m[field][tag]; ok {
		return msg
	}
	return field + " inválido"
}

// Validator runs the struct-tag rules of the models
type Validator struct {
	engine *validator.Validate
}

// New creates a Validator with the custom rules registered
func New() *Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	registerRules(engine)
	return &Validator{engine: engine}
}

// Student validates a student record
func (v *Validator) Student(p Policy, s models.Student) FieldErrors {
	return v.check(p, s, studentMessages)
}

// Teacher validates a teacher record
func (v *Validator) Teacher(p Policy, t models.Teacher) FieldErrors {
	return v.check(p, t, teacherMessages)
}

// Class validates a class record
func (v *Validator) Class(p Policy, c models.Class) FieldErrors {
	return v.check(p, c, classMessages)
}

func (v *Validator) check(p Policy, record interface{}, msgs messages) FieldErrors {
	errs := FieldErrors{}

	err := v.engine.StructCtx(withPolicy(context.Background(), p), record)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[apperrors.GeneralField] = "Dados inválidos"
		return errs
	}

	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = msgs.lookup(field, fe.Tag(), p)
	}
	return errs
}

var std = New()

// ValidateStudent validates a student with the shared Validator
func ValidateStudent(p Policy, s models.Student) FieldErrors {
	return std.Student(p, s)
}

// ValidateTeacher validates a teacher with the shared Validator
func ValidateTeacher(p Policy, t models.Teacher) FieldErrors {
	return std.Teacher(p, t)
}

// ValidateClass validates a class with the shared Validator
func ValidateClass(p Policy, c models.Class) FieldErrors {
	return std.Class(p, c)
}

// AsError wraps non-empty field errors into an error matching apperrors.ErrValidationFailed
func (f FieldErrors) AsError() error {
	if len(f) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(f))
	for k, v := range f {
		details[k] = v
	}
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, "validation failed").WithDetails(details)
}
