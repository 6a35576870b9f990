package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidatedBodyKey holds the body bound by ValidateRequest
const ValidatedBodyKey = "validatedBody"

var validate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest binds the JSON body into a new T and validates it.
// Failures answer 400 with {"field": ["message"]}.
func ValidateRequest[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
			return
		}

		if err := validate.Struct(obj); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
				return
			}
			body := gin.H{}
			for _, fe := range verrs {
				body[fe.Field()] = []string{formatValidationError(fe)}
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, body)
			return
		}

		c.Set(ValidatedBodyKey, obj)
		c.Next()
	}
}

// Body returns the value bound by ValidateRequest
func Body[T any](c *gin.Context) *T {
	v, _ := c.Get(ValidatedBodyKey)
	obj, _ := v.(*T)
	return obj
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo é obrigatório."
	case "min":
		return "Certifique-se de que este campo tenha no mínimo " + e.Param() + " caracteres."
	case "max":
		return "Certifique-se de que este campo não tenha mais de " + e.Param() + " caracteres."
	default:
		return "Valor inválido."
	}
}
