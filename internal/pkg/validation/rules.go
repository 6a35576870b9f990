package validation

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/smartsecretaria/secretaria/internal/models"
	"github.com/smartsecretaria/secretaria/internal/pkg/mask"
)

// Validation rule patterns
var (
	// EmailPattern only requires a local@domain.tld shape
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

	// NameMinLength is the minimum trimmed length of person names
	NameMinLength = 3

	// PhoneMinDigits is the minimum digit count of a phone with area code
	PhoneMinDigits = 10

	// Academic year bounds of a class
	YearMin = 2000
	YearMax = 2100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

type policyKey struct{}

func withPolicy(ctx context.Context, p Policy) context.Context {
	return context.WithValue(ctx, policyKey{}, p)
}

func policyFrom(ctx context.Context) Policy {
	if p, ok := ctx.Value(policyKey{}).(Policy); ok {
		return p
	}
	return Strict
}

// registerRules installs the custom tags used by the model structs
func registerRules(v *validator.Validate) {
	_ = v.RegisterValidation("filled", isFilled)
	_ = v.RegisterValidation("trimmin", hasTrimmedMin)
	_ = v.RegisterValidation("phone", isPhone)
	_ = v.RegisterValidation("looseemail", isLooseEmail)
	_ = v.RegisterValidation("rg", isRG)
	_ = v.RegisterValidation("period", isPeriod)
	_ = v.RegisterValidationCtx("cpf", isCPF)
}

func isFilled(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func hasTrimmedMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
}

func isPhone(fl validator.FieldLevel) bool {
	return len(mask.Digits(fl.Field().String())) >= PhoneMinDigits
}

func isLooseEmail(fl validator.FieldLevel) bool {
	return CompiledPatterns.Email.MatchString(fl.Field().String())
}

// isRG accepts an absent RG; a present one must have exactly 7 digits
func isRG(fl validator.FieldLevel) bool {
	digits := mask.Digits(fl.Field().String())
	return digits == "" || mask.IsValidRG(digits)
}

func isPeriod(fl validator.FieldLevel) bool {
	return models.IsPeriod(strings.TrimSpace(fl.Field().String()))
}

// isCPF accepts an absent CPF unless the tag reads cpf=required; a present one is
// checked according to the policy in ctx
func isCPF(ctx context.Context, fl validator.FieldLevel) bool {
	digits := mask.Digits(fl.Field().String())
	if digits == "" {
		return fl.Param() != "required"
	}
	return CPFAcceptable(policyFrom(ctx), digits)
}

// CPFAcceptable checks a CPF under the given policy: relaxed only counts digits,
// strict runs the modulo-11 check digits.
func CPFAcceptable(p Policy, value string) bool {
	if p == Relaxed {
		return len(mask.Digits(value)) == mask.CPFLength
	}
	return mask.IsValidCPF(value)
}
