package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// EnvPrefix names the variables that take precedence over the plain `env:` names,
// so SECRETARIA_API_BASE_URL wins over API_BASE_URL.
const EnvPrefix = "SECRETARIA_"

// lookupEnv returns the prefixed variable, then the plain one. Blank values count as unset.
func lookupEnv(name string) (string, string, bool) {
	for _, key := range []string{EnvPrefix + name, name} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return key, strings.TrimSpace(value), true
		}
	}
	return "", "", false
}

// processStructFields walks the config sections and applies the variables named by `env:` tags
func processStructFields(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Nested section
		if field.Kind() == reflect.Struct {
			if err := processStructFields(field.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		name := fieldType.Tag.Get("env")
		if name == "" {
			continue
		}
		key, value, ok := lookupEnv(name)
		if !ok {
			continue
		}
		if err := setFieldFromEnv(field, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	return nil
}

// setFieldFromEnv converts the variable to the field's kind. Durations stay strings
// in Config and are checked by validateConfig.
func setFieldFromEnv(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		if n < 0 {
			return fmt.Errorf("negative value %d", n)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
