package orchestrators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a form input that failed its struct tag rules.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return e.Field + " is required"
	case "max":
		return e.Field + " is too long"
	case "gt":
		return e.Field + " must be selected"
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
	}
}

var validate = newValidator()

// newValidator reports fields by their `label` tag so messages read like the form.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	return v
}

// validateInput checks input's `validate` tags.
// POST: returns the first failure as *ValidationError
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &ValidationError{Field: ve[0].Field(), Rule: ve[0].Tag()}
	}
	return err
}

// trimmed returns s without surrounding whitespace; inputs are trimmed before validation.
func trimmed(s string) string {
	return strings.TrimSpace(s)
}
