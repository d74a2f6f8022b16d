// Package validation checks user input before any backing store call,
// using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	domainerrors "github.com/nikbrunner/shelf/internal/errors"
	"github.com/nikbrunner/shelf/internal/model"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = name[:i]
		}
		if name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("absurl", func(fl validator.FieldLevel) bool {
		return IsAbsoluteURL(fl.Field().String())
	})

	return &Validator{v: v}
}

// IsAbsoluteURL reports whether raw parses as a URL with scheme and host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Draft validates a new bookmark.
func (v *Validator) Draft(d model.Draft) error {
	return v.Validate(d)
}

// Patch validates the fields a patch sets.
func (v *Validator) Patch(p model.Patch) error {
	return v.Validate(p)
}

// CollectionName trims name and rejects it when nothing is left.
func (v *Validator) CollectionName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := v.v.Var(trimmed, "notblank"); err != nil {
		return "", domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"name": "is required"})
	}
	return trimmed, nil
}

// IDs rejects an empty id list or blank ids.
func (v *Validator) IDs(field string, ids []string) error {
	if err := v.v.Var(ids, "min=1,dive,notblank"); err != nil {
		return domainerrors.ValidationWithDetails("validation failed",
			map[string]string{field: "must contain at least one non-empty id"})
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "absurl":
		return "must be an absolute URL"
	case "min":
		return fmt.Sprintf("must contain at least %s items", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
