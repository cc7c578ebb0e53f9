// Package validate runs the client-side pre-flight checks. A failure is
// always a *domain.ValidationError and is raised before any network call.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pulsepr/storefront/internal/core/domain"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("size", func(fl validator.FieldLevel) bool {
			return domain.Size(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return convert(instance().Struct(s))
}

// Var validates a single value; name is used in the message.
func Var(name string, field any, tag string) error {
	err := instance().Var(field, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, message(name, fe))
		}
		return &domain.ValidationError{Fields: msgs}
	}
	return err
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, message(strings.ToLower(fe.Field()), fe))
		}
		return &domain.ValidationError{Fields: msgs}
	}
	return err
}

// message converts a single failed rule into a human-readable message.
func message(field string, fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()
	switch tag {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must contain at least %s item(s)", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "size":
		return fmt.Sprintf("%s must be one of: S M L XL XXL", field)
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", field, strings.ToLower(param))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, strings.ToLower(param))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, tag)
	}
}
