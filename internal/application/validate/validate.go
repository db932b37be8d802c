// Package validate checks request-shaped structs with go-playground/validator and
// reports failures as fault.Validation errors carrying per-field messages.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"communityhub/internal/domain/donation"
	"communityhub/internal/domain/fault"
	"communityhub/internal/domain/schedule"
	"communityhub/internal/domain/volunteer"
)

// Message is the top-level text of every validation failure.
const Message = "validation failed"

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	must(val.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return donation.SlugPattern.MatchString(fl.Field().String())
	}))
	must(val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return volunteer.ValidPhone(fl.Field().String())
	}))
	must(val.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return schedule.IsValidDay(fl.Field().String())
	}))
	must(val.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	}))
	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s against its `validate` tags.
// PRE: s is a struct or pointer to struct
// POST: nil when valid; otherwise a fault.Validation listing every failing field
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fault.Internal("validation misconfigured", err)
	}
	fields := make([]fault.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fault.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return fault.Validation(Message, fields...)
}

// Domain wraps a domain rule violation as a validation failure on field.
func Domain(field string, err error) error {
	return fault.Validation(Message, fault.FieldError{Field: field, Message: err.Error()})
}

// fieldPath drops the root struct name so nested fields read as "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must be lowercase letters, digits, hyphens or underscores"
	case "phone":
		return "must be a valid phone number"
	case "weekday":
		return "must be one of Mon, Tue, Wed, Thu, Fri, Sat, Sun"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "unique":
		return "must not contain duplicates"
	default:
		return "is invalid"
	}
}
