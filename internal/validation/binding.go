package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FirstError превращает ошибку биндинга gin в одно сообщение для пользователя:
// берётся первая ошибка валидатора.
func FirstError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fieldMessage(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s has an invalid type", humanize(typeErr.Field))
	}

	return "Invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email address"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "uuid", "uuid4":
		return field + " must be a valid id"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s cannot contain more than %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// humanize: "jobTitle" -> "Job title", "job_title" -> "Job title".
func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	prev := rune(0)
	for _, r := range field {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	out := []rune(strings.ToLower(b.String()))
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}
