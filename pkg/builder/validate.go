package builder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukex/flowdesk/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// ValidateWorkflow returns the field errors of a workflow, or nil when it can be saved.
func ValidateWorkflow(workflow *models.Workflow) FieldErrors {
	err := validate.Struct(workflow)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"workflow": err.Error()}
	}

	fieldErrors := make(FieldErrors, len(validationErrors))

	for _, fieldError := range validationErrors {
		field := strings.TrimPrefix(fieldError.Namespace(), "Workflow.")
		fieldErrors[field] = message(fieldError)
	}

	return fieldErrors
}

func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fieldError.Param())
	case "min":
		if fieldError.Field() == "steps" {
			return "at least one step is required"
		}

		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fieldError.Param())
	default:
		return fmt.Sprintf("failed %s validation", fieldError.Tag())
	}
}
