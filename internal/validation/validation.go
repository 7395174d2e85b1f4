// Package validation binds and validates request payloads.
//
// Rules are expressed with validator struct tags; failures are converted
// into per-field messages a client can act on.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
type Validatable interface {
	Validate() error
}

var validate = validator.New()

// Struct runs tag validation against v with the shared validator instance
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// FieldError is a single validation issue for a specific field
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationFailed is returned by BindAndValidate when payload validation
// fails. It carries field-level detail for the error handler.
type ValidationFailed struct {
	Fields []FieldError
}

func (e *ValidationFailed) Error() string {
	return "validation failed"
}

// BindAndValidate parses the JSON body into payload and validates it.
// A malformed body or failed rule produces a 400 with field detail.
func BindAndValidate(c *fiber.Ctx, payload Validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := payload.Validate(); err != nil {
		return &ValidationFailed{Fields: extractFieldErrors(err)}
	}
	return nil
}

func extractFieldErrors(err error) []FieldError {
	var fieldErrors []FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Error: err.Error()}}
	}

	for _, ve := range validationErrors {
		field := strings.ToLower(ve.Field())
		var msg string

		switch ve.Tag() {
		case "required":
			msg = "is required"
		case "min":
			if ve.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", ve.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", ve.Param())
			}
		case "max":
			if ve.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", ve.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", ve.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", ve.Param())
		case "email":
			msg = "must be a valid email address"
		case "uuid":
			msg = "must be a valid UUID"
		case "datetime":
			msg = fmt.Sprintf("must match format %s", ve.Param())
		default:
			if ve.Param() != "" {
				msg = fmt.Sprintf("%s:%s", ve.Tag(), ve.Param())
			} else {
				msg = ve.Tag()
			}
		}

		fieldErrors = append(fieldErrors, FieldError{Field: field, Error: msg})
	}

	return fieldErrors
}
