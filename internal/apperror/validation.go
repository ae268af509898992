package apperror

import (
	"fmt"

	"go-carpet-shop/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// FromValidator turns struct validation failures into one entry per field. A
// missing required field is INVALID_INPUT, every other rule VALIDATION_ERROR.
func FromValidator(errs []*validator.ErrorResponse) *Error {
	if len(errs) == 0 {
		return nil
	}
	out := &Error{Status: fiber.StatusUnprocessableEntity}
	for _, e := range errs {
		code := CodeValidation
		if e.Tag == "required" || e.Tag == "uuid_required" {
			code = CodeInvalidInput
			out.Status = fiber.StatusBadRequest
		}
		out.Errors = append(out.Errors, FieldError{
			Code:    code,
			Message: validationMessage(e),
			Field:   e.FailedField,
		})
	}
	return out
}

// Check validates a request struct, returning nil when it is clean.
func Check(req interface{}) *Error {
	return FromValidator(validator.ValidateStruct(req))
}

func validationMessage(e *validator.ErrorResponse) string {
	switch e.Tag {
	case "required", "uuid_required":
		return "this field is required"
	case "gte", "min":
		return fmt.Sprintf("must be at least %s", e.Value)
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", e.Value)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Value)
	case "email":
		return "must be a valid e-mail address"
	case "phone":
		return "must be a valid phone number"
	case "url":
		return "must be a valid URL"
	case "password":
		return "must be 8 to 20 characters with upper, lower, digit and one of @$!%*?&#"
	}
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}
