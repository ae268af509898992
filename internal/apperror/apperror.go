package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Code classifies a single entry of an error response.
type Code string

const (
	CodeInvalidInput     Code = "INVALID_INPUT"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeIntegrity        Code = "INTEGRITY_ERROR"
	CodeDatabase         Code = "DATABASE_ERROR"
	CodeUnknown          Code = "UNKNOWN_ERROR"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
)

// FieldError is one entry of the error list returned to clients.
type FieldError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error is the only error type handlers serialize. Every failure that reaches the
// boundary is converted into one of these.
type Error struct {
	Status int
	Errors []FieldError
	cause  error
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s (%s)", fe.Code, fe.Message, fe.Field))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Code, fe.Message))
		}
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return e.cause }

// Has reports whether any entry carries the given code.
func (e *Error) Has(code Code) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// First returns the first entry, or a zero FieldError.
func (e *Error) First() FieldError {
	if len(e.Errors) == 0 {
		return FieldError{}
	}
	return e.Errors[0]
}

func newError(status int, code Code, field, message string) *Error {
	return &Error{Status: status, Errors: []FieldError{{Code: code, Message: message, Field: field}}}
}

func Invalid(field, message string) *Error {
	return newError(fiber.StatusBadRequest, CodeInvalidInput, field, message)
}

func Validation(field, message string) *Error {
	return newError(fiber.StatusUnprocessableEntity, CodeValidation, field, message)
}

func NotFound(field, entity string) *Error {
	return newError(fiber.StatusNotFound, CodeNotFound, field, entity+" not found")
}

func Integrity(field, message string) *Error {
	return newError(fiber.StatusConflict, CodeIntegrity, field, message)
}

func Unauthenticated(message string) *Error {
	return newError(fiber.StatusUnauthorized, CodeUnauthenticated, "", message)
}

func PermissionDenied(message string) *Error {
	return newError(fiber.StatusForbidden, CodePermissionDenied, "", message)
}

// Database masks a driver failure. The cause is kept for logging only.
func Database(cause error) *Error {
	e := newError(fiber.StatusInternalServerError, CodeDatabase, "", "database error")
	e.cause = cause
	return e
}

// Unknown masks an unexpected failure. The cause is kept for logging only.
func Unknown(cause error) *Error {
	e := newError(fiber.StatusInternalServerError, CodeUnknown, "", "an unexpected error occurred")
	e.cause = cause
	return e
}

// Join merges several errors into one list. The status of the first one wins.
func Join(errs ...*Error) *Error {
	var out *Error
	for _, e := range errs {
		if e == nil {
			continue
		}
		if out == nil {
			out = &Error{Status: e.Status, cause: e.cause}
		}
		out.Errors = append(out.Errors, e.Errors...)
	}
	return out
}

// As converts any error into an *Error, masking everything it does not recognise.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unknown(err)
}

// Respond writes err as an error-list payload. Masked causes are logged here so the
// client never sees driver or internal messages.
func Respond(c *fiber.Ctx, err error) error {
	appErr := As(err)
	if appErr.cause != nil && appErr.Status >= fiber.StatusInternalServerError {
		log.Error().Err(appErr.cause).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.Status(appErr.Status).JSON(fiber.Map{"errors": appErr.Errors})
}
