package service

import (
	"fmt"
	"strings"
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier receives domain events after their transaction committed.
type Notifier interface {
	Publish(eventType, action string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

// NopNotifier discards every event.
var NopNotifier Notifier = nopNotifier{}

// Ref is a tagged choice for a related entity: either an existing row by ID or the
// payload of a new row. Exactly one side must be set.
type Ref[T any] struct {
	ID  *uuid.UUID `json:"id"`
	New *T         `json:"new"`
}

func (r *Ref[T]) check(field string) error {
	if r == nil {
		return apperror.Invalid(field, "either id or new is required")
	}
	if (r.ID == nil) == (r.New == nil) {
		return apperror.Invalid(field, "exactly one of id or new must be set")
	}
	return nil
}

const minYear = 1950

func plainName(field, value string) (string, error) {
	n, err := validator.NormalizeName(value, validator.NameMin, validator.NameMax, false)
	if err != nil {
		return "", apperror.Validation(field, err.Error())
	}
	return n, nil
}

// productName allows digits, as in model and product names.
func productName(field, value string) (string, error) {
	n, err := validator.NormalizeName(value, validator.NameMin, validator.NameMax, true)
	if err != nil {
		return "", apperror.Validation(field, err.Error())
	}
	return n, nil
}

func checkYear(year int) error {
	max := time.Now().Year()
	if year < minYear || year > max {
		return apperror.Validation("year", fmt.Sprintf("must be between %d and %d", minYear, max))
	}
	return nil
}

func text(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperror.Validation(field, "must not be blank")
	}
	if max > 0 && len([]rune(v)) > max {
		return "", apperror.Validation(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v, nil
}

func actorID(field, actor string) (uuid.UUID, error) {
	id, err := uuid.Parse(actor)
	if err != nil {
		return uuid.Nil, apperror.Invalid(field, "this field is required")
	}
	return id, nil
}

// nest prefixes every field of err with parent, for failures raised by an inline
// payload.
func nest(parent string, err error) error {
	e := apperror.As(err)
	for i := range e.Errors {
		if e.Errors[i].Field == "" {
			e.Errors[i].Field = parent
		} else {
			e.Errors[i].Field = parent + "." + e.Errors[i].Field
		}
	}
	return e
}

// resolve returns the ID a Ref points at, creating the row through s when the ref
// carries a new payload.
func resolve[T any, C any, U any](tx *gorm.DB, field string, ref *Ref[C], s *crud[T, C, U], actor string) (uuid.UUID, error) {
	if err := ref.check(field); err != nil {
		return uuid.Nil, err
	}
	if ref.ID != nil {
		if _, err := s.repo.WithTx(tx).Get(field, *ref.ID); err != nil {
			return uuid.Nil, err
		}
		return *ref.ID, nil
	}
	v, err := s.createTx(tx, ref.New, actor)
	if err != nil {
		return uuid.Nil, nest(field, err)
	}
	return keyOf(v), nil
}
