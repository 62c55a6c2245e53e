// Package apperr holds the error taxonomy shared by the store, identity and auth layers.
// Typed errors unwrap to a sentinel so callers can branch with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced id or key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation is returned when a required, length, uniqueness or
	// foreign key constraint rejects a write.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrValidation is returned for registration-time input problems.
	ErrValidation = errors.New("validation failed")

	// ErrAuthenticationFailure is returned when credentials do not verify.
	// It never says whether the user exists.
	ErrAuthenticationFailure = errors.New("invalid email or password")
)

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}
	return e.Entity + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

// ConstraintViolationError names the entity/field/constraint that rejected a write.
// Constraint is one of "required", "max", "gt", "unique", "foreign_key", "restrict"
// or the raw tag reported by the validator.
type ConstraintViolationError struct {
	Entity     string
	Field      string
	Constraint string
	Detail     string
}

func (e *ConstraintViolationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Entity)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Constraint)
	b.WriteString(" constraint violated")
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

func (e *ConstraintViolationError) Unwrap() error { return ErrConstraintViolation }

func ConstraintViolation(entity, field, constraint, detail string) error {
	return &ConstraintViolationError{Entity: entity, Field: field, Constraint: constraint, Detail: detail}
}

// Reason is one entry of a ValidationError.
type Reason struct {
	Code        string
	Description string
}

// ValidationError carries every reason the input was rejected, not only the first.
type ValidationError struct {
	Reasons []Reason
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, r.Description)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Has reports whether a reason with the given code is present.
func (e *ValidationError) Has(code string) bool {
	for _, r := range e.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// Codes returns the reason codes in order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		codes = append(codes, r.Code)
	}
	return codes
}

func Validation(reasons ...Reason) error {
	return &ValidationError{Reasons: reasons}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConstraintViolation(err error) bool { return errors.Is(err, ErrConstraintViolation) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsAuthenticationFailure(err error) bool { return errors.Is(err, ErrAuthenticationFailure) }
