package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrMeetupInPast       = errors.New("meetup date has passed")
	ErrMeetupResolved     = errors.New("meetup already resolved")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminProtected     = errors.New("administrator accounts cannot be deleted")
	ErrAlreadyAdmin       = errors.New("user is already an administrator")
	ErrValidation         = errors.New("validation failed")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries per-field failures and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field failed.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
