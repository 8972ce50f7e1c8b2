package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation failed")
	ErrUpstream            = errors.New("backend unavailable")
	ErrSubmitInProgress    = errors.New("submission already in progress")
	ErrDraftLocked         = errors.New("draft is locked while submitting")
	ErrTooManyCombinations = errors.New("too many variant combinations")
	ErrNoSelection         = errors.New("no variants selected")
	ErrNoBulkEdit          = errors.New("no bulk edit open")
	ErrNotIntegrated       = errors.New("integration not implemented")
)

// ValidationError carries per-field messages. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Message string
	Fields  FormErrors
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Message: message, Fields: FormErrors{field: message}}
}

// APIError is a non-2xx answer from the remote backend.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.Status)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }
