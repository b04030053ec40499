package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")
	ErrInvalidInput = errors.New("domain: invalid input")

	// ErrInactiveWebsite is distinct from ErrNotFound so public callers can
	// answer with the offline page instead of a 404.
	ErrInactiveWebsite = errors.New("domain: website is offline")

	// ErrAdminDisabled gates the embedded per-website admin panel only.
	ErrAdminDisabled = errors.New("domain: website admin is disabled")

	// ErrConcurrencyConflict marks a write that lost a race against another
	// transaction. Stores retry it; it should not reach HTTP callers.
	ErrConcurrencyConflict = errors.New("domain: concurrency conflict")
)

// Resource-specific not-found errors. Each wraps ErrNotFound.
var (
	ErrWebsiteNotFound = fmt.Errorf("website: %w", ErrNotFound)
	ErrPageNotFound    = fmt.Errorf("page: %w", ErrNotFound)
	ErrSectionNotFound = fmt.Errorf("section: %w", ErrNotFound)
)

// ValidationError reports malformed mutation input. It unwraps to
// ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return "invalid input: " + e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid returns a *ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
