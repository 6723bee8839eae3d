package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a bearer token is missing, malformed or revoked.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("resource not found")
)

// ValidationError carries field-level messages for malformed or conflicting input.
type ValidationError struct {
	Fields map[string][]string
	order  []string
}

// NewValidationError returns an empty ValidationError; use Add to populate it.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field already has a message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Empty reports whether no messages were added.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Err returns e as an error, or nil when it holds no messages.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// Error summarizes the first message and how many others follow it,
// e.g. "The email field is required. (and 2 more errors)".
func (e *ValidationError) Error() string {
	var first string
	count := 0
	for _, field := range e.order {
		for _, msg := range e.Fields[field] {
			if first == "" {
				first = msg
				continue
			}
			count++
		}
	}

	switch count {
	case 0:
		return first
	case 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, count)
	}
}
