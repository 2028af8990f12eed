// Package apperrors defines the failure kinds shared by every layer below the HTTP dispatcher.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks malformed, missing or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated marks a missing, invalid or expired credential, or an unknown user.
	ErrUnauthenticated = errors.New("not authorized")
	// ErrNotFound marks a resource that is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail marks a registration with an email that is already taken.
	ErrDuplicateEmail = errors.New("user already exists with this email")
	// ErrTransientStore marks a store timeout or connection failure. The caller may retry.
	ErrTransientStore = errors.New("store temporarily unavailable")
)

// ValidationError carries the violated constraints of a request.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError builds a ValidationError. Fields may be nil.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
