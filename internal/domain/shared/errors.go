package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes surfaced at the operation boundary
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeSequenceExhausted = "SEQUENCE_EXHAUSTED"
	CodeImmutableField    = "IMMUTABLE_FIELD"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so wrapped or
// re-messaged errors still satisfy errors.Is(err, ErrNotFound).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict = NewDomainError(CodeConflict, "Resource already exists")
)

// NotFound returns a not-found error naming the missing resource
func NotFound(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// Conflict returns a uniqueness error naming the clashing value
func Conflict(message string) *DomainError {
	return NewDomainError(CodeConflict, message)
}

// ValidationError carries every field-level rule violation found for one request
type ValidationError struct {
	Issues Issues
}

// NewValidationError wraps the given issues; returns nil when there are none
func NewValidationError(issues Issues) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Code returns the stable error code
func (e *ValidationError) Code() string {
	return CodeValidationFailed
}

// SequenceExhaustedError is returned when an entity class has no ordinals left
type SequenceExhaustedError struct {
	Class string
}

// Error implements the error interface
func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("Maximum sequence reached for %s. Contact administrator.", e.Class)
}

// Code returns the stable error code
func (e *SequenceExhaustedError) Code() string {
	return CodeSequenceExhausted
}

// ImmutableFieldError is returned when a locked field is changed after submission
type ImmutableFieldError struct {
	Field   string
	Message string
}

// NewImmutableFieldError builds an ImmutableFieldError with the default message
func NewImmutableFieldError(field string) *ImmutableFieldError {
	return &ImmutableFieldError{
		Field:   field,
		Message: fmt.Sprintf("%s is locked after submission and cannot be changed", field),
	}
}

// Error implements the error interface
func (e *ImmutableFieldError) Error() string {
	return e.Message
}

// Code returns the stable error code
func (e *ImmutableFieldError) Code() string {
	return CodeImmutableField
}

// CodeOf returns the stable code carried by err or anything it wraps, or ""
// when err is not one of the taxonomy errors.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
