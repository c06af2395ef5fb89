package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
)

// FieldViolation is one schema violation found during validation.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every field violation found in a payload, not just
// the first one.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// HasViolations reports whether any violation was recorded.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// FetchError indicates the remote endpoint answered with a non-success
// HTTP status.
type FetchError struct {
	URL        string
	Status     int
	StatusText string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %d %s", e.URL, e.Status, e.StatusText)
}

// NetworkError indicates the call could not complete at the transport level.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// CacheError indicates the cache store was unreachable or misbehaved.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
