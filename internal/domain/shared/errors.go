// Package shared contains common domain types, errors and value objects
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
	"strings"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidArea   = errors.New("invalid area")
	ErrInvalidDate   = errors.New("invalid date")
	ErrFutureDate    = errors.New("date is in the future")
	ErrInvalidStatus = errors.New("invalid attendance status")
	ErrEmptyValue    = errors.New("value cannot be empty")

	// Authorization errors
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMisconfiguredIdentity = errors.New("misconfigured identity")

	// Attendance errors
	ErrAlreadySubmitted = errors.New("attendance already submitted")
	ErrIncompleteRoster = errors.New("records do not match roster")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknownOutcome     = errors.New("write outcome unknown")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "attendance", "access", "student"
	Op      string // operation that failed, e.g., "Submit", "Authorize"
	Kind    error  // base error for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching on both Kind and the wrapped error.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Validation is a shorthand for a validation DomainError with a specific kind.
// The returned error matches both ErrValidation and kind.
func Validation(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     ErrValidation,
	}
}

// RosterMismatch describes how submitted records differ from the roster.
type RosterMismatch struct {
	Missing   []string // roster student ids with no record
	Duplicate []string // student ids submitted more than once
	Unknown   []string // submitted ids not on the roster
}

// Empty reports whether the records matched the roster exactly.
func (m RosterMismatch) Empty() bool {
	return len(m.Missing) == 0 && len(m.Duplicate) == 0 && len(m.Unknown) == 0
}

// IncompleteRosterError is returned when a submission does not cover the roster exactly once.
type IncompleteRosterError struct {
	Area     string
	Mismatch RosterMismatch
	Reason   string
}

func (e *IncompleteRosterError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("attendance.Submit: incomplete roster for %s: %s", e.Area, e.Reason)
	}
	var parts []string
	if n := len(e.Mismatch.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", n))
	}
	if n := len(e.Mismatch.Duplicate); n > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate", n))
	}
	if n := len(e.Mismatch.Unknown); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown", n))
	}
	return fmt.Sprintf("attendance.Submit: incomplete roster for %s: %s", e.Area, strings.Join(parts, ", "))
}

// Is matches ErrIncompleteRoster.
func (e *IncompleteRosterError) Is(target error) bool {
	return target == ErrIncompleteRoster
}

// Attendance domain errors
var (
	ErrAttendanceAlreadySubmitted = NewDomainError("attendance", "Submit", ErrAlreadySubmitted, "attendance already submitted for this area and date")
	ErrAttendanceDayNotFound      = NewDomainError("attendance", "GetDay", ErrNotFound, "no attendance for this area and date")
	ErrAttendanceOutcomeUnknown   = NewDomainError("attendance", "Submit", ErrUnknownOutcome, "write timed out; re-check status before retrying")
)

// Access domain errors
var (
	ErrAreaMismatch       = NewDomainError("access", "Authorize", ErrUnauthorized, "identity is not bound to the requested area")
	ErrRoleNotPermitted   = NewDomainError("access", "Authorize", ErrUnauthorized, "role is not permitted to perform this operation")
	ErrTeacherWithoutArea = NewDomainError("access", "Authorize", ErrMisconfiguredIdentity, "teacher identity has no bound area")
)

// Directory domain errors
var (
	ErrTeacherNotFound = NewDomainError("teacher", "Find", ErrNotFound, "teacher not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidArea) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrFutureDate) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyValue)
}

// IsRetryable reports whether the caller may retry with backoff.
// ErrUnknownOutcome is deliberately excluded: it requires a status re-check.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) && !errors.Is(err, ErrUnknownOutcome)
}
