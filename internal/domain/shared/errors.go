// Package shared contains common domain types and errors that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Authorization errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "lecture", "member"
	Op      string // Operation that failed, e.g., "Register", "Enroll"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
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

// Is implements errors.Is() matching.
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

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Register", ErrAlreadyExists, "student number already registered")
	ErrInvalidStudentID     = NewDomainError("student", "Validate", ErrInvalidFormat, "student number must match ES### or MS###")
	ErrParentPhoneRequired  = NewDomainError("student", "Register", ErrValidation, "elementary division requires a parent contact number")
	ErrStudentPhoneRequired = NewDomainError("student", "Register", ErrValidation, "middle division requires the student's own contact number")
	ErrDivisionImmutable    = NewDomainError("student", "Update", ErrInvalidInput, "division cannot be changed after registration")
	ErrInvalidScore         = NewDomainError("student", "UpdateScore", ErrValueOutOfRange, "score must be between 0 and 100")
)

// Lecture domain errors
var (
	ErrLectureNotFound    = NewDomainError("lecture", "Find", ErrNotFound, "lecture not found")
	ErrInvalidSchedule    = NewDomainError("lecture", "Validate", ErrValidation, "schedule start time must be before end time")
	ErrNotLectureOwner    = NewDomainError("lecture", "Authorize", ErrForbidden, "caller is not the owning teacher of this lecture")
	ErrAlreadyEnrolled    = NewDomainError("lecture", "Enroll", ErrAlreadyExists, "student is already enrolled in this lecture")
	ErrEnrollmentNotFound = NewDomainError("lecture", "Withdraw", ErrNotFound, "student is not enrolled in this lecture")
)

// Member domain errors
var (
	ErrMemberNotFound   = NewDomainError("member", "Find", ErrNotFound, "member not found")
	ErrMemberExists     = NewDomainError("member", "Create", ErrAlreadyExists, "member already exists")
	ErrLoginRequired    = NewDomainError("member", "Authenticate", ErrUnauthenticated, "login is required")
	ErrInvalidToken     = NewDomainError("member", "Authenticate", ErrUnauthenticated, "invalid API token")
	ErrInvalidRole      = NewDomainError("member", "Validate", ErrInvalidInput, "invalid member role")
	ErrRoleNotPermitted = NewDomainError("member", "Authorize", ErrForbidden, "member role does not permit this operation")
)

// Notification errors
var (
	ErrNotificationFailed = NewDomainError("notification", "Send", ErrExternalService, "failed to send notification")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a duplicate business-key error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsAuthorization checks if the error is an authentication or authorization error.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden)
}
