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

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotGrouped means the operation requires the user to belong to a
	// class and the user has not picked one yet.
	ErrNotGrouped = errors.New("user has no class")

	// ErrInvalidGroup means the requested class is not in the catalog.
	ErrInvalidGroup = errors.New("unknown class")

	// ErrStorageFault wraps failures of the persistent store.
	ErrStorageFault = errors.New("storage fault")

	// ErrDeliveryFailure wraps failures to deliver an outbound message.
	ErrDeliveryFailure = errors.New("delivery failure")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "checkin"
	Op      string // Operation that failed, e.g., "SetMark", "Toggle"
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

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrInvalidUserID     = NewDomainError("user", "Validate", ErrInvalidID, "invalid user ID")
	ErrUserHasNoClass    = NewDomainError("user", "RequireClass", ErrNotGrouped, "user has not picked a class")
	ErrClassNotInCatalog = NewDomainError("user", "SetClass", ErrInvalidGroup, "class is not in the catalog")
)

// Check-in domain errors
var (
	ErrUnknownHabit = NewDomainError("checkin", "Validate", ErrInvalidInput, "habit key is not in the catalog")
	ErrInvalidDay   = NewDomainError("checkin", "Validate", ErrInvalidInput, "day must be YYYY-MM-DD")
)

// Transport errors
var (
	ErrTelegramSendFailed = NewDomainError("telegram", "Send", ErrDeliveryFailure, "Telegram API request failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNotGrouped checks if the error means the user has no class yet.
func IsNotGrouped(err error) bool {
	return errors.Is(err, ErrNotGrouped)
}

// IsInvalidGroup checks if the error means an unknown class was requested.
func IsInvalidGroup(err error) bool {
	return errors.Is(err, ErrInvalidGroup)
}

// IsStorageFault checks if the error came from the persistent store.
func IsStorageFault(err error) bool {
	return errors.Is(err, ErrStorageFault)
}

// IsDeliveryFailure checks if the error came from the outbound transport.
func IsDeliveryFailure(err error) bool {
	return errors.Is(err, ErrDeliveryFailure)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput)
}
