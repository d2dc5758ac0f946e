package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below unwraps to exactly one of these, so
// adapters branch with errors.Is and never on message text.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("unavailable")
	ErrParse        = errors.New("parse failed")
	ErrInvalidState = errors.New("invalid state")
)

// NotFoundError names what was looked up. ID may be empty when the lookup
// was by filter, as with "no quote in this category".
type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a write that clashes with existing state, such as
// the remote rejecting a duplicate.
type ConflictError struct {
	Entity string
	Reason string
}

func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError is a rejected input. Field uses the wire name so it can
// be echoed to clients as is; Value is kept for logs only.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue also records the offending value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ForbiddenError is an operation the caller may not perform.
type ForbiddenError struct {
	Operation string
	Reason    string
}

func NewForbiddenError(operation, reason string) error {
	return &ForbiddenError{Operation: operation, Reason: reason}
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is not permitted", e.Operation)
	}

	return fmt.Sprintf("%s is not permitted: %s", e.Operation, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// UnavailableError is a dependency that could not serve the request: a
// storage backend or the remote quote endpoint.
type UnavailableError struct {
	Service string
	Reason  string
}

func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Service + " is unavailable"
	}

	return fmt.Sprintf("%s is unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// ParseError is stored or imported data that could not be decoded. Source
// is a file path, a storage key or "import".
type ParseError struct {
	Source  string
	Message string
	Cause   error
}

func NewParseError(source, message string) error {
	return &ParseError{Source: source, Message: message}
}

// NewParseErrorWithCause keeps the decoder error for logs.
func NewParseErrorWithCause(source, message string, cause error) error {
	return &ParseError{Source: source, Message: message, Cause: cause}
}

func (e *ParseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("parsing %s: %s", e.Source, e.Message)
	}

	return fmt.Sprintf("parsing %s: %s: %v", e.Source, e.Message, e.Cause)
}

// Unwrap exposes both the kind and the decoder error.
func (e *ParseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrParse}
	}

	return []error{ErrParse, e.Cause}
}

// StateError is an operation the sync agent cannot perform in its current
// state, such as resolving a conflict while idle.
type StateError struct {
	Operation string
	State     string
}

func NewStateError(operation, state string) error {
	return &StateError{Operation: operation, State: state}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s is not allowed while %q", e.Operation, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool  { return errors.Is(err, ErrUnavailable) }
func IsParse(err error) bool        { return errors.Is(err, ErrParse) }
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }
