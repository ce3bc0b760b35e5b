package domain

import "errors"

// Sentinel errors shared across entities. Access and authentication failures
// carry no detail about which check failed.
var (
	ErrNotFound           = errors.New("not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports an attribute value failing a declared constraint.
// Message is safe to show to the end user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a secondary-identifier collision (email, username,
// slug). Message is safe to show to the end user.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
