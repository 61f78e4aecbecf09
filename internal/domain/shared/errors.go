package shared

import "errors"

// Error codes shared by the domain and the HTTP layer
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeStorage         = "STORAGE_ERROR"
	CodeDatabase        = "DATABASE_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so
// errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps err as its cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports a missing or malformed input field
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError reports an unknown resource
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewConflictError reports a duplicate resource
func NewConflictError(message string) *DomainError {
	return NewDomainError(CodeAlreadyExists, message)
}

// NewPayloadTooLargeError reports an upload over the configured limit
func NewPayloadTooLargeError(message string) *DomainError {
	return NewDomainError(CodePayloadTooLarge, message)
}

// NewStorageError reports an object store fault; the cause is kept in the message
func NewStorageError(message string, err error) *DomainError {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return WrapDomainError(CodeStorage, message, err)
}

// NewDatabaseError reports a relational store fault; the cause is kept in the message
func NewDatabaseError(message string, err error) *DomainError {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return WrapDomainError(CodeDatabase, message, err)
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeValidation, "Invalid input provided")
)

// CodeOf returns the domain error code carried by err, or "" if none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
