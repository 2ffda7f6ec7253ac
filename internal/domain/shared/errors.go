package shared

import "errors"

// Error codes shared across bounded contexts
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidState         = "INVALID_STATE"
	CodeAlertAlreadyResolved = "ALERT_ALREADY_RESOLVED"
	CodePersistence          = "PERSISTENCE_ERROR"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets callers use errors.Is(err, shared.ErrNotFound) against
// errors created with NewDomainError(CodeNotFound, "...").
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

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorCode extracts the domain error code from err, or "" if err is not a DomainError
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsDomainError reports whether err carries a DomainError anywhere in its chain
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation           = NewDomainError(CodeValidation, "Validation failed")
	ErrInvalidArgument      = NewDomainError(CodeInvalidArgument, "Invalid argument provided")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process, please retry")
	ErrUnauthorized         = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock    = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAlertAlreadyResolved = NewDomainError(CodeAlertAlreadyResolved, "Alert is already resolved")
	ErrPersistence          = NewDomainError(CodePersistence, "Storage operation failed, please retry")
)
