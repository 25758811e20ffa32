package errors

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrPaymentRequestNotFound = errors.New("payment request not found")
	ErrQuoteNotFound          = errors.New("quote not found")
	ErrLeadNotFound           = errors.New("lead not found")
	ErrPaymentNotFound        = errors.New("payment not found")

	// Confirmation errors
	ErrGatewayNotConfigured  = errors.New("payment gateway secret is not configured")
	ErrPaymentRequestExpired = errors.New("payment request has expired")

	// Gateway errors
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
