package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidTerms     = errors.New("invalid loan terms")
	ErrInvalidEvent     = errors.New("invalid ledger event")
	ErrInvalidQuery     = errors.New("invalid ledger query")
	ErrLowInstallment   = errors.New("installment below computed minimum")
	ErrCacheUnavailable = errors.New("result cache unavailable")
)

// DomainError carries a stable code alongside the human-readable message so
// transport layers can map failures without string matching.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new coded error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidTerms   = "INVALID_TERMS"
	ErrCodeInvalidEvent   = "INVALID_EVENT"
	ErrCodeInvalidQuery   = "INVALID_QUERY"
	ErrCodeLowInstallment = "INSTALLMENT_TOO_LOW"
	ErrCodeCacheError     = "CACHE_ERROR"
	ErrCodeExportError    = "EXPORT_ERROR"
)

// Wrap common errors with domain context

func WrapInvalidTerms(detail string) *DomainError {
	return NewDomainError(
		ErrCodeInvalidTerms,
		detail,
		ErrInvalidTerms,
	)
}

func WrapInvalidEvent(detail string) *DomainError {
	return NewDomainError(
		ErrCodeInvalidEvent,
		detail,
		ErrInvalidEvent,
	)
}

func WrapInvalidQuery(detail string) *DomainError {
	return NewDomainError(
		ErrCodeInvalidQuery,
		detail,
		ErrInvalidQuery,
	)
}

func WrapLowInstallment(supplied, minimum string) *DomainError {
	return NewDomainError(
		ErrCodeLowInstallment,
		fmt.Sprintf("installment %s is below the computed minimum %s", supplied, minimum),
		ErrLowInstallment,
	)
}

func WrapCacheError(err error) *DomainError {
	return NewDomainError(
		ErrCodeCacheError,
		"cache operation failed",
		errors.Join(ErrCacheUnavailable, err),
	)
}

func WrapExportError(format string, err error) *DomainError {
	return NewDomainError(
		ErrCodeExportError,
		fmt.Sprintf("rendering %s export failed", format),
		err,
	)
}
