package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure categories for a reconciliation run.
//
// ErrUnextracted is per-document and never fatal: the document is reported
// in the unextracted list and the run continues. ErrStructural and
// ErrEnvironment abort the run before reconciliation.
var (
	ErrUnextracted  = errors.New("document yielded no usable record")
	ErrStructural   = errors.New("ledger structure not recognized")
	ErrEnvironment  = errors.New("environment failure")
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
