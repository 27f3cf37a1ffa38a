package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every recoverable failure the service layer can
// return. None of these represent a programming defect.
type ErrorCode string

const (
	// ErrCodeValidation: malformed or missing input, always caller-correctable.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeAuth: credential mismatch, caller retries with the correct secret.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeNotFound: referenced entity absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict: uniqueness violation on create.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeBusinessRule: a domain policy would be violated (balance floor,
	// transaction ceiling, protected or self deletion).
	ErrCodeBusinessRule ErrorCode = "BUSINESS_RULE"
)

// AppError is the single error type the service layer returns.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError reports whether err is (or wraps) an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the taxonomy code carried by err, or "" for plain errors.
func CodeOf(err error) ErrorCode {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given taxonomy code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
