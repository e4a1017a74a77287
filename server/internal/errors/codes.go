package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for settings operations.
type ErrorCode string

const (
	// ErrCodeInvalidPagination indicates an out-of-range or missing page-size field.
	ErrCodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
	// ErrCodeInvalidLanguage indicates a language code absent from the supported catalog.
	ErrCodeInvalidLanguage ErrorCode = "INVALID_LANGUAGE"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// SettingsError represents a structured error for settings operations.
type SettingsError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *SettingsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SettingsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *SettingsError) WithContext(key string, value interface{}) *SettingsError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewInvalidPagination builds the error raised when a page-size field is
// missing or outside (1, max]. The offending ceiling is carried in Context.
func NewInvalidPagination(field string, max int) *SettingsError {
	err := &SettingsError{
		Code:    ErrCodeInvalidPagination,
		Message: fmt.Sprintf("%s must be between 2 and %d", field, max),
	}
	return err.WithContext("field", field).WithContext("max", max)
}

// NewInvalidLanguage builds the error raised for an unsupported language code.
func NewInvalidLanguage(code string) *SettingsError {
	err := &SettingsError{
		Code:    ErrCodeInvalidLanguage,
		Message: fmt.Sprintf("language %q is not supported", code),
	}
	return err.WithContext("language", code)
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a SettingsError.
func CodeOf(err error) ErrorCode {
	var settingsErr *SettingsError
	if errors.As(err, &settingsErr) {
		return settingsErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
