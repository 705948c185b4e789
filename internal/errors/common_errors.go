package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema           ErrorType = "SCHEMA"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeInvalidInterval  ErrorType = "INVALID_INTERVAL"
	ErrTypeNumericCoercion  ErrorType = "NUMERIC_COERCION"
	ErrTypeParsing          ErrorType = "PARSING"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same type, so sentinel-style checks work
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is checks; they carry only a type
var (
	ErrSchema           = &AppError{Type: ErrTypeSchema}
	ErrInsufficientData = &AppError{Type: ErrTypeInsufficientData}
	ErrInvalidInterval  = &AppError{Type: ErrTypeInvalidInterval}
	ErrNumericCoercion  = &AppError{Type: ErrTypeNumericCoercion}
)

// Helper functions for common error types

// NewSchemaError reports a required column missing from an input table
func NewSchemaError(source string, missing ...string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("%s is missing required columns %v", source, missing), nil).
		WithContext("source", source).
		WithContext("missing_columns", missing)
}

// NewInsufficientDataError reports a series too short to split or fit
func NewInsufficientDataError(rows, trainRows int) *AppError {
	return NewAppError(ErrTypeInsufficientData,
		fmt.Sprintf("series of %d rows yields a training split of %d rows", rows, trainRows), nil).
		WithContext("rows", rows).
		WithContext("train_rows", trainRows)
}

// NewInvalidIntervalError reports a forecast row whose bounds do not enclose the estimate
func NewInvalidIntervalError(date string, point, lower, upper float64) *AppError {
	return NewAppError(ErrTypeInvalidInterval,
		fmt.Sprintf("invalid interval on %s: lower=%g point=%g upper=%g", date, lower, point, upper), nil).
		WithContext("date", date).
		WithContext("lower", lower).
		WithContext("point", point).
		WithContext("upper", upper)
}

// NewNumericCoercionError reports a value column cell that is not a number
func NewNumericCoercionError(column string, line int, value string, cause error) *AppError {
	return NewAppError(ErrTypeNumericCoercion,
		fmt.Sprintf("column %s line %d: cannot parse %q as a number", column, line, value), cause).
		WithContext("column", column).
		WithContext("line", line).
		WithContext("value", value)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether any AppError in err's chain has the given type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Type == errType {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// TypeOf returns the type of the outermost AppError in err's chain, or "" if there is none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// ExitCode maps an error to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch TypeOf(err) {
	case ErrTypeConfig, ErrTypeValidation:
		return 2
	case ErrTypeSchema:
		return 3
	case ErrTypeNumericCoercion, ErrTypeParsing:
		return 4
	case ErrTypeInsufficientData:
		return 5
	case ErrTypeInvalidInterval:
		return 6
	case ErrTypeStorage, ErrTypeNotFound:
		return 7
	default:
		return 1
	}
}
