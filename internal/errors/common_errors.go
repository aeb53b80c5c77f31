package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeNoMatch    ErrorType = "NO_MATCH"
	ErrTypeJoin       ErrorType = "JOIN"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// Sentinels matched by errors.Is against any AppError of the same type.
var (
	ErrParse       = stderrors.New("parse error")
	ErrNoMatch     = stderrors.New("no match")
	ErrJoin        = stderrors.New("join error")
	ErrMissingFile = stderrors.New("missing file")
	ErrStorage     = stderrors.New("storage error")
	ErrValidation  = stderrors.New("validation error")
	ErrConfig      = stderrors.New("config error")
)

var sentinelByType = map[ErrorType]error{
	ErrTypeParsing:    ErrParse,
	ErrTypeNoMatch:    ErrNoMatch,
	ErrTypeJoin:       ErrJoin,
	ErrTypeNotFound:   ErrMissingFile,
	ErrTypeStorage:    ErrStorage,
	ErrTypeValidation: ErrValidation,
	ErrTypeConfig:     ErrConfig,
}

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

// Is reports whether target is the sentinel for this error's type.
func (e *AppError) Is(target error) bool {
	sentinel, ok := sentinelByType[e.Type]
	return ok && sentinel == target
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

// TypeOf returns the ErrorType of the first AppError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
