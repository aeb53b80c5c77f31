package errors

import (
	"fmt"
)

// NewParseError reports a composite field that does not match the expected
// pattern.
func NewParseError(text string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, fmt.Sprintf("cannot parse %q", text), cause).
		WithContext("text", text)
}

// NewNoMatchError reports that no candidate cleared the matcher's threshold.
func NewNoMatchError(query string, candidates int) *AppError {
	return NewAppError(ErrTypeNoMatch, fmt.Sprintf("no close match for %q among %d candidates", query, candidates), nil).
		WithContext("query", query).
		WithContext("candidates", candidates)
}

// NewJoinError reports rows dropped by an inner join when full coverage is
// required.
func NewJoinError(message string, unmatched []string) *AppError {
	return NewAppError(ErrTypeJoin, message, nil).
		WithContext("unmatched", unmatched)
}

// NewMissingFileError reports an absent source file.
func NewMissingFileError(path string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("source file %s not found", path), cause).
		WithContext("path", path)
}

// NewSchemaError reports a required column missing from a source table.
func NewSchemaError(source, column string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("%s: missing required column %q", source, column), nil).
		WithContext("source", source).
		WithContext("column", column)
}

// NewValidationError creates a validation error with an optional cause
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
