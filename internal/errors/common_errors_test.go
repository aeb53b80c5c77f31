package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "no match", errType: ErrTypeNoMatch, expected: "NO_MATCH"},
		{name: "join", errType: ErrTypeJoin, expected: "JOIN"},
		{name: "not found", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeParsing, Message: "cannot parse \"x\""},
			wantMessage: "[PARSING] cannot parse \"x\"",
		},
		{
			name:        "error with cause",
			appError:    &AppError{Type: ErrTypeStorage, Message: "write cache", Cause: errors.New("disk full")},
			wantMessage: "[STORAGE] write cache: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewStorageError("save", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, NewConfigError("bad", nil).Unwrap())
}

func TestAppError_IsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{name: "parse", err: NewParseError("Ohio", nil), sentinel: ErrParse},
		{name: "no match", err: NewNoMatchError("Guam", 50), sentinel: ErrNoMatch},
		{name: "join", err: NewJoinError("unmatched states", []string{"Guam"}), sentinel: ErrJoin},
		{name: "missing file", err: NewMissingFileError("data/x.csv", nil), sentinel: ErrMissingFile},
		{name: "schema", err: NewSchemaError("house", "district"), sentinel: ErrValidation},
		{name: "storage", err: NewStorageError("save", nil), sentinel: ErrStorage},
		{name: "config", err: NewConfigError("load", nil), sentinel: ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))

			wrapped := fmt.Errorf("pipeline: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
		})
	}

	assert.False(t, errors.Is(NewParseError("x", nil), ErrNoMatch))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewNoMatchError("Puerto Rico", 51)

	assert.Equal(t, "Puerto Rico", err.Context["query"])
	assert.Equal(t, 51, err.Context["candidates"])

	var bare AppError
	bare.WithContext("k", "v")
	require.NotNil(t, bare.Context)
	assert.Equal(t, "v", bare.Context["k"])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeNotFound, TypeOf(fmt.Errorf("load: %w", NewMissingFileError("a.csv", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}
