package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping it in a FindError
	findErr := New(ErrCodeFilePermission, "cannot open notes.txt", originalErr)

	// Then: unwrapping returns the original error
	require.NotNil(t, findErr)
	assert.Equal(t, originalErr, errors.Unwrap(findErr))
	assert.True(t, errors.Is(findErr, originalErr))
}

func TestFindError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "unknown key",
			expected: "[ERR_102_CONFIG_INVALID] unknown key",
		},
		{
			name:     "root error",
			code:     ErrCodeRootNotFound,
			message:  "root missing",
			expected: "[ERR_201_ROOT_NOT_FOUND] root missing",
		},
		{
			name:     "pattern error",
			code:     ErrCodeInvalidPattern,
			message:  "bad regex",
			expected: "[ERR_402_INVALID_PATTERN] bad regex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestFindError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code
	err1 := New(ErrCodeFileUnreadable, "a.txt unreadable", nil)
	err2 := New(ErrCodeFileUnreadable, "b.txt unreadable", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
}

func TestFindError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeFileUnreadable, "unreadable", nil)
	err2 := New(ErrCodeConfigInvalid, "config invalid", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestFindError_Is_ThroughFmtWrap(t *testing.T) {
	// Given: a FindError wrapped by fmt.Errorf
	inner := RootNotFoundError("/nope", nil)
	wrapped := fmt.Errorf("search: %w", inner)

	// Then: code lookups see through the wrapper
	assert.True(t, errors.Is(wrapped, New(ErrCodeRootNotFound, "", nil)))
	assert.Equal(t, ErrCodeRootNotFound, GetCode(wrapped))
}

func TestFindError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeMapFailed, "mmap failed", nil)

	err = err.WithDetail("path", "/data/big.log")
	err = err.WithDetail("size", "20971520")

	assert.Equal(t, "/data/big.log", err.Details["path"])
	assert.Equal(t, "20971520", err.Details["size"])
}

func TestFindError_WithSuggestion_AddsSuggestion(t *testing.T) {
	err := New(ErrCodeInvalidRequest, "buffer size must be positive", nil)

	err = err.WithSuggestion("use --buffer-size 8192")

	assert.Equal(t, "use --buffer-size 8192", err.Suggestion)
}

func TestFindError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeRootNotFound, CategoryIO},
		{ErrCodeFilePermission, CategoryIO},
		{ErrCodeFileUnreadable, CategoryIO},
		{ErrCodeMapFailed, CategoryIO},
		{ErrCodeInvalidEncoding, CategoryIO},
		{ErrCodeInvalidInput, CategoryValidation},
		{ErrCodeInvalidPattern, CategoryValidation},
		{ErrCodeInvalidRequest, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"BOGUS", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestFindError_SeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantSeverity Severity
	}{
		{ErrCodeRootNotFound, SeverityFatal},
		{ErrCodeInvalidPattern, SeverityFatal},
		{ErrCodeConfigInvalid, SeverityFatal},
		{ErrCodeFilePermission, SeverityWarning},
		{ErrCodeInvalidEncoding, SeverityWarning},
		{ErrCodeMapFailed, SeverityWarning},
		{ErrCodeInvalidRequest, SeverityError},
		{ErrCodeInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestWrap_CreatesFindErrorFromError(t *testing.T) {
	// Given: a standard error
	originalErr := errors.New("something went wrong")

	// When: wrapping with a code
	findErr := Wrap(ErrCodeInternal, originalErr)

	// Then: creates a proper FindError
	require.NotNil(t, findErr)
	assert.Equal(t, ErrCodeInternal, findErr.Code)
	assert.Equal(t, "something went wrong", findErr.Message)
	assert.Equal(t, originalErr, findErr.Cause)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestConfigError_CreatesConfigCategoryError(t *testing.T) {
	err := ConfigError("invalid yaml syntax", nil)

	assert.Equal(t, CategoryConfig, err.Category)
	assert.Contains(t, err.Code, "CONFIG")
}

func TestPatternError_IncludesPatternAndSuggestion(t *testing.T) {
	cause := errors.New("missing closing )")

	err := PatternError("content", "foo(", cause)

	assert.Equal(t, ErrCodeInvalidPattern, err.Code)
	assert.Equal(t, CategoryValidation, err.Category)
	assert.Contains(t, err.Message, "content")
	assert.Contains(t, err.Message, "foo(")
	assert.Equal(t, "foo(", err.Details["pattern"])
	assert.NotEmpty(t, err.Suggestion)
	assert.ErrorIs(t, err, cause)
}

func TestRootNotFoundError_IsFatal(t *testing.T) {
	err := RootNotFoundError("/does/not/exist", nil)

	assert.Equal(t, "/does/not/exist", err.Details["root"])
	assert.Equal(t, SeverityFatal, err.Severity)
}

func TestValidationError_CreatesValidationCategoryError(t *testing.T) {
	err := ValidationError("context must not be negative", nil)

	assert.Equal(t, CategoryValidation, err.Category)
	assert.Equal(t, ErrCodeInvalidRequest, err.Code)
}

func TestGetCode_StandardErrorIsEmpty(t *testing.T) {
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCode(nil))
}
