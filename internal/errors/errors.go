package errors

import (
	"fmt"
)

// FindError is the structured error type for fastfind.
// It carries enough context to be logged, printed to a terminal, or encoded as JSON.
type FindError struct {
	// Code is the unique error code (e.g., "ERR_201_ROOT_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *FindError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FindError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *FindError with the same code.
func (e *FindError) Is(target error) bool {
	if t, ok := target.(*FindError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *FindError) WithDetail(key, value string) *FindError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *FindError) WithSuggestion(suggestion string) *FindError {
	e.Suggestion = suggestion
	return e
}

// New creates a new FindError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *FindError {
	return &FindError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a FindError from an existing error.
// The error's message becomes the FindError message.
func Wrap(code string, err error) *FindError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *FindError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// PatternError creates an invalid regular expression error for the named pattern.
func PatternError(which, pattern string, cause error) *FindError {
	return New(ErrCodeInvalidPattern, fmt.Sprintf("invalid %s pattern %q", which, pattern), cause).
		WithDetail("pattern", pattern).
		WithSuggestion("check the regular expression syntax (RE2, see https://github.com/google/re2/wiki/Syntax)")
}

// RootNotFoundError creates an error for a search root that cannot be accessed.
func RootNotFoundError(root string, cause error) *FindError {
	return New(ErrCodeRootNotFound, fmt.Sprintf("search root %q is not accessible", root), cause).
		WithDetail("root", root).
		WithSuggestion("pass an existing directory or file as the search root")
}

// ValidationError creates a request validation error.
func ValidationError(message string, cause error) *FindError {
	return New(ErrCodeInvalidRequest, message, cause)
}

// GetCode extracts the error code from a FindError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	if fe, ok := asFindError(err); ok {
		return fe.Code
	}
	return ""
}

// asFindError walks the Unwrap chain looking for a *FindError.
func asFindError(err error) (*FindError, bool) {
	for err != nil {
		if fe, ok := err.(*FindError); ok {
			return fe, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
