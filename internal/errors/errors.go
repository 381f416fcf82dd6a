package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseError indicates a syntax tree could not be obtained for a file
	ParseError ErrorCode = "PARSE_ERROR"
	// MissingScope indicates no node of the required kind encloses the anchor line
	MissingScope ErrorCode = "MISSING_SCOPE"
	// InvalidAnchor indicates the issue line is <= 0 or beyond the end of the file
	InvalidAnchor ErrorCode = "INVALID_ANCHOR"
	// MalformedFilterRegex indicates an include/exclude pattern did not compile
	MalformedFilterRegex ErrorCode = "MALFORMED_FILTER_REGEX"
	// UnsupportedLanguage indicates no grammar is registered for the file
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// SourceUnavailable indicates the source file of an issue could not be read
	SourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	// ConfigInvalid indicates the configuration or a rules file is invalid
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Fatal reports whether errors with this code abort the operation that raised them.
// Per-issue and per-file codes degrade locally instead.
func (c ErrorCode) Fatal() bool {
	switch c {
	case MissingScope, InvalidAnchor, ParseError, UnsupportedLanguage, SourceUnavailable:
		return false
	default:
		return true
	}
}

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description,omitempty"`
}

// TraceError represents a warntrace error with code, message, and details
type TraceError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new TraceError
func New(code ErrorCode, message string, cause error) *TraceError {
	return &TraceError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new TraceError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *TraceError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *TraceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TraceError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *TraceError) WithDetails(details interface{}) *TraceError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first TraceError in err's chain.
// Errors that carry no code are reported as InternalError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var te *TraceError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ParseError: {
		{
			Command:     "warntrace scope <file> <line>",
			Description: "Inspect the file with the syntax tree provider",
		},
	},
	UnsupportedLanguage: {
		{
			Description: "Only Go, Java, JavaScript, TypeScript, Python, Rust and Kotlin sources can be fingerprinted",
		},
	},
	MalformedFilterRegex: {
		{
			Description: "Filter patterns use Go RE2 syntax and must match the whole property value",
		},
	},
	ConfigInvalid: {
		{
			Command:     "warntrace init --force",
			Description: "Rewrite the default configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
