package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("unexpected token")

	err := New(ParseError, "cannot parse Foo.java", cause)

	if err.Code != ParseError {
		t.Errorf("Code = %v, want %v", err.Code, ParseError)
	}
	if err.Message != "cannot parse Foo.java" {
		t.Errorf("Message = %q, want %q", err.Message, "cannot parse Foo.java")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestTraceError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      SourceUnavailable,
			message:   "cannot read src/Foo.java",
			cause:     errors.New("no such file"),
			wantParts: []string{"SOURCE_UNAVAILABLE", "cannot read src/Foo.java", "no such file"},
		},
		{
			name:      "without cause",
			code:      MissingScope,
			message:   "no enclosing method",
			cause:     nil,
			wantParts: []string{"MISSING_SCOPE", "no enclosing method"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want it to contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("fingerprint Foo.java:12: %w", Newf(InvalidAnchor, "line %d out of range", 12))

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", New(MalformedFilterRegex, "bad", nil), MalformedFilterRegex},
		{"wrapped", wrapped, InvalidAnchor},
		{"plain error", errors.New("boom"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}

	if !Is(wrapped, InvalidAnchor) {
		t.Error("Is(wrapped, InvalidAnchor) = false, want true")
	}
	if Is(nil, InvalidAnchor) {
		t.Error("Is(nil, InvalidAnchor) = true, want false")
	}
}

func TestTraceError_WithDetails(t *testing.T) {
	err := New(MalformedFilterRegex, "invalid pattern", nil)
	details := map[string]string{"property": "category", "pattern": "("}

	result := err.WithDetails(details)

	if result != err {
		t.Error("WithDetails should return the same error for chaining")
	}
	if err.Details == nil {
		t.Error("Details should be set")
	}
}

func TestErrorCode_Fatal(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ParseError, false},
		{MissingScope, false},
		{InvalidAnchor, false},
		{SourceUnavailable, false},
		{UnsupportedLanguage, false},
		{MalformedFilterRegex, true},
		{ConfigInvalid, true},
		{InternalError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Fatal(); got != tt.want {
				t.Errorf("Fatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		wantNil bool
	}{
		{ParseError, false},
		{MalformedFilterRegex, false},
		{ConfigInvalid, false},
		{MissingScope, true},
		{InternalError, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			fixes := GetSuggestedFixes(tt.code)
			if tt.wantNil && fixes != nil {
				t.Errorf("GetSuggestedFixes(%v) = %v, want nil", tt.code, fixes)
			}
			if !tt.wantNil && len(fixes) == 0 {
				t.Errorf("GetSuggestedFixes(%v) is empty", tt.code)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ParseError,
		MissingScope,
		InvalidAnchor,
		MalformedFilterRegex,
		UnsupportedLanguage,
		SourceUnavailable,
		ConfigInvalid,
		InternalError,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %v", code)
		}
		seen[code] = true

		if string(code) == "" {
			t.Error("Error code should not be empty")
		}
	}
}
