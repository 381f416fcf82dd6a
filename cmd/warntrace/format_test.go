package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"warntrace/internal/errors"
	"warntrace/internal/storage"
)

func TestSplitFilterFlag(t *testing.T) {
	tests := []struct {
		in          string
		wantProp    string
		wantPattern string
		wantErr     bool
	}{
		{"file=src/.*", "file", "src/.*", false},
		{"category=Magic.*", "category", "Magic.*", false},
		{"type=a=b", "type", "a=b", false},
		{"file=", "file", "", false},
		{"src/.*", "", "", true},
		{"color=red", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prop, pattern, err := splitFilterFlag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitFilterFlag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if errors.CodeOf(err) != errors.ConfigInvalid {
					t.Errorf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.ConfigInvalid)
				}
				return
			}
			if prop != tt.wantProp || pattern != tt.wantPattern {
				t.Errorf("splitFilterFlag(%q) = (%q, %q), want (%q, %q)", tt.in, prop, pattern, tt.wantProp, tt.wantPattern)
			}
		})
	}
}

func TestFilterFlagRules(t *testing.T) {
	rules, err := filterFlagRules(
		[]string{"file=src/.*", "file=lib/.*"},
		[]string{"category=Javadoc.*"},
	)
	if err != nil {
		t.Fatalf("filterFlagRules() error = %v", err)
	}
	if got := len(rules.Include["file"]); got != 2 {
		t.Errorf("len(Include[file]) = %d, want 2", got)
	}
	if got := rules.Exclude["category"]; len(got) != 1 || got[0] != "Javadoc.*" {
		t.Errorf("Exclude[category] = %v, want [Javadoc.*]", got)
	}

	if _, err := filterFlagRules([]string{"nope"}, nil); err == nil {
		t.Error("filterFlagRules() with malformed flag should fail")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ConfigInvalid, 3},
		{errors.MalformedFilterRegex, 3},
		{errors.SourceUnavailable, 2},
		{errors.InternalError, 2},
		{"", 2},
	}
	for _, tt := range tests {
		if got := exitCode(tt.code); got != tt.want {
			t.Errorf("exitCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"new issues", errNewIssues, 1},
		{"wrapped new issues", fmt.Errorf("compare: %w", errNewIssues), 1},
		{"config", errors.New(errors.ConfigInvalid, "bad config", nil), 3},
		{"wrapped regex", fmt.Errorf("filter: %w", errors.New(errors.MalformedFilterRegex, "bad", nil)), 3},
		{"plain", fmt.Errorf("boom"), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.err); got != tt.want {
				t.Errorf("exitStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate() = %q, want %q", got, "abc")
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate() = %q, want %q", got, "abc...")
	}
}

func TestPrintScanTable(t *testing.T) {
	var buf bytes.Buffer
	if err := printScanTable(&buf, nil); err != nil {
		t.Fatalf("printScanTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No scans stored.") {
		t.Errorf("empty table = %q", buf.String())
	}

	buf.Reset()
	scans := []storage.Scan{{
		ID:            "0b5c",
		Label:         "main",
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		IssueCount:    7,
		Fingerprinted: 5,
	}}
	if err := printScanTable(&buf, scans); err != nil {
		t.Fatalf("printScanTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "FINGERPRINTED", "0b5c", "main"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
