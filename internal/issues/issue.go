// Package issues defines the issue model shared by parsers, the fingerprint
// engine, the filter and the matcher.
package issues

import (
	"fmt"
	"strings"

	"warntrace/internal/errors"
)

// Issue is a single warning reported by an external tool.
// Issues are values: fingerprint assignment returns a modified copy.
type Issue struct {
	FileName    string   `json:"fileName"`
	PackageName string   `json:"packageName,omitempty"`
	ModuleName  string   `json:"moduleName,omitempty"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Line        int      `json:"line"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`

	// Fingerprint is empty until computed.
	Fingerprint string `json:"fingerprint,omitempty"`

	// ScopeError records why a fingerprint could not be computed.
	ScopeError errors.ErrorCode `json:"scopeError,omitempty"`
}

// WithFingerprint returns a copy of the issue carrying fp.
func (i Issue) WithFingerprint(fp string) Issue {
	i.Fingerprint = fp
	i.ScopeError = ""
	return i
}

// Unmatchable returns a copy of the issue without fingerprint, tagged with the failure code.
func (i Issue) Unmatchable(code errors.ErrorCode) Issue {
	i.Fingerprint = ""
	i.ScopeError = code
	return i
}

// Matchable reports whether the issue can take part in fingerprint matching.
func (i Issue) Matchable() bool {
	return i.Fingerprint != ""
}

// Location returns "file:line".
func (i Issue) Location() string {
	return fmt.Sprintf("%s:%d", i.FileName, i.Line)
}

// Normalize trims surrounding whitespace from the textual fields and
// defaults an unknown severity to high.
func (i Issue) Normalize() Issue {
	i.FileName = strings.TrimSpace(i.FileName)
	i.PackageName = strings.TrimSpace(i.PackageName)
	i.ModuleName = strings.TrimSpace(i.ModuleName)
	i.Category = strings.TrimSpace(i.Category)
	i.Type = strings.TrimSpace(i.Type)
	if !i.Severity.IsValid() {
		i.Severity = ParseSeverity(string(i.Severity))
	}
	return i
}

// Collection is an ordered list of issues. Duplicate fingerprints are allowed.
type Collection []Issue

// Clone returns a shallow copy that can be modified independently.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Files returns the distinct file names in first-seen order.
func (c Collection) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, issue := range c {
		if !seen[issue.FileName] {
			seen[issue.FileName] = true
			files = append(files, issue.FileName)
		}
	}
	return files
}

// CountMatchable returns how many issues carry a fingerprint.
func (c Collection) CountMatchable() int {
	n := 0
	for _, issue := range c {
		if issue.Matchable() {
			n++
		}
	}
	return n
}
