// Package report renders fingerprinted issues and classification results.
package report

import (
	"fmt"
	"io"
	"strings"

	"warntrace/internal/fingerprint"
	"warntrace/internal/issues"
	"warntrace/internal/match"
	"warntrace/internal/version"
)

// Format selects a renderer.
type Format string

const (
	FormatJSON  Format = "json"
	FormatHuman Format = "human"
	FormatSARIF Format = "sarif"
)

// ParseFormat accepts json, human (alias text) and sarif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "human", "text", "":
		return FormatHuman, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("invalid format: %s (use json, human or sarif)", s)
	}
}

// Options tune rendering.
type Options struct {
	// NoColor disables ANSI colors in human output.
	NoColor bool
	// Verbose adds fingerprints and scope errors to human output.
	Verbose bool
	// ToolName and ToolVersion identify the driver in SARIF output.
	ToolName    string
	ToolVersion string
	// Diagnostics lists per-file failures to include where the format allows.
	Diagnostics []fingerprint.FileDiagnostic
}

func (o Options) withDefaults() Options {
	if o.ToolName == "" {
		o.ToolName = "warntrace"
	}
	if o.ToolVersion == "" {
		o.ToolVersion = version.Version
	}
	return o
}

// Render writes a classification result.
func Render(w io.Writer, r *match.Result, format Format, opts Options) error {
	opts = opts.withDefaults()
	switch format {
	case FormatJSON:
		return renderResultJSON(w, r, opts)
	case FormatHuman:
		return renderResultHuman(w, r, opts)
	case FormatSARIF:
		return renderResultSARIF(w, r, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// RenderIssues writes a fingerprinted issue list.
func RenderIssues(w io.Writer, c issues.Collection, format Format, opts Options) error {
	opts = opts.withDefaults()
	switch format {
	case FormatJSON:
		return renderIssuesJSON(w, c, opts)
	case FormatHuman:
		return renderIssuesHuman(w, c, opts)
	case FormatSARIF:
		return renderIssuesSARIF(w, c, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
