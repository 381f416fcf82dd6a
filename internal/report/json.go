package report

import (
	"encoding/json"
	"io"

	"warntrace/internal/fingerprint"
	"warntrace/internal/issues"
	"warntrace/internal/match"
)

type resultDocument struct {
	Summary     match.Summary                `json:"summary"`
	Entries     []match.Entry                `json:"entries"`
	Diagnostics []fingerprint.FileDiagnostic `json:"diagnostics,omitempty"`
}

// issuesDocument is also accepted by the json issue parser.
type issuesDocument struct {
	Issues      issues.Collection            `json:"issues"`
	Diagnostics []fingerprint.FileDiagnostic `json:"diagnostics,omitempty"`
}

func renderResultJSON(w io.Writer, r *match.Result, opts Options) error {
	doc := resultDocument{
		Summary:     r.Summary(),
		Entries:     r.Entries,
		Diagnostics: opts.Diagnostics,
	}
	if doc.Entries == nil {
		doc.Entries = []match.Entry{}
	}
	return encodeJSON(w, doc)
}

func renderIssuesJSON(w io.Writer, c issues.Collection, opts Options) error {
	doc := issuesDocument{Issues: c, Diagnostics: opts.Diagnostics}
	if doc.Issues == nil {
		doc.Issues = issues.Collection{}
	}
	return encodeJSON(w, doc)
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
