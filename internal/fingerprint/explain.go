package fingerprint

import (
	"context"

	"warntrace/internal/canon"
	"warntrace/internal/errors"
	"warntrace/internal/issues"
	"warntrace/internal/scope"
	"warntrace/internal/syntax"
)

// Explanation shows how the fingerprint of one issue is derived.
type Explanation struct {
	Issue          issues.Issue    `json:"issue"`
	Language       syntax.Language `json:"language"`
	Requested      scope.Kind      `json:"requested"`
	Effective      scope.Kind      `json:"effective"`
	Nodes          []ExplainedNode `json:"nodes"`
	Canonical      string          `json:"canonical"`
	Discriminators []string        `json:"discriminators"`
}

// ExplainedNode is one entry of the selected scope.
type ExplainedNode struct {
	Kind      string `json:"kind"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Shallow   bool   `json:"shallow,omitempty"`
}

// Explain fingerprints a single issue and reports the intermediate steps.
// Unlike Assign, every failure is returned as an error. The cache is not
// consulted.
func (e *Engine) Explain(ctx context.Context, issue issues.Issue) (*Explanation, error) {
	lang, ok := syntax.LanguageFromPath(issue.FileName)
	if !ok {
		return nil, errors.New(errors.UnsupportedLanguage, "no grammar for "+issue.FileName, nil)
	}
	source, err := e.opts.Source.ReadSource(ctx, issue.FileName)
	if err != nil {
		return nil, err
	}
	tree, err := e.opts.Provider.Parse(ctx, source, lang)
	if err != nil {
		if errors.CodeOf(err) == errors.InternalError {
			err = errors.New(errors.ParseError, "cannot parse "+issue.FileName, err)
		}
		return nil, err
	}

	kind := e.opts.Rules.KindFor(issue.Category)
	frag, err := scope.Select(tree, issue.Line, kind)
	if err != nil {
		return nil, err
	}

	stream := canon.Canonicalize(frag)
	d := e.discriminators(kind, issue)
	x := &Explanation{
		Issue:          issue.WithFingerprint(e.opts.Hasher.Sum(stream.String(), d...)),
		Language:       lang,
		Requested:      frag.Requested,
		Effective:      frag.Effective,
		Canonical:      stream.String(),
		Discriminators: d,
	}
	for _, entry := range frag.Entries {
		n := tree.Node(entry.Node)
		x.Nodes = append(x.Nodes, ExplainedNode{
			Kind:      n.Kind,
			StartLine: n.Span.StartLine,
			EndLine:   n.Span.EndLine,
			Shallow:   entry.Shallow,
		})
	}
	return x, nil
}
