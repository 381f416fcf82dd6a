//go:build !cgo

package syntax

import (
	"context"
	stderrors "errors"

	"warntrace/internal/errors"
)

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = stderrors.New("syntax trees require CGO (tree-sitter)")

// TreeSitter is a stub provider for non-CGO builds.
type TreeSitter struct{}

// NewTreeSitter creates a stub provider.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

// Parse always fails with PARSE_ERROR.
func (p *TreeSitter) Parse(ctx context.Context, source []byte, lang Language) (*Tree, error) {
	return nil, errors.New(errors.ParseError, "tree-sitter unavailable", ErrNoCGO)
}

// IsAvailable returns whether tree-sitter parsing is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
