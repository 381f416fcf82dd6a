//go:build cgo

package syntax

import (
	"context"
	"fmt"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"warntrace/internal/errors"
)

// TreeSitter is a Provider backed by tree-sitter grammars.
// It is safe for concurrent use: every Parse call uses its own parser.
type TreeSitter struct{}

// NewTreeSitter creates a tree-sitter provider.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

// Parse parses source code and converts the tree-sitter tree into an arena tree.
// Comment nodes and whitespace-only anonymous tokens are dropped.
func (p *TreeSitter) Parse(ctx context.Context, source []byte, lang Language) (*Tree, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, errors.New(errors.UnsupportedLanguage, err.Error(), nil)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)
	tsTree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.New(errors.ParseError, "tree-sitter parse failed", err)
	}

	root := tsTree.RootNode()
	if root == nil {
		return nil, errors.New(errors.ParseError, "tree-sitter returned no root node", nil)
	}
	if root.HasError() {
		return nil, errors.New(errors.ParseError, "source contains syntax errors", nil).
			WithDetails(map[string]int{"firstErrorLine": firstErrorLine(root)})
	}

	b := NewBuilder(lang, CountLines(source))
	if err := convert(b, NoNode, root, source); err != nil {
		return nil, errors.New(errors.ParseError, "cannot convert syntax tree", err)
	}
	return b.Build()
}

// convert copies n and its retained descendants into the builder.
func convert(b *Builder, parent NodeID, n *sitter.Node, source []byte) error {
	if n == nil || skipNode(n) {
		return nil
	}

	span, err := spanOf(n)
	if err != nil {
		return err
	}

	text := ""
	if n.ChildCount() == 0 {
		text = n.Content(source)
	}

	id, err := b.Add(parent, n.Type(), n.IsNamed(), text, span)
	if err != nil {
		return err
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if err := convert(b, id, n.Child(i), source); err != nil {
			return err
		}
	}
	return nil
}

func skipNode(n *sitter.Node) bool {
	kind := n.Type()
	if IsCommentKind(kind) {
		return true
	}
	// Statement terminators such as "\n" carry layout, not structure.
	return !n.IsNamed() && strings.TrimSpace(kind) == ""
}

func spanOf(n *sitter.Node) (Span, error) {
	start, end := n.StartPoint(), n.EndPoint()
	startRow, err := safecast.Conv[int](start.Row)
	if err != nil {
		return Span{}, err
	}
	startCol, err := safecast.Conv[int](start.Column)
	if err != nil {
		return Span{}, err
	}
	endRow, err := safecast.Conv[int](end.Row)
	if err != nil {
		return Span{}, err
	}
	endCol, err := safecast.Conv[int](end.Column)
	if err != nil {
		return Span{}, err
	}
	return Span{
		StartLine:   startRow + 1,
		StartColumn: startCol + 1,
		EndLine:     endRow + 1,
		EndColumn:   endCol + 1,
	}, nil
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node.
func firstErrorLine(root *sitter.Node) int {
	var walk func(*sitter.Node) int
	walk = func(n *sitter.Node) int {
		if n == nil || !n.HasError() && !n.IsMissing() {
			return 0
		}
		if n.IsError() || n.IsMissing() {
			return int(n.StartPoint().Row) + 1
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if line := walk(n.Child(i)); line > 0 {
				return line
			}
		}
		return 0
	}
	return walk(root)
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// IsAvailable returns whether tree-sitter parsing is available.
// Returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}
