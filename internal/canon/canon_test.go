package canon

import (
	"testing"

	"warntrace/internal/scope"
	"warntrace/internal/syntax"
)

type ns = syntax.NodeSpec

// method builds a single-method Java tree. The method starts at line start and
// its identifiers are named after name.
func method(t *testing.T, start int, name string, body []ns) *syntax.Tree {
	t.Helper()
	end := start + 2
	tree, err := syntax.FromSpec(syntax.LangJava, end+1, ns{
		Kind: "program", StartLine: 1, EndLine: end + 1,
		Children: []ns{
			{Kind: "class_declaration", StartLine: 1, EndLine: end + 1, Children: []ns{
				{Kind: "identifier", Text: "A", StartLine: 1, EndLine: 1},
				{Kind: "class_body", StartLine: 1, EndLine: end + 1, Children: []ns{
					{Kind: "method_declaration", StartLine: start, EndLine: end, Children: []ns{
						{Kind: "identifier", Text: name, StartLine: start, EndLine: start},
						{Kind: "block", StartLine: start, EndLine: end, Children: body},
					}},
				}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("FromSpec() error = %v", err)
	}
	return tree
}

func selectMethod(t *testing.T, tree *syntax.Tree, line int) scope.Fragment {
	t.Helper()
	f, err := scope.Select(tree, line, scope.KindMethod)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	return f
}

func TestCanonicalize_PreOrder(t *testing.T) {
	tree := method(t, 2, "run", []ns{
		{Kind: "return_statement", StartLine: 3, EndLine: 3, Children: []ns{
			{Kind: "decimal_integer_literal", Text: "42", StartLine: 3, EndLine: 3},
		}},
	})

	got := Canonicalize(selectMethod(t, tree, 3)).String()
	want := "method_declaration identifier block return_statement decimal_integer_literal"
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalize_IgnoresTextAndPosition(t *testing.T) {
	body := func(literal string, line int) []ns {
		return []ns{{Kind: "expression_statement", StartLine: line, EndLine: line, Children: []ns{
			{Kind: "identifier", Text: literal, StartLine: line, EndLine: line},
		}}}
	}

	a := Canonicalize(selectMethod(t, method(t, 2, "run", body("x", 3)), 3))
	b := Canonicalize(selectMethod(t, method(t, 5, "execute", body("renamed", 6)), 6))

	if a.String() != b.String() {
		t.Errorf("streams differ:\n  %q\n  %q", a.String(), b.String())
	}
}

func TestCanonicalize_Shallow(t *testing.T) {
	tree, err := syntax.FromSpec(syntax.LangJava, 3, ns{
		Kind: "program", StartLine: 1, EndLine: 3,
		Children: []ns{
			{Kind: "class_declaration", StartLine: 1, EndLine: 3, Children: []ns{
				{Kind: "class_body", StartLine: 1, EndLine: 3, Children: []ns{
					{Kind: "field_declaration", StartLine: 2, EndLine: 2, Children: []ns{
						{Kind: "integral_type", StartLine: 2, EndLine: 2},
					}},
					{Kind: "method_declaration", StartLine: 3, EndLine: 3},
				}},
			}},
		},
	})
	if err != nil {
		t.Fatalf("FromSpec() error = %v", err)
	}

	f, err := scope.Select(tree, 2, scope.KindInstanceVariable)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	got := Canonicalize(f).String()
	want := "class_body field_declaration integral_type"
	if got != want {
		t.Errorf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalize_Empty(t *testing.T) {
	if got := Canonicalize(scope.Fragment{}).String(); got != "" {
		t.Errorf("Canonicalize(empty) = %q, want empty string", got)
	}
	if got := Stream(nil).String(); got != "" {
		t.Errorf("Stream(nil).String() = %q, want empty string", got)
	}
}
