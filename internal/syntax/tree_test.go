package syntax

import (
	"math"
	"strconv"
	"testing"
)

// sampleTree models:
//
//	1 package p
//	2 class A {
//	3   int x;
//	4   void m() {
//	5   }
//	6 }
func sampleTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := FromSpec(LangJava, 6, NodeSpec{
		Kind: "program", StartLine: 1, EndLine: 6,
		Children: []NodeSpec{
			{Kind: "package_declaration", StartLine: 1, EndLine: 1},
			{Kind: "class_declaration", StartLine: 2, EndLine: 6, Children: []NodeSpec{
				{Kind: "identifier", Text: "A", StartLine: 2, EndLine: 2},
				{Kind: "class_body", StartLine: 2, EndLine: 6, Children: []NodeSpec{
					{Kind: "field_declaration", StartLine: 3, EndLine: 3},
					{Kind: "method_declaration", StartLine: 4, EndLine: 5, Children: []NodeSpec{
						{Kind: "block", StartLine: 4, EndLine: 5},
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

func TestTree_Navigation(t *testing.T) {
	tree := sampleTree(t)

	if tree.Len() != 8 {
		t.Errorf("Len() = %d, want 8", tree.Len())
	}
	if got := tree.Kind(tree.Root()); got != "program" {
		t.Errorf("root kind = %q, want %q", got, "program")
	}
	if len(tree.Children(tree.Root())) != 2 {
		t.Errorf("root children = %d, want 2", len(tree.Children(tree.Root())))
	}
	if tree.Node(NoNode) != nil {
		t.Error("Node(NoNode) should be nil")
	}
	if tree.Node(NodeID(100)) != nil {
		t.Error("Node(out of range) should be nil")
	}
	if tree.Parent(tree.Root()) != NoNode {
		t.Error("root should have no parent")
	}
}

func TestTree_DeepestAt(t *testing.T) {
	tree := sampleTree(t)

	tests := []struct {
		line int
		want string
	}{
		{1, "package_declaration"},
		{2, "identifier"},
		{3, "field_declaration"},
		{4, "block"},
		{6, "class_body"},
	}

	for _, tt := range tests {
		got := tree.Kind(tree.DeepestAt(tt.line))
		if got != tt.want {
			t.Errorf("DeepestAt(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}

	if tree.DeepestAt(99) != NoNode {
		t.Error("DeepestAt(99) should be NoNode")
	}
}

func TestTree_Ancestors(t *testing.T) {
	tree := sampleTree(t)

	block := tree.DeepestAt(4)
	var kinds []string
	for _, id := range tree.Ancestors(block) {
		kinds = append(kinds, tree.Kind(id))
	}

	want := []string{"block", "method_declaration", "class_body", "class_declaration", "program"}
	if len(kinds) != len(want) {
		t.Fatalf("Ancestors() = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Ancestors()[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestTree_Walk(t *testing.T) {
	tree := sampleTree(t)

	var kinds []string
	tree.Walk(tree.Root(), func(id NodeID, n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != "class_body"
	})

	want := []string{"program", "package_declaration", "class_declaration", "identifier", "class_body"}
	if len(kinds) != len(want) {
		t.Fatalf("Walk() visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Walk()[%d] = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder(LangGo, 1)
	if _, err := b.Build(); err == nil {
		t.Error("Build() without root should fail")
	}

	b = NewBuilder(LangGo, 1)
	if _, err := b.Add(NoNode, "source_file", true, "", Span{}); err != nil {
		t.Fatalf("Add(root) error = %v", err)
	}
	if _, err := b.Add(NoNode, "source_file", true, "", Span{}); err == nil {
		t.Error("second root should fail")
	}
	if _, err := b.Add(NodeID(42), "x", true, "", Span{}); err == nil {
		t.Error("unknown parent should fail")
	}
	if got := b.tree.Len(); got != 1 {
		t.Errorf("Len() after failed adds = %d, want 1", got)
	}
}

func TestIDFor(t *testing.T) {
	if id, err := idFor(0); err != nil || id != 1 {
		t.Errorf("idFor(0) = (%d, %v), want (1, nil)", id, err)
	}
	if strconv.IntSize < 64 {
		t.Skip("overflow case needs 64-bit int")
	}
	max := uint32(math.MaxUint32)
	last := int(max)
	if id, err := idFor(last - 1); err != nil || id != NodeID(math.MaxUint32) {
		t.Errorf("idFor(max-1) = (%d, %v), want (%d, nil)", id, err, uint32(math.MaxUint32))
	}
	if id, err := idFor(last); err == nil || id != NoNode {
		t.Errorf("idFor(max) = (%d, %v), want overflow error", id, err)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}

	for _, tt := range tests {
		if got := CountLines([]byte(tt.src)); got != tt.want {
			t.Errorf("CountLines(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"src/Foo.java", LangJava, true},
		{"main.go", LangGo, true},
		{"app.TSX", LangTSX, true},
		{"lib.kt", LangKotlin, true},
		{"README.md", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LanguageFromPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}
