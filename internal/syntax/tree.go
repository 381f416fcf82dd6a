package syntax

import (
	"fmt"

	"fortio.org/safecast"
)

// NodeID addresses a node in a Tree. IDs are 1-based; NoNode is the zero value.
type NodeID uint32

// NoNode is the absent node.
const NoNode NodeID = 0

// IsValid reports whether id refers to a node.
func (id NodeID) IsValid() bool { return id != NoNode }

// Span is a 1-based line/column range.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Node is a single syntax node. Children are owned by their parent.
type Node struct {
	Kind     string
	Parent   NodeID
	Children []NodeID
	Span     Span
	// Text is the literal token text of leaf nodes; empty for inner nodes.
	Text  string
	Named bool
}

// Tree is an immutable syntax tree for one version of one file.
type Tree struct {
	Language  Language
	LineCount int

	nodes []Node
	root  NodeID
}

// Root returns the root node ID, or NoNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t == nil {
		return NoNode
	}
	return t.root
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns the node for id, or nil when id is not part of the tree.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || id == NoNode || int(id) > len(t.nodes) {
		return nil
	}
	return &t.nodes[id-1]
}

// Kind returns the kind of id, or "" when absent.
func (t *Tree) Kind(id NodeID) string {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return ""
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Children returns the children of id in source order. READONLY.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// Contains reports whether the span of id covers line.
func (t *Tree) Contains(id NodeID, line int) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	return n.Span.StartLine <= line && line <= n.Span.EndLine
}

// DeepestAt returns the deepest node whose span contains line, descending
// through the first matching child at every level. Returns NoNode when even
// the root does not contain the line.
func (t *Tree) DeepestAt(line int) NodeID {
	cur := t.Root()
	if !t.Contains(cur, line) {
		return NoNode
	}
	for {
		next := NoNode
		for _, child := range t.Children(cur) {
			if t.Contains(child, line) {
				next = child
				break
			}
		}
		if next == NoNode {
			return cur
		}
		cur = next
	}
}

// Ancestors returns id followed by its ancestors up to the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for cur := id; cur != NoNode; cur = t.Parent(cur) {
		out = append(out, cur)
	}
	return out
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, child := range n.Children {
		t.Walk(child, fn)
	}
}

// Builder appends nodes to a tree arena. A Builder is not safe for concurrent use.
type Builder struct {
	tree *Tree
}

// NewBuilder starts a tree for a source file with the given line count.
func NewBuilder(lang Language, lineCount int) *Builder {
	return &Builder{tree: &Tree{Language: lang, LineCount: lineCount}}
}

// Add appends a node under parent. Passing NoNode as parent creates the root,
// which is only allowed once.
func (b *Builder) Add(parent NodeID, kind string, named bool, text string, span Span) (NodeID, error) {
	t := b.tree
	if parent == NoNode && t.root != NoNode {
		return NoNode, fmt.Errorf("tree already has a root")
	}
	if parent != NoNode && t.Node(parent) == nil {
		return NoNode, fmt.Errorf("unknown parent node %d", parent)
	}

	id, err := idFor(len(t.nodes))
	if err != nil {
		return NoNode, err
	}
	t.nodes = append(t.nodes, Node{
		Kind:   kind,
		Parent: parent,
		Span:   span,
		Text:   text,
		Named:  named,
	})

	if parent == NoNode {
		t.root = id
	} else {
		p := t.Node(parent)
		p.Children = append(p.Children, id)
	}
	return id, nil
}

// idFor returns the 1-based ID of the node stored at arena index i.
func idFor(i int) (NodeID, error) {
	n, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		return NoNode, fmt.Errorf("syntax tree too large: %w", err)
	}
	return NodeID(n), nil
}

// Build finishes the tree. The builder must not be used afterwards.
func (b *Builder) Build() (*Tree, error) {
	if b.tree.root == NoNode {
		return nil, fmt.Errorf("syntax tree has no root")
	}
	t := b.tree
	b.tree = nil
	return t, nil
}

// NodeSpec describes a subtree declaratively. It is used by adapters that
// already hold a tree in another shape and by tests.
type NodeSpec struct {
	Kind      string
	Text      string
	StartLine int
	EndLine   int
	Children  []NodeSpec
}

// FromSpec builds a tree from a NodeSpec root. Every spec node is named.
func FromSpec(lang Language, lineCount int, root NodeSpec) (*Tree, error) {
	b := NewBuilder(lang, lineCount)
	if err := addSpec(b, NoNode, root); err != nil {
		return nil, err
	}
	return b.Build()
}

func addSpec(b *Builder, parent NodeID, spec NodeSpec) error {
	id, err := b.Add(parent, spec.Kind, true, spec.Text, Span{
		StartLine:   spec.StartLine,
		StartColumn: 1,
		EndLine:     spec.EndLine,
		EndColumn:   1,
	})
	if err != nil {
		return err
	}
	for _, child := range spec.Children {
		if err := addSpec(b, id, child); err != nil {
			return err
		}
	}
	return nil
}
