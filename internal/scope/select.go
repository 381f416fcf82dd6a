package scope

import (
	"fmt"

	"warntrace/internal/errors"
	"warntrace/internal/syntax"
)

// Entry is one root of a fragment. A shallow entry stands for its own node
// kind only; a full entry stands for the node and all its descendants.
type Entry struct {
	Node    syntax.NodeID
	Shallow bool
}

// Fragment is the ordered set of nodes a warning is about.
type Fragment struct {
	Tree      *syntax.Tree
	Requested Kind
	// Effective is the concrete variant that produced Entries: the requested
	// kind or one it degraded to. It is never method-or-class; that request
	// reports method, class or file.
	Effective Kind
	Entries   []Entry
}

// Empty reports whether the fragment selects no nodes.
func (f Fragment) Empty() bool {
	return len(f.Entries) == 0
}

// Degraded reports whether selection fell back to a broader variant.
// Method-or-class resolving at method or class level is not a fallback.
func (f Fragment) Degraded() bool {
	if f.Requested == KindMethodOrClass {
		return f.Effective != KindMethod && f.Effective != KindClass
	}
	return f.Effective != f.Requested
}

// Select picks the fragment for the warning anchored at line using variant
// kind, degrading to broader variants until one succeeds.
//
// Errors carry INVALID_ANCHOR for a line outside the file and MISSING_SCOPE
// when no variant in the chain finds a node.
func Select(tree *syntax.Tree, line int, kind Kind) (Fragment, error) {
	if !kind.IsValid() {
		return Fragment{}, errors.Newf(errors.InternalError, "unknown scope kind %q", kind)
	}
	if tree == nil || tree.Len() == 0 {
		return Fragment{}, errors.New(errors.MissingScope, "syntax tree is empty", nil)
	}
	if line < 1 || line > tree.LineCount {
		return Fragment{}, errors.Newf(errors.InvalidAnchor,
			"line %d is outside 1..%d", line, tree.LineCount)
	}

	s := selector{tree: tree, g: GrammarFor(tree.Language)}
	s.anchor = tree.DeepestAt(line)
	if s.anchor == syntax.NoNode {
		s.anchor = tree.Root()
	}

	for k := kind; k != ""; k = k.Broader() {
		if entries, resolved := s.choose(k); len(entries) > 0 {
			return Fragment{Tree: tree, Requested: kind, Effective: resolved, Entries: entries}, nil
		}
	}
	return Fragment{Tree: tree, Requested: kind}, errors.New(errors.MissingScope,
		fmt.Sprintf("no %s scope at line %d", kind, line), nil)
}

type selector struct {
	tree   *syntax.Tree
	g      *Grammar
	anchor syntax.NodeID
}

// choose runs variant k and returns its entries with the concrete kind that
// produced them.
func (s *selector) choose(k Kind) ([]Entry, Kind) {
	switch k {
	case KindMethod, KindMethodOrClass:
		return s.method(), KindMethod
	case KindClass:
		return s.class(), KindClass
	case KindFile:
		return s.file(), KindFile
	case KindInstanceVariable:
		return s.instanceVariable(), KindInstanceVariable
	case KindEnvironment:
		return s.environment(), KindEnvironment
	case KindNamePackage:
		return s.namePackage(), KindNamePackage
	}
	return nil, k
}

// nearest returns the closest ancestor of the anchor (the anchor included)
// that satisfies match.
func (s *selector) nearest(match func(kind string) bool) syntax.NodeID {
	for _, id := range s.tree.Ancestors(s.anchor) {
		if match(s.tree.Kind(id)) {
			return id
		}
	}
	return syntax.NoNode
}

func (s *selector) method() []Entry {
	if m := s.nearest(s.g.IsMethod); m != syntax.NoNode {
		return []Entry{{Node: m}}
	}
	return nil
}

func (s *selector) class() []Entry {
	t := s.nearest(s.g.IsType)
	if t == syntax.NoNode {
		return nil
	}

	var entries []Entry
	if s.topLevel(t) {
		if pkg := s.packageDecl(); pkg != syntax.NoNode {
			entries = append(entries, Entry{Node: pkg})
		}
	}
	return append(entries, Entry{Node: t})
}

// topLevel reports whether no type encloses t.
func (s *selector) topLevel(t syntax.NodeID) bool {
	for _, id := range s.tree.Ancestors(s.tree.Parent(t)) {
		if s.g.IsType(s.tree.Kind(id)) {
			return false
		}
	}
	return true
}

func (s *selector) file() []Entry {
	children := s.tree.Children(s.tree.Root())
	entries := make([]Entry, 0, len(children))
	for _, c := range children {
		entries = append(entries, Entry{Node: c})
	}
	return entries
}

func (s *selector) instanceVariable() []Entry {
	t := s.nearest(s.g.IsType)
	if t == syntax.NoNode {
		return nil
	}
	body := s.typeBody(t)
	if body == syntax.NoNode {
		return nil
	}

	entries := []Entry{{Node: body, Shallow: true}}
	for _, c := range s.tree.Children(body) {
		if s.g.IsField(s.tree.Kind(c)) {
			entries = append(entries, Entry{Node: c})
		}
	}
	if len(entries) == 1 {
		return nil
	}
	return entries
}

// typeBody returns the first member block below t in pre-order, without
// descending into nested types.
func (s *selector) typeBody(t syntax.NodeID) syntax.NodeID {
	body := syntax.NoNode
	s.tree.Walk(t, func(id syntax.NodeID, n *syntax.Node) bool {
		if body != syntax.NoNode {
			return false
		}
		if id != t && s.g.IsTypeBody(n.Kind) {
			body = id
			return false
		}
		return id == t || !s.g.IsType(n.Kind)
	})
	return body
}

func (s *selector) environment() []Entry {
	env := s.nearest(func(kind string) bool {
		return s.g.IsBlock(kind) || s.g.IsControl(kind)
	})
	if env == syntax.NoNode {
		return nil
	}

	var control, block syntax.NodeID
	if s.g.IsControl(s.tree.Kind(env)) {
		control = env
		block = s.firstChild(env, s.g.IsBlock)
		if block == syntax.NoNode {
			return []Entry{{Node: control}}
		}
	} else {
		block = env
		if p := s.tree.Parent(env); s.g.IsControl(s.tree.Kind(p)) {
			control = p
		}
	}

	if control == syntax.NoNode {
		return []Entry{{Node: block}}
	}
	entries := []Entry{{Node: control, Shallow: true}}
	for _, c := range s.tree.Children(control) {
		if c == block {
			break
		}
		entries = append(entries, Entry{Node: c})
	}
	return append(entries, Entry{Node: block})
}

func (s *selector) namePackage() []Entry {
	if pkg := s.packageDecl(); pkg != syntax.NoNode {
		return []Entry{{Node: pkg}}
	}
	return nil
}

func (s *selector) packageDecl() syntax.NodeID {
	return s.firstChild(s.tree.Root(), s.g.IsPackage)
}

func (s *selector) firstChild(parent syntax.NodeID, match func(kind string) bool) syntax.NodeID {
	for _, c := range s.tree.Children(parent) {
		if match(s.tree.Kind(c)) {
			return c
		}
	}
	return syntax.NoNode
}
