// Package canon turns scope fragments into kind-only token streams.
package canon

import (
	"strings"

	"warntrace/internal/scope"
	"warntrace/internal/syntax"
)

// Separator joins stream symbols in the canonical string form.
const Separator = " "

// Stream is the ordered list of node kinds visited in a fragment.
type Stream []string

// String returns the canonical form. An empty stream yields "".
func (s Stream) String() string {
	return strings.Join(s, Separator)
}

// Canonicalize walks every entry of f in order. Full entries contribute their
// pre-order subtree, shallow entries only their own kind. Node text is never
// emitted.
func Canonicalize(f scope.Fragment) Stream {
	if f.Tree == nil {
		return Stream{}
	}
	out := make(Stream, 0, len(f.Entries)*8)
	for _, e := range f.Entries {
		if e.Shallow {
			if kind := f.Tree.Kind(e.Node); kind != "" {
				out = append(out, kind)
			}
			continue
		}
		f.Tree.Walk(e.Node, func(_ syntax.NodeID, n *syntax.Node) bool {
			out = append(out, n.Kind)
			return true
		})
	}
	return out
}
