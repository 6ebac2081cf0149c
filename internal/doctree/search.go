package doctree

import (
	"github.com/cansyan/jsonbrowse/internal/format"
	"github.com/cansyan/jsonbrowse/internal/value"
)

// SearchIter is a restartable lazy sequence of document values, walking
// the full document tree (not just the currently visible portion) in DFS
// pre-order, forward or backward from a starting point, wrapping around at
// the document's head/tail rather than stopping there. Modeled as an
// explicit cursor rather than a recursive generator so large trees never
// recurse (spec.md §9, "Iterators").
type SearchIter struct {
	start   *value.Value
	cur     *value.Value
	forward bool
	query   string
}

// NewSearchIter starts a search for query, strictly after 'start' when
// forward, strictly before it otherwise.
func NewSearchIter(start *value.Value, forward bool, query string) *SearchIter {
	return &SearchIter{start: start, cur: start, forward: forward, query: query}
}

// Next advances to, and returns, the next value (in the configured
// direction) whose collapsed content contains the query, wrapping around
// to the document root (forward) or last value (backward) once the
// tail/head is reached. Returns nil once the walk has come all the way
// back around to the starting value without finding another match.
func (it *SearchIter) Next() *value.Value {
	for {
		var next *value.Value
		if it.forward {
			next = nextPreOrder(it.cur)
		} else {
			next = prevPreOrder(it.cur)
		}
		if next == nil {
			if it.forward {
				next = documentRoot(it.cur)
			} else {
				next = lastDescendant(documentRoot(it.cur))
			}
		}
		it.cur = next
		if format.Contains(value.Content(it.cur), it.query) {
			return it.cur
		}
		if it.cur == it.start {
			return nil
		}
	}
}

// documentRoot walks up from v to the value with no parent.
func documentRoot(v *value.Value) *value.Value {
	for v.Parent() != nil {
		v = v.Parent()
	}
	return v
}

// nextPreOrder returns the value immediately after v in document DFS
// pre-order, or nil if v is the last value in the document.
func nextPreOrder(v *value.Value) *value.Value {
	if v.IsContainer() && v.Len() > 0 {
		return v.Children()[0]
	}
	for v.Parent() != nil {
		siblings := v.Parent().Children()
		if v.Index()+1 < len(siblings) {
			return siblings[v.Index()+1]
		}
		v = v.Parent()
	}
	return nil
}

// prevPreOrder returns the value immediately before v in document DFS
// pre-order, or nil if v is the root.
func prevPreOrder(v *value.Value) *value.Value {
	if v.Parent() == nil {
		return nil
	}
	siblings := v.Parent().Children()
	if v.Index() == 0 {
		return v.Parent()
	}
	return lastDescendant(siblings[v.Index()-1])
}

func lastDescendant(v *value.Value) *value.Value {
	for v.IsContainer() && v.Len() > 0 {
		children := v.Children()
		v = children[len(children)-1]
	}
	return v
}

// ExpandPath walks from root down to the value at path, expanding every
// collapsed ancestor on the way down, and returns the resulting visible
// node for the value at path (root itself if path is empty, nil if an
// index is out of range).
func ExpandPath(root *Node, path []int) *Node {
	cur := root
	for _, idx := range path {
		if cur.Collapsible() {
			Expand(cur)
		}
		if idx < 0 || idx >= len(cur.children) {
			return nil
		}
		cur = cur.children[idx]
	}
	return cur
}
