// Package doctree implements the visible tree: the doubly-linked chain of
// list nodes representing exactly the currently-expanded portion of the
// document, plus distance arithmetic and DFS search over it.
//
// Every list node carries strong links along next/parent/children and
// non-owning back-references prev/prevsib/nextsib. Go's garbage collector
// reclaims these cycles directly, so (unlike the arena-of-handles scheme
// spec.md §9 describes for languages without automatic cycle collection)
// plain pointers are used throughout.
package doctree

import (
	"github.com/cansyan/jsonbrowse/internal/format"
	"github.com/cansyan/jsonbrowse/internal/value"
)

// Node is a node in the visible tree, created lazily when its parent
// expands and destroyed when its parent collapses.
type Node struct {
	Value    *value.Value
	expanded bool
	last     bool

	content     format.P
	placeholder format.P

	searchQuery   string
	searchResults []format.Range

	prev, next         *Node
	prevsib, nextsib   *Node
	parent             *Node
	children           []*Node

	width int
}

// NewRoot builds the root node, already laid out at the given width. The
// caller is expected to Expand it immediately (spec.md §3, Lifecycle).
func NewRoot(v *value.Value, width int) *Node {
	n := &Node{Value: v, width: width, last: true}
	n.reformat()
	return n
}

func (n *Node) reformat() {
	n.content = format.Format(value.Content(n.Value), n.width)
	n.placeholder = format.Format(value.Placeholder(n.Value), n.width)
	if n.searchQuery != "" {
		n.searchResults = format.Search(n.displayed(), n.searchQuery)
	}
}

// displayed returns the P currently shown for n: content if collapsed,
// placeholder if expanded.
func (n *Node) displayed() format.P {
	if n.expanded {
		return n.placeholder
	}
	return n.content
}

// Lines returns the number of visual rows n currently occupies, always
// >= 1.
func (n *Node) Lines() int {
	return len(n.displayed().Value)
}

// Line returns the i-th styled output line of n's currently displayed P.
func (n *Node) Line(i int) string {
	return n.displayed().Value[i]
}

// Next, Prev, Parent, NextSib, PrevSib, Last, Expanded, Children expose
// the links and flags described in spec.md §3.
func (n *Node) Next() *Node      { return n.next }
func (n *Node) Prev() *Node      { return n.prev }
func (n *Node) Parent() *Node    { return n.parent }
func (n *Node) NextSib() *Node   { return n.nextsib }
func (n *Node) PrevSib() *Node   { return n.prevsib }
func (n *Node) Last() bool       { return n.last }
func (n *Node) Expanded() bool   { return n.expanded }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Depth() int       { return n.Value.Depth() }

// SearchResults returns the match ranges over n's currently displayed P
// for the most recently set query (cached by Node.Search).
func (n *Node) SearchResults() []format.Range { return n.searchResults }

// Search sets (or clears, for q == "") the cached query/results for n.
func (n *Node) Search(q string) {
	if n.searchQuery == q {
		return
	}
	n.searchQuery = q
	if q == "" {
		n.searchResults = nil
		return
	}
	n.searchResults = format.Search(n.displayed(), q)
}

// Collapsible reports whether n has children and is not already expanded.
func (n *Node) Collapsible() bool {
	return !n.expanded && n.Value.IsContainer() && n.Value.Len() > 0
}

// Expand creates one fresh child list node per value-child of n, in order,
// and links them into the visual chain in place of n's own successor.
func Expand(n *Node) {
	if n.expanded || !n.Value.IsContainer() || n.Value.Len() == 0 {
		return
	}
	n.expanded = true

	vchildren := n.Value.Children()
	nodes := make([]*Node, len(vchildren))
	for i, vc := range vchildren {
		nodes[i] = &Node{Value: vc, parent: n, width: n.width, last: i == len(vchildren)-1}
		nodes[i].reformat()
	}
	n.children = nodes

	// Thread next/prev within the new chain.
	for i := 0; i < len(nodes); i++ {
		if i > 0 {
			nodes[i].prev = nodes[i-1]
			nodes[i-1].next = nodes[i]
		}
	}

	// Sibling shortcuts at n's own depth: within the new chain every node
	// is itself a direct sibling of every other, since they share parent
	// n and are each at depth == n.Depth()+1. nextsib/prevsib only chain
	// to nodes at the *same* depth though, so set them pairwise here and
	// let the splice below fix up the boundary.
	for i := 0; i < len(nodes); i++ {
		if i > 0 {
			nodes[i].prevsib = nodes[i-1]
		}
		if i < len(nodes)-1 {
			nodes[i].nextsib = nodes[i+1]
		}
	}

	succ := n.nextsib // n's successor at depth <= n.Depth(), before expansion
	first, lastNew := nodes[0], nodes[len(nodes)-1]

	first.prev = n
	n.next = first
	first.prevsib = n

	lastNew.next = succ
	if succ != nil {
		succ.prev = lastNew
	}
	lastNew.nextsib = succ
	if succ != nil {
		succ.prevsib = lastNew
	}
}

// Collapse splices n's subtree out of the visual chain, drops its
// children, and clears expanded.
func Collapse(n *Node) {
	if !n.expanded {
		return
	}
	n.expanded = false

	succ := n.nextsib
	n.next = succ
	if succ != nil {
		succ.prev = n
	}
	n.nextsib = succ
	if succ != nil {
		succ.prevsib = n
	}
	n.children = nil
}

// Toggle expands n if it is collapsible, otherwise collapses it.
func Toggle(n *Node) {
	if n.Collapsible() {
		Expand(n)
	} else if n.expanded {
		Collapse(n)
	}
}

// RecursiveExpand expands n then recursively expands every new child,
// depth-first pre-order. Iterative to avoid overflowing the stack on
// large trees (spec.md §4.2).
func RecursiveExpand(n *Node) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Collapsible() {
			Expand(cur)
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Resize re-lays every node in the chain at the new width. Iterative walk
// via next, starting at root.
func Resize(root *Node, width int) {
	for n := root; n != nil; n = n.next {
		n.width = width
		n.reformat()
	}
}

// Path returns the sequence of child indices from the document root to n,
// used by IsBefore.
func Path(n *Node) []int {
	return n.Value.Path()
}

// IsBefore reports whether a precedes b in document DFS pre-order by
// lexicographically comparing their paths from root.
func IsBefore(a, b *Node) bool {
	pa, pb := Path(a), Path(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}
