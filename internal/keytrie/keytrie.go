// Package keytrie is the "ordinary prefix-keyed command lookup" spec.md
// §1 names as an out-of-scope collaborator — implemented minimally here
// since internal/app still needs some dispatcher to route keystrokes to
// controller methods. Keys are strings like "j", "^F", "g", "gg", so a
// sequence can be multi-key (e.g. "zz" to center).
package keytrie

// node is one trie node: a leaf command, and/or further children keyed by
// the next key name in a sequence.
type node struct {
	cmd      string
	children map[string]*node
}

// Trie maps key-sequences to command names.
type Trie struct {
	root *node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{root: &node{children: map[string]*node{}}}
}

// Bind registers cmd under the given sequence of key names.
func (t *Trie) Bind(cmd string, keys ...string) {
	n := t.root
	for _, k := range keys {
		if n.children == nil {
			n.children = map[string]*node{}
		}
		next, ok := n.children[k]
		if !ok {
			next = &node{}
			n.children[k] = next
		}
		n = next
	}
	n.cmd = cmd
}

// Cursor walks a trie one key at a time across possibly-multiple Next
// calls, so the caller can accumulate a multi-key sequence like "gg".
type Cursor struct {
	t   *Trie
	cur *node
}

// Start begins a fresh walk from the trie root.
func (t *Trie) Start() *Cursor { return &Cursor{t: t, cur: t.root} }

// Result reports what happened after feeding one more key name into the
// cursor: matched is true with cmd set when a bound command is reached;
// pending is true when the sequence is a valid prefix of a longer binding
// and more keys should be fed in; neither being true means the key name
// doesn't extend any binding and the sequence should be abandoned.
type Result struct {
	Matched bool
	Cmd     string
	Pending bool
}

// Next advances the cursor by one key name.
func (c *Cursor) Next(key string) Result {
	if c.cur == nil {
		return Result{}
	}
	next, ok := c.cur.children[key]
	if !ok {
		c.cur = nil
		return Result{}
	}
	c.cur = next
	if next.cmd != "" {
		return Result{Matched: true, Cmd: next.cmd}
	}
	if len(next.children) > 0 {
		return Result{Pending: true}
	}
	c.cur = nil
	return Result{}
}
