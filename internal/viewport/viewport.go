// Package viewport implements the viewport/selection controller: it owns
// the window onto the visible tree — which row is at the top of the
// canvas, which node is selected, and how to repaint a minimal region
// after a scroll, selection change, expand/collapse, resize, or search.
//
// Grounded on cansyan-co/ui/editor.go's scroll/selection bookkeeping
// (offsetY, clampScroll, EnsureVisible, CenterRow) generalized from a flat
// line buffer to doctree's list-node chain, and on
// cansyan-co/ui/terminal.go's styled-run emission (Sync), narrowed from a
// full-screen diff to the row-range repaints spec.md §4.4 describes.
package viewport

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.design/x/clipboard"

	"github.com/cansyan/jsonbrowse/internal/doctree"
	"github.com/cansyan/jsonbrowse/internal/value"
)

const doubleClickWindow = time.Second

// canvas is the minimal device surface the controller needs: writing
// already-formatted ANSI output to the terminal. *term.Device satisfies
// this; tests substitute a buffer-backed fake.
type canvas interface {
	WriteString(s string)
}

// Controller is the viewport/selection state machine described in
// spec.md §4.4.
type Controller struct {
	dev canvas

	root *doctree.Node
	sel  *doctree.Node
	start doctree.Pos
	offset int
	down   bool

	width, height int // height excludes the status line

	hasQuery bool
	query    string

	lineno int
	numbuf string

	lastClickRow int
	lastClickAt  time.Time

	showHelp bool

	clipboardOK bool
}

// New builds a controller over root, already selected at root with the
// canvas occupying width x (termHeight-1) rows (the last row is the
// status line).
func New(dev canvas, root *doctree.Node, width, termHeight int) *Controller {
	c := &Controller{
		dev:    dev,
		root:   root,
		sel:    root,
		start:  doctree.Pos{Node: root, Line: 0},
		width:  width,
		height: termHeight - 1,
		down:   true,
	}
	c.clipboardOK = clipboard.Init() == nil
	return c
}

func cursorTo(row, col int) string { return fmt.Sprintf("\033[%d;%dH", row+1, col+1) }

const eraseEOL = "\033[K"
const clearScreen = "\033[2J\033[H"

// Redraw repaints the entire canvas and status line from scratch. Used
// after resize, ^L, and whenever a scroll moves a screenful or more.
func (c *Controller) Redraw() {
	c.dev.WriteString(clearScreen)
	c.drawLines(0, c.height)
	c.drawStatus()
}

// drawLines erases and repaints each row in [first, last).
func (c *Controller) drawLines(first, last int) {
	if first < 0 {
		first = 0
	}
	if last > c.height {
		last = c.height
	}
	pos := doctree.Move(c.start, first, true)
	for row := first; row < last; row++ {
		c.dev.WriteString(cursorTo(row, 0))
		c.dev.WriteString(eraseEOL)
		if pos.IsEnd() {
			pos = doctree.End
			continue
		}
		c.paintRow(row, pos)
		next := doctree.Move(pos, 1, false)
		if next.IsEnd() {
			pos = doctree.End
		} else {
			pos = next
		}
	}
}

func (c *Controller) paintRow(row int, pos doctree.Pos) {
	n := pos.Node
	depth := n.Depth()
	indent := strings.Repeat("  ", depth)

	marker := "  "
	if pos.Line == 0 {
		switch {
		case n.Collapsible():
			marker = "▸ "
		case n.Expanded():
			marker = "▾ "
		}
	}
	prefix := indent + marker
	c.dev.WriteString("\033[90m" + prefix + "\033[39m")
	prefixWidth := runewidth.StringWidth(prefix)

	line := n.Line(pos.Line)
	selected := n == c.sel
	if selected {
		c.dev.WriteString("\033[7m")
	}
	c.dev.WriteString(line)
	if selected {
		c.dev.WriteString("\033[27m")
	}

	if c.hasQuery {
		for _, r := range n.SearchResults() {
			if r.StartLine != pos.Line {
				continue
			}
			text := extractPlainRange(line, r.StartCol, r.EndCol)
			if text == "" {
				continue
			}
			c.dev.WriteString(cursorTo(row, prefixWidth+r.StartCol))
			c.dev.WriteString("\033[7m" + text + "\033[27m")
		}
	}
}

// extractPlainRange returns the runes of line occupying display columns
// [startCol, endCol), skipping over embedded ANSI CSI escapes (which
// occupy zero display columns).
func extractPlainRange(line string, startCol, endCol int) string {
	var b strings.Builder
	col := 0
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		if runes[i] == 0x1b && i+1 < len(runes) && runes[i+1] == '[' {
			j := i + 2
			for j < len(runes) && !(runes[j] >= 0x40 && runes[j] <= 0x7e) {
				j++
			}
			i = j
			continue
		}
		w := runewidth.RuneWidth(runes[i])
		if w < 0 {
			w = 0
		}
		if col >= startCol && col < endCol {
			b.WriteRune(runes[i])
		}
		col += w
		if col >= endCol {
			break
		}
	}
	return b.String()
}

func (c *Controller) drawStatus() {
	row := c.height
	c.dev.WriteString(cursorTo(row, 0))
	c.dev.WriteString(eraseEOL)
	status := fmt.Sprintf(" %s  row %d", c.numbuf, c.lineno)
	if c.hasQuery {
		status = fmt.Sprintf(" /%s%s  row %d", c.query, c.numbuf, c.lineno)
	}
	c.dev.WriteString("\033[7m" + status + "\033[27m")
}

// Scroll moves start by by rows (positive = forward), bounces the
// selection per spec.md §4.4's scroll-selection rule, and repaints.
func (c *Controller) Scroll(by int) {
	if by == 0 {
		return
	}
	target := doctree.Move(c.start, by, true)
	var diff int
	if by > 0 {
		diff = doctree.DistanceFwd(c.start, target)
	} else {
		diff = -doctree.DistanceFwd(target, c.start)
	}
	if diff == 0 {
		return
	}

	oldOffset := c.offset
	c.lineno += diff
	c.start = target
	c.offset -= diff

	for c.offset < 0 && c.sel.Next() != nil {
		internal := c.sel.Lines() - 1
		if !c.down && internal > 0 {
			c.down = true
			c.offset += internal
			if c.offset >= 0 {
				break
			}
		}
		c.sel = c.sel.Next()
		c.down = false
		c.offset += c.sel.Lines()
	}
	for c.offset >= c.height && c.sel.Prev() != nil {
		internal := c.sel.Lines() - 1
		if c.down && internal > 0 {
			c.down = false
			c.offset -= internal
			if c.offset < c.height {
				break
			}
		}
		c.sel = c.sel.Prev()
		c.down = true
		c.offset -= c.sel.Lines()
	}

	if diff >= c.height || diff <= -c.height {
		c.Redraw()
		return
	}
	c.shiftRegion(diff)
	if oldOffset >= 0 && oldOffset < c.height {
		c.drawLines(oldOffset, oldOffset+1)
	}
	if c.offset >= 0 && c.offset < c.height {
		c.drawLines(c.offset, c.offset+1)
	}
	c.drawStatus()
}

func (c *Controller) shiftRegion(diff int) {
	c.dev.WriteString(cursorTo(0, 0))
	if diff > 0 {
		c.dev.WriteString(fmt.Sprintf("\033[%dM", diff))
		c.drawLines(c.height-diff, c.height)
	} else {
		n := -diff
		c.dev.WriteString(fmt.Sprintf("\033[%dL", n))
		c.drawLines(0, n)
	}
}

// Select moves the selection to target, scrolling the minimal amount
// necessary to keep it on screen.
func (c *Controller) Select(target *doctree.Node) {
	if target == nil || target == c.sel {
		return
	}
	oldOffset := c.offset
	down := doctree.IsBefore(c.sel, target)
	var dist int
	if down {
		dist = doctree.DistanceFwd(doctree.Pos{Node: c.sel, Line: 0}, doctree.Pos{Node: target, Line: 0})
		c.offset += dist
	} else {
		dist = doctree.DistanceFwd(doctree.Pos{Node: target, Line: 0}, doctree.Pos{Node: c.sel, Line: 0})
		c.offset -= dist
	}
	c.down = down
	c.sel = target

	if c.offset < 0 {
		c.Scroll(c.offset)
	} else if c.offset >= c.height {
		c.Scroll(c.offset - c.height + 1)
	}

	if oldOffset >= 0 && oldOffset < c.height {
		c.drawLines(oldOffset, oldOffset+1)
	}
	if c.offset >= 0 && c.offset < c.height {
		c.drawLines(c.offset, c.offset+1)
	}
	c.drawStatus()
}

// SelPos selects whichever node is currently rendered at screen row.
func (c *Controller) SelPos(row int) *doctree.Node {
	pos := doctree.Move(c.start, row, true)
	if pos.IsEnd() {
		return nil
	}
	return pos.Node
}

// ToggleSel toggles expansion of the current selection and repaints every
// row from the selection down (the maximum region that can possibly have
// shifted).
func (c *Controller) ToggleSel() {
	doctree.Toggle(c.sel)
	c.drawLines(c.offset, c.height)
	c.drawStatus()
}

// RecursiveExpand recursive-expands the current selection.
func (c *Controller) RecursiveExpand() {
	doctree.RecursiveExpand(c.sel)
	c.Redraw()
}

// Resize re-queries the terminal size, reformats every visible node, and
// repaints everything.
func (c *Controller) Resize(width, termHeight int) {
	c.width = width
	c.height = termHeight - 1
	doctree.Resize(c.root, width)
	// c.start.Line may now point past the end of its node's reformatted
	// P.Value if the new width shrank the node's line count — clamp it
	// before anything calls Node.Line against the new, possibly shorter
	// slice.
	if max := c.start.Node.Lines() - 1; c.start.Line > max {
		c.start.Line = max
	}
	if c.offset >= c.height {
		c.offset = c.height - 1
	}
	c.Redraw()
}

// SetQuery updates the active search query on every node from the top of
// the canvas down and repaints every canvas row; it does not limit the
// repaint to rows whose match set changed.
func (c *Controller) SetQuery(q string, has bool) {
	c.hasQuery = has
	c.query = q
	for n := c.start.Node; n != nil; n = n.Next() {
		n.Search(q)
	}
	c.drawLines(0, c.height)
	c.drawStatus()
}

// SearchNext drives the DFS search for the k-th match in the given
// direction, expands ancestors along the hit path, and selects it.
func (c *Controller) SearchNext(k int, forward bool) bool {
	if !c.hasQuery || k <= 0 {
		return false
	}
	it := doctree.NewSearchIter(c.sel.Value, forward, c.query)
	var hit *value.Value
	for i := 0; i < k; i++ {
		hit = it.Next()
		if hit == nil {
			return false
		}
	}
	node := doctree.ExpandPath(c.root, hit.Path())
	if node == nil {
		return false
	}
	node.Search(c.query)
	c.Select(node)
	return true
}

// Click handles a mouse click at screen row y: selects the node there,
// and also toggles it if this click lands on the same row within
// doubleClickWindow of the previous one.
func (c *Controller) Click(y int, now time.Time) {
	n := c.SelPos(y)
	if n == nil {
		return
	}
	doubleClick := y == c.lastClickRow && now.Sub(c.lastClickAt) <= doubleClickWindow
	c.lastClickRow = y
	c.lastClickAt = now

	c.Select(n)
	if doubleClick {
		c.ToggleSel()
	}
}

// Digit accumulates d into the count-prefix buffer (capped at six digits,
// leading zero rejected).
func (c *Controller) Digit(d byte) {
	if len(c.numbuf) == 0 && d == '0' {
		return
	}
	if len(c.numbuf) >= 6 {
		return
	}
	c.numbuf += string(d)
	c.drawStatus()
}

// GetNum returns the accumulated count (minimum 1) and resets the buffer.
func (c *Controller) GetNum() int {
	n := 1
	if c.numbuf != "" {
		parsed := 0
		for _, r := range c.numbuf {
			parsed = parsed*10 + int(r-'0')
		}
		if parsed > 0 {
			n = parsed
		}
	}
	c.ResetNum()
	return n
}

// ResetNum clears the count-prefix buffer; called after any non-digit
// command.
func (c *Controller) ResetNum() {
	if c.numbuf == "" {
		return
	}
	c.numbuf = ""
	c.drawStatus()
}

// MoveNext/MovePrev/NextSibling/PrevSibling/Parent/First/Last implement the j/k,
// J/K, p, g/G movement commands in terms of Select.

func (c *Controller) MoveNext(n int) {
	cur := c.sel
	for i := 0; i < n && cur.Next() != nil; i++ {
		cur = cur.Next()
	}
	c.Select(cur)
}

func (c *Controller) MovePrev(n int) {
	cur := c.sel
	for i := 0; i < n && cur.Prev() != nil; i++ {
		cur = cur.Prev()
	}
	c.Select(cur)
}

func (c *Controller) NextSibling(n int) {
	cur := c.sel
	for i := 0; i < n && cur.NextSib() != nil; i++ {
		cur = cur.NextSib()
	}
	c.Select(cur)
}

func (c *Controller) PrevSibling(n int) {
	cur := c.sel
	for i := 0; i < n && cur.PrevSib() != nil; i++ {
		cur = cur.PrevSib()
	}
	c.Select(cur)
}

func (c *Controller) Parent() {
	if p := c.sel.Parent(); p != nil {
		c.Select(p)
	}
}

func (c *Controller) First() { c.Select(c.root) }

func (c *Controller) Last() {
	cur := c.sel
	for cur.Next() != nil {
		cur = cur.Next()
	}
	c.Select(cur)
}

// ScreenTop/ScreenMiddle/ScreenBottom implement H/M/L.
func (c *Controller) ScreenTop()    { c.selPosOrLast(0) }
func (c *Controller) ScreenMiddle() { c.selPosOrLast(c.height / 2) }
func (c *Controller) ScreenBottom() { c.selPosOrLast(c.height - 1) }

func (c *Controller) selPosOrLast(row int) {
	n := c.SelPos(row)
	if n == nil {
		c.Last()
		return
	}
	c.Select(n)
}

// CenterSelection implements zz: scrolls so the selection sits on the
// middle screen row.
func (c *Controller) CenterSelection() {
	target := c.height / 2
	c.Scroll(c.offset - target)
}

// Yank copies the jq-style path to the current selection (e.g. ".b[1].c")
// to the system clipboard, falling back to the OSC 52 terminal escape
// (cansyan-co/ui/terminal.go's SetClipboard) when clipboard.Init failed to
// find a system clipboard — the common case over SSH or in a headless
// session.
func (c *Controller) Yank() {
	text := value.FormatPath(c.sel.Value)
	if c.clipboardOK {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	c.dev.WriteString("\033]52;c;" + encoded + "\007")
}

// ToggleHelp shows or hides the key-binding overlay.
func (c *Controller) ToggleHelp() {
	c.showHelp = !c.showHelp
	if c.showHelp {
		c.drawHelp()
	} else {
		c.Redraw()
	}
}

func (c *Controller) drawHelp() {
	lines := []string{
		"j/k next/prev   J/K sibling   p parent   g/G first/last",
		"H/M/L screen top/middle/bottom   ^E/^Y line   ^F/^B page   ^D/^U half-page   zz center",
		"space toggle   w expand all   / ? search   n/N next/prev match   c clear search",
		"y yank   ^L redraw   q ^C quit   F1 this help",
	}
	row := 1
	for _, l := range lines {
		if row >= c.height {
			break
		}
		c.dev.WriteString(cursorTo(row, 2))
		c.dev.WriteString(eraseEOL)
		c.dev.WriteString("\033[36m" + l + "\033[39m")
		row++
	}
}

// Sel returns the currently selected node.
func (c *Controller) Sel() *doctree.Node { return c.sel }

// HasQuery reports whether a search query is active.
func (c *Controller) HasQuery() bool { return c.hasQuery }

// Height returns the canvas height in rows (excluding the status line).
func (c *Controller) Height() int { return c.height }

// Width returns the canvas width in columns.
func (c *Controller) Width() int { return c.width }

// State is a snapshot of everything the E6 "search then ESC" scenario
// must restore exactly: selection, scroll position, and active query.
type State struct {
	sel      *doctree.Node
	start    doctree.Pos
	offset   int
	down     bool
	hasQuery bool
	query    string
}

// SaveState captures the controller's current selection/scroll/query.
func (c *Controller) SaveState() State {
	return State{sel: c.sel, start: c.start, offset: c.offset, down: c.down, hasQuery: c.hasQuery, query: c.query}
}

// RestoreState returns the controller to exactly a previously saved
// State and repaints, per spec.md §8's E6 ("returns the viewport to
// exactly the pre-search state").
func (c *Controller) RestoreState(s State) {
	c.sel, c.start, c.offset, c.down = s.sel, s.start, s.offset, s.down
	c.SetQuery(s.query, s.hasQuery)
}
