// Package format implements the declarative styled content tree (F) and
// the width-wrapping layout algorithm that turns it into a Preformatted
// view (P): styled output lines, raw unstyled text chunks, and a
// raw-to-screen coordinate mapping that survives styling, tab expansion,
// wide runes and soft wraps.
package format

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/cansyan/jsonbrowse/internal/style"
)

// F is a node in the declarative format tree. It is sealed to the variants
// defined in this package.
type F interface {
	isF()
}

type concatNode struct{ children []F }
type colorNode struct {
	slot  style.Slot
	spec  style.Spec
	child F
}
type nobreakNode struct{ child F }
type literalNode struct{ text string }
type excludeNode struct{ child F }

func (concatNode) isF()  {}
func (colorNode) isF()   {}
func (nobreakNode) isF() {}
func (literalNode) isF() {}
func (excludeNode) isF() {}

// Concat composes children left-to-right.
func Concat(children ...F) F { return concatNode{children: children} }

// Color paints child with spec in the given slot (foreground/background),
// overriding only that slot; the other slot is inherited from context.
func Color(slot style.Slot, spec style.Spec, child F) F {
	return colorNode{slot: slot, spec: spec, child: child}
}

// NoBreak renders child on a single output line, starting a fresh line
// first if it would not otherwise fit the remaining width.
func NoBreak(child F) F { return nobreakNode{child: child} }

// Literal is raw text; may contain \n, \t, and arbitrary runes.
func Literal(text string) F { return literalNode{text: text} }

// Exclude renders child visually but omits it from the raw-text stream
// used for substring search.
func Exclude(child F) F { return excludeNode{child: child} }

// anchor maps a rune offset within one raw chunk to a (line, col) position
// in P.Value.
type anchor struct {
	offset int
	line   int
	col    int
}

// P is the result of laying an F out at a positive display width.
type P struct {
	Value   []string // styled output lines, one per visual row
	Raw     []string // unstyled, unwrapped raw-text chunks
	anchors [][]anchor
}

// builder carries the mutable state threaded through the recursive layout
// walk: current column, active style (per slot), whether writes should be
// recorded into the raw stream, and whether the current nobreak run has
// been clipped (Open Question #2: clip rather than assert on overflow).
type builder struct {
	width int

	lines   []strings.Builder
	lineCol []int // visual column reached on each finished/current line

	raw        []strings.Builder
	rawRunes   []int // rune count written so far, per chunk
	anchorSets [][]anchor

	style        style.Style
	record       bool
	clipRestCols int  // >=0 while clipping a nobreak overflow; -1 = not clipping
}

func newBuilder(width int) *builder {
	b := &builder{
		width:        width,
		record:       true,
		clipRestCols: -1,
	}
	b.lines = append(b.lines, strings.Builder{})
	b.lineCol = append(b.lineCol, 0)
	b.raw = append(b.raw, strings.Builder{})
	b.rawRunes = append(b.rawRunes, 0)
	b.anchorSets = append(b.anchorSets, nil)
	return b
}

func (b *builder) col() int { return b.lineCol[len(b.lineCol)-1] }

func (b *builder) curLine() *strings.Builder { return &b.lines[len(b.lines)-1] }

// newline closes the active style, starts a fresh output line, and reopens
// the style so no terminal ever sees a style spanning a wrap (spec.md §4.1,
// "Style emission").
func (b *builder) newline() {
	b.curLine().WriteString(b.style.CloseSeq())
	b.lines = append(b.lines, strings.Builder{})
	b.lineCol = append(b.lineCol, 0)
	b.curLine().WriteString(b.style.StartSeq(style.DefaultStyle))
}

// newRawChunk begins a fresh raw chunk at an exclude boundary.
func (b *builder) newRawChunk() {
	b.raw = append(b.raw, strings.Builder{})
	b.rawRunes = append(b.rawRunes, 0)
	b.anchorSets = append(b.anchorSets, nil)
}

func (b *builder) addAnchor(line, col int) {
	idx := len(b.anchorSets) - 1
	b.anchorSets[idx] = append(b.anchorSets[idx], anchor{
		offset: b.rawRunes[idx],
		line:   line,
		col:    col,
	})
}

// emit writes a printable run of w cells to the current output line,
// bumping the column. It never wraps on its own; callers decide when a
// wrap is needed.
func (b *builder) emit(text string, w int) {
	b.curLine().WriteString(text)
	b.lineCol[len(b.lineCol)-1] += w
}

func (b *builder) writeRaw(r rune) {
	if !b.record {
		return
	}
	idx := len(b.raw) - 1
	b.raw[idx].WriteRune(r)
	b.rawRunes[idx]++
}

// fits reports whether w more cells can be placed on the current line
// without exceeding the configured width.
func (b *builder) fits(w int) bool { return b.col()+w <= b.width }

func (b *builder) walk(f F) {
	switch n := f.(type) {
	case concatNode:
		for _, c := range n.children {
			if b.clipRestCols == 0 {
				return
			}
			b.walk(c)
		}
	case colorNode:
		old := b.style
		next := old.With(n.slot, n.spec)
		b.curLine().WriteString(next.StartSeq(old))
		b.style = next
		b.walk(n.child)
		b.curLine().WriteString(old.StartSeq(b.style))
		b.style = old
	case literalNode:
		b.walkLiteral(n.text)
	case excludeNode:
		oldRecord := b.record
		b.newRawChunk()
		b.record = false
		b.walk(n.child)
		b.record = oldRecord
	case nobreakNode:
		b.walkNoBreak(n.child)
	}
}

func (b *builder) walkLiteral(text string) {
	for _, r := range text {
		if b.clipRestCols == 0 {
			return
		}
		switch {
		case r == '\n':
			b.writeRaw(r)
			b.newline()
			if b.clipRestCols > 0 {
				// a nobreak clip never spans a hard newline it introduced
				b.clipRestCols = 0
			}
		case r == '\t':
			b.writeTab()
		case isControl(r):
			b.writeControlRune(r)
		default:
			b.writeOrdinaryRune(r)
		}
	}
}

func isControl(r rune) bool {
	return (r >= 0 && r <= 8) || (r >= 11 && r <= 31) || r == 127
}

func (b *builder) writeOrdinaryRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w < 0 {
		w = 0
	}
	if b.clipRestCols >= 0 {
		if w > b.clipRestCols {
			b.clipRestCols = 0
			return
		}
	} else if !b.fits(w) {
		b.newline()
	}
	b.addAnchor(len(b.lineCol)-1, b.col())
	b.emit(string(r), w)
	b.writeRaw(r)
	if b.clipRestCols >= 0 {
		b.clipRestCols -= w
	}
}

func (b *builder) writeControlRune(r rune) {
	caret := rune((int(r) + 64) % 128)
	text := "^" + string(caret)
	const w = 2
	if b.clipRestCols >= 0 {
		if w > b.clipRestCols {
			b.clipRestCols = 0
			return
		}
	} else if !b.fits(w) {
		b.newline()
	}
	b.addAnchor(len(b.lineCol)-1, b.col())
	b.curLine().WriteString(style.Keyword.Start(style.Foreground))
	b.emit(text, w)
	b.curLine().WriteString(b.style.FG.Start(style.Foreground))
	b.writeRaw(r)
	if b.clipRestCols >= 0 {
		b.clipRestCols -= w
	}
}

func (b *builder) writeTab() {
	const w = 4
	if b.clipRestCols >= 0 {
		if w > b.clipRestCols {
			b.clipRestCols = 0
			return
		}
	} else if b.width-b.col() < w {
		b.newline()
	}
	b.addAnchor(len(b.lineCol)-1, b.col())
	b.emit("    ", w)
	b.writeRaw('\t')
	if b.col() == b.width {
		// secondary anchor: content after this tab lands at a fresh line.
		idx := len(b.anchorSets) - 1
		b.anchorSets[idx] = append(b.anchorSets[idx], anchor{
			offset: b.rawRunes[idx],
			line:   len(b.lineCol) - 1 + 1,
			col:    0,
		})
	}
	if b.clipRestCols >= 0 {
		b.clipRestCols -= w
	}
}

// walkNoBreak implements §4.1's nobreak contract: measure the child's
// first line at unbounded width, then place it in full on the current
// line if it fits, or on a fresh line if that fits; if it still overflows
// a fresh line, clip it to width rather than asserting (Open Question #2).
func (b *builder) walkNoBreak(child F) {
	width, multiline := measureFirstLine(child)

	if !multiline && b.fits(width) {
		b.walk(child)
		return
	}

	b.newline()
	if !multiline && width <= b.width {
		b.walk(child)
		return
	}

	// Doesn't fit even alone on a fresh line (or contains embedded
	// newlines of its own): clip to the line width instead of failing.
	old := b.clipRestCols
	b.clipRestCols = b.width
	b.walk(child)
	b.clipRestCols = old
}

// measureFirstLine returns the display width of f's content up to (but
// not including) its first hard newline, and whether f contains more
// content after that newline. Colour nodes and exclude boundaries do not
// affect width; nested nobreak nodes are measured the same way.
func measureFirstLine(f F) (width int, hasNewline bool) {
	switch n := f.(type) {
	case concatNode:
		for _, c := range n.children {
			w, nl := measureFirstLine(c)
			width += w
			if nl {
				return width, true
			}
		}
		return width, false
	case colorNode:
		return measureFirstLine(n.child)
	case excludeNode:
		return measureFirstLine(n.child)
	case nobreakNode:
		return measureFirstLine(n.child)
	case literalNode:
		for _, r := range n.text {
			switch {
			case r == '\n':
				return width, true
			case r == '\t':
				width += 4
			case isControl(r):
				width += 2
			default:
				w := runewidth.RuneWidth(r)
				if w < 0 {
					w = 0
				}
				width += w
			}
		}
		return width, false
	default:
		return 0, false
	}
}

// Format lays f out at the given positive display width.
func Format(f F, width int) P {
	if width <= 0 {
		width = 1
	}
	b := newBuilder(width)
	b.walk(f)
	b.curLine().WriteString(b.style.CloseSeq())

	p := P{
		Value: make([]string, len(b.lines)),
		Raw:   make([]string, len(b.raw)),
	}
	for i := range b.lines {
		p.Value[i] = b.lines[i].String()
	}
	for i := range b.raw {
		p.Raw[i] = b.raw[i].String()
	}
	p.anchors = make([][]anchor, len(b.anchorSets))
	for i, set := range b.anchorSets {
		sorted := make([]anchor, len(set))
		copy(sorted, set)
		sort.Slice(sorted, func(a, c int) bool { return sorted[a].offset < sorted[c].offset })
		p.anchors[i] = sorted
	}
	return p
}

// Translate maps a raw position (chunk, rune offset) to an on-screen
// (line, col) position using the nearest anchor at or before that offset.
func (p P) Translate(chunk, runeOffset int) (line, col int, ok bool) {
	if chunk < 0 || chunk >= len(p.anchors) {
		return 0, 0, false
	}
	set := p.anchors[chunk]
	if len(set) == 0 {
		return 0, 0, false
	}
	i := sort.Search(len(set), func(i int) bool { return set[i].offset > runeOffset }) - 1
	if i < 0 {
		i = 0
	}
	a := set[i]
	delta := runeOffset - a.offset
	return a.line, a.col + delta, true
}

// Contains does a pre-format substring check by walking f and testing each
// literal's text independently; exclude children are skipped. A match that
// only exists when two adjacent literals are concatenated is not found by
// this cheap check (it is still found by the real Search once the node is
// actually formatted) — this is a fast pre-filter, per spec.md §4.1b.
func Contains(f F, q string) bool {
	if q == "" {
		return true
	}
	switch n := f.(type) {
	case concatNode:
		for _, c := range n.children {
			if Contains(c, q) {
				return true
			}
		}
		return false
	case colorNode:
		return Contains(n.child, q)
	case nobreakNode:
		return Contains(n.child, q)
	case literalNode:
		return strings.Contains(n.text, q)
	case excludeNode:
		return false
	default:
		return false
	}
}

// Range is a pair of on-screen positions delimiting one match.
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Search scans every raw chunk of p for occurrences of q, byte-based
// find with rune-count-based position reporting, and maps each occurrence
// through p's mapping into a screen-space Range. Ranges are returned in
// document order.
func Search(p P, q string) []Range {
	if q == "" {
		return nil
	}
	var out []Range
	for chunk, text := range p.Raw {
		pos := 0
		runeBase := 0
		for {
			idx := strings.Index(text[pos:], q)
			if idx < 0 {
				break
			}
			byteStart := pos + idx
			startRune := runeBase + utf8.RuneCountInString(text[pos:byteStart])
			endRune := startRune + utf8.RuneCountInString(q)

			sl, sc, ok1 := p.Translate(chunk, startRune)
			el, ec, ok2 := p.Translate(chunk, endRune)
			if ok1 && ok2 {
				out = append(out, Range{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec})
			}

			runeBase = startRune + utf8.RuneCountInString(text[byteStart:byteStart+len(q)])
			pos = byteStart + len(q)
		}
	}
	return out
}
