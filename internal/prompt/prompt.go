// Package prompt implements the one-line modal input used for entering a
// search query: cursor motion, history recall, wide-character aware
// rendering, and a live callback fired on every edit.
//
// Grounded on cansyan-co/ui/editor.go's TextEditor, narrowed from a
// multi-line buffer to a single row (no vertical motion, no undo/redo —
// those only make sense across lines) and with InlineSuggest/Suggester
// repurposed into history recall via the up/down arrows.
package prompt

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/cansyan/jsonbrowse/internal/term"
)

// State is the prompt editor's current mode (spec.md §9, "three implicit
// states": normal input is the only one modeled here explicitly — the
// other two, pending-CSI and pending-UTF-8-continuation, live in
// internal/term's own byte-level decoding, not in the prompt itself).
type State int

const (
	Inactive State = iota
	Active
)

// canvas is the minimal device surface the editor needs. *term.Device
// satisfies this; tests substitute a buffer-backed fake.
type canvas interface {
	WriteString(s string)
}

// Editor is a single-line, cursor-tracked text input with history.
type Editor struct {
	dev canvas

	state  State
	prefix rune // '/' or '?'
	buf    []rune
	col    int // rune index of the cursor

	history []string
	histIdx int // -1 when not browsing history
	draft   []rune

	onChange func(string)

	row, x, width int
}

// New builds an editor that writes to dev.
func New(dev canvas) *Editor {
	return &Editor{dev: dev, histIdx: -1}
}

// Open activates the editor at the given screen row/x/width with the given
// prompt prefix ('/' forward search, '?' backward search), clearing any
// previous buffer. onChange fires after every edit with the buffer text so
// far, live, per spec.md §2's "live callback".
func (e *Editor) Open(prefix rune, row, x, width int, onChange func(string)) {
	e.state = Active
	e.prefix = prefix
	e.buf = e.buf[:0]
	e.col = 0
	e.histIdx = -1
	e.onChange = onChange
	e.row, e.x, e.width = row, x, width
	e.Render()
}

// Active reports whether the editor is currently accepting input.
func (e *Editor) Active() bool { return e.state == Active }

// Text returns the current buffer contents.
func (e *Editor) Text() string { return string(e.buf) }

// Handle processes one key event. done is true once the editor should
// close (Enter or Esc); accepted distinguishes the two (true for Enter).
func (e *Editor) Handle(ev term.KeyEvent) (done, accepted bool) {
	if e.state != Active {
		return false, false
	}
	switch ev.Key {
	case term.KeyEnter:
		e.commitHistory()
		e.state = Inactive
		return true, true
	case term.KeyEsc:
		e.state = Inactive
		return true, false
	case term.KeyBackspace:
		if e.col > 0 {
			e.buf = append(e.buf[:e.col-1], e.buf[e.col:]...)
			e.col--
			e.notify()
		}
	case term.KeyLeft:
		if e.col > 0 {
			e.col--
		}
	case term.KeyRight:
		if e.col < len(e.buf) {
			e.col++
		}
	case term.KeyHome:
		e.col = 0
	case term.KeyEnd:
		e.col = len(e.buf)
	case term.KeyUp:
		e.recallOlder()
	case term.KeyDown:
		e.recallNewer()
	case term.KeyCtrl:
		switch ev.Ch {
		case 'a':
			e.col = 0
		case 'e':
			e.col = len(e.buf)
		case 'u':
			e.buf = e.buf[e.col:]
			e.col = 0
			e.notify()
		case 'w':
			e.deleteWordBack()
		}
	case term.KeyRune:
		e.buf = append(e.buf[:e.col], append([]rune{ev.Ch}, e.buf[e.col:]...)...)
		e.col++
		e.notify()
	}
	e.Render()
	return false, false
}

func (e *Editor) notify() {
	if e.onChange != nil {
		e.onChange(string(e.buf))
	}
}

func (e *Editor) deleteWordBack() {
	i := e.col
	for i > 0 && e.buf[i-1] == ' ' {
		i--
	}
	for i > 0 && e.buf[i-1] != ' ' {
		i--
	}
	e.buf = append(e.buf[:i], e.buf[e.col:]...)
	e.col = i
	e.notify()
}

func (e *Editor) commitHistory() {
	text := string(e.buf)
	if text == "" {
		return
	}
	if n := len(e.history); n > 0 && e.history[n-1] == text {
		return
	}
	e.history = append(e.history, text)
}

func (e *Editor) recallOlder() {
	if len(e.history) == 0 {
		return
	}
	if e.histIdx == -1 {
		e.draft = append([]rune{}, e.buf...)
		e.histIdx = len(e.history)
	}
	if e.histIdx == 0 {
		return
	}
	e.histIdx--
	e.setBuf(e.history[e.histIdx])
}

func (e *Editor) recallNewer() {
	if e.histIdx == -1 {
		return
	}
	e.histIdx++
	if e.histIdx >= len(e.history) {
		e.histIdx = -1
		e.setBuf(string(e.draft))
		return
	}
	e.setBuf(e.history[e.histIdx])
}

func (e *Editor) setBuf(s string) {
	e.buf = []rune(s)
	e.col = len(e.buf)
	e.notify()
}

// visualCol returns the display column of rune index i in e.buf, per
// cansyan-co/ui/editor.go's visualColFromLine (tabs can't occur in a
// single-line query, so only wide-rune width matters here).
func visualCol(buf []rune, i int) int {
	col := 0
	for j, r := range buf {
		if j == i {
			return col
		}
		w := runewidth.RuneWidth(r)
		if w < 0 {
			w = 0
		}
		col += w
	}
	return col
}

// Render repaints the prompt row and positions the terminal cursor.
func (e *Editor) Render() {
	if e.state != Active {
		return
	}
	cursorCol := visualCol(e.buf, e.col)
	visible := string(e.buf)
	maxCols := e.width - 1
	if visualCol(e.buf, len(e.buf)) > maxCols {
		// keep the cursor on screen by dropping leading runes.
		start := 0
		for visualCol(e.buf, len(e.buf))-visualCol(e.buf, start) > maxCols {
			start++
		}
		visible = string(e.buf[start:])
		cursorCol = visualCol(e.buf, e.col) - visualCol(e.buf, start)
	}

	e.dev.WriteString(csiCursorTo(e.row, e.x))
	e.dev.WriteString("\033[K")
	e.dev.WriteString(string(e.prefix) + visible)
	e.dev.WriteString(csiCursorTo(e.row, e.x+1+cursorCol))
}

func csiCursorTo(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row+1, col+1)
}
