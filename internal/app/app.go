// Package app wires the terminal device, viewport controller, and prompt
// editor together behind a prefix-trie key dispatcher and runs the main
// event loop, per spec.md §2's "Control flow" paragraph.
//
// Grounded on cansyan-co/main.go's flat, framework-free wiring and
// other_examples/kungfusheep-browse__main.go's run()-error / deferred
// terminal-restore shape.
package app

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/cansyan/jsonbrowse/internal/doctree"
	"github.com/cansyan/jsonbrowse/internal/keytrie"
	"github.com/cansyan/jsonbrowse/internal/prompt"
	"github.com/cansyan/jsonbrowse/internal/term"
	"github.com/cansyan/jsonbrowse/internal/value"
	"github.com/cansyan/jsonbrowse/internal/viewport"
)

// App owns every interactive collaborator and runs the event loop.
type App struct {
	dev    *term.Device
	vp     *viewport.Controller
	root   *doctree.Node
	prompt *prompt.Editor
	trie   *keytrie.Trie
	cursor *keytrie.Cursor

	debug bool
	quit  bool

	searching    bool
	searchFwd    bool
	preSearch    viewport.State
	pendingKeyAt time.Time
}

// New constructs the app over an already-parsed document, laying out the
// visible tree at the device's current size and expanding the root.
func New(dev *term.Device, doc *value.Value, debug bool) *App {
	w, h := dev.Size()
	root := doctree.NewRoot(doc, w)
	doctree.Expand(root)

	a := &App{
		dev:    dev,
		root:   root,
		vp:     viewport.New(dev, root, w, h),
		prompt: prompt.New(dev),
		trie:   buildTrie(),
		debug:  debug,
	}
	a.cursor = a.trie.Start()
	return a
}

func buildTrie() *keytrie.Trie {
	t := keytrie.New()
	bind := func(cmd string, keys ...string) { t.Bind(cmd, keys...) }

	bind("next", "j")
	bind("next", "Down")
	bind("prev", "k")
	bind("prev", "Up")
	bind("nextsib", "J")
	bind("prevsib", "K")
	bind("parent", "p")
	bind("first", "g")
	bind("first", "Home")
	bind("last", "G")
	bind("last", "End")
	bind("top", "H")
	bind("middle", "M")
	bind("bottom", "L")
	bind("lineup", "^Y")
	bind("linedown", "^E")
	bind("pageup", "^B")
	bind("pageup", "PgUp")
	bind("pagedown", "^F")
	bind("pagedown", "PgDn")
	bind("halfup", "^U")
	bind("halfdown", "^D")
	bind("center", "z", "z")
	bind("toggle", " ")
	bind("expand", "w")
	bind("search_fwd", "/")
	bind("search_bwd", "?")
	bind("next_match", "n")
	bind("prev_match", "N")
	bind("clear_search", "c")
	bind("redraw", "^L")
	bind("quit", "q")
	bind("quit", "^C")
	bind("help", "F1")
	bind("yank", "y")
	return t
}

// Run draws the initial canvas and processes events until quit.
func (a *App) Run() error {
	defer a.recoverPanic()

	log.Printf("app: event loop starting, width=%d height=%d", a.vp.Width(), a.vp.Height())
	a.vp.Redraw()
	for !a.quit {
		ev, err := a.dev.Next()
		if err != nil {
			return fmt.Errorf("app: read event: %w", err)
		}
		a.dispatch(ev)
	}
	log.Printf("app: quit")
	return nil
}

func (a *App) recoverPanic() {
	if r := recover(); r != nil {
		a.dev.Close()
		fmt.Fprintf(os.Stderr, "jsonbrowse: internal error: %v\n", r)
		if a.debug {
			log.Printf("panic: %v\n%s", r, debug.Stack())
		}
		os.Exit(1)
	}
}

func (a *App) dispatch(ev term.Event) {
	switch e := ev.(type) {
	case term.ResizeEvent:
		a.vp.Resize(e.Width, e.Height)
	case term.QuitEvent:
		a.quit = true
	case term.MouseEvent:
		a.handleMouse(e)
	case term.KeyEvent:
		a.handleKey(e)
	}
}

// handleMouse dispatches a mouse event to the viewport, silently ignoring
// clicks outside the canvas (e.g. on the status line) rather than letting
// Click's clamped-row lookup select the last document row.
func (a *App) handleMouse(e term.MouseEvent) {
	if e.Button == term.MouseLeft && e.Y >= a.vp.Height() {
		return
	}
	switch e.Button {
	case term.MouseLeft:
		a.vp.Click(e.Y, nowOrZero())
	case term.MouseWheelUp:
		a.vp.Scroll(-3)
	case term.MouseWheelDown:
		a.vp.Scroll(3)
	}
}

// nowOrZero wraps time.Now so the one call site that needs wall-clock time
// for the double-click window is easy to find.
func nowOrZero() time.Time { return time.Now() }

func (a *App) handleKey(e term.KeyEvent) {
	if a.searching {
		a.handleSearchKey(e)
		return
	}

	if e.Key == term.KeyRune && e.Ch >= '0' && e.Ch <= '9' {
		a.vp.Digit(byte(e.Ch))
		return
	}

	name := keyName(e)
	res := a.cursor.Next(name)
	switch {
	case res.Pending:
		return
	case res.Matched:
		a.runCommand(res.Cmd)
	default:
		// not part of any binding: abandon and reset count prefix.
		a.vp.ResetNum()
	}
	a.cursor = a.trie.Start()
}

// keyName renders a key event into the trie's key-name alphabet.
func keyName(e term.KeyEvent) string {
	switch e.Key {
	case term.KeyCtrl:
		return "^" + strings.ToUpper(string(e.Ch))
	case term.KeyUp:
		return "Up"
	case term.KeyDown:
		return "Down"
	case term.KeyLeft:
		return "Left"
	case term.KeyRight:
		return "Right"
	case term.KeyHome:
		return "Home"
	case term.KeyEnd:
		return "End"
	case term.KeyPgUp:
		return "PgUp"
	case term.KeyPgDn:
		return "PgDn"
	case term.KeyF1:
		return "F1"
	case term.KeyEnter:
		return "Enter"
	case term.KeyRune:
		return string(e.Ch)
	default:
		return ""
	}
}

func (a *App) runCommand(cmd string) {
	n := 1
	switch cmd {
	case "next", "prev", "nextsib", "prevsib", "lineup", "linedown",
		"pageup", "pagedown", "halfup", "halfdown", "next_match", "prev_match":
		n = a.vp.GetNum()
	default:
		a.vp.ResetNum()
	}

	page := a.vp.Height()
	switch cmd {
	case "next":
		a.vp.MoveNext(n)
	case "prev":
		a.vp.MovePrev(n)
	case "nextsib":
		a.vp.NextSibling(n)
	case "prevsib":
		a.vp.PrevSibling(n)
	case "parent":
		a.vp.Parent()
	case "first":
		a.vp.First()
	case "last":
		a.vp.Last()
	case "top":
		a.vp.ScreenTop()
	case "middle":
		a.vp.ScreenMiddle()
	case "bottom":
		a.vp.ScreenBottom()
	case "lineup":
		a.vp.Scroll(-n)
	case "linedown":
		a.vp.Scroll(n)
	case "pageup":
		a.vp.Scroll(-n * page)
	case "pagedown":
		a.vp.Scroll(n * page)
	case "halfup":
		a.vp.Scroll(-n * page / 2)
	case "halfdown":
		a.vp.Scroll(n * page / 2)
	case "center":
		a.vp.CenterSelection()
	case "toggle":
		a.vp.ToggleSel()
	case "expand":
		a.vp.RecursiveExpand()
	case "search_fwd":
		a.startSearch(true)
	case "search_bwd":
		a.startSearch(false)
	case "next_match":
		a.vp.SearchNext(n, a.searchFwd)
	case "prev_match":
		a.vp.SearchNext(n, !a.searchFwd)
	case "clear_search":
		a.vp.SetQuery("", false)
	case "redraw":
		a.vp.Redraw()
	case "quit":
		a.quit = true
	case "help":
		a.vp.ToggleHelp()
	case "yank":
		a.vp.Yank()
	}
}

func (a *App) startSearch(forward bool) {
	a.preSearch = a.vp.SaveState()
	a.searching = true
	a.searchFwd = forward
	prefix := '/'
	if !forward {
		prefix = '?'
	}
	row := a.vp.Height()
	a.prompt.Open(prefix, row, 0, a.vp.Width(), func(q string) {
		a.vp.SetQuery(q, q != "")
	})
}

func (a *App) handleSearchKey(e term.KeyEvent) {
	done, accepted := a.prompt.Handle(e)
	if !done {
		return
	}
	a.searching = false
	if accepted {
		a.vp.SearchNext(1, a.searchFwd)
	} else {
		a.vp.RestoreState(a.preSearch)
	}
	a.vp.Redraw()
}
