// Package term implements the terminal device: raw-mode I/O, alt-screen
// and mouse-tracking toggles, ANSI writes, and a blocking event read that
// multiplexes keyboard input, mouse events, window resize (SIGWINCH) and
// termination (SIGTERM) the way spec.md §5 describes — "an OS-level event
// multiplexer registered with three sources: the controlling terminal's
// read end, SIGWINCH, SIGTERM".
//
// Grounded on cansyan-co/ui/terminal.go's hand-rolled Screen type, which
// the teacher's own app never wires up (it uses tcell.Screen instead):
// Init/Fini, EnableMouse, parseInput/parseCSI/parseMouse/parseControl are
// adapted here into the real entry point, with truecolor narrowed to the
// 8/256-colour escapes spec.md §6 specifies and resize/signal delivery
// actually wired to the OS (the teacher's struct defines EventResize and
// EventInterrupt but its polling readInput loop never posts either).
package term

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Key identifies a non-rune key.
type Key int

const (
	KeyRune Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDn
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyF1
	KeyCtrl // modifier-carrying control key; Ch holds the base letter
)

// Event is the union of events the device can deliver.
type Event interface{ isEvent() }

// KeyEvent is a single keystroke: either a rune (Key == KeyRune) or a
// named key. Ctrl carries the base letter in Ch (e.g. Ch == 'f' for
// Ctrl+F).
type KeyEvent struct {
	Key Key
	Ch  rune
}

// MouseEvent is a click or wheel event at a canvas cell.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
}

type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseWheelUp
	MouseWheelDown
)

// ResizeEvent reports the terminal's new size.
type ResizeEvent struct{ Width, Height int }

// QuitEvent is delivered on SIGTERM; spec.md §5 says it "sets a quit flag
// observed after the current command finishes" rather than interrupting
// immediately.
type QuitEvent struct{}

func (KeyEvent) isEvent()    {}
func (MouseEvent) isEvent()  {}
func (ResizeEvent) isEvent() {}
func (QuitEvent) isEvent()   {}

// Device owns a controlling terminal opened for raw interactive I/O.
type Device struct {
	tty      *os.File
	oldState *term.State
	width    int
	height   int

	sigCh chan os.Signal
}

// Open puts tty into raw mode, switches to the alternate screen, hides the
// cursor and enables mouse tracking, and begins listening for SIGWINCH and
// SIGTERM. The caller must call Close on every exit path (spec.md §5's
// "guaranteed-release handler").
func Open(tty *os.File) (*Device, error) {
	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return nil, fmt.Errorf("term: enter raw mode: %w", err)
	}
	d := &Device{tty: tty, oldState: oldState}

	w, h, err := term.GetSize(int(tty.Fd()))
	if err != nil {
		term.Restore(int(tty.Fd()), oldState)
		return nil, fmt.Errorf("term: query size: %w", err)
	}
	d.width, d.height = w, h

	d.sigCh = make(chan os.Signal, 4)
	signal.Notify(d.sigCh, syscall.SIGWINCH, syscall.SIGTERM)

	d.write("\033[?1049h\033[2J\033[H\033[?25l\033[?1000h\033[?1006h")
	return d, nil
}

// Close restores the terminal to the state it was in before Open, per the
// scoped-acquisition guarantee of spec.md §5.
func (d *Device) Close() {
	d.write("\033[?1006l\033[?1000l\033[?25h\033[?1049l")
	signal.Stop(d.sigCh)
	if d.oldState != nil {
		term.Restore(int(d.tty.Fd()), d.oldState)
	}
}

// Size returns the last known terminal size.
func (d *Device) Size() (width, height int) { return d.width, d.height }

func (d *Device) write(s string) {
	d.tty.WriteString(s)
}

// Write sends raw bytes (already-formatted ANSI output) to the terminal.
func (d *Device) Write(p []byte) (int, error) { return d.tty.Write(p) }

// WriteString is a convenience wrapper around Write.
func (d *Device) WriteString(s string) { d.write(s) }

// Next blocks until the next input byte or pending signal and returns the
// decoded Event. A plain ESC (not the
// start of a CSI sequence) is resolved using a 100ms deadline, per
// spec.md §5's "sub-second deadlines on escape-sequence reads ... to
// distinguish a bare ESC from an opening CSI prefix".
func (d *Device) Next() (Event, error) {
	for {
		if ev, ok := d.pollSignal(); ok {
			return ev, nil
		}

		ready, err := d.waitReadable(-1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if !ready {
			continue
		}

		b0 := make([]byte, 1)
		n, err := d.tty.Read(b0)
		if err != nil || n == 0 {
			continue
		}
		if b0[0] != 0x1b {
			return decodeSingle(b0[0], d)
		}
		return d.readEscape()
	}
}

func (d *Device) pollSignal() (Event, bool) {
	select {
	case sig := <-d.sigCh:
		switch sig {
		case syscall.SIGWINCH:
			if w, h, err := term.GetSize(int(d.tty.Fd())); err == nil {
				d.width, d.height = w, h
				return ResizeEvent{Width: w, Height: h}, true
			}
		case syscall.SIGTERM:
			return QuitEvent{}, true
		}
	default:
	}
	return nil, false
}

// waitReadable waits until tty is readable or the timeout elapses, via a
// single select call on the tty fd — the same approach as
// cansyan-co/ui/terminal.go's syscall.Select poll, on golang.org/x/sys/unix.
// A negative timeoutMs waits at most 200ms, so the caller can check for
// pending signals between waits; it reports false when nothing arrived.
func (d *Device) waitReadable(timeoutMs int) (bool, error) {
	fd := int(d.tty.Fd())
	fdSet := &unix.FdSet{}
	fdSet.Set(fd)

	var tv *unix.Timeval
	if timeoutMs >= 0 {
		t := unix.NsecToTimeval(int64(timeoutMs) * int64(time.Millisecond))
		tv = &t
	}

	// Wake periodically even with no deadline so pending signals (which
	// do not interrupt select on every platform the same way) are still
	// observed promptly.
	if tv == nil {
		t := unix.NsecToTimeval(int64(200 * time.Millisecond))
		tv = &t
	}

	n, err := unix.Select(fd+1, fdSet, nil, nil, tv)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func decodeSingle(b byte, d *Device) (Event, error) {
	switch {
	case b == 0x7f || b == 0x08:
		return KeyEvent{Key: KeyBackspace}, nil
	case b == 0x09:
		return KeyEvent{Key: KeyTab}, nil
	case b == 0x0d, b == 0x0a:
		return KeyEvent{Key: KeyEnter}, nil
	case b < 0x20:
		return KeyEvent{Key: KeyCtrl, Ch: rune(b + 0x60)}, nil
	default:
		return decodeRune(b, d)
	}
}

// decodeRune reassembles a (possibly multi-byte) UTF-8 rune starting at b.
func decodeRune(b byte, d *Device) (Event, error) {
	if b < utf8.RuneSelf {
		return KeyEvent{Key: KeyRune, Ch: rune(b)}, nil
	}
	need := utf8.UTFMax
	buf := make([]byte, 1, need)
	buf[0] = b
	for !utf8.FullRune(buf) && len(buf) < need {
		next := make([]byte, 1)
		if n, err := d.tty.Read(next); err != nil || n == 0 {
			break
		}
		buf = append(buf, next[0])
	}
	r, _ := utf8.DecodeRune(buf)
	return KeyEvent{Key: KeyRune, Ch: r}, nil
}

// readEscape reads the rest of a CSI sequence, or resolves a bare ESC if
// nothing follows within 100ms.
func (d *Device) readEscape() (Event, error) {
	ready, err := d.waitReadable(100)
	if err != nil {
		return nil, err
	}
	if !ready {
		return KeyEvent{Key: KeyEsc}, nil
	}

	next := make([]byte, 1)
	if n, _ := d.tty.Read(next); n == 0 {
		return KeyEvent{Key: KeyEsc}, nil
	}
	if next[0] != '[' && next[0] != 'O' {
		return KeyEvent{Key: KeyEsc}, nil
	}

	var seq []byte
	for {
		b := make([]byte, 1)
		n, err := d.tty.Read(b)
		if err != nil || n == 0 {
			return KeyEvent{Key: KeyEsc}, nil
		}
		if b[0] >= 0x40 && b[0] <= 0x7e {
			return parseCSI(seq, b[0])
		}
		seq = append(seq, b[0])
	}
}

func parseCSI(params []byte, final byte) (Event, error) {
	switch final {
	case 'A':
		return KeyEvent{Key: KeyUp}, nil
	case 'B':
		return KeyEvent{Key: KeyDown}, nil
	case 'C':
		return KeyEvent{Key: KeyRight}, nil
	case 'D':
		return KeyEvent{Key: KeyLeft}, nil
	case 'H':
		return KeyEvent{Key: KeyHome}, nil
	case 'F':
		return KeyEvent{Key: KeyEnd}, nil
	case 'P':
		return KeyEvent{Key: KeyF1}, nil
	case '~':
		switch string(params) {
		case "1", "7":
			return KeyEvent{Key: KeyHome}, nil
		case "4", "8":
			return KeyEvent{Key: KeyEnd}, nil
		case "5":
			return KeyEvent{Key: KeyPgUp}, nil
		case "6":
			return KeyEvent{Key: KeyPgDn}, nil
		}
	case 'M', 'm':
		return parseMouse(string(params), final == 'm')
	}
	return KeyEvent{Key: KeyEsc}, nil
}

var lastMouseButton MouseButton

func parseMouse(seq string, release bool) (Event, error) {
	seq = strings.TrimPrefix(seq, "<")
	parts := strings.Split(seq, ";")
	if len(parts) < 3 {
		return MouseEvent{Button: MouseNone}, nil
	}
	btn, _ := strconv.Atoi(parts[0])
	x, _ := strconv.Atoi(parts[1])
	y, _ := strconv.Atoi(parts[2])
	x--
	y--

	if btn >= 64 {
		if btn&1 == 0 {
			return MouseEvent{X: x, Y: y, Button: MouseWheelUp}, nil
		}
		return MouseEvent{X: x, Y: y, Button: MouseWheelDown}, nil
	}

	if release {
		lastMouseButton = MouseNone
		return MouseEvent{X: x, Y: y, Button: MouseNone}, nil
	}
	if btn&32 != 0 {
		return MouseEvent{X: x, Y: y, Button: lastMouseButton}, nil
	}
	if btn&3 == 0 {
		lastMouseButton = MouseLeft
		return MouseEvent{X: x, Y: y, Button: MouseLeft}, nil
	}
	return MouseEvent{X: x, Y: y, Button: MouseNone}, nil
}
