// Package style implements named 8/256-colour foreground/background specs
// and the ANSI escape strings that start and end them.
package style

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Slot identifies which half of a style (foreground or background) a Spec
// paints.
type Slot int

const (
	Foreground Slot = iota
	Background
)

// basic8 are the classic 3/4-bit ANSI colour names, matching the teacher's
// own GetColor name table (cansyan-co/ui/terminal.go).
var basic8 = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
}

// Spec is an immutable colour specification: either the terminal default,
// one of the 8 basic ANSI colours, or a 256-colour palette index.
type Spec struct {
	isDefault bool
	basic     bool // true => index is 0-7 (ESC[3{n}m / ESC[4{n}m)
	index     int  // 0-7 for basic, 0-255 for indexed
}

// Default is "use the terminal's own colour", i.e. no override.
var Default = Spec{isDefault: true}

// Named resolves a colour by name. Names in basic8 map to the 8-colour
// escapes; any other name recognised by tcell.ColorNames is quantized down
// to the nearest xterm 256-colour palette entry (spec.md §6 only allows
// 8/256-colour escapes, never truecolor).
func Named(name string) (Spec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return Default, true
	}
	if idx, ok := basic8[name]; ok {
		return Spec{basic: true, index: idx}, true
	}
	c, ok := tcell.ColorNames[name]
	if !ok {
		return Spec{}, false
	}
	return Indexed(quantize256(c.Hex())), true
}

// Indexed builds a 256-colour palette Spec directly.
func Indexed(idx int) Spec {
	if idx < 0 {
		idx = 0
	}
	if idx > 255 {
		idx = 255
	}
	return Spec{index: idx}
}

// IsDefault reports whether the spec means "no override".
func (s Spec) IsDefault() bool { return s.isDefault }

// Equal reports whether two specs paint the same colour.
func (s Spec) Equal(o Spec) bool {
	if s.isDefault != o.isDefault {
		return false
	}
	if s.isDefault {
		return true
	}
	return s.basic == o.basic && s.index == o.index
}

// Start returns the ANSI escape sequence that begins painting with s in the
// given slot.
func (s Spec) Start(slot Slot) string {
	if s.isDefault {
		return s.End(slot)
	}
	if s.basic {
		base := 30
		if slot == Background {
			base = 40
		}
		return fmt.Sprintf("\033[%dm", base+s.index)
	}
	if slot == Foreground {
		return fmt.Sprintf("\033[38;5;%dm", s.index)
	}
	return fmt.Sprintf("\033[48;5;%dm", s.index)
}

// End returns the escape that restores the slot's default colour.
func (s Spec) End(slot Slot) string {
	if slot == Foreground {
		return "\033[39m"
	}
	return "\033[49m"
}

// quantize256 maps a 24-bit RGB value (as returned by tcell.Color.Hex) to
// the nearest xterm 256-colour palette index using the standard 6x6x6 cube
// plus greyscale-ramp approximation.
func quantize256(hex int32) int {
	r := int((hex >> 16) & 0xff)
	g := int((hex >> 8) & 0xff)
	b := int(hex & 0xff)

	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (r-8)*23/240
	}

	q := func(v int) int {
		switch {
		case v < 48:
			return 0
		case v < 115:
			return 1
		default:
			return (v - 35) / 40
		}
	}
	return 16 + 36*q(r) + 6*q(g) + q(b)
}

// Style bundles a foreground and background Spec. Unlike a stack-based
// style model, colors override by slot: a color() node overrides only the
// matching slot on its children, leaving the other slot inherited.
type Style struct {
	FG, BG Spec
}

// DefaultStyle paints with the terminal's own colours.
var DefaultStyle = Style{FG: Default, BG: Default}

// With returns a copy of s with the given slot replaced by spec.
func (s Style) With(slot Slot, spec Spec) Style {
	if slot == Foreground {
		s.FG = spec
	} else {
		s.BG = spec
	}
	return s
}

// Equal reports whether two styles paint identically.
func (s Style) Equal(o Style) bool {
	return s.FG.Equal(o.FG) && s.BG.Equal(o.BG)
}

// StartSeq returns the escape sequence to switch from 'from' to 's'.
func (s Style) StartSeq(from Style) string {
	var b strings.Builder
	if !s.FG.Equal(from.FG) {
		b.WriteString(s.FG.Start(Foreground))
	}
	if !s.BG.Equal(from.BG) {
		b.WriteString(s.BG.Start(Background))
	}
	return b.String()
}

// CloseSeq returns the escape sequence that resets both slots to default.
func (s Style) CloseSeq() string {
	var b strings.Builder
	if !s.FG.IsDefault() {
		b.WriteString(s.FG.End(Foreground))
	}
	if !s.BG.IsDefault() {
		b.WriteString(s.BG.End(Background))
	}
	return b.String()
}

// Keyword is the colour used for the caret-notation rendering of control
// characters (spec.md §4.1).
var Keyword = Spec{basic: true, index: basic8["magenta"]}
