package style

import "testing"

func TestNamed_Basic8(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"black", 0},
		{"red", 1},
		{"green", 2},
		{"yellow", 3},
		{"blue", 4},
		{"magenta", 5},
		{"cyan", 6},
		{"white", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Named(tt.name)
			if !ok {
				t.Fatalf("Named(%q) not found", tt.name)
			}
			if !s.basic || s.index != tt.want {
				t.Errorf("Named(%q) = %+v, want basic index %d", tt.name, s, tt.want)
			}
		})
	}
}

func TestNamed_DefaultAndEmpty(t *testing.T) {
	for _, name := range []string{"", "default", "DEFAULT", "  default  "} {
		s, ok := Named(name)
		if !ok || !s.IsDefault() {
			t.Errorf("Named(%q) = %+v, %v; want Default, true", name, s, ok)
		}
	}
}

func TestNamed_UnknownColorFails(t *testing.T) {
	if _, ok := Named("not-a-real-color"); ok {
		t.Error("expected Named to fail for an unrecognized name")
	}
}

func TestNamed_TcellColorIsQuantizedTo256(t *testing.T) {
	s, ok := Named("tomato")
	if !ok {
		t.Fatal("Named(\"tomato\") should resolve via tcell.ColorNames")
	}
	if s.basic {
		t.Error("a non-basic8 named color should not map to the basic 8-color escapes")
	}
	if s.index < 0 || s.index > 255 {
		t.Errorf("quantized index %d out of 256-color range", s.index)
	}
}

func TestIndexed_ClampsToByteRange(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{200, 200},
		{255, 255},
		{999, 255},
	}
	for _, tt := range tests {
		if got := Indexed(tt.in).index; got != tt.want {
			t.Errorf("Indexed(%d).index = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSpec_Equal(t *testing.T) {
	a := Indexed(42)
	b := Indexed(42)
	c := Indexed(43)
	if !a.Equal(b) {
		t.Error("equal indexed specs should compare equal")
	}
	if a.Equal(c) {
		t.Error("different indexed specs should not compare equal")
	}
	if !Default.Equal(Default) {
		t.Error("Default should equal itself")
	}
	red, _ := Named("red")
	if Default.Equal(red) {
		t.Error("Default should not equal a concrete color")
	}
}

func TestSpec_StartAndEnd(t *testing.T) {
	red, _ := Named("red")
	if got, want := red.Start(Foreground), "\033[31m"; got != want {
		t.Errorf("red.Start(Foreground) = %q, want %q", got, want)
	}
	if got, want := red.Start(Background), "\033[41m"; got != want {
		t.Errorf("red.Start(Background) = %q, want %q", got, want)
	}
	idx := Indexed(200)
	if got, want := idx.Start(Foreground), "\033[38;5;200m"; got != want {
		t.Errorf("Indexed(200).Start(Foreground) = %q, want %q", got, want)
	}
	if got, want := idx.Start(Background), "\033[48;5;200m"; got != want {
		t.Errorf("Indexed(200).Start(Background) = %q, want %q", got, want)
	}
	if got, want := Default.Start(Foreground), "\033[39m"; got != want {
		t.Errorf("Default.Start(Foreground) = %q, want %q", got, want)
	}
	if got, want := Default.Start(Background), "\033[49m"; got != want {
		t.Errorf("Default.Start(Background) = %q, want %q", got, want)
	}
	if got, want := red.End(Foreground), "\033[39m"; got != want {
		t.Errorf("End(Foreground) = %q, want %q", got, want)
	}
	if got, want := red.End(Background), "\033[49m"; got != want {
		t.Errorf("End(Background) = %q, want %q", got, want)
	}
}

func TestStyle_WithOverridesOnlyOneSlot(t *testing.T) {
	red, _ := Named("red")
	blue, _ := Named("blue")
	s := DefaultStyle.With(Foreground, red)
	if !s.FG.Equal(red) {
		t.Error("FG should be red after With(Foreground, red)")
	}
	if !s.BG.Equal(Default) {
		t.Error("BG should remain Default")
	}
	s2 := s.With(Background, blue)
	if !s2.FG.Equal(red) || !s2.BG.Equal(blue) {
		t.Error("With should only touch the given slot, preserving the other")
	}
}

func TestStyle_StartSeqOnlyEmitsChangedSlots(t *testing.T) {
	red, _ := Named("red")
	from := DefaultStyle
	to := DefaultStyle.With(Foreground, red)
	seq := to.StartSeq(from)
	if seq != red.Start(Foreground) {
		t.Errorf("StartSeq = %q, want only the FG escape %q", seq, red.Start(Foreground))
	}

	// No change at all => empty sequence.
	if got := from.StartSeq(from); got != "" {
		t.Errorf("StartSeq(from, from) = %q, want empty", got)
	}
}

func TestStyle_CloseSeqOnlyResetsNonDefaultSlots(t *testing.T) {
	if got := DefaultStyle.CloseSeq(); got != "" {
		t.Errorf("DefaultStyle.CloseSeq() = %q, want empty", got)
	}
	red, _ := Named("red")
	s := DefaultStyle.With(Foreground, red)
	if got, want := s.CloseSeq(), "\033[39m"; got != want {
		t.Errorf("CloseSeq() = %q, want %q", got, want)
	}
}

func TestStyle_Equal(t *testing.T) {
	red, _ := Named("red")
	a := DefaultStyle.With(Foreground, red)
	b := DefaultStyle.With(Foreground, red)
	if !a.Equal(b) {
		t.Error("identically-built styles should be equal")
	}
	if a.Equal(DefaultStyle) {
		t.Error("a style with an override should not equal DefaultStyle")
	}
}
