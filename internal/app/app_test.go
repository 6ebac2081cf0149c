package app

import (
	"testing"

	"github.com/cansyan/jsonbrowse/internal/term"
)

func TestKeyName_CtrlUppercasesTheBaseLetter(t *testing.T) {
	got := keyName(term.KeyEvent{Key: term.KeyCtrl, Ch: 'f'})
	if got != "^F" {
		t.Errorf("keyName(Ctrl+f) = %q, want %q", got, "^F")
	}
}

func TestKeyName_NamedKeysMapToFixedStrings(t *testing.T) {
	cases := []struct {
		key  term.Key
		want string
	}{
		{term.KeyUp, "Up"},
		{term.KeyDown, "Down"},
		{term.KeyLeft, "Left"},
		{term.KeyRight, "Right"},
		{term.KeyHome, "Home"},
		{term.KeyEnd, "End"},
		{term.KeyPgUp, "PgUp"},
		{term.KeyPgDn, "PgDn"},
		{term.KeyF1, "F1"},
		{term.KeyEnter, "Enter"},
	}
	for _, c := range cases {
		got := keyName(term.KeyEvent{Key: c.key})
		if got != c.want {
			t.Errorf("keyName(%v) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestKeyName_RuneKeyReturnsTheRuneItself(t *testing.T) {
	got := keyName(term.KeyEvent{Key: term.KeyRune, Ch: 'j'})
	if got != "j" {
		t.Errorf("keyName(rune j) = %q, want %q", got, "j")
	}
	got = keyName(term.KeyEvent{Key: term.KeyRune, Ch: ' '})
	if got != " " {
		t.Errorf("keyName(rune space) = %q, want %q", got, " ")
	}
}

func TestKeyName_UnmappedKeyReturnsEmptyString(t *testing.T) {
	got := keyName(term.KeyEvent{Key: term.KeyBackspace})
	if got != "" {
		t.Errorf("keyName(Backspace) = %q, want empty string", got)
	}
}

func TestBuildTrie_SingleKeyBindingsResolveToExpectedCommands(t *testing.T) {
	tr := buildTrie()
	cases := []struct {
		key  string
		want string
	}{
		{"j", "next"},
		{"Down", "next"},
		{"k", "prev"},
		{"Up", "prev"},
		{"J", "nextsib"},
		{"K", "prevsib"},
		{"p", "parent"},
		{"g", "first"},
		{"Home", "first"},
		{"G", "last"},
		{"End", "last"},
		{"H", "top"},
		{"M", "middle"},
		{"L", "bottom"},
		{"^Y", "lineup"},
		{"^E", "linedown"},
		{"^B", "pageup"},
		{"PgUp", "pageup"},
		{"^F", "pagedown"},
		{"PgDn", "pagedown"},
		{"^U", "halfup"},
		{"^D", "halfdown"},
		{" ", "toggle"},
		{"w", "expand"},
		{"/", "search_fwd"},
		{"?", "search_bwd"},
		{"n", "next_match"},
		{"N", "prev_match"},
		{"c", "clear_search"},
		{"^L", "redraw"},
		{"q", "quit"},
		{"^C", "quit"},
		{"F1", "help"},
		{"y", "yank"},
	}
	for _, c := range cases {
		cur := tr.Start()
		res := cur.Next(c.key)
		if !res.Matched || res.Cmd != c.want {
			t.Errorf("key %q = %+v, want Matched cmd=%q", c.key, res, c.want)
		}
	}
}

func TestBuildTrie_ZZIsAMultiKeySequenceForCenter(t *testing.T) {
	tr := buildTrie()
	cur := tr.Start()
	r1 := cur.Next("z")
	if !r1.Pending {
		t.Fatalf("Next(z) = %+v, want Pending (first half of zz)", r1)
	}
	r2 := cur.Next("z")
	if !r2.Matched || r2.Cmd != "center" {
		t.Errorf("Next(z) second = %+v, want Matched cmd=center", r2)
	}
}

func TestBuildTrie_UnboundKeyMatchesNothing(t *testing.T) {
	tr := buildTrie()
	cur := tr.Start()
	res := cur.Next("Q")
	if res.Matched || res.Pending {
		t.Errorf("Next(Q) = %+v, want neither matched nor pending", res)
	}
}
