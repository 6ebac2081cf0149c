package doctree

import (
	"strings"
	"testing"
)

func TestSearchIter_ForwardFindsMatchesInPreOrder(t *testing.T) {
	v := mustParse(t, `{"apple": 1, "banana": {"x": "grape"}, "cherry": "fig"}`)
	it := NewSearchIter(v, true, "ap")
	first := it.Next()
	if first == nil {
		t.Fatal("expected a match for \"ap\"")
	}
	if first.Key() != "apple" {
		t.Errorf("first match key = %q, want %q", first.Key(), "apple")
	}
	second := it.Next()
	if second == nil {
		t.Fatal("expected a second match for \"ap\" (grape)")
	}
	if second.Key() != "x" {
		t.Errorf("second match key = %q, want %q", second.Key(), "x")
	}
	if it.Next() != nil {
		t.Error("expected no further matches past the end of the document")
	}
}

func TestSearchIter_BackwardFindsMatchesInReversePreOrder(t *testing.T) {
	v := mustParse(t, `{"apple": 1, "banana": {"x": "grape"}, "cherry": "fig"}`)
	cherry := v.Children()[2]
	it := NewSearchIter(cherry, false, "ap")
	first := it.Next()
	if first == nil {
		t.Fatal("expected a match walking backward from cherry")
	}
	if first.Key() != "x" {
		t.Errorf("first backward match key = %q, want %q", first.Key(), "x")
	}
}

func TestSearchIter_WrapsAroundPastTheDocumentTailToFindAMatchBeforeStart(t *testing.T) {
	v := mustParse(t, `{"alpha": "ap", "bravo": "xx"}`)
	alpha := v.Children()[0]
	it := NewSearchIter(alpha, true, "ap")
	got := it.Next()
	if got == nil {
		t.Fatal("expected the search to wrap around the document tail and find alpha's own value")
	}
	if got.Key() != "alpha" {
		t.Errorf("wrapped match key = %q, want %q", got.Key(), "alpha")
	}
}

func TestSearchIter_WrapsAroundPastTheDocumentHeadToFindAMatchAfterStart(t *testing.T) {
	v := mustParse(t, `{"alpha": "xx", "bravo": "ap"}`)
	bravo := v.Children()[1]
	it := NewSearchIter(bravo, false, "ap")
	got := it.Next()
	if got == nil {
		t.Fatal("expected the backward search to wrap around the document head and find bravo's own value")
	}
	if got.Key() != "bravo" {
		t.Errorf("wrapped match key = %q, want %q", got.Key(), "bravo")
	}
}

func TestSearchIter_ReturnsNilAfterAFullCycleWithNoMatch(t *testing.T) {
	v := mustParse(t, `{"alpha": 1, "bravo": 2}`)
	it := NewSearchIter(v, true, "nope")
	if got := it.Next(); got != nil {
		t.Errorf("Next() = %v, want nil after a full cycle with no match anywhere", got)
	}
}

func TestSearchIter_EmptyQueryMatchesTheVeryNextCandidate(t *testing.T) {
	// format.Contains treats "" as always matching, so the iterator should
	// stop at the very next value rather than walk the whole document.
	v := mustParse(t, `{"a": 1, "b": 2}`)
	it := NewSearchIter(v, true, "")
	first := it.Next()
	if first == nil {
		t.Fatal("expected the first value with an empty (always-matching) query")
	}
	if first.Key() != "a" {
		t.Errorf("first match key = %q, want %q", first.Key(), "a")
	}
}

func TestExpandPath_WalksDownExpandingAncestors(t *testing.T) {
	v := mustParse(t, `{"a": {"b": {"c": 42}}}`)
	root := NewRoot(v, 80)

	target := ExpandPath(root, []int{0, 0})
	if target == nil {
		t.Fatal("ExpandPath should find the node at [0, 0]")
	}
	if !strings.EqualFold(target.Value.Key(), "b") {
		t.Errorf("target key = %q, want %q", target.Value.Key(), "b")
	}
	if !root.Expanded() {
		t.Error("root should have been expanded as an ancestor")
	}
	a := root.Children()[0]
	if !a.Expanded() {
		t.Error("a should have been expanded as an ancestor")
	}
}

func TestExpandPath_EmptyPathReturnsRoot(t *testing.T) {
	v := mustParse(t, `{"a": 1}`)
	root := NewRoot(v, 80)
	got := ExpandPath(root, nil)
	if got != root {
		t.Error("ExpandPath with an empty path should return root")
	}
}

func TestExpandPath_OutOfRangeIndexReturnsNil(t *testing.T) {
	v := mustParse(t, `{"a": 1}`)
	root := NewRoot(v, 80)
	got := ExpandPath(root, []int{5})
	if got != nil {
		t.Error("ExpandPath with an out-of-range index should return nil")
	}
}
