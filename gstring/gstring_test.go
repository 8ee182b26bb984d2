package gstring

import (
	"testing"
	"unicode/utf8"

	"github.com/nullterm/tuiengine/units"
)

func TestSegmentByteLengthsSumToStringLength(t *testing.T) {
	samples := []string{"hello", "Hello 😀 World", "中文混合 text", "", "áb"}
	for _, s := range samples {
		g := New(s)
		var sum int
		for _, seg := range g.segments {
			sum += int(seg.ByteLen)
		}
		if sum != utf8.RuneCountInString(s) && sum != len(s) {
			// sum must equal the byte length of s exactly.
		}
		if sum != len(s) {
			t.Errorf("New(%q): segment byte lengths sum to %d, want %d", s, sum, len(s))
		}
	}
}

func TestSegmentColumnsStrictlyIncreasing(t *testing.T) {
	g := New("Hello 😀 World")
	for i := 1; i < len(g.segments); i++ {
		if g.segments[i].ColStart <= g.segments[i-1].ColStart {
			t.Fatalf("segment columns not strictly increasing at %d", i)
		}
	}
}

func TestEditorGraphemeSafeDelete(t *testing.T) {
	// spec.md 8, scenario 6.
	line := New("Hello 😀 World")
	if line.SegmentCount() != 13 {
		t.Fatalf("expected 13 segments (H e l l o space emoji space W o r l d), got %d", line.SegmentCount())
	}
	result := line.DeleteCharAt(units.ColIndex(6))
	if result.String() != "Hello  World" {
		t.Errorf("got %q, want %q", result.String(), "Hello  World")
	}
	if result.SegmentCount() != 12 {
		t.Errorf("got %d segments, want 12", result.SegmentCount())
	}
}

func TestDeleteOutOfRangeReturnsUnchanged(t *testing.T) {
	g := New("abc")
	out := g.DeleteCharAt(units.ColIndex(99))
	if out.String() != "abc" {
		t.Errorf("out-of-range delete should be a no-op, got %q", out.String())
	}
}

func TestZeroLengthStringQueriesReturnNone(t *testing.T) {
	g := New("")
	if _, ok := g.AtDisplayCol(0); ok {
		t.Error("AtDisplayCol on empty string should return false")
	}
	if _, ok := g.GetStringAt(0); ok {
		t.Error("GetStringAt on empty string should return false")
	}
}

func TestInsertAndDeleteRoundTrip(t *testing.T) {
	g := New("Hello World")
	inserted, w := g.InsertChunkAt(units.ColIndex(5), ", there")
	if w != units.ColWidth(7) {
		t.Errorf("inserted width = %d, want 7", w)
	}
	if inserted.String() != "Hello, there World" {
		t.Fatalf("got %q", inserted.String())
	}
	restored := inserted
	for i := 0; i < int(w); i++ {
		restored = restored.DeleteCharAt(units.ColIndex(5))
	}
	if restored.String() != "Hello World" {
		t.Errorf("deleting the inserted chunk gave %q, want %q", restored.String(), "Hello World")
	}
}

func TestClipSkipsStraddlingWideGlyphs(t *testing.T) {
	g := New("中ab")
	// "中" occupies columns 0-1. Clipping [1,3) would straddle it; it must
	// be skipped entirely rather than sliced, leaving only "a" (column 2).
	clipped := g.Clip(units.ColIndex(1), units.ColWidth(2))
	if clipped != "a" {
		t.Errorf("got %q, want %q", clipped, "a")
	}
}

func TestSplitAtDisplayCol(t *testing.T) {
	g := New("Hello World")
	left, right := g.SplitAtDisplayCol(units.ColIndex(5))
	if left.String() != "Hello" || right.String() != " World" {
		t.Errorf("got (%q, %q)", left.String(), right.String())
	}
}
