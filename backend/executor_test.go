package backend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nullterm/tuiengine/compositor"
	"github.com/nullterm/tuiengine/units"
)

func TestApplyWritesClearScreenAndFlushesAtEnd(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	err := e.Apply([]compositor.Op{compositor.ClearScreen{}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Errorf("output %q missing clear-screen sequence", buf.String())
	}
}

func TestApplySkipsRedundantCursorMove(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	ops := []compositor.Op{
		compositor.MoveCursorPositionAbs{Pos: units.Position{Row: 2, Col: 3}},
		compositor.MoveCursorPositionAbs{Pos: units.Position{Row: 2, Col: 3}},
	}
	if err := e.Apply(ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := buf.String()
	if n := strings.Count(got, "\x1b[3;4H"); n != 1 {
		t.Errorf("expected exactly one cursor-move sequence, got %d in %q", n, got)
	}
}

func TestApplyHonorsSkipFlush(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	ops := []compositor.Op{
		compositor.ClearScreen{},
		compositor.Flush{SkipFlush: true},
	}
	if err := e.Apply(ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Apply always flushes at stream end regardless of a SkipFlush op mid-stream,
	// so the buffered clear-screen sequence must still have reached the writer.
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Errorf("expected clear-screen sequence to have been flushed at stream end, got %q", buf.String())
	}
}

func TestApplyPaintTextAdvancesCursorColumn(t *testing.T) {
	var buf bytes.Buffer
	e := New(&buf)

	ops := []compositor.Op{
		compositor.MoveCursorPositionAbs{Pos: units.Position{Row: 0, Col: 0}},
		compositor.PaintTextWithAttributes{Text: "hi"},
		compositor.MoveCursorPositionAbs{Pos: units.Position{Row: 0, Col: 2}},
	}
	if err := e.Apply(ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// The second move targets the column PaintText already advanced the
	// cache to, so it must be skipped: only one cursor-move sequence total.
	got := buf.String()
	if n := strings.Count(got, "\x1b["); got == "" || n < 1 {
		t.Fatalf("expected at least one escape sequence, got %q", got)
	}
	if strings.Count(got, "\x1b[1;3H") != 0 {
		t.Errorf("redundant cursor move to (0,2) should have been skipped, got %q", got)
	}
}
