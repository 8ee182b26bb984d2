// Package compositor converts a freshly painted screen.Buffer into the
// minimal sequence of render ops a backend needs to update the physical
// terminal: either a full render (no prior frame) or a diff render
// (against the last-known frame). spec.md 4.5.
package compositor

import (
	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/screen"
	"github.com/nullterm/tuiengine/units"
)

// Op is one instruction in a render-op stream. Concrete types implement
// isOp() to form a closed tagged union, mirroring pixel.Color and
// pixel.PixelChar's interface-based variant encoding.
type Op interface {
	isOp()
}

// MoveCursorPositionAbs repositions the physical cursor before the next
// paint op.
type MoveCursorPositionAbs struct {
	Pos units.Position
}

func (MoveCursorPositionAbs) isOp() {}

// ApplyColors sets the foreground/background/attributes that subsequent
// paint ops render with, until the next ApplyColors.
type ApplyColors struct {
	Style pixel.Style
}

func (ApplyColors) isOp() {}

// ResetColor resets the terminal's rendering attributes to their default.
type ResetColor struct{}

func (ResetColor) isOp() {}

// PaintTextWithAttributes writes text starting at the cursor, in the style
// established by the preceding ApplyColors. Produced by the full-render
// run-merging pass.
type PaintTextWithAttributes struct {
	Text string
}

func (PaintTextWithAttributes) isOp() {}

// PaintCell paints a single cell. Produced by the diff-render pass, which
// keeps its output literal (one op per differing cell) rather than
// re-merging runs.
type PaintCell struct {
	Pos  units.Position
	Char pixel.PixelChar
}

func (PaintCell) isOp() {}

// ClearScreen clears the full terminal, used ahead of a first frame or a
// forced full redraw.
type ClearScreen struct{}

func (ClearScreen) isOp() {}

// Flush is a discrete op marking the point at which the backend should
// flush its write buffer, unless SkipFlush suppresses it (e.g. an
// intermediate op in a larger batch that the caller wants coalesced with
// the next one).
type Flush struct {
	SkipFlush bool
}

func (Flush) isOp() {}

// FullRender walks buf row-major, merging same-style adjacent cells into
// PaintTextWithAttributes runs. A style change, a Void cell, or the end of
// a row flushes the current run; a Void cell also breaks the run without
// itself producing a paint op (so callers relying on the terminal's
// existing blank to show through don't get an explicit space written over
// it).
func FullRender(buf *screen.Buffer) []Op {
	ops := []Op{ClearScreen{}}
	rows, cols := buf.Rows(), buf.Cols()

	for r := 0; r < rows; r++ {
		var run []rune
		var runStyle pixel.Style
		runStart := -1
		haveStyle := false

		flush := func(endCol int) {
			if runStart < 0 || len(run) == 0 {
				return
			}
			ops = append(ops,
				MoveCursorPositionAbs{Pos: units.Position{Row: units.RowIndex(r), Col: units.ColIndex(runStart)}},
				ApplyColors{Style: runStyle},
				PaintTextWithAttributes{Text: string(run)},
			)
			run = nil
			runStart = -1
		}

		for c := 0; c < cols; c++ {
			pc, _ := buf.GetChar(units.Position{Row: units.RowIndex(r), Col: units.ColIndex(c)})
			switch v := pc.(type) {
			case pixel.Void:
				flush(c)
				haveStyle = false
			case pixel.Spacer:
				// The wide-rune cell to its left already advanced the
				// paint past this column; nothing to emit here.
			case pixel.PlainText:
				if haveStyle && !v.Style.Equal(runStyle) {
					flush(c)
				}
				if runStart < 0 {
					runStart = c
					runStyle = v.Style
					haveStyle = true
				}
				run = append(run, v.Char)
			default:
				flush(c)
				haveStyle = false
			}
		}
		flush(cols)
	}

	ops = append(ops, ResetColor{}, Flush{})
	return ops
}

// DiffRender compares prev against cur cell-wise and emits one PaintCell op
// per differing position, in row-major order. Adjacent same-style cells
// are NOT merged: the reference design keeps diff output literal, trading
// a larger op count for a simpler, auditable correspondence to
// screen.Buffer.Diff.
func DiffRender(prev, cur *screen.Buffer) []Op {
	chunks := prev.Diff(cur)
	if len(chunks) == 0 {
		return nil
	}
	ops := make([]Op, 0, len(chunks)+1)
	for _, ch := range chunks {
		ops = append(ops, PaintCell{Pos: ch.Pos, Char: ch.Char})
	}
	ops = append(ops, Flush{})
	return ops
}
