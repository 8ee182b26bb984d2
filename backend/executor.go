// Package backend consumes a compositor render-op stream and writes the
// corresponding ANSI bytes to a real terminal, downgrading truecolor to
// whatever the detected terminal actually supports. spec.md 4.8.
package backend

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/nullterm/tuiengine/compositor"
	"github.com/nullterm/tuiengine/pixel"
)

// Executor applies a compositor.Op stream to an underlying writer,
// tracking the last-written cursor position and style so adjacent ops
// that don't actually change either are skipped — the render-local cache
// spec.md 4.8 calls for for avoiding redundant writes.
type Executor struct {
	w       io.Writer
	profile termenv.Profile

	haveCursor bool
	cursorRow  int
	cursorCol  int
	haveStyle  bool
	lastStyle  pixel.Style

	buf strings.Builder
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithProfile overrides termenv's autodetected color profile, matching
// termenv's own termenv.WithProfile escape hatch for callers that know
// better than autodetection (CI runners, recorded sessions, forced
// truecolor for a known-capable host).
func WithProfile(p termenv.Profile) Option {
	return func(e *Executor) { e.profile = p }
}

// New builds an Executor writing to w, detecting w's color capability via
// termenv (a writer that isn't a terminal gets termenv's Ascii profile,
// which carries no color).
func New(w io.Writer, opts ...Option) *Executor {
	out := termenv.NewOutput(w)
	e := &Executor{w: w, profile: out.Profile}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply executes ops in order, buffering writes and flushing at each
// compositor.Flush op (unless SkipFlush is set) or at the end of the
// stream.
func (e *Executor) Apply(ops []compositor.Op) error {
	for _, op := range ops {
		switch v := op.(type) {
		case compositor.ClearScreen:
			e.buf.WriteString("\x1b[2J\x1b[H")
			e.haveCursor = false
		case compositor.MoveCursorPositionAbs:
			e.moveCursor(int(v.Pos.Row), int(v.Pos.Col))
		case compositor.ApplyColors:
			e.applyStyle(v.Style)
		case compositor.ResetColor:
			e.buf.WriteString("\x1b[0m")
			e.haveStyle = false
		case compositor.PaintTextWithAttributes:
			e.buf.WriteString(v.Text)
			e.cursorCol += len([]rune(v.Text))
		case compositor.PaintCell:
			e.paintCell(v)
		case compositor.Flush:
			if !v.SkipFlush {
				if err := e.flush(); err != nil {
					return err
				}
			}
		}
	}
	return e.flush()
}

func (e *Executor) moveCursor(row, col int) {
	if e.haveCursor && e.cursorRow == row && e.cursorCol == col {
		return
	}
	fmt.Fprintf(&e.buf, "\x1b[%d;%dH", row+1, col+1)
	e.haveCursor = true
	e.cursorRow, e.cursorCol = row, col
}

func (e *Executor) paintCell(v compositor.PaintCell) {
	e.moveCursor(int(v.Pos.Row), int(v.Pos.Col))
	switch c := v.Char.(type) {
	case pixel.PlainText:
		e.applyStyle(c.Style)
		e.buf.WriteRune(c.Char)
		e.cursorCol++
	case pixel.Spacer, pixel.Void:
		e.buf.WriteString(" ")
		e.cursorCol++
	}
}

func (e *Executor) applyStyle(s pixel.Style) {
	if e.haveStyle && e.lastStyle.Equal(s) {
		return
	}
	e.buf.WriteString("\x1b[0m")
	if s.Attrs.Has(pixel.AttrBold) {
		e.buf.WriteString("\x1b[1m")
	}
	if s.Attrs.Has(pixel.AttrDim) {
		e.buf.WriteString("\x1b[2m")
	}
	if s.Attrs.Has(pixel.AttrItalic) {
		e.buf.WriteString("\x1b[3m")
	}
	if s.Attrs.Has(pixel.AttrUnderline) {
		e.buf.WriteString("\x1b[4m")
	}
	if s.Attrs.Has(pixel.AttrBlink) {
		e.buf.WriteString("\x1b[5m")
	}
	if s.Attrs.Has(pixel.AttrReverse) {
		e.buf.WriteString("\x1b[7m")
	}
	if s.Attrs.Has(pixel.AttrHidden) {
		e.buf.WriteString("\x1b[8m")
	}
	if s.Attrs.Has(pixel.AttrStrikethrough) {
		e.buf.WriteString("\x1b[9m")
	}
	if s.Fg != nil {
		e.buf.WriteString(e.sequence(s.Fg, false))
	}
	if s.Bg != nil {
		e.buf.WriteString(e.sequence(s.Bg, true))
	}
	e.haveStyle = true
	e.lastStyle = s
}

// sequence converts a pixel color to the SGR escape sequence matching the
// detected terminal's best supported color depth, downgrading truecolor to
// 256-color or basic ANSI as termenv's profile conversion dictates.
func (e *Executor) sequence(c color.Color, bg bool) string {
	rgba := pixel.Resolve(c, !bg)
	full := termenv.RGBColor(fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B))
	converted := e.profile.Convert(full)
	return "\x1b[" + converted.Sequence(bg) + "m"
}

func (e *Executor) flush() error {
	if e.buf.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(e.w, e.buf.String())
	e.buf.Reset()
	return err
}
