// Package screen implements the offscreen buffer: a fixed-size grid of
// pixel.PixelChar that supports both direct painting (by the compositor)
// and ANSI-driven mutation (by the emulator). spec.md 4.2.
package screen

import (
	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/units"
)

// Charset selects which character-set translation is active in G0.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetSlot addresses one of the four VT100 character-set registers.
type CharsetSlot int

const (
	G0 CharsetSlot = iota
	G1
	G2
	G3
)

// OSCKind classifies a pending OSC event queued by the emulator for a
// consumer to drain (title changes, hyperlink URIs, build-progress
// reports, working-directory reports). spec.md 4.4's osc_dispatch.
type OSCKind int

const (
	OSCTitle OSCKind = iota
	OSCHyperlink
	OSCWorkingDirectory
	OSCBuildProgress
)

// OSCEvent is one entry in the buffer's pending-OSC-events queue.
type OSCEvent struct {
	Kind    OSCKind
	Payload string
}

// savedState is the single slot shared by DECSC/DECRC (ESC 7 / ESC 8) and
// SCP/RCP (CSI s / CSI u). See DESIGN.md's Open Questions / spec.md 9: the reference
// implementation appears to share one slot between the two mechanisms, and
// this port makes that explicit rather than modeling two independent slots.
type savedState struct {
	pos        units.Position
	style      pixel.Style
	originMode bool
}

// ParserSupport is the emulator's persistent state, embedded in Buffer. It
// survives across separate writes — crucial for DECSC ... many ops ...
// DECRC spanning multiple Write calls.
type ParserSupport struct {
	Style           pixel.Style
	AutoWrap        bool // DECAWM, default on
	OriginMode      bool
	ActiveCharset   CharsetSlot
	Charsets        [4]Charset
	HasScrollRegion bool
	ScrollTop       units.RowIndex // inclusive, 0-based internally
	ScrollBottom    units.RowIndex // inclusive, 0-based internally
	CurrentLink     *pixel.Hyperlink

	saved   *savedState
	pending []OSCEvent
}

// Buffer is the offscreen buffer: buffer[height][width] of PixelChar, a
// cursor position, a window size, and ParserSupport.
type Buffer struct {
	size    units.Size
	cells   [][]cell
	wrapped []bool
	tabStop []bool
	cursor  units.Position

	ParserSupport
}

// NewEmpty builds a buffer of the given size with every cell Void, cursor
// at the origin, DECAWM on, no scroll region, G0 set to ASCII.
func NewEmpty(size units.Size) *Buffer {
	b := &Buffer{
		size:    size,
		cells:   make([][]cell, size.Height),
		wrapped: make([]bool, size.Height),
		tabStop: make([]bool, size.Width),
	}
	for r := range b.cells {
		row := make([]cell, size.Width)
		for c := range row {
			row[c] = newVoidCell()
		}
		b.cells[r] = row
	}
	for c := 0; c < int(size.Width); c += 8 {
		b.tabStop[c] = true
	}
	b.ParserSupport = ParserSupport{
		AutoWrap:     true,
		ScrollBottom: units.RowIndex(size.Height) - 1,
	}
	return b
}

// Size returns the buffer's (height, width).
func (b *Buffer) Size() units.Size { return b.size }

// Rows returns the buffer height.
func (b *Buffer) Rows() int { return int(b.size.Height) }

// Cols returns the buffer width.
func (b *Buffer) Cols() int { return int(b.size.Width) }

// Cursor returns the current 0-based cursor position.
func (b *Buffer) Cursor() units.Position { return b.cursor }

func (b *Buffer) inBounds(pos units.Position) bool {
	return units.InArrayBounds(int(pos.Row), int(b.size.Height)) &&
		units.InArrayBounds(int(pos.Col), int(b.size.Width))
}

// GetChar returns the pixel character at pos, or false if pos is out of
// bounds.
func (b *Buffer) GetChar(pos units.Position) (pixel.PixelChar, bool) {
	if !b.inBounds(pos) {
		return nil, false
	}
	return b.cells[pos.Row][pos.Col].toPixelChar(), true
}

// SetChar writes pc directly at pos (used by the compositor's direct-paint
// path, as opposed to the ANSI-driven PrintChar). Does nothing if pos is
// out of bounds.
func (b *Buffer) SetChar(pos units.Position, pc pixel.PixelChar) {
	if !b.inBounds(pos) {
		return
	}
	c := &b.cells[pos.Row][pos.Col]
	switch v := pc.(type) {
	case pixel.Void:
		c.reset()
	case pixel.Spacer:
		c.char = 0
		c.style = v.Style
		c.setWideSpacer()
	case pixel.PlainText:
		c.char = v.Char
		c.style = v.Style
		c.flags = 0
		c.setWide(v.Wide)
	}
	c.markDirty()
}

// PrintChar writes r at the cursor using the current ParserSupport style,
// advances the cursor, and honors DECAWM. This is the ANSI-driven path
// (spec.md 4.2's printing algorithm); width must already be resolved by the
// caller (the emulator consults gstring's width rules and the active
// charset translation before calling PrintChar).
func (b *Buffer) PrintChar(r rune, wide bool) {
	row, col := b.cursor.Row, b.cursor.Col
	if int(row) >= 0 && int(row) < int(b.size.Height) && int(col) >= 0 && int(col) < int(b.size.Width) {
		c := &b.cells[row][col]
		c.char = r
		c.style = b.Style
		c.flags = 0
		c.setWide(wide)
		if b.CurrentLink != nil {
			c.style.Hyperlink = b.CurrentLink
		}
		c.markDirty()
		if wide && int(col)+1 < int(b.size.Width) {
			spacer := &b.cells[row][col+1]
			spacer.style = b.Style
			spacer.setWideSpacer()
			spacer.markDirty()
		}
	}

	advance := units.ColIndex(1)
	if wide {
		advance = 2
	}
	newCol := b.cursor.Col + advance
	if int(newCol) >= int(b.size.Width) {
		if b.AutoWrap {
			b.wrapped[b.cursor.Row] = true
			b.cursor.Col = 0
			if int(b.cursor.Row)+1 < int(b.size.Height) {
				b.cursor.Row++
			}
		} else {
			b.cursor.Col = units.ColIndex(b.size.Width) - 1
		}
	} else {
		b.cursor.Col = newCol
	}
}

// CursorUp moves the cursor up n rows, clamped to row 0.
func (b *Buffer) CursorUp(n int) {
	b.cursor.Row = units.RowIndex(units.Clamp(int(b.cursor.Row)-n, 0, int(b.size.Height)-1))
}

// CursorDown moves the cursor down n rows, clamped to the last row.
func (b *Buffer) CursorDown(n int) {
	b.cursor.Row = units.RowIndex(units.Clamp(int(b.cursor.Row)+n, 0, int(b.size.Height)-1))
}

// CursorLeft moves the cursor left n columns, clamped to column 0.
func (b *Buffer) CursorLeft(n int) {
	b.cursor.Col = units.ColIndex(units.Clamp(int(b.cursor.Col)-n, 0, int(b.size.Width)-1))
}

// CursorRight moves the cursor right n columns, clamped to the last column.
func (b *Buffer) CursorRight(n int) {
	b.cursor.Col = units.ColIndex(units.Clamp(int(b.cursor.Col)+n, 0, int(b.size.Width)-1))
}

// CursorTo moves the cursor to an absolute (row, col), clamped to bounds. If
// OriginMode is set, row/col are relative to the scroll region's top row.
func (b *Buffer) CursorTo(row, col int) {
	if b.OriginMode {
		row += int(b.ScrollTop)
	}
	b.cursor.Row = units.RowIndex(units.Clamp(row, 0, int(b.size.Height)-1))
	b.cursor.Col = units.ColIndex(units.Clamp(col, 0, int(b.size.Width)-1))
}

// SetCursor forcibly sets the cursor position without clamping
// adjustments; keeping pos in bounds is the caller's job.
func (b *Buffer) SetCursor(pos units.Position) { b.cursor = pos }

func (b *Buffer) scrollBounds() (top, bottom int) {
	if b.HasScrollRegion {
		return int(b.ScrollTop), int(b.ScrollBottom) + 1
	}
	return 0, int(b.size.Height)
}

// ScrollUp scrolls the active scroll region up by n rows: rows are
// discarded at the top, shifted up, and n blank (Void) rows are appended at
// the bottom. Rows outside the region are untouched.
func (b *Buffer) ScrollUp(n int) {
	top, bottom := b.scrollBounds()
	b.scrollRegionUp(top, bottom, n)
}

// ScrollDown is the symmetric inverse of ScrollUp.
func (b *Buffer) ScrollDown(n int) {
	top, bottom := b.scrollBounds()
	b.scrollRegionDown(top, bottom, n)
}

func (b *Buffer) scrollRegionUp(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}
	for row := top; row < bottom-n; row++ {
		b.cells[row] = b.cells[row+n]
		b.wrapped[row] = b.wrapped[row+n]
		b.markRowDirty(row)
	}
	for row := bottom - n; row < bottom; row++ {
		b.cells[row] = blankRow(int(b.size.Width))
		b.wrapped[row] = false
		b.markRowDirty(row)
	}
}

func (b *Buffer) scrollRegionDown(top, bottom, n int) {
	if n <= 0 || top >= bottom {
		return
	}
	if n > bottom-top {
		n = bottom - top
	}
	for row := bottom - 1; row >= top+n; row-- {
		b.cells[row] = b.cells[row-n]
		b.wrapped[row] = b.wrapped[row-n]
		b.markRowDirty(row)
	}
	for row := top; row < top+n; row++ {
		b.cells[row] = blankRow(int(b.size.Width))
		b.wrapped[row] = false
		b.markRowDirty(row)
	}
}

func blankRow(cols int) []cell {
	row := make([]cell, cols)
	for i := range row {
		row[i] = newVoidCell()
	}
	return row
}

func (b *Buffer) markRowDirty(row int) {
	for c := range b.cells[row] {
		b.cells[row][c].markDirty()
	}
}

// InsertLines inserts n blank lines at row within [row, bottom), shifting
// existing lines down (equivalent to scrolling that sub-region down).
func (b *Buffer) InsertLines(row, n, bottom int) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.scrollRegionDown(row, bottom, n)
}

// DeleteLines removes n lines at row within [row, bottom), shifting
// remaining lines up.
func (b *Buffer) DeleteLines(row, n, bottom int) {
	if row < 0 || row >= bottom || n <= 0 {
		return
	}
	b.scrollRegionUp(row, bottom, n)
}

// InsertBlanks inserts n blank cells at (row, col), shifting the remainder
// of the row right; cells pushed past the right edge are dropped.
func (b *Buffer) InsertBlanks(row, col, n int) {
	if !b.rowColValid(row, col) || n <= 0 {
		return
	}
	cols := int(b.size.Width)
	for c := cols - 1; c >= col+n; c-- {
		b.cells[row][c] = b.cells[row][c-n]
		b.cells[row][c].markDirty()
	}
	for c := col; c < col+n && c < cols; c++ {
		b.cells[row][c].reset()
		b.cells[row][c].markDirty()
	}
}

// DeleteChars removes n characters at (row, col), shifting the remainder of
// the row left; blanks fill in at the end.
func (b *Buffer) DeleteChars(row, col, n int) {
	if !b.rowColValid(row, col) || n <= 0 {
		return
	}
	cols := int(b.size.Width)
	for c := col; c < cols-n; c++ {
		b.cells[row][c] = b.cells[row][c+n]
		b.cells[row][c].markDirty()
	}
	for c := cols - n; c < cols; c++ {
		if c >= 0 {
			b.cells[row][c].reset()
			b.cells[row][c].markDirty()
		}
	}
}

func (b *Buffer) rowColValid(row, col int) bool {
	return row >= 0 && row < int(b.size.Height) && col >= 0 && col < int(b.size.Width)
}

// ClearRow resets every cell in row to Void.
func (b *Buffer) ClearRow(row int) {
	if row < 0 || row >= int(b.size.Height) {
		return
	}
	b.ClearRowRange(row, 0, int(b.size.Width))
}

// ClearRowRange resets cells [startCol, endCol) in row to Void.
func (b *Buffer) ClearRowRange(row, startCol, endCol int) {
	if row < 0 || row >= int(b.size.Height) {
		return
	}
	startCol = units.Clamp(startCol, 0, int(b.size.Width))
	endCol = units.Clamp(endCol, 0, int(b.size.Width))
	for c := startCol; c < endCol; c++ {
		b.cells[row][c].reset()
		b.cells[row][c].markDirty()
	}
}

// ClearAll resets every cell in the buffer to Void.
func (b *Buffer) ClearAll() {
	for row := range b.cells {
		b.ClearRow(row)
	}
}

// IsWrapped reports whether row ended via line-wrap rather than an explicit
// newline.
func (b *Buffer) IsWrapped(row int) bool {
	if row < 0 || row >= int(b.size.Height) {
		return false
	}
	return b.wrapped[row]
}

// SetWrapped records whether row ended via line-wrap.
func (b *Buffer) SetWrapped(row int, wrapped bool) {
	if row < 0 || row >= int(b.size.Height) {
		return
	}
	b.wrapped[row] = wrapped
}

// SaveCursor records the cursor position, current style, and origin mode
// into the single DECSC/SCP slot.
func (b *Buffer) SaveCursor() {
	b.saved = &savedState{pos: b.cursor, style: b.Style, originMode: b.OriginMode}
}

// RestoreCursor restores the single DECSC/SCP slot, or resets to the origin
// if nothing was ever saved.
func (b *Buffer) RestoreCursor() {
	if b.saved == nil {
		b.cursor = units.Position{}
		return
	}
	b.cursor = b.saved.pos
	b.Style = b.saved.style
	b.OriginMode = b.saved.originMode
}

// SetScrollRegion sets the scroll margins (0-based, inclusive). Passing
// top==0 and bottom==Rows()-1 is equivalent to clearing the region, per
// spec.md 8's boundary behavior note.
func (b *Buffer) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= int(b.size.Height) {
		bottom = int(b.size.Height) - 1
	}
	if top >= bottom || (top == 0 && bottom == int(b.size.Height)-1) {
		b.ResetScrollRegion()
		return
	}
	b.HasScrollRegion = true
	b.ScrollTop = units.RowIndex(top)
	b.ScrollBottom = units.RowIndex(bottom)
}

// ResetScrollRegion clears any scroll margin, restoring the full buffer as
// the scroll region.
func (b *Buffer) ResetScrollRegion() {
	b.HasScrollRegion = false
	b.ScrollTop = 0
	b.ScrollBottom = units.RowIndex(b.size.Height) - 1
}

// QueueOSC appends an OSC event to the pending queue for a consumer to
// drain via DrainOSC.
func (b *Buffer) QueueOSC(kind OSCKind, payload string) {
	b.pending = append(b.pending, OSCEvent{Kind: kind, Payload: payload})
}

// DrainOSC returns and clears all pending OSC events.
func (b *Buffer) DrainOSC() []OSCEvent {
	events := b.pending
	b.pending = nil
	return events
}

// Resize changes buffer dimensions, preserving existing content anchored at
// the top-left corner; growing adds Void cells, shrinking drops
// bottom/right content. Scrollback reflow is explicitly out of scope
// (spec.md 1's Non-goals).
func (b *Buffer) Resize(size units.Size) {
	if size.Height <= 0 || size.Width <= 0 {
		return
	}
	newCells := make([][]cell, size.Height)
	for r := range newCells {
		row := make([]cell, size.Width)
		for c := range row {
			if int(r) < int(b.size.Height) && int(c) < int(b.size.Width) {
				row[c] = b.cells[r][c]
			} else {
				row[c] = newVoidCell()
			}
			row[c].markDirty()
		}
		newCells[r] = row
	}
	newWrapped := make([]bool, size.Height)
	copy(newWrapped, b.wrapped)

	newTabStop := make([]bool, size.Width)
	copy(newTabStop, b.tabStop)
	for c := len(b.tabStop); c < int(size.Width); c += 8 {
		newTabStop[c] = true
	}

	b.cells = newCells
	b.wrapped = newWrapped
	b.tabStop = newTabStop
	b.size = size
	if int(b.cursor.Row) >= int(size.Height) {
		b.cursor.Row = units.RowIndex(size.Height) - 1
	}
	if int(b.cursor.Col) > int(size.Width) {
		b.cursor.Col = units.ColIndex(size.Width)
	}
	if !b.HasScrollRegion {
		b.ScrollBottom = units.RowIndex(size.Height) - 1
	}
}

// NextTabStop returns the column of the next tab stop after col, or the
// last column if none is set.
func (b *Buffer) NextTabStop(col int) int {
	for c := col + 1; c < int(b.size.Width); c++ {
		if b.tabStop[c] {
			return c
		}
	}
	return int(b.size.Width) - 1
}

// DiffChunk is one cell that differs between two offscreen buffers.
type DiffChunk struct {
	Pos  units.Position
	Char pixel.PixelChar
}

// Diff compares b against other cell-wise, row-major, and returns every
// position whose PixelChar differs, carrying other's (the new) content —
// b.Diff(other) answers "what must be painted to turn b's frame into
// other's frame." Buffers of mismatched size compare only their
// overlapping region.
func (b *Buffer) Diff(other *Buffer) []DiffChunk {
	rows := min(int(b.size.Height), int(other.size.Height))
	cols := min(int(b.size.Width), int(other.size.Width))
	var chunks []DiffChunk
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			a := b.cells[r][c].toPixelChar()
			o := other.cells[r][c].toPixelChar()
			if !pixel.Equal(a, o) {
				chunks = append(chunks, DiffChunk{Pos: units.Position{Row: units.RowIndex(r), Col: units.ColIndex(c)}, Char: o})
			}
		}
	}
	return chunks
}

// DirtyCells returns the positions of every cell marked dirty since the
// last ClearDirty call.
func (b *Buffer) DirtyCells() []units.Position {
	var positions []units.Position
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c].isDirty() {
				positions = append(positions, units.Position{Row: units.RowIndex(r), Col: units.ColIndex(c)})
			}
		}
	}
	return positions
}

// ClearDirty resets the dirty flag on every cell.
func (b *Buffer) ClearDirty() {
	for r := range b.cells {
		for c := range b.cells[r] {
			b.cells[r][c].clearDirty()
		}
	}
}
