package vtemu

import (
	"strconv"
	"strings"

	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/screen"
)

// The methods below implement go-ansicode's Handler contract: the parser
// tokenizes CSI/ESC/OSC/DCS framing itself and calls back into these
// semantically-named methods (one per VT100 operation) rather than handing
// Emulator a generic csi_dispatch(params, final). Every method takes the
// buffer lock, since Write can be called concurrently with a reader
// draining the buffer for compositing.

// Input writes a printable character at the cursor. spec.md 4.2's printing
// algorithm: translate through the active charset, measure width, write,
// advance, wrap per DECAWM.
func (e *Emulator) Input(r rune) {
	if e.middleware != nil && e.middleware.Input != nil {
		e.middleware.Input(r, e.inputLocked)
		return
	}
	e.inputLocked(r)
}

func (e *Emulator) inputLocked(r rune) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r = e.translateCharset(r)
	w := e.runeWidth(r)
	if w == 0 {
		return // zero-width combining marks: not yet attached to the previous cell
	}
	e.buf.PrintChar(r, w == 2)
}

// LineFeed moves the cursor down one row, scrolling the active region if
// already at its bottom. The cursor column is left unchanged.
func (e *Emulator) LineFeed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.SetWrapped(int(cur.Row), false)
	bottom := e.scrollBottomRow()
	if int(cur.Row) >= bottom {
		e.buf.ScrollUp(1)
	} else {
		e.buf.CursorDown(1)
	}
}

// CarriageReturn moves the cursor to column 0.
func (e *Emulator) CarriageReturn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.CursorTo(int(cur.Row), 0)
}

// Backspace moves the cursor left one column, stopping at column 0.
func (e *Emulator) Backspace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorLeft(1)
}

// Tab advances the cursor to the next tab stop.
func (e *Emulator) Tab() {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.CursorTo(int(cur.Row), e.buf.NextTabStop(int(cur.Col)))
}

// Bell is a no-op unless a BellProvider is installed.
func (e *Emulator) Bell() {
	e.providers.Bell.Bell()
}

func (e *Emulator) scrollBottomRow() int {
	if e.buf.HasScrollRegion {
		return int(e.buf.ScrollBottom)
	}
	return e.buf.Rows() - 1
}

func (e *Emulator) scrollTopRow() int {
	if e.buf.HasScrollRegion {
		return int(e.buf.ScrollTop)
	}
	return 0
}

// --- Cursor movement (CSI A/B/C/D/E/F/G/H/f) ---

func defaultParam(params []int, idx, def int) int {
	if idx >= len(params) || params[idx] <= 0 {
		return def
	}
	return params[idx]
}

// MoveUp implements CUU: cursor up N (default 1; an explicit 0 also means 1).
func (e *Emulator) MoveUp(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorUp(orOne(n))
}

// MoveDown implements CUD.
func (e *Emulator) MoveDown(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorDown(orOne(n))
}

// MoveForward implements CUF.
func (e *Emulator) MoveForward(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorRight(orOne(n))
}

// MoveBackward implements CUB.
func (e *Emulator) MoveBackward(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorLeft(orOne(n))
}

// MoveDownAndCR implements CNL (final E): down N rows, column 0.
func (e *Emulator) MoveDownAndCR(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorDown(orOne(n))
	cur := e.buf.Cursor()
	e.buf.CursorTo(int(cur.Row), 0)
}

// MoveUpAndCR implements CPL (final F): up N rows, column 0.
func (e *Emulator) MoveUpAndCR(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorUp(orOne(n))
	cur := e.buf.Cursor()
	e.buf.CursorTo(int(cur.Row), 0)
}

// MoveToColumn implements CHA (final G): cursor to column N (1-based).
func (e *Emulator) MoveToColumn(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.CursorTo(int(cur.Row), orOne(n)-1)
}

// MoveToPosition implements CUP/HVP (finals H/f): cursor to (row, col),
// both 1-based.
func (e *Emulator) MoveToPosition(row, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.CursorTo(orOne(row)-1, orOne(col)-1)
}

func orOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// --- Scrolling (CSI S/T) and margins (CSI r) ---

// ScrollUp implements SU: scroll the active region up by N.
func (e *Emulator) ScrollUp(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.ScrollUp(orOne(n))
}

// ScrollDown implements SD: scroll the active region down by N.
func (e *Emulator) ScrollDown(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.ScrollDown(orOne(n))
}

// SetScrollingRegion implements DECSTBM. No params resets the region to the
// full buffer. Origin-mode-aware: when DECOM is set, the cursor resets to
// the new region's top-left.
func (e *Emulator) SetScrollingRegion(top, bottom int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if top <= 0 && bottom <= 0 {
		e.buf.ResetScrollRegion()
	} else {
		e.buf.SetScrollRegion(orOne(top)-1, bottom-1)
	}
	e.buf.CursorTo(0, 0)
}

// InsertBlank implements ICH: insert N blank cells at the cursor.
func (e *Emulator) InsertBlank(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.InsertBlanks(int(cur.Row), int(cur.Col), orOne(n))
}

// DeleteChars implements DCH: delete N characters at the cursor.
func (e *Emulator) DeleteChars(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	e.buf.DeleteChars(int(cur.Row), int(cur.Col), orOne(n))
}

// InsertBlankLines implements IL: insert N blank lines at the cursor within
// the scroll region.
func (e *Emulator) InsertBlankLines(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	top, bottom := e.scrollTopRow(), e.scrollBottomRow()+1
	if int(cur.Row) >= top && int(cur.Row) < bottom {
		e.buf.InsertLines(int(cur.Row), orOne(n), bottom)
	}
}

// DeleteLines implements DL: delete N lines at the cursor within the scroll
// region.
func (e *Emulator) DeleteLines(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	top, bottom := e.scrollTopRow(), e.scrollBottomRow()+1
	if int(cur.Row) >= top && int(cur.Row) < bottom {
		e.buf.DeleteLines(int(cur.Row), orOne(n), bottom)
	}
}

// --- Erase (CSI J/K) ---

// EraseInDisplay implements ED: mode 0 erases cursor-to-end, 1 erases
// start-to-cursor, 2/3 erase the whole screen.
func (e *Emulator) EraseInDisplay(mode int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	switch mode {
	case 0:
		e.buf.ClearRowRange(int(cur.Row), int(cur.Col), e.buf.Cols())
		for r := int(cur.Row) + 1; r < e.buf.Rows(); r++ {
			e.buf.ClearRow(r)
		}
	case 1:
		e.buf.ClearRowRange(int(cur.Row), 0, int(cur.Col)+1)
		for r := 0; r < int(cur.Row); r++ {
			e.buf.ClearRow(r)
		}
	case 2, 3:
		e.buf.ClearAll()
	}
}

// EraseInLine implements EL.
func (e *Emulator) EraseInLine(mode int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	switch mode {
	case 0:
		e.buf.ClearRowRange(int(cur.Row), int(cur.Col), e.buf.Cols())
	case 1:
		e.buf.ClearRowRange(int(cur.Row), 0, int(cur.Col)+1)
	case 2:
		e.buf.ClearRow(int(cur.Row))
	}
}

// --- DSR (CSI n) ---

// DeviceStatusReport implements DSR. mode 6 (cursor position report) is
// answered via the ResponseProvider; other modes are ignored.
func (e *Emulator) DeviceStatusReport(mode int) {
	e.mu.Lock()
	cur := e.buf.Cursor()
	e.mu.Unlock()
	if mode == 6 {
		e.providers.Response.Respond("\x1b[" + strconv.Itoa(int(cur.Row)+1) + ";" + strconv.Itoa(int(cur.Col)+1) + "R")
	}
}

// --- Mode set/reset (CSI h/l) ---

const (
	modeDECAWM        = 7
	modeShowCursor    = 25
	modeMouseX10      = 9
	modeMouseBtnEvent = 1002
	modeMouseSGR      = 1006
	modeAltScreen     = 1049
	modeBracketPaste  = 2004
	modeFocusReport   = 1004
	modeOriginMode    = 6
)

// SetMode implements SM/RM with set=true; private (DEC) modes are indicated
// by the caller resolving the "?" intermediate into the same numeric space
// as spec.md 4.4's table (7=DECAWM, 25=cursor visibility, 1000/1002/1006=
// mouse, 1049=alt screen, 2004=bracketed paste, 1004=focus reports).
func (e *Emulator) SetMode(mode int) { e.setModeLocked(mode, true) }

// UnsetMode implements SM/RM with set=false.
func (e *Emulator) UnsetMode(mode int) { e.setModeLocked(mode, false) }

func (e *Emulator) setModeLocked(mode int, set bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch mode {
	case modeDECAWM:
		e.buf.AutoWrap = set
	case modeShowCursor:
		e.showCursor = set
	case modeOriginMode:
		e.buf.OriginMode = set
		e.buf.CursorTo(0, 0)
	case 1000, modeMouseX10:
		if set {
			e.mouseMode = MouseModeX10
		} else if e.mouseMode == MouseModeX10 {
			e.mouseMode = MouseModeNone
		}
	case modeMouseBtnEvent:
		if set {
			e.mouseMode = MouseModeButtonEvent
		} else if e.mouseMode == MouseModeButtonEvent {
			e.mouseMode = MouseModeNone
		}
	case modeMouseSGR:
		if set {
			e.mouseMode = MouseModeSGR
		}
	case modeAltScreen:
		e.swapScreen(set)
	case modeBracketPaste:
		e.bracketPaste = set
	case modeFocusReport:
		e.focusReports = set
	}
}

// --- SGR (CSI m) ---

// SetTerminalCharAttribute implements SGR: applies one or more attribute
// groups already split into subparameter groups by go-ansicode (each group
// is the slice between ';'-or-':'-delimited boundaries that together form
// one attribute, e.g. {38,2,255,128,0}).
func (e *Emulator) SetTerminalCharAttribute(groups [][]int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(groups) == 0 {
		e.buf.Style = pixel.Style{}
		return
	}
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		e.applyAttr(g)
	}
}

func (e *Emulator) applyAttr(g []int) {
	s := &e.buf.Style
	switch g[0] {
	case 0:
		*s = pixel.Style{}
	case 1:
		s.Attrs |= pixel.AttrBold
	case 2:
		s.Attrs |= pixel.AttrDim
	case 3:
		s.Attrs |= pixel.AttrItalic
	case 4:
		s.Attrs |= pixel.AttrUnderline
	case 5, 6:
		s.Attrs |= pixel.AttrBlink
	case 7:
		s.Attrs |= pixel.AttrReverse
	case 8:
		s.Attrs |= pixel.AttrHidden
	case 9:
		s.Attrs |= pixel.AttrStrikethrough
	case 22:
		s.Attrs &^= pixel.AttrBold | pixel.AttrDim
	case 23:
		s.Attrs &^= pixel.AttrItalic
	case 24:
		s.Attrs &^= pixel.AttrUnderline | pixel.AttrDoubleUnderline | pixel.AttrCurlyUnderline
	case 25:
		s.Attrs &^= pixel.AttrBlink
	case 27:
		s.Attrs &^= pixel.AttrReverse
	case 28:
		s.Attrs &^= pixel.AttrHidden
	case 29:
		s.Attrs &^= pixel.AttrStrikethrough
	case 39:
		s.Fg = nil
	case 49:
		s.Bg = nil
	default:
		if c, ok := resolveBasicOrBright(g[0]); ok {
			if g[0] < 90 {
				if g[0] >= 40 {
					s.Bg = c
				} else {
					s.Fg = c
				}
			} else {
				if g[0] >= 100 {
					s.Bg = c
				} else {
					s.Fg = c
				}
			}
			return
		}
		if g[0] == 38 || g[0] == 48 {
			c, ok := resolveExtendedColor(g)
			if !ok {
				return
			}
			if g[0] == 38 {
				s.Fg = c
			} else {
				s.Bg = c
			}
		}
	}
}

func resolveBasicOrBright(n int) (pixel.Color, bool) {
	switch {
	case n >= 30 && n <= 37:
		return pixel.Basic{Index: uint8(n - 30)}, true
	case n >= 40 && n <= 47:
		return pixel.Basic{Index: uint8(n - 40)}, true
	case n >= 90 && n <= 97:
		return pixel.Basic{Index: uint8(n-90) + 8}, true
	case n >= 100 && n <= 107:
		return pixel.Basic{Index: uint8(n-100) + 8}, true
	default:
		return nil, false
	}
}

// resolveExtendedColor handles 38/48 : 5 : n (indexed) and 38/48 : 2 : r :
// g : b (RGB). Both ':' and ';' separators are accepted upstream; by the
// time groups reach here they are already normalized into one subparameter
// slice per ISO 8613-6.
func resolveExtendedColor(g []int) (pixel.Color, bool) {
	if len(g) < 2 {
		return nil, false
	}
	switch g[1] {
	case 5:
		if len(g) < 3 {
			return nil, false
		}
		return pixel.Indexed{Index: uint8(g[2])}, true
	case 2:
		if len(g) < 5 {
			return nil, false
		}
		return pixel.RGB{R: uint8(g[2]), G: uint8(g[3]), B: uint8(g[4])}, true
	default:
		return nil, false
	}
}

// --- ESC dispatch ---

// SaveCursorPosition implements DECSC (ESC 7) and SCP (CSI s): both share
// the single slot in screen.Buffer (DESIGN.md's resolved Open Question 1).
func (e *Emulator) SaveCursorPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SaveCursor()
}

// RestoreCursorPosition implements DECRC (ESC 8) and RCP (CSI u).
func (e *Emulator) RestoreCursorPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.RestoreCursor()
}

// Index implements IND (ESC D): cursor down one row, scrolling at the
// region boundary.
func (e *Emulator) Index() { e.LineFeed() }

// ReverseIndex implements RI (ESC M): cursor up one row, scrolling down at
// the region's top boundary.
func (e *Emulator) ReverseIndex() {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.buf.Cursor()
	top := e.scrollTopRow()
	if int(cur.Row) <= top {
		e.buf.ScrollDown(1)
	} else {
		e.buf.CursorUp(1)
	}
}

// ResetState implements RIS (ESC c): full terminal reset.
func (e *Emulator) ResetState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	size := e.buf.Size()
	e.buf = screen.NewEmpty(size)
	e.altBuffer = nil
	e.altScreen = false
	e.showCursor = true
	e.mouseMode = MouseModeNone
	e.charsets = [4]screen.Charset{}
	e.activeCharset = screen.G0
}

// SetActiveCharset implements the G0 charset-select escapes ( B / ( 0.
func (e *Emulator) SetActiveCharset(slot screen.CharsetSlot, cs screen.Charset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if slot >= 0 && int(slot) < len(e.charsets) {
		e.charsets[slot] = cs
	}
}

// Substitute implements SUB: replaces the character under the cursor with
// a replacement glyph, as most terminals do for the C0 SUB control.
func (e *Emulator) Substitute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.PrintChar('�', false)
}

// --- OSC dispatch ---

// SetTitle implements OSC 0/1/2: queues a title-change event for a
// consumer to drain.
func (e *Emulator) SetTitle(title string) {
	e.mu.Lock()
	e.buf.QueueOSC(screen.OSCTitle, title)
	e.mu.Unlock()
	e.providers.Title.SetTitle(title)
}

// SetHyperlink implements OSC 8: the URI is stored and attached to every
// subsequently printed character until cleared with an empty URI. Per
// DESIGN.md's Open Questions / spec.md 9's open question, this implementation chooses
// to decorate forward rather than ignore.
func (e *Emulator) SetHyperlink(id, uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if uri == "" {
		e.buf.CurrentLink = nil
		return
	}
	e.buf.CurrentLink = &pixel.Hyperlink{ID: id, URI: uri}
	e.buf.QueueOSC(screen.OSCHyperlink, uri)
}

// SetWorkingDirectory implements OSC 7: a file:// URI reporting the shell's
// current directory.
func (e *Emulator) SetWorkingDirectory(uri string) {
	e.mu.Lock()
	e.buf.QueueOSC(screen.OSCWorkingDirectory, uri)
	e.mu.Unlock()
}

// WorkingDirectoryPath extracts the filesystem path from an OSC 7 URI
// (stripping the "file://host" prefix).
func WorkingDirectoryPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	rest := uri[len(prefix):]
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[idx:]
	}
	return rest
}

// BuildProgress implements OSC 9;4: a build/task progress report.
func (e *Emulator) BuildProgress(state string, percent int) {
	e.mu.Lock()
	e.buf.QueueOSC(screen.OSCBuildProgress, state+":"+strconv.Itoa(percent))
	e.mu.Unlock()
}

// SetColor implements OSC 4 (palette color set) and related dynamic-color
// OSCs (10/11/12 foreground/background/cursor go through SetDynamicColor).
// Indices outside 0-255 are ignored.
func (e *Emulator) SetColor(index int, color pixel.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index >= 0 && index < 256 {
		pixel.DefaultPalette[index] = pixel.Resolve(color, true)
	}
}

// SetDynamicColor implements OSC 10/11/12: set the default foreground,
// background, or cursor color. Any other slot is ignored.
func (e *Emulator) SetDynamicColor(slot int, color pixel.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rgba := pixel.Resolve(color, slot == 10)
	switch slot {
	case 10:
		pixel.DefaultForeground = rgba
	case 11:
		pixel.DefaultBackground = rgba
	case 12:
		pixel.DefaultCursorColor = rgba
	}
}

// --- DCS / keyboard-protocol negotiation stubs ---

// StartOfStringReceived implements DCS entry: the sequence is consumed but
// produces no state mutation, per spec.md 4.4.
func (e *Emulator) StartOfStringReceived() {}

// SetCursorStyle records the requested cursor rendering style (DECSCUSR).
func (e *Emulator) SetCursorStyle(style int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursorStyle = style
}

// SetKeyboardMode records the negotiated keyboard protocol (CSI > ... u)
// in an unexported field; no method exposes it and this emulator does not
// interpret it further.
func (e *Emulator) SetKeyboardMode(mode int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyboardMode = mode
}

// SetModifyOtherKeys records the xterm modifyOtherKeys negotiation level.
func (e *Emulator) SetModifyOtherKeys(level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modifyOtherKeys = level
}

// SetKeypadApplicationMode implements DECKPAM.
func (e *Emulator) SetKeypadApplicationMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keypadAppMode = true
}

// UnsetKeypadApplicationMode implements DECKPNM.
func (e *Emulator) UnsetKeypadApplicationMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keypadAppMode = false
}

// TextAreaSizeChars answers a DSR text-area-size-in-characters query.
func (e *Emulator) TextAreaSizeChars() (rows, cols int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Rows(), e.buf.Cols()
}
