package vtemu

import (
	"testing"

	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/units"
)

func plainAt(t *testing.T, e *Emulator, row, col int) pixel.PlainText {
	t.Helper()
	pc, ok := e.Buffer().GetChar(units.Position{Row: units.RowIndex(row), Col: units.ColIndex(col)})
	if !ok {
		t.Fatalf("position (%d,%d) out of bounds", row, col)
	}
	pt, ok := pc.(pixel.PlainText)
	if !ok {
		t.Fatalf("position (%d,%d) = %#v, want PlainText", row, col, pc)
	}
	return pt
}

func TestPrintableTextAdvancesCursor(t *testing.T) {
	e := New(5, 10)
	e.Write([]byte("hi"))
	cur := e.Buffer().Cursor()
	if cur != (units.Position{Row: 0, Col: 2}) {
		t.Fatalf("cursor = %+v, want (0,2)", cur)
	}
	if plainAt(t, e, 0, 0).Char != 'h' || plainAt(t, e, 0, 1).Char != 'i' {
		t.Fatalf("row 0 not written correctly")
	}
}

// spec.md 8, scenario 4: SGR truecolor round-trip.
func TestSGRTrueColorRoundTrip(t *testing.T) {
	e := New(5, 10)
	e.Write([]byte("\x1b[38:2:255:128:0mX"))
	pt := plainAt(t, e, 0, 0)
	if pt.Char != 'X' {
		t.Fatalf("char = %q, want X", pt.Char)
	}
	rgb, ok := pt.Style.Fg.(pixel.RGB)
	if !ok {
		t.Fatalf("fg = %#v, want pixel.RGB", pt.Style.Fg)
	}
	if rgb.R != 255 || rgb.G != 128 || rgb.B != 0 {
		t.Errorf("fg = %+v, want {255 128 0}", rgb)
	}
}

func TestSGRIndexedColor(t *testing.T) {
	e := New(5, 10)
	e.Write([]byte("\x1b[48:5:196mY"))
	pt := plainAt(t, e, 0, 0)
	idx, ok := pt.Style.Bg.(pixel.Indexed)
	if !ok {
		t.Fatalf("bg = %#v, want pixel.Indexed", pt.Style.Bg)
	}
	if idx.Index != 196 {
		t.Errorf("bg index = %d, want 196", idx.Index)
	}
}

func TestSGRResetClearsStyle(t *testing.T) {
	e := New(5, 10)
	e.Write([]byte("\x1b[1;31mA\x1b[0mB"))
	a := plainAt(t, e, 0, 0)
	if !a.Style.Attrs.Has(pixel.AttrBold) {
		t.Error("first char should be bold")
	}
	b := plainAt(t, e, 0, 1)
	if b.Style.Attrs != 0 || b.Style.Fg != nil {
		t.Errorf("style should be reset after SGR 0, got %+v", b.Style)
	}
}

func TestCursorMovementStaysInBounds(t *testing.T) {
	e := New(5, 5)
	e.Write([]byte("\x1b[100;100H"))
	cur := e.Buffer().Cursor()
	if int(cur.Row) != 4 || int(cur.Col) != 4 {
		t.Errorf("cursor = %+v, want clamped to (4,4)", cur)
	}
}

func TestLineFeedScrollsAtBottom(t *testing.T) {
	e := New(3, 5)
	e.Write([]byte("a\r\nb\r\nc"))
	e.Write([]byte("\n")) // one more LF at the bottom row scrolls
	pt := plainAt(t, e, 1, 0)
	if pt.Char != 'c' {
		t.Fatalf("row 1 col 0 = %q, want 'c' after scroll", pt.Char)
	}
}

func TestEraseInLineModes(t *testing.T) {
	e := New(1, 5)
	e.Write([]byte("abcde"))
	e.Write([]byte("\x1b[3G"))  // column 3 (1-based) = col index 2
	e.Write([]byte("\x1b[0K")) // erase cursor-to-end
	if _, ok := e.Buffer().GetChar(units.Position{Row: 0, Col: 2}); !ok {
		t.Fatal("position out of bounds")
	}
	pc, _ := e.Buffer().GetChar(units.Position{Row: 0, Col: 2})
	if _, ok := pc.(pixel.Void); !ok {
		t.Errorf("col 2 should be Void after erase, got %#v", pc)
	}
	pc, _ = e.Buffer().GetChar(units.Position{Row: 0, Col: 0})
	if pt, ok := pc.(pixel.PlainText); !ok || pt.Char != 'a' {
		t.Errorf("col 0 should be untouched 'a', got %#v", pc)
	}
}

func TestAltScreenSwapIsolatesContent(t *testing.T) {
	e := New(3, 5)
	e.Write([]byte("main"))
	e.Write([]byte("\x1b[?1049h")) // enter alt screen
	e.Write([]byte("alt"))
	if plainAt(t, e, 0, 0).Char != 'a' {
		t.Fatalf("alt screen should start blank and show new content")
	}
	e.Write([]byte("\x1b[?1049l")) // leave alt screen
	if plainAt(t, e, 0, 0).Char != 'm' {
		t.Errorf("primary screen content should be restored, got %q", plainAt(t, e, 0, 0).Char)
	}
}

func TestResetStateClearsEverything(t *testing.T) {
	e := New(3, 5)
	e.Write([]byte("\x1b[1mABC"))
	e.Write([]byte("\x1bc")) // RIS
	if plainAt := e.Buffer().Cursor(); plainAt != (units.Position{}) {
		t.Errorf("cursor should reset to origin, got %+v", plainAt)
	}
	pc, _ := e.Buffer().GetChar(units.Position{Row: 0, Col: 0})
	if _, ok := pc.(pixel.Void); !ok {
		t.Errorf("buffer should be cleared after RIS, got %#v", pc)
	}
}

func TestDeviceStatusReportInvokesResponseProvider(t *testing.T) {
	var got string
	e := New(5, 5, WithProviders(Providers{
		Response:  responseFunc(func(s string) { got = s }),
		Bell:      NewNoopProviders().Bell,
		Title:     NewNoopProviders().Title,
		Clipboard: NewNoopProviders().Clipboard,
	}))
	e.Write([]byte("\x1b[3;4H")) // move to row 3, col 4 (1-based)
	e.Write([]byte("\x1b[6n"))   // DSR cursor position report
	if got != "\x1b[3;4R" {
		t.Errorf("response = %q, want %q", got, "\x1b[3;4R")
	}
}

type responseFunc func(string)

func (f responseFunc) Respond(s string) { f(s) }

func TestSetHyperlinkAttachesAndClears(t *testing.T) {
	e := New(1, 10)
	e.Write([]byte("\x1b]8;;http://example.com\x07link\x1b]8;;\x07plain"))
	link := plainAt(t, e, 0, 0)
	if link.Style.Hyperlink == nil || link.Style.Hyperlink.URI != "http://example.com" {
		t.Fatalf("linked char missing hyperlink: %+v", link.Style.Hyperlink)
	}
	unlinked := plainAt(t, e, 0, 4)
	if unlinked.Style.Hyperlink != nil {
		t.Errorf("char after empty OSC 8 should have no hyperlink, got %+v", unlinked.Style.Hyperlink)
	}
}

func TestWorkingDirectoryPathStripsHostPrefix(t *testing.T) {
	got := WorkingDirectoryPath("file://myhost/home/user/project")
	if got != "/home/user/project" {
		t.Errorf("got %q, want /home/user/project", got)
	}
}

func TestMiddlewareInputHookCanVetoInput(t *testing.T) {
	var seen []rune
	e := New(1, 10, WithMiddleware(&Middleware{
		Input: func(r rune, next func(rune)) {
			if r == 'x' {
				return // drop this character entirely
			}
			seen = append(seen, r)
			next(r)
		},
	}))
	e.Write([]byte("axbxc"))
	if string(seen) != "abc" {
		t.Fatalf("seen = %q, want \"abc\"", string(seen))
	}
	if plainAt(t, e, 0, 0).Char != 'a' || plainAt(t, e, 0, 1).Char != 'b' || plainAt(t, e, 0, 2).Char != 'c' {
		t.Error("dropped 'x' should not occupy a cell")
	}
}
