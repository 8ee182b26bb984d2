package vtemu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielgatis/go-ansicode"

	"github.com/nullterm/tuiengine/gstring"
	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/screen"
	"github.com/nullterm/tuiengine/units"
)

// Emulator applies an ANSI byte stream to a screen.Buffer. It owns the
// go-ansicode parser instance and the full set of persistent state the
// parser expects to survive across separate Write calls (current SGR
// style, DECAWM, active charset, scroll margins, the shared DECSC/SCP
// slot). SGR style, DECAWM, scroll margins and the save slot live inside
// the buffer's ParserSupport; the G0-G3 charset designations and the
// active slot are kept in the Emulator's own charsets/activeCharset
// fields, and ParserSupport's Charsets/ActiveCharset fields are not used.
type Emulator struct {
	mu     sync.Mutex
	buf    *screen.Buffer
	parser *ansicode.Parser

	charsets      [4]screen.Charset
	activeCharset screen.CharsetSlot
	keypadAppMode bool
	altScreen     bool
	altBuffer     *screen.Buffer
	showCursor    bool
	mouseMode     MouseMode
	bracketPaste  bool
	focusReports  bool
	cursorStyle   int
	keyboardMode  int
	modifyOtherKeys int

	middleware *Middleware
	providers  Providers
	logger     *slog.Logger
}

// MouseMode tracks which mouse-reporting protocol (if any) the host has
// requested via SM/RM.
type MouseMode int

const (
	MouseModeNone MouseMode = iota
	MouseModeX10
	MouseModeButtonEvent
	MouseModeSGR
)

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithProviders installs the response/bell/title/clipboard provider set.
func WithProviders(p Providers) Option {
	return func(e *Emulator) { e.providers = p }
}

// WithMiddleware installs the Middleware's Input interception hook.
func WithMiddleware(m *Middleware) Option {
	return func(e *Emulator) { e.middleware = m }
}

// WithLogger overrides the Emulator's default logger. No Emulator method
// writes to it; parse errors are silently recovered per spec.md 7.
func WithLogger(l *slog.Logger) Option {
	return func(e *Emulator) { e.logger = l }
}

// New creates an Emulator over a freshly allocated rows x cols buffer.
func New(rows, cols int, opts ...Option) *Emulator {
	e := &Emulator{
		buf:        screen.NewEmpty(units.Size{Height: units.RowHeight(rows), Width: units.ColWidth(cols)}),
		showCursor: true,
		providers:  NewNoopProviders(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.parser = ansicode.NewParser(e)
	return e
}

// Buffer returns the active offscreen buffer (the primary buffer, or the
// alternate screen buffer when DECSET 1049 is active).
func (e *Emulator) Buffer() *screen.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf
}

// Write feeds raw bytes (typically PTY output) through the ANSI parser,
// mutating the active buffer. Never returns a parse error: malformed
// sequences are silently absorbed, per spec.md 7.
func (e *Emulator) Write(p []byte) (int, error) {
	e.parser.Advance(p)
	return len(p), nil
}

// Resize changes the emulator's dimensions, resizing the active buffer and,
// if one has been allocated, the inactive primary/alternate buffer too.
func (e *Emulator) Resize(rows, cols int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	size := units.Size{Height: units.RowHeight(rows), Width: units.ColWidth(cols)}
	e.buf.Resize(size)
	if e.altBuffer != nil {
		e.altBuffer.Resize(size)
	}
}

// runeWidth resolves a character's display width via gstring's uniwidth
// binding. It applies no charset translation; translateCharset does that.
func (e *Emulator) runeWidth(r rune) int {
	return gstring.RuneWidth(r)
}

func (e *Emulator) translateCharset(r rune) rune {
	if e.activeCharset < 0 || int(e.activeCharset) >= 4 {
		return r
	}
	if e.charsets[e.activeCharset] != screen.CharsetLineDrawing {
		return r
	}
	return translateLineDrawing(r)
}

func translateLineDrawing(r rune) rune {
	switch r {
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'q':
		return '─'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	default:
		return r
	}
}

// swapScreen toggles between the primary and alternate buffers (DECSET/RST
// 1049), allocating the alternate buffer on first use.
func (e *Emulator) swapScreen(enable bool) {
	if enable == e.altScreen {
		return
	}
	size := e.buf.Size()
	if enable {
		if e.altBuffer == nil {
			e.altBuffer = screen.NewEmpty(size)
		}
		e.altBuffer.ClearAll()
		e.buf, e.altBuffer = e.altBuffer, e.buf
		e.altScreen = true
	} else {
		e.buf, e.altBuffer = e.altBuffer, e.buf
		e.altScreen = false
	}
}

func (e *Emulator) warnf(format string, args ...any) {
	e.logger.Warn(fmt.Sprintf(format, args...))
}
