// Package vtinput implements the VT100/ANSI input parser: raw bytes from
// stdin/a PTY are turned into protocol-level input events (keyboard, mouse,
// focus, paste), with zero-latency ESC detection. spec.md 4.3.
package vtinput

// KeyState is a modifier's pressed/released state.
type KeyState int

const (
	Released KeyState = iota
	Pressed
)

// Modifiers is the set of keyboard modifiers attached to an input event.
type Modifiers struct {
	Ctrl  KeyState
	Shift KeyState
	Alt   KeyState
	Super KeyState
}

// None is the zero modifier set (nothing pressed).
var None = Modifiers{}

// KeyCode is the tagged variant of keyboard keys. spec.md 3.
type KeyCode interface{ isKeyCode() }

type (
	CharKey      rune
	EscapeKey    struct{}
	UpKey        struct{}
	DownKey      struct{}
	LeftKey      struct{}
	RightKey     struct{}
	HomeKey      struct{}
	EndKey       struct{}
	PageUpKey    struct{}
	PageDownKey  struct{}
	InsertKey    struct{}
	DeleteKey    struct{}
	BackspaceKey struct{}
	TabKey       struct{}
	EnterKey     struct{}
	FunctionKey  int
)

func (CharKey) isKeyCode()      {}
func (EscapeKey) isKeyCode()    {}
func (UpKey) isKeyCode()        {}
func (DownKey) isKeyCode()      {}
func (LeftKey) isKeyCode()      {}
func (RightKey) isKeyCode()     {}
func (HomeKey) isKeyCode()      {}
func (EndKey) isKeyCode()       {}
func (PageUpKey) isKeyCode()    {}
func (PageDownKey) isKeyCode() {}
func (InsertKey) isKeyCode()    {}
func (DeleteKey) isKeyCode()    {}
func (BackspaceKey) isKeyCode() {}
func (TabKey) isKeyCode()       {}
func (EnterKey) isKeyCode()     {}
func (FunctionKey) isKeyCode()  {}

// MouseButton identifies which button (or wheel direction) a mouse event
// refers to.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseNone
)

// MouseAction is the kind of mouse activity reported.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseDrag
	MouseMove
	MouseScrollUp
	MouseScrollDown
)

// InputEvent is the tagged variant returned by TryParse. spec.md 3.
type InputEvent interface{ isInputEvent() }

// Keyboard is a key press/release event.
type Keyboard struct {
	Code KeyCode
	Mods Modifiers
}

func (Keyboard) isInputEvent() {}

// Mouse is a pointer event reported via the SGR mouse protocol.
type Mouse struct {
	Button MouseButton
	Row    int
	Col    int
	Action MouseAction
	Mods   Modifiers
}

func (Mouse) isInputEvent() {}

// Focus reports a terminal focus-gained/focus-lost event.
type Focus struct{ Gained bool }

func (Focus) isInputEvent() {}

// Paste reports bracketed-paste start/end markers.
type Paste struct{ Start bool }

func (Paste) isInputEvent() {}
