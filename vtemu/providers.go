package vtemu

// Providers bundles the host-supplied callbacks an Emulator invokes for
// side effects that don't belong inside the offscreen buffer itself:
// answering device-status queries, ringing the bell, surfacing a title
// change, and placing text on the system clipboard. Each defaults to a
// no-op so an Emulator can be constructed without wiring any of them.
type Providers struct {
	Response  ResponseProvider
	Bell      BellProvider
	Title     TitleProvider
	Clipboard ClipboardProvider
}

// ResponseProvider receives bytes that must be written back to the PTY
// master (this emulator sends DSR 6 cursor-position reports through it).
// Without one, queries are answered into the void.
type ResponseProvider interface {
	Respond(s string)
}

// BellProvider is notified on BEL (0x07).
type BellProvider interface {
	Bell()
}

// TitleProvider is notified on OSC 0/1/2 title changes.
type TitleProvider interface {
	SetTitle(title string)
}

// ClipboardProvider is the OSC 52 clipboard get/set hook; no handler
// method in this package calls it.
type ClipboardProvider interface {
	SetClipboard(selection, data string)
	GetClipboard(selection string) (string, bool)
}

// NewNoopProviders returns a Providers whose members discard everything.
func NewNoopProviders() Providers {
	return Providers{
		Response:  noopResponse{},
		Bell:      noopBell{},
		Title:     noopTitle{},
		Clipboard: noopClipboard{},
	}
}

type noopResponse struct{}

func (noopResponse) Respond(string) {}

type noopBell struct{}

func (noopBell) Bell() {}

type noopTitle struct{}

func (noopTitle) SetTitle(string) {}

type noopClipboard struct{}

func (noopClipboard) SetClipboard(string, string)        {}
func (noopClipboard) GetClipboard(string) (string, bool) { return "", false }
