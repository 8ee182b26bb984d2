package ptymux

// Action is one instruction a read-write session's input sender accepts.
// spec.md 4.6.
type Action interface {
	isAction()
}

// Write sends raw bytes to the child's stdin.
type Write struct {
	Bytes []byte
}

func (Write) isAction() {}

// WriteLine sends line followed by a carriage return, the byte sequence a
// real keyboard Enter key produces.
type WriteLine struct {
	Line string
}

func (WriteLine) isAction() {}

// SendControl sends a single control byte (e.g. 0x03 for Ctrl+C).
type SendControl struct {
	Byte byte
}

func (SendControl) isAction() {}

// Resize changes the PTY window size and resizes the session's Emulator to
// match.
type Resize struct {
	Rows, Cols int
}

func (Resize) isAction() {}

// Flush is a no-op marker consumers can use to synchronize with the input
// loop (every action queued before it has been applied once it is
// processed).
type Flush struct{}

func (Flush) isAction() {}

// Close closes the PTY master file (both directions, there is no
// half-close) and ends the session's input loop.
type Close struct{}

func (Close) isAction() {}
