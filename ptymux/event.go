package ptymux

// Event is one item a session's event receiver delivers: raw child output,
// a parsed OSC notification, or a terminal lifecycle signal. spec.md 4.6.
type Event interface {
	isEvent()
}

// Output carries a raw chunk of child stdout/stderr bytes, already applied
// to the session's Emulator by the time it is delivered.
type Output struct {
	Bytes []byte
}

func (Output) isEvent() {}

// OscKind classifies an Osc event.
type OscKind int

const (
	OscTitle OscKind = iota
	OscHyperlink
	OscWorkingDirectory
	OscBuildProgress
)

// Osc carries a parsed OSC notification drained from the emulator's
// pending-OSC queue.
type Osc struct {
	Kind    OscKind
	Payload string
}

func (Osc) isEvent() {}

// ExitStatus is the child process's terminal outcome.
type ExitStatus struct {
	Code int
}

// Exit reports the child exited normally (the PTY read returned EOF after a
// clean wait).
type Exit struct {
	Status ExitStatus
}

func (Exit) isEvent() {}

// UnexpectedExit reports the child exited in a way the session could not
// classify (wait failed, signal without a reapable status, etc).
type UnexpectedExit struct {
	Reason string
}

func (UnexpectedExit) isEvent() {}

// WriteError reports an input-side write to the PTY master failed.
type WriteError struct {
	Err error
}

func (WriteError) isEvent() {}
