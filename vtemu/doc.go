// Package vtemu implements the VT100/ANSI output emulator: it applies a
// byte stream of ANSI escape sequences to a screen.Buffer, producing the
// visual state a compliant terminal would show. spec.md 4.4.
//
// Emulator drives github.com/danielgatis/go-ansicode's parser, which
// tokenizes the incoming byte stream (CSI/ESC/OSC/DCS framing, SGR
// parameter splitting on both ':' and ';' separators) and calls back into
// Emulator's semantic handler methods (one per VT100 operation, e.g.
// SetScrollingRegion, SetTerminalCharAttribute, MoveBackward) rather than
// exposing a generic csi_dispatch(params, final) surface. This mirrors the
// reference implementation's handler.go, which implements the same
// semantic method set against the mutable terminal state.
//
// Input, the hot path for printable characters, checks for an optional
// Middleware hook before calling its internal implementation, so tests and
// instrumentation can intercept character printing without subclassing.
package vtemu
