package vtemu

// Middleware lets a caller intercept specific emulator operations without
// subclassing Emulator — useful for tests that assert an exact sequence of
// prints, or for an instrumentation layer that wants to trace dispatch
// without touching buffer state. Every field is optional; a nil hook falls
// through to the Emulator's own implementation. Unlike the per-method
// interception surface this is modeled after, the hook set here only
// covers the operations worth intercepting in practice (character input);
// the rest dispatch straight to the Emulator, since no caller in this
// codebase ever needed to shim scrolling or mode changes separately.
type Middleware struct {
	// Input, if set, replaces Emulator.Input's body. The middleware must
	// call next(r) itself to preserve default behavior, or omit the call
	// to suppress it entirely.
	Input func(r rune, next func(rune))
}
