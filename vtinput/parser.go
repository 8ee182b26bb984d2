package vtinput

import "unicode/utf8"

// TryParse consumes a prefix of buf and returns the event it decoded, how
// many bytes were consumed, and whether an event was produced. Three
// outcomes are possible, mirroring spec.md 7's error taxonomy:
//
//   - ok==true: exactly one event was recognized; consumed is its length.
//   - ok==false, consumed==0: buf holds a prefix of an as-yet-incomplete
//     sequence. Feed more bytes and try again.
//   - ok==false, consumed>0: buf held a complete but unrecognized or
//     corrupt sequence (unknown CSI final, invalid UTF-8, unsupported
//     mode). The caller should discard consumed bytes and continue; this
//     is forward-progress error recovery, never a panic.
func TryParse(buf []byte) (InputEvent, int, bool) {
	if len(buf) == 0 {
		return nil, 0, false
	}

	b0 := buf[0]

	if b0 == 0x1B {
		return parseEscape(buf)
	}
	if b0 == 0x7F {
		return Keyboard{Code: BackspaceKey{}, Mods: None}, 1, true
	}
	if b0 < 0x20 {
		return parseControl(b0)
	}

	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError {
		if size <= 1 {
			if !utf8.FullRune(buf) {
				return nil, 0, false // could be a truncated multi-byte sequence
			}
			return nil, 1, false // invalid byte: consume and recover
		}
	}
	return Keyboard{Code: CharKey(r), Mods: None}, size, true
}

// parseControl maps a single C0 control byte (< 0x20) to Ctrl+letter, per
// spec.md 6's "control characters 0x00-0x1F mapped to Ctrl+letter".
func parseControl(b byte) (InputEvent, int, bool) {
	switch b {
	case 0x09:
		return Keyboard{Code: TabKey{}, Mods: None}, 1, true
	case 0x0D:
		return Keyboard{Code: EnterKey{}, Mods: None}, 1, true
	case 0x08:
		return Keyboard{Code: BackspaceKey{}, Mods: None}, 1, true
	default:
		letter := rune(b) + 'a' - 1
		return Keyboard{Code: CharKey(letter), Mods: Modifiers{Ctrl: Pressed}}, 1, true
	}
}

// parseEscape handles every sequence that starts with ESC (0x1B): the
// zero-latency lone-ESC rule, CSI (ESC [), SS3 (ESC O), and Alt+letter.
func parseEscape(buf []byte) (InputEvent, int, bool) {
	if len(buf) == 1 {
		// Zero-latency ESC rule (spec.md 4.3): a single buffered ESC byte
		// is assumed complete, trading correctness under fragmented reads
		// (high-latency SSH) for zero added latency on the common case.
		return Keyboard{Code: EscapeKey{}, Mods: None}, 1, true
	}

	switch buf[1] {
	case '[':
		return parseCSI(buf)
	case 'O':
		return parseSS3(buf)
	default:
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError && !utf8.FullRune(buf[1:]) {
			return nil, 0, false
		}
		return Keyboard{Code: CharKey(r), Mods: Modifiers{Alt: Pressed}}, 1 + size, true
	}
}

func parseSS3(buf []byte) (InputEvent, int, bool) {
	if len(buf) < 3 {
		return nil, 0, false
	}
	var code KeyCode
	switch buf[2] {
	case 'A':
		code = UpKey{}
	case 'B':
		code = DownKey{}
	case 'C':
		code = RightKey{}
	case 'D':
		code = LeftKey{}
	case 'H':
		code = HomeKey{}
	case 'F':
		code = EndKey{}
	case 'P':
		code = FunctionKey(1)
	case 'Q':
		code = FunctionKey(2)
	case 'R':
		code = FunctionKey(3)
	case 'S':
		code = FunctionKey(4)
	default:
		return nil, 3, false
	}
	return Keyboard{Code: code, Mods: None}, 3, true
}

// csiFinal reports whether b is a valid CSI final byte (0x40-0x7E).
func csiFinal(b byte) bool { return b >= 0x40 && b <= 0x7E }

// parseCSI parses ESC [ <params> <intermediates> <final>. Params are
// digits separated by ';' or ':'; an optional '?', '<', or '>' private
// marker may precede them.
func parseCSI(buf []byte) (InputEvent, int, bool) {
	i := 2
	private := byte(0)
	if i < len(buf) && (buf[i] == '?' || buf[i] == '<' || buf[i] == '>' || buf[i] == '=') {
		private = buf[i]
		i++
	}
	paramStart := i
	for i < len(buf) && !csiFinal(buf[i]) {
		i++
	}
	if i >= len(buf) {
		return nil, 0, false // incomplete: no final byte yet
	}
	final := buf[i]
	params := parseParams(buf[paramStart:i])
	consumed := i + 1

	switch private {
	case '<':
		ev, ok := decodeMouseSGR(params, final)
		return ev, consumed, ok
	}

	switch final {
	case 'A':
		return arrowEvent(UpKey{}, params), consumed, true
	case 'B':
		return arrowEvent(DownKey{}, params), consumed, true
	case 'C':
		return arrowEvent(RightKey{}, params), consumed, true
	case 'D':
		return arrowEvent(LeftKey{}, params), consumed, true
	case 'H':
		return Keyboard{Code: HomeKey{}, Mods: modsFromParams(params)}, consumed, true
	case 'F':
		return Keyboard{Code: EndKey{}, Mods: modsFromParams(params)}, consumed, true
	case 'I':
		return Focus{Gained: true}, consumed, true
	case 'O':
		return Focus{Gained: false}, consumed, true
	case '~':
		ev, ok := decodeTilde(params)
		return ev, consumed, ok
	default:
		// Recognized CSI grammar (margins, SGR, DSR, mode set/reset,
		// erase) with no corresponding input event: consumed, no-op.
		return nil, consumed, false
	}
}

func arrowEvent(code KeyCode, params []int) InputEvent {
	return Keyboard{Code: code, Mods: modsFromParams(params)}
}

// modsFromParams decodes the xterm modifier encoding "1;N" (params[0]==1,
// params[1]==modifier code 2-8).
func modsFromParams(params []int) Modifiers {
	if len(params) < 2 {
		return None
	}
	return decodeModifierCode(params[1])
}

func decodeModifierCode(code int) Modifiers {
	code--
	if code < 0 {
		return None
	}
	return Modifiers{
		Shift: boolState(code&1 != 0),
		Alt:   boolState(code&2 != 0),
		Ctrl:  boolState(code&4 != 0),
		Super: boolState(code&8 != 0),
	}
}

func boolState(b bool) KeyState {
	if b {
		return Pressed
	}
	return Released
}

// decodeTilde handles the tilde-terminated CSI forms: CSI n ~ for
// Home/Insert/Delete/End/PageUp/PageDown, function keys, and bracketed
// paste markers.
func decodeTilde(params []int) (InputEvent, bool) {
	if len(params) == 0 {
		return nil, false
	}
	n := params[0]
	mods := None
	if len(params) >= 2 {
		mods = decodeModifierCode(params[1])
	}
	switch n {
	case 1:
		return Keyboard{Code: HomeKey{}, Mods: mods}, true
	case 2:
		return Keyboard{Code: InsertKey{}, Mods: mods}, true
	case 3:
		return Keyboard{Code: DeleteKey{}, Mods: mods}, true
	case 4:
		return Keyboard{Code: EndKey{}, Mods: mods}, true
	case 5:
		return Keyboard{Code: PageUpKey{}, Mods: mods}, true
	case 6:
		return Keyboard{Code: PageDownKey{}, Mods: mods}, true
	case 200:
		return Paste{Start: true}, true
	case 201:
		return Paste{Start: false}, true
	}
	if fn, ok := functionKeyFromTilde(n); ok {
		return Keyboard{Code: FunctionKey(fn), Mods: mods}, true
	}
	return nil, false
}

// functionKeyFromTilde maps the xterm tilde codes for F5-F12 (F1-F4 arrive
// via SS3, not tilde).
func functionKeyFromTilde(n int) (int, bool) {
	switch n {
	case 15:
		return 5, true
	case 17:
		return 6, true
	case 18:
		return 7, true
	case 19:
		return 8, true
	case 20:
		return 9, true
	case 21:
		return 10, true
	case 23:
		return 11, true
	case 24:
		return 12, true
	default:
		return 0, false
	}
}

// decodeMouseSGR handles "ESC [ < b ; x ; y M/m" per spec.md 4.3.
func decodeMouseSGR(params []int, final byte) (InputEvent, bool) {
	if len(params) < 3 {
		return nil, false
	}
	raw, x, y := params[0], params[1], params[2]

	mods := Modifiers{
		Shift: boolState(raw&4 != 0),
		Alt:   boolState(raw&8 != 0),
		Ctrl:  boolState(raw&16 != 0),
	}

	var action MouseAction
	var button MouseButton

	switch {
	case raw&64 != 0:
		// Scroll wheel: bit 6 set, low bits select direction.
		if raw&1 != 0 {
			button, action = MouseWheelDown, MouseScrollDown
		} else {
			button, action = MouseWheelUp, MouseScrollUp
		}
	default:
		switch raw & 3 {
		case 0:
			button = MouseLeft
		case 1:
			button = MouseMiddle
		case 2:
			button = MouseRight
		case 3:
			button = MouseNone
		}
		switch {
		case raw&32 != 0 && raw&3 == 3:
			// Motion bit set with no button down: plain pointer movement.
			action = MouseMove
		case raw&32 != 0:
			action = MouseDrag
		case final == 'm':
			action = MouseRelease
		default:
			action = MousePress
		}
	}

	return Mouse{Button: button, Row: y, Col: x, Action: action, Mods: mods}, true
}

// parseParams splits a parameter byte slice on ';' or ':' and parses each
// field as a (possibly empty, defaulting to 0) integer.
func parseParams(b []byte) []int {
	if len(b) == 0 {
		return nil
	}
	var params []int
	val := 0
	has := false
	flush := func() {
		params = append(params, val)
		val = 0
		has = false
	}
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			val = val*10 + int(c-'0')
			has = true
		case c == ';' || c == ':':
			flush()
		default:
			// stray intermediate byte; ignore
		}
	}
	if has || len(params) == 0 {
		flush()
	}
	return params
}
