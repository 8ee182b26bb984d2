package vtinput

import "fmt"

// Generate constructs the exact byte sequence TryParse accepts for ev. The
// pair (TryParse, Generate) must round-trip for every representable event
// (spec.md 8): TryParse(Generate(e)) == (e, len(Generate(e)), true).
func Generate(ev InputEvent) []byte {
	switch e := ev.(type) {
	case Keyboard:
		return generateKeyboard(e)
	case Mouse:
		return generateMouse(e)
	case Focus:
		if e.Gained {
			return []byte("\x1b[I")
		}
		return []byte("\x1b[O")
	case Paste:
		if e.Start {
			return []byte("\x1b[200~")
		}
		return []byte("\x1b[201~")
	default:
		return nil
	}
}

func modifierCode(m Modifiers) int {
	if m == None {
		return 0
	}
	code := 1
	if m.Shift == Pressed {
		code += 1
	}
	if m.Alt == Pressed {
		code += 2
	}
	if m.Ctrl == Pressed {
		code += 4
	}
	if m.Super == Pressed {
		code += 8
	}
	return code
}

// csiWithMods renders "ESC [ final" or, with modifiers, "ESC [ 1 ; N final".
func csiWithMods(final byte, m Modifiers) []byte {
	if m == None {
		return []byte{0x1B, '[', final}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", modifierCode(m), final))
}

// tildeWithMods renders "ESC [ n ~" or, with modifiers, "ESC [ n ; N ~".
func tildeWithMods(n int, m Modifiers) []byte {
	if m == None {
		return []byte(fmt.Sprintf("\x1b[%d~", n))
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", n, modifierCode(m)))
}

func generateKeyboard(e Keyboard) []byte {
	switch code := e.Code.(type) {
	case EscapeKey:
		return []byte{0x1B}
	case UpKey:
		return csiWithMods('A', e.Mods)
	case DownKey:
		return csiWithMods('B', e.Mods)
	case RightKey:
		return csiWithMods('C', e.Mods)
	case LeftKey:
		return csiWithMods('D', e.Mods)
	case HomeKey:
		return csiWithMods('H', e.Mods)
	case EndKey:
		return csiWithMods('F', e.Mods)
	case PageUpKey:
		return tildeWithMods(5, e.Mods)
	case PageDownKey:
		return tildeWithMods(6, e.Mods)
	case InsertKey:
		return tildeWithMods(2, e.Mods)
	case DeleteKey:
		return tildeWithMods(3, e.Mods)
	case BackspaceKey:
		return []byte{0x7F}
	case TabKey:
		return []byte{0x09}
	case EnterKey:
		return []byte{0x0D}
	case FunctionKey:
		return generateFunctionKey(int(code), e.Mods)
	case CharKey:
		return generateChar(rune(code), e.Mods)
	default:
		return nil
	}
}

func generateFunctionKey(n int, m Modifiers) []byte {
	if n >= 1 && n <= 4 && m == None {
		return []byte{0x1B, 'O', byte('P' + n - 1)}
	}
	tilde := map[int]int{5: 15, 6: 17, 7: 18, 8: 19, 9: 20, 10: 21, 11: 23, 12: 24}
	if code, ok := tilde[n]; ok {
		return tildeWithMods(code, m)
	}
	return nil
}

func generateChar(r rune, m Modifiers) []byte {
	if m.Ctrl == Pressed && r >= 'a' && r <= 'z' {
		return []byte{byte(r-'a') + 1}
	}
	if m.Alt == Pressed {
		return append([]byte{0x1B}, []byte(string(r))...)
	}
	return []byte(string(r))
}

func generateMouse(e Mouse) []byte {
	raw := 0
	switch e.Action {
	case MouseScrollUp:
		raw = 64
	case MouseScrollDown:
		raw = 65
	default:
		switch e.Button {
		case MouseMiddle:
			raw = 1
		case MouseRight:
			raw = 2
		case MouseNone:
			raw = 3
		default:
			raw = 0
		}
		if e.Action == MouseDrag || e.Action == MouseMove {
			raw |= 32
		}
	}
	if e.Mods.Shift == Pressed {
		raw |= 4
	}
	if e.Mods.Alt == Pressed {
		raw |= 8
	}
	if e.Mods.Ctrl == Pressed {
		raw |= 16
	}
	final := byte('M')
	if e.Action == MouseRelease {
		final = 'm'
	}
	return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", raw, e.Col, e.Row, final))
}
