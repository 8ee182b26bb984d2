package vtinput

import (
	"bytes"
	"testing"
)

func TestArrowKeyParse(t *testing.T) {
	// spec.md 8, scenario 1.
	ev, n, ok := TryParse([]byte{0x1B, '[', 'A'})
	if !ok {
		t.Fatal("expected an event")
	}
	if n != 3 {
		t.Errorf("consumed = %d, want 3", n)
	}
	kb, isKb := ev.(Keyboard)
	if !isKb {
		t.Fatalf("got %#v, want Keyboard", ev)
	}
	if _, isUp := kb.Code.(UpKey); !isUp {
		t.Errorf("code = %#v, want UpKey", kb.Code)
	}
	if kb.Mods != None {
		t.Errorf("mods = %+v, want none", kb.Mods)
	}
}

func TestShiftUpParse(t *testing.T) {
	// spec.md 8, scenario 2.
	ev, n, ok := TryParse([]byte{0x1B, '[', '1', ';', '2', 'A'})
	if !ok || n != 6 {
		t.Fatalf("ok=%v n=%d, want true 6", ok, n)
	}
	kb := ev.(Keyboard)
	if _, isUp := kb.Code.(UpKey); !isUp {
		t.Fatalf("code = %#v, want UpKey", kb.Code)
	}
	if kb.Mods.Shift != Pressed {
		t.Errorf("mods = %+v, want shift pressed", kb.Mods)
	}
}

func TestLoneEscape(t *testing.T) {
	// spec.md 8, scenario 3.
	ev, n, ok := TryParse([]byte{0x1B})
	if !ok || n != 1 {
		t.Fatalf("ok=%v n=%d, want true 1", ok, n)
	}
	kb := ev.(Keyboard)
	if _, isEsc := kb.Code.(EscapeKey); !isEsc {
		t.Fatalf("code = %#v, want EscapeKey", kb.Code)
	}
}

func TestIncompleteSequenceReturnsNone(t *testing.T) {
	_, n, ok := TryParse([]byte{0x1B, '['})
	if ok || n != 0 {
		t.Fatalf("incomplete CSI should signal need-more-bytes, got ok=%v n=%d", ok, n)
	}
}

func TestCtrlLetter(t *testing.T) {
	ev, n, ok := TryParse([]byte{0x03}) // Ctrl+C
	if !ok || n != 1 {
		t.Fatalf("ok=%v n=%d", ok, n)
	}
	kb := ev.(Keyboard)
	ck, isChar := kb.Code.(CharKey)
	if !isChar || rune(ck) != 'c' || kb.Mods.Ctrl != Pressed {
		t.Errorf("got %#v mods=%+v, want Ctrl+c", kb.Code, kb.Mods)
	}
}

func TestUTF8Text(t *testing.T) {
	ev, n, ok := TryParse([]byte("中"))
	if !ok {
		t.Fatal("expected event")
	}
	if n != 3 {
		t.Errorf("consumed = %d, want 3 (UTF-8 width of 中)", n)
	}
	kb := ev.(Keyboard)
	if ck, isChar := kb.Code.(CharKey); !isChar || rune(ck) != '中' {
		t.Errorf("got %#v", kb.Code)
	}
}

func TestInvalidUTF8RecoversForwardProgress(t *testing.T) {
	_, n, ok := TryParse([]byte{0xFF, 'a'})
	if ok {
		t.Fatal("invalid UTF-8 should not produce an event")
	}
	if n != 1 {
		t.Errorf("consumed = %d, want 1 (skip one byte and continue)", n)
	}
}

func TestMouseSGRPress(t *testing.T) {
	ev, n, ok := TryParse([]byte("\x1b[<0;10;20M"))
	if !ok {
		t.Fatal("expected a mouse event")
	}
	m := ev.(Mouse)
	if m.Action != MousePress || m.Button != MouseLeft || m.Col != 10 || m.Row != 20 {
		t.Errorf("got %+v", m)
	}
	if n != len("\x1b[<0;10;20M") {
		t.Errorf("consumed = %d", n)
	}
}

func TestBracketedPaste(t *testing.T) {
	ev, _, ok := TryParse([]byte("\x1b[200~"))
	if !ok || ev.(Paste).Start != true {
		t.Fatalf("got %#v ok=%v", ev, ok)
	}
	ev, _, ok = TryParse([]byte("\x1b[201~"))
	if !ok || ev.(Paste).Start != false {
		t.Fatalf("got %#v ok=%v", ev, ok)
	}
}

// roundTripSamples enumerates representable events whose generator output
// must parse back to the same event (spec.md 8's round-trip law).
func roundTripSamples() []InputEvent {
	return []InputEvent{
		Keyboard{Code: EscapeKey{}, Mods: None},
		Keyboard{Code: UpKey{}, Mods: None},
		Keyboard{Code: UpKey{}, Mods: Modifiers{Shift: Pressed}},
		Keyboard{Code: DownKey{}, Mods: Modifiers{Ctrl: Pressed, Alt: Pressed}},
		Keyboard{Code: HomeKey{}, Mods: None},
		Keyboard{Code: EndKey{}, Mods: None},
		Keyboard{Code: PageUpKey{}, Mods: None},
		Keyboard{Code: PageDownKey{}, Mods: None},
		Keyboard{Code: InsertKey{}, Mods: None},
		Keyboard{Code: DeleteKey{}, Mods: None},
		Keyboard{Code: BackspaceKey{}, Mods: None},
		Keyboard{Code: TabKey{}, Mods: None},
		Keyboard{Code: EnterKey{}, Mods: None},
		Keyboard{Code: FunctionKey(1), Mods: None},
		Keyboard{Code: FunctionKey(5), Mods: None},
		Keyboard{Code: FunctionKey(12), Mods: None},
		Keyboard{Code: CharKey('a'), Mods: None},
		Keyboard{Code: CharKey('c'), Mods: Modifiers{Ctrl: Pressed}},
		Keyboard{Code: CharKey('x'), Mods: Modifiers{Alt: Pressed}},
		Focus{Gained: true},
		Focus{Gained: false},
		Paste{Start: true},
		Paste{Start: false},
		Mouse{Button: MouseLeft, Row: 5, Col: 10, Action: MousePress, Mods: None},
		Mouse{Button: MouseLeft, Row: 5, Col: 10, Action: MouseRelease, Mods: None},
		Mouse{Button: MouseLeft, Row: 5, Col: 10, Action: MouseDrag, Mods: None},
		Mouse{Button: MouseNone, Row: 1, Col: 1, Action: MouseMove, Mods: None},
		Mouse{Button: MouseNone, Row: 1, Col: 1, Action: MouseScrollUp, Mods: None},
	}
}

func TestInputEventRoundTrip(t *testing.T) {
	for _, want := range roundTripSamples() {
		gen := Generate(want)
		got, n, ok := TryParse(gen)
		if !ok {
			t.Errorf("Generate(%#v) = %q did not parse back", want, gen)
			continue
		}
		if n != len(gen) {
			t.Errorf("%#v: consumed %d, want %d", want, n, len(gen))
		}
		if !eventsEqual(want, got) {
			t.Errorf("round trip mismatch: %#v -> %q -> %#v", want, gen, got)
		}
	}
}

func eventsEqual(a, b InputEvent) bool {
	return bytes.Equal(Generate(a), Generate(b))
}

// TestMouseMoveDistinctFromDrag covers spec.md 3's action set distinguishing
// plain pointer movement (no button held) from a drag (button held): both
// set the SGR motion bit (32), but only a held button's low bits make it a
// drag rather than a move.
func TestMouseMoveDistinctFromDrag(t *testing.T) {
	ev, _, ok := TryParse([]byte("\x1b[<35;10;20M")) // 32 (motion) | 3 (no button)
	if !ok {
		t.Fatal("expected a mouse event")
	}
	m := ev.(Mouse)
	if m.Action != MouseMove {
		t.Errorf("action = %v, want MouseMove", m.Action)
	}

	ev, _, ok = TryParse([]byte("\x1b[<32;10;20M")) // 32 (motion) | 0 (left button held)
	if !ok {
		t.Fatal("expected a mouse event")
	}
	m = ev.(Mouse)
	if m.Action != MouseDrag || m.Button != MouseLeft {
		t.Errorf("got %+v, want MouseDrag/MouseLeft", m)
	}
}
