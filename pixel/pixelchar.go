package pixel

// PixelChar is the tagged variant stored in every offscreen-buffer cell:
// Void (uninitialised, transparent), Spacer (a blank cell occupying the
// second column of a wide glyph), or PlainText (an actual styled
// character). spec.md 3.
type PixelChar interface {
	isPixelChar()
}

// Void marks a cell that has never been painted. It is transparent: a
// compositor diffing against a Void cell treats any later paint as a change,
// but two Void cells never differ from each other.
type Void struct{}

func (Void) isPixelChar() {}

// Spacer occupies the column immediately after a wide (double-width)
// character. It carries the wide character's style so a diff against a
// freshly blanked region still renders consistently.
type Spacer struct {
	Style Style
}

func (Spacer) isPixelChar() {}

// PlainText is a single displayed character plus its complete style.
type PlainText struct {
	Char  rune
	Style Style
	// Wide is true when Char occupies two display columns; the cell
	// immediately to the right holds a Spacer.
	Wide bool
}

func (PlainText) isPixelChar() {}

// Equal reports whether two PixelChars render identically.
func Equal(a, b PixelChar) bool {
	switch av := a.(type) {
	case Void:
		_, ok := b.(Void)
		return ok
	case Spacer:
		bv, ok := b.(Spacer)
		return ok && av.Style.Equal(bv.Style)
	case PlainText:
		bv, ok := b.(PlainText)
		return ok && av.Char == bv.Char && av.Wide == bv.Wide && av.Style.Equal(bv.Style)
	default:
		return false
	}
}
