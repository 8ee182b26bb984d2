package pixel

import "image/color"

// Attr is a bitset of text-rendering attributes, applied on top of a Style's
// colors. Modeled after the SGR attribute set in spec.md 4.4.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrDoubleUnderline
	AttrCurlyUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrikethrough
)

// Has reports whether every bit in want is set.
func (a Attr) Has(want Attr) bool { return a&want == want }

// Hyperlink associates a run of cells with an OSC 8 URI.
type Hyperlink struct {
	ID  string
	URI string
}

// Style is a value type: foreground color, background color, an attribute
// bitset, and an optional underline color. Styles carry no inheritance —
// equality compares every field, and a PixelChar's style is always complete.
type Style struct {
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Attrs          Attr
	Hyperlink      *Hyperlink
}

// Equal reports whether two styles render identically. Colors are compared
// by resolved RGBA rather than by underlying type so a Named and an RGB that
// happen to resolve the same way compare equal, matching the "no partial
// style inheriting from neighbours" invariant: a diff is pixel-local and
// must not depend on the color's concrete representation.
func (s Style) Equal(o Style) bool {
	if s.Attrs != o.Attrs {
		return false
	}
	if !colorEqual(s.Fg, o.Fg, true) || !colorEqual(s.Bg, o.Bg, false) {
		return false
	}
	if (s.UnderlineColor == nil) != (o.UnderlineColor == nil) {
		return false
	}
	if s.UnderlineColor != nil && Resolve(s.UnderlineColor, true) != Resolve(o.UnderlineColor, true) {
		return false
	}
	sh, oh := s.Hyperlink, o.Hyperlink
	if (sh == nil) != (oh == nil) {
		return false
	}
	if sh != nil && *sh != *oh {
		return false
	}
	return true
}

func colorEqual(a, b color.Color, fg bool) bool {
	return Resolve(a, fg) == Resolve(b, fg)
}

// Default returns the zero style: default foreground/background, no
// attributes.
func Default() Style { return Style{} }
