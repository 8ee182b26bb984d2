// Package pixel models the styled-character data that an offscreen buffer is
// built from: colors, text attributes, and the PixelChar tagged variant.
package pixel

import "image/color"

// Color is a tagged variant over the three color spaces a VT100 stream can
// address: the basic 16-color set, the 256-entry indexed palette, and 24-bit
// RGB. It satisfies image/color.Color so callers can resolve a concrete RGBA
// without a type switch when they don't care which variant they hold.
type Color interface {
	color.Color
	isColor()
}

// Basic is one of the 16 basic ANSI colors (0-7 normal, 8-15 bright).
type Basic struct {
	Index uint8 // 0-15
}

func (Basic) isColor() {}

// RGBA resolves the basic color against DefaultPalette.
func (b Basic) RGBA() (r, g, b2, a uint32) {
	return DefaultPalette[b.Index%16].RGBA()
}

// Indexed addresses one of the 256 palette entries (16-255 are the cube and
// grayscale ramp; 0-15 overlap the basic colors).
type Indexed struct {
	Index uint8
}

func (Indexed) isColor() {}

// RGBA resolves the indexed color against DefaultPalette.
func (i Indexed) RGBA() (r, g, b, a uint32) {
	return DefaultPalette[i.Index].RGBA()
}

// RGB is a direct 24-bit true color.
type RGB struct {
	R, G, B uint8
}

func (RGB) isColor() {}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Named addresses a semantic slot (foreground, background, cursor, or one of
// the dim variants) rather than a fixed color, so the backend's palette can
// change without the emulator losing track of which cells are "default fg."
type Named struct {
	Slot int
}

func (Named) isColor() {}

// RGBA resolves the named slot against the default palette and colors.
func (n Named) RGBA() (r, g, b, a uint32) {
	return resolveNamedColor(n.Slot).RGBA()
}

// Semantic named-color slots.
const (
	SlotForeground = iota
	SlotBackground
	SlotCursor
	SlotDimBlack
	SlotDimRed
	SlotDimGreen
	SlotDimYellow
	SlotDimBlue
	SlotDimMagenta
	SlotDimCyan
	SlotDimWhite
	SlotBrightForeground
	SlotDimForeground
)

// DefaultForeground is the default text color.
var DefaultForeground = color.RGBA{R: 229, G: 229, B: 229, A: 255}

// DefaultBackground is the default background color.
var DefaultBackground = color.RGBA{A: 255}

// DefaultCursorColor is the default cursor rendering color.
var DefaultCursorColor = color.RGBA{R: 229, G: 229, B: 229, A: 255}

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15),
// a 216-entry color cube (16-231), and a 24-step grayscale ramp (232-255).
var DefaultPalette = buildDefaultPalette()

func buildDefaultPalette() [256]color.RGBA {
	var p [256]color.RGBA
	basic := [16]color.RGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 205, G: 49, B: 49, A: 255},
		{R: 13, G: 188, B: 121, A: 255},
		{R: 229, G: 229, B: 16, A: 255},
		{R: 36, G: 114, B: 200, A: 255},
		{R: 188, G: 63, B: 188, A: 255},
		{R: 17, G: 168, B: 205, A: 255},
		{R: 229, G: 229, B: 229, A: 255},
		{R: 102, G: 102, B: 102, A: 255},
		{R: 241, G: 76, B: 76, A: 255},
		{R: 35, G: 209, B: 139, A: 255},
		{R: 245, G: 245, B: 67, A: 255},
		{R: 59, G: 142, B: 234, A: 255},
		{R: 214, G: 112, B: 214, A: 255},
		{R: 41, G: 184, B: 219, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	copy(p[:16], basic[:])

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[i] = color.RGBA{R: cubeLevel(r), G: cubeLevel(g), B: cubeLevel(b), A: 255}
				i++
			}
		}
	}

	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		p[232+j] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}
	return p
}

func cubeLevel(n int) uint8 { return uint8(n * 51) }

func resolveNamedColor(slot int) color.RGBA {
	switch slot {
	case SlotForeground:
		return DefaultForeground
	case SlotBackground:
		return DefaultBackground
	case SlotCursor:
		return DefaultCursorColor
	case SlotBrightForeground:
		return DefaultPalette[15]
	case SlotDimForeground:
		return dim(DefaultForeground)
	default:
		if slot >= SlotDimBlack && slot <= SlotDimWhite {
			return dim(DefaultPalette[slot-SlotDimBlack])
		}
		return DefaultForeground
	}
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: 255,
	}
}

// Resolve returns the concrete RGBA for any Color, substituting the
// foreground or background default when c is nil.
func Resolve(c color.Color, fg bool) color.RGBA {
	if c == nil {
		if fg {
			return DefaultForeground
		}
		return DefaultBackground
	}
	if rgba, ok := c.(color.RGBA); ok {
		return rgba
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
