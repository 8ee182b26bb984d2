package screen

import "github.com/nullterm/tuiengine/pixel"

// cellFlags tracks rendering state that does not belong in pixel.Style:
// wide-character occupancy and dirty-for-diffing.
type cellFlags uint8

const (
	flagWide cellFlags = 1 << iota
	flagWideSpacer
	flagDirty
	flagVoid // never painted
)

// cell is the buffer's internal storage unit. It carries enough state to
// reconstruct the public pixel.PixelChar on demand (toPixelChar) while
// staying cheap to mutate in place during emulation.
type cell struct {
	char  rune
	style pixel.Style
	flags cellFlags
}

func newVoidCell() cell {
	return cell{flags: flagVoid}
}

func (c *cell) reset() {
	c.char = 0
	c.style = pixel.Style{}
	c.flags = flagVoid
}

func (c *cell) markDirty()   { c.flags |= flagDirty }
func (c *cell) clearDirty()  { c.flags &^= flagDirty }
func (c *cell) isDirty() bool { return c.flags&flagDirty != 0 }
func (c *cell) isWide() bool        { return c.flags&flagWide != 0 }
func (c *cell) isWideSpacer() bool  { return c.flags&flagWideSpacer != 0 }
func (c *cell) isVoid() bool        { return c.flags&flagVoid != 0 }

func (c *cell) setWide(wide bool) {
	if wide {
		c.flags |= flagWide
		c.flags &^= flagWideSpacer
	} else {
		c.flags &^= flagWide
	}
}

func (c *cell) setWideSpacer() {
	c.flags |= flagWideSpacer
	c.flags &^= flagWide | flagVoid
}

// toPixelChar converts internal storage to the public tagged variant.
func (c cell) toPixelChar() pixel.PixelChar {
	switch {
	case c.flags&flagVoid != 0:
		return pixel.Void{}
	case c.flags&flagWideSpacer != 0:
		return pixel.Spacer{Style: c.style}
	default:
		return pixel.PlainText{Char: c.char, Style: c.style, Wide: c.isWide()}
	}
}
