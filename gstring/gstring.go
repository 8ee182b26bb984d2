// Package gstring provides Unicode-aware, column-addressable immutable
// strings with cheap slicing: the atom of text editing and display.
// spec.md 4.1.
//
// A GraphemeString owns its bytes and a precomputed segment table. Every
// segment records where it starts in bytes and display columns, how wide it
// is, and its index in the table. Operations are defined on display
// columns, never on byte indices, and never split a grapheme cluster.
package gstring

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"

	"github.com/nullterm/tuiengine/units"
)

// Segment describes one grapheme cluster's position in both byte space and
// display-column space.
type Segment struct {
	ByteStart units.ByteIndex
	ByteLen   units.ByteLength
	ColStart  units.ColIndex
	Width     units.ColWidth
	Index     units.SegIndex
}

// GraphemeString is an owned string plus its segment table.
type GraphemeString struct {
	s        string
	segments []Segment
	width    units.ColWidth
}

// New builds a GraphemeString, segmenting s into grapheme clusters via
// uax29's Unicode text segmentation and measuring each cluster's display
// width via uniwidth (wide CJK/emoji clusters count as 2 columns).
func New(s string) *GraphemeString {
	gs := &GraphemeString{s: s}
	seg := graphemes.FromString(s)
	byteOff := 0
	col := 0
	idx := 0
	for seg.Next() {
		cluster := seg.Value()
		w := clusterWidth(cluster)
		gs.segments = append(gs.segments, Segment{
			ByteStart: units.ByteIndex(byteOff),
			ByteLen:   units.ByteLength(len(cluster)),
			ColStart:  units.ColIndex(col),
			Width:     units.ColWidth(w),
			Index:     units.SegIndex(idx),
		})
		byteOff += len(cluster)
		col += w
		idx++
	}
	gs.width = units.ColWidth(col)
	return gs
}

// clusterWidth sums the rune widths within a grapheme cluster; for clusters
// formed by combining marks this naturally yields the base rune's width
// since combining marks measure zero.
func clusterWidth(cluster string) int {
	total := 0
	for _, r := range cluster {
		total += runeWidth(r)
	}
	if total < 0 {
		total = 0
	}
	return total
}

// String returns the underlying owned string.
func (g *GraphemeString) String() string { return g.s }

// Width returns the total display width.
func (g *GraphemeString) Width() units.ColWidth { return g.width }

// SegmentCount returns the number of grapheme clusters.
func (g *GraphemeString) SegmentCount() units.SegLength {
	return units.SegLength(len(g.segments))
}

// AtDisplayCol returns the segment containing display column col, or false
// if col is out of range. col == Width() is a valid one-past-end query and
// also returns false (there is no segment "at" the end, per the cursor
// bounds family in package units).
func (g *GraphemeString) AtDisplayCol(col units.ColIndex) (Segment, bool) {
	for _, s := range g.segments {
		if col >= s.ColStart && col < s.ColStart+units.ColIndex(s.Width) {
			return s, true
		}
	}
	return Segment{}, false
}

// segmentIndexAtOrAfter returns the index of the first segment whose
// ColStart is >= col, or len(segments) if none.
func (g *GraphemeString) segmentIndexAtOrAfter(col units.ColIndex) int {
	for i, s := range g.segments {
		if s.ColStart >= col {
			return i
		}
	}
	return len(g.segments)
}

// GetStringAt returns the cluster starting exactly at display column col,
// if col lies on a segment boundary.
func (g *GraphemeString) GetStringAt(col units.ColIndex) (string, bool) {
	seg, ok := g.AtDisplayCol(col)
	if !ok || seg.ColStart != col {
		return "", false
	}
	return g.s[seg.ByteStart : seg.ByteStart+units.ByteIndex(seg.ByteLen)], true
}

// GetStringAtLeftOf returns the cluster immediately to the left of column
// col, if col lies on a segment boundary.
func (g *GraphemeString) GetStringAtLeftOf(col units.ColIndex) (string, bool) {
	for i, s := range g.segments {
		if s.ColStart == col {
			if i == 0 {
				return "", false
			}
			left := g.segments[i-1]
			return g.s[left.ByteStart : left.ByteStart+units.ByteIndex(left.ByteLen)], true
		}
	}
	if col == units.ColIndex(g.width) && len(g.segments) > 0 {
		last := g.segments[len(g.segments)-1]
		return g.s[last.ByteStart : last.ByteStart+units.ByteIndex(last.ByteLen)], true
	}
	return "", false
}

// GetStringAtRightOf returns the cluster immediately to the right of column
// col, if col lies on a segment boundary.
func (g *GraphemeString) GetStringAtRightOf(col units.ColIndex) (string, bool) {
	for i, s := range g.segments {
		if s.ColStart == col {
			if i+1 >= len(g.segments) {
				return "", false
			}
			right := g.segments[i+1]
			return g.s[right.ByteStart : right.ByteStart+units.ByteIndex(right.ByteLen)], true
		}
	}
	return "", false
}

// Clip returns the substring spanning exactly width display columns
// starting at startCol, skipping (the "round-down" rule) any wide glyph
// that straddles either edge of the window rather than slicing through it.
func (g *GraphemeString) Clip(startCol units.ColIndex, width units.ColWidth) string {
	if width <= 0 {
		return ""
	}
	endCol := startCol + units.ColIndex(width)
	var b strings.Builder
	for _, s := range g.segments {
		segEnd := s.ColStart + units.ColIndex(s.Width)
		if segEnd <= startCol {
			continue
		}
		if s.ColStart < startCol {
			// Straddles the left edge: round down, skip entirely.
			continue
		}
		if segEnd > endCol {
			// Straddles the right edge: round down, skip entirely.
			continue
		}
		if s.ColStart >= endCol {
			break
		}
		b.WriteString(g.s[s.ByteStart : s.ByteStart+units.ByteIndex(s.ByteLen)])
	}
	return b.String()
}

// TruncStartBy removes cols display columns from the start, returning the
// remaining string.
func (g *GraphemeString) TruncStartBy(cols units.ColWidth) string {
	return g.Clip(units.ColIndex(cols), g.width-units.ColWidth(cols))
}

// TruncEndBy removes cols display columns from the end, returning the
// remaining string.
func (g *GraphemeString) TruncEndBy(cols units.ColWidth) string {
	keep := g.width - units.ColWidth(cols)
	if keep < 0 {
		keep = 0
	}
	return g.Clip(0, keep)
}

// TruncEndToFit truncates from the end so the result fits within width
// display columns.
func (g *GraphemeString) TruncEndToFit(width units.ColWidth) string {
	if g.width <= width {
		return g.s
	}
	return g.Clip(0, width)
}

// PadEndToFit pads the string on the right with pad bytes (assumed
// single-column) until it occupies width columns, or truncates if it
// already exceeds width.
func (g *GraphemeString) PadEndToFit(pad byte, width units.ColWidth) string {
	if g.width >= width {
		return g.TruncEndToFit(width)
	}
	return g.s + strings.Repeat(string(pad), int(width-g.width))
}

// PadStartToFit pads the string on the left with pad bytes until it
// occupies width columns, or truncates from the start if it already
// exceeds width.
func (g *GraphemeString) PadStartToFit(pad byte, width units.ColWidth) string {
	if g.width >= width {
		return g.Clip(g.width-units.ColWidth(width), width)
	}
	return strings.Repeat(string(pad), int(width-g.width)) + g.s
}

// InsertChunkAt inserts chunk at display column col (which must lie on a
// segment boundary or at the end) and returns the new string plus the
// inserted chunk's display width.
func (g *GraphemeString) InsertChunkAt(col units.ColIndex, chunk string) (*GraphemeString, units.ColWidth) {
	left, right := g.splitBytesAt(col)
	combined := left + chunk + right
	inserted := New(chunk)
	return New(combined), inserted.Width()
}

// DeleteCharAt removes the grapheme cluster at display column col and
// returns the resulting string. If col does not land on a cluster, the
// original string is returned unchanged (never panics, per spec.md 4.1).
func (g *GraphemeString) DeleteCharAt(col units.ColIndex) *GraphemeString {
	seg, ok := g.AtDisplayCol(col)
	if !ok {
		return g
	}
	before := g.s[:seg.ByteStart]
	after := g.s[seg.ByteStart+units.ByteIndex(seg.ByteLen):]
	return New(before + after)
}

// SplitAtDisplayCol splits the string into (left, right) at col, which must
// lie on a segment boundary (or the very end).
func (g *GraphemeString) SplitAtDisplayCol(col units.ColIndex) (*GraphemeString, *GraphemeString) {
	left, right := g.splitBytesAt(col)
	return New(left), New(right)
}

// splitBytesAt returns the byte-level (left, right) halves for a column
// split, rounding to the first segment boundary at or after col.
func (g *GraphemeString) splitBytesAt(col units.ColIndex) (string, string) {
	if col <= 0 {
		return "", g.s
	}
	if col >= units.ColIndex(g.width) {
		return g.s, ""
	}
	idx := g.segmentIndexAtOrAfter(col)
	var byteOff units.ByteIndex
	if idx < len(g.segments) {
		byteOff = g.segments[idx].ByteStart
	} else {
		byteOff = units.ByteIndex(len(g.s))
	}
	return g.s[:byteOff], g.s[byteOff:]
}

// ColToByte converts a display column to a byte offset; it returns false if
// col does not lie on a segment boundary and is not the one-past-end
// position.
func (g *GraphemeString) ColToByte(col units.ColIndex) (units.ByteIndex, bool) {
	if col == units.ColIndex(g.width) {
		return units.ByteIndex(len(g.s)), true
	}
	seg, ok := g.AtDisplayCol(col)
	if !ok || seg.ColStart != col {
		return 0, false
	}
	return seg.ByteStart, true
}

// ColToSeg converts a display column to a segment index; false if col is
// not on a boundary.
func (g *GraphemeString) ColToSeg(col units.ColIndex) (units.SegIndex, bool) {
	if col == units.ColIndex(g.width) {
		return units.SegIndex(len(g.segments)), true
	}
	seg, ok := g.AtDisplayCol(col)
	if !ok || seg.ColStart != col {
		return 0, false
	}
	return seg.Index, true
}
