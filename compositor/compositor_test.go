package compositor

import (
	"testing"

	"github.com/nullterm/tuiengine/pixel"
	"github.com/nullterm/tuiengine/screen"
	"github.com/nullterm/tuiengine/units"
)

func setText(b *screen.Buffer, row, col int, s string, style pixel.Style) {
	for i, r := range s {
		b.SetChar(units.Position{Row: units.RowIndex(row), Col: units.ColIndex(col + i)}, pixel.PlainText{Char: r, Style: style})
	}
}

func TestFullRenderMergesSameStyleRun(t *testing.T) {
	b := screen.NewEmpty(units.Size{Height: 1, Width: 5})
	setText(b, 0, 0, "hello", pixel.Style{})

	ops := FullRender(b)

	var texts []string
	for _, op := range ops {
		if pt, ok := op.(PaintTextWithAttributes); ok {
			texts = append(texts, pt.Text)
		}
	}
	if len(texts) != 1 || texts[0] != "hello" {
		t.Fatalf("expected one merged run \"hello\", got %v", texts)
	}
}

func TestFullRenderBreaksOnStyleChange(t *testing.T) {
	b := screen.NewEmpty(units.Size{Height: 1, Width: 4})
	setText(b, 0, 0, "ab", pixel.Style{})
	setText(b, 0, 2, "cd", pixel.Style{Attrs: pixel.AttrBold})

	ops := FullRender(b)

	var texts []string
	for _, op := range ops {
		if pt, ok := op.(PaintTextWithAttributes); ok {
			texts = append(texts, pt.Text)
		}
	}
	if len(texts) != 2 || texts[0] != "ab" || texts[1] != "cd" {
		t.Fatalf("expected two runs [\"ab\" \"cd\"], got %v", texts)
	}
}

func TestFullRenderSkipsVoidCellsWithoutPainting(t *testing.T) {
	b := screen.NewEmpty(units.Size{Height: 1, Width: 3})
	setText(b, 0, 0, "a", pixel.Style{})
	setText(b, 0, 2, "b", pixel.Style{})

	ops := FullRender(b)

	var texts []string
	for _, op := range ops {
		if pt, ok := op.(PaintTextWithAttributes); ok {
			texts = append(texts, pt.Text)
		}
	}
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Fatalf("Void gap should split runs without emitting its own paint, got %v", texts)
	}
}

func TestDiffRenderEmitsOnlyChangedCells(t *testing.T) {
	prev := screen.NewEmpty(units.Size{Height: 2, Width: 2})
	cur := screen.NewEmpty(units.Size{Height: 2, Width: 2})
	setText(prev, 0, 0, "a", pixel.Style{})
	setText(cur, 0, 0, "a", pixel.Style{})
	setText(cur, 1, 1, "z", pixel.Style{})

	ops := DiffRender(prev, cur)

	var cells []PaintCell
	for _, op := range ops {
		if pc, ok := op.(PaintCell); ok {
			cells = append(cells, pc)
		}
	}
	if len(cells) != 1 {
		t.Fatalf("expected 1 PaintCell op, got %d", len(cells))
	}
	if cells[0].Pos != (units.Position{Row: 1, Col: 1}) {
		t.Errorf("expected diff at (1,1), got %+v", cells[0].Pos)
	}
	pt, ok := cells[0].Char.(pixel.PlainText)
	if !ok || pt.Char != 'z' {
		t.Errorf("expected painted char 'z' (cur's new content), got %#v", cells[0].Char)
	}
}

func TestDiffRenderReturnsNilWhenIdentical(t *testing.T) {
	prev := screen.NewEmpty(units.Size{Height: 2, Width: 2})
	cur := screen.NewEmpty(units.Size{Height: 2, Width: 2})
	if ops := DiffRender(prev, cur); ops != nil {
		t.Errorf("expected nil ops for identical buffers, got %v", ops)
	}
}
