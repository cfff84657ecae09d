package mapfile

import (
	"image"
	"slices"
)

// Selection is a set of local cells chosen in the editor.
type Selection struct {
	cells map[image.Point]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{cells: make(map[image.Point]struct{})}
}

// Select adds a cell.
func (s *Selection) Select(x, y int) {
	s.cells[image.Pt(x, y)] = struct{}{}
}

// SelectRect adds every cell of r.
func (s *Selection) SelectRect(r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.Select(x, y)
		}
	}
}

// Deselect removes a cell.
func (s *Selection) Deselect(x, y int) {
	delete(s.cells, image.Pt(x, y))
}

// Toggle flips a cell and reports whether it is now selected.
func (s *Selection) Toggle(x, y int) bool {
	if s.IsSelected(x, y) {
		s.Deselect(x, y)
		return false
	}
	s.Select(x, y)
	return true
}

// IsSelected reports whether a cell is selected.
func (s *Selection) IsSelected(x, y int) bool {
	_, ok := s.cells[image.Pt(x, y)]
	return ok
}

// Clear removes all cells.
func (s *Selection) Clear() {
	clear(s.cells)
}

// Len returns the number of selected cells.
func (s *Selection) Len() int {
	return len(s.cells)
}

// Points returns the selected cells in row-major order.
func (s *Selection) Points() []image.Point {
	pts := make([]image.Point, 0, len(s.cells))
	for p := range s.cells {
		pts = append(pts, p)
	}
	slices.SortFunc(pts, func(a, b image.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return pts
}

// Bounds returns the smallest rectangle holding every selected cell.
func (s *Selection) Bounds() image.Rectangle {
	var r image.Rectangle
	first := true
	for p := range s.cells {
		cell := image.Rect(p.X, p.Y, p.X+1, p.Y+1)
		if first {
			r = cell
			first = false
			continue
		}
		r = r.Union(cell)
	}
	return r
}

// Clipboard holds copied tiles keyed by their offset from the top-left
// corner of the copied selection.
type Clipboard struct {
	tiles map[image.Point]*Tile
	size  image.Point
}

// Copy copies the selected tiles of m. Untouched cells are copied as
// empty tiles so that pasting clears them.
func (m *Map) Copy(sel *Selection) *Clipboard {
	b := sel.Bounds()
	cb := &Clipboard{tiles: make(map[image.Point]*Tile), size: b.Size()}
	for _, p := range sel.Points() {
		if !m.Contains(p.X, p.Y) {
			continue
		}
		t := m.PeekTile(p.X, p.Y)
		if t == nil {
			t = &Tile{}
		}
		cb.tiles[p.Sub(b.Min)] = t.Clone()
	}
	return cb
}

// Len returns the number of copied tiles.
func (cb *Clipboard) Len() int {
	return len(cb.tiles)
}

// Size returns the width and height of the copied area.
func (cb *Clipboard) Size() image.Point {
	return cb.size
}

// Paste writes the clipboard into m with its top-left corner at (x, y).
// Cells falling outside m are dropped. It returns the number of pasted tiles.
func (m *Map) Paste(cb *Clipboard, x, y int) int {
	n := 0
	at := image.Pt(x, y)
	for off, t := range cb.tiles {
		p := at.Add(off)
		if m.SetTileAt(p.X, p.Y, t.Clone()) {
			n++
		}
	}
	return n
}
