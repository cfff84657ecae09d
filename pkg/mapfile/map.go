package mapfile

import (
	"fmt"

	"github.com/Faultbox/illarion-mapkit/pkg/coord"
)

// Map is an editable rectangular piece of the game world on one level.
// Cells are addressed by local x/y relative to the origin.
//
// A Map is not safe for concurrent mutation; one editor owns it at a time.
type Map struct {
	Name string
	Dir  string

	Width   int
	Height  int
	OriginX int32
	OriginY int32
	Level   int32

	// tiles is row-major, len == Width*Height. nil entries are untouched cells.
	tiles     []*Tile
	selection *Selection
}

// MaxCells bounds width*height of a single map.
const MaxCells = 1 << 24

// New creates an empty map.
func New(name string, width, height int, originX, originY, level int32) (*Map, error) {
	if width <= 0 || height <= 0 || int64(width)*int64(height) > MaxCells {
		return nil, fmt.Errorf("invalid map dimensions: %dx%d", width, height)
	}
	return &Map{
		Name:      name,
		Width:     width,
		Height:    height,
		OriginX:   originX,
		OriginY:   originY,
		Level:     level,
		tiles:     make([]*Tile, width*height),
		selection: NewSelection(),
	}, nil
}

// Contains reports whether the local cell lies inside the map.
func (m *Map) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

func (m *Map) index(x, y int) int {
	return y*m.Width + x
}

// TileAt returns the tile at a local cell, creating an empty tile on first
// access. Returns nil if the cell is out of bounds.
func (m *Map) TileAt(x, y int) *Tile {
	if !m.Contains(x, y) {
		return nil
	}
	i := m.index(x, y)
	if m.tiles[i] == nil {
		m.tiles[i] = &Tile{}
	}
	return m.tiles[i]
}

// PeekTile returns the tile at a local cell without creating it.
// Returns nil for untouched or out of bounds cells.
func (m *Map) PeekTile(x, y int) *Tile {
	if !m.Contains(x, y) {
		return nil
	}
	return m.tiles[m.index(x, y)]
}

// SetTileAt replaces the tile at a local cell. It reports false if the
// cell is out of bounds.
func (m *Map) SetTileAt(x, y int, t *Tile) bool {
	if !m.Contains(x, y) {
		return false
	}
	m.tiles[m.index(x, y)] = t
	return true
}

// Each calls fn for every created tile in row-major order.
func (m *Map) Each(fn func(x, y int, t *Tile)) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if t := m.tiles[m.index(x, y)]; t != nil {
				fn(x, y, t)
			}
		}
	}
}

// Origin returns the server position of local cell (0, 0).
func (m *Map) Origin() coord.ServerCoordinate {
	return coord.NewServerCoordinate(m.OriginX, m.OriginY, m.Level)
}

// Global converts a local cell to a server position.
func (m *Map) Global(x, y int) coord.ServerCoordinate {
	return coord.NewServerCoordinate(m.OriginX+int32(x), m.OriginY+int32(y), m.Level)
}

// Local converts a server position to a local cell. ok is false if the
// position is on another level or outside the map.
func (m *Map) Local(c coord.ServerCoordinate) (x, y int, ok bool) {
	if c.Z != m.Level {
		return 0, 0, false
	}
	x = int(int64(c.X) - int64(m.OriginX))
	y = int(int64(c.Y) - int64(m.OriginY))
	if !m.Contains(x, y) {
		return 0, 0, false
	}
	return x, y, true
}

// ContainsGlobal reports whether a server position lies on this map.
func (m *Map) ContainsGlobal(c coord.ServerCoordinate) bool {
	_, _, ok := m.Local(c)
	return ok
}

// TileAtGlobal returns the tile at a server position, or nil.
func (m *Map) TileAtGlobal(c coord.ServerCoordinate) *Tile {
	x, y, ok := m.Local(c)
	if !ok {
		return nil
	}
	return m.TileAt(x, y)
}

// Selection returns the editor selection of this map.
func (m *Map) Selection() *Selection {
	return m.selection
}

// Stats counts the content of the map.
type Stats struct {
	Tiles       int
	Items       int
	Warps       int
	Annotations int
}

// Stats returns content counts. Annotations cover tiles and items.
func (m *Map) Stats() Stats {
	var s Stats
	m.Each(func(_, _ int, t *Tile) {
		s.Tiles++
		s.Items += len(t.Items)
		if t.Warp != nil {
			s.Warps++
		}
		if t.Annotation != "" {
			s.Annotations++
		}
		for _, it := range t.Items {
			if it.Annotation != "" {
				s.Annotations++
			}
		}
	})
	return s
}
