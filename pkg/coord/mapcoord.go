package coord

import (
	"fmt"
	gomath "math"
)

// MapCoordinate is a column/row position on the isometric map grid.
type MapCoordinate struct {
	Column, Row int32
}

// String returns the coordinate as "[column, row]".
func (m MapCoordinate) String() string {
	return fmt.Sprintf("[%d, %d]", m.Column, m.Row)
}

// ToServer lifts m back into server space on the given level.
//
// Grid positions projected from server space always have column and row of
// equal parity and convert back exactly. For mixed parity the column is kept
// and the row comes back one lower, so the error is at most one row.
func (m MapCoordinate) ToServer(level int32) ServerCoordinate {
	sum := int64(m.Column) + int64(m.Row)
	x := floorDiv2(sum)
	y := int64(m.Column) - x
	return ServerCoordinate{X: int32(x), Y: int32(y), Z: level}
}

// ToDisplay projects m onto the screen for a level and layer.
func (m MapCoordinate) ToDisplay(g Geometry, level int32, layer Layer) DisplayCoordinate {
	return DisplayCoordinate{
		X:     m.Column * g.StepX,
		Y:     -((m.Row * g.StepY) + (DisplayZOffsetMod * level * g.StepY)),
		Layer: ((m.Row - (level * LevelDistance)) * RowDistance) - g.Offset(layer),
	}
}

// DisplayCoordinate is a screen pixel position plus a render order key.
type DisplayCoordinate struct {
	X, Y  int32
	Layer int32
}

// String returns the coordinate as "<x, y @layer>".
func (d DisplayCoordinate) String() string {
	return fmt.Sprintf("<%d, %d @%d>", d.X, d.Y, d.Layer)
}

// ToMap returns the grid cell nearest to the pixel position, assuming the
// position lies on the given level. g must have positive steps.
func (d DisplayCoordinate) ToMap(g Geometry, level int32) MapCoordinate {
	column := roundHalfAway(float64(d.X) / float64(g.StepX))
	row := roundHalfAway(-float64(d.Y)/float64(g.StepY)) - int64(DisplayZOffsetMod)*int64(level)
	return MapCoordinate{Column: int32(column), Row: int32(row)}
}

// ToServer returns the server tile nearest to the pixel position on level.
func (d DisplayCoordinate) ToServer(g Geometry, level int32) ServerCoordinate {
	return d.ToMap(g, level).ToServer(level)
}

// Add returns d shifted by the pixel offset. The layer is unchanged.
func (d DisplayCoordinate) Add(dx, dy int32) DisplayCoordinate {
	return DisplayCoordinate{X: d.X + dx, Y: d.Y + dy, Layer: d.Layer}
}

// roundHalfAway rounds to the nearest integer, halves away from zero.
func roundHalfAway(v float64) int64 {
	return int64(gomath.Round(v))
}

func floorDiv2(v int64) int64 {
	if v < 0 {
		return -((-v + 1) / 2)
	}
	return v / 2
}
