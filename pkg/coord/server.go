package coord

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/illarion-mapkit/pkg/netcomm"
)

// ServerCoordinate is a tile position in the game world. Z is the level.
type ServerCoordinate struct {
	X, Y, Z int32
}

// NewServerCoordinate creates a coordinate from raw values.
func NewServerCoordinate(x, y, z int32) ServerCoordinate {
	return ServerCoordinate{X: x, Y: y, Z: z}
}

// String returns the coordinate as "(x, y, z)".
func (c ServerCoordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Add returns c moved by the given deltas.
func (c ServerCoordinate) Add(dx, dy, dz int32) ServerCoordinate {
	return ServerCoordinate{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Step returns c moved delta steps towards d. NoDirection returns c.
func (c ServerCoordinate) Step(d Direction, delta int32) ServerCoordinate {
	return c.Add(d.DX()*delta, d.DY()*delta, 0)
}

// ToMapColumn projects a server position onto the map grid column.
func ToMapColumn(x, y int32) int32 {
	return x + y
}

// ToMapRow projects a server position onto the map grid row.
func ToMapRow(x, y int32) int32 {
	return x - y
}

// ToDisplayX returns the screen x of a server position.
func ToDisplayX(g Geometry, x, y int32) int32 {
	return (x + y) * g.StepX
}

// ToDisplayY returns the screen y of a server position. Every level lifts
// the position by DisplayZOffsetMod rows.
func ToDisplayY(g Geometry, x, y, z int32) int32 {
	return -(((x - y) * g.StepY) + (DisplayZOffsetMod * z * g.StepY))
}

// ToDisplayLayer returns the render order key of a server position on the
// given layer. Higher levels and southern rows sort later.
func ToDisplayLayer(g Geometry, x, y, z int32, layer Layer) int32 {
	return ((x - y - (z * LevelDistance)) * RowDistance) - g.Offset(layer)
}

// MapCoordinate projects c onto the map grid. The level is dropped.
func (c ServerCoordinate) MapCoordinate() MapCoordinate {
	return MapCoordinate{Column: ToMapColumn(c.X, c.Y), Row: ToMapRow(c.X, c.Y)}
}

// DisplayCoordinate projects c onto the screen for the given layer.
func (c ServerCoordinate) DisplayCoordinate(g Geometry, layer Layer) DisplayCoordinate {
	return DisplayCoordinate{
		X:     ToDisplayX(g, c.X, c.Y),
		Y:     ToDisplayY(g, c.X, c.Y, c.Z),
		Layer: ToDisplayLayer(g, c.X, c.Y, c.Z, layer),
	}
}

// DisplayLayer returns only the render order key of c on layer.
func (c ServerCoordinate) DisplayLayer(g Geometry, layer Layer) int32 {
	return ToDisplayLayer(g, c.X, c.Y, c.Z, layer)
}

// DirectionTo returns the octant pointing from c towards target.
// The level is ignored. Equal x/y yields NoDirection.
func (c ServerCoordinate) DirectionTo(target ServerCoordinate) Direction {
	return NearestOctant(c.X, c.Y, target.X, target.Y)
}

// StepDistance returns the number of diagonal-inclusive steps between c and
// other, i.e. the Chebyshev distance on x/y.
func (c ServerCoordinate) StepDistance(other ServerCoordinate) int64 {
	dx := abs64(int64(c.X) - int64(other.X))
	dy := abs64(int64(c.Y) - int64(other.Y))
	return max(dx, dy)
}

// Distance returns the euclidean x/y distance between c and other.
func (c ServerCoordinate) Distance(other ServerCoordinate) float64 {
	dx := float64(c.X) - float64(other.X)
	dy := float64(c.Y) - float64(other.Y)
	return gomath.Sqrt(dx*dx + dy*dy)
}

// IsNeighbour reports whether other is on the same level and at most one
// step away on each axis. A coordinate is its own neighbour.
func (c ServerCoordinate) IsNeighbour(other ServerCoordinate) bool {
	if c.Z != other.Z {
		return false
	}
	return abs64(int64(c.X)-int64(other.X)) <= 1 && abs64(int64(c.Y)-int64(other.Y)) <= 1
}

// Encode writes c as three signed 16-bit values in x, y, z order.
// Values outside the int16 range are truncated, as the protocol has always done.
func (c ServerCoordinate) Encode(w netcomm.Writer) {
	w.WriteInt16(int16(c.X))
	w.WriteInt16(int16(c.Y))
	w.WriteInt16(int16(c.Z))
}

// DecodeServerCoordinate reads three signed 16-bit values in x, y, z order.
func DecodeServerCoordinate(r netcomm.Reader) (ServerCoordinate, error) {
	x, err := r.ReadInt16()
	if err != nil {
		return ServerCoordinate{}, fmt.Errorf("reading x: %w", err)
	}
	y, err := r.ReadInt16()
	if err != nil {
		return ServerCoordinate{}, fmt.Errorf("reading y: %w", err)
	}
	z, err := r.ReadInt16()
	if err != nil {
		return ServerCoordinate{}, fmt.Errorf("reading z: %w", err)
	}
	return ServerCoordinate{X: int32(x), Y: int32(y), Z: int32(z)}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
