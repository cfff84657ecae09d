// Package coord provides the game world coordinate systems: server tile
// positions, isometric map grid positions and screen display positions,
// plus the eight compass directions used for facing and movement.
package coord

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/illarion-mapkit/pkg/netcomm"
)

// Direction is one of the eight compass octants. The numeric value is the
// wire code sent to and received from the server.
type Direction int8

// Directions in wire order.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// NoDirection marks the absence of a direction.
const NoDirection Direction = -1

// NoDirectionWireCode is the reserved wire code for NoDirection.
const NoDirectionWireCode = 0x0A

// directionCount is the number of real directions.
const directionCount = 8

// Unit steps per direction. Server y grows towards the south.
var directionSteps = [directionCount][2]int32{
	North:     {0, -1},
	NorthEast: {1, -1},
	East:      {1, 0},
	SouthEast: {1, 1},
	South:     {0, 1},
	SouthWest: {-1, 1},
	West:      {-1, 0},
	NorthWest: {-1, -1},
}

var directionNames = [directionCount]string{
	"North", "NorthEast", "East", "SouthEast",
	"South", "SouthWest", "West", "NorthWest",
}

// Directions returns all eight directions in wire order.
func Directions() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}

// Valid reports whether d is one of the eight real directions.
func (d Direction) Valid() bool {
	return d >= North && d <= NorthWest
}

// String returns the direction name.
func (d Direction) String() string {
	if !d.Valid() {
		if d == NoDirection {
			return "None"
		}
		return fmt.Sprintf("Direction(%d)", int8(d))
	}
	return directionNames[d]
}

// DX returns the x component of the unit step.
func (d Direction) DX() int32 {
	if !d.Valid() {
		return 0
	}
	return directionSteps[d][0]
}

// DY returns the y component of the unit step.
func (d Direction) DY() int32 {
	if !d.Valid() {
		return 0
	}
	return directionSteps[d][1]
}

// IsDiagonal reports whether both step components are non-zero.
func (d Direction) IsDiagonal() bool {
	return d.DX() != 0 && d.DY() != 0
}

// Reverse returns the opposite direction. NoDirection stays NoDirection.
func (d Direction) Reverse() Direction {
	if !d.Valid() {
		return NoDirection
	}
	return (d + 4) % directionCount
}

// WireCode returns the protocol code for d.
func (d Direction) WireCode() int {
	if !d.Valid() {
		return NoDirectionWireCode
	}
	return int(d)
}

// FromWireCode maps a protocol code to a direction.
// ok is false for the reserved no-direction code and for any unknown code.
func FromWireCode(code int) (d Direction, ok bool) {
	for _, candidate := range Directions() {
		if int(candidate) == code {
			return candidate, true
		}
	}
	return NoDirection, false
}

// EncodeDirection writes d as a single byte.
func EncodeDirection(w netcomm.Writer, d Direction) {
	w.WriteUint8(uint8(d.WireCode()))
}

// DecodeDirection reads a direction byte. Unknown codes decode to
// NoDirection without error; only a short read fails.
func DecodeDirection(r netcomm.Reader) (Direction, error) {
	code, err := r.ReadUint8()
	if err != nil {
		return NoDirection, fmt.Errorf("reading direction: %w", err)
	}
	d, _ := FromWireCode(int(code))
	return d, nil
}

// octantSlices maps each of the 17 possible pi/8 slices of [0, 2pi] to a
// direction. Slice 0 and 16 both sit on the east axis.
var octantSlices = [17]Direction{
	East,
	SouthEast, SouthEast,
	South, South,
	SouthWest, SouthWest,
	West, West,
	NorthWest, NorthWest,
	North, North,
	NorthEast, NorthEast,
	East, East,
}

// NearestOctant returns the direction from origin towards target, quantized
// to the nearest of the eight octants. Equal points yield NoDirection.
func NearestOctant(originX, originY, targetX, targetY int32) Direction {
	dx := float64(originX) - float64(targetX)
	dy := float64(originY) - float64(targetY)
	if dx == 0 && dy == 0 {
		return NoDirection
	}

	theta := gomath.Atan2(dy, dx) + gomath.Pi
	slice := int(theta / (gomath.Pi / 8))
	if slice < 0 {
		slice = 0
	}
	if slice >= len(octantSlices) {
		slice = len(octantSlices) - 1
	}
	return octantSlices[slice]
}
