package coord

import (
	"fmt"
	"strings"
)

// Projection constants shared by every geometry.
const (
	// RowDistance is the display layer step between two map rows.
	RowDistance = 50
	// LevelDistance is the display layer step between two levels, in rows.
	LevelDistance = 500
	// DisplayZOffsetMod is how many map rows one level shifts the screen y.
	DisplayZOffsetMod = 6
)

// Default tile projection size in pixels (half of a 76x38 tile).
const (
	DefaultStepX = 38
	DefaultStepY = 19
)

// Layer is a render layer. Each layer subtracts its offset from the
// display layer key so that layers within one cell sort deterministically.
type Layer int

// Render layers, back to front.
const (
	LayerTiles Layer = iota
	LayerOverlays
	LayerItems
	LayerChars
	LayerEffects
	LayerLight
	layerCount
)

var layerNames = [layerCount]string{
	"tiles", "overlays", "items", "chars", "effects", "light",
}

// String returns the lowercase layer name.
func (l Layer) String() string {
	if l < 0 || l >= layerCount {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// ParseLayer resolves a layer by its name, ignoring case.
func ParseLayer(name string) (Layer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range layerNames {
		if n == name {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", name)
}

// Geometry holds the graphics constants the projections depend on.
type Geometry struct {
	StepX        int32
	StepY        int32
	LayerOffsets [layerCount]int32
}

// DefaultGeometry returns the standard 76x38 tile projection.
func DefaultGeometry() Geometry {
	return Geometry{
		StepX: DefaultStepX,
		StepY: DefaultStepY,
		LayerOffsets: [layerCount]int32{
			LayerTiles:    40,
			LayerOverlays: 39,
			LayerItems:    20,
			LayerChars:    10,
			LayerEffects:  5,
			LayerLight:    0,
		},
	}
}

// Offset returns the render offset of l. Unknown layers have offset 0.
func (g Geometry) Offset(l Layer) int32 {
	if l < 0 || l >= layerCount {
		return 0
	}
	return g.LayerOffsets[l]
}

// WithOffset returns a copy of g with the offset of l replaced.
func (g Geometry) WithOffset(l Layer, offset int32) Geometry {
	if l >= 0 && l < layerCount {
		g.LayerOffsets[l] = offset
	}
	return g
}

// Validate reports whether the step sizes are usable for reverse projection.
func (g Geometry) Validate() error {
	if g.StepX <= 0 || g.StepY <= 0 {
		return fmt.Errorf("invalid geometry steps %dx%d", g.StepX, g.StepY)
	}
	return nil
}
