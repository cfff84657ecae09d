package mapfile

import "github.com/Faultbox/illarion-mapkit/pkg/coord"

// WarpPoint is a one-way teleport from the tile holding it to Target.
type WarpPoint struct {
	Target coord.ServerCoordinate
}

// NewWarpPoint creates a warp to the given server position.
func NewWarpPoint(x, y, z int32) *WarpPoint {
	return &WarpPoint{Target: coord.NewServerCoordinate(x, y, z)}
}
