// Package mapfile holds the editable map model and the versioned text codec
// that reads and writes it.
package mapfile

// Tile id packing. A packed id with a zero shape part is a plain base id.
const (
	tileBaseMask    = 0x001F
	tileOverlayMask = 0x03E0
	tileShapeMask   = 0xFC00

	tileOverlayShift = 5
	tileShapeShift   = 10
)

// PackTileID combines base, overlay and shape ids into the id stored in
// map files. An overlay only exists together with a shape; without a shape
// the base id is stored unchanged and the overlay is dropped.
func PackTileID(base, overlay, shape int32) int32 {
	if shape == 0 {
		return base
	}
	return (shape << tileShapeShift) | (overlay << tileOverlayShift) | (base & tileBaseMask)
}

// UnpackTileID splits a stored id into base, overlay and shape ids.
func UnpackTileID(id int32) (base, overlay, shape int32) {
	if id&tileShapeMask == 0 {
		return id, 0, 0
	}
	return id & tileBaseMask, (id & tileOverlayMask) >> tileOverlayShift, (id & tileShapeMask) >> tileShapeShift
}

// Tile is one grid cell of a map.
type Tile struct {
	BaseID    int32
	OverlayID int32
	ShapeID   int32
	MusicID   int32

	// Items in stacking order, bottom first.
	Items []*Item
	// Warp is the optional teleport leaving this tile.
	Warp *WarpPoint
	// Annotation is an editor note on the tile itself.
	Annotation string

	// raw is the id as read from the file. It is written back unchanged
	// while the parts above still unpack from it.
	raw int32
}

// NewTile creates a tile from a stored id.
func NewTile(packedID, musicID int32) *Tile {
	t := &Tile{MusicID: musicID}
	t.SetPackedID(packedID)
	return t
}

// PackedID returns the id as stored in map files. Ids that do not fit the
// packing scheme are returned verbatim until one of the parts is edited.
func (t *Tile) PackedID() int32 {
	if b, o, s := UnpackTileID(t.raw); b == t.BaseID && o == t.OverlayID && s == t.ShapeID {
		return t.raw
	}
	return PackTileID(t.BaseID, t.OverlayID, t.ShapeID)
}

// SetPackedID replaces base, overlay and shape from a stored id.
func (t *Tile) SetPackedID(id int32) {
	t.raw = id
	t.BaseID, t.OverlayID, t.ShapeID = UnpackTileID(id)
}

// AddItem puts an item on top of the stack.
func (t *Tile) AddItem(it *Item) {
	t.Items = append(t.Items, it)
}

// RemoveItem removes the item at index i. It reports false for a bad index.
func (t *Tile) RemoveItem(i int) bool {
	if i < 0 || i >= len(t.Items) {
		return false
	}
	t.Items = append(t.Items[:i], t.Items[i+1:]...)
	return true
}

// TopItem returns the topmost item or nil.
func (t *Tile) TopItem() *Item {
	if len(t.Items) == 0 {
		return nil
	}
	return t.Items[len(t.Items)-1]
}

// IsEmpty reports whether the tile carries nothing but defaults.
func (t *Tile) IsEmpty() bool {
	return t.BaseID == 0 && t.OverlayID == 0 && t.ShapeID == 0 && t.MusicID == 0 &&
		len(t.Items) == 0 && t.Warp == nil && t.Annotation == ""
}

// Clone returns a deep copy.
func (t *Tile) Clone() *Tile {
	c := *t
	if t.Items != nil {
		c.Items = make([]*Item, len(t.Items))
		for i, it := range t.Items {
			c.Items[i] = it.Clone()
		}
	}
	if t.Warp != nil {
		w := *t.Warp
		c.Warp = &w
	}
	return &c
}
