package mapfile

import "slices"

// Item quality values.
const (
	// QualityNone marks an item without a recorded quality.
	QualityNone = -1
	// QualityDefault is written for items without a recorded quality.
	QualityDefault = 333
)

// Item is an item lying on a tile.
type Item struct {
	ID int32
	// QualityDurability packs quality*100 + durability.
	QualityDurability int32
	// Data holds the raw data tokens in file order.
	Data       []string
	Annotation string
}

// NewItem creates an item with the given packed quality.
func NewItem(id, qualityDurability int32) *Item {
	return &Item{ID: id, QualityDurability: qualityDurability}
}

// Quality returns the quality part of the packed value.
func (it *Item) Quality() int32 {
	if it.QualityDurability < 0 {
		return QualityNone
	}
	return it.QualityDurability / 100
}

// Durability returns the durability part of the packed value.
func (it *Item) Durability() int32 {
	if it.QualityDurability < 0 {
		return 0
	}
	return it.QualityDurability % 100
}

// SetQuality sets quality and durability.
func (it *Item) SetQuality(quality, durability int32) {
	it.QualityDurability = quality*100 + durability
}

// storedQuality returns the value written to map files.
func (it *Item) storedQuality() int32 {
	if it.QualityDurability == QualityNone {
		return QualityDefault
	}
	return it.QualityDurability
}

// Equal compares items by id only. Selection and de-duplication in the
// editor rely on this, so quality, data and annotation are ignored.
func (it *Item) Equal(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.ID == other.ID
}

// Identical compares every field.
func (it *Item) Identical(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.ID == other.ID &&
		it.QualityDurability == other.QualityDurability &&
		it.Annotation == other.Annotation &&
		slices.Equal(it.Data, other.Data)
}

// Clone returns a deep copy.
func (it *Item) Clone() *Item {
	c := *it
	c.Data = slices.Clone(it.Data)
	return &c
}
