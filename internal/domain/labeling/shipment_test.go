package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIDs(t *testing.T) {
	records := []ShipmentRecord{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	assert.Equal(t, []string{"A", "B", "C"}, RecordIDs(records))
	assert.Empty(t, RecordIDs(nil))
}

func TestDuplicateIDs(t *testing.T) {
	records := []ShipmentRecord{{ID: "A"}, {ID: "B"}, {ID: "A"}, {ID: "A"}, {ID: "B"}}
	assert.Equal(t, []string{"A", "B"}, DuplicateIDs(records))
	assert.Empty(t, DuplicateIDs([]ShipmentRecord{{ID: "A"}, {ID: "B"}}))
}

func TestCodeSet_Lookup(t *testing.T) {
	codes := CodeSet{"A": {RecordID: "A", Track: "data:image/png;base64,AAA"}}

	got, ok := codes.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,AAA", got.Track)
	assert.False(t, got.IsEmpty())

	miss, ok := codes.Lookup("Z")
	assert.False(t, ok)
	assert.Equal(t, "Z", miss.RecordID)
	assert.True(t, miss.IsEmpty())

	var nilSet CodeSet
	_, ok = nilSet.Lookup("A")
	assert.False(t, ok)
}

func TestNewMargins(t *testing.T) {
	m, err := NewMargins(1, 2, 3, 4)
	assert.NoError(t, err)
	assert.Equal(t, Margins{Top: 1, Right: 2, Bottom: 3, Left: 4}, m)

	_, err = NewMargins(-1, 0, 0, 0)
	assert.Error(t, err)
	_, err = NewMargins(0, 51, 0, 0)
	assert.Error(t, err)

	assert.Equal(t, LabelMargins(), DefaultMarginsFor(PaperSizeLabel4x6))
	assert.Equal(t, SheetMargins(), DefaultMarginsFor(PaperSizeA4))
	assert.True(t, Margins{}.IsZero())
}
