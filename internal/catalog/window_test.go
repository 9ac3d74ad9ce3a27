package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowAdvanceAndReset(t *testing.T) {
	w := NewWindow(8)
	assert.Equal(t, 8, w.VisibleCount)

	w = w.Advance(4)
	assert.Equal(t, 12, w.VisibleCount)

	w = w.Advance(4).Advance(4)
	assert.Equal(t, 20, w.VisibleCount)

	w = w.Reset()
	assert.Equal(t, 8, w.VisibleCount)
}

func TestVisibleItemsNeverExceedsCollection(t *testing.T) {
	ls := make([]Listing, 5)
	w := NewWindow(8)
	assert.Len(t, VisibleItems(ls, w), 5)

	w = w.Advance(4)
	assert.Len(t, VisibleItems(ls, w), 5)

	assert.Empty(t, VisibleItems(nil, w))
}

func TestWindowGuardsDegenerateInputs(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, 1, w.VisibleCount)

	w = w.Advance(-3)
	assert.Equal(t, 1, w.VisibleCount)
}
