package catalog

// Pagination defaults shared with the explore view.
const (
	InitialVisibleCount = 8
	LoadMoreStep        = 4
)

// Window tracks how many of a sorted collection are currently revealed.
// VisibleCount only grows until the collection or sort criterion changes,
// at which point the window resets to its initial count.
type Window struct {
	Initial      int `json:"-"`
	VisibleCount int `json:"visible_count"`
}

// NewWindow returns a window revealing the first count items.
func NewWindow(count int) Window {
	if count < 1 {
		count = 1
	}
	return Window{Initial: count, VisibleCount: count}
}

// Advance reveals step more items. Clipping to the collection length happens
// at render time, so the count itself is free to exceed it.
func (w Window) Advance(step int) Window {
	if step < 0 {
		step = 0
	}
	w.VisibleCount += step
	return w
}

// Reset returns the window to its initial count. Called whenever the backing
// collection identity or the sort criterion changes.
func (w Window) Reset() Window {
	w.VisibleCount = w.Initial
	return w
}

// VisibleItems clips the collection prefix to the window.
func VisibleItems(listings []Listing, w Window) []Listing {
	n := w.VisibleCount
	if n > len(listings) {
		n = len(listings)
	}
	if n < 0 {
		n = 0
	}
	return listings[:n]
}
