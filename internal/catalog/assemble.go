package catalog

import (
	"time"

	"github.com/hexrift/nft-catalog/internal/fetch"
)

// ItemView is one render-ready listing with its countdown text for the
// current tick.
type ItemView struct {
	Listing       Listing `json:"listing"`
	CountdownText string  `json:"countdown_text,omitempty"`
}

// Page is the deterministic contract handed to any renderer: the visible
// items plus the aggregate flags a view needs.
type Page struct {
	Items        []ItemView    `json:"items"`
	IsLoading    bool          `json:"is_loading"`
	ErrorMessage string        `json:"error_message,omitempty"`
	IsEmpty      bool          `json:"is_empty"`
	CanLoadMore  bool          `json:"can_load_more"`
	TotalCount   int           `json:"total_count"`
	VisibleCount int           `json:"visible_count"`
	Sort         SortCriterion `json:"sort,omitempty"`
}

// Assemble merges fetch state, sort criterion, pagination window and the
// current tick into a Page. IsEmpty holds only for a successful fetch of a
// zero-length collection; loading and error states are never "empty".
func Assemble(state fetch.State[[]Listing], criterion SortCriterion, w Window, now time.Time) Page {
	page := Page{
		Items:        []ItemView{},
		IsLoading:    state.Phase == fetch.PhaseLoading,
		Sort:         criterion,
		VisibleCount: w.VisibleCount,
	}
	if state.Phase == fetch.PhaseError {
		page.ErrorMessage = state.Message
		return page
	}
	if state.Phase != fetch.PhaseSuccess {
		return page
	}

	sorted := Sort(state.Data, criterion)
	page.TotalCount = len(sorted)
	page.IsEmpty = len(sorted) == 0
	page.CanLoadMore = w.VisibleCount < len(sorted)

	visible := VisibleItems(sorted, w)
	page.Items = make([]ItemView, len(visible))
	for i, l := range visible {
		page.Items[i] = ItemView{Listing: l, CountdownText: Remaining(l.AuctionEndUTC, now)}
	}
	return page
}
