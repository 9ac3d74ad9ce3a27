package catalog

import "sort"

// SortCriterion selects the ordering applied to a listing collection.
type SortCriterion string

const (
	SortDefault         SortCriterion = ""
	SortPriceAscending  SortCriterion = "price_low_to_high"
	SortPriceDescending SortCriterion = "price_high_to_low"
	SortLikesDescending SortCriterion = "likes_high_to_low"
)

// ParseSortCriterion maps a query value to a criterion; anything unknown
// falls back to the default order.
func ParseSortCriterion(s string) SortCriterion {
	switch SortCriterion(s) {
	case SortPriceAscending, SortPriceDescending, SortLikesDescending:
		return SortCriterion(s)
	default:
		return SortDefault
	}
}

func priceKey(l Listing) float64 {
	if l.PriceEth == nil {
		return 0
	}
	return *l.PriceEth
}

// Sort returns a new slice ordered by the criterion; the input is never
// mutated. The sort is stable so upstream ties (missing prices are common)
// keep their relative order.
func Sort(listings []Listing, criterion SortCriterion) []Listing {
	out := make([]Listing, len(listings))
	copy(out, listings)

	switch criterion {
	case SortPriceAscending:
		sort.SliceStable(out, func(i, j int) bool { return priceKey(out[i]) < priceKey(out[j]) })
	case SortPriceDescending:
		sort.SliceStable(out, func(i, j int) bool { return priceKey(out[i]) > priceKey(out[j]) })
	case SortLikesDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].LikeCount > out[j].LikeCount })
	}
	return out
}
