package catalog

// CarouselSlice is the windowing contract the home carousel consumes: span
// items starting at offset, wrapping around the collection. Offsets of any
// sign are tolerated.
func CarouselSlice(items []ItemView, offset, span int) []ItemView {
	if len(items) == 0 || span <= 0 {
		return []ItemView{}
	}
	if span > len(items) {
		span = len(items)
	}
	offset %= len(items)
	if offset < 0 {
		offset += len(items)
	}
	out := make([]ItemView, 0, span)
	for i := 0; i < span; i++ {
		out = append(out, items[(offset+i)%len(items)])
	}
	return out
}
