package catalog

// Upstream endpoints disagree on response envelopes: some return a bare
// array, some wrap in {data: ...}, and a few nest arrays two levels deep
// under data. The unwrappers below tolerate every observed combination and
// never fail; an unrecognized shape degrades to an empty result.

// Author asset collections hide under one of these keys, first match wins.
var itemContainerKeys = []string{"nftCollection", "items", "nfts", "authorItems", "created", "collections"}

// data envelopes are peeled at most this many times.
const maxUnwrapDepth = 2

func peelData(body any) any {
	for i := 0; i < maxUnwrapDepth; i++ {
		m, ok := body.(map[string]any)
		if !ok {
			return body
		}
		inner, ok := m["data"]
		if !ok {
			return body
		}
		body = inner
	}
	return body
}

func toRecords(v any) []RawRecord {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RawRecord, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, RawRecord(m))
		}
	}
	return out
}

// UnwrapCollection extracts the record array from a collection endpoint body.
func UnwrapCollection(body any) []RawRecord {
	return toRecords(peelData(body))
}

// UnwrapEntity extracts the single record from a single-entity endpoint body:
// first element of an array (wrapped or bare), or the object itself.
func UnwrapEntity(body any) RawRecord {
	v := peelData(body)
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		v = arr[0]
	}
	if m, ok := v.(map[string]any); ok {
		return RawRecord(m)
	}
	return nil
}

// UnwrapRanked handles ranked-list bodies, which may additionally wrap the
// array under a topSellers key.
func UnwrapRanked(body any) []RawRecord {
	v := peelData(body)
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["topSellers"]; ok {
			v = inner
		}
	}
	return toRecords(v)
}

// ExtractItems pulls an author's asset records out of a profile entity.
func ExtractItems(entity RawRecord) []RawRecord {
	if entity == nil {
		return nil
	}
	for _, key := range itemContainerKeys {
		v, ok := entity[key]
		if !ok {
			continue
		}
		if recs := toRecords(v); recs != nil {
			return recs
		}
	}
	return nil
}

// NormalizeListings runs NormalizeListing across a record array, preserving
// order. Indexes feed the fallback-id synthesis.
func NormalizeListings(records []RawRecord) []Listing {
	out := make([]Listing, len(records))
	for i, r := range records {
		out[i] = NormalizeListing(r, i)
	}
	return out
}

// NormalizeProfiles runs NormalizeProfile across a record array.
func NormalizeProfiles(records []RawRecord) []Profile {
	out := make([]Profile, len(records))
	for i, r := range records {
		out[i] = NormalizeProfile(r)
	}
	return out
}

// NormalizeCollections runs NormalizeCollection across a record array.
func NormalizeCollections(records []RawRecord) []Collection {
	out := make([]Collection, len(records))
	for i, r := range records {
		out[i] = NormalizeCollection(r, i)
	}
	return out
}
