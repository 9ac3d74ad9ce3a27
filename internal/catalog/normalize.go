package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Fallback chains, highest priority first. The order encodes upstream schema
// evolution and must not be reordered.
var (
	listingIDKeys     = []string{"nftId", "id", "_id", "itemId", "tokenId"}
	listingTitleKeys  = []string{"title", "name", "nftName", "itemName"}
	listingPriceKeys  = []string{"price", "currentPrice", "ethPrice", "amount"}
	listingLikeKeys   = []string{"likes", "likeCount", "favorites"}
	previewImageKeys  = []string{"nftImage", "image", "previewImage", "coverImage"}
	authorAvatarKeys  = []string{"authorImage", "creatorImage", "avatar"}
	authorIDKeys      = []string{"authorId", "author.id", "author._id", "creatorId", "creator.id", "creator.address"}
	authorNameKeys    = []string{"authorName", "creatorName", "author.name", "creator.name"}
	auctionEndKeys    = []string{"expiryDate", "expiresAt", "endDate", "auctionEndsAt", "timeEnd", "countdownEnd", "deadline"}
	profileIDKeys     = []string{"authorId", "id", "_id"}
	profileNameKeys   = []string{"authorName", "name", "username"}
	profileHandleKeys = []string{"username", "handle", "authorUsername"}
	profileWalletKeys = []string{"wallet", "walletAddress", "address", "wallet_id"}
	profileImageKeys  = []string{"authorImage", "avatar", "profileImage", "image"}
	followerKeys      = []string{"followers", "followerCount", "followersCount"}
	salesKeys         = []string{"sales", "totalSales", "amount", "price"}
	chainCodeKeys     = []string{"code", "blockchain", "chain"}
	collectionImgKeys = []string{"nftImage", "image", "cover", "banner"}
	collectionAvaKeys = []string{"authorImage", "creatorImage", "profileImage"}
)

// Numeric end times below this are seconds since epoch, not milliseconds.
const secondsEpochCutoff = 10_000_000_000

// NormalizeListing maps an arbitrary upstream record to a canonical Listing.
// It is total: any missing or malformed field resolves to its documented
// default. fallbackIndex synthesizes an id when no synonym is present.
func NormalizeListing(raw RawRecord, fallbackIndex int) Listing {
	return Listing{
		ID:              firstString(raw, listingIDKeys, "fallback-"+strconv.Itoa(fallbackIndex)),
		Title:           firstString(raw, listingTitleKeys, "Untitled"),
		PriceEth:        firstNumber(raw, listingPriceKeys),
		LikeCount:       firstCount(raw, listingLikeKeys),
		PreviewImageURL: firstString(raw, previewImageKeys, DefaultPreviewImage),
		AuthorID:        firstString(raw, authorIDKeys, ""),
		AuthorName:      firstString(raw, authorNameKeys, "Author"),
		AuthorAvatarURL: firstString(raw, authorAvatarKeys, DefaultAvatarImage),
		AuctionEndUTC:   firstInstant(raw, auctionEndKeys),
	}
}

// NormalizeProfile maps an upstream seller/creator record to a canonical
// Profile.
func NormalizeProfile(raw RawRecord) Profile {
	verified := false
	if v, ok := lookup(raw, "verified"); ok {
		verified = asBool(v)
	} else if v, ok := lookup(raw, "isVerified"); ok {
		verified = asBool(v)
	}
	return Profile{
		ID:            firstString(raw, profileIDKeys, ""),
		DisplayName:   firstString(raw, profileNameKeys, "Author"),
		Handle:        firstString(raw, profileHandleKeys, ""),
		WalletAddress: firstString(raw, profileWalletKeys, ""),
		AvatarURL:     firstString(raw, profileImageKeys, DefaultAvatarImage),
		Verified:      verified,
		FollowerCount: firstCount(raw, followerKeys),
		SalesEth:      firstNumber(raw, salesKeys),
	}
}

// NormalizeCollection maps a collection summary record.
func NormalizeCollection(raw RawRecord, fallbackIndex int) Collection {
	return Collection{
		ID:              firstString(raw, listingIDKeys, "fallback-"+strconv.Itoa(fallbackIndex)),
		Title:           firstString(raw, []string{"title", "name"}, "Untitled Collection"),
		ChainCode:       firstString(raw, chainCodeKeys, ""),
		ImageURL:        firstString(raw, collectionImgKeys, DefaultPreviewImage),
		AuthorAvatarURL: firstString(raw, collectionAvaKeys, DefaultAvatarImage),
	}
}

// NormalizeItemDetail maps a single-asset detail record, including owner and
// creator attributions.
func NormalizeItemDetail(raw RawRecord) ItemDetail {
	return ItemDetail{
		Listing:     NormalizeListing(raw, 0),
		Description: firstString(raw, []string{"description"}, ""),
		ViewCount:   firstCount(raw, []string{"views", "viewCount"}),
		Owner:       normalizeAttribution(raw, "owner"),
		Creator:     normalizeAttribution(raw, "creator"),
	}
}

func normalizeAttribution(raw RawRecord, role string) Attribution {
	return Attribution{
		ID:        firstString(raw, []string{role + ".authorId", role + ".id", role + "Id"}, ""),
		Name:      firstString(raw, []string{role + ".name", role + "Name"}, ""),
		AvatarURL: firstString(raw, []string{role + ".image", role + "Image", role + ".profileImage"}, DefaultAvatarImage),
	}
}

// lookup resolves a possibly dotted key ("author.id") against nested maps.
func lookup(raw RawRecord, key string) (any, bool) {
	if !strings.Contains(key, ".") {
		v, ok := raw[key]
		return v, ok
	}
	parts := strings.Split(key, ".")
	var cur any = map[string]any(raw)
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// firstString returns the first key that yields a non-empty string, falling
// back to def. Numeric values stringify so numeric ids stay usable.
func firstString(raw RawRecord, keys []string, def string) string {
	for _, k := range keys {
		v, ok := lookup(raw, k)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s
		}
	}
	return def
}

// firstNumber coerces the first present, non-empty key to a finite number.
// The first present value wins the chain; when it fails to coerce (or is
// NaN/Inf) the whole field is nil, it does not fall through to later keys.
func firstNumber(raw RawRecord, keys []string) *float64 {
	for _, k := range keys {
		v, ok := lookup(raw, k)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if n, ok := asNumber(v); ok {
			return &n
		}
		return nil
	}
	return nil
}

// firstCount is firstNumber floored to a non-negative int, defaulting to 0.
func firstCount(raw RawRecord, keys []string) int {
	n := firstNumber(raw, keys)
	if n == nil || *n <= 0 {
		return 0
	}
	return int(math.Floor(*n))
}

// firstInstant resolves an auction end time. Numeric values below the cutoff
// are seconds since epoch; anything that fails to parse normalizes to nil.
func firstInstant(raw RawRecord, keys []string) *time.Time {
	for _, k := range keys {
		v, ok := lookup(raw, k)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		if n, isNum := asNumber(v); isNum && n == 0 {
			continue
		}
		if t, ok := asInstant(v); ok {
			return &t
		}
		// First present key wins even when unparseable.
		return nil
	}
	return nil
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		trimmed := strings.TrimSpace(s)
		return trimmed, trimmed != ""
	case float64:
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return "", false
		}
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "true" || x == "1"
	case float64:
		return x != 0
	default:
		return false
	}
}

// instantLayouts are tried in order for string end times.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asInstant(v any) (time.Time, bool) {
	if n, ok := asNumber(v); ok {
		ms := n
		if ms < secondsEpochCutoff {
			ms *= 1000
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
