// Package catalog normalizes loosely-typed marketplace records into one
// canonical shape and derives the presentation state (sorting, pagination
// windows, countdowns) consumed by the HTTP handlers.
package catalog

import "time"

// RawRecord is an upstream record exactly as decoded from JSON. It carries no
// invariants: fields may be missing, nested, or spelled under any of several
// synonymous keys.
type RawRecord map[string]any

// Placeholder assets served when upstream records carry no usable image.
const (
	DefaultPreviewImage = "/assets/nft-placeholder.jpg"
	DefaultAvatarImage  = "/assets/author-placeholder.jpg"
)

// Listing is the canonical asset record all views render from.
type Listing struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	PriceEth        *float64   `json:"price_eth"`
	LikeCount       int        `json:"like_count"`
	PreviewImageURL string     `json:"preview_image_url"`
	AuthorID        string     `json:"author_id,omitempty"`
	AuthorName      string     `json:"author_name"`
	AuthorAvatarURL string     `json:"author_avatar_url"`
	AuctionEndUTC   *time.Time `json:"auction_end_utc,omitempty"`
}

// Profile is the canonical seller/creator record.
type Profile struct {
	ID            string   `json:"id"`
	DisplayName   string   `json:"display_name"`
	Handle        string   `json:"handle,omitempty"`
	WalletAddress string   `json:"wallet_address,omitempty"`
	AvatarURL     string   `json:"avatar_url"`
	Verified      bool     `json:"verified"`
	FollowerCount int      `json:"follower_count"`
	SalesEth      *float64 `json:"sales_eth,omitempty"`
}

// Collection is a canonical "hot collection" summary.
type Collection struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ChainCode       string `json:"chain_code"`
	ImageURL        string `json:"image_url"`
	AuthorAvatarURL string `json:"author_avatar_url"`
}

// Attribution names the owner or creator shown on a detail page.
type Attribution struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// ItemDetail extends a Listing with the fields only the detail endpoint
// returns.
type ItemDetail struct {
	Listing
	Description string      `json:"description"`
	ViewCount   int         `json:"view_count"`
	Owner       Attribution `json:"owner"`
	Creator     Attribution `json:"creator"`
}
