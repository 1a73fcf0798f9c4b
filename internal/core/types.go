package core

import "time"

// Deal is a normalized discounted product found by a catalog sweep.
//
// A Deal is only ever constructed when the catalog item carried a savings
// basis ("was" price); items without a discount basis are dropped during
// extraction rather than represented with a zero basis.
type Deal struct {
	ASIN            string     `json:"asin"`
	Title           string     `json:"title"`
	Price           Cents      `json:"price_cents"`
	OriginalPrice   Cents      `json:"original_price_cents"`
	DiscountPercent int        `json:"discount_percent"`
	URL             string     `json:"url"`
	ImageURL        string     `json:"image_url,omitempty"`
	Posted          bool       `json:"posted"`
	CreatedAt       time.Time  `json:"created_at"`
	PostedAt        *time.Time `json:"posted_at,omitempty"`
}
