package catalog

import "encoding/json"

// SearchResponse is the raw catalog search payload.
//
// Every field below the top level is optional: the catalog API omits any
// node it has no data for, at any depth, so the whole tree is modeled with
// pointers and consumers must check presence before descending. Amounts are
// decoded as json.Number to keep currency values out of float64.
type SearchResponse struct {
	SearchResult *SearchResult `json:"SearchResult"`
	Errors       []APIMessage  `json:"Errors"`
}

// SearchResult holds the matched items for a query.
type SearchResult struct {
	TotalResultCount int     `json:"TotalResultCount"`
	Items            []*Item `json:"Items"`
}

// Item is one product record returned by the search endpoint.
type Item struct {
	ASIN     *string   `json:"ASIN"`
	ItemInfo *ItemInfo `json:"ItemInfo"`
	Offers   *Offers   `json:"Offers"`
	Images   *Images   `json:"Images"`
}

// ItemInfo carries display metadata for an item.
type ItemInfo struct {
	Title *DisplayValue `json:"Title"`
}

// DisplayValue wraps a localized display string.
type DisplayValue struct {
	DisplayValue *string `json:"DisplayValue"`
}

// Offers lists the purchase offers for an item.
type Offers struct {
	Listings []*Listing `json:"Listings"`
}

// Listing is a single offer. SavingBasis is the pre-discount reference
// price; when absent the listing is not actually discounted.
type Listing struct {
	Price       *Price `json:"Price"`
	SavingBasis *Price `json:"SavingBasis"`
}

// Price is a currency amount on a listing.
type Price struct {
	Amount        *json.Number `json:"Amount"`
	Currency      *string      `json:"Currency"`
	DisplayAmount *string      `json:"DisplayAmount"`
}

// Images holds the item image variants.
type Images struct {
	Primary *ImageSet `json:"Primary"`
}

// ImageSet groups the size variants of one image.
type ImageSet struct {
	Small  *ImageEntry `json:"Small"`
	Medium *ImageEntry `json:"Medium"`
	Large  *ImageEntry `json:"Large"`
}

// ImageEntry is a single hosted image.
type ImageEntry struct {
	URL    *string `json:"URL"`
	Height *int    `json:"Height"`
	Width  *int    `json:"Width"`
}

// APIMessage is an error entry embedded in a catalog response body.
type APIMessage struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}
