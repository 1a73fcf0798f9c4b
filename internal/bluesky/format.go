package bluesky

import (
	"fmt"
	"strings"

	"github.com/goinupdeals/snackdeals/internal/core"
)

const (
	maxTitleLength = 50

	facetType     = "app.bsky.richtext.facet"
	facetLinkType = "app.bsky.richtext.facet#link"
	imagesType    = "app.bsky.embed.images"
)

// Facet marks a byte range of post text as rich content.
type Facet struct {
	Type     string         `json:"$type"`
	Index    ByteSlice      `json:"index"`
	Features []FacetFeature `json:"features"`
}

// ByteSlice addresses a range of the post text in bytes, not runes.
type ByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

// FacetFeature is a link feature within a facet.
type FacetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
}

// ImageEmbed attaches uploaded images to a post.
type ImageEmbed struct {
	Type   string          `json:"$type"`
	Images []EmbeddedImage `json:"images"`
}

// EmbeddedImage pairs an uploaded blob reference with alt text.
type EmbeddedImage struct {
	Alt   string `json:"alt"`
	Image any    `json:"image"`
}

// TruncateTitle shortens long product titles for post text. Counting is
// rune-aware so multi-byte titles are not cut mid-character.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}
	return string(runes[:maxTitleLength-3]) + "..."
}

// FormatPost renders the announcement text for a deal along with the facet
// that makes the product link clickable.
func FormatPost(deal core.Deal) (string, []Facet) {
	title := TruncateTitle(deal.Title)

	text := fmt.Sprintf(
		"🔥 PRICES GOIN UP SOON! 🔥\n\n"+
			"**%s**\n\n"+
			"Now: $%s (was $%s)\n"+
			"%d%% OFF!\n\n"+
			"Grab it while it's hot! %s\n\n"+
			"#GoinUPDeals #AmazonDeals #DealAlert",
		title, deal.Price.Dollars(), deal.OriginalPrice.Dollars(),
		deal.DiscountPercent, deal.URL)

	return text, LinkFacets(text, deal.URL)
}

// LinkFacets builds a link facet for the first occurrence of url in text.
// It returns nil when the URL does not appear so the post still renders.
func LinkFacets(text, url string) []Facet {
	if url == "" {
		return nil
	}
	start := strings.Index(text, url)
	if start < 0 {
		return nil
	}

	return []Facet{{
		Type:  facetType,
		Index: ByteSlice{ByteStart: start, ByteEnd: start + len(url)},
		Features: []FacetFeature{{
			Type: facetLinkType,
			URI:  url,
		}},
	}}
}

// NewImageEmbed wraps an uploaded blob as a single-image embed.
func NewImageEmbed(blob any, alt string) *ImageEmbed {
	return &ImageEmbed{
		Type:   imagesType,
		Images: []EmbeddedImage{{Alt: alt, Image: blob}},
	}
}
