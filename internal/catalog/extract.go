package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/core"
)

const (
	defaultMarketplace = "https://www.amazon.com"
	defaultTitle       = "Unknown Product"
	defaultASIN        = "unknown"
)

// Extractor maps raw catalog items to normalized deals.
//
// Extraction never fails a batch: items missing required fields are dropped,
// malformed items are logged and skipped, optional fields fall back to
// placeholders. MinDiscount is re-checked here even though the upstream
// query already filtered on it; upstream filtering is not trusted.
type Extractor struct {
	MarketplaceURL string
	ReferralTag    string
	MinDiscount    int
	Logger         *logging.Logger
	Clock          func() time.Time
}

// Deals extracts every qualifying deal from a search response.
func (e *Extractor) Deals(resp *SearchResponse) []core.Deal {
	if e == nil || resp == nil || resp.SearchResult == nil {
		return nil
	}

	deals := make([]core.Deal, 0, len(resp.SearchResult.Items))
	for _, item := range resp.SearchResult.Items {
		deal, ok := e.extract(item)
		if !ok {
			continue
		}
		deals = append(deals, deal)
	}
	return deals
}

// extract maps one raw item, reporting false when the item is dropped.
func (e *Extractor) extract(item *Item) (core.Deal, bool) {
	if item == nil {
		return core.Deal{}, false
	}

	listing := firstListing(item)
	if listing == nil {
		e.debug("item has no offer listings", item)
		return core.Deal{}, false
	}

	price, ok := amountCents(listing.Price)
	if !ok {
		e.debug("listing has no current price", item)
		return core.Deal{}, false
	}

	// No savings basis means no discount to measure; the item is not a deal.
	original, ok := amountCents(listing.SavingBasis)
	if !ok {
		e.debug("listing has no savings basis", item)
		return core.Deal{}, false
	}

	discount := core.Discount(price, original)
	if discount < e.MinDiscount {
		e.debug(fmt.Sprintf("discount %d%% below threshold", discount), item)
		return core.Deal{}, false
	}

	asin := itemASIN(item)
	deal := core.Deal{
		ASIN:            asin,
		Title:           itemTitle(item),
		Price:           price,
		OriginalPrice:   original,
		DiscountPercent: discount,
		URL:             e.detailURL(asin),
		ImageURL:        itemImageURL(item),
		CreatedAt:       e.now(),
	}
	return deal, true
}

func (e *Extractor) detailURL(asin string) string {
	base := strings.TrimRight(e.MarketplaceURL, "/")
	if base == "" {
		base = defaultMarketplace
	}
	return fmt.Sprintf("%s/dp/%s?tag=%s", base, asin, e.ReferralTag)
}

func (e *Extractor) debug(reason string, item *Item) {
	if e == nil || e.Logger == nil {
		return
	}
	e.Logger.Debug("Dropping catalog item",
		zap.String("asin", itemASIN(item)),
		zap.String("reason", reason))
}

func (e *Extractor) now() time.Time {
	if e != nil && e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}

func firstListing(item *Item) *Listing {
	if item.Offers == nil || len(item.Offers.Listings) == 0 {
		return nil
	}
	return item.Offers.Listings[0]
}

// amountCents reads a price amount, reporting false when the price node,
// its amount, or a parseable value is absent. Unparseable amounts count as
// malformed and drop the item rather than aborting the batch.
func amountCents(price *Price) (core.Cents, bool) {
	if price == nil || price.Amount == nil {
		return 0, false
	}

	cents, err := core.ParseCents(price.Amount.String())
	if err != nil {
		return 0, false
	}
	return cents, true
}

func itemASIN(item *Item) string {
	if item == nil || item.ASIN == nil || strings.TrimSpace(*item.ASIN) == "" {
		return defaultASIN
	}
	return strings.TrimSpace(*item.ASIN)
}

func itemTitle(item *Item) string {
	if item.ItemInfo == nil || item.ItemInfo.Title == nil || item.ItemInfo.Title.DisplayValue == nil {
		return defaultTitle
	}
	title := strings.TrimSpace(*item.ItemInfo.Title.DisplayValue)
	if title == "" {
		return defaultTitle
	}
	return title
}

func itemImageURL(item *Item) string {
	if item.Images == nil || item.Images.Primary == nil {
		return ""
	}
	entry := item.Images.Primary.Medium
	if entry == nil {
		entry = item.Images.Primary.Large
	}
	if entry == nil || entry.URL == nil {
		return ""
	}
	return *entry.URL
}
