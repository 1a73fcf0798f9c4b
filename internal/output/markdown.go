package output

import (
	"fmt"
	"strings"

	"github.com/goinupdeals/snackdeals/internal/core"
)

// MarkdownFormatter renders deals as a Markdown list.
type MarkdownFormatter struct{}

// FormatDeals renders deals as Markdown with linked titles.
func (f *MarkdownFormatter) FormatDeals(deals []core.Deal) (string, error) {
	if len(deals) == 0 {
		return "No deals found.", nil
	}

	var b strings.Builder
	b.WriteString("# Snack Deals\n\n")
	for i, deal := range deals {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, deal.Title, deal.URL)
		fmt.Fprintf(&b, "   $%s (was $%s), %d%% off\n",
			deal.Price.Dollars(), deal.OriginalPrice.Dollars(), deal.DiscountPercent)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
