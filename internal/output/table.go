package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goinupdeals/snackdeals/internal/core"
)

const tableTitleLimit = 48

// TableFormatter renders deals as an ASCII table.
type TableFormatter struct{}

// FormatDeals renders deals as a table, best discount first.
func (f *TableFormatter) FormatDeals(deals []core.Deal) (string, error) {
	if len(deals) == 0 {
		return "No deals found.", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Price", "Was", "Off", "Posted"})

	for i, deal := range deals {
		t.AppendRow(table.Row{
			i + 1,
			clipTitle(deal.Title),
			"$" + deal.Price.Dollars(),
			"$" + deal.OriginalPrice.Dollars(),
			fmt.Sprintf("%d%%", deal.DiscountPercent),
			postedLabel(deal),
		})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d deals", len(deals)), "", "", "", ""})
	return t.Render(), nil
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= tableTitleLimit {
		return title
	}
	return string(runes[:tableTitleLimit-1]) + "…"
}

func postedLabel(deal core.Deal) string {
	if deal.Posted {
		return "yes"
	}
	return "no"
}
