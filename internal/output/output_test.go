package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goinupdeals/snackdeals/internal/core"
)

func sampleDeals() []core.Deal {
	return []core.Deal{
		{
			ASIN:            "B000TEST01",
			Title:           "Crunchy Snack Mix Variety Pack",
			Price:           800,
			OriginalPrice:   1000,
			DiscountPercent: 20,
			URL:             "https://www.amazon.com/dp/B000TEST01?tag=goinup-20",
		},
		{
			ASIN:            "B000TEST02",
			Title:           "Granola Bars 24 Count",
			Price:           550,
			OriginalPrice:   1100,
			DiscountPercent: 50,
			URL:             "https://www.amazon.com/dp/B000TEST02?tag=goinup-20",
			Posted:          true,
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	rendered, err := (&TableFormatter{}).FormatDeals(sampleDeals())
	require.NoError(t, err)

	require.Contains(t, rendered, "Crunchy Snack Mix Variety Pack")
	require.Contains(t, rendered, "$8.00")
	require.Contains(t, rendered, "$10.00")
	require.Contains(t, rendered, "50%")
	require.Contains(t, rendered, "2 deals")

	t.Run("Empty", func(t *testing.T) {
		rendered, err := (&TableFormatter{}).FormatDeals(nil)
		require.NoError(t, err)
		require.Equal(t, "No deals found.", rendered)
	})

	t.Run("LongTitlesClipped", func(t *testing.T) {
		deals := []core.Deal{{Title: strings.Repeat("x", 80), Price: 100, OriginalPrice: 200}}
		rendered, err := (&TableFormatter{}).FormatDeals(deals)
		require.NoError(t, err)
		require.NotContains(t, rendered, strings.Repeat("x", 60))
	})
}

func TestJSONFormatter(t *testing.T) {
	rendered, err := (&JSONFormatter{Indent: true}).FormatDeals(sampleDeals())
	require.NoError(t, err)

	var decoded []core.Deal
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "B000TEST01", decoded[0].ASIN)
	require.Equal(t, core.Cents(550), decoded[1].Price)

	t.Run("NilDealsRenderEmptyArray", func(t *testing.T) {
		rendered, err := (&JSONFormatter{}).FormatDeals(nil)
		require.NoError(t, err)
		require.Equal(t, "[]", rendered)
	})
}

func TestMarkdownFormatter(t *testing.T) {
	rendered, err := (&MarkdownFormatter{}).FormatDeals(sampleDeals())
	require.NoError(t, err)

	require.Contains(t, rendered, "# Snack Deals")
	require.Contains(t, rendered, "[Crunchy Snack Mix Variety Pack](https://www.amazon.com/dp/B000TEST01?tag=goinup-20)")
	require.Contains(t, rendered, "50% off")
}

func TestNewFormatter(t *testing.T) {
	require.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	require.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	require.IsType(t, &MarkdownFormatter{}, NewFormatter(FormatMarkdown))
}
