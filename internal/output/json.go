package output

import (
	"encoding/json"

	"github.com/goinupdeals/snackdeals/internal/core"
)

// JSONFormatter renders deals as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatDeals renders deals as a JSON array.
func (f *JSONFormatter) FormatDeals(deals []core.Deal) (string, error) {
	if deals == nil {
		deals = []core.Deal{}
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(deals, "", "  ")
	} else {
		data, err = json.Marshal(deals)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
