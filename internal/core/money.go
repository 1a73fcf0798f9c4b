package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a currency amount in the lowest denomination. All price math in
// the pipeline runs on integer cents so currency values never round through
// binary floating point.
type Cents int64

// ParseCents converts a decimal currency string (as returned by the catalog
// API, e.g. "12.99") into cents. Fraction digits beyond two are truncated.
func ParseCents(value string) (Cents, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	hundredths, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	cents := units*100 + hundredths
	if negative {
		cents = -cents
	}
	return Cents(cents), nil
}

// Dollars renders the amount as a plain decimal string without a currency
// symbol, e.g. 1299 -> "12.99".
func (c Cents) Dollars() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
