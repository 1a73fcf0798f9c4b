package core

import "sort"

// DefaultTopDeals is the result cap applied when the caller does not supply one.
const DefaultTopDeals = 5

// SortDeals returns a copy of deals ordered by discount percentage,
// highest first. The sort is stable: deals with equal discounts keep
// their discovery order.
func SortDeals(deals []Deal) []Deal {
	sorted := make([]Deal, len(deals))
	copy(sorted, deals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DiscountPercent > sorted[j].DiscountPercent
	})
	return sorted
}

// TopDeals sorts deals by discount and returns at most n of them.
// A non-positive n falls back to DefaultTopDeals.
func TopDeals(deals []Deal, n int) []Deal {
	if n <= 0 {
		n = DefaultTopDeals
	}

	sorted := SortDeals(deals)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
