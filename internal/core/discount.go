package core

// Discount computes the integer percentage drop from original to current
// price, floored. Degenerate inputs (either amount not strictly positive)
// yield 0, as does a current price at or above the original. The result is
// always in [0, 100).
func Discount(current, original Cents) int {
	if original <= 0 || current <= 0 {
		return 0
	}

	pct := (int64(original) - int64(current)) * 100 / int64(original)
	if pct < 0 {
		return 0
	}
	return int(pct)
}
