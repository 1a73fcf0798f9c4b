package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	t.Run("WholeAndFraction", func(t *testing.T) {
		cents, err := ParseCents("12.99")
		require.NoError(t, err)
		require.Equal(t, Cents(1299), cents)
	})

	t.Run("WholeOnly", func(t *testing.T) {
		cents, err := ParseCents("12")
		require.NoError(t, err)
		require.Equal(t, Cents(1200), cents)
	})

	t.Run("SingleFractionDigit", func(t *testing.T) {
		cents, err := ParseCents("12.5")
		require.NoError(t, err)
		require.Equal(t, Cents(1250), cents)
	})

	t.Run("ExtraFractionDigitsTruncated", func(t *testing.T) {
		cents, err := ParseCents("12.999")
		require.NoError(t, err)
		require.Equal(t, Cents(1299), cents)
	})

	t.Run("LeadingDot", func(t *testing.T) {
		cents, err := ParseCents(".99")
		require.NoError(t, err)
		require.Equal(t, Cents(99), cents)
	})

	t.Run("ExactNotFloat", func(t *testing.T) {
		// 0.29 is not representable in binary floating point; the string
		// path must still land exactly on 29 cents.
		cents, err := ParseCents("0.29")
		require.NoError(t, err)
		require.Equal(t, Cents(29), cents)
	})

	t.Run("Negative", func(t *testing.T) {
		cents, err := ParseCents("-3.50")
		require.NoError(t, err)
		require.Equal(t, Cents(-350), cents)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseCents("  ")
		require.Error(t, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseCents("12,99")
		require.Error(t, err)
	})
}

func TestCentsDollars(t *testing.T) {
	require.Equal(t, "12.99", Cents(1299).Dollars())
	require.Equal(t, "0.05", Cents(5).Dollars())
	require.Equal(t, "5.00", Cents(500).Dollars())
	require.Equal(t, "-3.50", Cents(-350).Dollars())
}
