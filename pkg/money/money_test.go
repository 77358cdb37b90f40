package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnitsDecimalCurrency(t *testing.T) {
	minor := ToMinorUnits(decimal.RequireFromString("19.99"), decimal.NewFromInt(1), "EUR")
	require.EqualValues(t, 1999, minor)
	require.EqualValues(t, 399, PlatformFee(minor))
}

func TestToMinorUnitsZeroDecimalCurrency(t *testing.T) {
	minor := ToMinorUnits(decimal.NewFromInt(1000), decimal.NewFromInt(1), "JPY")
	require.EqualValues(t, 1000, minor)
	require.EqualValues(t, 200, PlatformFee(minor))
}

func TestToMinorUnitsAppliesExchangeRate(t *testing.T) {
	minor := ToMinorUnits(decimal.RequireFromString("10.00"), decimal.RequireFromString("1.25"), "USD")
	require.EqualValues(t, 1250, minor)
}

func TestToMinorUnitsRoundsSubMinorFractions(t *testing.T) {
	// 10.00 × 1.0055 = 10.055 → 1005.5 cents rounds up.
	minor := ToMinorUnits(decimal.RequireFromString("10.00"), decimal.RequireFromString("1.0055"), "USD")
	require.EqualValues(t, 1006, minor)

	// 9.99 × 1.1131 = 11.119869 → 1111.9869 cents rounds up as well.
	minor = ToMinorUnits(decimal.RequireFromString("9.99"), decimal.RequireFromString("1.1131"), "USD")
	require.EqualValues(t, 1112, minor)

	// Fractions below the half-cent round down.
	minor = ToMinorUnits(decimal.RequireFromString("10.00"), decimal.RequireFromString("1.0044"), "USD")
	require.EqualValues(t, 1004, minor)
}

func TestPlatformFeeFloors(t *testing.T) {
	require.EqualValues(t, 0, PlatformFee(0))
	require.EqualValues(t, 0, PlatformFee(4))
	require.EqualValues(t, 1, PlatformFee(5))
	require.EqualValues(t, 19, PlatformFee(99))
}

func TestIsZeroDecimalNormalizesInput(t *testing.T) {
	require.True(t, IsZeroDecimal("jpy"))
	require.True(t, IsZeroDecimal(" KRW "))
	require.False(t, IsZeroDecimal("EUR"))
}
