package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeePercent is the platform's share of every charge.
const FeePercent = 20

// Currencies whose minor unit equals the major unit. Amounts in these are
// sent to the processor without the ×100 shift.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// IsZeroDecimal reports whether the currency has no minor unit.
func IsZeroDecimal(currency string) bool {
	_, ok := zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))]
	return ok
}

// ToMinorUnits converts an order amount into processor minor units after
// applying the exchange rate. Fractions beyond the minor unit are rounded to
// the nearest integer.
func ToMinorUnits(amount, exchangeRate decimal.Decimal, currency string) int64 {
	converted := amount.Mul(exchangeRate)
	if !IsZeroDecimal(currency) {
		converted = converted.Shift(2)
	}
	return converted.Round(0).IntPart()
}

// PlatformFee returns the platform's cut of a minor-unit charge amount,
// rounded down.
func PlatformFee(minorUnits int64) int64 {
	if minorUnits <= 0 {
		return 0
	}
	return minorUnits * FeePercent / 100
}
