package netaxept

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyExponents lists ISO 4217 currencies whose minor unit is not 1/100.
var currencyExponents = map[string]int32{
	"BHD": 3,
	"CLP": 0,
	"ISK": 0,
	"JOD": 3,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"VND": 0,
}

// Exponent returns the number of minor-unit decimals for an ISO 4217 code.
func Exponent(currency string) int32 {
	if exp, ok := currencyExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return 2
}

// MinorUnits converts a major-unit amount (201.00 NOK) to the integer minor
// units the gateway expects (20100).
func MinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", amount.String())
	}
	exp := Exponent(currency)
	shifted := amount.Shift(exp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%s %s: %w", amount.String(), strings.ToUpper(currency), ErrAmountPrecision)
	}
	return shifted.IntPart(), nil
}

// MajorUnits is the inverse of MinorUnits, for display.
func MajorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}
