// Package core provides amount parsing and formatting utilities.
//
// Amounts are carried as shopspring decimals so that sums over many
// transactions do not accumulate binary floating-point drift. Parsing only
// checks that the text is a number.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user text into an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Sign and magnitude are not checked.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("NaN")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals and a currency symbol,
// e.g. "₹1234.50" or "-₹3.00".
func FormatAmount(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Neg().StringFixed(2)
	}
	return symbol + d.StringFixed(2)
}

// FormatSigned renders an amount with an explicit sign, as used for bucket
// subtotals: "+₹10.00", "-₹4.50".
func FormatSigned(symbol string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + symbol + d.Neg().StringFixed(2)
	}
	return "+" + symbol + d.StringFixed(2)
}
