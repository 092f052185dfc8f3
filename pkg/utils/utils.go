package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	lakh     = decimal.NewFromInt(100_000)
	crore    = decimal.NewFromInt(10_000_000)
)

// ParseAmount reads a monetary amount with an optional Indian unit suffix:
// "750K" (thousand), "2.5L" (lakh), "1.2Cr" (crore). Suffixes are
// case-insensitive; plain numbers pass through unchanged.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	multiplier := decimal.NewFromInt(1)

	switch upper := strings.ToUpper(raw); {
	case strings.HasSuffix(upper, "CR"):
		multiplier = crore
		raw = raw[:len(raw)-2]
	case strings.HasSuffix(upper, "L"):
		multiplier = lakh
		raw = raw[:len(raw)-1]
	case strings.HasSuffix(upper, "K"):
		multiplier = thousand
		raw = raw[:len(raw)-1]
	}

	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return value.Mul(multiplier), nil
}

// FormatShort renders an amount in the most compact Indian unit, the form
// used in report headers and statement columns: ₹1.20 Cr, ₹2.50 L,
// ₹750.00 K, ₹450.00.
func FormatShort(amount decimal.Decimal) string {
	abs := amount.Abs()
	switch {
	case abs.GreaterThanOrEqual(crore):
		return "₹" + amount.Div(crore).StringFixed(2) + " Cr"
	case abs.GreaterThanOrEqual(lakh):
		return "₹" + amount.Div(lakh).StringFixed(2) + " L"
	case abs.GreaterThanOrEqual(thousand):
		return "₹" + amount.Div(thousand).StringFixed(2) + " K"
	default:
		return "₹" + amount.StringFixed(2)
	}
}
