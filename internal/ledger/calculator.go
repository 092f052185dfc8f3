package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// powPrecision bounds the fractional exponentiation below; it matches the
// package-wide division precision of shopspring/decimal.
const powPrecision = 16

var (
	one            = decimal.NewFromInt(1)
	monthsPerYear  = decimal.NewFromInt(12)
	percentDivisor = decimal.NewFromInt(100)
)

// ComputeInstallment returns the fixed monthly installment for a loan,
// rounded to 2 decimal places:
//
//	yearly  = p * r * (1+r)^n / ((1+r)^n - 1)
//	monthly = yearly / 12
//
// where r is the annual rate as a fraction and n the tenure in years.
// Compounding is annual over the whole tenure, not monthly.
func ComputeInstallment(principal, annualRatePercent, tenureYears decimal.Decimal) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, apperrors.WrapInvalidTerms(fmt.Sprintf("principal must be positive, got %s", principal))
	}
	if !annualRatePercent.IsPositive() {
		return decimal.Zero, apperrors.WrapInvalidTerms(fmt.Sprintf("annual rate must be positive, got %s", annualRatePercent))
	}
	if !tenureYears.IsPositive() {
		return decimal.Zero, apperrors.WrapInvalidTerms(fmt.Sprintf("tenure must be positive, got %s", tenureYears))
	}

	rate := annualRatePercent.Div(percentDivisor)
	pow, err := one.Add(rate).PowWithPrecision(tenureYears, powPrecision)
	if err != nil {
		return decimal.Zero, apperrors.WrapInvalidTerms(fmt.Sprintf("cannot amortize over %s years: %v", tenureYears, err))
	}
	denominator := pow.Sub(one)
	if denominator.IsZero() {
		return decimal.Zero, apperrors.WrapInvalidTerms("amortization denominator is zero")
	}

	yearly := principal.Mul(rate).Mul(pow).Div(denominator)
	return yearly.Div(monthsPerYear).Round(2), nil
}
