package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/sjktech/odledger/pkg/errors"
)

var (
	daysInYear     = decimal.NewFromInt(365)
	percentDivisor = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
)

// LoanTerms are the immutable inputs of one loan. Amounts are decimals at
// currency precision; the rate is a yearly percentage (8.5 means 8.5%).
type LoanTerms struct {
	Principal         decimal.Decimal `json:"principal" validate:"required,decimal_gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"required,decimal_gt=0"`
	TenureYears       decimal.Decimal `json:"tenure_years" validate:"required,decimal_gt=0"`
	Disbursement      Date            `json:"disbursement_date" validate:"required"`
}

// Validate rejects non-positive terms before any computation happens.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("principal must be positive, got %s", t.Principal))
	}
	if !t.AnnualRatePercent.IsPositive() {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("annual rate must be positive, got %s", t.AnnualRatePercent))
	}
	if !t.TenureYears.IsPositive() {
		return apperrors.WrapInvalidTerms(fmt.Sprintf("tenure must be positive, got %s", t.TenureYears))
	}
	if t.Disbursement.IsZero() {
		return apperrors.WrapInvalidTerms("disbursement date is required")
	}
	return nil
}

// DailyRate is the per-day interest fraction: annual percent / 365 / 100.
func (t LoanTerms) DailyRate() decimal.Decimal {
	return t.AnnualRatePercent.Div(daysInYear).Div(percentDivisor)
}

// TenureMonths is floor(tenure years × 12), the number of scheduled EMI
// debits.
func (t LoanTerms) TenureMonths() int {
	return int(t.TenureYears.Mul(monthsPerYear).IntPart())
}
