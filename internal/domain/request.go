package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SimulationRequest carries everything one run needs. The engine keeps no
// state between calls; two identical requests produce identical ledgers.
type SimulationRequest struct {
	Principal         decimal.Decimal `json:"principal" validate:"required,decimal_gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"required,decimal_gt=0"`
	TenureYears       decimal.Decimal `json:"tenure_years" validate:"required,decimal_gt=0"`
	DisbursementDate  Date            `json:"disbursement_date" validate:"required"`

	// Installment overrides the computed EMI when set. It must be at least
	// the computed minimum; paying more than required is allowed, paying
	// less is not.
	Installment *decimal.Decimal `json:"installment,omitempty" validate:"omitempty,decimal_gt=0"`

	Events []Event `json:"events,omitempty"`
}

// Terms assembles the loan terms from the flat request fields.
func (r *SimulationRequest) Terms() LoanTerms {
	return LoanTerms{
		Principal:         r.Principal,
		AnnualRatePercent: r.AnnualRatePercent,
		TenureYears:       r.TenureYears,
		Disbursement:      r.DisbursementDate,
	}
}

// Validate applies the domain rules: terms first, then every user event.
// A request that fails here produces no rows at all.
func (r *SimulationRequest) Validate() error {
	if err := r.Terms().Validate(); err != nil {
		return err
	}
	for _, ev := range r.Events {
		if err := ev.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SimulationResult is the durable output of one run: the full row sequence
// in processing order plus the derived one-shot transitions.
type SimulationResult struct {
	RunID       uuid.UUID       `json:"run_id"`
	Installment decimal.Decimal `json:"installment"`
	Rows        []LedgerRow     `json:"rows"`
	Transitions []Transition    `json:"transitions,omitempty"`

	// ClosureDate is the date of the first row whose outstanding principal
	// is zero or below; nil while the loan is still open at the end of the
	// schedule.
	ClosureDate *Date     `json:"closure_date,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
