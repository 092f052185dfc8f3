package domain

import (
	"github.com/shopspring/decimal"
)

// LedgerRow is the emitted snapshot for one processed event. Monetary fields
// are rounded to 2 places at emission; rows are append-only and never mutated
// afterwards.
type LedgerRow struct {
	Date        Date            `json:"date"`
	Type        EventKind       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Outstanding decimal.Decimal `json:"outstanding_principal"`
	Deposit     decimal.Decimal `json:"deposit_balance"`
	Adjusted    decimal.Decimal `json:"adjusted_principal"`
}

// TransitionKind labels the one-shot state crossings a simulation reports.
type TransitionKind string

const (
	// TransitionAdjustedZero fires the first time the interest-bearing
	// balance reaches zero while deposits still cover the outstanding
	// principal. Callers typically surface it as "consider withdrawing
	// deposits or closing the loan".
	TransitionAdjustedZero TransitionKind = "adjusted-zero"

	// TransitionLoanClosed fires the first time the outstanding principal
	// itself reaches zero.
	TransitionLoanClosed TransitionKind = "loan-closed"
)

// Transition is a structured notification derived from simulation state.
// Each kind fires at most once per run; presentation is the caller's
// business.
type Transition struct {
	Kind TransitionKind `json:"kind"`
	Date Date           `json:"date"`
}
