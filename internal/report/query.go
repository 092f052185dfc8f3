package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sjktech/odledger/internal/domain"
	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// QueryKind names the derived queries evaluated over a row sequence.
type QueryKind string

const (
	QueryClosureDate      QueryKind = "loan_closure_date"
	QueryTotalInterest    QueryKind = "total_interest_paid"
	QueryTotalPrincipal   QueryKind = "total_principal_paid"
	QueryTotalDeposits    QueryKind = "total_deposits"
	QueryTotalWithdrawals QueryKind = "total_withdrawals"
)

// ParseQueryKind resolves a caller-supplied query token.
func ParseQueryKind(s string) (QueryKind, error) {
	kind := QueryKind(s)
	switch kind {
	case QueryClosureDate, QueryTotalInterest, QueryTotalPrincipal, QueryTotalDeposits, QueryTotalWithdrawals:
		return kind, nil
	}
	return "", apperrors.WrapInvalidQuery(fmt.Sprintf("unknown query kind %q", s))
}

func (k QueryKind) String() string { return string(k) }

// Query selects one derived computation over a row window. Zero dates leave
// that end of the window open.
type Query struct {
	Kind QueryKind   `json:"type"`
	From domain.Date `json:"from"`
	To   domain.Date `json:"to"`
}

// Result is one evaluated query. Totals set Amount; the closure query sets
// Date, leaving it nil while the loan is still open.
type Result struct {
	Kind   QueryKind        `json:"kind"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Date   *domain.Date     `json:"date,omitempty"`
}

// Evaluate runs one query over the rows. Ranged totals use the inclusive
// [from, to] window, where a zero date leaves that end open; the closure
// query ignores the window entirely.
func Evaluate(rows []domain.LedgerRow, kind QueryKind, from, to domain.Date) (Result, error) {
	switch kind {
	case QueryClosureDate:
		result := Result{Kind: kind}
		if date, ok := ClosureDate(rows); ok {
			result.Date = &date
		}
		return result, nil
	case QueryTotalInterest, QueryTotalPrincipal, QueryTotalDeposits, QueryTotalWithdrawals:
		total, err := Total(rows, kind, from, to)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: kind, Amount: &total}, nil
	}
	return Result{}, apperrors.WrapInvalidQuery(fmt.Sprintf("unknown query kind %q", kind))
}

// Total dispatches one ranged sum by kind.
func Total(rows []domain.LedgerRow, kind QueryKind, from, to domain.Date) (decimal.Decimal, error) {
	switch kind {
	case QueryTotalInterest:
		return TotalInterestPaid(rows, from, to), nil
	case QueryTotalPrincipal:
		return TotalPrincipalPaid(rows, from, to), nil
	case QueryTotalDeposits:
		return TotalDeposits(rows, from, to), nil
	case QueryTotalWithdrawals:
		return TotalWithdrawals(rows, from, to), nil
	}
	return decimal.Zero, apperrors.WrapInvalidQuery(fmt.Sprintf("%q is not a ranged total", kind))
}

// ClosureDate returns the date of the first row with no outstanding balance
// left. ok is false while the loan is still open at the end of the schedule.
func ClosureDate(rows []domain.LedgerRow) (domain.Date, bool) {
	for _, row := range rows {
		if row.Outstanding.LessThanOrEqual(decimal.Zero) {
			return row.Date, true
		}
	}
	return domain.Date{}, false
}

// AdjustedZeroDate returns the date of the first row whose interest-bearing
// balance is zero, the point where deposits fully cover the outstanding
// principal.
func AdjustedZeroDate(rows []domain.LedgerRow) (domain.Date, bool) {
	for _, row := range rows {
		if row.Adjusted.LessThanOrEqual(decimal.Zero) {
			return row.Date, true
		}
	}
	return domain.Date{}, false
}

// TotalInterestPaid sums the interest column over rows dated within [from, to].
func TotalInterestPaid(rows []domain.LedgerRow, from, to domain.Date) decimal.Decimal {
	return sumRows(rows, from, to, func(row domain.LedgerRow) decimal.Decimal {
		return row.Interest
	})
}

// TotalPrincipalPaid sums the principal column over rows dated within [from, to].
func TotalPrincipalPaid(rows []domain.LedgerRow, from, to domain.Date) decimal.Decimal {
	return sumRows(rows, from, to, func(row domain.LedgerRow) decimal.Decimal {
		return row.Principal
	})
}

// TotalDeposits sums the amounts of Deposit rows dated within [from, to].
func TotalDeposits(rows []domain.LedgerRow, from, to domain.Date) decimal.Decimal {
	return sumRows(rows, from, to, func(row domain.LedgerRow) decimal.Decimal {
		if row.Type != domain.EventDeposit {
			return decimal.Zero
		}
		return row.Amount
	})
}

// TotalWithdrawals sums the amounts of Withdraw rows dated within [from, to].
func TotalWithdrawals(rows []domain.LedgerRow, from, to domain.Date) decimal.Decimal {
	return sumRows(rows, from, to, func(row domain.LedgerRow) decimal.Decimal {
		if row.Type != domain.EventWithdraw {
			return decimal.Zero
		}
		return row.Amount
	})
}

// Summary bundles the four ranged totals of one window.
type Summary struct {
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	Deposits      decimal.Decimal `json:"deposits"`
	Withdrawals   decimal.Decimal `json:"withdrawals"`
}

// Summarize evaluates all four ranged totals in one pass over the window.
func Summarize(rows []domain.LedgerRow, from, to domain.Date) Summary {
	return Summary{
		InterestPaid:  TotalInterestPaid(rows, from, to),
		PrincipalPaid: TotalPrincipalPaid(rows, from, to),
		Deposits:      TotalDeposits(rows, from, to),
		Withdrawals:   TotalWithdrawals(rows, from, to),
	}
}

func sumRows(rows []domain.LedgerRow, from, to domain.Date, pick func(domain.LedgerRow) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if !inRange(row.Date, from, to) {
			continue
		}
		total = total.Add(pick(row))
	}
	return total
}

func inRange(date, from, to domain.Date) bool {
	if !from.IsZero() && date.Before(from) {
		return false
	}
	if !to.IsZero() && date.After(to) {
		return false
	}
	return true
}
