package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sjktech/odledger/internal/domain"
	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// Simulate merges the EMI schedule with the caller's events and walks the
// combined timeline once, emitting one ledger row per event plus any one-shot
// transitions crossed along the way.
//
// Date ties keep schedule order: Start first, then EMI debits, then user
// events in the order supplied. The installment is taken as given; checking a
// caller override against the computed minimum belongs to the caller.
func Simulate(terms domain.LoanTerms, installment decimal.Decimal, userEvents []domain.Event) ([]domain.LedgerRow, []domain.Transition, error) {
	if err := terms.Validate(); err != nil {
		return nil, nil, err
	}
	if !installment.IsPositive() {
		return nil, nil, apperrors.WrapInvalidTerms(fmt.Sprintf("installment must be positive, got %s", installment))
	}
	for _, ev := range userEvents {
		if err := ev.Validate(); err != nil {
			return nil, nil, err
		}
	}

	events := schedule(terms, installment)
	events = append(events, userEvents...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	run := newSimulation(terms, events[0].Date, len(events))
	for _, ev := range events {
		run.step(ev)
	}
	return run.rows, run.transitions, nil
}

// schedule builds the engine-owned events: one Start marker at disbursement
// and one EMI debit per month of tenure. Every debit date is offset from the
// disbursement date itself, so a loan disbursed on the 31st bills on month
// ends instead of drifting.
func schedule(terms domain.LoanTerms, installment decimal.Decimal) []domain.Event {
	months := terms.TenureMonths()
	events := make([]domain.Event, 0, 1+months)
	events = append(events, domain.Event{Date: terms.Disbursement, Kind: domain.EventStart, Amount: decimal.Zero})
	for k := 1; k <= months; k++ {
		events = append(events, domain.Event{
			Date:   terms.Disbursement.AddMonths(k),
			Kind:   domain.EventEMI,
			Amount: installment,
		})
	}
	return events
}

// simulation owns the mutable state of one pass. Balances hold full
// precision; rounding happens only when a row is emitted.
type simulation struct {
	dailyRate   decimal.Decimal
	outstanding decimal.Decimal
	deposit     decimal.Decimal
	accrued     decimal.Decimal

	prevDate     domain.Date
	prevAdjusted decimal.Decimal

	adjustedZeroSeen bool
	closedSeen       bool

	rows        []domain.LedgerRow
	transitions []domain.Transition
}

func newSimulation(terms domain.LoanTerms, first domain.Date, events int) *simulation {
	return &simulation{
		dailyRate:    terms.DailyRate(),
		outstanding:  terms.Principal,
		deposit:      decimal.Zero,
		accrued:      decimal.Zero,
		prevDate:     first,
		prevAdjusted: terms.Principal,
		rows:         make([]domain.LedgerRow, 0, events),
	}
}

func (s *simulation) step(ev domain.Event) {
	days := ev.Date.DaysSince(s.prevDate)
	adjusted := s.adjusted()
	s.accrued = s.accrued.Add(adjusted.Mul(s.dailyRate).Mul(decimal.NewFromInt(int64(days))))

	s.noteTransitions(ev.Date, adjusted)

	switch ev.Kind {
	case domain.EventStart:
		s.appendRow(ev.Date, ev.Kind, decimal.Zero, decimal.Zero, decimal.Zero)
	case domain.EventDeposit:
		s.deposit = s.deposit.Add(ev.Amount)
		s.appendRow(ev.Date, ev.Kind, ev.Amount, decimal.Zero, decimal.Zero)
	case domain.EventWithdraw:
		// Deposits may go negative; the shortfall raises the
		// interest-bearing balance above the outstanding principal.
		s.deposit = s.deposit.Sub(ev.Amount)
		s.appendRow(ev.Date, ev.Kind, ev.Amount, decimal.Zero, decimal.Zero)
	case domain.EventPrePay:
		s.outstanding = s.outstanding.Sub(ev.Amount)
		s.appendRow(ev.Date, ev.Kind, ev.Amount, ev.Amount, decimal.Zero)
	case domain.EventEMI:
		s.applyEMI(ev)
	}

	s.prevDate = ev.Date
	s.prevAdjusted = adjusted
}

// applyEMI splits the debit into interest first, principal second. Interest
// accrued beyond one installment defers to the next debit, leaving the
// principal portion at zero for the period. Once the loan is closed every
// further debit is a zero row.
func (s *simulation) applyEMI(ev domain.Event) {
	if s.outstanding.LessThanOrEqual(decimal.Zero) {
		s.appendRow(ev.Date, ev.Kind, decimal.Zero, decimal.Zero, decimal.Zero)
		return
	}
	interest := decimal.Min(s.accrued, ev.Amount)
	principal := ev.Amount.Sub(interest)
	s.accrued = s.accrued.Sub(interest)
	s.outstanding = s.outstanding.Sub(principal)
	s.appendRow(ev.Date, ev.Kind, ev.Amount, principal, interest)
}

// noteTransitions records first crossings, derived from pre-event state.
// Each kind fires at most once per run.
func (s *simulation) noteTransitions(date domain.Date, adjusted decimal.Decimal) {
	if !s.adjustedZeroSeen && adjusted.LessThanOrEqual(decimal.Zero) && s.prevAdjusted.IsPositive() {
		s.adjustedZeroSeen = true
		s.transitions = append(s.transitions, domain.Transition{Kind: domain.TransitionAdjustedZero, Date: date})
	}
	if !s.closedSeen && s.outstanding.LessThanOrEqual(decimal.Zero) {
		s.closedSeen = true
		s.transitions = append(s.transitions, domain.Transition{Kind: domain.TransitionLoanClosed, Date: date})
	}
}

// adjusted is the interest-bearing balance: outstanding principal net of
// deposits, floored at zero.
func (s *simulation) adjusted() decimal.Decimal {
	net := s.outstanding.Sub(s.deposit)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func (s *simulation) appendRow(date domain.Date, kind domain.EventKind, amount, principal, interest decimal.Decimal) {
	s.rows = append(s.rows, domain.LedgerRow{
		Date:        date,
		Type:        kind,
		Amount:      amount.Round(2),
		Principal:   principal.Round(2),
		Interest:    interest.Round(2),
		Outstanding: s.outstanding.Round(2),
		Deposit:     s.deposit.Round(2),
		Adjusted:    s.adjusted().Round(2),
	})
}
