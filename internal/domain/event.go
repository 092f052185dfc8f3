package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// EventKind is the closed set of ledger event types. Start and EMI events are
// generated by the engine; the remaining three arrive from callers.
type EventKind string

const (
	EventStart    EventKind = "Start"
	EventEMI      EventKind = "EMI"
	EventDeposit  EventKind = "Deposit"
	EventWithdraw EventKind = "Withdraw"
	EventPrePay   EventKind = "Pre-Pay"
)

// ParseEventKind resolves a caller-supplied kind string.
func ParseEventKind(s string) (EventKind, error) {
	kind := EventKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown event kind %q", s)
	}
	return kind, nil
}

// Valid reports whether the kind is one of the five ledger event types.
func (k EventKind) Valid() bool {
	switch k {
	case EventStart, EventEMI, EventDeposit, EventWithdraw, EventPrePay:
		return true
	}
	return false
}

// UserSupplied reports whether callers may schedule this kind themselves.
// Start and EMI events belong to the engine.
func (k EventKind) UserSupplied() bool {
	switch k {
	case EventDeposit, EventWithdraw, EventPrePay:
		return true
	}
	return false
}

func (k EventKind) String() string { return string(k) }

// Event is a dated ledger entry to be merged into one simulation pass.
// Events are inputs only; they carry no state of their own.
type Event struct {
	Date   Date            `json:"date"`
	Kind   EventKind       `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// Validate gates a caller-supplied event before it enters the event list.
// Rejected events never reach the simulation pass.
func (e Event) Validate() error {
	if !e.Kind.UserSupplied() {
		return apperrors.WrapInvalidEvent(fmt.Sprintf("event kind %q cannot be supplied by callers", e.Kind))
	}
	if e.Date.IsZero() {
		return apperrors.WrapInvalidEvent(fmt.Sprintf("%s event has no date", e.Kind))
	}
	if !e.Amount.IsPositive() {
		return apperrors.WrapInvalidEvent(fmt.Sprintf("%s event amount must be positive, got %s", e.Kind, e.Amount))
	}
	return nil
}
