package domain

import (
	"fmt"
	"strings"
	"time"
)

// Ledger dates are calendar days. Input accepts the short dd-mm-yy form used
// on intake forms as well as the full form; every emitted row uses the full
// dd-mm-yyyy form.
const (
	DateLayout      = "02-01-2006"
	DateShortLayout = "02-01-06"
)

// Date is a calendar day pinned to UTC midnight. Time-of-day never
// participates in ledger arithmetic.
type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts dd-mm-yyyy or dd-mm-yy.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, DateShortLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: want %s or %s", s, DateLayout, DateShortLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.t.AddDate(0, 0, n))
}

// AddMonths returns the date n months later, clamping to the last day of the
// target month (31 Jan + 1 month = 28/29 Feb). Schedules offset every month
// from the same anchor date, so a loan disbursed on the 31st bills on month
// ends rather than drifting.
func (d Date) AddMonths(n int) Date {
	year, month, day := d.t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// DaysSince returns the whole-day gap d − other. Negative when d precedes
// other.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time exposes the underlying instant (UTC midnight).
func (d Date) Time() time.Time { return d.t }

// String formats as dd-mm-yyyy, the form shown on every ledger row.
func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
