// Package period models a billing/generation period: a single calendar month
// identified by its "YYYY-MM" key.
package period

import (
	"fmt"
	"time"
)

// Period is a calendar month. The zero value is not a valid period.
type Period struct {
	Year  int
	Month time.Month
}

// Of returns the period containing t.
func Of(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Parse parses a "YYYY-MM" key.
func Parse(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period key %q: %w", key, err)
	}

	return Of(t), nil
}

// Key returns the "YYYY-MM" form, the format used for stored period keys.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on the last day of the month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether t falls within the month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}

	return p.Month < q.Month
}

// Next returns the following month.
func (p Period) Next() Period {
	return Of(p.Start().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	return Of(p.Start().AddDate(0, -1, 0))
}

func (p Period) String() string {
	return p.Key()
}
