package balance

import (
	"time"

	"github.com/lucasblanco/caja/internal/period"
)

// FilterKind selects the granularity of the active period filter.
type FilterKind string

const (
	FilterAll     FilterKind = "all"
	FilterYear    FilterKind = "year"
	FilterQuarter FilterKind = "quarter"
	FilterMonth   FilterKind = "month"
)

// Filter is the active reporting window. The zero value filters nothing
// (kind "all" behavior).
type Filter struct {
	Kind    FilterKind
	Year    int
	Month   time.Month
	Quarter int // 1..4, used by FilterQuarter
}

// MonthFilter returns a filter for a single calendar month.
func MonthFilter(p period.Period) Filter {
	return Filter{Kind: FilterMonth, Year: p.Year, Month: p.Month}
}

// Range returns the filter's inclusive date bounds. ok is false for the
// unbounded "all" filter.
func (f Filter) Range() (start, end time.Time, ok bool) {
	switch f.Kind {
	case FilterMonth:
		p := period.Period{Year: f.Year, Month: f.Month}
		return p.Start(), p.End(), true
	case FilterQuarter:
		firstMonth := time.Month((f.Quarter-1)*3 + 1)
		start = time.Date(f.Year, firstMonth, 1, 0, 0, 0, 0, time.UTC)

		return start, start.AddDate(0, 3, -1), true
	case FilterYear:
		start = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)

		return start, time.Date(f.Year, time.December, 31, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// SingleMonth returns the filter's month when it resolves to exactly one
// calendar month.
func (f Filter) SingleMonth() (period.Period, bool) {
	if f.Kind != FilterMonth {
		return period.Period{}, false
	}

	return period.Period{Year: f.Year, Month: f.Month}, true
}

// End returns the filter's end date, or now for the unbounded filter.
func (f Filter) End(now time.Time) time.Time {
	if _, end, ok := f.Range(); ok {
		return end
	}

	return now
}

// includes reports whether t falls inside the filter's range. Transactions
// without a usable date are excluded from every aggregate.
func (f Filter) includes(t time.Time) bool {
	if t.IsZero() {
		return false
	}

	start, end, ok := f.Range()
	if !ok {
		return true
	}

	return !t.Before(start) && !t.After(end.AddDate(0, 0, 1).Add(-time.Nanosecond))
}
