package domain

import "time"

// Interval is the billing cadence of a plan.
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Valid reports whether i is a supported interval.
func (i Interval) Valid() bool {
	return i == IntervalMonth || i == IntervalYear
}

// Period is the half-open billing window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// NextPeriod returns the period that begins at start and lasts one interval.
//
// Calendar arithmetic clamps to the end of the month: when the start day does
// not exist in the target month the last day of that month is used, so
// Jan 31 + 1 month is Feb 28 (Feb 29 in leap years) and Feb 29 + 1 year is
// Feb 28. Time of day and location are preserved.
func NextPeriod(start time.Time, interval Interval) (Period, error) {
	var months int
	switch interval {
	case IntervalMonth:
		months = 1
	case IntervalYear:
		months = 12
	default:
		return Period{}, ErrInvalidInterval
	}
	return Period{Start: start, End: addMonthsClamped(start, months)}, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	// Day 1 never overflows, so this only normalises the year/month pair.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
