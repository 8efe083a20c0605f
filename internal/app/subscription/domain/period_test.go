package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPeriod(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		interval Interval
		wantEnd  time.Time
	}{
		{
			name:     "monthly from first of month",
			start:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "yearly keeps time of day",
			start:    time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC),
			interval: IntervalYear,
			wantEnd:  time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "monthly crosses year boundary",
			start:    time.Date(2023, 12, 15, 8, 30, 0, 0, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 28",
			start:    time.Date(2023, 1, 31, 10, 0, 0, 0, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2023, 2, 28, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 29 in leap year",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "may 31 clamps to june 30",
			start:    time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "leap day plus one year clamps to feb 28",
			start:    time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
			interval: IntervalYear,
			wantEnd:  time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "nanoseconds preserved",
			start:    time.Date(2023, 3, 10, 1, 2, 3, 456, time.UTC),
			interval: IntervalMonth,
			wantEnd:  time.Date(2023, 4, 10, 1, 2, 3, 456, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			period, err := NextPeriod(tc.start, tc.interval)

			require.NoError(t, err)
			assert.Equal(t, tc.start, period.Start)
			assert.Equal(t, tc.wantEnd, period.End)
			assert.True(t, period.End.After(period.Start))
		})
	}
}

func TestNextPeriod_InvalidInterval(t *testing.T) {
	_, err := NextPeriod(time.Now(), Interval("week"))

	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNextPeriod_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2023, 8, 31, 23, 0, 0, 0, loc)

	period, err := NextPeriod(start, IntervalMonth)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 9, 30, 23, 0, 0, 0, loc), period.End)
	assert.Equal(t, loc, period.End.Location())
}
