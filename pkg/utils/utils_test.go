package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	kigali := time.FixedZone("CAT", 2*60*60)

	tests := []struct {
		name     string
		instant  time.Time
		loc      *time.Location
		expected time.Time
	}{
		{
			name:     "same day in UTC",
			instant:  time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC),
			loc:      time.UTC,
			expected: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "late UTC evening is next day in Kigali",
			instant:  time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC),
			loc:      kigali,
			expected: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "nil location keeps the instant's zone",
			instant:  time.Date(2024, 3, 10, 1, 0, 0, 0, kigali),
			loc:      nil,
			expected: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(DateOf(tt.instant, tt.loc)),
				"Expected %v, but got %v", tt.expected, DateOf(tt.instant, tt.loc))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{name: "same day", from: base, to: base, expected: 0},
		{name: "five days later", from: base, to: base.AddDate(0, 0, 5), expected: 5},
		{name: "backwards", from: base.AddDate(0, 0, 3), to: base, expected: -3},
		{name: "across leap day", from: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), to: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), expected: 2},
		{name: "time of day ignored", from: base.Add(20 * time.Hour), to: base.AddDate(0, 0, 1).Add(time.Hour), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestSameDay(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	plus2 := time.FixedZone("CAT", 2*60*60)

	assert.True(t, SameDay(time.Date(2024, 6, 15, 0, 0, 1, 0, time.UTC), day, time.UTC))
	assert.True(t, SameDay(time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC), day, time.UTC))
	assert.False(t, SameDay(time.Date(2024, 6, 14, 23, 59, 59, 0, time.UTC), day, time.UTC))
	// 22:30 UTC on the 14th is 00:30 on the 15th at UTC+2
	assert.True(t, SameDay(time.Date(2024, 6, 14, 22, 30, 0, 0, time.UTC), day, plus2))
}

func TestStartOfDay(t *testing.T) {
	plus2 := time.FixedZone("CAT", 2*60*60)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	start := StartOfDay(day, plus2)

	assert.True(t, start.Equal(time.Date(2024, 6, 14, 22, 0, 0, 0, time.UTC)))
	assert.True(t, StartOfDay(day, nil).Equal(day))
}

func TestToday(t *testing.T) {
	clock := ClockFunc(func() time.Time {
		return time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	})

	assert.Equal(t, "2024-12-31", FormatDate(Today(clock, time.UTC)))
	assert.Equal(t, "2025-01-01", FormatDate(Today(clock, time.FixedZone("CAT", 2*60*60))))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))
	assert.Equal(t, "2024-03-03", FormatDate(AddDays(d, 3)))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}
