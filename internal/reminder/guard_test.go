package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlreadySentToday(t *testing.T) {
	plus2 := time.FixedZone("CAT", 2*60*60)

	tests := []struct {
		name     string
		lastSent *time.Time
		loc      *time.Location
		expected bool
	}{
		{name: "never sent", lastSent: nil, loc: time.UTC, expected: false},
		{name: "sent this morning", lastSent: timePtr(today.Add(8 * time.Hour)), loc: time.UTC, expected: true},
		{name: "sent just before midnight", lastSent: timePtr(today.Add(23*time.Hour + 59*time.Minute)), loc: time.UTC, expected: true},
		{name: "sent yesterday", lastSent: timePtr(today.Add(-time.Minute)), loc: time.UTC, expected: false},
		{name: "sent tomorrow", lastSent: timePtr(today.AddDate(0, 0, 1)), loc: time.UTC, expected: false},
		{name: "yesterday in UTC is today in Kigali", lastSent: timePtr(today.Add(-90 * time.Minute)), loc: plus2, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := newLoan(-3, 1)
			loan.LastReminderSentAt = tt.lastSent
			assert.Equal(t, tt.expected, AlreadySentToday(loan, today, tt.loc))
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
