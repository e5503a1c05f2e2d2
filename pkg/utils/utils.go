package utils

import (
	"time"
)

// DateLayout is the wire format for calendar dates (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Clock supplies the current instant. Dispatch code takes "today" as a
// parameter; the clock is only consulted at the entry points.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// DateOf returns the calendar date of t as seen in loc, represented as
// midnight UTC so that dates compare with == and subtract exactly.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CivilDate drops the time and zone of t without converting it. Used for
// DATE columns, whose driver value carries no meaningful zone.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc
func Today(clock Clock, loc *time.Location) time.Time {
	return DateOf(clock.Now(), loc)
}

// AddDays shifts a calendar date by n days
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from -> to. Both arguments
// are expected to be normalized calendar dates.
func DaysBetween(from, to time.Time) int {
	return int(CivilDate(to).Sub(CivilDate(from)).Hours() / 24)
}

// SameDay reports whether t falls on the calendar date day when viewed in loc
func SameDay(t time.Time, day time.Time, loc *time.Location) bool {
	return DateOf(t, loc).Equal(CivilDate(day))
}

// StartOfDay returns the instant at which the calendar date day begins in loc
func StartOfDay(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return CivilDate(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}
