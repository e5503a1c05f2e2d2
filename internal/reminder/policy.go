// Package reminder holds the pure reminder policy: which reminder, if any,
// a loan is due for on a given calendar date, and whether it already got
// one that day. Nothing in this package performs I/O.
package reminder

import (
	"strings"
	"time"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

// Decision is the classification of a loan for a given day
type Decision int

const (
	None Decision = iota
	DueSoon
	Overdue
	FinalNotice
	Suppressed
)

func (d Decision) String() string {
	switch d {
	case DueSoon:
		return "due_soon"
	case Overdue:
		return "overdue"
	case FinalNotice:
		return "final_notice"
	case Suppressed:
		return "suppressed"
	default:
		return "none"
	}
}

// Sendable reports whether the decision results in an email
func (d Decision) Sendable() bool {
	return d == DueSoon || d == Overdue || d == FinalNotice
}

// EmailType maps a sendable decision to its audit email type
func (d Decision) EmailType() string {
	switch d {
	case DueSoon:
		return domain.EmailTypeDueSoon
	case Overdue:
		return domain.EmailTypeOverdue
	case FinalNotice:
		return domain.EmailTypeFinalNotice
	default:
		return ""
	}
}

// MarksOverdue reports whether a successful send flips the loan status to overdue
func (d Decision) MarksOverdue() bool {
	return d == Overdue || d == FinalNotice
}

// Classify decides which reminder the loan needs on today. today must be a
// calendar date as produced by utils.DateOf.
func Classify(loan *domain.Loan, settings *domain.ReminderSettings, today time.Time) Decision {
	if loan.PaymentStatus != domain.PaymentStatusPending ||
		!loan.RemindersEnabled ||
		strings.TrimSpace(loan.BorrowerEmail) == "" {
		return None
	}

	due := utils.CivilDate(loan.DueDate)
	today = utils.CivilDate(today)

	if due.Equal(utils.AddDays(today, settings.ReminderDaysBefore)) {
		return DueSoon
	}

	if due.Before(today) {
		switch {
		case loan.ReminderCount >= settings.MaxOverdueReminders:
			return Suppressed
		case loan.ReminderCount == settings.MaxOverdueReminders-1:
			return FinalNotice
		default:
			return Overdue
		}
	}

	return None
}

// DaysOverdue is the number of whole days today is past the due date.
// It is at least 1 for any loan classified Overdue or FinalNotice.
func DaysOverdue(loan *domain.Loan, today time.Time) int {
	days := utils.DaysBetween(loan.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}
