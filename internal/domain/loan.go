package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus values as stored in loans.payment_status
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPartial   = "partial"
	PaymentStatusCompleted = "completed"
)

// Loan status values as stored in loans.status
const (
	LoanStatusActive  = "active"
	LoanStatusOverdue = "overdue"
	LoanStatusPaid    = "paid"
)

// Loan is the subset of a loan record the reminder engine reads and updates.
// DueDate is a calendar date; only its year, month and day are meaningful.
type Loan struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	BorrowerName       string          `json:"borrower_name" db:"borrower_name"`
	BorrowerEmail      string          `json:"borrower_email" db:"borrower_email"`
	Currency           string          `json:"currency" db:"currency"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	PaymentStatus      string          `json:"payment_status" db:"payment_status"`
	Status             string          `json:"status" db:"status"`
	RemindersEnabled   bool            `json:"reminders_enabled" db:"reminders_enabled"`
	ReminderCount      int             `json:"reminder_count" db:"reminder_count"`
	LastReminderSentAt *time.Time      `json:"last_reminder_sent_at,omitempty" db:"last_reminder_sent_at"`
}

// ReminderStateUpdate carries the only loan fields the engine writes.
// A nil Status leaves loans.status untouched.
type ReminderStateUpdate struct {
	ReminderCount      int
	LastReminderSentAt time.Time
	Status             *string
}
