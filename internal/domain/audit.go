package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmailType values for email_reminder_logs.email_type
const (
	EmailTypeDueSoon     = "due_soon"
	EmailTypeOverdue     = "overdue"
	EmailTypeFinalNotice = "final_notice"
)

// Audit status values
const (
	AuditStatusSent   = "sent"
	AuditStatusFailed = "failed"
)

// AuditLogEntry is one row in email_reminder_logs. ErrorMessage is set iff
// Status is failed.
type AuditLogEntry struct {
	ID             uuid.UUID `json:"id" db:"id"`
	LoanID         uuid.UUID `json:"loan_id" db:"loan_id"`
	EmailType      string    `json:"email_type" db:"email_type"`
	RecipientEmail string    `json:"recipient_email" db:"recipient_email"`
	Subject        string    `json:"subject" db:"subject"`
	Status         string    `json:"status" db:"status"`
	ErrorMessage   *string   `json:"error_message,omitempty" db:"error_message"`
	Timestamp      time.Time `json:"timestamp" db:"created_at"`
}
