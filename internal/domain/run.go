package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Per-loan outcome values
const (
	ResultStatusSent    = "sent"
	ResultStatusFailed  = "failed"
	ResultStatusSkipped = "skipped"
)

// Skip reasons
const (
	SkipReasonAlreadySentToday = "already_sent_today"
	SkipReasonNoReminderDue    = "no_reminder_due"
	SkipReasonSuppressed       = "suppressed"
	SkipReasonClaimedElsewhere = "claimed_elsewhere"
	SkipReasonClaimFailed      = "claim_failed"
)

// LoanResult is the outcome for a single candidate loan in a run.
type LoanResult struct {
	LoanID     uuid.UUID `json:"loan_id"`
	Status     string    `json:"status"`
	EmailType  string    `json:"email_type,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Error      string    `json:"error,omitempty"`
	StateError string    `json:"state_error,omitempty"`
}

// RunSummary aggregates one dispatch run. Attempted counts genuine send
// attempts only; skips are counted separately.
type RunSummary struct {
	Date        string        `json:"date"`
	Configured  bool          `json:"configured"`
	StartedAt   time.Time     `json:"started_at"`
	Elapsed     time.Duration `json:"elapsed"`
	Candidates  int           `json:"candidates"`
	Attempted   int           `json:"attempted"`
	Sent        int           `json:"sent"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	StateErrors int           `json:"state_errors"`
	Errors      []string      `json:"errors,omitempty"`
	Results     []LoanResult  `json:"results"`
}

// Message returns the human readable outcome line.
func (s *RunSummary) Message() string {
	if !s.Configured {
		return "SMTP not configured"
	}
	return fmt.Sprintf("Processed %d loans, sent %d emails", s.Attempted, s.Sent)
}
