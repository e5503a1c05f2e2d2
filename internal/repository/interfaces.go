package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/reminder-engine/internal/domain"
)

// LoanFilter selects reminder candidates. Every filter implies a pending
// payment, reminders enabled and a non-empty borrower email. Nil fields
// are not constrained.
type LoanFilter struct {
	// DueOn matches loans whose due date equals this calendar date
	DueOn *time.Time
	// DueBefore matches loans whose due date is strictly before this calendar date
	DueBefore *time.Time
	// MaxReminderCount matches loans with reminder_count strictly below it
	MaxReminderCount *int
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// FindReminderCandidates returns loans matching the filter
	FindReminderCandidates(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error)

	// UpdateReminderState writes reminder bookkeeping for one loan, only if
	// no reminder was recorded at or after notSentSince. Returns whether the
	// row was updated.
	UpdateReminderState(ctx context.Context, loanID uuid.UUID, update domain.ReminderStateUpdate, notSentSince time.Time) (bool, error)
}

// SettingsRepository loads the process-wide reminder settings
type SettingsRepository interface {
	// Load returns errors.ErrSettingsNotConfigured when no settings row exists
	Load(ctx context.Context) (*domain.ReminderSettings, error)
}

// AuditLogRepository appends email_reminder_logs rows
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
}

// Locker claims a loan for a given day so overlapping runs cannot both send
type Locker interface {
	Claim(ctx context.Context, loanID uuid.UUID, day time.Time) (bool, error)
	Release(ctx context.Context, loanID uuid.UUID, day time.Time) error
}

// RunSummaryCache keeps the most recent run summary
type RunSummaryCache interface {
	Save(ctx context.Context, summary *domain.RunSummary) error
	Latest(ctx context.Context) (*domain.RunSummary, error)
}
