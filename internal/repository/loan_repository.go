package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/pkg/utils"
)

const loanColumns = `id, borrower_name, borrower_email, currency, amount, due_date, payment_status,
		status, reminders_enabled, reminder_count, last_reminder_sent_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindReminderCandidates(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error) {
	conditions := []string{
		"payment_status = $1",
		"reminders_enabled = TRUE",
		"borrower_email IS NOT NULL",
		"borrower_email <> ''",
	}
	args := []interface{}{domain.PaymentStatusPending}

	if filter.DueOn != nil {
		args = append(args, utils.FormatDate(*filter.DueOn))
		conditions = append(conditions, fmt.Sprintf("due_date = $%d::date", len(args)))
	}

	if filter.DueBefore != nil {
		args = append(args, utils.FormatDate(*filter.DueBefore))
		conditions = append(conditions, fmt.Sprintf("due_date < $%d::date", len(args)))
	}

	if filter.MaxReminderCount != nil {
		args = append(args, *filter.MaxReminderCount)
		conditions = append(conditions, fmt.Sprintf("reminder_count < $%d", len(args)))
	}

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY due_date, id
	`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateReminderState(ctx context.Context, loanID uuid.UUID, update domain.ReminderStateUpdate, notSentSince time.Time) (bool, error) {
	query := `
		UPDATE loans
		SET reminder_count = $2, last_reminder_sent_at = $3, status = COALESCE($4, status), updated_at = $5
		WHERE id = $1 AND (last_reminder_sent_at IS NULL OR last_reminder_sent_at < $6)
	`

	result, err := r.db.ExecContext(ctx, query,
		loanID,
		update.ReminderCount,
		update.LastReminderSentAt,
		update.Status,
		time.Now(),
		notSentSince,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
