package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/reminder-engine/internal/domain"
)

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	query := `
		INSERT INTO email_reminder_logs (id, loan_id, email_type, recipient_email, subject, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.LoanID,
		entry.EmailType,
		entry.RecipientEmail,
		entry.Subject,
		entry.Status,
		entry.ErrorMessage,
		entry.Timestamp,
	)

	return err
}
