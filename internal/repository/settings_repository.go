package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/reminder-engine/internal/domain"
	customError "github.com/segyhp/reminder-engine/pkg/errors"
)

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Load(ctx context.Context) (*domain.ReminderSettings, error) {
	query := `
		SELECT smtp_host, smtp_port, smtp_username, smtp_password, from_email, from_name,
		       reminder_days_before, max_overdue_reminders
		FROM email_settings
		ORDER BY created_at
		LIMIT 1
	`

	var settings domain.ReminderSettings
	err := r.db.GetContext(ctx, &settings, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.ErrSettingsNotConfigured
	}
	if err != nil {
		return nil, err
	}

	return &settings, nil
}
