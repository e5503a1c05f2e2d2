package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/reminder-engine/internal/domain"
	customError "github.com/segyhp/reminder-engine/pkg/errors"
)

func TestSettingsRepository_Load(t *testing.T) {
	columns := []string{
		"smtp_host", "smtp_port", "smtp_username", "smtp_password", "from_email", "from_name",
		"reminder_days_before", "max_overdue_reminders",
	}

	t.Run("loads the settings row", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM email_settings").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("smtp.example.com", 465, "mailer", "secret", "billing@example.com", "Acme Finance", 3, 7))

		settings, err := NewSettingsRepository(db).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "smtp.example.com", settings.SMTPHost)
		assert.Equal(t, 465, settings.SMTPPort)
		assert.Equal(t, 3, settings.ReminderDaysBefore)
		assert.Equal(t, 7, settings.MaxOverdueReminders)
		assert.True(t, settings.HasSMTPCredentials())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not configured", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM email_settings").WillReturnError(sql.ErrNoRows)

		settings, err := NewSettingsRepository(db).Load(context.Background())

		assert.Nil(t, settings)
		assert.ErrorIs(t, err, customError.ErrSettingsNotConfigured)
	})

	t.Run("database error is returned as is", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("FROM email_settings").WillReturnError(errors.New("timeout"))

		_, err := NewSettingsRepository(db).Load(context.Background())

		require.Error(t, err)
		assert.NotErrorIs(t, err, customError.ErrSettingsNotConfigured)
	})
}

func TestAuditLogRepository_Append(t *testing.T) {
	loanID := uuid.New()
	failure := "SEND_FAILED: email transport rejected the message"

	tests := []struct {
		name          string
		entry         *domain.AuditLogEntry
		execErr       error
		expectedError bool
	}{
		{
			name: "sent entry",
			entry: &domain.AuditLogEntry{
				LoanID:         loanID,
				EmailType:      domain.EmailTypeDueSoon,
				RecipientEmail: "jane@example.com",
				Subject:        "Payment Reminder – Due Soon",
				Status:         domain.AuditStatusSent,
			},
		},
		{
			name: "failed entry carries the error message",
			entry: &domain.AuditLogEntry{
				ID:             uuid.New(),
				LoanID:         loanID,
				EmailType:      domain.EmailTypeOverdue,
				RecipientEmail: "jane@example.com",
				Subject:        "Overdue Payment Reminder",
				Status:         domain.AuditStatusFailed,
				ErrorMessage:   &failure,
				Timestamp:      time.Now(),
			},
		},
		{
			name: "insert error",
			entry: &domain.AuditLogEntry{
				LoanID: loanID,
				Status: domain.AuditStatusSent,
			},
			execErr:       errors.New("relation does not exist"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			exp := mock.ExpectExec("INSERT INTO email_reminder_logs").
				WithArgs(sqlmock.AnyArg(), loanID, tt.entry.EmailType, tt.entry.RecipientEmail, tt.entry.Subject,
					tt.entry.Status, sqlmock.AnyArg(), sqlmock.AnyArg())
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := NewAuditLogRepository(db).Append(context.Background(), tt.entry)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, tt.entry.ID)
				assert.False(t, tt.entry.Timestamp.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
