package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/reminder-engine/internal/domain"
)

var loanRowColumns = []string{
	"id", "borrower_name", "borrower_email", "currency", "amount", "due_date", "payment_status",
	"status", "reminders_enabled", "reminder_count", "last_reminder_sent_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestLoanRepository_FindReminderCandidates(t *testing.T) {
	day := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	maxCount := 7
	loanID := uuid.New()
	sentAt := day.Add(-20 * time.Hour)

	tests := []struct {
		name          string
		filter        LoanFilter
		setupMock     func(mock sqlmock.Sqlmock)
		expectedError bool
		validate      func(t *testing.T, loans []*domain.Loan)
	}{
		{
			name:   "due soon filter binds the exact date",
			filter: LoanFilter{DueOn: timePtr(day.AddDate(0, 0, 3))},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(loanRowColumns).
					AddRow(loanID.String(), "Jane", "jane@example.com", "USD", "1500.50", day.AddDate(0, 0, 3), "pending", "active", true, 0, nil)
				mock.ExpectQuery(regexp.QuoteMeta("due_date = $2::date")).
					WithArgs(domain.PaymentStatusPending, "2024-05-23").
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, loans []*domain.Loan) {
				require.Len(t, loans, 1)
				assert.Equal(t, loanID, loans[0].ID)
				assert.True(t, loans[0].Amount.Equal(decimal.RequireFromString("1500.50")))
				assert.Nil(t, loans[0].LastReminderSentAt)
				assert.True(t, loans[0].RemindersEnabled)
			},
		},
		{
			name:   "overdue filter binds date and ceiling",
			filter: LoanFilter{DueBefore: timePtr(day), MaxReminderCount: &maxCount},
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(loanRowColumns).
					AddRow(loanID.String(), "Jane", "jane@example.com", "RWF", "250000", day.AddDate(0, 0, -5), "pending", "overdue", true, 6, sentAt)
				mock.ExpectQuery(regexp.QuoteMeta("due_date < $2::date AND reminder_count < $3")).
					WithArgs(domain.PaymentStatusPending, "2024-05-20", 7).
					WillReturnRows(rows)
			},
			validate: func(t *testing.T, loans []*domain.Loan) {
				require.Len(t, loans, 1)
				assert.Equal(t, 6, loans[0].ReminderCount)
				require.NotNil(t, loans[0].LastReminderSentAt)
				assert.True(t, sentAt.Equal(*loans[0].LastReminderSentAt))
			},
		},
		{
			name:   "no rows",
			filter: LoanFilter{DueOn: timePtr(day)},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM loans").
					WillReturnRows(sqlmock.NewRows(loanRowColumns))
			},
			validate: func(t *testing.T, loans []*domain.Loan) {
				assert.Empty(t, loans)
			},
		},
		{
			name:   "query error",
			filter: LoanFilter{DueOn: timePtr(day)},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("FROM loans").WillReturnError(errors.New("connection reset"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setupMock(mock)

			repo := NewLoanRepository(db)
			loans, err := repo.FindReminderCandidates(context.Background(), tt.filter)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				tt.validate(t, loans)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoanRepository_UpdateReminderState(t *testing.T) {
	loanID := uuid.New()
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	startOfDay := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	overdue := domain.LoanStatusOverdue

	tests := []struct {
		name          string
		update        domain.ReminderStateUpdate
		rowsAffected  int64
		execErr       error
		expectApplied bool
		expectedError bool
	}{
		{
			name:          "applies when not yet sent today",
			update:        domain.ReminderStateUpdate{ReminderCount: 1, LastReminderSentAt: now},
			rowsAffected:  1,
			expectApplied: true,
		},
		{
			name:          "sets overdue status",
			update:        domain.ReminderStateUpdate{ReminderCount: 7, LastReminderSentAt: now, Status: &overdue},
			rowsAffected:  1,
			expectApplied: true,
		},
		{
			name:          "does not apply when another run already recorded today",
			update:        domain.ReminderStateUpdate{ReminderCount: 2, LastReminderSentAt: now},
			rowsAffected:  0,
			expectApplied: false,
		},
		{
			name:          "exec error",
			update:        domain.ReminderStateUpdate{ReminderCount: 2, LastReminderSentAt: now},
			execErr:       errors.New("deadlock detected"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)

			exp := mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND (last_reminder_sent_at IS NULL OR last_reminder_sent_at < $6)")).
				WithArgs(loanID, tt.update.ReminderCount, tt.update.LastReminderSentAt, sqlmock.AnyArg(), sqlmock.AnyArg(), startOfDay)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			}

			repo := NewLoanRepository(db)
			applied, err := repo.UpdateReminderState(context.Background(), loanID, tt.update, startOfDay)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectApplied, applied)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
