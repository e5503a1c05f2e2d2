package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/internal/repository"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindReminderCandidates(ctx context.Context, filter repository.LoanFilter) ([]*domain.Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateReminderState(ctx context.Context, loanID uuid.UUID, update domain.ReminderStateUpdate, notSentSince time.Time) (bool, error) {
	args := m.Called(ctx, loanID, update, notSentSince)
	return args.Bool(0), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Load(ctx context.Context) (*domain.ReminderSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReminderSettings), args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Claim(ctx context.Context, loanID uuid.UUID, day time.Time) (bool, error) {
	args := m.Called(ctx, loanID, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, loanID uuid.UUID, day time.Time) error {
	args := m.Called(ctx, loanID, day)
	return args.Error(0)
}

type MockRunSummaryCache struct {
	mock.Mock
}

func (m *MockRunSummaryCache) Save(ctx context.Context, summary *domain.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockRunSummaryCache) Latest(ctx context.Context) (*domain.RunSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunSummary), args.Error(1)
}
