package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/reminder-engine/internal/domain"
	"github.com/segyhp/reminder-engine/internal/mailer"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Ready(settings *domain.ReminderSettings) bool {
	args := m.Called(settings)
	return args.Bool(0)
}

func (m *MockTransport) Send(ctx context.Context, settings *domain.ReminderSettings, msg *mailer.Message) error {
	args := m.Called(ctx, settings, msg)
	return args.Error(0)
}

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) RunOnce(ctx context.Context, today time.Time) (*domain.RunSummary, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunSummary), args.Error(1)
}

func (m *MockReminderService) Today() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// NewMockReminderService creates a new mock reminder service instance
func NewMockReminderService() *MockReminderService {
	return &MockReminderService{}
}
