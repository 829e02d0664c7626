package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

// Mocks

type MockAvailabilityProvider struct {
	mock.Mock
}

func (m *MockAvailabilityProvider) GetAvailableSlots(ctx context.Context, date entities.DateQuery, session entities.Session) ([]entities.Slot, error) {
	args := m.Called(ctx, date, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Slot), args.Error(1)
}

func (m *MockAvailabilityProvider) Login(ctx context.Context) (entities.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Session), args.Error(1)
}

type MockConfigStore struct {
	mock.Mock
}

func (m *MockConfigStore) SetSessionToken(ctx context.Context, session entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockConfigStore) SetEnabled(ctx context.Context, enabled bool) error {
	args := m.Called(ctx, enabled)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockNotifier) Channel() entities.NotificationChannel {
	return entities.ChannelTelegram
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *entities.SlotNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) Update(ctx context.Context, notification *entities.SlotNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*entities.SlotNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SlotNotification), args.Error(1)
}
