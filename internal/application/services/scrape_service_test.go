package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boicualexandru/scraping-calendis/internal/application/services"
	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

type scrapeFixture struct {
	provider *MockAvailabilityProvider
	store    *MockConfigStore
	notifier *MockNotifier
	service  *services.ScrapeService
}

func newScrapeFixture() *scrapeFixture {
	f := &scrapeFixture{
		provider: new(MockAvailabilityProvider),
		store:    new(MockConfigStore),
		notifier: new(MockNotifier),
	}
	f.service = services.NewScrapeService(
		services.NewDateSelector(),
		services.NewAvailabilityService(f.provider, f.store, nil),
		services.NewNotificationService(f.notifier, nil, fastRetry(), nil),
		f.store,
		nil,
	).WithClock(func() time.Time {
		return time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	})
	return f
}

func scrapeConfig(specificDays string) *config.Config {
	return &config.Config{
		ScrapingEnabled: true,
		Window:          testWindow,
		Dates:           config.DateConfig{SpecificDays: specificDays},
		Calendis:        config.CalendisConfig{SessionToken: "live-token"},
	}
}

var (
	day10 = entities.NewDateQuery(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	day11 = entities.NewDateQuery(time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC))
)

func TestScrapeService_Run(t *testing.T) {
	ctx := context.Background()
	live := entities.Session("live-token")

	t.Run("Notifies matching slots and disables scraping", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{}, nil).Once()
		f.provider.On("GetAvailableSlots", mock.Anything, day11, live).Return([]entities.Slot{
			slotAt(day11, 17, 0, true),
			slotAt(day11, 21, 0, true),
			slotAt(day11, 18, 0, false),
		}, nil).Once()

		var sent string
		f.notifier.On("Send", mock.Anything, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { sent = args.String(1) }).
			Return("1", nil).Once()
		f.store.On("SetEnabled", mock.Anything, false).Return(nil).Once()

		err := f.service.Run(ctx, scrapeConfig("2025-04-10,2025-04-11"))

		require.NoError(t, err)
		f.notifier.AssertNumberOfCalls(t, "Send", 1)
		f.store.AssertExpectations(t)

		assert.Contains(t, sent, "Slots available on 2025-04-11:")
		assert.Contains(t, sent, "17:00")
		assert.NotContains(t, sent, "Slots available on 2025-04-10")
		assert.NotContains(t, sent, "21:00")
		assert.NotContains(t, sent, "18:00")
	})

	t.Run("No matching slots sends nothing and keeps the flag", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{}, nil).Once()
		f.provider.On("GetAvailableSlots", mock.Anything, day11, live).Return([]entities.Slot{
			slotAt(day11, 21, 0, true),
			slotAt(day11, 17, 0, false),
		}, nil).Once()

		err := f.service.Run(ctx, scrapeConfig("2025-04-10,2025-04-11"))

		require.NoError(t, err)
		f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "SetEnabled", mock.Anything, mock.Anything)
	})

	t.Run("Disabled run queries nothing", func(t *testing.T) {
		f := newScrapeFixture()
		cfg := scrapeConfig("")
		cfg.ScrapingEnabled = false

		require.NoError(t, f.service.Run(ctx, cfg))
		f.provider.AssertNotCalled(t, "GetAvailableSlots", mock.Anything, mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "SetEnabled", mock.Anything, mock.Anything)
	})

	t.Run("Transport error aborts the run before any notification", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{slotAt(day10, 17, 0, true)}, nil).Once()
		f.provider.On("GetAvailableSlots", mock.Anything, day11, live).
			Return(nil, apperrors.NewTransportError("availability api returned status 502", nil)).Once()

		err := f.service.Run(ctx, scrapeConfig("2025-04-10,2025-04-11"))

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
		assert.Contains(t, err.Error(), "2025-04-11")
		f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		f.store.AssertNotCalled(t, "SetEnabled", mock.Anything, mock.Anything)
	})

	t.Run("Renewed session is reused for later dates", func(t *testing.T) {
		f := newScrapeFixture()
		fresh := entities.Session("fresh-token")

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).
			Return(nil, apperrors.NewAuthError("session rejected (status 401)")).Once()
		f.provider.On("Login", mock.Anything).Return(fresh, nil).Once()
		f.store.On("SetSessionToken", mock.Anything, fresh).Return(nil).Once()
		f.provider.On("GetAvailableSlots", mock.Anything, day10, fresh).Return([]entities.Slot{}, nil).Once()
		f.provider.On("GetAvailableSlots", mock.Anything, day11, fresh).Return([]entities.Slot{}, nil).Once()

		require.NoError(t, f.service.Run(ctx, scrapeConfig("2025-04-10,2025-04-11")))
		f.provider.AssertExpectations(t)
		f.store.AssertExpectations(t)
	})

	t.Run("Fatal auth error aborts the run", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, mock.Anything).
			Return(nil, apperrors.NewAuthError("session rejected (status 401)"))
		f.provider.On("Login", mock.Anything).Return(entities.Session("fresh-token"), nil)
		f.store.On("SetSessionToken", mock.Anything, mock.Anything).Return(nil)

		err := f.service.Run(ctx, scrapeConfig("2025-04-10,2025-04-11"))

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeFatal))
		f.provider.AssertNotCalled(t, "GetAvailableSlots", mock.Anything, day11, mock.Anything)
		f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("Failed notification still disables scraping", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{slotAt(day10, 19, 0, true)}, nil)
		f.notifier.On("Send", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))
		f.store.On("SetEnabled", mock.Anything, false).Return(nil).Once()

		require.NoError(t, f.service.Run(ctx, scrapeConfig("2025-04-10")))
		f.notifier.AssertNumberOfCalls(t, "Send", 3)
		f.store.AssertExpectations(t)
	})

	t.Run("Failure to disable scraping is fatal", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{slotAt(day10, 19, 0, true)}, nil)
		f.notifier.On("Send", mock.Anything, mock.Anything).Return("1", nil)
		f.store.On("SetEnabled", mock.Anything, false).
			Return(apperrors.NewConfigStoreError("failed to update SCRAPING_ENABLED", errors.New("status 403")))

		err := f.service.Run(ctx, scrapeConfig("2025-04-10"))

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigStore))
		assert.True(t, strings.HasPrefix(err.Error(), "disabling scraping"))
	})

	t.Run("Without dates the run checks today", func(t *testing.T) {
		f := newScrapeFixture()

		f.provider.On("GetAvailableSlots", mock.Anything, day10, live).Return([]entities.Slot{}, nil).Once()

		require.NoError(t, f.service.Run(ctx, scrapeConfig("")))
		f.provider.AssertExpectations(t)
	})
}
