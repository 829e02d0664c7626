package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boicualexandru/scraping-calendis/internal/application/services"
	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
	"github.com/boicualexandru/scraping-calendis/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1,
	}
}

func TestNotificationService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Delivers and records the message", func(t *testing.T) {
		notifier := new(MockNotifier)
		repo := new(MockNotificationRepository)
		service := services.NewNotificationService(notifier, repo, fastRetry(), nil)

		notifier.On("Send", mock.Anything, "hello").Return("981", nil).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *entities.SlotNotification) bool {
			return n.Status == entities.NotificationStatusPending && n.RunID == "run-1" && n.SlotCount == 2 && n.ID != ""
		})).Return(nil).Once()
		repo.On("Update", mock.Anything, mock.MatchedBy(func(n *entities.SlotNotification) bool {
			return n.Status == entities.NotificationStatusSent && *n.MessageID == "981" && n.SentAt != nil
		})).Return(nil).Once()

		err := service.Send(ctx, "run-1", "hello", 2)

		require.NoError(t, err)
		notifier.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Retries a transient failure", func(t *testing.T) {
		notifier := new(MockNotifier)
		service := services.NewNotificationService(notifier, nil, fastRetry(), nil)

		notifier.On("Send", mock.Anything, "hello").Return("", errors.New("502 bad gateway")).Once()
		notifier.On("Send", mock.Anything, "hello").Return("982", nil).Once()

		require.NoError(t, service.Send(ctx, "run-1", "hello", 1))
		notifier.AssertNumberOfCalls(t, "Send", 2)
	})

	t.Run("Permanent failure is not retried and is recorded", func(t *testing.T) {
		notifier := new(MockNotifier)
		repo := new(MockNotificationRepository)
		service := services.NewNotificationService(notifier, repo, fastRetry(), nil)

		notifier.On("Send", mock.Anything, "hello").Return("", retry.Permanent(errors.New("chat not found")))
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(n *entities.SlotNotification) bool {
			return n.Status == entities.NotificationStatusFailed && n.FailedAt != nil && *n.ErrorMessage == "chat not found"
		})).Return(nil).Once()

		err := service.Send(ctx, "run-1", "hello", 1)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotification))
		notifier.AssertNumberOfCalls(t, "Send", 1)
		repo.AssertExpectations(t)
	})

	t.Run("Delivery log failure does not block sending", func(t *testing.T) {
		notifier := new(MockNotifier)
		repo := new(MockNotificationRepository)
		service := services.NewNotificationService(notifier, repo, fastRetry(), nil)

		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		notifier.On("Send", mock.Anything, "hello").Return("983", nil)

		require.NoError(t, service.Send(ctx, "run-1", "hello", 1))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
