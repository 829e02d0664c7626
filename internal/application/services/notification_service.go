package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/internal/domain/repositories"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/observability"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
	"github.com/boicualexandru/scraping-calendis/pkg/retry"
)

// NotificationService delivers availability messages and keeps an optional delivery log
type NotificationService struct {
	notifier providers.Notifier
	repo     repositories.NotificationRepository
	retryCfg retry.Config
	metrics  *observability.Metrics
}

// NewNotificationService creates a new notification service. repo may be nil.
func NewNotificationService(notifier providers.Notifier, repo repositories.NotificationRepository, retryCfg retry.Config, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		notifier: notifier,
		repo:     repo,
		retryCfg: retryCfg,
		metrics:  metrics,
	}
}

// Send delivers body, retrying transient failures. A delivery failure is returned as a
// NOTIFICATION error; delivery log failures are only logged.
func (n *NotificationService) Send(ctx context.Context, runID, body string, slotCount int) error {
	channel := n.notifier.Channel()

	ctx, span := observability.StartSpan(ctx, "notification.send", attribute.String("channel", string(channel)))
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().Str("channel", string(channel)).Logger()

	record := &entities.SlotNotification{
		ID:        uuid.NewString(),
		RunID:     runID,
		Channel:   channel,
		Body:      body,
		SlotCount: slotCount,
		Status:    entities.NotificationStatusPending,
	}
	logged := n.createRecord(ctx, record)

	var messageID string
	err := retry.DoWithLog(ctx, n.retryCfg, string(channel),
		func() error {
			id, sendErr := n.notifier.Send(ctx, body)
			if sendErr != nil {
				return sendErr
			}
			messageID = id
			return nil
		},
		func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Notification attempt failed")
		},
	)

	now := time.Now().UTC()
	if err != nil {
		errMsg := err.Error()
		record.Status = entities.NotificationStatusFailed
		record.ErrorMessage = &errMsg
		record.FailedAt = &now
	} else {
		record.Status = entities.NotificationStatusSent
		record.MessageID = &messageID
		record.SentAt = &now
	}
	n.metrics.RecordNotification(ctx, string(channel), string(record.Status))

	if logged {
		if updateErr := n.repo.Update(ctx, record); updateErr != nil {
			logger.Warn().Err(updateErr).Str("notification_id", record.ID).Msg("Failed to update notification log")
		}
	}

	if err != nil {
		notifErr := apperrors.NewNotificationError("failed to deliver notification", err)
		observability.RecordError(span, notifErr)
		return notifErr
	}

	logger.Info().Str("message_id", messageID).Int("slots", slotCount).Msg("Notification sent")
	return nil
}

func (n *NotificationService) createRecord(ctx context.Context, record *entities.SlotNotification) bool {
	if n.repo == nil {
		return false
	}
	if err := n.repo.Create(ctx, record); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to write notification log")
		return false
	}
	return true
}
