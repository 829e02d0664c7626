package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/repositories"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/clients/postgres"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

const notificationsTable = "slot_notifications"

const notificationsSchema = `CREATE TABLE IF NOT EXISTS slot_notifications (
	id            UUID PRIMARY KEY,
	run_id        UUID NOT NULL,
	channel       TEXT NOT NULL,
	body          TEXT NOT NULL,
	slot_count    INTEGER NOT NULL,
	status        TEXT NOT NULL,
	message_id    TEXT,
	error_message TEXT,
	sent_at       TIMESTAMPTZ,
	failed_at     TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
)`

var _ repositories.NotificationRepository = (*NotificationLogAdapter)(nil)

// NotificationLogAdapter persists sent availability messages in Postgres
type NotificationLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	reader *sqlx.DB
}

// NewNotificationLogAdapter creates a new notification log adapter
func NewNotificationLogAdapter(client *postgres.Client) *NotificationLogAdapter {
	return &NotificationLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		reader: sqlx.NewDb(client.DB(), "postgres"),
	}
}

// EnsureSchema creates the notification table when missing
func (a *NotificationLogAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := a.client.DB().ExecContext(ctx, notificationsSchema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", notificationsTable, err)
	}
	return nil
}

// Create inserts a notification record
func (a *NotificationLogAdapter) Create(ctx context.Context, notification *entities.SlotNotification) error {
	if notification == nil {
		return fmt.Errorf("notification is nil")
	}

	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}
	notification.UpdatedAt = now

	record := goqu.Record{
		"id":         notification.ID,
		"run_id":     notification.RunID,
		"channel":    notification.Channel,
		"body":       notification.Body,
		"slot_count": notification.SlotCount,
		"status":     notification.Status,
		"created_at": notification.CreatedAt,
		"updated_at": notification.UpdatedAt,
	}

	query, args, err := a.db.Insert(notificationsTable).Rows(record).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build notification insert query: %w", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// Update records the delivery outcome of a notification
func (a *NotificationLogAdapter) Update(ctx context.Context, notification *entities.SlotNotification) error {
	notification.UpdatedAt = time.Now().UTC()

	record := goqu.Record{
		"status":        notification.Status,
		"message_id":    nullString(notification.MessageID),
		"error_message": nullString(notification.ErrorMessage),
		"sent_at":       nullTime(notification.SentAt),
		"failed_at":     nullTime(notification.FailedAt),
		"updated_at":    notification.UpdatedAt,
	}

	query, args, err := a.db.Update(notificationsTable).
		Set(record).
		Where(goqu.Ex{"id": notification.ID}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build notification update query: %w", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification with id %s not found", notification.ID)
	}

	return nil
}

// GetByID loads one notification record
func (a *NotificationLogAdapter) GetByID(ctx context.Context, id string) (*entities.SlotNotification, error) {
	query, args, err := a.db.From(notificationsTable).
		Select(
			"id", "run_id", "channel", "body", "slot_count", "status",
			"message_id", "error_message", "sent_at", "failed_at", "created_at", "updated_at",
		).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build notification select query: %w", err)
	}

	var notification entities.SlotNotification
	if err := a.reader.GetContext(ctx, &notification, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotificationError(fmt.Sprintf("notification %s not found", id), err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &notification, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
