package repositories

import (
	"context"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

// NotificationRepository defines the interface for the notification log
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.SlotNotification) error
	Update(ctx context.Context, notification *entities.SlotNotification) error
	GetByID(ctx context.Context, id string) (*entities.SlotNotification, error)
}
