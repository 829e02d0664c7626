package providers

import (
	"context"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

// Notifier delivers a rendered text message on one channel
type Notifier interface {
	// Send delivers text and returns the provider message id when one is available
	Send(ctx context.Context, text string) (string, error)

	// Channel identifies the delivery channel
	Channel() entities.NotificationChannel
}
