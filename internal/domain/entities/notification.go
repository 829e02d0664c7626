package entities

import "time"

// NotificationChannel represents the delivery channel
type NotificationChannel string

const (
	ChannelTelegram NotificationChannel = "telegram"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// NotificationStatus represents the delivery status
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// SlotNotification tracks one aggregated availability message
type SlotNotification struct {
	ID           string              `json:"id" db:"id"`
	RunID        string              `json:"run_id" db:"run_id"`
	Channel      NotificationChannel `json:"channel" db:"channel"`
	Body         string              `json:"body" db:"body"`
	SlotCount    int                 `json:"slot_count" db:"slot_count"`
	Status       NotificationStatus  `json:"status" db:"status"`
	MessageID    *string             `json:"message_id,omitempty" db:"message_id"`
	ErrorMessage *string             `json:"error_message,omitempty" db:"error_message"`
	SentAt       *time.Time          `json:"sent_at,omitempty" db:"sent_at"`
	FailedAt     *time.Time          `json:"failed_at,omitempty" db:"failed_at"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}
