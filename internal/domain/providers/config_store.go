package providers

import (
	"context"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

// ConfigStore persists the state that must survive process restarts
type ConfigStore interface {
	// SetSessionToken persists a renewed session token
	SetSessionToken(ctx context.Context, session entities.Session) error

	// SetEnabled toggles the scraping enabled flag
	SetEnabled(ctx context.Context, enabled bool) error
}

// StoredState is the persisted state read back at startup. Nil fields were never written.
type StoredState struct {
	SessionToken *entities.Session
	Enabled      *bool
}

// StateLoader is implemented by config stores that can also read their state back
type StateLoader interface {
	LoadState(ctx context.Context) (StoredState, error)
}
