package providers

import (
	"context"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

// AvailabilityProvider defines the interface for the remote booking API of one fixed resource
type AvailabilityProvider interface {
	// GetAvailableSlots returns the raw slots of one day. A response signalling an expired
	// session is reported as an AUTH AppError, any other failure as a TRANSPORT AppError.
	// A well-formed "no slots" envelope yields an empty list and no error.
	GetAvailableSlots(ctx context.Context, date entities.DateQuery, session entities.Session) ([]entities.Slot, error)

	// Login authenticates with the stored credentials and returns a fresh session
	Login(ctx context.Context) (entities.Session, error)
}
