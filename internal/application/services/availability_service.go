package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/observability"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

// AvailabilityService fetches one day of slots and renews an expired session at most once per call
type AvailabilityService struct {
	provider providers.AvailabilityProvider
	store    providers.ConfigStore
	metrics  *observability.Metrics
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(provider providers.AvailabilityProvider, store providers.ConfigStore, metrics *observability.Metrics) *AvailabilityService {
	return &AvailabilityService{
		provider: provider,
		store:    store,
		metrics:  metrics,
	}
}

// FetchSlots returns the slots of date that fall inside window, together with the session
// to use for the next call. On an AUTH error it logs in, persists the new token and retries
// exactly once; a failed login or a second AUTH error is FATAL. TRANSPORT and CONFIG_STORE
// errors are returned as is.
func (s *AvailabilityService) FetchSlots(ctx context.Context, date entities.DateQuery, session entities.Session, window entities.TimeWindow) ([]entities.Slot, entities.Session, error) {
	ctx, span := observability.StartSpan(ctx, "availability.fetch", attribute.String("date", date.Label()))
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().Str("date", date.Label()).Logger()

	slots, err := s.query(ctx, date, session)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
			observability.RecordError(span, err)
			return nil, session, err
		}

		logger.Warn().Err(err).Msg("Session expired, logging in again")

		renewed, loginErr := s.provider.Login(ctx)
		s.metrics.RecordSessionRenewal(ctx, loginErr == nil)
		if loginErr != nil {
			fatal := apperrors.NewFatalError("re-authentication failed", loginErr)
			observability.RecordError(span, fatal)
			return nil, session, fatal
		}

		if err := s.store.SetSessionToken(ctx, renewed); err != nil {
			observability.RecordError(span, err)
			return nil, renewed, fmt.Errorf("persisting renewed session: %w", err)
		}
		logger.Info().Stringer("session", renewed).Msg("Session renewed and persisted")
		session = renewed

		slots, err = s.query(ctx, date, session)
		if err != nil {
			if apperrors.IsType(err, apperrors.ErrorTypeAuth) {
				err = apperrors.NewFatalError("session rejected again after re-authentication", err)
			}
			observability.RecordError(span, err)
			return nil, session, err
		}
	}

	matched := window.Filter(slots)
	s.metrics.RecordSlotsMatched(ctx, date.Label(), len(matched))
	span.SetAttributes(
		attribute.Int("slots.returned", len(slots)),
		attribute.Int("slots.matched", len(matched)),
	)
	logger.Debug().Int("returned", len(slots)).Int("matched", len(matched)).Msg("Fetched availability")

	return matched, session, nil
}

func (s *AvailabilityService) query(ctx context.Context, date entities.DateQuery, session entities.Session) ([]entities.Slot, error) {
	start := time.Now()
	slots, err := s.provider.GetAvailableSlots(ctx, date, session)

	result := "success"
	switch {
	case apperrors.IsType(err, apperrors.ErrorTypeAuth):
		result = "auth_failure"
	case err != nil:
		result = "transport_error"
	}
	s.metrics.RecordFetch(ctx, result, time.Since(start))

	return slots, err
}
