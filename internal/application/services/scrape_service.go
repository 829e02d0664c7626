package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	"github.com/boicualexandru/scraping-calendis/internal/domain/providers"
	"github.com/boicualexandru/scraping-calendis/internal/infrastructure/observability"
	"github.com/boicualexandru/scraping-calendis/pkg/config"
)

// Run outcomes reported on scraper.run.count
const (
	RunOutcomeDisabled = "disabled"
	RunOutcomeNoSlots  = "no_slots"
	RunOutcomeNotified = "notified"
	RunOutcomeFailed   = "failed"
)

// ScrapeService runs one polling pass and disables scraping once it has notified
type ScrapeService struct {
	selector      *DateSelector
	availability  *AvailabilityService
	notifications *NotificationService
	store         providers.ConfigStore
	metrics       *observability.Metrics
	now           func() time.Time
}

// NewScrapeService creates a new scrape service
func NewScrapeService(
	selector *DateSelector,
	availability *AvailabilityService,
	notifications *NotificationService,
	store providers.ConfigStore,
	metrics *observability.Metrics,
) *ScrapeService {
	return &ScrapeService{
		selector:      selector,
		availability:  availability,
		notifications: notifications,
		store:         store,
		metrics:       metrics,
		now:           time.Now,
	}
}

// WithClock replaces the clock used to resolve "today"
func (s *ScrapeService) WithClock(now func() time.Time) *ScrapeService {
	s.now = now
	return s
}

// Run checks every selected date in order. Any fetch or config store error aborts the
// run before anything is sent. A delivery failure is logged and scraping is still disabled.
func (s *ScrapeService) Run(ctx context.Context, cfg *config.Config) (err error) {
	ctx = observability.WithRunID(ctx, uuid.NewString())
	ctx, span := observability.StartSpan(ctx, "scrape.run")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)

	outcome := RunOutcomeFailed
	defer func() {
		s.metrics.RecordRun(ctx, outcome)
		span.SetAttributes(attribute.String("outcome", outcome))
		observability.RecordError(span, err)
	}()

	if !cfg.ScrapingEnabled {
		logger.Info().Msg("Scraping is disabled, exiting")
		outcome = RunOutcomeDisabled
		return nil
	}

	selection := s.selector.ComputeDates(DateSelection{
		SpecificDays: cfg.Dates.SpecificDays,
		DaysAhead:    cfg.Dates.DaysAhead,
	}, s.now())
	logger.Info().
		Str("mode", string(selection.Mode)).
		Int("dates", len(selection.Dates)).
		Str("window", cfg.Window.String()).
		Msg("Checking availability")

	session := entities.Session(cfg.Calendis.SessionToken)
	results := make([]entities.DateResult, 0, len(selection.Dates))

	for _, date := range selection.Dates {
		var slots []entities.Slot
		slots, session, err = s.availability.FetchSlots(ctx, date, session, cfg.Window)
		if err != nil {
			return fmt.Errorf("checking %s: %w", date.Label(), err)
		}
		if len(slots) == 0 {
			logger.Info().Str("date", date.Label()).Msg("No matching slots in the time window")
		}
		results = append(results, entities.DateResult{Date: date, Slots: slots})
	}

	aggregated := Aggregate(results)
	if aggregated.IsEmpty() {
		logger.Info().Msg("No slots available in the time window for any checked day")
		outcome = RunOutcomeNoSlots
		return nil
	}

	message := Compose(aggregated, selection.Metadata(cfg.Window))
	if err := s.notifications.Send(ctx, observability.RunIDFromContext(ctx), message, aggregated.SlotCount()); err != nil {
		logger.Error().Err(err).Msg("Notification failed, disabling scraping anyway")
	}

	if err := s.store.SetEnabled(ctx, false); err != nil {
		return fmt.Errorf("disabling scraping: %w", err)
	}

	logger.Info().Int("slots", aggregated.SlotCount()).Msg("Notified, scraping disabled until re-enabled")
	outcome = RunOutcomeNotified
	return nil
}
