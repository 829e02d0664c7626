package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

const isoDateLayout = "2006-01-02"

// DateSelection is the raw date configuration. SpecificDays wins over DaysAhead.
type DateSelection struct {
	SpecificDays string
	DaysAhead    string
}

// DateSelectionResult holds the dates to query and the rule that produced them
type DateSelectionResult struct {
	Dates         []entities.DateQuery
	Mode          entities.DateSelectionMode
	ExplicitDates []string
	DaysAhead     int
}

// Metadata describes the selection for the notification footer
func (r DateSelectionResult) Metadata(window entities.TimeWindow) entities.RunMetadata {
	return entities.RunMetadata{
		Window:        window,
		Mode:          r.Mode,
		ExplicitDates: r.ExplicitDates,
		DaysAhead:     r.DaysAhead,
	}
}

// DateSelector resolves which calendar days a run inspects
type DateSelector struct{}

// NewDateSelector creates a new date selector
func NewDateSelector() *DateSelector {
	return &DateSelector{}
}

// ComputeDates applies, in order: explicit list, day-count, today.
// Malformed explicit entries and a non-integer day-count are logged, never fatal.
func (s *DateSelector) ComputeDates(selection DateSelection, now time.Time) DateSelectionResult {
	today := entities.NewDateQuery(now)

	if specific := strings.TrimSpace(selection.SpecificDays); specific != "" {
		result := DateSelectionResult{Mode: entities.DateSelectionExplicit, Dates: []entities.DateQuery{}}
		for _, raw := range strings.Split(specific, ",") {
			entry := strings.TrimSpace(raw)
			day, err := time.Parse(isoDateLayout, entry)
			if err != nil {
				log.Warn().
					Err(apperrors.NewDateParseError("invalid date, use YYYY-MM-DD", err)).
					Str("entry", entry).
					Msg("Skipping explicit date")
				continue
			}
			query := entities.NewDateQuery(day)
			result.Dates = append(result.Dates, query)
			result.ExplicitDates = append(result.ExplicitDates, query.Label())
		}
		return result
	}

	if daysAhead := strings.TrimSpace(selection.DaysAhead); daysAhead != "" {
		n, err := strconv.Atoi(daysAhead)
		if err == nil {
			result := DateSelectionResult{Mode: entities.DateSelectionDaysAhead, DaysAhead: n, Dates: []entities.DateQuery{}}
			for i := 0; i < n; i++ {
				result.Dates = append(result.Dates, today.AddDays(i))
			}
			return result
		}
		log.Warn().Str("value", daysAhead).Msg("CHECK_DAYS_AHEAD must be an integer, checking today only")
	}

	return DateSelectionResult{
		Mode:  entities.DateSelectionToday,
		Dates: []entities.DateQuery{today},
	}
}
