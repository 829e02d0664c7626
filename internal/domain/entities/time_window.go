package entities

import (
	"fmt"
	"strings"
	"time"
)

// timeOfDayLayout is the HH:MM format of configured window bounds
const timeOfDayLayout = "15:04"

// TimeWindow is an inclusive time-of-day range. Start <= End is not enforced:
// an inverted window matches nothing.
type TimeWindow struct {
	Start time.Duration
	End   time.Duration
}

// ParseTimeWindow parses two HH:MM bounds
func ParseTimeWindow(start, end string) (TimeWindow, error) {
	s, err := parseTimeOfDay(start)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid window start: %w", err)
	}
	e, err := parseTimeOfDay(end)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid window end: %w", err)
	}
	return TimeWindow{Start: s, End: e}, nil
}

func parseTimeOfDay(value string) (time.Duration, error) {
	t, err := time.Parse(timeOfDayLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("time %q must be HH:MM: %w", value, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether the UTC time of day of t lies within the window, bounds included
func (w TimeWindow) Contains(t time.Time) bool {
	offset := TimeOfDay(t)
	return w.Start <= offset && offset <= w.End
}

// Matches reports whether the slot is available and inside the window
func (w TimeWindow) Matches(slot Slot) bool {
	return slot.IsAvailable && w.Contains(slot.Time)
}

// Filter keeps the matching slots in their original order
func (w TimeWindow) Filter(slots []Slot) []Slot {
	var filtered []Slot
	for _, slot := range slots {
		if w.Matches(slot) {
			filtered = append(filtered, slot)
		}
	}
	return filtered
}

// String renders the window as "HH:MM - HH:MM"
func (w TimeWindow) String() string {
	return formatOffset(w.Start) + " - " + formatOffset(w.End)
}

// TimeOfDay returns the offset of t since its UTC midnight, second precision included
func TimeOfDay(t time.Time) time.Duration {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return u.Sub(midnight)
}

func formatOffset(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format(timeOfDayLayout)
}
