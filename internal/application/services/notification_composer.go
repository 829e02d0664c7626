package services

import (
	"fmt"
	"strings"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
)

const slotTimeLayout = "15:04"

// Compose renders the aggregated slots and the run settings as a plain-text message
func Compose(result entities.AggregatedResult, meta entities.RunMetadata) string {
	var b strings.Builder

	for _, entry := range result.Entries() {
		fmt.Fprintf(&b, "Slots available on %s:\n", entry.Label)
		for _, slot := range entry.Slots {
			b.WriteString(" - ")
			b.WriteString(slot.Time.UTC().Format(slotTimeLayout))
			if slot.StaffID != nil {
				fmt.Fprintf(&b, " (staff: %s)", *slot.StaffID)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Time window: %s\n", meta.Window)
	fmt.Fprintf(&b, "Date selection: %s", describeSelection(meta))

	return b.String()
}

func describeSelection(meta entities.RunMetadata) string {
	switch meta.Mode {
	case entities.DateSelectionExplicit:
		return "explicit dates " + strings.Join(meta.ExplicitDates, ", ")
	case entities.DateSelectionDaysAhead:
		if meta.DaysAhead == 1 {
			return "next 1 day"
		}
		return fmt.Sprintf("next %d days", meta.DaysAhead)
	default:
		return "today only"
	}
}
