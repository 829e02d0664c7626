package entities

// DateSelectionMode records which date-selection rule produced the queried dates
type DateSelectionMode string

const (
	DateSelectionExplicit  DateSelectionMode = "explicit"
	DateSelectionDaysAhead DateSelectionMode = "days_ahead"
	DateSelectionToday     DateSelectionMode = "today"
)

// RunMetadata describes the run configuration rendered below the slot list
type RunMetadata struct {
	Window        TimeWindow
	Mode          DateSelectionMode
	ExplicitDates []string
	DaysAhead     int
}
