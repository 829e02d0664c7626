package entities

import (
	"time"
)

// dateLabelLayout is the calendar-date label used as aggregation key and in messages
const dateLabelLayout = "2006-01-02"

// DateQuery is a calendar day to inspect, always normalized to 00:00:00 UTC
type DateQuery struct {
	day time.Time
}

// NewDateQuery normalizes t to midnight UTC of its UTC calendar day
func NewDateQuery(t time.Time) DateQuery {
	u := t.UTC()
	return DateQuery{day: time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the UTC midnight instant
func (d DateQuery) Time() time.Time {
	return d.day
}

// Unix returns the UTC midnight instant in Unix seconds, as expected by the availability API
func (d DateQuery) Unix() int64 {
	return d.day.Unix()
}

// Label returns the YYYY-MM-DD label of the day
func (d DateQuery) Label() string {
	return d.day.Format(dateLabelLayout)
}

// AddDays returns the query n calendar days later
func (d DateQuery) AddDays(n int) DateQuery {
	return DateQuery{day: d.day.AddDate(0, 0, n)}
}

// Slot is a single bookable instant returned by the availability API
type Slot struct {
	Time        time.Time `json:"time"`
	StaffID     *string   `json:"staff_id,omitempty"`
	IsAvailable bool      `json:"is_available"`
}

// Session is the bearer token sent as the client_session cookie
type Session string

// String masks the token so it never ends up verbatim in logs
func (s Session) String() string {
	if len(s) <= 6 {
		return "***"
	}
	return string(s[:3]) + "***" + string(s[len(s)-3:])
}

// Value returns the raw token
func (s Session) Value() string {
	return string(s)
}
