package calendar

import "time"

// Holiday is one organization-calendar entry. Dates are stored at midnight.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}
