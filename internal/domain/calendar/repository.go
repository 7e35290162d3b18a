package calendar

import (
	"context"
	"time"
)

// Repository defines data access for the organization calendar.
type Repository interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)

	// Upsert inserts the holiday or renames an existing one on the same date.
	Upsert(ctx context.Context, holiday Holiday) (Holiday, error)

	List(ctx context.Context, start, end time.Time) ([]Holiday, error)
}
