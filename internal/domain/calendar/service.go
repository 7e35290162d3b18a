package calendar

import (
	"context"
	"io"
)

// Service manages the holiday calendar the overtime evaluator reads.
type Service interface {
	UpsertHoliday(ctx context.Context, req UpsertHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, startDate, endDate string) ([]HolidayResponse, error)

	// ImportICS loads all-day events from an iCalendar feed as holidays.
	ImportICS(ctx context.Context, r io.Reader) (ImportResult, error)
}
