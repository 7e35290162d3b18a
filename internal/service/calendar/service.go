package calendar

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/calendar"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

type CalendarServiceImpl struct {
	calendar.Repository
}

func NewCalendarService(holidayRepo calendar.Repository) calendar.Service {
	return &CalendarServiceImpl{Repository: holidayRepo}
}

// UpsertHoliday implements calendar.Service.
func (s *CalendarServiceImpl) UpsertHoliday(ctx context.Context, req calendar.UpsertHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	holiday, err := s.Repository.Upsert(ctx, calendar.Holiday{
		Date: req.ParsedDate(),
		Name: req.Name,
	})
	if err != nil {
		return calendar.HolidayResponse{}, fmt.Errorf("failed to upsert holiday: %w", err)
	}

	return toHolidayResponse(holiday), nil
}

// ListHolidays implements calendar.Service.
func (s *CalendarServiceImpl) ListHolidays(ctx context.Context, startDate, endDate string) ([]calendar.HolidayResponse, error) {
	start, ok := validator.IsValidDate(startDate)
	if !ok {
		start = time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	end, ok := validator.IsValidDate(endDate)
	if !ok {
		end = time.Date(start.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	}

	holidays, err := s.Repository.List(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, toHolidayResponse(h))
	}
	return responses, nil
}

// ImportICS implements calendar.Service. Events without a summary or a
// parseable DTSTART are skipped rather than failing the whole feed.
func (s *CalendarServiceImpl) ImportICS(ctx context.Context, r io.Reader) (calendar.ImportResult, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return calendar.ImportResult{}, fmt.Errorf("failed to parse iCalendar feed: %w", err)
	}

	var result calendar.ImportResult
	for _, event := range cal.Events() {
		date, name, ok := parseHolidayEvent(event)
		if !ok {
			result.Skipped++
			continue
		}

		if _, err := s.Repository.Upsert(ctx, calendar.Holiday{Date: date, Name: name}); err != nil {
			return calendar.ImportResult{}, fmt.Errorf("failed to store imported holiday %q: %w", name, err)
		}
		result.Imported++
	}

	return result, nil
}

func parseHolidayEvent(event *ics.VEvent) (time.Time, string, bool) {
	summary := event.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return time.Time{}, "", false
	}

	start := event.GetProperty(ics.ComponentPropertyDtStart)
	if start == nil {
		return time.Time{}, "", false
	}

	// Holiday feeds publish all-day events; date-times are truncated to
	// their date.
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, start.Value); err == nil {
			date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return date, strings.TrimSpace(summary.Value), true
		}
	}

	return time.Time{}, "", false
}

func toHolidayResponse(h calendar.Holiday) calendar.HolidayResponse {
	return calendar.HolidayResponse{
		ID:   h.ID,
		Date: h.Date.Format("2006-01-02"),
		Name: h.Name,
	}
}
