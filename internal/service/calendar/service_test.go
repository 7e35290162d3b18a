package calendar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidayRepo struct {
	byDate map[string]calendar.Holiday
}

func newFakeHolidayRepo() *fakeHolidayRepo {
	return &fakeHolidayRepo{byDate: make(map[string]calendar.Holiday)}
}

func (r *fakeHolidayRepo) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	_, ok := r.byDate[date.Format("2006-01-02")]
	return ok, nil
}

func (r *fakeHolidayRepo) Upsert(_ context.Context, holiday calendar.Holiday) (calendar.Holiday, error) {
	key := holiday.Date.Format("2006-01-02")
	if existing, ok := r.byDate[key]; ok {
		existing.Name = holiday.Name
		r.byDate[key] = existing
		return existing, nil
	}
	holiday.ID = key
	r.byDate[key] = holiday
	return holiday, nil
}

func (r *fakeHolidayRepo) List(_ context.Context, start, end time.Time) ([]calendar.Holiday, error) {
	var out []calendar.Holiday
	for _, h := range r.byDate {
		if !h.Date.Before(start) && !h.Date.After(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

const holidayFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//holidays//EN
BEGIN:VEVENT
UID:new-year@test
DTSTART;VALUE=DATE:20260101
SUMMARY:New Year's Day
END:VEVENT
BEGIN:VEVENT
UID:labour-day@test
DTSTART;VALUE=DATE:20260501
SUMMARY:Labour Day
END:VEVENT
BEGIN:VEVENT
UID:no-summary@test
DTSTART;VALUE=DATE:20260601
END:VEVENT
END:VCALENDAR
`

func TestImportICS(t *testing.T) {
	repo := newFakeHolidayRepo()
	svc := NewCalendarService(repo)

	result, err := svc.ImportICS(context.Background(), strings.NewReader(holidayFeed))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	newYear, ok := repo.byDate["2026-01-01"]
	require.True(t, ok)
	assert.Equal(t, "New Year's Day", newYear.Name)

	isHoliday, err := repo.IsHoliday(context.Background(), time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, isHoliday)
}

func TestImportICSRejectsGarbage(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo())

	_, err := svc.ImportICS(context.Background(), strings.NewReader("not an icalendar feed"))
	assert.Error(t, err)
}

func TestUpsertHoliday(t *testing.T) {
	repo := newFakeHolidayRepo()
	svc := NewCalendarService(repo)
	ctx := context.Background()

	resp, err := svc.UpsertHoliday(ctx, calendar.UpsertHolidayRequest{
		Date: "2026-08-17",
		Name: "Independence Day",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-17", resp.Date)

	// Re-declaring the same date renames, never duplicates.
	renamed, err := svc.UpsertHoliday(ctx, calendar.UpsertHolidayRequest{
		Date: "2026-08-17",
		Name: "National Day",
	})
	require.NoError(t, err)
	assert.Equal(t, "National Day", renamed.Name)
	assert.Len(t, repo.byDate, 1)
}

func TestUpsertHolidayValidation(t *testing.T) {
	svc := NewCalendarService(newFakeHolidayRepo())

	_, err := svc.UpsertHoliday(context.Background(), calendar.UpsertHolidayRequest{
		Date: "17-08-2026",
		Name: "Backwards date",
	})
	assert.Error(t, err)

	_, err = svc.UpsertHoliday(context.Background(), calendar.UpsertHolidayRequest{
		Date: "2026-08-17",
	})
	assert.Error(t, err)
}

func TestListHolidays(t *testing.T) {
	repo := newFakeHolidayRepo()
	svc := NewCalendarService(repo)
	ctx := context.Background()

	for _, h := range []calendar.UpsertHolidayRequest{
		{Date: "2026-01-01", Name: "New Year's Day"},
		{Date: "2026-12-25", Name: "Christmas Day"},
	} {
		_, err := svc.UpsertHoliday(ctx, h)
		require.NoError(t, err)
	}

	holidays, err := svc.ListHolidays(ctx, "2026-01-01", "2026-06-30")
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
}
