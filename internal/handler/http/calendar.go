package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/calendar"
	"github.com/clockwise-hr/attendance-engine-go/internal/handler/http/response"
)

// icsMaxFeedSize bounds imported calendar feeds to keep a hostile upload
// from exhausting memory.
const icsMaxFeedSize = 5 << 20

type CalendarHandler interface {
	UpsertHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)
	ImportICS(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.Service
}

func NewCalendarHandler(calendarService calendar.Service) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService}
}

// UpsertHoliday implements CalendarHandler.
func (h *calendarHandlerImpl) UpsertHoliday(w http.ResponseWriter, r *http.Request) {
	var req calendar.UpsertHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode holiday request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.calendarService.UpsertHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday saved", result)
}

// ListHolidays implements CalendarHandler.
func (h *calendarHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	result, err := h.calendarService.ListHolidays(r.Context(),
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ImportICS implements CalendarHandler. The request body is the raw
// iCalendar feed.
func (h *calendarHandlerImpl) ImportICS(w http.ResponseWriter, r *http.Request) {
	result, err := h.calendarService.ImportICS(r.Context(), io.LimitReader(r.Body, icsMaxFeedSize))
	if err != nil {
		response.BadRequest(w, "Failed to import iCalendar feed", nil)
		return
	}

	response.SuccessWithMessage(w, "Holiday feed imported", result)
}
