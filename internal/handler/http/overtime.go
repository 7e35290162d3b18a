package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	CreateRule(w http.ResponseWriter, r *http.Request)
	GetRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	ApproveRule(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.Service
}

func NewOvertimeHandler(overtimeService overtime.Service) OvertimeHandler {
	return &overtimeHandlerImpl{overtimeService: overtimeService}
}

// CreateRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req overtime.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode overtime rule request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.overtimeService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime rule created", result)
}

// GetRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) GetRule(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	result, err := h.overtimeService.GetRule(r.Context(), code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRules implements OvertimeHandler.
func (h *overtimeHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.ListRules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApproveRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) ApproveRule(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.overtimeService.ApproveRule(r.Context(), code); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime rule approved", nil)
}

// GetSummary implements OvertimeHandler.
func (h *overtimeHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	req := overtime.SummaryRequest{
		EmployeeID: r.URL.Query().Get("employee_id"),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.overtimeService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
