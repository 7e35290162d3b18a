package http

import (
	"fmt"
	"net/http"

	"github.com/clockwise-hr/attendance-engine-go/internal/handler/http/response"
	"github.com/clockwise-hr/attendance-engine-go/internal/service/report"
)

type ReportHandler interface {
	ExportOvertime(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// ExportOvertime implements ReportHandler. Streams the period's overtime
// ledger as an XLSX download.
func (h *reportHandlerImpl) ExportOvertime(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	if employeeID == "" || startDate == "" || endDate == "" {
		response.BadRequest(w, "employee_id, start_date and end_date are required", nil)
		return
	}

	buf, filename, err := h.reportService.ExportOvertimeXLSX(r.Context(), employeeID, startDate, endDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
