package attendance

import (
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type PunchRequest struct {
	// EmployeeID defaults to the employee_id claim when empty.
	EmployeeID string `json:"employee_id,omitempty"`
	// Timestamp defaults to the server clock when empty (RFC3339).
	Timestamp string `json:"timestamp,omitempty"`
	// IdempotencyKey lets clients retry safely; replaying a key is a no-op.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Timestamp != "" {
		if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be RFC3339",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedTimestamp returns the request timestamp, or fallback when omitted.
func (r *PunchRequest) ParsedTimestamp(fallback time.Time) time.Time {
	if r.Timestamp == "" {
		return fallback
	}
	t, _ := validator.IsValidDateTime(r.Timestamp)
	return t
}

type RecordResponse struct {
	ID                     string   `json:"id"`
	EmployeeID             string   `json:"employee_id"`
	Date                   string   `json:"date"`
	ShiftTypeID            *string  `json:"shift_type_id,omitempty"`
	ScheduledCheckIn       *string  `json:"scheduled_check_in,omitempty"`
	ScheduledCheckOut      *string  `json:"scheduled_check_out,omitempty"`
	ActualCheckIn          *string  `json:"actual_check_in,omitempty"`
	ActualCheckOut         *string  `json:"actual_check_out,omitempty"`
	WorkedMinutes          int      `json:"worked_minutes"`
	LateMinutes            int      `json:"late_minutes"`
	EarlyDepartureMinutes  int      `json:"early_departure_minutes"`
	OvertimeMinutes        int      `json:"overtime_minutes"`
	EffectiveMultiplier    *float64 `json:"effective_multiplier,omitempty"`
	OvertimePending        bool     `json:"overtime_pending"`
	OvertimeClampedMinutes int      `json:"overtime_clamped_minutes,omitempty"`
	IsLate                 bool     `json:"is_late"`
	IsEarlyDeparture       bool     `json:"is_early_departure"`
	IsMissedPunch          bool     `json:"is_missed_punch"`
	Status                 string   `json:"status"`
	CorrectedBy            *string  `json:"corrected_by,omitempty"`
	CorrectedAt            *string  `json:"corrected_at,omitempty"`
	CreatedAt              string   `json:"created_at"`
	UpdatedAt              string   `json:"updated_at"`
}

// ToRecordResponse converts a record into its API shape.
func ToRecordResponse(rec Record) RecordResponse {
	resp := RecordResponse{
		ID:                     rec.ID,
		EmployeeID:             rec.EmployeeID,
		Date:                   rec.Date.Format("2006-01-02"),
		ShiftTypeID:            rec.ShiftTypeID,
		ScheduledCheckIn:       timePtrToString(rec.ScheduledCheckIn),
		ScheduledCheckOut:      timePtrToString(rec.ScheduledCheckOut),
		ActualCheckIn:          timePtrToString(rec.ActualCheckIn),
		ActualCheckOut:         timePtrToString(rec.ActualCheckOut),
		WorkedMinutes:          rec.WorkedMinutes,
		LateMinutes:            rec.LateMinutes,
		EarlyDepartureMinutes:  rec.EarlyDepartureMinutes,
		OvertimeMinutes:        rec.OvertimeMinutes,
		EffectiveMultiplier:    rec.EffectiveMultiplier,
		OvertimePending:        rec.OvertimePending,
		OvertimeClampedMinutes: rec.OvertimeClampedMinutes,
		IsLate:                 rec.IsLate,
		IsEarlyDeparture:       rec.IsEarlyDeparture,
		IsMissedPunch:          rec.IsMissedPunch,
		Status:                 string(rec.Status),
		CorrectedBy:            rec.CorrectedBy,
		CorrectedAt:            timePtrToString(rec.CorrectedAt),
		CreatedAt:              rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              rec.UpdatedAt.Format(time.RFC3339),
	}
	return resp
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

type Filter struct {
	EmployeeID    *string
	StartDate     *string
	EndDate       *string
	Status        *string
	IsLate        *bool
	IsMissedPunch *bool
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be YYYY-MM-DD",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be YYYY-MM-DD",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}

type FinalizedRequest struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

func (r *FinalizedRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be YYYY-MM-DD",
		})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be YYYY-MM-DD",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
