package exception

import (
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// TIME EXCEPTION DTOs
// ========================================

type CreateRequest struct {
	// EmployeeID defaults to the employee_id claim.
	EmployeeID         string  `json:"employee_id,omitempty"`
	AttendanceRecordID *string `json:"attendance_record_id,omitempty"`
	Date               string  `json:"date"`
	Type               string  `json:"type"`
	Reason             string  `json:"reason"`
}

func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD",
		})
	}

	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be a known time exception type",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedDate returns the validated date at UTC midnight.
func (r *CreateRequest) ParsedDate() time.Time {
	t, _ := validator.IsValidDate(r.Date)
	return t
}

type Response struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	AttendanceRecordID *string `json:"attendance_record_id,omitempty"`
	Date               string  `json:"date"`
	Type               string  `json:"type"`
	Status             string  `json:"status"`
	Reason             string  `json:"reason"`
	ResolvedBy         *string `json:"resolved_by,omitempty"`
	ResolvedAt         *string `json:"resolved_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Exceptions []Response `json:"exceptions"`
}
