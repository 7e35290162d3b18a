package shift

import (
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// SHIFT CATALOG DTOs
// ========================================

type SplitPartPayload struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type CreateShiftTypeRequest struct {
	Code                 string             `json:"code"`
	Name                 string             `json:"name"`
	Category             string             `json:"category"`
	StartTime            string             `json:"start_time"`
	EndTime              string             `json:"end_time"`
	BreakDurationMinutes int                `json:"break_duration_minutes"`
	SplitParts           []SplitPartPayload `json:"split_parts,omitempty"`
	IsNightShift         bool               `json:"is_night_shift"`
	IsWeekendShift       bool               `json:"is_weekend_shift"`
	GraceMinutesIn       int                `json:"grace_minutes_in"`
	GraceMinutesOut      int                `json:"grace_minutes_out"`
}

func (r *CreateShiftTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 2-30 characters of A-Z, 0-9, _ or -",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if !validator.IsInSlice(r.Category, CategoryValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be one of NORMAL, SPLIT, OVERNIGHT, ROTATIONAL, FLEXIBLE",
		})
	}

	if !validator.IsValidClockTime(r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be HH:mm",
		})
	}

	if !validator.IsValidClockTime(r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be HH:mm",
		})
	}

	if r.GraceMinutesIn < 0 || r.GraceMinutesOut < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "grace_minutes",
			Message: "grace minutes must not be negative",
		})
	}

	if r.BreakDurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_duration_minutes",
			Message: "break duration must not be negative",
		})
	}

	// Category-specific fields are closed variants: split parts belong to
	// SPLIT only, and SPLIT must carry them.
	switch Category(r.Category) {
	case CategorySplit:
		if len(r.SplitParts) == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "split_parts",
				Message: "split shift requires at least one part",
			})
		}
		for i, part := range r.SplitParts {
			if !validator.IsValidClockTime(part.StartTime) || !validator.IsValidClockTime(part.EndTime) {
				errs = append(errs, validator.ValidationError{
					Field:   "split_parts",
					Message: "split part times must be HH:mm",
				})
				break
			}
			start, _ := ParseClockTime(part.StartTime)
			end, _ := ParseClockTime(part.EndTime)
			if end <= start {
				errs = append(errs, validator.ValidationError{
					Field:   "split_parts",
					Message: "each split part must end after it starts",
				})
				break
			}
			if i > 0 {
				prevEnd, _ := ParseClockTime(r.SplitParts[i-1].EndTime)
				if start < prevEnd {
					errs = append(errs, validator.ValidationError{
						Field:   "split_parts",
						Message: "split parts must be ordered by start time and must not overlap",
					})
					break
				}
			}
		}
	default:
		if len(r.SplitParts) > 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "split_parts",
				Message: "split_parts is only valid for SPLIT shifts",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftTypeFilter struct {
	Category   *string
	ActiveOnly bool
	Page       int
	Limit      int
}

type AssignShiftRequest struct {
	EmployeeID    string `json:"employee_id"`
	ShiftTypeCode string `json:"shift_type_code"`
}

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsValidCode(r.ShiftTypeCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type_code",
			Message: "shift_type_code must be a valid shift code",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ShiftTypeResponse struct {
	ID                   string             `json:"id"`
	Code                 string             `json:"code"`
	Name                 string             `json:"name"`
	Category             string             `json:"category"`
	StartTime            string             `json:"start_time"`
	EndTime              string             `json:"end_time"`
	TotalDurationMinutes int                `json:"total_duration_minutes"`
	BreakDurationMinutes int                `json:"break_duration_minutes"`
	SplitParts           []SplitPartPayload `json:"split_parts,omitempty"`
	IsNightShift         bool               `json:"is_night_shift"`
	IsWeekendShift       bool               `json:"is_weekend_shift"`
	GraceMinutesIn       int                `json:"grace_minutes_in"`
	GraceMinutesOut      int                `json:"grace_minutes_out"`
	Active               bool               `json:"active"`
}

type AssignmentResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	ShiftTypeID   string  `json:"shift_type_id"`
	IsActive      bool    `json:"is_active"`
	AssignedAt    string  `json:"assigned_at"`
	DeactivatedAt *string `json:"deactivated_at,omitempty"`
}

type ListShiftTypesResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	ShiftTypes []ShiftTypeResponse `json:"shift_types"`
}
