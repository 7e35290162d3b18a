package overtime

import (
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// OVERTIME RULE DTOs
// ========================================

type CreateRuleRequest struct {
	Code                       string  `json:"code"`
	Name                       string  `json:"name"`
	MinMinutesBeforeOvertime   int     `json:"min_minutes_before_overtime"`
	WeekdayMultiplier          float64 `json:"weekday_multiplier"`
	WeekendMultiplier          float64 `json:"weekend_multiplier"`
	HolidayMultiplier          float64 `json:"holiday_multiplier"`
	NightShiftMultiplier       float64 `json:"night_shift_multiplier"`
	MaxOvertimeMinutesPerDay   int     `json:"max_overtime_minutes_per_day"`
	MaxOvertimeMinutesPerWeek  int     `json:"max_overtime_minutes_per_week"`
	MaxOvertimeMinutesPerMonth int     `json:"max_overtime_minutes_per_month"`
	RequiresPreApproval        bool    `json:"requires_pre_approval"`
}

func (r *CreateRuleRequest) Validate() error {
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

	if r.MinMinutesBeforeOvertime < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "min_minutes_before_overtime",
			Message: "threshold must not be negative",
		})
	}

	for field, m := range map[string]float64{
		"weekday_multiplier":     r.WeekdayMultiplier,
		"weekend_multiplier":     r.WeekendMultiplier,
		"holiday_multiplier":     r.HolidayMultiplier,
		"night_shift_multiplier": r.NightShiftMultiplier,
	} {
		if m < 1.0 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: "multipliers must be at least 1.0",
			})
		}
	}

	for field, cap := range map[string]int{
		"max_overtime_minutes_per_day":   r.MaxOvertimeMinutesPerDay,
		"max_overtime_minutes_per_week":  r.MaxOvertimeMinutesPerWeek,
		"max_overtime_minutes_per_month": r.MaxOvertimeMinutesPerMonth,
	} {
		if cap < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: "caps must be 0 (unlimited) or positive",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RuleResponse struct {
	ID                         string  `json:"id"`
	Code                       string  `json:"code"`
	Name                       string  `json:"name"`
	MinMinutesBeforeOvertime   int     `json:"min_minutes_before_overtime"`
	WeekdayMultiplier          float64 `json:"weekday_multiplier"`
	WeekendMultiplier          float64 `json:"weekend_multiplier"`
	HolidayMultiplier          float64 `json:"holiday_multiplier"`
	NightShiftMultiplier       float64 `json:"night_shift_multiplier"`
	MaxOvertimeMinutesPerDay   int     `json:"max_overtime_minutes_per_day"`
	MaxOvertimeMinutesPerWeek  int     `json:"max_overtime_minutes_per_week"`
	MaxOvertimeMinutesPerMonth int     `json:"max_overtime_minutes_per_month"`
	RequiresPreApproval        bool    `json:"requires_pre_approval"`
	Active                     bool    `json:"active"`
	Approved                   bool    `json:"approved"`
}

type SummaryRequest struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

func (r *SummaryRequest) Validate() error {
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

// Summary is the payroll-facing aggregate. Pending-approval minutes are
// excluded.
type Summary struct {
	EmployeeID           string           `json:"employee_id"`
	PeriodStart          string           `json:"period_start"`
	PeriodEnd            string           `json:"period_end"`
	TotalOvertimeMinutes int64            `json:"total_overtime_minutes"`
	ByMultiplierTier     map[string]int64 `json:"by_multiplier_tier"`
}
