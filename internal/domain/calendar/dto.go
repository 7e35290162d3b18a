package calendar

import (
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// HOLIDAY CALENDAR DTOs
// ========================================

type UpsertHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *UpsertHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ParsedDate returns the validated date at UTC midnight.
func (r *UpsertHolidayRequest) ParsedDate() time.Time {
	t, _ := validator.IsValidDate(r.Date)
	return t
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
