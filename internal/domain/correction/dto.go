package correction

import (
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// ========================================
// CORRECTION DTOs
// ========================================

type CorrectRequest struct {
	RecordID string `json:"-"`
	// ActorID defaults to the actor_id claim.
	ActorID string `json:"-"`
	// Timestamp identifies the correction for retry idempotency (RFC3339).
	Timestamp      string  `json:"timestamp"`
	ActualCheckIn  *string `json:"actual_check_in,omitempty"`
	ActualCheckOut *string `json:"actual_check_out,omitempty"`
	WorkedMinutes  *int    `json:"worked_minutes,omitempty"`
	Status         *string `json:"status,omitempty"`
	Note           *string `json:"note,omitempty"`
}

func (r *CorrectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	if _, ok := validator.IsValidDateTime(r.Timestamp); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "timestamp",
			Message: "timestamp must be RFC3339",
		})
	}

	if r.ActualCheckIn != nil {
		if _, ok := validator.IsValidDateTime(*r.ActualCheckIn); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "actual_check_in",
				Message: "actual_check_in must be RFC3339",
			})
		}
	}
	if r.ActualCheckOut != nil {
		if _, ok := validator.IsValidDateTime(*r.ActualCheckOut); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "actual_check_out",
				Message: "actual_check_out must be RFC3339",
			})
		}
	}
	if r.WorkedMinutes != nil && *r.WorkedMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "worked_minutes",
			Message: "worked_minutes must not be negative",
		})
	}

	if r.ActualCheckIn == nil && r.ActualCheckOut == nil && r.WorkedMinutes == nil && r.Status == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "changes",
			Message: "at least one field must be corrected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToChanges converts validated payload strings into typed changes.
func (r *CorrectRequest) ToChanges() Changes {
	changes := Changes{
		WorkedMinutes: r.WorkedMinutes,
		Status:        r.Status,
		Note:          r.Note,
	}
	if r.ActualCheckIn != nil {
		t, _ := validator.IsValidDateTime(*r.ActualCheckIn)
		changes.ActualCheckIn = &t
	}
	if r.ActualCheckOut != nil {
		t, _ := validator.IsValidDateTime(*r.ActualCheckOut)
		changes.ActualCheckOut = &t
	}
	return changes
}

// ParsedTimestamp returns the idempotency timestamp.
func (r *CorrectRequest) ParsedTimestamp() time.Time {
	t, _ := validator.IsValidDateTime(r.Timestamp)
	return t
}

type EntryResponse struct {
	ID        string  `json:"id"`
	RecordID  string  `json:"record_id"`
	ActorID   string  `json:"actor_id"`
	Timestamp string  `json:"timestamp"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}
