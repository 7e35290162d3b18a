package correction

import (
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
)

// Changes names the fields a correction may override. Nil fields are left
// untouched.
type Changes struct {
	ActualCheckIn  *time.Time `json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time `json:"actual_check_out,omitempty"`
	WorkedMinutes  *int       `json:"worked_minutes,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Note           *string    `json:"note,omitempty"`
}

// Entry is one audit-trail row. Records are never overwritten without one.
type Entry struct {
	ID       string
	RecordID string
	ActorID  string
	// Timestamp is client-supplied and part of the idempotency key
	// (RecordID, ActorID, Timestamp); replays are no-ops.
	Timestamp        time.Time
	PreviousSnapshot attendance.Record
	NewValues        Changes
	CreatedAt        time.Time
}
