package attendance

import (
	"time"
)

type Status string

const (
	// StatusOpen: clock-in recorded, clock-out pending, day not yet swept.
	StatusOpen Status = "OPEN"
	// StatusIncomplete: the day closed without a clock-out. Terminal until a
	// correction is applied.
	StatusIncomplete Status = "INCOMPLETE"
	// StatusComplete: both punches exist.
	StatusComplete Status = "COMPLETE"
)

// Record is the authoritative per-(employee, date) attendance fact. It is the
// system of record for payroll and is never hard-deleted.
type Record struct {
	ID          string
	EmployeeID  string
	Date        time.Time
	ShiftTypeID *string

	ScheduledCheckIn  *time.Time
	ScheduledCheckOut *time.Time
	// ActualCheckIn is the first punch of the day; ActualCheckOut the last.
	ActualCheckIn  *time.Time
	ActualCheckOut *time.Time
	// OpenPunchAt is the unpaired clock-in of the currently open sub-window.
	// Split shifts punch in and out per part, so this can be set again after
	// a completed pair.
	OpenPunchAt *time.Time

	// WorkedMinutes is always computed from punches, never taken from user
	// input, except through an explicit correction.
	WorkedMinutes         int
	LateMinutes           int
	EarlyDepartureMinutes int

	OvertimeMinutes        int
	EffectiveMultiplier    *float64
	OvertimePending        bool
	OvertimeClampedMinutes int

	IsLate           bool
	IsEarlyDeparture bool
	IsMissedPunch    bool

	Status Status

	CorrectedBy *string
	CorrectedAt *time.Time

	ClockInIdempotencyKey  *string
	ClockOutIdempotencyKey *string

	// Version backs optimistic concurrency control on updates.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Finalized reports whether the record may be handed to payroll: either
// complete, or a missed-punch day that has been resolved by a correction.
func (r Record) Finalized() bool {
	if r.Status == StatusComplete {
		return true
	}
	return r.Status == StatusIncomplete && r.IsMissedPunch && r.CorrectedAt != nil
}
