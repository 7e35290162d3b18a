package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrNoOpenPunch        = errors.New("clock-out without a prior clock-in")
	ErrOutOfWindowPunch   = errors.New("punch does not match any scheduled sub-window")
	ErrAlreadyClockedOut  = errors.New("attendance record is already complete")
	ErrEmployeeTerminated = errors.New("terminated employees cannot punch")
	ErrDayAlreadySwept    = errors.New("the day has already been closed by the sweep")

	// General errors
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrVersionConflict = errors.New("attendance record was modified concurrently")
)
