package shift

import "errors"

// Shift domain errors
var (
	ErrShiftTypeNotFound  = errors.New("shift type not found")
	ErrShiftCodeExists    = errors.New("shift type code already exists")
	ErrShiftTypeInactive  = errors.New("shift type is inactive")
	ErrAssignmentNotFound = errors.New("shift assignment not found")
	ErrNotScheduled       = errors.New("employee has no scheduled shift for this date")
	ErrInvalidSplitParts  = errors.New("split shift requires ordered, non-overlapping parts")
	ErrInvalidClockTime   = errors.New("clock time must be in HH:mm format")
	ErrCategoryMismatch   = errors.New("field is not valid for this shift category")
)
