package response

import (
	"errors"
	"net/http"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/correction"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Shift domain errors
	case errors.Is(err, shift.ErrShiftTypeNotFound):
		NotFound(w, "Shift type not found")
	case errors.Is(err, shift.ErrShiftCodeExists):
		Conflict(w, "Shift type code already exists")
	case errors.Is(err, shift.ErrShiftTypeInactive):
		UnprocessableEntity(w, "SHIFT_INACTIVE", "Shift type is inactive")
	case errors.Is(err, shift.ErrAssignmentNotFound):
		NotFound(w, "Shift assignment not found")
	case errors.Is(err, shift.ErrNotScheduled):
		UnprocessableEntity(w, "NOT_SCHEDULED", "No shift is scheduled for this date")
	case errors.Is(err, shift.ErrInvalidSplitParts):
		BadRequest(w, "Split shift requires ordered, non-overlapping parts", nil)
	case errors.Is(err, shift.ErrInvalidClockTime):
		BadRequest(w, "Clock times must be in HH:mm format", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoOpenPunch):
		UnprocessableEntity(w, "NO_OPEN_PUNCH", "Clock-out without a prior clock-in")
	case errors.Is(err, attendance.ErrOutOfWindowPunch):
		UnprocessableEntity(w, "OUT_OF_WINDOW", "Punch does not match any scheduled sub-window")
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Attendance record is already complete")
	case errors.Is(err, attendance.ErrEmployeeTerminated):
		Forbidden(w, "Terminated employees cannot punch")
	case errors.Is(err, attendance.ErrDayAlreadySwept):
		Conflict(w, "The day has already been closed by the sweep, submit a correction instead")
	case errors.Is(err, attendance.ErrVersionConflict):
		Conflict(w, "Attendance record was modified concurrently, retry the request")

	// Overtime domain errors
	case errors.Is(err, overtime.ErrRuleNotFound):
		NotFound(w, "Overtime rule not found")
	case errors.Is(err, overtime.ErrRuleExists):
		Conflict(w, "Overtime rule code already exists")
	case errors.Is(err, overtime.ErrRuleInactive):
		UnprocessableEntity(w, "RULE_INACTIVE", "Overtime rule is not active or not approved")
	case errors.Is(err, overtime.ErrNoRuleAssigned):
		UnprocessableEntity(w, "NO_RULE_ASSIGNED", "Employee has no overtime rule assigned")

	// Exception domain errors
	case errors.Is(err, exception.ErrExceptionNotFound):
		NotFound(w, "Time exception not found")
	case errors.Is(err, exception.ErrExceptionAlreadyResolved):
		Conflict(w, "Time exception has already been approved or rejected")
	case errors.Is(err, exception.ErrInvalidExceptionType):
		BadRequest(w, "Unknown time exception type", nil)

	// Correction domain errors
	case errors.Is(err, correction.ErrEntryNotFound):
		NotFound(w, "Correction entry not found")
	case errors.Is(err, correction.ErrEmptyChanges):
		BadRequest(w, "Correction must change at least one field", nil)

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
