package shift

import (
	"context"
	"time"
)

// Service covers the shift catalog plus calendar resolution.
type Service interface {
	CreateShiftType(ctx context.Context, req CreateShiftTypeRequest) (ShiftTypeResponse, error)
	GetShiftType(ctx context.Context, code string) (ShiftTypeResponse, error)
	ListShiftTypes(ctx context.Context, filter ShiftTypeFilter) (ListShiftTypesResponse, error)
	DeactivateShiftType(ctx context.Context, code string) error

	Assign(ctx context.Context, req AssignShiftRequest) (AssignmentResponse, error)
	ListAssignments(ctx context.Context, employeeID string) ([]AssignmentResponse, error)

	// Resolve returns the concrete scheduled window(s) for an employee on a
	// calendar date (local midnight), or ErrNotScheduled.
	Resolve(ctx context.Context, employeeID string, date time.Time) (ScheduledWindow, error)
}
