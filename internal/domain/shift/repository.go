package shift

import (
	"context"
	"time"
)

// ShiftTypeRepository defines data access for shift-type definitions.
type ShiftTypeRepository interface {
	Create(ctx context.Context, shiftType ShiftType) (ShiftType, error)
	GetByID(ctx context.Context, id string) (ShiftType, error)
	GetByCode(ctx context.Context, code string) (ShiftType, error)
	List(ctx context.Context, filter ShiftTypeFilter) ([]ShiftType, int64, error)
	Deactivate(ctx context.Context, code string) error
}

// AssignmentRepository defines data access for employee shift assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment Assignment) (Assignment, error)

	// GetActiveByEmployee returns the employee's single active assignment,
	// or ErrAssignmentNotFound.
	GetActiveByEmployee(ctx context.Context, employeeID string, asOf time.Time) (Assignment, error)

	// DeactivateForEmployee flips any active assignment off, preserving history.
	DeactivateForEmployee(ctx context.Context, employeeID string, at time.Time) error

	ListByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)
}
