package attendance

import (
	"context"
	"time"
)

// Repository defines data access for attendance records.
type Repository interface {
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// GetByEmployeeAndDate returns nil when no record exists for the date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update is a compare-and-swap on the record's version; it returns
	// ErrVersionConflict when the stored version moved.
	Update(ctx context.Context, record Record) (Record, error)

	List(ctx context.Context, filter Filter) ([]Record, int64, error)

	// ListUnswept returns OPEN records whose date is strictly before the
	// given boundary, for the end-of-day sweep.
	ListUnswept(ctx context.Context, before time.Time) ([]Record, error)

	// ListFinalized returns payroll-facing records in the period (inclusive).
	ListFinalized(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)

	// SumFinalizedOvertime aggregates non-pending overtime minutes in the
	// period, excluding the given record, for weekly/monthly cap checks.
	SumFinalizedOvertime(ctx context.Context, employeeID string, start, end time.Time, excludeRecordID string) (int, error)

	// SumOvertimeByMultiplier groups non-pending overtime minutes in the
	// period by effective multiplier.
	SumOvertimeByMultiplier(ctx context.Context, employeeID string, start, end time.Time) (map[string]int64, error)
}
