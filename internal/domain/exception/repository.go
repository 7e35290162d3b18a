package exception

import (
	"context"
	"time"
)

type Filter struct {
	EmployeeID *string
	Type       *string
	Status     *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

// Repository defines data access for time exceptions.
type Repository interface {
	Create(ctx context.Context, exc TimeException) (TimeException, error)
	GetByID(ctx context.Context, id string) (TimeException, error)
	List(ctx context.Context, filter Filter) ([]TimeException, int64, error)

	// HasOpenForRecord prevents duplicate automatic exceptions per record
	// and type.
	HasOpenForRecord(ctx context.Context, recordID string, excType Type) (bool, error)

	// HasApprovedForDate backs pre-approval gating for overtime.
	HasApprovedForDate(ctx context.Context, employeeID string, date time.Time, excType Type) (bool, error)

	UpdateStatus(ctx context.Context, id string, status Status, resolvedBy string, resolvedAt time.Time) error
}
