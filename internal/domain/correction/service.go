package correction

import (
	"context"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
)

// Service applies audited, idempotent corrections to attendance records.
type Service interface {
	Correct(ctx context.Context, req CorrectRequest) (attendance.RecordResponse, error)
	ListByRecord(ctx context.Context, recordID string) ([]EntryResponse, error)
}
