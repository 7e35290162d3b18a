package attendance

import (
	"context"
)

// Service is the punch reconciler's surface.
type Service interface {
	ClockIn(ctx context.Context, req PunchRequest) (RecordResponse, error)
	ClockOut(ctx context.Context, req PunchRequest) (RecordResponse, error)

	Get(ctx context.Context, id string) (RecordResponse, error)
	List(ctx context.Context, filter Filter) (ListResponse, error)
	GetFinalized(ctx context.Context, req FinalizedRequest) ([]RecordResponse, error)

	// Sweep closes every open record for dates strictly before "today" in
	// each employee's timezone, marking missed punches and raising
	// exceptions. Idempotent per date.
	Sweep(ctx context.Context) error
}
