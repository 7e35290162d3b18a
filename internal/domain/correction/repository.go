package correction

import (
	"context"
	"time"
)

// Repository defines data access for the correction ledger.
type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)

	// GetByKey returns the entry for the idempotency key
	// (recordID, actorID, timestamp), or nil when none exists.
	GetByKey(ctx context.Context, recordID, actorID string, timestamp time.Time) (*Entry, error)

	ListByRecord(ctx context.Context, recordID string) ([]Entry, error)
}
