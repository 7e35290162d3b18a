package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/correction"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.Repository {
	return &correctionRepository{db: db}
}

// Create implements correction.Repository.
func (r *correctionRepository) Create(ctx context.Context, entry correction.Entry) (correction.Entry, error) {
	q := GetQuerier(ctx, r.db)

	snapshotJSON, err := json.Marshal(entry.PreviousSnapshot)
	if err != nil {
		return correction.Entry{}, fmt.Errorf("failed to encode previous snapshot: %w", err)
	}
	changesJSON, err := json.Marshal(entry.NewValues)
	if err != nil {
		return correction.Entry{}, fmt.Errorf("failed to encode new values: %w", err)
	}

	query := `
		INSERT INTO correction_entries (
			record_id, actor_id, timestamp, previous_snapshot, new_values
		) VALUES (
			$1, $2, $3, $4, $5
		)
		ON CONFLICT (record_id, actor_id, timestamp) DO NOTHING
		RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		entry.RecordID,
		entry.ActorID,
		entry.Timestamp,
		snapshotJSON,
		changesJSON,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict path: the same correction was already journaled.
			existing, getErr := r.GetByKey(ctx, entry.RecordID, entry.ActorID, entry.Timestamp)
			if getErr != nil {
				return correction.Entry{}, getErr
			}
			if existing == nil {
				return correction.Entry{}, correction.ErrEntryNotFound
			}
			return *existing, nil
		}
		return correction.Entry{}, fmt.Errorf("failed to create correction entry: %w", err)
	}

	return entry, nil
}

// GetByKey implements correction.Repository.
func (r *correctionRepository) GetByKey(ctx context.Context, recordID, actorID string, timestamp time.Time) (*correction.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, record_id, actor_id, timestamp, previous_snapshot, new_values, created_at
		FROM correction_entries
		WHERE record_id = $1 AND actor_id = $2 AND timestamp = $3
		LIMIT 1
	`

	entry, err := scanCorrectionEntry(q.QueryRow(ctx, query, recordID, actorID, timestamp))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get correction entry by key: %w", err)
	}

	return &entry, nil
}

// ListByRecord implements correction.Repository.
func (r *correctionRepository) ListByRecord(ctx context.Context, recordID string) ([]correction.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, record_id, actor_id, timestamp, previous_snapshot, new_values, created_at
		FROM correction_entries
		WHERE record_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correction entries: %w", err)
	}
	defer rows.Close()

	var entries []correction.Entry
	for rows.Next() {
		entry, err := scanCorrectionEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func scanCorrectionEntry(row pgx.Row) (correction.Entry, error) {
	var entry correction.Entry
	var snapshotJSON, changesJSON []byte

	err := row.Scan(
		&entry.ID, &entry.RecordID, &entry.ActorID, &entry.Timestamp,
		&snapshotJSON, &changesJSON, &entry.CreatedAt,
	)
	if err != nil {
		return correction.Entry{}, err
	}

	var snapshot attendance.Record
	if err := json.Unmarshal(snapshotJSON, &snapshot); err != nil {
		return correction.Entry{}, fmt.Errorf("failed to decode previous snapshot: %w", err)
	}
	entry.PreviousSnapshot = snapshot

	var changes correction.Changes
	if err := json.Unmarshal(changesJSON, &changes); err != nil {
		return correction.Entry{}, fmt.Errorf("failed to decode new values: %w", err)
	}
	entry.NewValues = changes

	return entry, nil
}
