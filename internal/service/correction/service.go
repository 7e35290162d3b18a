package correction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/correction"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/clockwise-hr/attendance-engine-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
)

type CorrectionServiceImpl struct {
	db *database.DB
	correction.Repository
	attendanceRepo  attendance.Repository
	overtimeService overtime.Service
}

func NewCorrectionService(
	db *database.DB,
	correctionRepo correction.Repository,
	attendanceRepo attendance.Repository,
	overtimeService overtime.Service,
) correction.Service {
	return &CorrectionServiceImpl{
		db:              db,
		Repository:      correctionRepo,
		attendanceRepo:  attendanceRepo,
		overtimeService: overtimeService,
	}
}

// Correct implements correction.Service. The record is never overwritten
// without a ledger entry; replaying the same (record, actor, timestamp)
// payload is a no-op returning the current record.
func (s *CorrectionServiceImpl) Correct(ctx context.Context, req correction.CorrectRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	actorID := req.ActorID
	if actorID == "" {
		_, claims, err := jwtauth.FromContext(ctx)
		if err != nil {
			return attendance.RecordResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
		}
		claimed, ok := claims["actor_id"].(string)
		if !ok || claimed == "" {
			return attendance.RecordResponse{}, fmt.Errorf("actor_id claim is missing or invalid")
		}
		actorID = claimed
	}

	timestamp := req.ParsedTimestamp()

	existing, err := s.Repository.GetByKey(ctx, req.RecordID, actorID, timestamp)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if existing != nil {
		// Retry of an applied correction: hand back the record as it is.
		rec, err := s.attendanceRepo.GetByID(ctx, req.RecordID)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		return attendance.ToRecordResponse(rec), nil
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.RecordID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	changes := req.ToChanges()
	corrected := applyChanges(rec, changes, actorID, timestamp)

	evaluated, err := s.overtimeService.EvaluateRecord(ctx, corrected)
	if err == nil {
		corrected = evaluated
	} else if !errors.Is(err, overtime.ErrNoRuleAssigned) {
		return attendance.RecordResponse{}, err
	}

	var updated attendance.Record
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if _, innerErr := s.Repository.Create(txCtx, correction.Entry{
			RecordID:         rec.ID,
			ActorID:          actorID,
			Timestamp:        timestamp,
			PreviousSnapshot: rec,
			NewValues:        changes,
		}); innerErr != nil {
			return innerErr
		}

		var innerErr error
		updated, innerErr = s.attendanceRepo.Update(txCtx, corrected)
		return innerErr
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.ToRecordResponse(updated), nil
}

// ListByRecord implements correction.Service.
func (s *CorrectionServiceImpl) ListByRecord(ctx context.Context, recordID string) ([]correction.EntryResponse, error) {
	entries, err := s.Repository.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	responses := make([]correction.EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, correction.EntryResponse{
			ID:        entry.ID,
			RecordID:  entry.RecordID,
			ActorID:   entry.ActorID,
			Timestamp: entry.Timestamp.Format(time.RFC3339),
			Note:      entry.NewValues.Note,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return responses, nil
}

// applyChanges lays the correction over the record. Worked minutes are
// recomputed from corrected punches unless the correction sets them
// explicitly.
func applyChanges(rec attendance.Record, changes correction.Changes, actorID string, timestamp time.Time) attendance.Record {
	if changes.ActualCheckIn != nil {
		rec.ActualCheckIn = changes.ActualCheckIn
	}
	if changes.ActualCheckOut != nil {
		rec.ActualCheckOut = changes.ActualCheckOut
	}

	punchesChanged := changes.ActualCheckIn != nil || changes.ActualCheckOut != nil
	if punchesChanged && rec.ActualCheckIn != nil && rec.ActualCheckOut != nil {
		worked := int(rec.ActualCheckOut.Sub(*rec.ActualCheckIn).Minutes())
		if worked < 0 {
			worked = 0
		}
		rec.WorkedMinutes = worked
		rec.OpenPunchAt = nil
		rec.Status = attendance.StatusComplete
	}
	if changes.WorkedMinutes != nil {
		rec.WorkedMinutes = *changes.WorkedMinutes
	}
	if changes.Status != nil {
		rec.Status = attendance.Status(*changes.Status)
	}

	rec.CorrectedBy = &actorID
	rec.CorrectedAt = &timestamp

	return rec
}
