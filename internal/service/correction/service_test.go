package correction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/correction"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCorrectionRepo struct {
	entries []correction.Entry
	nextID  int
}

func (r *fakeCorrectionRepo) Create(_ context.Context, entry correction.Entry) (correction.Entry, error) {
	for _, existing := range r.entries {
		if existing.RecordID == entry.RecordID && existing.ActorID == entry.ActorID && existing.Timestamp.Equal(entry.Timestamp) {
			return existing, nil
		}
	}
	r.nextID++
	entry.ID = fmt.Sprintf("cor-%d", r.nextID)
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *fakeCorrectionRepo) GetByKey(_ context.Context, recordID, actorID string, timestamp time.Time) (*correction.Entry, error) {
	for _, entry := range r.entries {
		if entry.RecordID == recordID && entry.ActorID == actorID && entry.Timestamp.Equal(timestamp) {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeCorrectionRepo) ListByRecord(_ context.Context, recordID string) ([]correction.Entry, error) {
	var out []correction.Entry
	for _, entry := range r.entries {
		if entry.RecordID == recordID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// fakeAttendanceRepo only backs lookup and CAS update.
type fakeAttendanceRepo struct {
	attendance.Repository
	records map[string]attendance.Record
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	rec, ok := r.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	stored, ok := r.records[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if stored.Version != rec.Version {
		return attendance.Record{}, attendance.ErrVersionConflict
	}
	rec.Version++
	r.records[rec.ID] = rec
	return rec, nil
}

type stubOvertimeService struct {
	overtime.Service
	evaluations int
	evaluate    func(rec attendance.Record) (attendance.Record, error)
}

func (s *stubOvertimeService) EvaluateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	s.evaluations++
	if s.evaluate != nil {
		return s.evaluate(rec)
	}
	return attendance.Record{}, overtime.ErrNoRuleAssigned
}

func seedRecord() attendance.Record {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return attendance.Record{
		ID:            "rec-1",
		EmployeeID:    "emp-1",
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ActualCheckIn: &checkIn,
		IsMissedPunch: true,
		Status:        attendance.StatusIncomplete,
		Version:       1,
	}
}

func newTestService(t *testing.T) (correction.Service, *fakeCorrectionRepo, *fakeAttendanceRepo, *stubOvertimeService) {
	t.Helper()
	ledger := &fakeCorrectionRepo{}
	records := &fakeAttendanceRepo{records: map[string]attendance.Record{"rec-1": seedRecord()}}
	evaluator := &stubOvertimeService{}
	svc := NewCorrectionService(nil, ledger, records, evaluator)
	return svc, ledger, records, evaluator
}

func strPtr(s string) *string { return &s }

func TestCorrectRecomputesWorkedMinutes(t *testing.T) {
	svc, ledger, records, _ := newTestService(t)

	resp, err := svc.Correct(context.Background(), correction.CorrectRequest{
		RecordID:       "rec-1",
		ActorID:        "mgr-1",
		Timestamp:      "2026-03-03T08:00:00Z",
		ActualCheckOut: strPtr("2026-03-02T17:00:00Z"),
		Note:           strPtr("forgot badge at the gate"),
	})
	require.NoError(t, err)

	assert.Equal(t, 480, resp.WorkedMinutes)
	assert.Equal(t, string(attendance.StatusComplete), resp.Status)
	require.NotNil(t, resp.CorrectedBy)
	assert.Equal(t, "mgr-1", *resp.CorrectedBy)
	require.NotNil(t, resp.CorrectedAt)

	require.Len(t, ledger.entries, 1)
	// The ledger snapshots the record as it was before the change.
	assert.Equal(t, attendance.StatusIncomplete, ledger.entries[0].PreviousSnapshot.Status)
	assert.Equal(t, 2, records.records["rec-1"].Version)
}

func TestCorrectReplayIsNoOp(t *testing.T) {
	svc, ledger, records, evaluator := newTestService(t)

	req := correction.CorrectRequest{
		RecordID:       "rec-1",
		ActorID:        "mgr-1",
		Timestamp:      "2026-03-03T08:00:00Z",
		ActualCheckOut: strPtr("2026-03-02T17:00:00Z"),
	}

	first, err := svc.Correct(context.Background(), req)
	require.NoError(t, err)

	replay, err := svc.Correct(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.WorkedMinutes, replay.WorkedMinutes)
	assert.Len(t, ledger.entries, 1)
	// The replay returns the stored record without another write or
	// evaluation.
	assert.Equal(t, 2, records.records["rec-1"].Version)
	assert.Equal(t, 1, evaluator.evaluations)
}

func TestCorrectReevaluatesOvertime(t *testing.T) {
	svc, _, records, evaluator := newTestService(t)
	evaluator.evaluate = func(rec attendance.Record) (attendance.Record, error) {
		rec.OvertimeMinutes = 45
		multiplier := 1.5
		rec.EffectiveMultiplier = &multiplier
		return rec, nil
	}

	resp, err := svc.Correct(context.Background(), correction.CorrectRequest{
		RecordID:       "rec-1",
		ActorID:        "mgr-1",
		Timestamp:      "2026-03-03T08:00:00Z",
		ActualCheckOut: strPtr("2026-03-02T17:45:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, 45, resp.OvertimeMinutes)
	require.NotNil(t, resp.EffectiveMultiplier)
	assert.InDelta(t, 1.5, *resp.EffectiveMultiplier, 1e-9)
	assert.Equal(t, 45, records.records["rec-1"].OvertimeMinutes)
}

func TestCorrectRequiresChanges(t *testing.T) {
	svc, ledger, _, _ := newTestService(t)

	_, err := svc.Correct(context.Background(), correction.CorrectRequest{
		RecordID:  "rec-1",
		ActorID:   "mgr-1",
		Timestamp: "2026-03-03T08:00:00Z",
	})
	assert.Error(t, err)
	assert.Empty(t, ledger.entries)
}

func TestListByRecord(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Correct(context.Background(), correction.CorrectRequest{
		RecordID:       "rec-1",
		ActorID:        "mgr-1",
		Timestamp:      "2026-03-03T08:00:00Z",
		ActualCheckOut: strPtr("2026-03-02T17:00:00Z"),
		Note:           strPtr("missed badge-out"),
	})
	require.NoError(t, err)

	entries, err := svc.ListByRecord(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mgr-1", entries[0].ActorID)
	require.NotNil(t, entries[0].Note)
	assert.Equal(t, "missed badge-out", *entries[0].Note)
}
