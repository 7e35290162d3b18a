package exception

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExceptionRepo struct {
	exceptions map[string]exception.TimeException
	nextID     int
}

func newFakeExceptionRepo() *fakeExceptionRepo {
	return &fakeExceptionRepo{exceptions: make(map[string]exception.TimeException)}
}

func (r *fakeExceptionRepo) Create(_ context.Context, exc exception.TimeException) (exception.TimeException, error) {
	r.nextID++
	exc.ID = fmt.Sprintf("exc-%d", r.nextID)
	r.exceptions[exc.ID] = exc
	return exc, nil
}

func (r *fakeExceptionRepo) GetByID(_ context.Context, id string) (exception.TimeException, error) {
	exc, ok := r.exceptions[id]
	if !ok {
		return exception.TimeException{}, exception.ErrExceptionNotFound
	}
	return exc, nil
}

func (r *fakeExceptionRepo) List(_ context.Context, filter exception.Filter) ([]exception.TimeException, int64, error) {
	var out []exception.TimeException
	for _, exc := range r.exceptions {
		if filter.EmployeeID != nil && exc.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, exc)
	}
	return out, int64(len(out)), nil
}

func (r *fakeExceptionRepo) HasOpenForRecord(_ context.Context, recordID string, excType exception.Type) (bool, error) {
	for _, exc := range r.exceptions {
		if exc.AttendanceRecordID != nil && *exc.AttendanceRecordID == recordID &&
			exc.Type == excType && exc.Status == exception.StatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeExceptionRepo) HasApprovedForDate(_ context.Context, employeeID string, date time.Time, excType exception.Type) (bool, error) {
	for _, exc := range r.exceptions {
		if exc.EmployeeID == employeeID && exc.Type == excType && exc.Status == exception.StatusApproved &&
			exc.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeExceptionRepo) UpdateStatus(_ context.Context, id string, status exception.Status, resolvedBy string, resolvedAt time.Time) error {
	exc, ok := r.exceptions[id]
	if !ok {
		return exception.ErrExceptionNotFound
	}
	if exc.Status != exception.StatusOpen {
		return exception.ErrExceptionAlreadyResolved
	}
	exc.Status = status
	exc.ResolvedBy = &resolvedBy
	exc.ResolvedAt = &resolvedAt
	r.exceptions[id] = exc
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	return nil, nil
}

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

func (r *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
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

type fixtures struct {
	svc        exception.Service
	exceptions *fakeExceptionRepo
	records    *fakeAttendanceRepo
	evaluator  *stubOvertimeService
}

func newTestService(t *testing.T) *fixtures {
	t.Helper()
	f := &fixtures{
		exceptions: newFakeExceptionRepo(),
		records:    &fakeAttendanceRepo{records: make(map[string]attendance.Record)},
		evaluator:  &stubOvertimeService{},
	}
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", FullName: "Ada", Timezone: "UTC", EmploymentStatus: employee.StatusActive},
	}}
	frozen := &clock.Frozen{Current: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	f.svc = NewExceptionService(f.exceptions, employees, f.records, f.evaluator, frozen, config.EngineConfig{CASRetries: 3})
	return f
}

func TestCreateException(t *testing.T) {
	f := newTestService(t)

	resp, err := f.svc.Create(context.Background(), exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeOvertimeRequest),
		Reason:     "release deadline, approved by lead",
	})
	require.NoError(t, err)

	assert.Equal(t, string(exception.StatusOpen), resp.Status)
	assert.Equal(t, string(exception.TypeOvertimeRequest), resp.Type)
	assert.Equal(t, "2026-03-02", resp.Date)
}

func TestCreateExceptionValidation(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.Create(context.Background(), exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       "NOT_A_TYPE",
		Reason:     "whatever",
	})
	assert.Error(t, err)

	_, err = f.svc.Create(context.Background(), exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeWorkFromHome),
	})
	assert.Error(t, err)
}

func TestCreateExceptionUnknownEmployee(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.Create(context.Background(), exception.CreateRequest{
		EmployeeID: "ghost",
		Date:       "2026-03-02",
		Type:       string(exception.TypeWorkFromHome),
		Reason:     "plumber visit",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestApproveException(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeOvertimeRequest),
		Reason:     "quarter-end close",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Approve(ctx, resp.ID, "mgr-1"))

	exc, err := f.exceptions.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, exception.StatusApproved, exc.Status)
	require.NotNil(t, exc.ResolvedBy)
	assert.Equal(t, "mgr-1", *exc.ResolvedBy)
	require.NotNil(t, exc.ResolvedAt)

	// Resolution is final; a second decision must not overwrite it.
	err = f.svc.Reject(ctx, resp.ID, "mgr-2")
	assert.ErrorIs(t, err, exception.ErrExceptionAlreadyResolved)
}

func TestApproveOvertimeRequestReleasesPendingMinutes(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	checkOut := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	f.records.records["rec-1"] = attendance.Record{
		ID:              "rec-1",
		EmployeeID:      "emp-1",
		Date:            time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ActualCheckOut:  &checkOut,
		WorkedMinutes:   600,
		OvertimeMinutes: 120,
		OvertimePending: true,
		Status:          attendance.StatusComplete,
		Version:         1,
	}
	f.evaluator.evaluate = func(rec attendance.Record) (attendance.Record, error) {
		rec.OvertimePending = false
		return rec, nil
	}

	resp, err := f.svc.Create(ctx, exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeOvertimeRequest),
		Reason:     "quarter-end close",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Approve(ctx, resp.ID, "mgr-1"))

	rec := f.records.records["rec-1"]
	assert.False(t, rec.OvertimePending, "approval must make the held minutes payable")
	assert.Equal(t, 120, rec.OvertimeMinutes)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, 1, f.evaluator.evaluations)
}

func TestApproveOvertimeRequestBeforeClockOut(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f.records.records["rec-1"] = attendance.Record{
		ID:            "rec-1",
		EmployeeID:    "emp-1",
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ActualCheckIn: &checkIn,
		Status:        attendance.StatusOpen,
		Version:       1,
	}

	resp, err := f.svc.Create(ctx, exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeOvertimeRequest),
		Reason:     "planned maintenance window",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Approve(ctx, resp.ID, "mgr-1"))

	// An open day is left for the clock-out evaluation, which sees the
	// approval itself.
	assert.Equal(t, 0, f.evaluator.evaluations)
	assert.Equal(t, 1, f.records.records["rec-1"].Version)
}

func TestRejectOvertimeRequestKeepsPending(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	checkOut := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	f.records.records["rec-1"] = attendance.Record{
		ID:              "rec-1",
		EmployeeID:      "emp-1",
		Date:            time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ActualCheckOut:  &checkOut,
		OvertimeMinutes: 120,
		OvertimePending: true,
		Status:          attendance.StatusComplete,
		Version:         1,
	}

	resp, err := f.svc.Create(ctx, exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeOvertimeRequest),
		Reason:     "not cleared with the lead",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Reject(ctx, resp.ID, "mgr-1"))

	assert.Equal(t, 0, f.evaluator.evaluations)
	assert.True(t, f.records.records["rec-1"].OvertimePending)
}

func TestRejectException(t *testing.T) {
	f := newTestService(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, exception.CreateRequest{
		EmployeeID: "emp-1",
		Date:       "2026-03-02",
		Type:       string(exception.TypeWorkFromHome),
		Reason:     "no prior notice",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Reject(ctx, resp.ID, "mgr-1"))

	exc, err := f.exceptions.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, exception.StatusRejected, exc.Status)
}

func TestApproveMissingException(t *testing.T) {
	f := newTestService(t)

	err := f.svc.Approve(context.Background(), "nope", "mgr-1")
	assert.ErrorIs(t, err, exception.ErrExceptionNotFound)
}
