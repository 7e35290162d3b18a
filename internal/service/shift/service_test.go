package shift

import (
	"context"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShiftTypeRepo struct {
	byID   map[string]shift.ShiftType
	byCode map[string]shift.ShiftType
	nextID int
}

func newFakeShiftTypeRepo() *fakeShiftTypeRepo {
	return &fakeShiftTypeRepo{
		byID:   make(map[string]shift.ShiftType),
		byCode: make(map[string]shift.ShiftType),
	}
}

func (r *fakeShiftTypeRepo) Create(_ context.Context, st shift.ShiftType) (shift.ShiftType, error) {
	if _, exists := r.byCode[st.Code]; exists {
		return shift.ShiftType{}, shift.ErrShiftCodeExists
	}
	r.nextID++
	st.ID = string(rune('a' + r.nextID))
	r.byID[st.ID] = st
	r.byCode[st.Code] = st
	return st, nil
}

func (r *fakeShiftTypeRepo) GetByID(_ context.Context, id string) (shift.ShiftType, error) {
	st, ok := r.byID[id]
	if !ok {
		return shift.ShiftType{}, shift.ErrShiftTypeNotFound
	}
	return st, nil
}

func (r *fakeShiftTypeRepo) GetByCode(_ context.Context, code string) (shift.ShiftType, error) {
	st, ok := r.byCode[code]
	if !ok {
		return shift.ShiftType{}, shift.ErrShiftTypeNotFound
	}
	return st, nil
}

func (r *fakeShiftTypeRepo) List(_ context.Context, _ shift.ShiftTypeFilter) ([]shift.ShiftType, int64, error) {
	var out []shift.ShiftType
	for _, st := range r.byID {
		out = append(out, st)
	}
	return out, int64(len(out)), nil
}

func (r *fakeShiftTypeRepo) Deactivate(_ context.Context, code string) error {
	st, ok := r.byCode[code]
	if !ok {
		return shift.ErrShiftTypeNotFound
	}
	st.Active = false
	r.byCode[code] = st
	r.byID[st.ID] = st
	return nil
}

type fakeAssignmentRepo struct {
	assignments []shift.Assignment
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a shift.Assignment) (shift.Assignment, error) {
	a.ID = "asg-" + a.EmployeeID
	r.assignments = append(r.assignments, a)
	return a, nil
}

func (r *fakeAssignmentRepo) GetActiveByEmployee(_ context.Context, employeeID string, asOf time.Time) (shift.Assignment, error) {
	for _, a := range r.assignments {
		if a.EmployeeID == employeeID && a.IsActive && !a.AssignedAt.After(asOf) {
			return a, nil
		}
	}
	return shift.Assignment{}, shift.ErrAssignmentNotFound
}

func (r *fakeAssignmentRepo) DeactivateForEmployee(_ context.Context, employeeID string, at time.Time) error {
	for i, a := range r.assignments {
		if a.EmployeeID == employeeID && a.IsActive {
			r.assignments[i].IsActive = false
			deactivated := at
			r.assignments[i].DeactivatedAt = &deactivated
		}
	}
	return nil
}

func (r *fakeAssignmentRepo) ListByEmployee(_ context.Context, employeeID string) ([]shift.Assignment, error) {
	var out []shift.Assignment
	for _, a := range r.assignments {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
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
	var out []employee.Employee
	for _, emp := range r.employees {
		if !emp.Terminated() {
			out = append(out, emp)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (shift.Service, *fakeShiftTypeRepo, *fakeAssignmentRepo) {
	t.Helper()
	shiftTypes := newFakeShiftTypeRepo()
	assignments := &fakeAssignmentRepo{}
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", FullName: "Ada", Timezone: "UTC", EmploymentStatus: employee.StatusActive},
	}}
	frozen := &clock.Frozen{Current: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)}
	svc := NewShiftService(nil, shiftTypes, assignments, employees, frozen)
	return svc, shiftTypes, assignments
}

func seedShift(t *testing.T, repo *fakeShiftTypeRepo, st shift.ShiftType) shift.ShiftType {
	t.Helper()
	st.Active = true
	created, err := repo.Create(context.Background(), st)
	require.NoError(t, err)
	return created
}

func assignShift(repo *fakeAssignmentRepo, employeeID, shiftTypeID string) {
	repo.assignments = append(repo.assignments, shift.Assignment{
		ID:          "asg-seed",
		EmployeeID:  employeeID,
		ShiftTypeID: shiftTypeID,
		IsActive:    true,
		AssignedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestResolveNormalShift(t *testing.T) {
	svc, shiftTypes, assignments := newTestService(t)

	st := seedShift(t, shiftTypes, shift.ShiftType{
		Code:      "DAY",
		Name:      "Day shift",
		Category:  shift.CategoryNormal,
		StartTime: 9 * 60,
		EndTime:   17 * 60,
	})
	assignShift(assignments, "emp-1", st.ID)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window, err := svc.Resolve(context.Background(), "emp-1", date)
	require.NoError(t, err)

	assert.Len(t, window.Segments, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), window.Start())
	assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), window.End())
	assert.Equal(t, 480, window.ScheduledMinutes())
}

func TestResolveOvernightShiftCrossesMidnight(t *testing.T) {
	svc, shiftTypes, assignments := newTestService(t)

	st := seedShift(t, shiftTypes, shift.ShiftType{
		Code:         "NIGHT",
		Name:         "Night shift",
		Category:     shift.CategoryOvernight,
		StartTime:    22 * 60,
		EndTime:      6 * 60,
		IsNightShift: true,
	})
	assignShift(assignments, "emp-1", st.ID)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window, err := svc.Resolve(context.Background(), "emp-1", date)
	require.NoError(t, err)

	// The window belongs to March 2 even though it ends on March 3.
	assert.Equal(t, date, window.Date)
	assert.Equal(t, time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC), window.Start())
	assert.Equal(t, time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), window.End())
	assert.Equal(t, 480, window.ScheduledMinutes())
}

func TestResolveSplitShiftSegments(t *testing.T) {
	svc, shiftTypes, assignments := newTestService(t)

	st := seedShift(t, shiftTypes, shift.ShiftType{
		Code:     "SPLIT",
		Name:     "Split shift",
		Category: shift.CategorySplit,
		SplitParts: []shift.SplitPart{
			{StartTime: 9 * 60, EndTime: 12 * 60},
			{StartTime: 13 * 60, EndTime: 17 * 60},
		},
	})
	assignShift(assignments, "emp-1", st.ID)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window, err := svc.Resolve(context.Background(), "emp-1", date)
	require.NoError(t, err)

	require.Len(t, window.Segments, 2)
	assert.Equal(t, 180, window.Segments[0].Minutes())
	assert.Equal(t, 240, window.Segments[1].Minutes())
	assert.Equal(t, 420, window.ScheduledMinutes())
}

func TestResolveUnassignedEmployee(t *testing.T) {
	svc, _, _ := newTestService(t)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Resolve(context.Background(), "emp-1", date)
	assert.ErrorIs(t, err, shift.ErrNotScheduled)
}

func TestResolveInactiveShiftType(t *testing.T) {
	svc, shiftTypes, assignments := newTestService(t)

	st := seedShift(t, shiftTypes, shift.ShiftType{
		Code:      "OLD",
		Name:      "Retired shift",
		Category:  shift.CategoryNormal,
		StartTime: 9 * 60,
		EndTime:   17 * 60,
	})
	require.NoError(t, shiftTypes.Deactivate(context.Background(), "OLD"))
	assignShift(assignments, "emp-1", st.ID)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Resolve(context.Background(), "emp-1", date)
	assert.ErrorIs(t, err, shift.ErrNotScheduled)
}

func TestCreateShiftTypeSplitValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateShiftType(context.Background(), shift.CreateShiftTypeRequest{
		Code:      "BAD-SPLIT",
		Name:      "Split without parts",
		Category:  string(shift.CategorySplit),
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	assert.Error(t, err)

	_, err = svc.CreateShiftType(context.Background(), shift.CreateShiftTypeRequest{
		Code:      "BAD-NORMAL",
		Name:      "Normal with parts",
		Category:  string(shift.CategoryNormal),
		StartTime: "09:00",
		EndTime:   "17:00",
		SplitParts: []shift.SplitPartPayload{
			{StartTime: "09:00", EndTime: "12:00"},
		},
	})
	assert.Error(t, err)
}

func TestCreateShiftTypeOvernightDuration(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.CreateShiftType(context.Background(), shift.CreateShiftTypeRequest{
		Code:         "NIGHT",
		Name:         "Night shift",
		Category:     string(shift.CategoryOvernight),
		StartTime:    "22:00",
		EndTime:      "06:00",
		IsNightShift: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 480, resp.TotalDurationMinutes)
}

func TestAssignDeactivatesPreviousAssignment(t *testing.T) {
	svc, shiftTypes, assignments := newTestService(t)

	first := seedShift(t, shiftTypes, shift.ShiftType{
		Code: "DAY", Name: "Day", Category: shift.CategoryNormal, StartTime: 9 * 60, EndTime: 17 * 60,
	})
	second := seedShift(t, shiftTypes, shift.ShiftType{
		Code: "EVE", Name: "Evening", Category: shift.CategoryNormal, StartTime: 14 * 60, EndTime: 22 * 60,
	})
	assignShift(assignments, "emp-1", first.ID)

	_, err := svc.Assign(context.Background(), shift.AssignShiftRequest{
		EmployeeID:    "emp-1",
		ShiftTypeCode: "EVE",
	})
	require.NoError(t, err)

	active, err := assignments.GetActiveByEmployee(context.Background(), "emp-1", time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ShiftTypeID)

	history, err := assignments.ListByEmployee(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
