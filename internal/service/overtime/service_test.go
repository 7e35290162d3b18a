package overtime

import (
	"context"
	"testing"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/calendar"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleRepo struct {
	rules map[string]overtime.Rule
}

func (r *fakeRuleRepo) Create(_ context.Context, rule overtime.Rule) (overtime.Rule, error) {
	if _, exists := r.rules[rule.Code]; exists {
		return overtime.Rule{}, overtime.ErrRuleExists
	}
	rule.ID = "rule-" + rule.Code
	r.rules[rule.Code] = rule
	return rule, nil
}

func (r *fakeRuleRepo) GetByCode(_ context.Context, code string) (overtime.Rule, error) {
	rule, ok := r.rules[code]
	if !ok {
		return overtime.Rule{}, overtime.ErrRuleNotFound
	}
	return rule, nil
}

func (r *fakeRuleRepo) List(_ context.Context) ([]overtime.Rule, error) {
	var out []overtime.Rule
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	return out, nil
}

func (r *fakeRuleRepo) Approve(_ context.Context, code string) error {
	rule, ok := r.rules[code]
	if !ok {
		return overtime.ErrRuleNotFound
	}
	rule.Approved = true
	r.rules[code] = rule
	return nil
}

// fakeAttendanceRepo serves only the aggregate queries the evaluator needs.
type fakeAttendanceRepo struct {
	attendance.Repository
	finalizedOvertime map[string]int
}

func (r *fakeAttendanceRepo) SumFinalizedOvertime(_ context.Context, employeeID string, start, end time.Time, _ string) (int, error) {
	return r.finalizedOvertime[employeeID+"|"+start.Format("2006-01-02")], nil
}

func (r *fakeAttendanceRepo) SumOvertimeByMultiplier(_ context.Context, employeeID string, _, _ time.Time) (map[string]int64, error) {
	return map[string]int64{"1.50": 90, "2.00": 30}, nil
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

type fakeShiftTypeRepo struct {
	shift.ShiftTypeRepository
	byID map[string]shift.ShiftType
}

func (r *fakeShiftTypeRepo) GetByID(_ context.Context, id string) (shift.ShiftType, error) {
	st, ok := r.byID[id]
	if !ok {
		return shift.ShiftType{}, shift.ErrShiftTypeNotFound
	}
	return st, nil
}

type fakeHolidayRepo struct {
	holidays map[string]bool
}

func (r *fakeHolidayRepo) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	return r.holidays[date.Format("2006-01-02")], nil
}

func (r *fakeHolidayRepo) Upsert(_ context.Context, holiday calendar.Holiday) (calendar.Holiday, error) {
	r.holidays[holiday.Date.Format("2006-01-02")] = true
	return holiday, nil
}

func (r *fakeHolidayRepo) List(_ context.Context, _, _ time.Time) ([]calendar.Holiday, error) {
	return nil, nil
}

type fakeExceptionRepo struct {
	exception.Repository
	approved map[string]bool
}

func (r *fakeExceptionRepo) HasApprovedForDate(_ context.Context, employeeID string, date time.Time, excType exception.Type) (bool, error) {
	return r.approved[employeeID+"|"+date.Format("2006-01-02")+"|"+string(excType)], nil
}

type fixtures struct {
	rules      *fakeRuleRepo
	records    *fakeAttendanceRepo
	employees  *fakeEmployeeRepo
	shiftTypes *fakeShiftTypeRepo
	holidays   *fakeHolidayRepo
	exceptions *fakeExceptionRepo
}

func newTestService(t *testing.T) (overtime.Service, *fixtures) {
	t.Helper()
	ruleCode := "STD"
	f := &fixtures{
		rules:   &fakeRuleRepo{rules: make(map[string]overtime.Rule)},
		records: &fakeAttendanceRepo{finalizedOvertime: make(map[string]int)},
		employees: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			"emp-1": {ID: "emp-1", FullName: "Ada", Timezone: "UTC", EmploymentStatus: employee.StatusActive, OvertimeRuleCode: &ruleCode},
		}},
		shiftTypes: &fakeShiftTypeRepo{byID: map[string]shift.ShiftType{
			"st-day":   {ID: "st-day", Code: "DAY", Category: shift.CategoryNormal, Active: true},
			"st-night": {ID: "st-night", Code: "NIGHT", Category: shift.CategoryOvernight, IsNightShift: true, Active: true},
		}},
		holidays:   &fakeHolidayRepo{holidays: make(map[string]bool)},
		exceptions: &fakeExceptionRepo{approved: make(map[string]bool)},
	}
	svc := NewOvertimeService(
		f.rules,
		f.records,
		f.employees,
		f.shiftTypes,
		f.holidays,
		f.exceptions,
		config.EngineConfig{WeekendDays: []int{6, 7}},
	)
	return svc, f
}

func standardRule() overtime.Rule {
	return overtime.Rule{
		Code:                     "STD",
		Name:                     "Standard",
		MinMinutesBeforeOvertime: 480,
		WeekdayMultiplier:        1.5,
		WeekendMultiplier:        2.0,
		HolidayMultiplier:        3.0,
		NightShiftMultiplier:     1.25,
		Active:                   true,
		Approved:                 true,
	}
}

// weekdayRecord is a Monday so neither weekend nor holiday tiers apply.
func weekdayRecord(worked int, shiftTypeID string) attendance.Record {
	id := shiftTypeID
	return attendance.Record{
		ID:            "rec-1",
		EmployeeID:    "emp-1",
		Date:          time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ShiftTypeID:   &id,
		WorkedMinutes: worked,
		Status:        attendance.StatusComplete,
	}
}

func TestEvaluateNightShiftComposition(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Evaluate(context.Background(), weekdayRecord(600, "st-night"), standardRule())
	require.NoError(t, err)

	// 600 worked minus the 480 threshold leaves 120 excess; the night
	// premium multiplies the weekday tier.
	assert.Equal(t, 120, result.OvertimeMinutes)
	assert.InDelta(t, 1.875, result.EffectiveMultiplier, 1e-9)
	assert.Equal(t, 0, result.ClampedMinutes)
	assert.False(t, result.PendingApproval)
}

func TestEvaluateBelowThreshold(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Evaluate(context.Background(), weekdayRecord(480, "st-day"), standardRule())
	require.NoError(t, err)
	assert.Equal(t, 0, result.OvertimeMinutes)
	assert.Zero(t, result.EffectiveMultiplier)
}

func TestEvaluateDailyCapClampsSilently(t *testing.T) {
	svc, _ := newTestService(t)

	rule := standardRule()
	rule.MaxOvertimeMinutesPerDay = 60

	result, err := svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	require.NoError(t, err)
	assert.Equal(t, 60, result.OvertimeMinutes)
	assert.Equal(t, 60, result.ClampedMinutes)
}

func TestEvaluateWeeklyCapCountsPriorOvertime(t *testing.T) {
	svc, f := newTestService(t)

	rule := standardRule()
	rule.MaxOvertimeMinutesPerWeek = 150

	// March 2, 2026 is a Monday, so the ISO week starts the same day.
	f.records.finalizedOvertime["emp-1|2026-03-02"] = 100

	result, err := svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	require.NoError(t, err)
	assert.Equal(t, 50, result.OvertimeMinutes)
	assert.Equal(t, 70, result.ClampedMinutes)
}

func TestEvaluateInactiveRule(t *testing.T) {
	svc, _ := newTestService(t)

	rule := standardRule()
	rule.Active = false
	_, err := svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	assert.ErrorIs(t, err, overtime.ErrRuleInactive)

	rule = standardRule()
	rule.Approved = false
	_, err = svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	assert.ErrorIs(t, err, overtime.ErrRuleInactive)
}

func TestEvaluateHolidayBeatsWeekend(t *testing.T) {
	svc, f := newTestService(t)

	// March 7, 2026 is a Saturday and also a declared holiday.
	rec := weekdayRecord(600, "st-day")
	rec.Date = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	f.holidays.holidays["2026-03-07"] = true

	result, err := svc.Evaluate(context.Background(), rec, standardRule())
	require.NoError(t, err)
	assert.InDelta(t, 3.0, result.EffectiveMultiplier, 1e-9)
}

func TestEvaluateWeekendTier(t *testing.T) {
	svc, _ := newTestService(t)

	rec := weekdayRecord(600, "st-day")
	rec.Date = time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	result, err := svc.Evaluate(context.Background(), rec, standardRule())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, result.EffectiveMultiplier, 1e-9)
}

func TestEvaluatePreApprovalPending(t *testing.T) {
	svc, f := newTestService(t)

	rule := standardRule()
	rule.RequiresPreApproval = true

	result, err := svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	require.NoError(t, err)
	assert.True(t, result.PendingApproval)

	f.exceptions.approved["emp-1|2026-03-02|"+string(exception.TypeOvertimeRequest)] = true
	result, err = svc.Evaluate(context.Background(), weekdayRecord(600, "st-day"), rule)
	require.NoError(t, err)
	assert.False(t, result.PendingApproval)
}

func TestEvaluateRecordWritesResultBack(t *testing.T) {
	svc, f := newTestService(t)
	_, err := f.rules.Create(context.Background(), standardRule())
	require.NoError(t, err)

	rec, err := svc.EvaluateRecord(context.Background(), weekdayRecord(600, "st-night"))
	require.NoError(t, err)

	assert.Equal(t, 120, rec.OvertimeMinutes)
	require.NotNil(t, rec.EffectiveMultiplier)
	assert.InDelta(t, 1.875, *rec.EffectiveMultiplier, 1e-9)
}

func TestEvaluateRecordWithoutRule(t *testing.T) {
	svc, f := newTestService(t)
	f.employees.employees["emp-2"] = employee.Employee{
		ID: "emp-2", Timezone: "UTC", EmploymentStatus: employee.StatusActive,
	}

	rec := weekdayRecord(600, "st-day")
	rec.EmployeeID = "emp-2"
	_, err := svc.EvaluateRecord(context.Background(), rec)
	assert.ErrorIs(t, err, overtime.ErrNoRuleAssigned)
}

func TestCreateRuleStartsUnapproved(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.CreateRule(context.Background(), overtime.CreateRuleRequest{
		Code:                     "NEW",
		Name:                     "New policy",
		MinMinutesBeforeOvertime: 480,
		WeekdayMultiplier:        1.5,
		WeekendMultiplier:        2.0,
		HolidayMultiplier:        2.0,
		NightShiftMultiplier:     1.0,
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.False(t, resp.Approved)

	require.NoError(t, svc.ApproveRule(context.Background(), "NEW"))
	approved, err := svc.GetRule(context.Background(), "NEW")
	require.NoError(t, err)
	assert.True(t, approved.Approved)
}

func TestCreateRuleDefaultsThreshold(t *testing.T) {
	svc, _ := newTestService(t)

	// An omitted threshold means a standard eight-hour day, not zero.
	resp, err := svc.CreateRule(context.Background(), overtime.CreateRuleRequest{
		Code:                 "DFLT",
		Name:                 "Default threshold policy",
		WeekdayMultiplier:    1.5,
		WeekendMultiplier:    2.0,
		HolidayMultiplier:    2.0,
		NightShiftMultiplier: 1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 480, resp.MinMinutesBeforeOvertime)

	explicit, err := svc.CreateRule(context.Background(), overtime.CreateRuleRequest{
		Code:                     "SHORT",
		Name:                     "Short-day policy",
		MinMinutesBeforeOvertime: 300,
		WeekdayMultiplier:        1.5,
		WeekendMultiplier:        2.0,
		HolidayMultiplier:        2.0,
		NightShiftMultiplier:     1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 300, explicit.MinMinutesBeforeOvertime)
}

func TestCreateRuleRejectsSubUnityMultiplier(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateRule(context.Background(), overtime.CreateRuleRequest{
		Code:                 "BAD",
		Name:                 "Bad policy",
		WeekdayMultiplier:    0.5,
		WeekendMultiplier:    1.0,
		HolidayMultiplier:    1.0,
		NightShiftMultiplier: 1.0,
	})
	assert.Error(t, err)
}

func TestGetSummaryAggregatesTiers(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.GetSummary(context.Background(), overtime.SummaryRequest{
		EmployeeID: "emp-1",
		StartDate:  "2026-03-01",
		EndDate:    "2026-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), summary.TotalOvertimeMinutes)
	assert.Equal(t, int64(90), summary.ByMultiplierTier["1.50"])
}
