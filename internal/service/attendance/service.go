package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/correction"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/clockwise-hr/attendance-engine-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 8

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.Repository
	employeeRepo    employee.Repository
	shiftService    shift.Service
	overtimeService overtime.Service
	exceptionRepo   exception.Repository
	correctionRepo  correction.Repository
	clock           clock.Clock
	engineCfg       config.EngineConfig
	locks           punchLocks
}

func NewAttendanceService(
	db *database.DB,
	attendanceRepo attendance.Repository,
	employeeRepo employee.Repository,
	shiftService shift.Service,
	overtimeService overtime.Service,
	exceptionRepo exception.Repository,
	correctionRepo correction.Repository,
	clk clock.Clock,
	engineCfg config.EngineConfig,
) attendance.Service {
	return &AttendanceServiceImpl{
		db:              db,
		Repository:      attendanceRepo,
		employeeRepo:    employeeRepo,
		shiftService:    shiftService,
		overtimeService: overtimeService,
		exceptionRepo:   exceptionRepo,
		correctionRepo:  correctionRepo,
		clock:           clk,
		engineCfg:       engineCfg,
		locks:           punchLocks{byKey: make(map[string]*sync.Mutex)},
	}
}

// punchLocks serializes punches per (employee, date) within this process.
// Cross-instance races are caught by the record's version CAS instead.
type punchLocks struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func (l *punchLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.byKey[key]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// ClockIn implements attendance.Service.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.PunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, loc, err := s.resolveEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	ts := req.ParsedTimestamp(s.clock.Now()).In(loc)

	window, err := s.resolveWindowForPunch(ctx, emp.ID, ts)
	if err != nil {
		// No window means no record: an unscheduled day must not be
		// flagged late or missed.
		return attendance.RecordResponse{}, err
	}

	unlock := s.locks.lock(punchKey(emp.ID, window.Date))
	defer unlock()

	var rec attendance.Record
	err = s.withCASRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		rec, innerErr = s.applyClockIn(ctx, emp.ID, window, ts, req.IdempotencyKey)
		return innerErr
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.ToRecordResponse(rec), nil
}

func (s *AttendanceServiceImpl) applyClockIn(ctx context.Context, employeeID string, window shift.ScheduledWindow, ts time.Time, idempotencyKey string) (attendance.Record, error) {
	existing, err := s.Repository.GetByEmployeeAndDate(ctx, employeeID, window.Date)
	if err != nil {
		return attendance.Record{}, err
	}

	if existing == nil || existing.ActualCheckIn == nil {
		return s.freshClockIn(ctx, employeeID, window, ts, idempotencyKey, existing)
	}

	rec := *existing

	if idempotencyKey != "" && rec.ClockInIdempotencyKey != nil && *rec.ClockInIdempotencyKey == idempotencyKey {
		return rec, nil
	}

	if rec.IsMissedPunch {
		// The sweep closed this day; only a correction can reopen it.
		return attendance.Record{}, attendance.ErrDayAlreadySwept
	}

	if rec.OpenPunchAt != nil {
		// A second clock-in on an open punch never overwrites; it is
		// journaled so a human can reconcile which punch was real.
		return rec, s.journalDuplicatePunch(ctx, rec, ts)
	}

	if window.Shift.Category == shift.CategorySplit {
		return s.reopenSplitRecord(ctx, rec, window, ts, idempotencyKey)
	}

	// The day is already closed for single-window shifts.
	return rec, s.journalDuplicatePunch(ctx, rec, ts)
}

func (s *AttendanceServiceImpl) freshClockIn(ctx context.Context, employeeID string, window shift.ScheduledWindow, ts time.Time, idempotencyKey string, existing *attendance.Record) (attendance.Record, error) {
	if _, err := s.matchSegment(window, ts, true); err != nil {
		if errors.Is(err, attendance.ErrOutOfWindowPunch) {
			if excErr := s.raiseException(ctx, employeeID, nil, window.Date, exception.TypeOutOfWindow,
				fmt.Sprintf("clock-in at %s matches no scheduled sub-window", ts.Format("15:04"))); excErr != nil {
				return attendance.Record{}, excErr
			}
		}
		return attendance.Record{}, err
	}

	lateMinutes := 0
	graceLimit := window.Start().Add(time.Duration(window.Shift.GraceMinutesIn) * time.Minute)
	if ts.After(graceLimit) {
		lateMinutes = int(ts.Sub(window.Start()).Minutes()) - window.Shift.GraceMinutesIn
	}

	var rec attendance.Record
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		scheduledIn := window.Start()
		scheduledOut := window.End()
		shiftTypeID := window.Shift.ID

		candidate := attendance.Record{
			EmployeeID:        employeeID,
			Date:              window.Date,
			ShiftTypeID:       &shiftTypeID,
			ScheduledCheckIn:  &scheduledIn,
			ScheduledCheckOut: &scheduledOut,
			ActualCheckIn:     &ts,
			OpenPunchAt:       &ts,
			LateMinutes:       lateMinutes,
			IsLate:            lateMinutes > 0,
			Status:            attendance.StatusOpen,
		}
		if idempotencyKey != "" {
			candidate.ClockInIdempotencyKey = &idempotencyKey
		}

		var innerErr error
		if existing != nil {
			// An absence record from the sweep gets reclaimed by a real
			// punch rather than duplicated.
			candidate.ID = existing.ID
			candidate.Version = existing.Version
			rec, innerErr = s.Repository.Update(txCtx, candidate)
		} else {
			rec, innerErr = s.Repository.Create(txCtx, candidate)
		}
		if innerErr != nil {
			return innerErr
		}

		if rec.IsLate {
			return s.raiseException(txCtx, employeeID, &rec.ID, window.Date, exception.TypeLateArrival,
				fmt.Sprintf("clocked in %d minutes late", rec.LateMinutes))
		}
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return rec, nil
}

func (s *AttendanceServiceImpl) reopenSplitRecord(ctx context.Context, rec attendance.Record, window shift.ScheduledWindow, ts time.Time, idempotencyKey string) (attendance.Record, error) {
	if _, err := s.matchSegment(window, ts, true); err != nil {
		if errors.Is(err, attendance.ErrOutOfWindowPunch) {
			if excErr := s.raiseException(ctx, rec.EmployeeID, &rec.ID, window.Date, exception.TypeOutOfWindow,
				fmt.Sprintf("clock-in at %s falls between scheduled parts", ts.Format("15:04"))); excErr != nil {
				return attendance.Record{}, excErr
			}
		}
		return attendance.Record{}, err
	}

	rec.OpenPunchAt = &ts
	rec.Status = attendance.StatusOpen
	if idempotencyKey != "" {
		rec.ClockInIdempotencyKey = &idempotencyKey
	}

	return s.Repository.Update(ctx, rec)
}

// ClockOut implements attendance.Service.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.PunchRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	emp, loc, err := s.resolveEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	ts := req.ParsedTimestamp(s.clock.Now()).In(loc)

	window, err := s.resolveWindowForPunch(ctx, emp.ID, ts)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	unlock := s.locks.lock(punchKey(emp.ID, window.Date))
	defer unlock()

	var rec attendance.Record
	err = s.withCASRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		rec, innerErr = s.applyClockOut(ctx, emp.ID, window, ts, req.IdempotencyKey)
		return innerErr
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	return attendance.ToRecordResponse(rec), nil
}

func (s *AttendanceServiceImpl) applyClockOut(ctx context.Context, employeeID string, window shift.ScheduledWindow, ts time.Time, idempotencyKey string) (attendance.Record, error) {
	existing, err := s.Repository.GetByEmployeeAndDate(ctx, employeeID, window.Date)
	if err != nil {
		return attendance.Record{}, err
	}
	if existing == nil || existing.ActualCheckIn == nil {
		return attendance.Record{}, attendance.ErrNoOpenPunch
	}

	rec := *existing

	if idempotencyKey != "" && rec.ClockOutIdempotencyKey != nil && *rec.ClockOutIdempotencyKey == idempotencyKey {
		return rec, nil
	}

	if rec.IsMissedPunch {
		return attendance.Record{}, attendance.ErrDayAlreadySwept
	}

	if rec.OpenPunchAt == nil {
		if rec.ActualCheckOut != nil {
			return attendance.Record{}, attendance.ErrAlreadyClockedOut
		}
		return attendance.Record{}, attendance.ErrNoOpenPunch
	}

	segment, err := s.matchSegment(window, ts, false)
	if err != nil {
		if errors.Is(err, attendance.ErrOutOfWindowPunch) {
			if excErr := s.raiseException(ctx, employeeID, &rec.ID, window.Date, exception.TypeOutOfWindow,
				fmt.Sprintf("clock-out at %s matches no scheduled sub-window", ts.Format("15:04"))); excErr != nil {
				return attendance.Record{}, excErr
			}
		}
		return attendance.Record{}, err
	}

	worked := int(ts.Sub(*rec.OpenPunchAt).Minutes())
	if worked < 0 {
		worked = 0
	}
	rec.WorkedMinutes += worked
	rec.ActualCheckOut = &ts
	rec.OpenPunchAt = nil
	rec.Status = attendance.StatusComplete
	if idempotencyKey != "" {
		rec.ClockOutIdempotencyKey = &idempotencyKey
	}

	// Only leaving the day's final part short counts as an early
	// departure; cutting an earlier part just reduces worked minutes.
	lastSegment := window.Segments[len(window.Segments)-1]
	if segment.End.Equal(lastSegment.End) {
		graceLimit := segment.End.Add(-time.Duration(window.Shift.GraceMinutesOut) * time.Minute)
		if ts.Before(graceLimit) {
			early := int(segment.End.Sub(ts).Minutes()) - window.Shift.GraceMinutesOut
			rec.EarlyDepartureMinutes += early
			rec.IsEarlyDeparture = true
		}
	}

	evaluated, err := s.overtimeService.EvaluateRecord(ctx, rec)
	if err == nil {
		rec = evaluated
	} else if !errors.Is(err, overtime.ErrNoRuleAssigned) {
		// ErrRuleInactive aborts the whole punch: silently skipping
		// evaluation would mis-pay.
		return attendance.Record{}, err
	}

	var updated attendance.Record
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var innerErr error
		updated, innerErr = s.Repository.Update(txCtx, rec)
		if innerErr != nil {
			return innerErr
		}

		if rec.IsEarlyDeparture {
			return s.raiseException(txCtx, employeeID, &updated.ID, window.Date, exception.TypeLeaveEarly,
				fmt.Sprintf("left %d minutes early", updated.EarlyDepartureMinutes))
		}
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return updated, nil
}

// Get implements attendance.Service.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.RecordResponse, error) {
	rec, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.ToRecordResponse(rec), nil
}

// List implements attendance.Service.
func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.Filter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	records, total, err := s.Repository.List(ctx, filter)
	if err != nil {
		return attendance.ListResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToRecordResponse(rec))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return attendance.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    responses,
	}, nil
}

// GetFinalized implements attendance.Service.
func (s *AttendanceServiceImpl) GetFinalized(ctx context.Context, req attendance.FinalizedRequest) ([]attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	records, err := s.Repository.ListFinalized(ctx, req.EmployeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list finalized records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToRecordResponse(rec))
	}
	return responses, nil
}

// Sweep implements attendance.Service. It closes punches for dates strictly
// before each employee's local today and creates absence records for
// scheduled days nobody punched on.
func (s *AttendanceServiceImpl) Sweep(ctx context.Context) error {
	unswept, err := s.Repository.ListUnswept(ctx, s.clock.Now().Add(14*time.Hour))
	if err != nil {
		return fmt.Errorf("failed to list unswept records: %w", err)
	}

	byEmployee := make(map[string][]attendance.Record)
	for _, rec := range unswept {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			return s.sweepEmployee(gctx, emp, byEmployee[emp.ID])
		})
	}

	return g.Wait()
}

func (s *AttendanceServiceImpl) sweepEmployee(ctx context.Context, emp employee.Employee, open []attendance.Record) error {
	loc, err := time.LoadLocation(emp.Timezone)
	if err != nil {
		loc = time.UTC
	}
	today := s.clock.Today(loc)

	for _, rec := range open {
		// The boundary fetch is loose across timezones; only dates the
		// employee has fully lived through get closed.
		if rec.Date.Format("2006-01-02") >= today.Format("2006-01-02") {
			continue
		}
		if err := s.sweepRecord(ctx, rec); err != nil {
			return err
		}
	}

	return s.createAbsenceRecord(ctx, emp, today.AddDate(0, 0, -1))
}

func (s *AttendanceServiceImpl) sweepRecord(ctx context.Context, rec attendance.Record) error {
	unlock := s.locks.lock(punchKey(rec.EmployeeID, rec.Date))
	defer unlock()

	rec.IsMissedPunch = true
	rec.WorkedMinutes = 0
	rec.OvertimeMinutes = 0
	rec.EffectiveMultiplier = nil
	rec.OpenPunchAt = nil
	rec.Status = attendance.StatusIncomplete

	return postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if _, err := s.Repository.Update(txCtx, rec); err != nil {
			if errors.Is(err, attendance.ErrVersionConflict) {
				// Another instance swept or the employee punched; either
				// way this record is no longer ours to close.
				return nil
			}
			return err
		}

		hasOpen, err := s.exceptionRepo.HasOpenForRecord(txCtx, rec.ID, exception.TypeMissedPunch)
		if err != nil {
			return fmt.Errorf("failed to check for existing missed-punch exception: %w", err)
		}
		if hasOpen {
			return nil
		}

		return s.raiseException(txCtx, rec.EmployeeID, &rec.ID, rec.Date, exception.TypeMissedPunch,
			"day closed without a clock-out")
	})
}

func (s *AttendanceServiceImpl) createAbsenceRecord(ctx context.Context, emp employee.Employee, date time.Time) error {
	existing, err := s.Repository.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	window, err := s.shiftService.Resolve(ctx, emp.ID, date)
	if err != nil {
		if errors.Is(err, shift.ErrNotScheduled) {
			return nil
		}
		return err
	}

	scheduledIn := window.Start()
	scheduledOut := window.End()
	shiftTypeID := window.Shift.ID

	_, err = s.Repository.Create(ctx, attendance.Record{
		EmployeeID:        emp.ID,
		Date:              date,
		ShiftTypeID:       &shiftTypeID,
		ScheduledCheckIn:  &scheduledIn,
		ScheduledCheckOut: &scheduledOut,
		Status:            attendance.StatusIncomplete,
	})
	if err != nil {
		return fmt.Errorf("failed to create absence record: %w", err)
	}
	return nil
}

// resolveEmployee loads the punching employee (explicit ID or the
// employee_id claim) and their timezone.
func (s *AttendanceServiceImpl) resolveEmployee(ctx context.Context, employeeID string) (employee.Employee, *time.Location, error) {
	if employeeID == "" {
		_, claims, err := jwtauth.FromContext(ctx)
		if err != nil {
			return employee.Employee{}, nil, fmt.Errorf("failed to extract claims from context: %w", err)
		}
		claimed, ok := claims["employee_id"].(string)
		if !ok || claimed == "" {
			return employee.Employee{}, nil, fmt.Errorf("employee_id claim is missing or invalid")
		}
		employeeID = claimed
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, nil, err
	}
	if emp.Terminated() {
		return employee.Employee{}, nil, attendance.ErrEmployeeTerminated
	}

	loc, err := time.LoadLocation(emp.Timezone)
	if err != nil {
		loc = time.UTC
	}

	return emp, loc, nil
}

// resolveWindowForPunch finds the scheduled window that owns a punch. A
// punch just after midnight still belongs to yesterday's overnight window.
func (s *AttendanceServiceImpl) resolveWindowForPunch(ctx context.Context, employeeID string, ts time.Time) (shift.ScheduledWindow, error) {
	today := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	tolerance := time.Duration(s.engineCfg.OutOfWindowToleranceMinutes) * time.Minute

	prev, err := s.shiftService.Resolve(ctx, employeeID, today.AddDate(0, 0, -1))
	if err == nil {
		if prev.Shift.CrossesMidnight() && ts.After(prev.Start()) && ts.Before(prev.End().Add(tolerance)) {
			return prev, nil
		}
	} else if !errors.Is(err, shift.ErrNotScheduled) {
		return shift.ScheduledWindow{}, err
	}

	return s.shiftService.Resolve(ctx, employeeID, today)
}

// matchSegment maps a punch onto the window's segments. Single-window shifts
// always match their one segment; split shifts reject punches that land in
// the break between parts, and tolerate punches only before the first part
// or after the last.
func (s *AttendanceServiceImpl) matchSegment(window shift.ScheduledWindow, ts time.Time, isClockIn bool) (shift.Segment, error) {
	if len(window.Segments) == 1 {
		return window.Segments[0], nil
	}

	for _, seg := range window.Segments {
		if !ts.Before(seg.Start) && !ts.After(seg.End) {
			return seg, nil
		}
	}

	tolerance := time.Duration(s.engineCfg.OutOfWindowToleranceMinutes) * time.Minute
	first := window.Segments[0]
	last := window.Segments[len(window.Segments)-1]

	if isClockIn && ts.Before(first.Start) && !ts.Before(first.Start.Add(-tolerance)) {
		return first, nil
	}
	if !isClockIn && ts.After(last.End) && !ts.After(last.End.Add(tolerance)) {
		return last, nil
	}

	return shift.Segment{}, attendance.ErrOutOfWindowPunch
}

func (s *AttendanceServiceImpl) journalDuplicatePunch(ctx context.Context, rec attendance.Record, ts time.Time) error {
	note := fmt.Sprintf("duplicate clock-in at %s recorded for review", ts.Format(time.RFC3339))
	_, err := s.correctionRepo.Create(ctx, correction.Entry{
		RecordID:         rec.ID,
		ActorID:          rec.EmployeeID,
		Timestamp:        ts,
		PreviousSnapshot: rec,
		NewValues: correction.Changes{
			ActualCheckIn: &ts,
			Note:          &note,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to journal duplicate punch: %w", err)
	}
	return nil
}

func (s *AttendanceServiceImpl) raiseException(ctx context.Context, employeeID string, recordID *string, date time.Time, excType exception.Type, reason string) error {
	_, err := s.exceptionRepo.Create(ctx, exception.TimeException{
		EmployeeID:         employeeID,
		AttendanceRecordID: recordID,
		Date:               date,
		Type:               excType,
		Status:             exception.StatusOpen,
		Reason:             reason,
	})
	if err != nil {
		return fmt.Errorf("failed to raise %s exception: %w", excType, err)
	}
	return nil
}

// withCASRetry re-runs fn when a concurrent writer bumped the record version
// under us, bounded by the configured retry count.
func (s *AttendanceServiceImpl) withCASRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < s.engineCfg.CASRetries; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, attendance.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func punchKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}
