package overtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/calendar"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
)

type OvertimeServiceImpl struct {
	overtime.RuleRepository
	attendanceRepo attendance.Repository
	employeeRepo   employee.Repository
	shiftTypeRepo  shift.ShiftTypeRepository
	holidayRepo    calendar.Repository
	exceptionRepo  exception.Repository
	engineCfg      config.EngineConfig
}

func NewOvertimeService(
	ruleRepo overtime.RuleRepository,
	attendanceRepo attendance.Repository,
	employeeRepo employee.Repository,
	shiftTypeRepo shift.ShiftTypeRepository,
	holidayRepo calendar.Repository,
	exceptionRepo exception.Repository,
	engineCfg config.EngineConfig,
) overtime.Service {
	return &OvertimeServiceImpl{
		RuleRepository: ruleRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		shiftTypeRepo:  shiftTypeRepo,
		holidayRepo:    holidayRepo,
		exceptionRepo:  exceptionRepo,
		engineCfg:      engineCfg,
	}
}

// Evaluate implements overtime.Service.
func (s *OvertimeServiceImpl) Evaluate(ctx context.Context, record attendance.Record, rule overtime.Rule) (overtime.Result, error) {
	if !rule.Active || !rule.Approved {
		return overtime.Result{}, overtime.ErrRuleInactive
	}

	rawExcess := record.WorkedMinutes - rule.MinMinutesBeforeOvertime
	if rawExcess <= 0 {
		return overtime.Result{}, nil
	}

	var shiftType *shift.ShiftType
	if record.ShiftTypeID != nil {
		st, err := s.shiftTypeRepo.GetByID(ctx, *record.ShiftTypeID)
		if err != nil {
			return overtime.Result{}, fmt.Errorf("failed to get shift type for evaluation: %w", err)
		}
		shiftType = &st
	}

	dayType, err := s.dayType(ctx, record.Date, shiftType)
	if err != nil {
		return overtime.Result{}, err
	}

	multiplier := rule.BaseMultiplier(dayType)
	if shiftType != nil && shiftType.IsNightShift {
		// Night premium composes multiplicatively with the day-type tier.
		multiplier *= rule.NightShiftMultiplier
	}

	minutes, clamped, err := s.applyCaps(ctx, record, rule, rawExcess)
	if err != nil {
		return overtime.Result{}, err
	}

	pending := false
	if rule.RequiresPreApproval {
		approved, err := s.exceptionRepo.HasApprovedForDate(ctx, record.EmployeeID, record.Date, exception.TypeOvertimeRequest)
		if err != nil {
			return overtime.Result{}, fmt.Errorf("failed to check overtime pre-approval: %w", err)
		}
		pending = !approved
	}

	return overtime.Result{
		OvertimeMinutes:     minutes,
		EffectiveMultiplier: multiplier,
		PendingApproval:     pending,
		ClampedMinutes:      clamped,
	}, nil
}

// EvaluateRecord implements overtime.Service.
func (s *OvertimeServiceImpl) EvaluateRecord(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID)
	if err != nil {
		return attendance.Record{}, err
	}

	if emp.OvertimeRuleCode == nil {
		return attendance.Record{}, overtime.ErrNoRuleAssigned
	}

	rule, err := s.RuleRepository.GetByCode(ctx, *emp.OvertimeRuleCode)
	if err != nil {
		if errors.Is(err, overtime.ErrRuleNotFound) {
			return attendance.Record{}, overtime.ErrNoRuleAssigned
		}
		return attendance.Record{}, fmt.Errorf("failed to get overtime rule: %w", err)
	}

	result, err := s.Evaluate(ctx, record, rule)
	if err != nil {
		return attendance.Record{}, err
	}

	record.OvertimeMinutes = result.OvertimeMinutes
	record.OvertimePending = result.PendingApproval
	record.OvertimeClampedMinutes = result.ClampedMinutes
	if result.OvertimeMinutes > 0 {
		m := result.EffectiveMultiplier
		record.EffectiveMultiplier = &m
	} else {
		record.EffectiveMultiplier = nil
	}

	return record, nil
}

// dayType classifies the date: holiday wins over weekend, weekend over
// weekday. A weekend-designated shift counts as weekend on any date.
func (s *OvertimeServiceImpl) dayType(ctx context.Context, date time.Time, shiftType *shift.ShiftType) (overtime.DayType, error) {
	isHoliday, err := s.holidayRepo.IsHoliday(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to check holiday calendar: %w", err)
	}
	if isHoliday {
		return overtime.DayTypeHoliday, nil
	}

	if shiftType != nil && shiftType.IsWeekendShift {
		return overtime.DayTypeWeekend, nil
	}

	isoWeekday := int(date.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	for _, day := range s.engineCfg.WeekendDays {
		if day == isoWeekday {
			return overtime.DayTypeWeekend, nil
		}
	}

	return overtime.DayTypeWeekday, nil
}

// applyCaps clamps raw excess minutes against the daily, weekly and monthly
// caps in that order. A cap of 0 is unlimited. Clamping is recorded, never
// an error.
func (s *OvertimeServiceImpl) applyCaps(ctx context.Context, record attendance.Record, rule overtime.Rule, rawExcess int) (int, int, error) {
	minutes := rawExcess

	if rule.MaxOvertimeMinutesPerDay > 0 && minutes > rule.MaxOvertimeMinutesPerDay {
		minutes = rule.MaxOvertimeMinutesPerDay
	}

	if rule.MaxOvertimeMinutesPerWeek > 0 {
		weekStart, weekEnd := isoWeekBounds(record.Date)
		used, err := s.attendanceRepo.SumFinalizedOvertime(ctx, record.EmployeeID, weekStart, weekEnd, record.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to sum weekly overtime: %w", err)
		}
		if remaining := rule.MaxOvertimeMinutesPerWeek - used; minutes > remaining {
			minutes = max(remaining, 0)
		}
	}

	if rule.MaxOvertimeMinutesPerMonth > 0 {
		monthStart, monthEnd := monthBounds(record.Date)
		used, err := s.attendanceRepo.SumFinalizedOvertime(ctx, record.EmployeeID, monthStart, monthEnd, record.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to sum monthly overtime: %w", err)
		}
		if remaining := rule.MaxOvertimeMinutesPerMonth - used; minutes > remaining {
			minutes = max(remaining, 0)
		}
	}

	return minutes, rawExcess - minutes, nil
}

// GetSummary implements overtime.Service.
func (s *OvertimeServiceImpl) GetSummary(ctx context.Context, req overtime.SummaryRequest) (overtime.Summary, error) {
	if err := req.Validate(); err != nil {
		return overtime.Summary{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	tiers, err := s.attendanceRepo.SumOvertimeByMultiplier(ctx, req.EmployeeID, start, end)
	if err != nil {
		return overtime.Summary{}, fmt.Errorf("failed to aggregate overtime: %w", err)
	}

	var total int64
	for _, minutes := range tiers {
		total += minutes
	}

	return overtime.Summary{
		EmployeeID:           req.EmployeeID,
		PeriodStart:          req.StartDate,
		PeriodEnd:            req.EndDate,
		TotalOvertimeMinutes: total,
		ByMultiplierTier:     tiers,
	}, nil
}

// defaultMinMinutesBeforeOvertime is a standard eight-hour day.
const defaultMinMinutesBeforeOvertime = 480

// CreateRule implements overtime.Service. Rules start unapproved and must go
// through ApproveRule before the evaluator will touch them.
func (s *OvertimeServiceImpl) CreateRule(ctx context.Context, req overtime.CreateRuleRequest) (overtime.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RuleResponse{}, err
	}

	threshold := req.MinMinutesBeforeOvertime
	if threshold == 0 {
		threshold = defaultMinMinutesBeforeOvertime
	}

	rule, err := s.RuleRepository.Create(ctx, overtime.Rule{
		Code:                       req.Code,
		Name:                       req.Name,
		MinMinutesBeforeOvertime:   threshold,
		WeekdayMultiplier:          req.WeekdayMultiplier,
		WeekendMultiplier:          req.WeekendMultiplier,
		HolidayMultiplier:          req.HolidayMultiplier,
		NightShiftMultiplier:       req.NightShiftMultiplier,
		MaxOvertimeMinutesPerDay:   req.MaxOvertimeMinutesPerDay,
		MaxOvertimeMinutesPerWeek:  req.MaxOvertimeMinutesPerWeek,
		MaxOvertimeMinutesPerMonth: req.MaxOvertimeMinutesPerMonth,
		RequiresPreApproval:        req.RequiresPreApproval,
		Active:                     true,
		Approved:                   false,
	})
	if err != nil {
		if errors.Is(err, overtime.ErrRuleExists) {
			return overtime.RuleResponse{}, err
		}
		return overtime.RuleResponse{}, fmt.Errorf("failed to create overtime rule: %w", err)
	}

	return toRuleResponse(rule), nil
}

// GetRule implements overtime.Service.
func (s *OvertimeServiceImpl) GetRule(ctx context.Context, code string) (overtime.RuleResponse, error) {
	rule, err := s.RuleRepository.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, overtime.ErrRuleNotFound) {
			return overtime.RuleResponse{}, err
		}
		return overtime.RuleResponse{}, fmt.Errorf("failed to get overtime rule: %w", err)
	}
	return toRuleResponse(rule), nil
}

// ListRules implements overtime.Service.
func (s *OvertimeServiceImpl) ListRules(ctx context.Context) ([]overtime.RuleResponse, error) {
	rules, err := s.RuleRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overtime rules: %w", err)
	}

	responses := make([]overtime.RuleResponse, 0, len(rules))
	for _, rule := range rules {
		responses = append(responses, toRuleResponse(rule))
	}
	return responses, nil
}

// ApproveRule implements overtime.Service.
func (s *OvertimeServiceImpl) ApproveRule(ctx context.Context, code string) error {
	if err := s.RuleRepository.Approve(ctx, code); err != nil {
		if errors.Is(err, overtime.ErrRuleNotFound) {
			return err
		}
		return fmt.Errorf("failed to approve overtime rule: %w", err)
	}
	return nil
}

// isoWeekBounds returns Monday and Sunday of the date's ISO week.
func isoWeekBounds(date time.Time) (time.Time, time.Time) {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := date.AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 6)
}

// monthBounds returns the first and last day of the date's month.
func monthBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 1, -1)
}

func toRuleResponse(rule overtime.Rule) overtime.RuleResponse {
	return overtime.RuleResponse{
		ID:                         rule.ID,
		Code:                       rule.Code,
		Name:                       rule.Name,
		MinMinutesBeforeOvertime:   rule.MinMinutesBeforeOvertime,
		WeekdayMultiplier:          rule.WeekdayMultiplier,
		WeekendMultiplier:          rule.WeekendMultiplier,
		HolidayMultiplier:          rule.HolidayMultiplier,
		NightShiftMultiplier:       rule.NightShiftMultiplier,
		MaxOvertimeMinutesPerDay:   rule.MaxOvertimeMinutesPerDay,
		MaxOvertimeMinutesPerWeek:  rule.MaxOvertimeMinutesPerWeek,
		MaxOvertimeMinutesPerMonth: rule.MaxOvertimeMinutesPerMonth,
		RequiresPreApproval:        rule.RequiresPreApproval,
		Active:                     rule.Active,
		Approved:                   rule.Approved,
	}
}
