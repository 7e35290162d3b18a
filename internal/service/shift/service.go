package shift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/clockwise-hr/attendance-engine-go/internal/repository/postgresql"
)

type ShiftServiceImpl struct {
	db *database.DB
	shift.ShiftTypeRepository
	shift.AssignmentRepository
	employeeRepo employee.Repository
	clock        clock.Clock
}

func NewShiftService(
	db *database.DB,
	shiftTypeRepo shift.ShiftTypeRepository,
	assignmentRepo shift.AssignmentRepository,
	employeeRepo employee.Repository,
	clk clock.Clock,
) shift.Service {
	return &ShiftServiceImpl{
		db:                   db,
		ShiftTypeRepository:  shiftTypeRepo,
		AssignmentRepository: assignmentRepo,
		employeeRepo:         employeeRepo,
		clock:                clk,
	}
}

// CreateShiftType implements shift.Service.
func (s *ShiftServiceImpl) CreateShiftType(ctx context.Context, req shift.CreateShiftTypeRequest) (shift.ShiftTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftTypeResponse{}, err
	}

	entity, err := toShiftType(req)
	if err != nil {
		return shift.ShiftTypeResponse{}, err
	}

	created, err := s.ShiftTypeRepository.Create(ctx, entity)
	if err != nil {
		if errors.Is(err, shift.ErrShiftCodeExists) {
			return shift.ShiftTypeResponse{}, err
		}
		return shift.ShiftTypeResponse{}, fmt.Errorf("failed to create shift type: %w", err)
	}

	return toShiftTypeResponse(created), nil
}

// GetShiftType implements shift.Service.
func (s *ShiftServiceImpl) GetShiftType(ctx context.Context, code string) (shift.ShiftTypeResponse, error) {
	shiftType, err := s.ShiftTypeRepository.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shift.ErrShiftTypeNotFound) {
			return shift.ShiftTypeResponse{}, err
		}
		return shift.ShiftTypeResponse{}, fmt.Errorf("failed to get shift type: %w", err)
	}

	return toShiftTypeResponse(shiftType), nil
}

// ListShiftTypes implements shift.Service.
func (s *ShiftServiceImpl) ListShiftTypes(ctx context.Context, filter shift.ShiftTypeFilter) (shift.ListShiftTypesResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	shiftTypes, total, err := s.ShiftTypeRepository.List(ctx, filter)
	if err != nil {
		return shift.ListShiftTypesResponse{}, fmt.Errorf("failed to list shift types: %w", err)
	}

	responses := make([]shift.ShiftTypeResponse, 0, len(shiftTypes))
	for _, st := range shiftTypes {
		responses = append(responses, toShiftTypeResponse(st))
	}

	return shift.ListShiftTypesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		ShiftTypes: responses,
	}, nil
}

// DeactivateShiftType implements shift.Service.
func (s *ShiftServiceImpl) DeactivateShiftType(ctx context.Context, code string) error {
	if err := s.ShiftTypeRepository.Deactivate(ctx, code); err != nil {
		if errors.Is(err, shift.ErrShiftTypeNotFound) {
			return err
		}
		return fmt.Errorf("failed to deactivate shift type: %w", err)
	}
	return nil
}

// Assign implements shift.Service. Reassignment deactivates the previous
// assignment in the same transaction so at most one stays active.
func (s *ShiftServiceImpl) Assign(ctx context.Context, req shift.AssignShiftRequest) (shift.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.AssignmentResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return shift.AssignmentResponse{}, err
	}

	shiftType, err := s.ShiftTypeRepository.GetByCode(ctx, req.ShiftTypeCode)
	if err != nil {
		return shift.AssignmentResponse{}, err
	}
	if !shiftType.Active {
		return shift.AssignmentResponse{}, shift.ErrShiftTypeInactive
	}

	now := s.clock.Now()

	var assignment shift.Assignment
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.AssignmentRepository.DeactivateForEmployee(txCtx, emp.ID, now); err != nil {
			return fmt.Errorf("failed to deactivate previous assignment: %w", err)
		}

		assignment, err = s.AssignmentRepository.Create(txCtx, shift.Assignment{
			EmployeeID:  emp.ID,
			ShiftTypeID: shiftType.ID,
			IsActive:    true,
			AssignedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return shift.AssignmentResponse{}, err
	}

	return toAssignmentResponse(assignment), nil
}

// ListAssignments implements shift.Service.
func (s *ShiftServiceImpl) ListAssignments(ctx context.Context, employeeID string) ([]shift.AssignmentResponse, error) {
	assignments, err := s.AssignmentRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]shift.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, toAssignmentResponse(a))
	}
	return responses, nil
}

// Resolve implements shift.Service. The date must be local midnight in the
// employee's timezone; the returned window's segments are anchored on that
// date, crossing into the next calendar day for overnight shifts.
func (s *ShiftServiceImpl) Resolve(ctx context.Context, employeeID string, date time.Time) (shift.ScheduledWindow, error) {
	assignment, err := s.AssignmentRepository.GetActiveByEmployee(ctx, employeeID, date.Add(24*time.Hour))
	if err != nil {
		if errors.Is(err, shift.ErrAssignmentNotFound) {
			return shift.ScheduledWindow{}, shift.ErrNotScheduled
		}
		return shift.ScheduledWindow{}, fmt.Errorf("failed to get active assignment: %w", err)
	}

	shiftType, err := s.ShiftTypeRepository.GetByID(ctx, assignment.ShiftTypeID)
	if err != nil {
		return shift.ScheduledWindow{}, fmt.Errorf("failed to get shift type: %w", err)
	}
	if !shiftType.Active {
		// A retired definition no longer schedules anyone.
		return shift.ScheduledWindow{}, shift.ErrNotScheduled
	}

	segments, err := buildSegments(shiftType, date)
	if err != nil {
		return shift.ScheduledWindow{}, err
	}

	return shift.ScheduledWindow{
		EmployeeID: employeeID,
		Date:       date,
		Shift:      shiftType,
		Segments:   segments,
	}, nil
}

// buildSegments anchors the shift's wall-clock times onto a calendar date.
func buildSegments(shiftType shift.ShiftType, date time.Time) ([]shift.Segment, error) {
	switch shiftType.Category {
	case shift.CategorySplit:
		if len(shiftType.SplitParts) == 0 {
			return nil, shift.ErrInvalidSplitParts
		}
		segments := make([]shift.Segment, 0, len(shiftType.SplitParts))
		for _, part := range shiftType.SplitParts {
			segments = append(segments, shift.Segment{
				Start: part.StartTime.At(date),
				End:   part.EndTime.At(date),
			})
		}
		return segments, nil
	default:
		// NORMAL, OVERNIGHT, ROTATIONAL and FLEXIBLE all resolve to a
		// single window. Overnight end times roll into the next day but
		// the window still belongs to the start date.
		start := shiftType.StartTime.At(date)
		end := shiftType.EndTime.At(date)
		if shiftType.CrossesMidnight() {
			end = end.Add(24 * time.Hour)
		}
		return []shift.Segment{{Start: start, End: end}}, nil
	}
}

func toShiftType(req shift.CreateShiftTypeRequest) (shift.ShiftType, error) {
	startTime, err := shift.ParseClockTime(req.StartTime)
	if err != nil {
		return shift.ShiftType{}, shift.ErrInvalidClockTime
	}
	endTime, err := shift.ParseClockTime(req.EndTime)
	if err != nil {
		return shift.ShiftType{}, shift.ErrInvalidClockTime
	}

	entity := shift.ShiftType{
		Code:                 req.Code,
		Name:                 req.Name,
		Category:             shift.Category(req.Category),
		StartTime:            startTime,
		EndTime:              endTime,
		BreakDurationMinutes: req.BreakDurationMinutes,
		IsNightShift:         req.IsNightShift,
		IsWeekendShift:       req.IsWeekendShift,
		GraceMinutesIn:       req.GraceMinutesIn,
		GraceMinutesOut:      req.GraceMinutesOut,
		Active:               true,
	}

	if entity.Category == shift.CategorySplit {
		parts := make([]shift.SplitPart, 0, len(req.SplitParts))
		total := 0
		for _, p := range req.SplitParts {
			start, err := shift.ParseClockTime(p.StartTime)
			if err != nil {
				return shift.ShiftType{}, shift.ErrInvalidClockTime
			}
			end, err := shift.ParseClockTime(p.EndTime)
			if err != nil {
				return shift.ShiftType{}, shift.ErrInvalidClockTime
			}
			parts = append(parts, shift.SplitPart{StartTime: start, EndTime: end})
			total += end.Minutes() - start.Minutes()
		}
		entity.SplitParts = parts
		entity.StartTime = parts[0].StartTime
		entity.EndTime = parts[len(parts)-1].EndTime
		entity.TotalDurationMinutes = total
	} else {
		duration := endTime.Minutes() - startTime.Minutes()
		if entity.CrossesMidnight() {
			duration += 24 * 60
		}
		entity.TotalDurationMinutes = duration
	}

	return entity, nil
}

func toShiftTypeResponse(st shift.ShiftType) shift.ShiftTypeResponse {
	resp := shift.ShiftTypeResponse{
		ID:                   st.ID,
		Code:                 st.Code,
		Name:                 st.Name,
		Category:             string(st.Category),
		StartTime:            st.StartTime.String(),
		EndTime:              st.EndTime.String(),
		TotalDurationMinutes: st.TotalDurationMinutes,
		BreakDurationMinutes: st.BreakDurationMinutes,
		IsNightShift:         st.IsNightShift,
		IsWeekendShift:       st.IsWeekendShift,
		GraceMinutesIn:       st.GraceMinutesIn,
		GraceMinutesOut:      st.GraceMinutesOut,
		Active:               st.Active,
	}
	for _, p := range st.SplitParts {
		resp.SplitParts = append(resp.SplitParts, shift.SplitPartPayload{
			StartTime: p.StartTime.String(),
			EndTime:   p.EndTime.String(),
		})
	}
	return resp
}

func toAssignmentResponse(a shift.Assignment) shift.AssignmentResponse {
	resp := shift.AssignmentResponse{
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		ShiftTypeID: a.ShiftTypeID,
		IsActive:    a.IsActive,
		AssignedAt:  a.AssignedAt.Format(time.RFC3339),
	}
	if a.DeactivatedAt != nil {
		deactivated := a.DeactivatedAt.Format(time.RFC3339)
		resp.DeactivatedAt = &deactivated
	}
	return resp
}
