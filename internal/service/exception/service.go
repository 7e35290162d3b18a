package exception

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/go-chi/jwtauth/v5"
)

type ExceptionServiceImpl struct {
	exception.Repository
	employeeRepo    employee.Repository
	attendanceRepo  attendance.Repository
	overtimeService overtime.Service
	clock           clock.Clock
	engineCfg       config.EngineConfig
}

func NewExceptionService(
	exceptionRepo exception.Repository,
	employeeRepo employee.Repository,
	attendanceRepo attendance.Repository,
	overtimeService overtime.Service,
	clk clock.Clock,
	engineCfg config.EngineConfig,
) exception.Service {
	return &ExceptionServiceImpl{
		Repository:      exceptionRepo,
		employeeRepo:    employeeRepo,
		attendanceRepo:  attendanceRepo,
		overtimeService: overtimeService,
		clock:           clk,
		engineCfg:       engineCfg,
	}
}

// Create implements exception.Service.
func (s *ExceptionServiceImpl) Create(ctx context.Context, req exception.CreateRequest) (exception.Response, error) {
	if err := req.Validate(); err != nil {
		return exception.Response{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		_, claims, err := jwtauth.FromContext(ctx)
		if err != nil {
			return exception.Response{}, fmt.Errorf("failed to extract claims from context: %w", err)
		}
		claimed, ok := claims["employee_id"].(string)
		if !ok || claimed == "" {
			return exception.Response{}, fmt.Errorf("employee_id claim is missing or invalid")
		}
		employeeID = claimed
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return exception.Response{}, err
	}

	exc, err := s.Repository.Create(ctx, exception.TimeException{
		EmployeeID:         employeeID,
		AttendanceRecordID: req.AttendanceRecordID,
		Date:               req.ParsedDate(),
		Type:               exception.Type(req.Type),
		Status:             exception.StatusOpen,
		Reason:             req.Reason,
	})
	if err != nil {
		return exception.Response{}, fmt.Errorf("failed to create time exception: %w", err)
	}

	return toResponse(exc), nil
}

// Get implements exception.Service.
func (s *ExceptionServiceImpl) Get(ctx context.Context, id string) (exception.Response, error) {
	exc, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return exception.Response{}, err
	}
	return toResponse(exc), nil
}

// List implements exception.Service.
func (s *ExceptionServiceImpl) List(ctx context.Context, filter exception.Filter) (exception.ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	exceptions, total, err := s.Repository.List(ctx, filter)
	if err != nil {
		return exception.ListResponse{}, fmt.Errorf("failed to list time exceptions: %w", err)
	}

	responses := make([]exception.Response, 0, len(exceptions))
	for _, exc := range exceptions {
		responses = append(responses, toResponse(exc))
	}

	return exception.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Exceptions: responses,
	}, nil
}

// Approve implements exception.Service.
func (s *ExceptionServiceImpl) Approve(ctx context.Context, id, resolvedBy string) error {
	return s.resolve(ctx, id, resolvedBy, exception.StatusApproved)
}

// Reject implements exception.Service.
func (s *ExceptionServiceImpl) Reject(ctx context.Context, id, resolvedBy string) error {
	return s.resolve(ctx, id, resolvedBy, exception.StatusRejected)
}

func (s *ExceptionServiceImpl) resolve(ctx context.Context, id, resolvedBy string, status exception.Status) error {
	if resolvedBy == "" {
		_, claims, err := jwtauth.FromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to extract claims from context: %w", err)
		}
		claimed, ok := claims["actor_id"].(string)
		if !ok || claimed == "" {
			return fmt.Errorf("actor_id claim is missing or invalid")
		}
		resolvedBy = claimed
	}

	exc, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repository.UpdateStatus(ctx, id, status, resolvedBy, s.clock.Now()); err != nil {
		return err
	}

	if status == exception.StatusApproved && exc.Type == exception.TypeOvertimeRequest {
		return s.releasePendingOvertime(ctx, exc)
	}

	return nil
}

// releasePendingOvertime re-evaluates the attendance record an approved
// OVERTIME_REQUEST covers so minutes held as pending become payable. A
// concurrent punch or sweep bumps the record version; the bounded retry
// re-reads and tries again.
func (s *ExceptionServiceImpl) releasePendingOvertime(ctx context.Context, exc exception.TimeException) error {
	for attempt := 0; attempt < s.engineCfg.CASRetries; attempt++ {
		rec, err := s.loadRecord(ctx, exc)
		if err != nil {
			if errors.Is(err, attendance.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if rec == nil || rec.ActualCheckOut == nil {
			// The day is not finalized yet; the clock-out evaluation
			// will see the approval on its own.
			return nil
		}

		evaluated, err := s.overtimeService.EvaluateRecord(ctx, *rec)
		if err != nil {
			if errors.Is(err, overtime.ErrNoRuleAssigned) {
				return nil
			}
			return fmt.Errorf("failed to re-evaluate overtime after approval: %w", err)
		}

		if _, err := s.attendanceRepo.Update(ctx, evaluated); err != nil {
			if errors.Is(err, attendance.ErrVersionConflict) {
				continue
			}
			return fmt.Errorf("failed to persist re-evaluated overtime: %w", err)
		}
		return nil
	}

	return attendance.ErrVersionConflict
}

func (s *ExceptionServiceImpl) loadRecord(ctx context.Context, exc exception.TimeException) (*attendance.Record, error) {
	if exc.AttendanceRecordID != nil {
		rec, err := s.attendanceRepo.GetByID(ctx, *exc.AttendanceRecordID)
		if err != nil {
			return nil, err
		}
		return &rec, nil
	}
	return s.attendanceRepo.GetByEmployeeAndDate(ctx, exc.EmployeeID, exc.Date)
}

func toResponse(exc exception.TimeException) exception.Response {
	resp := exception.Response{
		ID:                 exc.ID,
		EmployeeID:         exc.EmployeeID,
		AttendanceRecordID: exc.AttendanceRecordID,
		Date:               exc.Date.Format("2006-01-02"),
		Type:               string(exc.Type),
		Status:             string(exc.Status),
		Reason:             exc.Reason,
		ResolvedBy:         exc.ResolvedBy,
		CreatedAt:          exc.CreatedAt.Format(time.RFC3339),
	}
	if exc.ResolvedAt != nil {
		resolved := exc.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolved
	}
	return resp
}
