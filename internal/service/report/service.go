package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/validator"
	"github.com/xuri/excelize/v2"
)

// Service renders payroll-facing attendance data into downloadable files.
type Service interface {
	// ExportOvertimeXLSX writes one row per finalized record with overtime
	// in the period. Returns the file content and a suggested filename.
	ExportOvertimeXLSX(ctx context.Context, employeeID, startDate, endDate string) (*bytes.Buffer, string, error)
}

type ReportServiceImpl struct {
	attendanceRepo attendance.Repository
	employeeRepo   employee.Repository
}

func NewReportService(attendanceRepo attendance.Repository, employeeRepo employee.Repository) Service {
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
	}
}

var overtimeHeaders = []string{
	"Date", "Status", "Worked Minutes", "Overtime Minutes",
	"Effective Multiplier", "Pending Approval", "Clamped Minutes",
}

// ExportOvertimeXLSX implements Service.
func (s *ReportServiceImpl) ExportOvertimeXLSX(ctx context.Context, employeeID, startDate, endDate string) (*bytes.Buffer, string, error) {
	start, ok := validator.IsValidDate(startDate)
	if !ok {
		return nil, "", validator.ValidationErrors{{Field: "start_date", Message: "start_date must be YYYY-MM-DD"}}
	}
	end, ok := validator.IsValidDate(endDate)
	if !ok {
		return nil, "", validator.ValidationErrors{{Field: "end_date", Message: "end_date must be YYYY-MM-DD"}}
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, "", err
	}

	records, err := s.attendanceRepo.ListFinalized(ctx, employeeID, start, end)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load finalized records: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Overtime"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s to %s)", emp.FullName, startDate, endDate)); err != nil {
		return nil, "", fmt.Errorf("failed to write title: %w", err)
	}

	for i, header := range overtimeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	var totalWorked, totalOvertime int
	row := 3
	for _, rec := range records {
		multiplier := ""
		if rec.EffectiveMultiplier != nil {
			multiplier = fmt.Sprintf("%.3f", *rec.EffectiveMultiplier)
		}

		values := []interface{}{
			rec.Date.Format("2006-01-02"),
			string(rec.Status),
			rec.WorkedMinutes,
			rec.OvertimeMinutes,
			multiplier,
			rec.OvertimePending,
			rec.OvertimeClampedMinutes,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write record row: %w", err)
			}
		}

		totalWorked += rec.WorkedMinutes
		if !rec.OvertimePending {
			totalOvertime += rec.OvertimeMinutes
		}
		row++
	}

	totals := []interface{}{"Total", "", totalWorked, totalOvertime}
	for i, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, "", fmt.Errorf("failed to write totals row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("overtime_%s_%s_%s.xlsx", employeeID, startDate, endDate)
	return buf, filename, nil
}
