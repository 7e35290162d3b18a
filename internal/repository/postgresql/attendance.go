package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const recordColumns = `
	id, employee_id, date, shift_type_id,
	scheduled_check_in, scheduled_check_out, actual_check_in, actual_check_out, open_punch_at,
	worked_minutes, late_minutes, early_departure_minutes,
	overtime_minutes, effective_multiplier, overtime_pending, overtime_clamped_minutes,
	is_late, is_early_departure, is_missed_punch,
	status, corrected_by, corrected_at,
	clock_in_idempotency_key, clock_out_idempotency_key,
	version, created_at, updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.ShiftTypeID,
		&rec.ScheduledCheckIn, &rec.ScheduledCheckOut, &rec.ActualCheckIn, &rec.ActualCheckOut, &rec.OpenPunchAt,
		&rec.WorkedMinutes, &rec.LateMinutes, &rec.EarlyDepartureMinutes,
		&rec.OvertimeMinutes, &rec.EffectiveMultiplier, &rec.OvertimePending, &rec.OvertimeClampedMinutes,
		&rec.IsLate, &rec.IsEarlyDeparture, &rec.IsMissedPunch,
		&rec.Status, &rec.CorrectedBy, &rec.CorrectedAt,
		&rec.ClockInIdempotencyKey, &rec.ClockOutIdempotencyKey,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.Repository.
func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (
			employee_id, date, shift_type_id,
			scheduled_check_in, scheduled_check_out, actual_check_in, actual_check_out, open_punch_at,
			worked_minutes, late_minutes, early_departure_minutes,
			overtime_minutes, effective_multiplier, overtime_pending, overtime_clamped_minutes,
			is_late, is_early_departure, is_missed_punch,
			status, clock_in_idempotency_key, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, 1
		) RETURNING id, version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.EmployeeID,
		rec.Date,
		rec.ShiftTypeID,
		rec.ScheduledCheckIn,
		rec.ScheduledCheckOut,
		rec.ActualCheckIn,
		rec.ActualCheckOut,
		rec.OpenPunchAt,
		rec.WorkedMinutes,
		rec.LateMinutes,
		rec.EarlyDepartureMinutes,
		rec.OvertimeMinutes,
		rec.EffectiveMultiplier,
		rec.OvertimePending,
		rec.OvertimeClampedMinutes,
		rec.IsLate,
		rec.IsEarlyDeparture,
		rec.IsMissedPunch,
		rec.Status,
		rec.ClockInIdempotencyKey,
	).Scan(&rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.Repository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND date = $2
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No record exists for this date
		}
		return nil, fmt.Errorf("failed to get attendance record by employee and date: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.Repository. The WHERE clause compares the
// caller's version; a miss means a concurrent writer won the race.
func (r *attendanceRepository) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_records SET
			shift_type_id = $1,
			scheduled_check_in = $2,
			scheduled_check_out = $3,
			actual_check_in = $4,
			actual_check_out = $5,
			open_punch_at = $6,
			worked_minutes = $7,
			late_minutes = $8,
			early_departure_minutes = $9,
			overtime_minutes = $10,
			effective_multiplier = $11,
			overtime_pending = $12,
			overtime_clamped_minutes = $13,
			is_late = $14,
			is_early_departure = $15,
			is_missed_punch = $16,
			status = $17,
			corrected_by = $18,
			corrected_at = $19,
			clock_in_idempotency_key = $20,
			clock_out_idempotency_key = $21,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $22 AND version = $23
		RETURNING version, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ShiftTypeID,
		rec.ScheduledCheckIn,
		rec.ScheduledCheckOut,
		rec.ActualCheckIn,
		rec.ActualCheckOut,
		rec.OpenPunchAt,
		rec.WorkedMinutes,
		rec.LateMinutes,
		rec.EarlyDepartureMinutes,
		rec.OvertimeMinutes,
		rec.EffectiveMultiplier,
		rec.OvertimePending,
		rec.OvertimeClampedMinutes,
		rec.IsLate,
		rec.IsEarlyDeparture,
		rec.IsMissedPunch,
		rec.Status,
		rec.CorrectedBy,
		rec.CorrectedAt,
		rec.ClockInIdempotencyKey,
		rec.ClockOutIdempotencyKey,
		rec.ID,
		rec.Version,
	).Scan(&rec.Version, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrVersionConflict
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return rec, nil
}

// List implements attendance.Repository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.IsLate != nil {
		baseWhere += fmt.Sprintf(" AND is_late = $%d", argIdx)
		args = append(args, *filter.IsLate)
		argIdx++
	}
	if filter.IsMissedPunch != nil {
		baseWhere += fmt.Sprintf(" AND is_missed_punch = $%d", argIdx)
		args = append(args, *filter.IsMissedPunch)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_records WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	orderByField := "date"
	switch filter.SortBy {
	case "actual_check_in":
		orderByField = "actual_check_in"
	case "status":
		orderByField = "status"
	case "worked_minutes":
		orderByField = "worked_minutes"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery := fmt.Sprintf(
		"SELECT "+recordColumns+" FROM attendance_records WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		baseWhere, orderByField, sortOrder, argIdx, argIdx+1,
	)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// ListUnswept implements attendance.Repository.
func (r *attendanceRepository) ListUnswept(ctx context.Context, before time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE status = 'OPEN'
		  AND date < $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query unswept records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListFinalized implements attendance.Repository.
func (r *attendanceRepository) ListFinalized(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	// Payroll sees completed days plus missed-punch days that a correction
	// has resolved; days pending the sweep stay out.
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND (
			status = 'COMPLETE'
			OR (status = 'INCOMPLETE' AND is_missed_punch = true AND corrected_at IS NOT NULL)
		  )
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query finalized records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// SumFinalizedOvertime implements attendance.Repository.
func (r *attendanceRepository) SumFinalizedOvertime(ctx context.Context, employeeID string, start, end time.Time, excludeRecordID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(overtime_minutes), 0)
		FROM attendance_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND id != $4
		  AND overtime_pending = false
	`

	var total int
	if err := q.QueryRow(ctx, query, employeeID, start, end, excludeRecordID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum overtime minutes: %w", err)
	}

	return total, nil
}

// SumOvertimeByMultiplier implements attendance.Repository.
func (r *attendanceRepository) SumOvertimeByMultiplier(ctx context.Context, employeeID string, start, end time.Time) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT to_char(effective_multiplier, 'FM990.999'), SUM(overtime_minutes)
		FROM attendance_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND overtime_minutes > 0
		  AND overtime_pending = false
		  AND effective_multiplier IS NOT NULL
		GROUP BY effective_multiplier
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate overtime by multiplier: %w", err)
	}
	defer rows.Close()

	tiers := make(map[string]int64)
	for rows.Next() {
		var tier string
		var minutes int64
		if err := rows.Scan(&tier, &minutes); err != nil {
			return nil, fmt.Errorf("failed to scan overtime tier: %w", err)
		}
		tiers[tier] = minutes
	}

	return tiers, nil
}
