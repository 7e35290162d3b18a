package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/exception"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeExceptionRepository struct {
	db *database.DB
}

func NewTimeExceptionRepository(db *database.DB) exception.Repository {
	return &timeExceptionRepository{db: db}
}

const exceptionColumns = `
	id, employee_id, attendance_record_id, date, type, status, reason,
	resolved_by, resolved_at, created_at
`

// Create implements exception.Repository.
func (r *timeExceptionRepository) Create(ctx context.Context, exc exception.TimeException) (exception.TimeException, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_exceptions (
			employee_id, attendance_record_id, date, type, status, reason
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		exc.EmployeeID,
		exc.AttendanceRecordID,
		exc.Date,
		exc.Type,
		exc.Status,
		exc.Reason,
	).Scan(&exc.ID, &exc.CreatedAt)

	if err != nil {
		return exception.TimeException{}, fmt.Errorf("failed to create time exception: %w", err)
	}

	return exc, nil
}

// GetByID implements exception.Repository.
func (r *timeExceptionRepository) GetByID(ctx context.Context, id string) (exception.TimeException, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + exceptionColumns + ` FROM time_exceptions WHERE id = $1`

	var exc exception.TimeException
	err := q.QueryRow(ctx, query, id).Scan(
		&exc.ID, &exc.EmployeeID, &exc.AttendanceRecordID, &exc.Date, &exc.Type, &exc.Status, &exc.Reason,
		&exc.ResolvedBy, &exc.ResolvedAt, &exc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.TimeException{}, exception.ErrExceptionNotFound
		}
		return exception.TimeException{}, fmt.Errorf("failed to get time exception by ID: %w", err)
	}

	return exc, nil
}

// List implements exception.Repository.
func (r *timeExceptionRepository) List(ctx context.Context, filter exception.Filter) ([]exception.TimeException, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
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

	countQuery := "SELECT COUNT(*) FROM time_exceptions WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time exceptions: %w", err)
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
		"SELECT "+exceptionColumns+" FROM time_exceptions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		baseWhere, argIdx, argIdx+1,
	)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query time exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []exception.TimeException
	for rows.Next() {
		var exc exception.TimeException
		if err := rows.Scan(
			&exc.ID, &exc.EmployeeID, &exc.AttendanceRecordID, &exc.Date, &exc.Type, &exc.Status, &exc.Reason,
			&exc.ResolvedBy, &exc.ResolvedAt, &exc.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan time exception: %w", err)
		}
		exceptions = append(exceptions, exc)
	}

	return exceptions, total, nil
}

// HasOpenForRecord implements exception.Repository.
func (r *timeExceptionRepository) HasOpenForRecord(ctx context.Context, recordID string, excType exception.Type) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM time_exceptions
			WHERE attendance_record_id = $1
			  AND type = $2
			  AND status = 'OPEN'
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, recordID, excType).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check open exception: %w", err)
	}

	return exists, nil
}

// HasApprovedForDate implements exception.Repository.
func (r *timeExceptionRepository) HasApprovedForDate(ctx context.Context, employeeID string, date time.Time, excType exception.Type) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM time_exceptions
			WHERE employee_id = $1
			  AND date = $2
			  AND type = $3
			  AND status = 'APPROVED'
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, date, excType).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved exception: %w", err)
	}

	return exists, nil
}

// UpdateStatus implements exception.Repository.
func (r *timeExceptionRepository) UpdateStatus(ctx context.Context, id string, status exception.Status, resolvedBy string, resolvedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_exceptions
		SET status = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1 AND status = 'OPEN'
	`

	commandTag, err := q.Exec(ctx, query, id, status, resolvedBy, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to update time exception status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return exception.ErrExceptionAlreadyResolved
	}

	return nil
}
