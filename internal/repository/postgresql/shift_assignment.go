package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type assignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &assignmentRepository{db: db}
}

// Create implements shift.AssignmentRepository.
func (r *assignmentRepository) Create(ctx context.Context, a shift.Assignment) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_shift_assignments (
			employee_id, shift_type_id, is_active, assigned_at
		) VALUES (
			$1, $2, $3, $4
		) RETURNING id
	`

	err := q.QueryRow(ctx, query,
		a.EmployeeID,
		a.ShiftTypeID,
		a.IsActive,
		a.AssignedAt,
	).Scan(&a.ID)

	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to create shift assignment: %w", err)
	}

	return a, nil
}

// GetActiveByEmployee implements shift.AssignmentRepository.
func (r *assignmentRepository) GetActiveByEmployee(ctx context.Context, employeeID string, asOf time.Time) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, shift_type_id, is_active, assigned_at, deactivated_at
		FROM employee_shift_assignments
		WHERE employee_id = $1
		  AND is_active = true
		  AND assigned_at <= $2
		LIMIT 1
	`

	var a shift.Assignment
	err := q.QueryRow(ctx, query, employeeID, asOf).Scan(
		&a.ID, &a.EmployeeID, &a.ShiftTypeID, &a.IsActive, &a.AssignedAt, &a.DeactivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Assignment{}, shift.ErrAssignmentNotFound
		}
		return shift.Assignment{}, fmt.Errorf("failed to get active assignment: %w", err)
	}

	return a, nil
}

// DeactivateForEmployee implements shift.AssignmentRepository.
func (r *assignmentRepository) DeactivateForEmployee(ctx context.Context, employeeID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_shift_assignments
		SET is_active = false, deactivated_at = $2
		WHERE employee_id = $1 AND is_active = true
	`

	if _, err := q.Exec(ctx, query, employeeID, at); err != nil {
		return fmt.Errorf("failed to deactivate assignments: %w", err)
	}

	return nil
}

// ListByEmployee implements shift.AssignmentRepository.
func (r *assignmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, shift_type_id, is_active, assigned_at, deactivated_at
		FROM employee_shift_assignments
		WHERE employee_id = $1
		ORDER BY assigned_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		var a shift.Assignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ShiftTypeID, &a.IsActive, &a.AssignedAt, &a.DeactivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}
