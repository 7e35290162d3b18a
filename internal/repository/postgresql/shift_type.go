package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/shift"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type shiftTypeRepository struct {
	db *database.DB
}

func NewShiftTypeRepository(db *database.DB) shift.ShiftTypeRepository {
	return &shiftTypeRepository{db: db}
}

// splitPartRow is the JSONB shape of one split part.
type splitPartRow struct {
	StartTime int `json:"start_time"`
	EndTime   int `json:"end_time"`
}

func marshalSplitParts(parts []shift.SplitPart) ([]byte, error) {
	rows := make([]splitPartRow, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, splitPartRow{StartTime: p.StartTime.Minutes(), EndTime: p.EndTime.Minutes()})
	}
	return json.Marshal(rows)
}

func unmarshalSplitParts(raw []byte) ([]shift.SplitPart, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []splitPartRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode split parts: %w", err)
	}
	parts := make([]shift.SplitPart, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, shift.SplitPart{StartTime: shift.ClockTime(r.StartTime), EndTime: shift.ClockTime(r.EndTime)})
	}
	return parts, nil
}

// Create implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Create(ctx context.Context, st shift.ShiftType) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	partsJSON, err := marshalSplitParts(st.SplitParts)
	if err != nil {
		return shift.ShiftType{}, fmt.Errorf("failed to encode split parts: %w", err)
	}

	query := `
		INSERT INTO shift_types (
			code, name, category, start_time_minutes, end_time_minutes,
			total_duration_minutes, break_duration_minutes, split_parts,
			is_night_shift, is_weekend_shift, grace_minutes_in, grace_minutes_out, active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		st.Code,
		st.Name,
		st.Category,
		st.StartTime.Minutes(),
		st.EndTime.Minutes(),
		st.TotalDurationMinutes,
		st.BreakDurationMinutes,
		partsJSON,
		st.IsNightShift,
		st.IsWeekendShift,
		st.GraceMinutesIn,
		st.GraceMinutesOut,
		st.Active,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shift.ShiftType{}, shift.ErrShiftCodeExists
		}
		return shift.ShiftType{}, fmt.Errorf("failed to create shift type: %w", err)
	}

	return st, nil
}

const shiftTypeColumns = `
	id, code, name, category, start_time_minutes, end_time_minutes,
	total_duration_minutes, break_duration_minutes, split_parts,
	is_night_shift, is_weekend_shift, grace_minutes_in, grace_minutes_out,
	active, created_at, updated_at
`

func scanShiftType(row pgx.Row) (shift.ShiftType, error) {
	var st shift.ShiftType
	var startMinutes, endMinutes int
	var partsJSON []byte

	err := row.Scan(
		&st.ID, &st.Code, &st.Name, &st.Category, &startMinutes, &endMinutes,
		&st.TotalDurationMinutes, &st.BreakDurationMinutes, &partsJSON,
		&st.IsNightShift, &st.IsWeekendShift, &st.GraceMinutesIn, &st.GraceMinutesOut,
		&st.Active, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return shift.ShiftType{}, err
	}

	st.StartTime = shift.ClockTime(startMinutes)
	st.EndTime = shift.ClockTime(endMinutes)
	st.SplitParts, err = unmarshalSplitParts(partsJSON)
	if err != nil {
		return shift.ShiftType{}, err
	}

	return st, nil
}

// GetByID implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) GetByID(ctx context.Context, id string) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftTypeColumns + ` FROM shift_types WHERE id = $1`

	st, err := scanShiftType(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftType{}, shift.ErrShiftTypeNotFound
		}
		return shift.ShiftType{}, fmt.Errorf("failed to get shift type by ID: %w", err)
	}

	return st, nil
}

// GetByCode implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) GetByCode(ctx context.Context, code string) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftTypeColumns + ` FROM shift_types WHERE code = $1`

	st, err := scanShiftType(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftType{}, shift.ErrShiftTypeNotFound
		}
		return shift.ShiftType{}, fmt.Errorf("failed to get shift type by code: %w", err)
	}

	return st, nil
}

// List implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) List(ctx context.Context, filter shift.ShiftTypeFilter) ([]shift.ShiftType, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.Category != nil && *filter.Category != "" {
		baseWhere += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, *filter.Category)
		argIdx++
	}
	if filter.ActiveOnly {
		baseWhere += " AND active = true"
	}

	countQuery := "SELECT COUNT(*) FROM shift_types WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift types: %w", err)
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
		"SELECT "+shiftTypeColumns+" FROM shift_types WHERE %s ORDER BY code ASC LIMIT $%d OFFSET $%d",
		baseWhere, argIdx, argIdx+1,
	)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shift types: %w", err)
	}
	defer rows.Close()

	var shiftTypes []shift.ShiftType
	for rows.Next() {
		st, err := scanShiftType(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift type: %w", err)
		}
		shiftTypes = append(shiftTypes, st)
	}

	return shiftTypes, total, nil
}

// Deactivate implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Deactivate(ctx context.Context, code string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE shift_types SET active = false, updated_at = NOW() WHERE code = $1`

	commandTag, err := q.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate shift type: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return shift.ErrShiftTypeNotFound
	}

	return nil
}
