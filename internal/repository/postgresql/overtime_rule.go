package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/overtime"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type overtimeRuleRepository struct {
	db *database.DB
}

func NewOvertimeRuleRepository(db *database.DB) overtime.RuleRepository {
	return &overtimeRuleRepository{db: db}
}

const ruleColumns = `
	id, code, name, min_minutes_before_overtime,
	weekday_multiplier, weekend_multiplier, holiday_multiplier, night_shift_multiplier,
	max_overtime_minutes_per_day, max_overtime_minutes_per_week, max_overtime_minutes_per_month,
	requires_pre_approval, active, approved, created_at, updated_at
`

func scanRule(row pgx.Row) (overtime.Rule, error) {
	var rule overtime.Rule
	err := row.Scan(
		&rule.ID, &rule.Code, &rule.Name, &rule.MinMinutesBeforeOvertime,
		&rule.WeekdayMultiplier, &rule.WeekendMultiplier, &rule.HolidayMultiplier, &rule.NightShiftMultiplier,
		&rule.MaxOvertimeMinutesPerDay, &rule.MaxOvertimeMinutesPerWeek, &rule.MaxOvertimeMinutesPerMonth,
		&rule.RequiresPreApproval, &rule.Active, &rule.Approved, &rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}

// Create implements overtime.RuleRepository.
func (r *overtimeRuleRepository) Create(ctx context.Context, rule overtime.Rule) (overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_rules (
			code, name, min_minutes_before_overtime,
			weekday_multiplier, weekend_multiplier, holiday_multiplier, night_shift_multiplier,
			max_overtime_minutes_per_day, max_overtime_minutes_per_week, max_overtime_minutes_per_month,
			requires_pre_approval, active, approved
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rule.Code,
		rule.Name,
		rule.MinMinutesBeforeOvertime,
		rule.WeekdayMultiplier,
		rule.WeekendMultiplier,
		rule.HolidayMultiplier,
		rule.NightShiftMultiplier,
		rule.MaxOvertimeMinutesPerDay,
		rule.MaxOvertimeMinutesPerWeek,
		rule.MaxOvertimeMinutesPerMonth,
		rule.RequiresPreApproval,
		rule.Active,
		rule.Approved,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return overtime.Rule{}, overtime.ErrRuleExists
		}
		return overtime.Rule{}, fmt.Errorf("failed to create overtime rule: %w", err)
	}

	return rule, nil
}

// GetByCode implements overtime.RuleRepository.
func (r *overtimeRuleRepository) GetByCode(ctx context.Context, code string) (overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM overtime_rules WHERE code = $1`

	rule, err := scanRule(q.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Rule{}, overtime.ErrRuleNotFound
		}
		return overtime.Rule{}, fmt.Errorf("failed to get overtime rule by code: %w", err)
	}

	return rule, nil
}

// List implements overtime.RuleRepository.
func (r *overtimeRuleRepository) List(ctx context.Context) ([]overtime.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM overtime_rules ORDER BY code ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime rules: %w", err)
	}
	defer rows.Close()

	var rules []overtime.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// Approve implements overtime.RuleRepository.
func (r *overtimeRuleRepository) Approve(ctx context.Context, code string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE overtime_rules SET approved = true, updated_at = NOW() WHERE code = $1`

	commandTag, err := q.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to approve overtime rule: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return overtime.ErrRuleNotFound
	}

	return nil
}
