package overtime

import (
	"context"

	"github.com/clockwise-hr/attendance-engine-go/internal/domain/attendance"
)

// Service evaluates overtime policy against reconciled records.
type Service interface {
	// Evaluate computes chargeable overtime for a reconciled record under an
	// explicit rule. Fails with ErrRuleInactive when the rule is not both
	// active and approved.
	Evaluate(ctx context.Context, record attendance.Record, rule Rule) (Result, error)

	// EvaluateRecord resolves the employee's assigned rule, evaluates it and
	// writes the result fields back onto the record (not persisted).
	EvaluateRecord(ctx context.Context, record attendance.Record) (attendance.Record, error)

	GetSummary(ctx context.Context, req SummaryRequest) (Summary, error)

	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	GetRule(ctx context.Context, code string) (RuleResponse, error)
	ListRules(ctx context.Context) ([]RuleResponse, error)
	ApproveRule(ctx context.Context, code string) error
}
