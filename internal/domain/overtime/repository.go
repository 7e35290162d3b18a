package overtime

import "context"

// RuleRepository defines data access for overtime-rule policies.
type RuleRepository interface {
	Create(ctx context.Context, rule Rule) (Rule, error)
	GetByCode(ctx context.Context, code string) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Approve(ctx context.Context, code string) error
}
