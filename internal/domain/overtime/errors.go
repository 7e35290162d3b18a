package overtime

import "errors"

// Overtime domain errors
var (
	ErrRuleNotFound = errors.New("overtime rule not found")
	ErrRuleExists   = errors.New("overtime rule code already exists")
	// ErrRuleInactive aborts evaluation entirely: falling back to a default
	// multiplier would silently mis-pay.
	ErrRuleInactive   = errors.New("overtime rule is not active or not approved")
	ErrNoRuleAssigned = errors.New("employee has no overtime rule assigned")
)
