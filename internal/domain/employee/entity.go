package employee

import "time"

type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "active"
	StatusTerminated EmploymentStatus = "terminated"
)

// Employee is the read-side projection this engine needs from the employee
// directory collaborator.
type Employee struct {
	ID               string
	FullName         string
	Timezone         string
	EmploymentStatus EmploymentStatus
	// OvertimeRuleCode names the employee's overtime policy, nil when none
	// is assigned.
	OvertimeRuleCode *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (e Employee) Terminated() bool {
	return e.EmploymentStatus == StatusTerminated
}
