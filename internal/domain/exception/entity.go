package exception

import "time"

type Type string

const (
	TypeLateArrival     Type = "LATE_ARRIVAL"
	TypeMissedPunch     Type = "MISSED_PUNCH"
	TypeOvertimeRequest Type = "OVERTIME_REQUEST"
	TypeLeaveEarly      Type = "LEAVE_EARLY"
	TypeOutOfWindow     Type = "OUT_OF_WINDOW"
	TypeWorkFromHome    Type = "WORK_FROM_HOME"
)

var TypeValues = []string{
	string(TypeLateArrival),
	string(TypeMissedPunch),
	string(TypeOvertimeRequest),
	string(TypeLeaveEarly),
	string(TypeOutOfWindow),
	string(TypeWorkFromHome),
}

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// TimeException is a flagged anomaly linked to an attendance record, raised
// automatically by the reconciler or manually by an employee, and closed by
// an approver.
type TimeException struct {
	ID                 string
	EmployeeID         string
	AttendanceRecordID *string
	Date               time.Time
	Type               Type
	Status             Status
	Reason             string
	ResolvedBy         *string
	ResolvedAt         *time.Time
	CreatedAt          time.Time
}
