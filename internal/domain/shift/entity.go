package shift

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryNormal     Category = "NORMAL"
	CategorySplit      Category = "SPLIT"
	CategoryOvernight  Category = "OVERNIGHT"
	CategoryRotational Category = "ROTATIONAL"
	CategoryFlexible   Category = "FLEXIBLE"
)

var CategoryValues = []string{
	string(CategoryNormal),
	string(CategorySplit),
	string(CategoryOvernight),
	string(CategoryRotational),
	string(CategoryFlexible),
}

// ClockTime is a wall-clock minute of day (0..1439), parsed from "HH:mm".
type ClockTime int

func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) Minutes() int {
	return int(c)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// At anchors the clock time onto the given calendar date in its location.
func (c ClockTime) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, date.Location())
}

type SplitPart struct {
	StartTime ClockTime
	EndTime   ClockTime
}

type ShiftType struct {
	ID                   string
	Code                 string
	Name                 string
	Category             Category
	StartTime            ClockTime
	EndTime              ClockTime
	TotalDurationMinutes int
	BreakDurationMinutes int
	// SplitParts is populated only for SPLIT shifts, ordered by StartTime.
	SplitParts      []SplitPart
	IsNightShift    bool
	IsWeekendShift  bool
	GraceMinutesIn  int
	GraceMinutesOut int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CrossesMidnight reports whether the shift's end lands on the next calendar
// day. An OVERNIGHT shift with EndTime < StartTime always does; other
// categories fall back to the same rule when their times wrap.
func (s ShiftType) CrossesMidnight() bool {
	return s.EndTime <= s.StartTime
}

// Assignment binds an employee to a shift type. At most one assignment per
// employee has IsActive=true; reassignment deactivates, never deletes.
type Assignment struct {
	ID            string
	EmployeeID    string
	ShiftTypeID   string
	IsActive      bool
	AssignedAt    time.Time
	DeactivatedAt *time.Time
}

// Segment is a concrete scheduled interval on the timeline.
type Segment struct {
	Start time.Time
	End   time.Time
}

func (s Segment) Minutes() int {
	return int(s.End.Sub(s.Start).Minutes())
}

// ScheduledWindow is the resolved work window for one employee and date.
// Segments is ordered; non-split shifts have exactly one segment.
type ScheduledWindow struct {
	EmployeeID string
	// Date is the owning date at local midnight. Overnight shifts own the
	// day they start even when punches land after midnight.
	Date     time.Time
	Shift    ShiftType
	Segments []Segment
}

func (w ScheduledWindow) Start() time.Time {
	return w.Segments[0].Start
}

func (w ScheduledWindow) End() time.Time {
	return w.Segments[len(w.Segments)-1].End
}

func (w ScheduledWindow) ScheduledMinutes() int {
	total := 0
	for _, seg := range w.Segments {
		total += seg.Minutes()
	}
	return total
}
