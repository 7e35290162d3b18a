package overtime

import "time"

// Rule is a named overtime policy. Multipliers are factors ≥ 1.0; a cap of 0
// means unlimited for that tier. An unapproved rule must never be applied.
type Rule struct {
	ID   string
	Code string
	Name string

	MinMinutesBeforeOvertime int

	WeekdayMultiplier    float64
	WeekendMultiplier    float64
	HolidayMultiplier    float64
	NightShiftMultiplier float64

	MaxOvertimeMinutesPerDay   int
	MaxOvertimeMinutesPerWeek  int
	MaxOvertimeMinutesPerMonth int

	RequiresPreApproval bool
	Active              bool
	Approved            bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayType selects the base multiplier tier.
type DayType string

const (
	DayTypeWeekday DayType = "WEEKDAY"
	DayTypeWeekend DayType = "WEEKEND"
	DayTypeHoliday DayType = "HOLIDAY"
)

// BaseMultiplier returns the day-type multiplier before night-shift
// composition.
func (r Rule) BaseMultiplier(dayType DayType) float64 {
	switch dayType {
	case DayTypeHoliday:
		return r.HolidayMultiplier
	case DayTypeWeekend:
		return r.WeekendMultiplier
	default:
		return r.WeekdayMultiplier
	}
}

// Result is what the evaluator writes back onto the attendance record. It
// never carries currency amounts.
type Result struct {
	OvertimeMinutes     int
	EffectiveMultiplier float64
	PendingApproval     bool
	// ClampedMinutes records how many raw excess minutes the caps removed,
	// for audit. Clamping is silent but never hidden.
	ClampedMinutes int
}
