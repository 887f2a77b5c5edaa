package domain

import "time"

// Totals are the cumulative hours for one driver as of an instant.
//
// Driving, on-duty, off-duty and sleeper-berth hours cover the current duty
// period (since the last qualifying reset). CycleHoursUsed covers the
// trailing cycle window. HoursSinceBreak is the 30-minute-break clock.
type Totals struct {
	AsOf              time.Time `json:"as_of"`
	DutyPeriodStart   time.Time `json:"duty_period_start"`
	DrivingHours      float64   `json:"driving_hours"`
	OnDutyHours       float64   `json:"on_duty_hours"`
	SleeperBerthHours float64   `json:"sleeper_berth_hours"`
	OffDutyHours      float64   `json:"off_duty_hours"`
	CycleHoursUsed    float64   `json:"cycle_hours_used"`
	HoursSinceBreak   float64   `json:"hours_since_break"`

	// DrivenSinceBreak is true when the break clock has accrued driving
	// since it last reset; a non-driving stretch then counts as the break.
	DrivenSinceBreak bool `json:"driven_since_break"`

	// ConsecutiveRestHours is the length of the off-duty/sleeper-berth run
	// in progress at AsOf (zero while on duty).
	ConsecutiveRestHours float64 `json:"consecutive_rest_hours"`

	// DutyPeriodOpen is true when the period holds on-duty time and no
	// qualifying reset has completed since.
	DutyPeriodOpen bool `json:"duty_period_open"`

	// ResetComplete is true when the rest run in progress already
	// qualifies as a reset; the next duty period starts fresh.
	ResetComplete bool `json:"reset_complete"`
}

// Remaining is the headroom left under each limit; never negative.
type Remaining struct {
	DrivingHours    float64 `json:"driving_hours"`
	DutyWindowHours float64 `json:"duty_window_hours"`
	CycleHours      float64 `json:"cycle_hours"`
	UntilBreakHours float64 `json:"until_break_hours"`
}
