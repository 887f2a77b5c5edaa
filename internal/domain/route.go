package domain

import "time"

// RouteLeg is one stretch of a planned trip between two waypoints.
// StopOnDutyHours is on-duty work at the leg's destination (pickup,
// drop-off) and may be zero.
type RouteLeg struct {
	From                  string
	To                    string
	DistanceMiles         float64
	EstimatedDrivingHours float64
	StopOnDutyHours       float64
}

// HOSState is the driver's position under the rules when a trip starts.
type HOSState struct {
	StartTime time.Time
	Totals    Totals
	Rules     RuleSet
}

type BreakType string

const (
	ShortBreak BreakType = "short_break"
	DailyReset BreakType = "daily_reset"
)

// SegmentKind distinguishes driving from on-duty stop work in a schedule.
type SegmentKind string

const (
	SegmentDriving SegmentKind = "driving"
	SegmentStop    SegmentKind = "stop"
)

// ScheduledSegment is a leg, or a split part of one, placed on the clock.
// FromFraction and ToFraction locate the part within its leg.
type ScheduledSegment struct {
	Kind          SegmentKind
	LegIndex      int
	Part          int
	FromFraction  float64
	ToFraction    float64
	DistanceMiles float64
	Hours         float64
	StartsAt      time.Time
	EndsAt        time.Time
}

// BreakEvent is a mandatory rest inserted by the scheduler. AfterLegIndex
// and LegFraction locate it on the route (LegFraction 1 is the leg
// boundary); AfterSegment indexes Schedule.Segments. AfterLegIndex is -1
// for a rest required before the first leg.
type BreakEvent struct {
	AfterLegIndex int
	LegFraction   float64
	AfterSegment  int
	Type          BreakType
	DurationHours float64
	Reason        string
	StartsAt      time.Time
	EndsAt        time.Time
}

type ScheduleStatus string

const (
	ScheduleComplete       ScheduleStatus = "scheduled"
	ScheduleCycleExhausted ScheduleStatus = "cycle_exhausted"
)

// Infeasibility describes where a trip runs out of cycle hours.
type Infeasibility struct {
	LegIndex              int
	LegFraction           float64
	At                    time.Time
	CycleHoursUsed        float64
	RemainingDrivingHours float64
	Reason                string
}

// Schedule is the projected, compliant timeline of a trip. When Status is
// ScheduleCycleExhausted the timeline stops where the cycle runs out and
// Infeasibility explains why; CompletesAt is then zero.
type Schedule struct {
	Status            ScheduleStatus
	RuleSetVersion    string
	StartTime         time.Time
	CompletesAt       time.Time
	Segments          []ScheduledSegment
	Breaks            []BreakEvent
	TotalDrivingHours float64
	TotalOnDutyHours  float64
	TotalRestHours    float64
	TotalMiles        float64
	Infeasibility     *Infeasibility
}

// Feasible reports whether the whole route fits within the cycle.
func (s *Schedule) Feasible() bool { return s.Status == ScheduleComplete }
