package dto

import (
	"hos-compliance-service/internal/domain"
	"time"
)

type RouteLeg struct {
	From                  string  `json:"from"`
	To                    string  `json:"to"`
	DistanceMiles         float64 `json:"distance_miles"`
	EstimatedDrivingHours float64 `json:"estimated_driving_hours"`
	StopOnDutyHours       float64 `json:"stop_on_duty_hours"`
}

// StartState is the driver's position under the rules at departure.
type StartState struct {
	DrivingHours     float64 `json:"driving_hours"`
	OnDutyHours      float64 `json:"on_duty_hours"`
	HoursSinceBreak  float64 `json:"hours_since_break"`
	DrivenSinceBreak bool    `json:"driven_since_break"`
	CycleHoursUsed   float64 `json:"cycle_hours_used"`
}

type ScheduleRequest struct {
	Legs      []RouteLeg `json:"legs"`
	StartTime *time.Time `json:"start_time"`
	Start     StartState `json:"start"`
}

type SegmentResponse struct {
	Kind          string    `json:"kind"`
	LegIndex      int       `json:"leg_index"`
	Part          int       `json:"part"`
	FromFraction  float64   `json:"from_fraction"`
	ToFraction    float64   `json:"to_fraction"`
	DistanceMiles float64   `json:"distance_miles"`
	Hours         float64   `json:"hours"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type BreakResponse struct {
	AfterLegIndex int       `json:"after_leg_index"`
	LegFraction   float64   `json:"leg_fraction"`
	AfterSegment  int       `json:"after_segment"`
	Type          string    `json:"type"`
	DurationHours float64   `json:"duration_hours"`
	Reason        string    `json:"reason"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type InfeasibilityResponse struct {
	LegIndex              int       `json:"leg_index"`
	LegFraction           float64   `json:"leg_fraction"`
	At                    time.Time `json:"at"`
	CycleHoursUsed        float64   `json:"cycle_hours_used"`
	RemainingDrivingHours float64   `json:"remaining_driving_hours"`
	Reason                string    `json:"reason"`
}

type ScheduleResponse struct {
	Status            string                 `json:"status"`
	RuleSetVersion    string                 `json:"ruleset"`
	StartTime         time.Time              `json:"start_time"`
	CompletesAt       *time.Time             `json:"completes_at"`
	TotalDrivingHours float64                `json:"total_driving_hours"`
	TotalOnDutyHours  float64                `json:"total_on_duty_hours"`
	TotalRestHours    float64                `json:"total_rest_hours"`
	TotalMiles        float64                `json:"total_miles"`
	Segments          []SegmentResponse      `json:"segments"`
	Breaks            []BreakResponse        `json:"breaks"`
	Infeasibility     *InfeasibilityResponse `json:"infeasibility,omitempty"`
}

// TripPlanRequest accepts either Waypoints or the three-location form
// (current, pickup, dropoff).
type TripPlanRequest struct {
	DriverID         string     `json:"driver_id"`
	Waypoints        []string   `json:"waypoints"`
	CurrentLocation  string     `json:"current_location"`
	PickupLocation   string     `json:"pickup_location"`
	DropoffLocation  string     `json:"dropoff_location"`
	StartTime        *time.Time `json:"start_time"`
	CurrentCycleUsed float64    `json:"current_cycle_used"`
	StopOnDutyHours  *float64   `json:"stop_on_duty_hours"`
}

type TripPlanResponse struct {
	Legs        []RouteLeg                    `json:"legs"`
	Start       StartState                    `json:"start"`
	Schedule    ScheduleResponse              `json:"schedule"`
	Coordinates map[string]domain.Coordinates `json:"coordinates,omitempty"`
}
