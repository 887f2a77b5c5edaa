package dto

import "time"

type StatusChangeRequest struct {
	Status   string     `json:"status"`
	At       *time.Time `json:"at"`
	Location string     `json:"location"`
	Notes    string     `json:"notes"`
}

type CloseRequest struct {
	At *time.Time `json:"at"`
}

type AmendRequest struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type IntervalResponse struct {
	ID       string     `json:"id"`
	Status   string     `json:"status"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end"`
	Location string     `json:"location,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	Amends   *string    `json:"amends,omitempty"`
}

type DailySummaryResponse struct {
	OffDutyHours      float64 `json:"off_duty_hours"`
	SleeperBerthHours float64 `json:"sleeper_berth_hours"`
	DrivingHours      float64 `json:"driving_hours"`
	OnDutyHours       float64 `json:"on_duty_hours"`
	LoggedHours       float64 `json:"logged_hours"`
}

type DayLogResponse struct {
	DriverID  string               `json:"driver_id"`
	Day       string               `json:"day"`
	TimeZone  string               `json:"time_zone"`
	Start     time.Time            `json:"start"`
	End       time.Time            `json:"end"`
	Intervals []IntervalResponse   `json:"intervals"`
	Summary   DailySummaryResponse `json:"summary"`
}

type ListDriversResponse struct {
	Drivers []string `json:"drivers"`
}
