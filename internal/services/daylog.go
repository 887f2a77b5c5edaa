package services

import (
	"fmt"
	"hos-compliance-service/internal/domain"
	"time"

	"github.com/rickb777/date"
)

// DayLog is one calendar day of a driver's log, as drawn on the paper grid.
// The underlying log is continuous; days exist only for display.
type DayLog struct {
	DriverID  string
	Day       date.Date
	Location  *time.Location
	Start     time.Time
	End       time.Time
	Intervals []domain.StatusInterval
	Summary   DailySummary
}

// DailySummary totals each status over the part of the day that has elapsed.
// For a fully logged past day the four values add up to 24 hours (23 or 25
// across a DST change).
type DailySummary struct {
	OffDutyHours      float64
	SleeperBerthHours float64
	DrivingHours      float64
	OnDutyHours       float64
	LoggedHours       float64
}

// DayView clips the log to the calendar day in loc. Intervals still
// running at asOf stay open.
func DayView(log domain.LogSnapshot, day date.Date, loc *time.Location, asOf time.Time) (DayLog, error) {
	if loc == nil {
		loc = time.UTC
	}
	if asOf.IsZero() {
		return DayLog{}, fmt.Errorf("day view: as-of is zero: %w", domain.ErrAsOfOutOfRange)
	}

	start := day.In(loc)
	end := day.Add(1).In(loc)

	view := DayLog{
		DriverID:  log.DriverID,
		Day:       day,
		Location:  loc,
		Start:     start,
		End:       end,
		Intervals: log.Between(start, end, asOf),
	}

	for _, iv := range view.Intervals {
		h := hoursOf(iv.DurationAt(asOf))
		switch iv.Status {
		case domain.OffDuty:
			view.Summary.OffDutyHours += h
		case domain.SleeperBerth:
			view.Summary.SleeperBerthHours += h
		case domain.Driving:
			view.Summary.DrivingHours += h
		case domain.OnDuty:
			view.Summary.OnDutyHours += h
		}
		view.Summary.LoggedHours += h
	}

	return view, nil
}

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) date.Date {
	if loc == nil {
		loc = time.UTC
	}
	return date.NewAt(t.In(loc))
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(v string) (date.Date, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return date.Date{}, fmt.Errorf("parse day %q: %w", v, err)
	}
	return date.NewAt(t), nil
}
