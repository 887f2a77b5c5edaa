package services

import (
	"hos-compliance-service/internal/domain"
	"testing"
	"time"
)

func TestDayViewSplitsAtMidnight(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OffDuty, -4, 8),
		iv(domain.Driving, 8, 18),
		iv(domain.SleeperBerth, 18, 30),
		openIv(domain.OnDuty, 30),
	)

	day, err := ParseDay("2026-03-02")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}

	view, err := DayView(snap, day, time.UTC, hr(31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Intervals) != 3 {
		t.Fatalf("intervals = %d, want 3", len(view.Intervals))
	}
	if !view.Intervals[0].Start.Equal(hr(0)) || !view.Intervals[2].End.Equal(hr(24)) {
		t.Fatalf("day not clipped to midnight: %+v", view.Intervals)
	}
	if !approx(view.Summary.LoggedHours, 24) {
		t.Fatalf("logged = %v, want 24", view.Summary.LoggedHours)
	}
	if !approx(view.Summary.OffDutyHours, 8) || !approx(view.Summary.DrivingHours, 10) || !approx(view.Summary.SleeperBerthHours, 6) {
		t.Fatalf("summary = %+v", view.Summary)
	}

	next, _ := DayView(snap, day.Add(1), time.UTC, hr(31))
	if !approx(next.Summary.SleeperBerthHours, 6) || !approx(next.Summary.OnDutyHours, 1) {
		t.Fatalf("next day summary = %+v", next.Summary)
	}
	if last := next.Intervals[len(next.Intervals)-1]; !last.IsOpen() {
		t.Fatalf("interval running at as-of should stay open")
	}
}

func TestDayOfUsesLocation(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	// 03:00 UTC on March 2 is still March 1 in Chicago.
	got := DayOf(hr(3), chicago)
	if got.String() != "2026-03-01" {
		t.Fatalf("day = %s, want 2026-03-01", got)
	}
}
