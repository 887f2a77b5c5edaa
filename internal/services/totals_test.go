package services

import (
	"errors"
	"hos-compliance-service/internal/domain"
	"reflect"
	"testing"
	"time"
)

func TestComputeTotalsOpenIntervalCountsToAsOf(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OffDuty, 0, 10),
		iv(domain.OnDuty, 10, 11),
		openIv(domain.Driving, 11),
	)

	got, err := ComputeTotals(snap, hr(14.5), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !approx(got.DrivingHours, 3.5) {
		t.Fatalf("driving = %v, want 3.5", got.DrivingHours)
	}
	if !approx(got.OnDutyHours, 4.5) {
		t.Fatalf("on duty = %v, want 4.5", got.OnDutyHours)
	}
	if !got.DutyPeriodStart.Equal(hr(10)) {
		t.Fatalf("duty period start = %v, want %v", got.DutyPeriodStart, hr(10))
	}
	if got.OffDutyHours != 0 {
		t.Fatalf("off duty = %v, want 0 (rest before the period)", got.OffDutyHours)
	}
	if !got.DutyPeriodOpen || got.ResetComplete {
		t.Fatalf("period flags = open:%v reset:%v", got.DutyPeriodOpen, got.ResetComplete)
	}
	if !approx(got.HoursSinceBreak, 4.5) {
		t.Fatalf("since break = %v, want 4.5", got.HoursSinceBreak)
	}
}

func TestComputeTotalsResetBoundary(t *testing.T) {
	tests := []struct {
		name        string
		rest        float64
		wantStart   time.Time
		wantOnDuty  float64
		wantDriving float64
	}{
		{"exactly ten hours resets", 10, hr(12), 1, 1},
		{"just under ten hours does not", 9.99, hr(0), 2 + 1.01, 1.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := mustSnapshot(t,
				iv(domain.OnDuty, 0, 2),
				iv(domain.OffDuty, 2, 2+tt.rest),
				iv(domain.Driving, 2+tt.rest, 13),
			)

			got, err := ComputeTotals(snap, hr(13), domain.DefaultRuleSet)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.DutyPeriodStart.Equal(tt.wantStart) {
				t.Fatalf("duty period start = %v, want %v", got.DutyPeriodStart, tt.wantStart)
			}
			if !approx(got.OnDutyHours, tt.wantOnDuty) {
				t.Fatalf("on duty = %v, want %v", got.OnDutyHours, tt.wantOnDuty)
			}
			if !approx(got.DrivingHours, tt.wantDriving) {
				t.Fatalf("driving = %v, want %v", got.DrivingHours, tt.wantDriving)
			}
		})
	}
}

func TestComputeTotalsSleeperAndOffDutyCombine(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.Driving, 0, 8),
		iv(domain.OffDuty, 8, 12),
		iv(domain.SleeperBerth, 12, 18),
		iv(domain.Driving, 18, 19),
	)

	got, err := ComputeTotals(snap, hr(19), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DutyPeriodStart.Equal(hr(18)) || !approx(got.DrivingHours, 1) {
		t.Fatalf("totals = %+v, want reset at 18h", got)
	}
}

func TestComputeTotalsOnDutySplitsRest(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.Driving, 0, 6),
		iv(domain.OffDuty, 6, 11),
		iv(domain.OnDuty, 11, 11.25),
		iv(domain.OffDuty, 11.25, 16.25),
		iv(domain.Driving, 16.25, 17),
	)

	got, err := ComputeTotals(snap, hr(17), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DutyPeriodStart.Equal(hr(0)) {
		t.Fatalf("duty period start = %v; two 5h rests must not qualify", got.DutyPeriodStart)
	}
	if !approx(got.OffDutyHours, 10) {
		t.Fatalf("off duty = %v, want 10", got.OffDutyHours)
	}
}

func TestComputeTotalsTrailingRest(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OnDuty, 0, 4),
		openIv(domain.OffDuty, 4),
	)

	during, err := ComputeTotals(snap, hr(13), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if during.ResetComplete || !during.DutyPeriodOpen || !approx(during.ConsecutiveRestHours, 9) {
		t.Fatalf("at 13h: %+v", during)
	}

	after, err := ComputeTotals(snap, hr(14), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !after.ResetComplete || after.DutyPeriodOpen {
		t.Fatalf("at 14h: reset:%v open:%v", after.ResetComplete, after.DutyPeriodOpen)
	}
	if after.OnDutyHours != 0 || after.DrivingHours != 0 {
		t.Fatalf("at 14h totals not cleared: %+v", after)
	}
	if !approx(after.ConsecutiveRestHours, 10) {
		t.Fatalf("consecutive rest = %v, want 10", after.ConsecutiveRestHours)
	}
}

func TestComputeTotalsCycleWindow(t *testing.T) {
	day := 24.0
	asOf := 9 * day
	snap := mustSnapshot(t,
		iv(domain.OffDuty, 0, day-2),
		iv(domain.OnDuty, day-2, day+3),
		iv(domain.OffDuty, day+3, 8*day),
		iv(domain.Driving, 8*day, 8*day+6),
		openIv(domain.OffDuty, 8*day+6),
	)

	got, err := ComputeTotals(snap, hr(asOf), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3h of the straddling on-duty interval plus 6h driving fall in the window.
	if !approx(got.CycleHoursUsed, 9) {
		t.Fatalf("cycle = %v, want 9", got.CycleHoursUsed)
	}
	if !got.ResetComplete {
		t.Fatalf("expected completed reset")
	}
}

func TestComputeTotalsClipsFutureIntervals(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OffDuty, 0, 10),
		iv(domain.Driving, 10, 15),
		iv(domain.OnDuty, 15, 16),
	)

	got, err := ComputeTotals(snap, hr(12), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(got.DrivingHours, 2) || !approx(got.OnDutyHours, 2) {
		t.Fatalf("totals = %+v, want 2h driving clipped at as-of", got)
	}
}

func TestComputeTotalsErrors(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OffDuty, 0, 10),
		openIv(domain.Driving, 10),
	)

	if _, err := ComputeTotals(snap, hr(-1), domain.DefaultRuleSet); !errors.Is(err, domain.ErrAsOfOutOfRange) {
		t.Fatalf("before log: err = %v", err)
	}
	if _, err := ComputeTotals(snap, hr(9), domain.DefaultRuleSet); !errors.Is(err, domain.ErrAsOfOutOfRange) {
		t.Fatalf("before open interval: err = %v", err)
	}

	bad := domain.DefaultRuleSet
	bad.CycleDays = 0
	if _, err := ComputeTotals(snap, hr(12), bad); err == nil {
		t.Fatalf("expected error for invalid rule set")
	}

	empty := mustSnapshot(t)
	got, err := ComputeTotals(empty, hr(5), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("empty log: %v", err)
	}
	if got.DrivingHours != 0 || got.CycleHoursUsed != 0 || got.DutyPeriodOpen {
		t.Fatalf("empty log totals = %+v", got)
	}
}

func TestComputeTotalsIdempotentAndMonotonic(t *testing.T) {
	snap := mustSnapshot(t,
		iv(domain.OffDuty, 0, 10),
		iv(domain.OnDuty, 10, 11),
		iv(domain.Driving, 11, 15),
		iv(domain.OffDuty, 15, 15.5),
		openIv(domain.Driving, 15.5),
	)

	first, err := ComputeTotals(snap, hr(18), domain.DefaultRuleSet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := ComputeTotals(snap, hr(18), domain.DefaultRuleSet)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("totals differ between identical calls:\n%+v\n%+v", first, second)
	}

	var prev domain.Totals
	for step := 0; step <= 32; step++ {
		asOf := hr(15.5 + float64(step)*0.25)
		got, err := ComputeTotals(snap, asOf, domain.DefaultRuleSet)
		if err != nil {
			t.Fatalf("as of %v: %v", asOf, err)
		}
		if step > 0 {
			if got.DrivingHours < prev.DrivingHours || got.OnDutyHours < prev.OnDutyHours || got.CycleHoursUsed < prev.CycleHoursUsed {
				t.Fatalf("totals decreased at %v: %+v after %+v", asOf, got, prev)
			}
		}
		prev = got
	}
}
