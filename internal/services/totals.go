package services

import (
	"fmt"
	"hos-compliance-service/internal/domain"
	"time"

	"github.com/SaidinWoT/timespan"
)

// ComputeTotals derives cumulative hours for the driver as of asOf.
// Intervals are clipped at asOf; the open interval counts up to asOf.
func ComputeTotals(log domain.LogSnapshot, asOf time.Time, rules domain.RuleSet) (domain.Totals, error) {
	if asOf.IsZero() {
		return domain.Totals{}, fmt.Errorf("compute totals: as-of is zero: %w", domain.ErrAsOfOutOfRange)
	}
	if err := rules.Validate(); err != nil {
		return domain.Totals{}, fmt.Errorf("compute totals: %w", err)
	}
	if err := log.CheckAsOf(asOf); err != nil {
		return domain.Totals{}, fmt.Errorf("compute totals driver=%q: %w", log.DriverID, err)
	}

	t := domain.Totals{AsOf: asOf, DutyPeriodStart: asOf}

	pieces := elapsedPieces(log, asOf)
	if len(pieces) == 0 {
		return t, nil
	}

	period := locateDutyPeriod(pieces, rules)
	t.DutyPeriodStart = period.start
	t.ResetComplete = period.resetComplete
	t.ConsecutiveRestHours = hoursOf(period.consecutiveRest)

	var driving, onDuty, sleeper, offDuty time.Duration
	for _, p := range pieces {
		if p.start.Before(period.start) {
			continue
		}
		switch p.status {
		case domain.Driving:
			driving += p.dur()
		case domain.OnDuty:
			onDuty += p.dur()
		case domain.SleeperBerth:
			sleeper += p.dur()
		case domain.OffDuty:
			offDuty += p.dur()
		}
	}
	t.DrivingHours = hoursOf(driving)
	t.OnDutyHours = hoursOf(driving + onDuty)
	t.SleeperBerthHours = hoursOf(sleeper)
	t.OffDutyHours = hoursOf(offDuty)
	t.DutyPeriodOpen = !t.ResetComplete && driving+onDuty > 0

	t.CycleHoursUsed = hoursOf(cycleUsed(log, asOf, rules))

	breaks := scanBreakClock(pieces, period.start, rules)
	t.HoursSinceBreak = hoursOf(breaks.now)
	t.DrivenSinceBreak = breaks.drove

	return t, nil
}

// cycleUsed sums on-duty time inside the trailing cycle window ending at asOf.
func cycleUsed(log domain.LogSnapshot, asOf time.Time, rules domain.RuleSet) time.Duration {
	width := rules.CycleWindow()
	window := timespan.New(asOf.Add(-width), width)

	var used time.Duration
	for _, iv := range log.Intervals {
		if !iv.Status.IsOnDuty() {
			continue
		}
		used += iv.Within(window, asOf)
	}
	return used
}
