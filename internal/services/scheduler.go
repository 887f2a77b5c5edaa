package services

import (
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"math"
	"time"

	"github.com/hako/durafmt"
)

var ErrInvalidRoute = errors.New("invalid route")

// hosClock is the scheduler's running view of the driver's limits.
// Duty time is the sum of on-duty time, the same accounting ComputeTotals uses.
type hosClock struct {
	rules      domain.RuleSet
	driving    time.Duration
	duty       time.Duration
	sinceBreak time.Duration
	cycle      time.Duration
	drove      bool
}

func newHOSClock(start domain.HOSState) hosClock {
	c := hosClock{
		rules: start.Rules,
		cycle: domain.Hours(start.Totals.CycleHoursUsed),
	}
	if !start.Totals.ResetComplete {
		c.driving = domain.Hours(start.Totals.DrivingHours)
		c.duty = domain.Hours(start.Totals.OnDutyHours)
		c.sinceBreak = domain.Hours(start.Totals.HoursSinceBreak)
		c.drove = start.Totals.DrivenSinceBreak
	}
	return c
}

func (c *hosClock) resetDue() bool {
	return c.driving >= c.rules.MaxDriving() || c.duty >= c.rules.MaxDutyWindow()
}

func (c *hosClock) breakDue() bool { return c.sinceBreak >= c.rules.BreakAfter() }

func (c *hosClock) cycleExhausted() bool { return c.cycle >= c.rules.MaxCycle() }

// drivable is the longest driving chunk allowed before any limit is reached.
func (c *hosClock) drivable() time.Duration {
	return min(
		c.rules.MaxDriving()-c.driving,
		c.rules.MaxDutyWindow()-c.duty,
		c.rules.BreakAfter()-c.sinceBreak,
		c.rules.MaxCycle()-c.cycle,
	)
}

// workable is the longest on-duty (not driving) chunk allowed.
func (c *hosClock) workable() time.Duration {
	return min(c.rules.MaxDutyWindow()-c.duty, c.rules.MaxCycle()-c.cycle)
}

func (c *hosClock) drive(d time.Duration) {
	c.driving += d
	c.duty += d
	c.sinceBreak += d
	c.cycle += d
	c.drove = true
}

// work accrues on-duty stop time. Enough of it after driving counts as the break.
func (c *hosClock) work(d time.Duration) {
	c.duty += d
	c.cycle += d
	if c.drove && d >= c.rules.BreakMinimum() {
		c.sinceBreak = 0
		c.drove = false
		return
	}
	c.sinceBreak += d
}

func (c *hosClock) takeBreak() {
	c.sinceBreak = 0
	c.drove = false
}

func (c *hosClock) takeReset() {
	c.driving = 0
	c.duty = 0
	c.takeBreak()
}

type scheduleBuilder struct {
	s     *domain.Schedule
	clock hosClock
	now   time.Time
}

// ScheduleBreaks projects the route forward from start and inserts the
// breaks and daily resets needed to stay within the rules. Legs are split
// where a limit is reached. Running out of cycle hours is reported through
// Schedule.Status; errors are returned only for invalid input.
func ScheduleBreaks(route []domain.RouteLeg, start domain.HOSState) (*domain.Schedule, error) {
	if err := validateScheduleInput(route, start); err != nil {
		return nil, fmt.Errorf("schedule breaks: %w", err)
	}

	b := &scheduleBuilder{
		s: &domain.Schedule{
			Status:         domain.ScheduleComplete,
			RuleSetVersion: start.Rules.Version,
			StartTime:      start.StartTime,
			Segments:       make([]domain.ScheduledSegment, 0, len(route)),
			Breaks:         make([]domain.BreakEvent, 0),
		},
		clock: newHOSClock(start),
		now:   start.StartTime,
	}

	for i := range route {
		if !b.driveLeg(route, i) || !b.workStop(route, i) {
			return b.s, nil
		}
	}

	b.s.CompletesAt = b.now
	return b.s, nil
}

// driveLeg simulates the driving of leg i. It returns false when the cycle
// runs out before the leg is driven.
func (b *scheduleBuilder) driveLeg(route []domain.RouteLeg, i int) bool {
	leg := route[i]
	total := domain.Hours(leg.EstimatedDrivingHours)
	remaining := total
	part := 0

	for remaining > 0 {
		done := total - remaining
		if !b.ensureCanProceed(route, i, fraction(done, total), done == 0, remaining) {
			return false
		}

		chunk := min(remaining, b.clock.drivable())
		seg := domain.ScheduledSegment{
			Kind:          domain.SegmentDriving,
			LegIndex:      i,
			Part:          part,
			FromFraction:  fraction(done, total),
			ToFraction:    fraction(done+chunk, total),
			DistanceMiles: leg.DistanceMiles * float64(chunk) / float64(total),
			Hours:         hoursOf(chunk),
			StartsAt:      b.now,
			EndsAt:        b.now.Add(chunk),
		}
		b.s.Segments = append(b.s.Segments, seg)
		b.s.TotalDrivingHours += seg.Hours
		b.s.TotalMiles += seg.DistanceMiles

		b.clock.drive(chunk)
		b.now = seg.EndsAt
		remaining -= chunk
		part++
	}
	return true
}

// workStop simulates the on-duty stop at the end of leg i.
func (b *scheduleBuilder) workStop(route []domain.RouteLeg, i int) bool {
	remaining := domain.Hours(route[i].StopOnDutyHours)
	part := 0

	for remaining > 0 {
		if !b.ensureCanProceed(route, i, 1, false, 0) {
			return false
		}

		chunk := min(remaining, b.clock.workable())
		seg := domain.ScheduledSegment{
			Kind:         domain.SegmentStop,
			LegIndex:     i,
			Part:         part,
			FromFraction: 1,
			ToFraction:   1,
			Hours:        hoursOf(chunk),
			StartsAt:     b.now,
			EndsAt:       b.now.Add(chunk),
		}
		b.s.Segments = append(b.s.Segments, seg)
		b.s.TotalOnDutyHours += seg.Hours

		b.clock.work(chunk)
		b.now = seg.EndsAt
		remaining -= chunk
		part++
	}
	return true
}

// ensureCanProceed inserts the rests due before the next chunk of leg i.
// Driving needs room under every limit; stop work only under the duty
// window and the cycle. It returns false, marking the schedule
// infeasible, when the cycle is spent.
func (b *scheduleBuilder) ensureCanProceed(route []domain.RouteLeg, i int, legFraction float64, atLegStart bool, legRemaining time.Duration) bool {
	driving := legRemaining > 0
	rules := b.clock.rules

	for {
		if b.clock.cycleExhausted() {
			b.markInfeasible(route, i, legFraction, legRemaining)
			return false
		}

		switch {
		case driving && b.clock.resetDue(), !driving && b.clock.duty >= rules.MaxDutyWindow():
			b.insertBreak(i, legFraction, atLegStart, domain.DailyReset, rules.MinOffDuty(), b.resetReason())
			b.clock.takeReset()
		case driving && b.clock.breakDue():
			b.insertBreak(i, legFraction, atLegStart, domain.ShortBreak, rules.BreakMinimum(),
				fmt.Sprintf("%s on duty since the last break", durafmt.Parse(b.clock.sinceBreak).LimitFirstN(2).String()))
			b.clock.takeBreak()
		default:
			return true
		}
	}
}

func (b *scheduleBuilder) resetReason() string {
	r := b.clock.rules
	if b.clock.driving >= r.MaxDriving() {
		return fmt.Sprintf("%s driving limit reached", durafmt.Parse(r.MaxDriving()).LimitFirstN(2).String())
	}
	return fmt.Sprintf("%s duty window reached", durafmt.Parse(r.MaxDutyWindow()).LimitFirstN(2).String())
}

func (b *scheduleBuilder) insertBreak(i int, legFraction float64, atLegStart bool, kind domain.BreakType, d time.Duration, reason string) {
	after, frac := i, legFraction
	if atLegStart {
		after, frac = i-1, 1
		if after < 0 {
			frac = 0
		}
	}

	ev := domain.BreakEvent{
		AfterLegIndex: after,
		LegFraction:   frac,
		AfterSegment:  len(b.s.Segments) - 1,
		Type:          kind,
		DurationHours: hoursOf(d),
		Reason:        reason,
		StartsAt:      b.now,
		EndsAt:        b.now.Add(d),
	}
	b.s.Breaks = append(b.s.Breaks, ev)
	b.s.TotalRestHours += ev.DurationHours
	b.now = ev.EndsAt
}

func (b *scheduleBuilder) markInfeasible(route []domain.RouteLeg, i int, legFraction float64, legRemaining time.Duration) {
	left := legRemaining
	for _, leg := range route[i+1:] {
		left += domain.Hours(leg.EstimatedDrivingHours)
	}

	b.s.Status = domain.ScheduleCycleExhausted
	b.s.CompletesAt = time.Time{}
	b.s.Infeasibility = &domain.Infeasibility{
		LegIndex:              i,
		LegFraction:           legFraction,
		At:                    b.now,
		CycleHoursUsed:        hoursOf(b.clock.cycle),
		RemainingDrivingHours: hoursOf(left),
		Reason: fmt.Sprintf("%s cycle used; %s of driving left",
			humanHours(hoursOf(b.clock.cycle)), humanHours(hoursOf(left))),
	}
}

func fraction(done, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return float64(done) / float64(total)
}

func validateScheduleInput(route []domain.RouteLeg, start domain.HOSState) error {
	if start.StartTime.IsZero() {
		return fmt.Errorf("start time is zero: %w", ErrInvalidRoute)
	}
	if err := start.Rules.Validate(); err != nil {
		return err
	}

	t := start.Totals
	for _, v := range []float64{t.DrivingHours, t.OnDutyHours, t.HoursSinceBreak, t.CycleHoursUsed} {
		if !validHours(v) {
			return fmt.Errorf("starting totals %+v: %w", t, ErrInvalidRoute)
		}
	}

	for i, leg := range route {
		for _, v := range []float64{leg.DistanceMiles, leg.EstimatedDrivingHours, leg.StopOnDutyHours} {
			if !validHours(v) {
				return fmt.Errorf("leg #%d %s -> %s: %w", i+1, leg.From, leg.To, ErrInvalidRoute)
			}
		}
	}
	return nil
}

func validHours(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
