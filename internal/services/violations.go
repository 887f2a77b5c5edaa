package services

import (
	"fmt"
	"hos-compliance-service/internal/domain"
	"time"

	"github.com/hako/durafmt"
)

// DetectViolations evaluates every rule independently against totals and
// the log they were computed from. The result depends only on its inputs
// and is ordered by rule: driving, duty window, reset, cycle, break.
// The break rule scans the log as of totals.AsOf; totals without an AsOf
// are scanned up to the end of the log.
func DetectViolations(totals domain.Totals, log domain.LogSnapshot, rules domain.RuleSet) []domain.Violation {
	out := make([]domain.Violation, 0)

	if totals.DrivingHours > rules.MaxDrivingHours {
		out = append(out, domain.Violation{
			Rule:          domain.RuleDrivingLimit,
			Severity:      domain.SeverityCritical,
			MeasuredValue: totals.DrivingHours,
			LimitValue:    rules.MaxDrivingHours,
			Message: fmt.Sprintf("driving %s in this duty period exceeds the %s limit",
				humanHours(totals.DrivingHours), humanHours(rules.MaxDrivingHours)),
		})
	}

	if totals.OnDutyHours > rules.MaxDutyWindowHours {
		out = append(out, domain.Violation{
			Rule:          domain.RuleDutyWindow,
			Severity:      domain.SeverityHigh,
			MeasuredValue: totals.OnDutyHours,
			LimitValue:    rules.MaxDutyWindowHours,
			Message: fmt.Sprintf("on duty %s since %s exceeds the %s window",
				humanHours(totals.OnDutyHours), totals.DutyPeriodStart.Format(time.RFC3339), humanHours(rules.MaxDutyWindowHours)),
		})
	}

	if totals.DutyPeriodOpen && totals.ConsecutiveRestHours < rules.MinOffDutyHours {
		out = append(out, domain.Violation{
			Rule:          domain.RuleOffDutyReset,
			Severity:      domain.SeverityWarning,
			MeasuredValue: totals.ConsecutiveRestHours,
			LimitValue:    rules.MinOffDutyHours,
			Message: fmt.Sprintf("%s consecutive off duty so far; %s needed before the next duty period",
				humanHours(totals.ConsecutiveRestHours), humanHours(rules.MinOffDutyHours)),
		})
	}

	if totals.CycleHoursUsed > rules.MaxCycleHours {
		out = append(out, domain.Violation{
			Rule:          domain.RuleCycleLimit,
			Severity:      domain.SeverityCritical,
			MeasuredValue: totals.CycleHoursUsed,
			LimitValue:    rules.MaxCycleHours,
			Message: fmt.Sprintf("%s on duty in the last %d days exceeds the %s cycle",
				humanHours(totals.CycleHoursUsed), rules.CycleDays, humanHours(rules.MaxCycleHours)),
		})
	}

	asOf := totals.AsOf
	if asOf.IsZero() {
		asOf = logEnd(log)
	}
	if !asOf.IsZero() {
		peak := scanBreakClock(elapsedPieces(log, asOf), totals.DutyPeriodStart, rules).peak
		if peak > rules.BreakAfter() {
			out = append(out, domain.Violation{
				Rule:          domain.RuleRestBreak,
				Severity:      domain.SeverityHigh,
				MeasuredValue: hoursOf(peak),
				LimitValue:    rules.BreakRequiredAfterDrivingHours,
				Message: fmt.Sprintf("drove with %s on duty and no %s break; a break is due after %s",
					durafmt.Parse(peak).LimitFirstN(2).String(),
					durafmt.Parse(rules.BreakMinimum()).LimitFirstN(1).String(),
					humanHours(rules.BreakRequiredAfterDrivingHours)),
			})
		}
	}

	return out
}

// logEnd is the end of the last closed interval, or the start of the open
// one. It is zero for an empty log.
func logEnd(log domain.LogSnapshot) time.Time {
	if len(log.Intervals) == 0 {
		return time.Time{}
	}
	last := log.Intervals[len(log.Intervals)-1]
	if last.End != nil {
		return *last.End
	}
	return last.Start
}

// humanHours renders fractional hours as "11 hours 1 minute".
func humanHours(h float64) string {
	d := domain.Hours(h).Round(time.Minute)
	if d <= 0 {
		return "0 minutes"
	}
	return durafmt.Parse(d).LimitFirstN(2).String()
}
