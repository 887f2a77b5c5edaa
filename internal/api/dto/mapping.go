package dto

import (
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/services"
	"time"
)

func FromInterval(iv domain.StatusInterval) IntervalResponse {
	res := IntervalResponse{
		ID:       iv.ID.String(),
		Status:   iv.Status.String(),
		Start:    iv.Start,
		End:      iv.End,
		Location: iv.Location,
		Notes:    iv.Notes,
	}
	if iv.Amends != nil {
		s := iv.Amends.String()
		res.Amends = &s
	}
	return res
}

func FromDayLog(d services.DayLog) DayLogResponse {
	res := DayLogResponse{
		DriverID:  d.DriverID,
		Day:       d.Day.String(),
		TimeZone:  d.Location.String(),
		Start:     d.Start,
		End:       d.End,
		Intervals: make([]IntervalResponse, 0, len(d.Intervals)),
		Summary: DailySummaryResponse{
			OffDutyHours:      d.Summary.OffDutyHours,
			SleeperBerthHours: d.Summary.SleeperBerthHours,
			DrivingHours:      d.Summary.DrivingHours,
			OnDutyHours:       d.Summary.OnDutyHours,
			LoggedHours:       d.Summary.LoggedHours,
		},
	}
	for _, iv := range d.Intervals {
		res.Intervals = append(res.Intervals, FromInterval(iv))
	}
	return res
}

func FromCompliance(c services.ComplianceReport) ComplianceResponse {
	return ComplianceResponse{
		DriverID:       c.DriverID,
		RuleSetVersion: c.RuleSet.Version,
		Compliant:      c.Compliant,
		Totals:         c.Totals,
		Remaining:      c.Remaining,
		Violations:     c.Violations,
		Warnings:       c.Warnings,
	}
}

func ToRouteLegs(in []RouteLeg) []domain.RouteLeg {
	out := make([]domain.RouteLeg, 0, len(in))
	for _, l := range in {
		out = append(out, domain.RouteLeg(l))
	}
	return out
}

func FromRouteLegs(in []domain.RouteLeg) []RouteLeg {
	out := make([]RouteLeg, 0, len(in))
	for _, l := range in {
		out = append(out, RouteLeg(l))
	}
	return out
}

func FromTotals(t domain.Totals) StartState {
	if t.ResetComplete {
		return StartState{CycleHoursUsed: t.CycleHoursUsed}
	}
	return StartState{
		DrivingHours:     t.DrivingHours,
		OnDutyHours:      t.OnDutyHours,
		HoursSinceBreak:  t.HoursSinceBreak,
		DrivenSinceBreak: t.DrivenSinceBreak,
		CycleHoursUsed:   t.CycleHoursUsed,
	}
}

func FromSchedule(s *domain.Schedule) ScheduleResponse {
	res := ScheduleResponse{
		Status:            string(s.Status),
		RuleSetVersion:    s.RuleSetVersion,
		StartTime:         s.StartTime,
		TotalDrivingHours: s.TotalDrivingHours,
		TotalOnDutyHours:  s.TotalOnDutyHours,
		TotalRestHours:    s.TotalRestHours,
		TotalMiles:        s.TotalMiles,
		Segments:          make([]SegmentResponse, 0, len(s.Segments)),
		Breaks:            make([]BreakResponse, 0, len(s.Breaks)),
	}
	if !s.CompletesAt.IsZero() {
		at := s.CompletesAt
		res.CompletesAt = &at
	}
	for _, seg := range s.Segments {
		res.Segments = append(res.Segments, SegmentResponse{
			Kind:          string(seg.Kind),
			LegIndex:      seg.LegIndex,
			Part:          seg.Part,
			FromFraction:  seg.FromFraction,
			ToFraction:    seg.ToFraction,
			DistanceMiles: seg.DistanceMiles,
			Hours:         seg.Hours,
			StartsAt:      seg.StartsAt,
			EndsAt:        seg.EndsAt,
		})
	}
	for _, b := range s.Breaks {
		res.Breaks = append(res.Breaks, BreakResponse{
			AfterLegIndex: b.AfterLegIndex,
			LegFraction:   b.LegFraction,
			AfterSegment:  b.AfterSegment,
			Type:          string(b.Type),
			DurationHours: b.DurationHours,
			Reason:        b.Reason,
			StartsAt:      b.StartsAt,
			EndsAt:        b.EndsAt,
		})
	}
	if inf := s.Infeasibility; inf != nil {
		res.Infeasibility = &InfeasibilityResponse{
			LegIndex:              inf.LegIndex,
			LegFraction:           inf.LegFraction,
			At:                    inf.At,
			CycleHoursUsed:        inf.CycleHoursUsed,
			RemainingDrivingHours: inf.RemainingDrivingHours,
			Reason:                inf.Reason,
		}
	}
	return res
}

// HOSState is the scheduler's starting state for the request. A missing
// start time means now.
func (r ScheduleRequest) HOSState(rules domain.RuleSet, now time.Time) domain.HOSState {
	start := now
	if r.StartTime != nil {
		start = *r.StartTime
	}
	return domain.HOSState{
		StartTime: start,
		Rules:     rules,
		Totals: domain.Totals{
			AsOf:             start,
			DrivingHours:     r.Start.DrivingHours,
			OnDutyHours:      r.Start.OnDutyHours,
			HoursSinceBreak:  r.Start.HoursSinceBreak,
			DrivenSinceBreak: r.Start.DrivenSinceBreak,
			CycleHoursUsed:   r.Start.CycleHoursUsed,
		},
	}
}
