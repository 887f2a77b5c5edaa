package services

import (
	"fmt"
	"hos-compliance-service/internal/domain"
	"math"
	"time"
)

// ComplianceReport is the full HOS picture for one driver at one instant.
// Warnings are predictive and do not make a driver non-compliant.
type ComplianceReport struct {
	DriverID   string
	RuleSet    domain.RuleSet
	Totals     domain.Totals
	Violations []domain.Violation
	Warnings   []domain.Violation
	Remaining  domain.Remaining
	Compliant  bool
}

func EvaluateCompliance(log domain.LogSnapshot, asOf time.Time, rules domain.RuleSet) (ComplianceReport, error) {
	totals, err := ComputeTotals(log, asOf, rules)
	if err != nil {
		return ComplianceReport{}, fmt.Errorf("evaluate compliance: %w", err)
	}

	report := ComplianceReport{
		DriverID:   log.DriverID,
		RuleSet:    rules,
		Totals:     totals,
		Violations: make([]domain.Violation, 0),
		Warnings:   make([]domain.Violation, 0),
		Remaining:  RemainingHours(totals, rules),
	}
	for _, v := range DetectViolations(totals, log, rules) {
		if v.Severity == domain.SeverityWarning {
			report.Warnings = append(report.Warnings, v)
			continue
		}
		report.Violations = append(report.Violations, v)
	}
	report.Compliant = len(report.Violations) == 0

	return report, nil
}

// RemainingHours is the headroom under each limit, floored at zero.
func RemainingHours(t domain.Totals, rules domain.RuleSet) domain.Remaining {
	return domain.Remaining{
		DrivingHours:    headroom(rules.MaxDrivingHours, t.DrivingHours),
		DutyWindowHours: headroom(rules.MaxDutyWindowHours, t.OnDutyHours),
		CycleHours:      headroom(rules.MaxCycleHours, t.CycleHoursUsed),
		UntilBreakHours: headroom(rules.BreakRequiredAfterDrivingHours, t.HoursSinceBreak),
	}
}

func headroom(limit, used float64) float64 {
	return math.Max(0, limit-used)
}
