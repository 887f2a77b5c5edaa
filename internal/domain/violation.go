package domain

// RuleKind names the regulation a violation refers to.
type RuleKind string

const (
	RuleDrivingLimit RuleKind = "driving_limit"
	RuleDutyWindow   RuleKind = "duty_window"
	RuleOffDutyReset RuleKind = "off_duty_reset"
	RuleCycleLimit   RuleKind = "cycle_limit"
	RuleRestBreak    RuleKind = "rest_break"
)

// Severity is advisory metadata for display. It never decides whether a
// violation is reported.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityWarning  Severity = "warning"
)

// Violation is derived output, recomputed from the log on every query.
type Violation struct {
	Rule          RuleKind `json:"rule"`
	Severity      Severity `json:"severity"`
	MeasuredValue float64  `json:"measured_value"`
	LimitValue    float64  `json:"limit_value"`
	Message       string   `json:"message"`
}
