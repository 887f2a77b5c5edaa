package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// RuleSet is the versioned table of regulatory limits shared by the
// violation detector and the break scheduler. Values are immutable once
// published under a Version; a regulatory change gets a new Version.
type RuleSet struct {
	Version                        string  `json:"version"`
	Name                           string  `json:"name"`
	EffectiveFrom                  string  `json:"effective_from"`
	MaxDrivingHours                float64 `json:"max_driving_hours"`
	MaxDutyWindowHours             float64 `json:"max_duty_window_hours"`
	MinOffDutyHours                float64 `json:"min_off_duty_hours"`
	MaxCycleHours                  float64 `json:"max_cycle_hours"`
	CycleDays                      int     `json:"cycle_days"`
	BreakRequiredAfterDrivingHours float64 `json:"break_required_after_driving_hours"`
	BreakMinimumMinutes            float64 `json:"break_minimum_minutes"`
}

// FMCSA property-carrying limits (49 CFR 395.3).
var (
	USProperty70Hour8Day = RuleSet{
		Version:                        "us-property-70-8",
		Name:                           "FMCSA property-carrying, 70 hours / 8 days",
		EffectiveFrom:                  "2020-09-29",
		MaxDrivingHours:                11,
		MaxDutyWindowHours:             14,
		MinOffDutyHours:                10,
		MaxCycleHours:                  70,
		CycleDays:                      8,
		BreakRequiredAfterDrivingHours: 8,
		BreakMinimumMinutes:            30,
	}

	USProperty60Hour7Day = RuleSet{
		Version:                        "us-property-60-7",
		Name:                           "FMCSA property-carrying, 60 hours / 7 days",
		EffectiveFrom:                  "2020-09-29",
		MaxDrivingHours:                11,
		MaxDutyWindowHours:             14,
		MinOffDutyHours:                10,
		MaxCycleHours:                  60,
		CycleDays:                      7,
		BreakRequiredAfterDrivingHours: 8,
		BreakMinimumMinutes:            30,
	}
)

// DefaultRuleSet is the rule table used when none is configured.
var DefaultRuleSet = USProperty70Hour8Day

var ruleSets = []RuleSet{USProperty70Hour8Day, USProperty60Hour7Day}

var ErrUnknownRuleSet = errors.New("unknown rule set version")

// RuleSets returns every published rule table, ordered by version.
func RuleSets() []RuleSet {
	out := slices.Clone(ruleSets)
	slices.SortFunc(out, func(a, b RuleSet) int {
		if a.Version < b.Version {
			return -1
		}
		if a.Version > b.Version {
			return 1
		}
		return 0
	})
	return out
}

// LookupRuleSet returns the rule table published under version.
// An empty version selects DefaultRuleSet.
func LookupRuleSet(version string) (RuleSet, error) {
	if version == "" {
		return DefaultRuleSet, nil
	}
	for _, rs := range ruleSets {
		if rs.Version == version {
			return rs, nil
		}
	}
	return RuleSet{}, fmt.Errorf("lookup rule set %q: %w", version, ErrUnknownRuleSet)
}

func (r RuleSet) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"max_driving_hours", r.MaxDrivingHours},
		{"max_duty_window_hours", r.MaxDutyWindowHours},
		{"min_off_duty_hours", r.MinOffDutyHours},
		{"max_cycle_hours", r.MaxCycleHours},
		{"break_required_after_driving_hours", r.BreakRequiredAfterDrivingHours},
		{"break_minimum_minutes", r.BreakMinimumMinutes},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("rule set %q: %s must be a positive number, got %v", r.Version, p.name, p.v)
		}
	}
	if r.CycleDays <= 0 {
		return fmt.Errorf("rule set %q: cycle_days must be positive, got %d", r.Version, r.CycleDays)
	}
	if r.MaxDrivingHours > r.MaxDutyWindowHours {
		return fmt.Errorf("rule set %q: driving limit %.2fh exceeds duty window %.2fh", r.Version, r.MaxDrivingHours, r.MaxDutyWindowHours)
	}
	return nil
}

func (r RuleSet) MaxDriving() time.Duration    { return Hours(r.MaxDrivingHours) }
func (r RuleSet) MaxDutyWindow() time.Duration { return Hours(r.MaxDutyWindowHours) }
func (r RuleSet) MinOffDuty() time.Duration    { return Hours(r.MinOffDutyHours) }
func (r RuleSet) MaxCycle() time.Duration      { return Hours(r.MaxCycleHours) }
func (r RuleSet) BreakAfter() time.Duration    { return Hours(r.BreakRequiredAfterDrivingHours) }

func (r RuleSet) BreakMinimum() time.Duration {
	return time.Duration(math.Round(r.BreakMinimumMinutes * float64(time.Minute)))
}

// CycleWindow is the length of the trailing window for the cycle limit.
func (r RuleSet) CycleWindow() time.Duration {
	return time.Duration(r.CycleDays) * 24 * time.Hour
}

// Hours converts a real number of hours to a Duration, rounded to the nanosecond.
func Hours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}
