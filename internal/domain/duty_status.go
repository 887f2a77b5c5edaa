package domain

import (
	"fmt"
	"strings"
)

// DutyStatus is one of the four FMCSA duty statuses.
// Exactly one status is active for a driver at any instant.
type DutyStatus string

const (
	OffDuty      DutyStatus = "off_duty"
	SleeperBerth DutyStatus = "sleeper_berth"
	Driving      DutyStatus = "driving"
	OnDuty       DutyStatus = "on_duty"
)

// AllStatuses lists statuses in display order (matches the paper log grid rows).
var AllStatuses = []DutyStatus{OffDuty, SleeperBerth, Driving, OnDuty}

func (s DutyStatus) Valid() bool {
	switch s {
	case OffDuty, SleeperBerth, Driving, OnDuty:
		return true
	}
	return false
}

// IsRest reports whether time in this status counts toward an off-duty reset.
func (s DutyStatus) IsRest() bool { return s == OffDuty || s == SleeperBerth }

// IsOnDuty reports whether time in this status counts toward the duty window and cycle.
func (s DutyStatus) IsOnDuty() bool { return s == Driving || s == OnDuty }

func (s DutyStatus) String() string { return string(s) }

// ParseDutyStatus accepts the canonical names plus a few common spellings
// ("off-duty", "Sleeper Berth", "D", ...).
func ParseDutyStatus(v string) (DutyStatus, error) {
	norm := strings.ToLower(strings.TrimSpace(v))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	switch norm {
	case "off_duty", "off", "of":
		return OffDuty, nil
	case "sleeper_berth", "sleeper", "sb":
		return SleeperBerth, nil
	case "driving", "d":
		return Driving, nil
	case "on_duty", "on", "on_duty_not_driving":
		return OnDuty, nil
	}

	return "", fmt.Errorf("parse duty status %q: %w", v, ErrInvalidStatus)
}
