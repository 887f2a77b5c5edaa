package services

import (
	"hos-compliance-service/internal/domain"
	"math"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func hr(h float64) time.Time { return base.Add(domain.Hours(h)) }

func iv(status domain.DutyStatus, from, to float64) domain.StatusInterval {
	end := hr(to)
	return domain.StatusInterval{Status: status, Start: hr(from), End: &end}
}

func openIv(status domain.DutyStatus, from float64) domain.StatusInterval {
	return domain.StatusInterval{Status: status, Start: hr(from)}
}

func mustSnapshot(t *testing.T, intervals ...domain.StatusInterval) domain.LogSnapshot {
	t.Helper()
	snap, err := domain.SnapshotOf("drv-1", intervals)
	if err != nil {
		t.Fatalf("build log: %v", err)
	}
	return snap
}

func findRule(vs []domain.Violation, rule domain.RuleKind) (domain.Violation, bool) {
	for _, v := range vs {
		if v.Rule == rule {
			return v, true
		}
	}
	return domain.Violation{}, false
}

func approx(got, want float64) bool { return math.Abs(got-want) < 1e-6 }
