package services

import (
	"context"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"log"
	"time"

	"github.com/rickb777/date"
)

// ErrUnknownDriver is returned by read operations for a driver with no
// recorded events.
var ErrUnknownDriver = errors.New("driver has no duty log")

const maxAppendAttempts = 3

// LogService records duty events for drivers and answers compliance
// queries against the persisted stream. Every write goes through
// load -> Replay -> Apply -> AppendEvent, so the repository only ever
// receives events the domain log has accepted.
type LogService struct {
	Repo      ports.DutyLogRepository
	Publisher ports.EventPublisher
	Rules     domain.RuleSet
	Now       func() time.Time
}

func NewLogService(repo ports.DutyLogRepository, publisher ports.EventPublisher, rules domain.RuleSet) *LogService {
	return &LogService{Repo: repo, Publisher: publisher, Rules: rules, Now: time.Now}
}

func (s *LogService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *LogService) load(ctx context.Context, driverID string) (*domain.DutyStatusLog, error) {
	events, err := s.Repo.ListEvents(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	l, err := domain.Replay(driverID, events)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// record builds an event against the freshly loaded log and persists it.
// A lost race with another writer reloads and tries again.
func (s *LogService) record(
	ctx context.Context,
	driverID string,
	build func(l *domain.DutyStatusLog) domain.LogEvent,
) (_ domain.StatusInterval, err error) {
	defer obs.Time(ctx, "logs.record")(&err)

	for attempt := 1; ; attempt++ {
		l, err := s.load(ctx, driverID)
		if err != nil {
			return domain.StatusInterval{}, err
		}

		ev := build(l)
		ev.Seq = l.Seq() + 1
		iv, err := l.Apply(ev)
		if err != nil {
			return domain.StatusInterval{}, err
		}

		err = s.Repo.AppendEvent(ctx, ev)
		if errors.Is(err, domain.ErrConcurrentAppend) && attempt < maxAppendAttempts {
			log.Printf("op=logs.record driver=%s seq=%d attempt=%d lost append race, retrying", driverID, ev.Seq, attempt)
			continue
		}
		if err != nil {
			return domain.StatusInterval{}, fmt.Errorf("append event: %w", err)
		}

		s.publish(ctx, ev)
		return iv, nil
	}
}

// publish is fire-and-forget; the event is already durable.
func (s *LogService) publish(ctx context.Context, ev domain.LogEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		log.Printf("op=logs.publish driver=%s seq=%d err=%v", ev.DriverID, ev.Seq, err)
	}
}

// RecordStatusChange closes the driver's open interval at ch.At and opens
// one with the new status. A zero ch.At means now.
func (s *LogService) RecordStatusChange(ctx context.Context, driverID string, ch domain.StatusChange) (domain.StatusInterval, error) {
	if ch.At.IsZero() {
		ch.At = s.now()
	}
	iv, err := s.record(ctx, driverID, func(l *domain.DutyStatusLog) domain.LogEvent {
		return domain.NewStatusChangeEvent(l.DriverID(), ch)
	})
	if err != nil {
		return domain.StatusInterval{}, fmt.Errorf("record status change: %w", err)
	}
	return iv, nil
}

func (s *LogService) Close(ctx context.Context, driverID string, at time.Time) (domain.StatusInterval, error) {
	if at.IsZero() {
		at = s.now()
	}
	iv, err := s.record(ctx, driverID, func(l *domain.DutyStatusLog) domain.LogEvent {
		return domain.NewCloseEvent(l.DriverID(), at)
	})
	if err != nil {
		return domain.StatusInterval{}, fmt.Errorf("close interval: %w", err)
	}
	return iv, nil
}

func (s *LogService) Amend(ctx context.Context, driverID string, a domain.Amendment) (domain.StatusInterval, error) {
	iv, err := s.record(ctx, driverID, func(l *domain.DutyStatusLog) domain.LogEvent {
		return domain.NewAmendEvent(l.DriverID(), a)
	})
	if err != nil {
		return domain.StatusInterval{}, fmt.Errorf("amend interval: %w", err)
	}
	return iv, nil
}

// Snapshot returns the driver's effective timeline.
func (s *LogService) Snapshot(ctx context.Context, driverID string) (domain.LogSnapshot, error) {
	l, err := s.load(ctx, driverID)
	if err != nil {
		return domain.LogSnapshot{}, fmt.Errorf("snapshot %q: %w", driverID, err)
	}
	if l.Seq() == 0 {
		return domain.LogSnapshot{}, fmt.Errorf("snapshot %q: %w", driverID, ErrUnknownDriver)
	}
	return l.Snapshot(), nil
}

// Compliance evaluates the driver's log at asOf (now when zero).
func (s *LogService) Compliance(ctx context.Context, driverID string, asOf time.Time) (ComplianceReport, error) {
	snap, err := s.Snapshot(ctx, driverID)
	if err != nil {
		return ComplianceReport{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	return EvaluateCompliance(snap, asOf, s.Rules)
}

func (s *LogService) DayView(ctx context.Context, driverID string, day date.Date, loc *time.Location) (DayLog, error) {
	snap, err := s.Snapshot(ctx, driverID)
	if err != nil {
		return DayLog{}, err
	}
	return DayView(snap, day, loc, s.now())
}

// HOSState is the driver's starting position for a trip departing at
// start. A driver with no log starts fresh.
func (s *LogService) HOSState(ctx context.Context, driverID string, start time.Time) (domain.HOSState, error) {
	state := domain.HOSState{StartTime: start, Rules: s.Rules, Totals: domain.Totals{AsOf: start}}

	snap, err := s.Snapshot(ctx, driverID)
	if errors.Is(err, ErrUnknownDriver) {
		return state, nil
	}
	if err != nil {
		return domain.HOSState{}, err
	}

	totals, err := ComputeTotals(snap, start, s.Rules)
	if err != nil {
		return domain.HOSState{}, fmt.Errorf("hos state %q: %w", driverID, err)
	}
	state.Totals = totals
	return state, nil
}

// Drivers lists every driver with a recorded log.
func (s *LogService) Drivers(ctx context.Context) ([]string, error) {
	ids, err := s.Repo.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return ids, nil
}
