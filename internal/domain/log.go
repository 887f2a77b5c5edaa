package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DutyStatusLog is a single driver's chronological duty-status record.
//
// The log is append-only: records are appended or closed, never removed.
// Corrections append a new record and re-point the effective timeline at it,
// leaving the corrected record in the audit trail. Every mutation is
// validated first, so the effective timeline is always contiguous,
// non-overlapping, and has at most one open interval (the last).
//
// A log has a single writer (the driver's status-change stream). Readers
// take a Snapshot and compute on that.
type DutyStatusLog struct {
	mu       sync.RWMutex
	driverID string
	seq      int64
	records  []StatusInterval
	timeline []int
}

func NewDutyStatusLog(driverID string) (*DutyStatusLog, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, ErrEmptyDriver
	}
	return &DutyStatusLog{driverID: driverID}, nil
}

// Replay rebuilds a log from its persisted event stream.
func Replay(driverID string, events []LogEvent) (*DutyStatusLog, error) {
	l, err := NewDutyStatusLog(driverID)
	if err != nil {
		return nil, fmt.Errorf("replay duty log: %w", err)
	}

	for i, ev := range events {
		if _, err := l.Apply(ev); err != nil {
			return nil, fmt.Errorf("replay duty log driver=%q event #%d: %w", driverID, i+1, err)
		}
	}

	return l, nil
}

func (l *DutyStatusLog) DriverID() string { return l.driverID }

// Seq is the number of events applied so far.
func (l *DutyStatusLog) Seq() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// ChangeStatus closes the open interval at ch.At and opens a new one.
func (l *DutyStatusLog) ChangeStatus(ch StatusChange) (StatusInterval, error) {
	return l.Apply(NewStatusChangeEvent(l.driverID, ch))
}

// Close ends the open interval at the given instant.
func (l *DutyStatusLog) Close(at time.Time) (StatusInterval, error) {
	return l.Apply(NewCloseEvent(l.driverID, at))
}

// Append imports an interval with explicit bounds after the last one.
func (l *DutyStatusLog) Append(iv StatusInterval) (StatusInterval, error) {
	return l.Apply(NewAppendEvent(l.driverID, iv))
}

// Amend records a correction of the interval with the given ID.
func (l *DutyStatusLog) Amend(a Amendment) (StatusInterval, error) {
	return l.Apply(NewAmendEvent(l.driverID, a))
}

// Apply validates ev against the current log and applies it.
// It returns the interval the event created or changed.
func (l *DutyStatusLog) Apply(ev LogEvent) (StatusInterval, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ev.DriverID != "" && ev.DriverID != l.driverID {
		return StatusInterval{}, fmt.Errorf("apply %s: event for driver %q on log of %q: %w", ev.Kind, ev.DriverID, l.driverID, ErrDriverMismatch)
	}
	if ev.Seq != 0 && ev.Seq != l.seq+1 {
		return StatusInterval{}, fmt.Errorf("apply %s: seq=%d, want %d: %w", ev.Kind, ev.Seq, l.seq+1, ErrEventOutOfOrder)
	}

	var (
		iv  StatusInterval
		err error
	)
	switch ev.Kind {
	case EventStatusChange:
		iv, err = l.applyStatusChange(ev)
	case EventClose:
		iv, err = l.applyClose(ev)
	case EventAppend:
		iv, err = l.applyAppend(ev)
	case EventAmend:
		iv, err = l.applyAmend(ev)
	default:
		err = fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if err != nil {
		return StatusInterval{}, fmt.Errorf("apply %s: %w", ev.Kind, err)
	}

	l.seq++
	return iv.clone(), nil
}

// last returns the effective last interval, or nil for an empty log.
func (l *DutyStatusLog) last() *StatusInterval {
	if len(l.timeline) == 0 {
		return nil
	}
	return &l.records[l.timeline[len(l.timeline)-1]]
}

func (l *DutyStatusLog) push(iv StatusInterval) {
	l.records = append(l.records, iv)
	l.timeline = append(l.timeline, len(l.records)-1)
}

func (l *DutyStatusLog) applyStatusChange(ev LogEvent) (StatusInterval, error) {
	if !ev.Status.Valid() {
		return StatusInterval{}, fmt.Errorf("status %q: %w", ev.Status, ErrInvalidStatus)
	}
	if ev.At.IsZero() {
		return StatusInterval{}, fmt.Errorf("status change time is zero: %w", ErrInvalidRange)
	}

	if prev := l.last(); prev != nil {
		if prev.IsOpen() {
			if prev.Status == ev.Status {
				return StatusInterval{}, fmt.Errorf("%s since %s: %w", prev.Status, prev.Start.Format(time.RFC3339), ErrUnchangedStatus)
			}
			if !ev.At.After(prev.Start) {
				return StatusInterval{}, fmt.Errorf("change at %s closes interval started %s: %w",
					ev.At.Format(time.RFC3339), prev.Start.Format(time.RFC3339), ErrInvalidRange)
			}
			at := ev.At
			prev.End = &at
		} else if err := checkFollows(*prev.End, ev.At); err != nil {
			return StatusInterval{}, err
		}
	}

	l.push(StatusInterval{
		ID:         ev.IntervalID,
		Status:     ev.Status,
		Start:      ev.At,
		Location:   ev.Location,
		Notes:      ev.Notes,
		RecordedAt: ev.RecordedAt,
	})
	return *l.last(), nil
}

func (l *DutyStatusLog) applyClose(ev LogEvent) (StatusInterval, error) {
	prev := l.last()
	if prev == nil || !prev.IsOpen() {
		return StatusInterval{}, ErrNoOpenInterval
	}
	if !ev.At.After(prev.Start) {
		return StatusInterval{}, fmt.Errorf("close at %s, interval started %s: %w",
			ev.At.Format(time.RFC3339), prev.Start.Format(time.RFC3339), ErrInvalidRange)
	}

	at := ev.At
	prev.End = &at
	return *prev, nil
}

func (l *DutyStatusLog) applyAppend(ev LogEvent) (StatusInterval, error) {
	if !ev.Status.Valid() {
		return StatusInterval{}, fmt.Errorf("status %q: %w", ev.Status, ErrInvalidStatus)
	}
	if ev.At.IsZero() {
		return StatusInterval{}, fmt.Errorf("interval start is zero: %w", ErrInvalidRange)
	}
	if ev.End != nil && !ev.End.After(ev.At) {
		return StatusInterval{}, fmt.Errorf("interval %s..%s: %w",
			ev.At.Format(time.RFC3339), ev.End.Format(time.RFC3339), ErrInvalidRange)
	}

	if prev := l.last(); prev != nil {
		if prev.IsOpen() {
			return StatusInterval{}, ErrOpenInterval
		}
		if err := checkFollows(*prev.End, ev.At); err != nil {
			return StatusInterval{}, err
		}
	}

	iv := StatusInterval{
		ID:         ev.IntervalID,
		Status:     ev.Status,
		Start:      ev.At,
		Location:   ev.Location,
		Notes:      ev.Notes,
		RecordedAt: ev.RecordedAt,
	}
	if ev.End != nil {
		end := *ev.End
		iv.End = &end
	}

	l.push(iv)
	return *l.last(), nil
}

func (l *DutyStatusLog) applyAmend(ev LogEvent) (StatusInterval, error) {
	if ev.TargetID == nil {
		return StatusInterval{}, fmt.Errorf("amendment without target: %w", ErrIntervalNotFound)
	}
	if !ev.Status.Valid() {
		return StatusInterval{}, fmt.Errorf("status %q: %w", ev.Status, ErrInvalidStatus)
	}

	pos := -1
	for i, idx := range l.timeline {
		if l.records[idx].ID == *ev.TargetID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return StatusInterval{}, fmt.Errorf("amend %s: %w", ev.TargetID, ErrIntervalNotFound)
	}

	orig := l.records[l.timeline[pos]].clone()
	target := *ev.TargetID

	amended := orig
	amended.ID = ev.IntervalID
	amended.Status = ev.Status
	amended.Location = ev.Location
	amended.Notes = ev.Notes
	amended.Amends = &target
	amended.RecordedAt = ev.RecordedAt

	l.records = append(l.records, amended)
	l.timeline[pos] = len(l.records) - 1
	return amended, nil
}

func checkFollows(prevEnd, start time.Time) error {
	switch {
	case start.Before(prevEnd):
		return fmt.Errorf("start %s before previous end %s: %w",
			start.Format(time.RFC3339), prevEnd.Format(time.RFC3339), ErrOverlap)
	case start.After(prevEnd):
		return fmt.Errorf("start %s after previous end %s: %w",
			start.Format(time.RFC3339), prevEnd.Format(time.RFC3339), ErrNonContiguous)
	}
	return nil
}

// Snapshot returns an immutable copy of the effective timeline.
func (l *DutyStatusLog) Snapshot() LogSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]StatusInterval, 0, len(l.timeline))
	for _, idx := range l.timeline {
		out = append(out, l.records[idx].clone())
	}
	return LogSnapshot{DriverID: l.driverID, Seq: l.seq, Intervals: out}
}

// Records returns the full audit trail in recording order, including
// records that were later amended.
func (l *DutyStatusLog) Records() []StatusInterval {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]StatusInterval, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.clone())
	}
	return out
}

// Find returns the effective or audit-trail record with the given ID.
func (l *DutyStatusLog) Find(id uuid.UUID) (StatusInterval, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, r := range l.records {
		if r.ID == id {
			return r.clone(), true
		}
	}
	return StatusInterval{}, false
}
