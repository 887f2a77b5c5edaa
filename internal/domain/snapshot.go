package domain

import (
	"fmt"
	"time"

	"github.com/SaidinWoT/timespan"
)

// LogSnapshot is an immutable view of a driver's effective timeline.
// Intervals are contiguous and ordered; only the last may be open.
type LogSnapshot struct {
	DriverID  string
	Seq       int64
	Intervals []StatusInterval
}

// SnapshotOf validates intervals as a log and returns its snapshot.
// It is the entry point for logs that arrive whole (files, tests).
func SnapshotOf(driverID string, intervals []StatusInterval) (LogSnapshot, error) {
	l, err := NewDutyStatusLog(driverID)
	if err != nil {
		return LogSnapshot{}, fmt.Errorf("snapshot of: %w", err)
	}

	for i, iv := range intervals {
		if _, err := l.Append(iv); err != nil {
			return LogSnapshot{}, fmt.Errorf("snapshot of: interval #%d: %w", i+1, err)
		}
	}

	return l.Snapshot(), nil
}

func (s LogSnapshot) Len() int { return len(s.Intervals) }

// Start returns the start of the first interval.
func (s LogSnapshot) Start() (time.Time, bool) {
	if len(s.Intervals) == 0 {
		return time.Time{}, false
	}
	return s.Intervals[0].Start, true
}

// Open returns the ongoing interval, if any.
func (s LogSnapshot) Open() (StatusInterval, bool) {
	if len(s.Intervals) == 0 {
		return StatusInterval{}, false
	}
	last := s.Intervals[len(s.Intervals)-1]
	return last, last.IsOpen()
}

// CheckAsOf reports ErrAsOfOutOfRange when asOf precedes the log start or
// the open interval's start.
func (s LogSnapshot) CheckAsOf(asOf time.Time) error {
	start, ok := s.Start()
	if !ok {
		return nil
	}
	if asOf.Before(start) {
		return fmt.Errorf("as of %s, log starts %s: %w",
			asOf.Format(time.RFC3339), start.Format(time.RFC3339), ErrAsOfOutOfRange)
	}
	if open, ok := s.Open(); ok && asOf.Before(open.Start) {
		return fmt.Errorf("as of %s, open interval starts %s: %w",
			asOf.Format(time.RFC3339), open.Start.Format(time.RFC3339), ErrAsOfOutOfRange)
	}
	return nil
}

// Between returns the intervals clipped to [from, to), with open intervals
// treated as running until asOf. Clipped copies get their End set.
func (s LogSnapshot) Between(from, to, asOf time.Time) []StatusInterval {
	if !to.After(from) {
		return nil
	}
	window := timespan.New(from, to.Sub(from))

	out := make([]StatusInterval, 0)
	for _, iv := range s.Intervals {
		span, ok := iv.Span(asOf)
		if !ok {
			continue
		}
		overlap, ok := span.Intersection(window)
		if !ok || overlap.Duration() <= 0 {
			continue
		}

		c := iv.clone()
		c.Start = overlap.Start()
		// An interval still running at the window's end stays open.
		if !(iv.IsOpen() && !overlap.End().Before(asOf)) {
			end := overlap.End()
			c.End = &end
		}
		out = append(out, c)
	}

	return out
}
