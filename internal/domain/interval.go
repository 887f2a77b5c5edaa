package domain

import (
	"time"

	"github.com/SaidinWoT/timespan"
	"github.com/google/uuid"
)

// StatusInterval is one contiguous stretch of a single duty status.
// End is nil while the interval is ongoing. An interval that corrects an
// earlier record carries the corrected record's ID in Amends.
type StatusInterval struct {
	ID         uuid.UUID
	Status     DutyStatus
	Start      time.Time
	End        *time.Time
	Location   string
	Notes      string
	Amends     *uuid.UUID
	RecordedAt time.Time
}

func (iv StatusInterval) IsOpen() bool { return iv.End == nil }

// EndAt returns the interval end, substituting asOf for an open interval.
func (iv StatusInterval) EndAt(asOf time.Time) time.Time {
	if iv.End == nil {
		return asOf
	}
	return *iv.End
}

// Span returns the part of the interval that lies at or before asOf.
// ok is false when nothing of the interval has elapsed by asOf.
func (iv StatusInterval) Span(asOf time.Time) (timespan.Span, bool) {
	end := iv.EndAt(asOf)
	if end.After(asOf) {
		end = asOf
	}
	if !end.After(iv.Start) {
		return timespan.Span{}, false
	}
	return timespan.New(iv.Start, end.Sub(iv.Start)), true
}

// DurationAt is the elapsed length of the interval as of asOf; never negative.
func (iv StatusInterval) DurationAt(asOf time.Time) time.Duration {
	s, ok := iv.Span(asOf)
	if !ok {
		return 0
	}
	return s.Duration()
}

// Within returns the length of the overlap between the interval (clipped
// at asOf) and the window.
func (iv StatusInterval) Within(window timespan.Span, asOf time.Time) time.Duration {
	s, ok := iv.Span(asOf)
	if !ok {
		return 0
	}
	overlap, ok := s.Intersection(window)
	if !ok {
		return 0
	}
	return overlap.Duration()
}

func (iv StatusInterval) clone() StatusInterval {
	out := iv
	if iv.End != nil {
		end := *iv.End
		out.End = &end
	}
	if iv.Amends != nil {
		id := *iv.Amends
		out.Amends = &id
	}
	return out
}
