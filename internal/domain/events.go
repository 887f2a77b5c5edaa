package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the entries of a driver's append-only duty event stream.
type EventKind string

const (
	// EventStatusChange closes the open interval (if any) and opens a new one.
	EventStatusChange EventKind = "status_change"
	// EventClose closes the open interval without opening another.
	EventClose EventKind = "close"
	// EventAppend imports a historical interval with explicit bounds.
	EventAppend EventKind = "append"
	// EventAmend records a correction of an existing interval.
	EventAmend EventKind = "amend"
)

// LogEvent is the persisted form of every mutation of a DutyStatusLog.
// Replaying a driver's events in Seq order rebuilds the log exactly.
type LogEvent struct {
	Seq        int64
	DriverID   string
	Kind       EventKind
	IntervalID uuid.UUID
	TargetID   *uuid.UUID
	Status     DutyStatus
	At         time.Time
	End        *time.Time
	Location   string
	Notes      string
	RecordedAt time.Time
}

// StatusChange is a driver signalling a new duty status at an instant.
type StatusChange struct {
	Status   DutyStatus
	At       time.Time
	Location string
	Notes    string
}

func NewStatusChangeEvent(driverID string, ch StatusChange) LogEvent {
	return LogEvent{
		DriverID:   driverID,
		Kind:       EventStatusChange,
		IntervalID: uuid.New(),
		Status:     ch.Status,
		At:         ch.At,
		Location:   ch.Location,
		Notes:      ch.Notes,
		RecordedAt: time.Now().UTC(),
	}
}

func NewCloseEvent(driverID string, at time.Time) LogEvent {
	return LogEvent{
		DriverID:   driverID,
		Kind:       EventClose,
		At:         at,
		RecordedAt: time.Now().UTC(),
	}
}

// NewAppendEvent imports iv as-is. A zero iv.ID is replaced with a fresh one.
func NewAppendEvent(driverID string, iv StatusInterval) LogEvent {
	id := iv.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var end *time.Time
	if iv.End != nil {
		e := *iv.End
		end = &e
	}

	return LogEvent{
		DriverID:   driverID,
		Kind:       EventAppend,
		IntervalID: id,
		Status:     iv.Status,
		At:         iv.Start,
		End:        end,
		Location:   iv.Location,
		Notes:      iv.Notes,
		RecordedAt: time.Now().UTC(),
	}
}

// Amendment corrects the status, location, or notes of a recorded interval.
// Time bounds are never amended; they are what keeps the log contiguous.
type Amendment struct {
	Target   uuid.UUID
	Status   DutyStatus
	Location string
	Notes    string
}

func NewAmendEvent(driverID string, a Amendment) LogEvent {
	target := a.Target
	return LogEvent{
		DriverID:   driverID,
		Kind:       EventAmend,
		IntervalID: uuid.New(),
		TargetID:   &target,
		Status:     a.Status,
		Location:   a.Location,
		Notes:      a.Notes,
		RecordedAt: time.Now().UTC(),
	}
}
