package ports

import (
	"context"
	"hos-compliance-service/internal/domain"
)

// Port: the append-only store of duty-log events, one stream per driver.
type DutyLogRepository interface {
	// Persist ev at ev.Seq. A second writer claiming the same sequence
	// number gets domain.ErrConcurrentAppend.
	AppendEvent(ctx context.Context, ev domain.LogEvent) error
	// Return the driver's events in sequence order.
	ListEvents(ctx context.Context, driverID string) ([]domain.LogEvent, error)
	// Return the IDs of drivers that have at least one event.
	ListDrivers(ctx context.Context) ([]string, error)
}

// EventPublisher fans recorded duty events out to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.LogEvent) error
}
