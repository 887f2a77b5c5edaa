package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/ports"
	"os"
	"strings"
	"time"
)

type IntervalSeed struct {
	Status   string     `json:"status"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Location string     `json:"location"`
	Notes    string     `json:"notes"`
}

type DriverSeed struct {
	DriverID  string         `json:"driver_id"`
	Intervals []IntervalSeed `json:"intervals"`
}

// LoadSeed reads and validates a seed file. Every driver's intervals must
// form a valid log.
func LoadSeed(jsonPath string) ([]DriverSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", jsonPath, err)
	}

	var data []DriverSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	for i, d := range data {
		if strings.TrimSpace(d.DriverID) == "" {
			return nil, fmt.Errorf("load seed: driver at index %d: %w", i+1, domain.ErrEmptyDriver)
		}
		if _, err := d.Events(); err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
	}

	return data, nil
}

// Events converts the seed into a numbered append-event stream.
func (d DriverSeed) Events() ([]domain.LogEvent, error) {
	l, err := domain.NewDutyStatusLog(d.DriverID)
	if err != nil {
		return nil, err
	}

	events := make([]domain.LogEvent, 0, len(d.Intervals))
	for i, s := range d.Intervals {
		status, err := domain.ParseDutyStatus(s.Status)
		if err != nil {
			return nil, fmt.Errorf("driver=%q interval #%d: %w", d.DriverID, i+1, err)
		}

		ev := domain.NewAppendEvent(d.DriverID, domain.StatusInterval{
			Status:   status,
			Start:    s.Start,
			End:      s.End,
			Location: strings.TrimSpace(s.Location),
			Notes:    strings.TrimSpace(s.Notes),
		})
		ev.Seq = l.Seq() + 1
		if _, err := l.Apply(ev); err != nil {
			return nil, fmt.Errorf("driver=%q interval #%d: %w", d.DriverID, i+1, err)
		}
		events = append(events, ev)
	}

	return events, nil
}

// Seed appends each driver's seed events. Drivers that already have a log
// are left untouched, so seeding is safe to repeat.
func Seed(ctx context.Context, repo ports.DutyLogRepository, seeds []DriverSeed) (int, error) {
	seeded := 0
	for _, d := range seeds {
		existing, err := repo.ListEvents(ctx, d.DriverID)
		if err != nil {
			return seeded, fmt.Errorf("seed driver=%q: %w", d.DriverID, err)
		}
		if len(existing) > 0 {
			continue
		}

		events, err := d.Events()
		if err != nil {
			return seeded, fmt.Errorf("seed: %w", err)
		}
		for _, ev := range events {
			if err := repo.AppendEvent(ctx, ev); err != nil {
				return seeded, fmt.Errorf("seed driver=%q seq=%d: %w", d.DriverID, ev.Seq, err)
			}
		}
		seeded++
	}

	return seeded, nil
}
