package services

import (
	"context"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/ports"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultStopOnDutyHours is the on-duty time booked at each pickup and
// drop-off when the request does not say otherwise.
const DefaultStopOnDutyHours = 1.0

const legLookupConcurrency = 4

var ErrInvalidTrip = errors.New("invalid trip request")

// TripRequest describes a trip as waypoints: the driver's current
// location followed by each pickup and drop-off in order.
//
// The starting HOS state comes from the driver's log when DriverID is set,
// otherwise from CurrentCycleUsedHours (a driver starting a fresh duty
// period with that much of the cycle spent).
type TripRequest struct {
	DriverID              string
	Waypoints             []string
	StartTime             time.Time
	CurrentCycleUsedHours float64
	StopOnDutyHours       *float64
}

// TripPlan is a resolved route and its compliant schedule.
type TripPlan struct {
	Legs        []domain.RouteLeg
	Start       domain.HOSState
	Schedule    *domain.Schedule
	Coordinates map[string]domain.Coordinates
}

// TripPlanner turns waypoints into legs through a DistanceProvider and
// schedules them under the configured rules.
type TripPlanner struct {
	Provider ports.DistanceProvider
	Logs     *LogService
	Rules    domain.RuleSet
	Now      func() time.Time
}

func (p *TripPlanner) Plan(ctx context.Context, req TripRequest) (*TripPlan, error) {
	if err := validateTripRequest(req); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	if p.Provider == nil {
		return nil, errors.New("plan trip: no distance provider configured")
	}

	start := req.StartTime
	if start.IsZero() {
		start = time.Now()
		if p.Now != nil {
			start = p.Now()
		}
	}

	state, err := p.startState(ctx, req, start)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	stopHours := DefaultStopOnDutyHours
	if req.StopOnDutyHours != nil {
		stopHours = *req.StopOnDutyHours
	}

	legs, err := ResolveLegs(ctx, p.Provider, req.Waypoints, stopHours)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	schedule, err := ScheduleBreaks(legs, state)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}

	plan := &TripPlan{Legs: legs, Start: state, Schedule: schedule}
	if g, ok := p.Provider.(ports.Geocoder); ok {
		coords, err := g.Geocode(ctx, req.Waypoints)
		if err != nil {
			log.Printf("op=trips.Plan geocode waypoints failed: %v", err)
		} else {
			plan.Coordinates = coords
		}
	}

	return plan, nil
}

func (p *TripPlanner) startState(ctx context.Context, req TripRequest, start time.Time) (domain.HOSState, error) {
	if req.DriverID != "" {
		if p.Logs == nil {
			return domain.HOSState{}, errors.New("driver logs are not available")
		}
		return p.Logs.HOSState(ctx, req.DriverID, start)
	}
	return domain.HOSState{
		StartTime: start,
		Rules:     p.Rules,
		Totals:    domain.Totals{AsOf: start, CycleHoursUsed: req.CurrentCycleUsedHours},
	}, nil
}

// ResolveLegs looks up each consecutive pair of waypoints concurrently.
// Every leg carries stopHours of on-duty work at its destination.
func ResolveLegs(
	ctx context.Context,
	provider ports.DistanceProvider,
	waypoints []string,
	stopHours float64,
) ([]domain.RouteLeg, error) {
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("resolve legs: need at least 2 waypoints, got %d: %w", len(waypoints), ErrInvalidTrip)
	}

	legs := make([]domain.RouteLeg, len(waypoints)-1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(legLookupConcurrency)
	for i := range legs {
		from, to := waypoints[i], waypoints[i+1]
		g.Go(func() error {
			r, err := provider.GetDistance(gctx, from, to)
			if err != nil {
				return fmt.Errorf("leg #%d %q -> %q: %w", i+1, from, to, err)
			}
			legs[i] = domain.RouteLeg{
				From:                  from,
				To:                    to,
				DistanceMiles:         r.Miles(),
				EstimatedDrivingHours: r.Hours(),
				StopOnDutyHours:       stopHours,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve legs: %w", err)
	}

	return legs, nil
}

func validateTripRequest(req TripRequest) error {
	if len(req.Waypoints) < 2 {
		return fmt.Errorf("need at least 2 waypoints, got %d: %w", len(req.Waypoints), ErrInvalidTrip)
	}
	for i, w := range req.Waypoints {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("waypoint #%d is empty: %w", i+1, ErrInvalidTrip)
		}
	}
	if !validHours(req.CurrentCycleUsedHours) {
		return fmt.Errorf("current cycle used %v: %w", req.CurrentCycleUsedHours, ErrInvalidTrip)
	}
	if req.StopOnDutyHours != nil && !validHours(*req.StopOnDutyHours) {
		return fmt.Errorf("stop on-duty hours %v: %w", *req.StopOnDutyHours, ErrInvalidTrip)
	}
	if req.DriverID != "" && req.CurrentCycleUsedHours > 0 {
		return fmt.Errorf("set either driver_id or current_cycle_used, not both: %w", ErrInvalidTrip)
	}
	return nil
}

