package ports

import "context"

const metersPerMile = 1609.344

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

func (r DistanceResult) Miles() float64 { return float64(r.DistanceMeters) / metersPerMile }

func (r DistanceResult) Hours() float64 { return float64(r.DurationSeconds) / 3600 }

// Contract for retrieving truck travel distance and duration between locations.
type DistanceProvider interface {
	// Return travel distance and estimated driving duration between two locations.
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}
