package ports

import (
	"context"
	"hos-compliance-service/internal/domain"
)

// Optional extension of DistanceProvider that exposes resolved coordinates
// (for drawing the route on a map client-side).
type Geocoder interface {
	Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
}
