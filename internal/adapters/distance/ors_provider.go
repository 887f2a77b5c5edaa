package distance

import (
	"context"
	"errors"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"log"
	"maps"
	"net/http"
	"strings"
	"time"
)

// ORSOptions configures the OpenRouteService provider. Zero values select
// the public endpoint and the heavy-goods-vehicle profile.
type ORSOptions struct {
	APIKey        string
	BaseURL       string
	Profile       string
	Country       string
	HTTPClient    *http.Client
	DistanceCache ports.DistanceCache
	GeocodeCache  ports.GeocodeCache
}

// ORSProvider resolves truck driving distance and time between addresses
// using OpenRouteService: addresses are geocoded, then a single
// origin->many matrix row is fetched. Both steps go through the optional
// caches. The provider is safe for concurrent use.
type ORSProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	country       string
	distanceCache ports.DistanceCache
	geocodeCache  ports.GeocodeCache
}

var (
	_ ports.DistanceMatrixProvider = (*ORSProvider)(nil)
	_ ports.Geocoder               = (*ORSProvider)(nil)
)

func NewORSProvider(opts ORSOptions) (*ORSProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	p := &ORSProvider{
		session:       opts.HTTPClient,
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		profile:       opts.Profile,
		country:       opts.Country,
		distanceCache: opts.DistanceCache,
		geocodeCache:  opts.GeocodeCache,
	}
	if p.session == nil {
		p.session = &http.Client{Timeout: 10 * time.Second}
	}
	if p.baseURL == "" {
		p.baseURL = "https://api.openrouteservice.org"
	}
	if p.profile == "" {
		p.profile = "driving-hgv"
	}
	if p.country == "" {
		p.country = "US"
	}

	return p, nil
}

// Normalize collapses whitespace so cache keys are consistent.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	normOrigin, normDestination := Normalize(origin), Normalize(destination)
	if normOrigin == "" || normDestination == "" {
		return ports.DistanceResult{}, errors.New("get ORS distance: origin and destination must be non-empty")
	}
	if normOrigin == normDestination {
		return ports.DistanceResult{}, nil
	}

	results, err := o.GetDistances(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance %q -> %q: %w", normOrigin, normDestination, err)
	}

	result, ok := results[normDestination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("no distance result for %q -> %q", origin, destination)
	}
	return result, nil
}

// GetDistances computes distances from one origin to many destinations.
// Destinations equal to the origin are omitted.
func (o *ORSProvider) GetDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	normOrigin := Normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := Normalize(d)
		if nd == "" || nd == normOrigin {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}
		seen[nd] = struct{}{}
		destList = append(destList, nd)
	}
	if len(destList) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	hits := make(map[string]ports.DistanceResult)
	if o.distanceCache != nil {
		hits, err = o.distanceCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	misses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := hits[d]; !ok {
			misses = append(misses, d)
		}
	}
	if len(misses) == 0 {
		return hits, nil
	}

	coords, err := o.Geocode(ctx, append([]string{normOrigin}, misses...))
	if err != nil {
		return nil, fmt.Errorf("retrieving coordinates: %w", err)
	}

	destCoords := make([]domain.Coordinates, 0, len(misses))
	for _, d := range misses {
		destCoords = append(destCoords, coords[d])
	}

	fetched, err := o.fetchMatrixRow(ctx, coords[normOrigin], misses, destCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, normOrigin, fetched); err != nil {
			log.Printf("op=ors.GetDistances distance cache write failed: %v", err)
		}
	}

	out := make(map[string]ports.DistanceResult, len(hits)+len(fetched))
	maps.Copy(out, hits)
	maps.Copy(out, fetched)
	return out, nil
}

// Geocode resolves addresses to coordinates, cache first. Every address
// in the result is normalized.
func (o *ORSProvider) Geocode(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	needed := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if n := Normalize(a); n != "" {
			needed = append(needed, n)
		}
	}

	hits := make(map[string]domain.Coordinates)
	if o.geocodeCache != nil {
		var err error
		hits, err = o.geocodeCache.GetMany(ctx, needed)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(needed))
	for _, a := range needed {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh, err := o.geocodeMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			log.Printf("op=ors.Geocode geocode cache write failed: %v", err)
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	maps.Copy(out, hits)
	maps.Copy(out, fresh)
	for _, a := range needed {
		if _, ok := out[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}
	return out, nil
}
