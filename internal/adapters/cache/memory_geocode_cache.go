package cache

import (
	"context"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/ports"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryGeocodeCache is an in-process geocode cache. It fronts a slower
// cache (or none) when Next is set.
type MemoryGeocodeCache struct {
	c    *gocache.Cache
	Next ports.GeocodeCache
}

var _ ports.GeocodeCache = (*MemoryGeocodeCache)(nil)

func NewMemoryGeocodeCache(ttl time.Duration, next ports.GeocodeCache) *MemoryGeocodeCache {
	exp := ttl
	if exp <= 0 {
		exp = gocache.NoExpiration
	}
	return &MemoryGeocodeCache{c: gocache.New(exp, 10*time.Minute), Next: next}
}

func (m *MemoryGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates)
	misses := make([]string, 0)
	for _, a := range uniqueKeys(addresses) {
		if v, ok := m.c.Get(a); ok {
			out[a] = v.(domain.Coordinates)
			continue
		}
		misses = append(misses, a)
	}

	if m.Next == nil || len(misses) == 0 {
		return out, nil
	}

	more, err := m.Next.GetMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	for a, c := range more {
		m.c.SetDefault(a, c)
		out[a] = c
	}
	return out, nil
}

func (m *MemoryGeocodeCache) PutMany(ctx context.Context, coords map[string]domain.Coordinates) error {
	for a, c := range coords {
		m.c.SetDefault(a, c)
	}
	if m.Next != nil {
		return m.Next.PutMany(ctx, coords)
	}
	return nil
}

func (m *MemoryGeocodeCache) Len() int { return m.c.ItemCount() }
