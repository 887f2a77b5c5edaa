package distance

import (
	"context"
	"fmt"
	"hos-compliance-service/internal/ports"
	"math"
)

// MockPair is one directed leg known to the mock provider.
type MockPair struct {
	From, To string
	Miles    float64
	Hours    float64
}

// MockDistanceProvider serves fixed legs for local runs and tests. Pairs
// are symmetric unless the reverse direction is listed explicitly.
type MockDistanceProvider struct {
	m map[string]ports.DistanceResult
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, 2*len(pairs))
	for _, p := range pairs {
		r := ports.DistanceResult{
			DistanceMeters:  int(math.Round(p.Miles * 1609.344)),
			DurationSeconds: int(math.Round(p.Hours * 3600)),
		}
		m[mockKey(p.From, p.To)] = r
		if _, ok := m[mockKey(p.To, p.From)]; !ok {
			m[mockKey(p.To, p.From)] = r
		}
	}
	return &MockDistanceProvider{m: m}
}

func mockKey(from, to string) string { return Normalize(from) + "|" + Normalize(to) }

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}
	if Normalize(origin) == Normalize(destination) {
		return ports.DistanceResult{}, nil
	}
	r, ok := p.m[mockKey(origin, destination)]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}
	return r, nil
}
