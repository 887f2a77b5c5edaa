package distance

import (
	"context"
	"encoding/json"
	"errors"
	"hos-compliance-service/internal/adapters/cache"
	"hos-compliance-service/internal/ports"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var testCoords = map[string][2]float64{
	"Dallas, TX":        {-96.797, 32.7767},
	"Oklahoma City, OK": {-97.5164, 35.4676},
	"Wichita, KS":       {-97.3301, 37.6872},
}

type fakeORS struct {
	geocodes atomic.Int32
	matrices atomic.Int32
	failNext atomic.Int32
	lastAuth atomic.Value
	profile  atomic.Value
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		f.geocodes.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		c, ok := testCoords[r.URL.Query().Get("text")]
		if !ok {
			_, _ = w.Write([]byte(`{"features":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{"geometry": map[string]any{"coordinates": []float64{c[0], c[1]}}}},
		})
	})
	mux.HandleFunc("/v2/matrix/", func(w http.ResponseWriter, r *http.Request) {
		if f.failNext.Load() > 0 {
			f.failNext.Add(-1)
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		f.matrices.Add(1)
		f.profile.Store(r.URL.Path)
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode matrix request: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		dist := make([]float64, 0, len(req.Destinations))
		dur := make([]float64, 0, len(req.Destinations))
		for _, i := range req.Destinations {
			// 100 miles per index, one hour and a half each.
			dist = append(dist, float64(i)*160934.4)
			dur = append(dur, float64(i)*5400)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"distances": [][]float64{dist},
			"durations": [][]float64{dur},
		})
	})
	return mux
}

type mapDistanceCache struct {
	mu sync.Mutex
	m  map[string]ports.DistanceResult
}

func (c *mapDistanceCache) GetMany(_ context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]ports.DistanceResult)
	for _, d := range destinations {
		if r, ok := c.m[origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *mapDistanceCache) PutMany(_ context.Context, origin string, results map[string]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for d, r := range results {
		c.m[origin+"|"+d] = r
	}
	return nil
}

func newTestProvider(t *testing.T) (*ORSProvider, *fakeORS) {
	t.Helper()
	f := &fakeORS{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewORSProvider(ORSOptions{
		APIKey:        "test-key",
		BaseURL:       srv.URL + "/",
		HTTPClient:    srv.Client(),
		DistanceCache: &mapDistanceCache{m: map[string]ports.DistanceResult{}},
		GeocodeCache:  cache.NewMemoryGeocodeCache(time.Hour, nil),
	})
	if err != nil {
		t.Fatalf("NewORSProvider: %v", err)
	}
	return p, f
}

func TestNewORSProviderRequiresKey(t *testing.T) {
	if _, err := NewORSProvider(ORSOptions{APIKey: "  "}); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestGetDistancesUsesHGVMatrixAndCaches(t *testing.T) {
	p, f := newTestProvider(t)
	ctx := context.Background()

	got, err := p.GetDistances(ctx, "Dallas,  TX", []string{"Oklahoma City, OK", "Wichita, KS", "Dallas, TX", "Wichita, KS"})
	if err != nil {
		t.Fatalf("GetDistances: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d: %v", len(got), got)
	}
	if m := got["Oklahoma City, OK"].Miles(); math.Abs(m-100) > 0.01 {
		t.Fatalf("expected 100 miles to Oklahoma City, got %v", m)
	}
	if h := got["Wichita, KS"].Hours(); math.Abs(h-3) > 1e-9 {
		t.Fatalf("expected 3 hours to Wichita, got %v", h)
	}
	if f.geocodes.Load() != 3 || f.matrices.Load() != 1 {
		t.Fatalf("expected 3 geocodes and 1 matrix call, got %d and %d", f.geocodes.Load(), f.matrices.Load())
	}
	if path, _ := f.profile.Load().(string); path != "/v2/matrix/driving-hgv" {
		t.Fatalf("expected driving-hgv profile, got %q", path)
	}
	if auth, _ := f.lastAuth.Load().(string); auth != "test-key" {
		t.Fatalf("expected api key in Authorization header, got %q", auth)
	}

	if _, err := p.GetDistances(ctx, "Dallas, TX", []string{"Wichita, KS"}); err != nil {
		t.Fatalf("cached GetDistances: %v", err)
	}
	if f.geocodes.Load() != 3 || f.matrices.Load() != 1 {
		t.Fatalf("expected cache hit, got %d geocodes and %d matrix calls", f.geocodes.Load(), f.matrices.Load())
	}
}

func TestGetDistanceSameAddressIsZero(t *testing.T) {
	p, f := newTestProvider(t)

	r, err := p.GetDistance(context.Background(), "Dallas, TX", " Dallas,   TX ")
	if err != nil {
		t.Fatalf("GetDistance: %v", err)
	}
	if r != (ports.DistanceResult{}) {
		t.Fatalf("expected zero result, got %+v", r)
	}
	if f.geocodes.Load() != 0 {
		t.Fatalf("expected no remote calls, got %d", f.geocodes.Load())
	}
}

func TestGetDistanceRetriesTransientStatus(t *testing.T) {
	p, f := newTestProvider(t)
	f.failNext.Store(1)

	r, err := p.GetDistance(context.Background(), "Dallas, TX", "Oklahoma City, OK")
	if err != nil {
		t.Fatalf("GetDistance: %v", err)
	}
	if r.DistanceMeters == 0 {
		t.Fatalf("expected non-zero distance, got %+v", r)
	}
	if f.matrices.Load() != 1 {
		t.Fatalf("expected one successful matrix call, got %d", f.matrices.Load())
	}
}

func TestGeocodeUnknownAddress(t *testing.T) {
	p, _ := newTestProvider(t)

	_, err := p.GetDistance(context.Background(), "Dallas, TX", "Nowhere, ZZ")
	if err == nil {
		t.Fatal("expected geocode failure")
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&httpStatusError{Code: http.StatusTooManyRequests}, true},
		{&httpStatusError{Code: http.StatusBadGateway}, true},
		{&httpStatusError{Code: http.StatusBadRequest}, false},
		{&httpStatusError{Code: http.StatusForbidden}, false},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := retryable(tc.err); got != tc.want {
			t.Errorf("retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestMockDistanceProvider(t *testing.T) {
	p := NewMockDistanceProvider([]MockPair{{From: "A", To: "B", Miles: 120, Hours: 2}})

	r, err := p.GetDistance(context.Background(), "B", "A")
	if err != nil {
		t.Fatalf("reverse lookup: %v", err)
	}
	if math.Abs(r.Miles()-120) > 0.001 || r.Hours() != 2 {
		t.Fatalf("unexpected result %+v", r)
	}
	if _, err := p.GetDistance(context.Background(), "A", "C"); err == nil {
		t.Fatal("expected missing pair error")
	}
}
