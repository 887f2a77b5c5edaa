package cache

import (
	"context"
	"hos-compliance-service/internal/adapters/repositories"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/db"
	"hos-compliance-service/internal/ports"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDB(t *testing.T) *SQLDistanceCache {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(context.Background(), conn, db.DialectSQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSQLDistanceCache(conn, db.DialectSQLite)
}

func checkDistanceCache(t *testing.T, c ports.DistanceCache) {
	t.Helper()
	ctx := context.Background()

	in := map[string]ports.DistanceResult{
		"Oklahoma City, OK": {DistanceMeters: 270000, DurationSeconds: 10800},
		"Wichita, KS":       {DistanceMeters: 560000, DurationSeconds: 19800},
	}
	if err := c.PutMany(ctx, "Dallas, TX", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, "Dallas, TX", []string{"Wichita, KS", " Wichita, KS ", "Tulsa, OK", ""})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("hits = %v, want only Wichita", got)
	}
	if got["Wichita, KS"] != in["Wichita, KS"] {
		t.Fatalf("Wichita = %+v, want %+v", got["Wichita, KS"], in["Wichita, KS"])
	}

	empty, err := c.GetMany(ctx, "Tulsa, OK", []string{"Wichita, KS"})
	if err != nil || len(empty) != 0 {
		t.Fatalf("other origin = %v, %v", empty, err)
	}

	if _, err := c.GetMany(ctx, "", []string{"x"}); err == nil {
		t.Fatalf("expected error for empty origin")
	}
}

func TestSQLDistanceCache(t *testing.T) {
	checkDistanceCache(t, newTestDB(t))
}

func TestRedisDistanceCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisDistanceCache(client, time.Hour)
	checkDistanceCache(t, c)

	if ttl := mr.TTL(c.key("Dallas, TX", "Wichita, KS")); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	got, err := c.GetMany(context.Background(), "Dallas, TX", []string{"Wichita, KS"})
	if err != nil || len(got) != 0 {
		t.Fatalf("expired entries returned: %v, %v", got, err)
	}
}

func TestSQLGeocodeCache(t *testing.T) {
	ctx := context.Background()
	dist := newTestDB(t)
	c := NewSQLGeocodeCache(dist.DB, db.DialectSQLite)

	coords := map[string]domain.Coordinates{
		"Dallas, TX": {Lon: -96.797, Lat: 32.7767},
	}
	if err := c.PutMany(ctx, coords); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.GetMany(ctx, []string{"Dallas, TX", "Austin, TX"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got["Dallas, TX"] != coords["Dallas, TX"] {
		t.Fatalf("got = %v", got)
	}

	if err := c.PutMany(ctx, map[string]domain.Coordinates{"Nowhere": {Lon: 200, Lat: 0}}); err == nil {
		t.Fatalf("expected error for out-of-range coordinates")
	}
}

func TestMemoryGeocodeCacheFrontsNext(t *testing.T) {
	ctx := context.Background()
	dist := newTestDB(t)
	backing := NewSQLGeocodeCache(dist.DB, db.DialectSQLite)
	if err := backing.PutMany(ctx, map[string]domain.Coordinates{"Tulsa, OK": {Lon: -95.99, Lat: 36.15}}); err != nil {
		t.Fatalf("seed backing cache: %v", err)
	}

	m := NewMemoryGeocodeCache(time.Hour, backing)
	got, err := m.GetMany(ctx, []string{"Tulsa, OK"})
	if err != nil || len(got) != 1 {
		t.Fatalf("get through = %v, %v", got, err)
	}
	if m.Len() != 1 {
		t.Fatalf("memory entries = %d, want 1 after read-through", m.Len())
	}

	if err := m.PutMany(ctx, map[string]domain.Coordinates{"Joplin, MO": {Lon: -94.51, Lat: 37.08}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	fromBacking, _ := backing.GetMany(ctx, []string{"Joplin, MO"})
	if len(fromBacking) != 1 {
		t.Fatalf("write did not reach the backing cache")
	}
}
