package cache

import (
	"context"
	"errors"
	"fmt"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDistanceCache keeps distance results in Redis so several service
// instances share one cache. Entries expire after TTL (0 keeps them).
type RedisDistanceCache struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

var _ ports.DistanceCache = (*RedisDistanceCache)(nil)

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{Client: client, Prefix: "hos:distance:", TTL: ttl}
}

func (r *RedisDistanceCache) key(origin, destination string) string {
	return r.Prefix + origin + "|" + destination
}

func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("redis distance cache: client is nil")
	}
	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, 0, len(uniq))
	for _, d := range uniq {
		keys = append(keys, r.key(origin, d))
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		res, err := decodeDistance(s)
		if err != nil {
			return nil, fmt.Errorf("get distance cache key=%q: %w", keys[i], err)
		}
		out[uniq[i]] = res
	}

	return out, nil
}

func (r *RedisDistanceCache) PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) (err error) {
	defer obs.Time(ctx, "distance.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("redis distance cache: client is nil")
	}
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	_, err = r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for dest, res := range results {
			if strings.TrimSpace(dest) == "" {
				return errors.New("empty destination key")
			}
			pipe.Set(ctx, r.key(origin, dest), encodeDistance(res), r.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}

	return nil
}

func encodeDistance(r ports.DistanceResult) string {
	return fmt.Sprintf("%d:%d", r.DistanceMeters, r.DurationSeconds)
}

func decodeDistance(v string) (ports.DistanceResult, error) {
	var r ports.DistanceResult
	if _, err := fmt.Sscanf(v, "%d:%d", &r.DistanceMeters, &r.DurationSeconds); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode %q: %w", v, err)
	}
	return r, nil
}
