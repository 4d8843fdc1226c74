package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisTravelCache keeps one hash per origin; fields are destination keys
// and values are "meters:seconds". Each write refreshes the hash TTL.
type RedisTravelCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{client: client, ttl: ttl, prefix: "travel:"}
}

func (c *RedisTravelCache) key(origin string) string { return c.prefix + origin }

func (c *RedisTravelCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "travel.redis.GetMany")(&err)

	if c.client == nil {
		return nil, errors.New("redis travel cache: client is nil")
	}
	if origin == "" {
		return nil, errors.New("get redis travel cache: origin must not be empty")
	}

	uniq := dedupe(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	vals, err := c.client.HMGet(ctx, c.key(origin), uniq...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get redis travel cache: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decodeResult(s)
		if err != nil {
			// Corrupt entries count as misses and get overwritten.
			continue
		}
		out[uniq[i]] = r
	}
	return out, nil
}

func (c *RedisTravelCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "travel.redis.PutMany")(&err)

	if c.client == nil {
		return errors.New("redis travel cache: client is nil")
	}
	if origin == "" {
		return errors.New("put redis travel cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for dest, r := range results {
		fields[dest] = fmt.Sprintf("%d:%d", r.DistanceMeters, r.DurationSeconds)
	}

	key := c.key(origin)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put redis travel cache: %w", err)
	}
	return nil
}

func decodeResult(s string) (ports.DistanceResult, error) {
	m, sec, ok := strings.Cut(s, ":")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("malformed cache value %q", s)
	}
	meters, err := strconv.Atoi(m)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed meters %q: %w", s, err)
	}
	seconds, err := strconv.Atoi(sec)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed seconds %q: %w", s, err)
	}
	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}
