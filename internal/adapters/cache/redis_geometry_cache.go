package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mbenhaddou/optimisation-service/internal/platform/obs"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

const geometryKeyPrefix = "geometry:"

// RedisGeometryCache stores fetched road geometry in Redis so that multiple
// instances share one cache. Entries expire; road networks change.
type RedisGeometryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGeometryCache(redisURL string, ttl time.Duration) (*RedisGeometryCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &RedisGeometryCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
	}, nil
}

func (r *RedisGeometryCache) Get(ctx context.Context, key string) (_ *ports.RoadRoute, err error) {
	defer obs.Time(ctx, "geometry.cache.Get")(&err)

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("get geometry cache: key must not be empty")
	}

	raw, err := r.client.Get(ctx, geometryKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get geometry cache: %w", err)
	}

	var route ports.RoadRoute
	if err := json.Unmarshal([]byte(raw), &route); err != nil {
		return nil, fmt.Errorf("get geometry cache: decode value: %w", err)
	}

	return &route, nil
}

func (r *RedisGeometryCache) Put(ctx context.Context, key string, route ports.RoadRoute) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geometry cache: key must not be empty")
	}

	value, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("insert geometry cache: encode value: %w", err)
	}

	if err := r.client.Set(ctx, geometryKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("insert geometry cache key=%q: %w", key, err)
	}

	return nil
}

func (r *RedisGeometryCache) Close() error {
	return r.client.Close()
}
