package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mbenhaddou/optimisation-service/internal/platform/obs"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// SQLGeometryCache is a Postgres-backed cache for fetched road geometry,
// shared by all instances pointing at the same database.
type SQLGeometryCache struct {
	DB *sql.DB
}

func NewSQLGeometryCache(db *sql.DB) *SQLGeometryCache {
	return &SQLGeometryCache{DB: db}
}

func (s *SQLGeometryCache) Get(ctx context.Context, key string) (_ *ports.RoadRoute, err error) {
	defer obs.Time(ctx, "geometry.cache.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("geometry cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("get geometry cache: key must not be empty")
	}

	var geometry string
	var meters, seconds float64
	row := s.DB.QueryRowContext(ctx, `
	SELECT geometry, distance_meters, duration_seconds
	FROM geometry_cache
	WHERE request_key = $1;
	`, key)
	if err := row.Scan(&geometry, &meters, &seconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get geometry cache: scan row: %w", err)
	}

	route := ports.RoadRoute{DistanceMeters: meters, DurationSeconds: seconds}
	if err := json.Unmarshal([]byte(geometry), &route.Geometry); err != nil {
		return nil, fmt.Errorf("get geometry cache: decode geometry: %w", err)
	}

	return &route, nil
}

func (s *SQLGeometryCache) Put(ctx context.Context, key string, route ports.RoadRoute) error {
	if s.DB == nil {
		return errors.New("geometry cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geometry cache: key must not be empty")
	}

	geometry, err := json.Marshal(route.Geometry)
	if err != nil {
		return fmt.Errorf("insert geometry cache: encode geometry: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO geometry_cache (request_key, geometry, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (request_key) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`, key, string(geometry), route.DistanceMeters, route.DurationSeconds)
	if err != nil {
		return fmt.Errorf("insert geometry cache key=%q: %w", key, err)
	}

	return nil
}
