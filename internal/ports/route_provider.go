package ports

import (
	"context"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
)

// Road geometry and travel metrics for one ordered stop sequence, as
// resolved by an external routing backend.
type RoadRoute struct {
	Geometry        []domain.Coordinates
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for resolving the road path that visits points in order.
type RouteProvider interface {
	FetchRoute(ctx context.Context, points []domain.Coordinates) (RoadRoute, error)
}

// GeometryCache stores previously fetched road routes by request key.
// Get returns nil when the key is absent.
type GeometryCache interface {
	Get(ctx context.Context, key string) (*RoadRoute, error)
	Put(ctx context.Context, key string, route RoadRoute) error
}
