package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/platform/metrics"
	"github.com/mbenhaddou/optimisation-service/internal/platform/obs"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// ErrStaleRender marks a render whose scenario changed while its routing
// batch was in flight. The result must be discarded, never displayed.
var ErrStaleRender = errors.New("render superseded by a newer scenario")

const (
	routeFetchConcurrency = 5
	boundsPadRatio        = 0.2
)

// RouteMapBuilder turns a solution into drawable primitives, resolving road
// geometry through an optional routing backend.
//
// Geometry results are cached per session under the route's ordered
// coordinate key; the session cache is append-only until Invalidate clears
// it. A shared (persistent) cache may sit behind the session layer.
//
// Failure semantics: a single vehicle's lookup failing degrades only that
// vehicle. Only a batch where no vehicle obtained geometry falls back to
// straight-line rendering, and then for every route at once, so a view
// never mixes road-accurate and straight-line routes.
type RouteMapBuilder struct {
	provider ports.RouteProvider
	shared   ports.GeometryCache

	mu      sync.Mutex
	session map[string]ports.RoadRoute

	generation atomic.Uint64
}

func NewRouteMapBuilder(provider ports.RouteProvider, shared ports.GeometryCache) *RouteMapBuilder {
	return &RouteMapBuilder{
		provider: provider,
		shared:   shared,
		session:  map[string]ports.RoadRoute{},
	}
}

// Invalidate bumps the render generation and clears the session cache.
// Call it whenever the scenario's vehicles or tasks change identity; any
// routing batch still in flight will be discarded on arrival.
func (b *RouteMapBuilder) Invalidate() {
	b.generation.Add(1)
	b.mu.Lock()
	b.session = map[string]ports.RoadRoute{}
	b.mu.Unlock()
}

// Render computes the route-map view for a scenario and an optional
// solution. With no solution it produces the preview. Returns ErrStaleRender
// when Invalidate ran while the routing batch was outstanding.
func (b *RouteMapBuilder) Render(ctx context.Context, scenario domain.ScenarioData, solution *domain.Solution) (_ RouteMapView, err error) {
	defer obs.Time(ctx, "routemap.Render")(&err)

	if solution == nil || len(solution.Routes) == 0 {
		return previewView(scenario), nil
	}

	if b.provider == nil {
		return straightLineView(solution.Routes), nil
	}

	gen := b.generation.Load()
	results := b.fetchBatch(ctx, solution.Routes)

	// A batch from a superseded scenario must not overwrite the current view.
	if b.generation.Load() != gen {
		return RouteMapView{}, ErrStaleRender
	}

	any := false
	for _, r := range results {
		if r != nil {
			any = true
			break
		}
	}
	if !any {
		return straightLineView(solution.Routes), nil
	}

	view := RouteMapView{
		Markers:   []StopMarker{},
		Polylines: []Polyline{},
		Metrics:   map[string]RoadMetrics{},
	}
	for i, route := range solution.Routes {
		color := routeColor(i)
		view.Markers = append(view.Markers, stopMarkers(route, color)...)

		road := results[i]
		if road == nil {
			// Markers only: drawing a straight line here would imply a road
			// accuracy that was not achieved.
			continue
		}

		view.Polylines = append(view.Polylines, Polyline{
			Points:  road.Geometry,
			Color:   color,
			Weight:  4,
			Opacity: 0.85,
		})
		view.Arrows = append(view.Arrows, directionArrows(road.Geometry)...)

		if route.VehicleID != "" && isFinite(road.DistanceMeters) && isFinite(road.DurationSeconds) {
			view.Metrics[route.VehicleID] = RoadMetrics{
				DistanceKm:  road.DistanceMeters / 1000,
				DurationMin: road.DurationSeconds / 60,
			}
		}
	}

	view.Bounds = viewBounds(view, boundsPadRatio)
	return view, nil
}

// fetchBatch issues one routing lookup per route, all together, and waits
// for every one to settle. Individual failures yield a nil slot.
func (b *RouteMapBuilder) fetchBatch(ctx context.Context, routes []domain.SolutionRoute) []*ports.RoadRoute {
	results := make([]*ports.RoadRoute, len(routes))

	sem := make(chan struct{}, routeFetchConcurrency)
	var wg sync.WaitGroup

	for i, route := range routes {
		points := routeStopPoints(route)
		if len(points) < 2 {
			continue
		}

		wg.Add(1)
		go func(slot int, vehicleID string, points []domain.Coordinates) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			road, err := b.fetchRoute(ctx, points)
			if err != nil {
				// Best-effort degrade: this vehicle renders without a line.
				log.Printf("route lookup failed: vehicle=%s err=%v", vehicleID, err)
				metrics.RouteLookups.WithLabelValues("error").Inc()
				return
			}
			metrics.RouteLookups.WithLabelValues("ok").Inc()
			results[slot] = road
		}(i, route.VehicleID, points)
	}

	wg.Wait()
	return results
}

// fetchRoute consults the session cache, then the shared cache, then the
// backend. Fresh results are written through both cache layers.
func (b *RouteMapBuilder) fetchRoute(ctx context.Context, points []domain.Coordinates) (*ports.RoadRoute, error) {
	key := RouteRequestKey(points)

	b.mu.Lock()
	cached, ok := b.session[key]
	b.mu.Unlock()
	if ok {
		metrics.GeometryCache.WithLabelValues("session", "hit").Inc()
		return &cached, nil
	}
	metrics.GeometryCache.WithLabelValues("session", "miss").Inc()

	if b.shared != nil {
		road, err := b.shared.Get(ctx, key)
		if err != nil {
			log.Printf("shared geometry cache read failed: %v", err)
		} else if road != nil {
			metrics.GeometryCache.WithLabelValues("shared", "hit").Inc()
			b.storeSession(key, *road)
			return road, nil
		} else {
			metrics.GeometryCache.WithLabelValues("shared", "miss").Inc()
		}
	}

	road, err := b.provider.FetchRoute(ctx, points)
	if err != nil {
		return nil, err
	}
	if len(road.Geometry) == 0 {
		return nil, errors.New("routing backend returned no usable geometry")
	}

	b.storeSession(key, road)
	if b.shared != nil {
		if err := b.shared.Put(ctx, key, road); err != nil {
			log.Printf("shared geometry cache write failed: %v", err)
		}
	}
	return &road, nil
}

func (b *RouteMapBuilder) storeSession(key string, road ports.RoadRoute) {
	b.mu.Lock()
	b.session[key] = road
	b.mu.Unlock()
}

// RouteRequestKey derives the cache key for one vehicle's ordered stop
// sequence. Different stop order means a different key.
func RouteRequestKey(points []domain.Coordinates) string {
	tokens := make([]string, 0, len(points))
	for _, p := range points {
		tokens = append(tokens, p.PathToken())
	}
	return strings.Join(tokens, ";")
}

// straightLineView draws every route as straight segments between its
// consecutive stops. Used for the global fallback and when no routing
// backend is configured; road metrics are never computed here.
func straightLineView(routes []domain.SolutionRoute) RouteMapView {
	view := RouteMapView{
		Markers:   []StopMarker{},
		Polylines: []Polyline{},
		Fallback:  true,
	}
	for i, route := range routes {
		color := routeColor(i)
		points := routeStopPoints(route)
		if len(points) > 0 {
			view.Polylines = append(view.Polylines, Polyline{
				Points:  points,
				Color:   color,
				Weight:  4,
				Opacity: 0.8,
			})
		}
		view.Markers = append(view.Markers, stopMarkers(route, color)...)
	}
	view.Bounds = viewBounds(view, boundsPadRatio)
	return view
}
