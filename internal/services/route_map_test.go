package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// providerFunc adapts a function to the RouteProvider port.
type providerFunc func(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error)

func (f providerFunc) FetchRoute(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error) {
	return f(ctx, points)
}

// countingProvider records how many lookups reach the backend.
type countingProvider struct {
	calls int
	route ports.RoadRoute
	err   error
}

func (p *countingProvider) FetchRoute(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error) {
	p.calls++
	if p.err != nil {
		return ports.RoadRoute{}, p.err
	}
	return p.route, nil
}

func twoStopRoute(vehicleID string) domain.SolutionRoute {
	return domain.SolutionRoute{
		VehicleID: vehicleID,
		Stops: []domain.SolutionStop{
			{Location: &domain.LatLng{Lat: 50.84, Lng: 4.35}},
			{Location: &domain.LatLng{Lat: 50.86, Lng: 4.37}},
		},
	}
}

func roadRoute() ports.RoadRoute {
	return ports.RoadRoute{
		Geometry: []domain.Coordinates{
			{Lat: 50.84, Lng: 4.35},
			{Lat: 50.85, Lng: 4.36},
			{Lat: 50.86, Lng: 4.37},
		},
		DistanceMeters:  2500,
		DurationSeconds: 420,
	}
}

func TestRenderPreviewWithoutSolution(t *testing.T) {
	builder := NewRouteMapBuilder(nil, nil)

	scenario := domain.NewScenario()
	scenario.Vehicles[0].StartLat = "50.84"
	scenario.Vehicles[0].StartLng = "4.35"
	scenario.Tasks[0].Lat = "50.86"
	scenario.Tasks[0].Lng = "4.37"

	view, err := builder.Render(context.Background(), scenario, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !view.Preview {
		t.Fatal("expected preview view")
	}
	if len(view.Markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(view.Markers))
	}
	if view.Markers[0].Color != "#0f172a" {
		t.Fatalf("vehicle marker color = %q", view.Markers[0].Color)
	}
	if view.Markers[1].Color != "#f97316" {
		t.Fatalf("task marker color = %q", view.Markers[1].Color)
	}
	if len(view.Polylines) != 1 || !view.Polylines[0].Dashed {
		t.Fatalf("polylines = %+v", view.Polylines)
	}
	if view.Bounds == nil {
		t.Fatal("expected bounds")
	}
}

func TestRenderPreviewSkipsBlankCoordinates(t *testing.T) {
	builder := NewRouteMapBuilder(nil, nil)

	scenario := domain.NewScenario()
	// Nothing typed yet: no markers, no guide line, no bounds.
	view, err := builder.Render(context.Background(), scenario, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Markers) != 0 || len(view.Polylines) != 0 {
		t.Fatalf("view = %+v", view)
	}
	if view.Bounds != nil {
		t.Fatalf("bounds = %+v, want nil", view.Bounds)
	}
}

func TestRenderStraightLinesWithoutProvider(t *testing.T) {
	builder := NewRouteMapBuilder(nil, nil)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{twoStopRoute("van_1")}}
	view, err := builder.Render(context.Background(), domain.NewScenario(), solution)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !view.Fallback {
		t.Fatal("expected straight-line fallback")
	}
	if len(view.Polylines) != 1 {
		t.Fatalf("polylines = %d, want 1", len(view.Polylines))
	}
	if len(view.Polylines[0].Points) != 2 {
		t.Fatalf("polyline points = %d, want 2", len(view.Polylines[0].Points))
	}
	if len(view.Metrics) != 0 {
		t.Fatalf("metrics = %+v, want none for straight lines", view.Metrics)
	}
}

func TestRenderRoadGeometryAndMetrics(t *testing.T) {
	provider := &countingProvider{route: roadRoute()}
	builder := NewRouteMapBuilder(provider, nil)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{twoStopRoute("van_1")}}
	view, err := builder.Render(context.Background(), domain.NewScenario(), solution)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Fallback {
		t.Fatal("unexpected fallback")
	}
	if len(view.Polylines) != 1 || len(view.Polylines[0].Points) != 3 {
		t.Fatalf("polylines = %+v", view.Polylines)
	}
	if view.Polylines[0].Color != "#f97316" {
		t.Fatalf("route color = %q", view.Polylines[0].Color)
	}

	m, ok := view.Metrics["van_1"]
	if !ok {
		t.Fatalf("metrics = %+v", view.Metrics)
	}
	if m.DistanceKm != 2.5 {
		t.Fatalf("distance = %v km, want 2.5", m.DistanceKm)
	}
	if m.DurationMin != 7 {
		t.Fatalf("duration = %v min, want 7", m.DurationMin)
	}
}

func TestRenderSessionCacheReuse(t *testing.T) {
	provider := &countingProvider{route: roadRoute()}
	builder := NewRouteMapBuilder(provider, nil)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{twoStopRoute("van_1")}}

	for i := 0; i < 3; i++ {
		if _, err := builder.Render(context.Background(), domain.NewScenario(), solution); err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
	}

	if provider.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", provider.calls)
	}

	// Invalidation clears the session cache, so the next render refetches.
	builder.Invalidate()
	if _, err := builder.Render(context.Background(), domain.NewScenario(), solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("backend calls = %d, want 2 after invalidation", provider.calls)
	}
}

func TestRenderSharedCacheWriteThrough(t *testing.T) {
	provider := &countingProvider{route: roadRoute()}
	shared := &fakeGeometryCache{routes: map[string]ports.RoadRoute{}}
	builder := NewRouteMapBuilder(provider, shared)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{twoStopRoute("van_1")}}
	if _, err := builder.Render(context.Background(), domain.NewScenario(), solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shared.routes) != 1 {
		t.Fatalf("shared cache entries = %d, want 1", len(shared.routes))
	}

	// A fresh builder with the same shared cache never hits the backend.
	second := NewRouteMapBuilder(provider, shared)
	if _, err := second.Render(context.Background(), domain.NewScenario(), solution); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", provider.calls)
	}
}

func TestRenderGlobalFallbackWhenEveryLookupFails(t *testing.T) {
	provider := &countingProvider{err: errors.New("backend down")}
	builder := NewRouteMapBuilder(provider, nil)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{
		twoStopRoute("van_1"),
		twoStopRoute("van_2"),
	}}

	view, err := builder.Render(context.Background(), domain.NewScenario(), solution)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.Fallback {
		t.Fatal("expected global straight-line fallback")
	}
	if len(view.Polylines) != 2 {
		t.Fatalf("polylines = %d, want 2", len(view.Polylines))
	}
}

func TestRenderPartialFailureKeepsMarkersOnly(t *testing.T) {
	good := twoStopRoute("van_1")
	bad := domain.SolutionRoute{
		VehicleID: "van_2",
		Stops: []domain.SolutionStop{
			{Location: &domain.LatLng{Lat: 51.0, Lng: 4.5}},
			{Location: &domain.LatLng{Lat: 51.1, Lng: 4.6}},
		},
	}

	provider := providerFunc(func(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error) {
		if points[0].Lat == 50.84 {
			return roadRoute(), nil
		}
		return ports.RoadRoute{}, errors.New("no road found")
	})
	builder := NewRouteMapBuilder(provider, nil)

	solution := &domain.Solution{Routes: []domain.SolutionRoute{good, bad}}
	view, err := builder.Render(context.Background(), domain.NewScenario(), solution)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Fallback {
		t.Fatal("one successful route must not trigger the global fallback")
	}
	// Only van_1 draws a line; van_2 keeps its markers.
	if len(view.Polylines) != 1 {
		t.Fatalf("polylines = %d, want 1", len(view.Polylines))
	}
	if len(view.Markers) != 4 {
		t.Fatalf("markers = %d, want 4", len(view.Markers))
	}
	if _, ok := view.Metrics["van_2"]; ok {
		t.Fatal("failed vehicle must not report road metrics")
	}
}

func TestRenderStaleGenerationDiscarded(t *testing.T) {
	builder := NewRouteMapBuilder(nil, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	builder.provider = providerFunc(func(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error) {
		close(started)
		<-release
		return roadRoute(), nil
	})

	solution := &domain.Solution{Routes: []domain.SolutionRoute{twoStopRoute("van_1")}}

	done := make(chan error, 1)
	go func() {
		_, err := builder.Render(context.Background(), domain.NewScenario(), solution)
		done <- err
	}()

	<-started
	builder.Invalidate()
	close(release)

	if err := <-done; !errors.Is(err, ErrStaleRender) {
		t.Fatalf("error = %v, want ErrStaleRender", err)
	}
}

func TestDirectionArrowStride(t *testing.T) {
	geometry := make([]domain.Coordinates, 100)
	for i := range geometry {
		geometry[i] = domain.Coordinates{Lat: float64(i), Lng: float64(i)}
	}

	arrows := directionArrows(geometry)
	// stride = max(8, 100/8) = 12, indicators at 12, 24, ..., 96.
	if len(arrows) != 8 {
		t.Fatalf("arrows = %d, want 8", len(arrows))
	}
	if arrows[0].Point.Lat != 12 {
		t.Fatalf("first arrow at lat %v, want 12", arrows[0].Point.Lat)
	}

	if got := directionArrows(geometry[:2]); got != nil {
		t.Fatalf("short geometry arrows = %+v, want none", got)
	}
}

func TestStopMarkersKeepGapsInNumbering(t *testing.T) {
	route := domain.SolutionRoute{
		VehicleID: "van_1",
		Stops: []domain.SolutionStop{
			{Location: &domain.LatLng{Lat: 1, Lng: 1}},
			{Location: nil},
			{Location: &domain.LatLng{Lat: 3, Lng: 3}},
		},
	}

	markers := stopMarkers(route, "#f97316")
	if len(markers) != 2 {
		t.Fatalf("markers = %d, want 2", len(markers))
	}
	if markers[0].Seq != 1 || markers[1].Seq != 3 {
		t.Fatalf("seq = %d, %d, want 1, 3", markers[0].Seq, markers[1].Seq)
	}
}

func TestRouteColorCycles(t *testing.T) {
	if routeColor(0) != "#f97316" || routeColor(4) != "#f97316" {
		t.Fatalf("palette does not cycle: %q, %q", routeColor(0), routeColor(4))
	}
	if routeColor(3) != "#a855f7" {
		t.Fatalf("routeColor(3) = %q", routeColor(3))
	}
}

func TestViewBoundsPadding(t *testing.T) {
	view := RouteMapView{
		Markers: []StopMarker{
			{Point: domain.Coordinates{Lat: 50, Lng: 4}},
			{Point: domain.Coordinates{Lat: 51, Lng: 5}},
		},
	}

	b := viewBounds(view, 0.2)
	if b == nil {
		t.Fatal("expected bounds")
	}
	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	if !near(b.MinLat, 49.8) || !near(b.MaxLat, 51.2) {
		t.Fatalf("lat bounds = [%v, %v]", b.MinLat, b.MaxLat)
	}
	if !near(b.MinLng, 3.8) || !near(b.MaxLng, 5.2) {
		t.Fatalf("lng bounds = [%v, %v]", b.MinLng, b.MaxLng)
	}
}

// fakeGeometryCache is an in-memory GeometryCache double.
type fakeGeometryCache struct {
	routes map[string]ports.RoadRoute
}

func (c *fakeGeometryCache) Get(ctx context.Context, key string) (*ports.RoadRoute, error) {
	route, ok := c.routes[key]
	if !ok {
		return nil, nil
	}
	return &route, nil
}

func (c *fakeGeometryCache) Put(ctx context.Context, key string, route ports.RoadRoute) error {
	c.routes[key] = route
	return nil
}
