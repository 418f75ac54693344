package routing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// MockRouteProvider serves canned routes keyed by the ordered coordinate
// sequence and counts how often each key is requested.
type MockRouteProvider struct {
	mu     sync.Mutex
	routes map[string]ports.RoadRoute
	calls  map[string]int
}

func NewMockRouteProvider() *MockRouteProvider {
	return &MockRouteProvider{
		routes: map[string]ports.RoadRoute{},
		calls:  map[string]int{},
	}
}

func (p *MockRouteProvider) Set(points []domain.Coordinates, route ports.RoadRoute) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[mockKey(points)] = route
}

func (p *MockRouteProvider) Calls(points []domain.Coordinates) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[mockKey(points)]
}

func (p *MockRouteProvider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

func (p *MockRouteProvider) FetchRoute(ctx context.Context, points []domain.Coordinates) (ports.RoadRoute, error) {
	key := mockKey(points)

	p.mu.Lock()
	p.calls[key]++
	route, ok := p.routes[key]
	p.mu.Unlock()

	if !ok {
		return ports.RoadRoute{}, fmt.Errorf("no mock route for %q", key)
	}
	return route, nil
}

func mockKey(points []domain.Coordinates) string {
	tokens := make([]string, 0, len(points))
	for _, pt := range points {
		tokens = append(tokens, pt.PathToken())
	}
	return strings.Join(tokens, ";")
}
