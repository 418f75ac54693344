package cache

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

// In-process geometry cache. Used when no database or Redis is configured,
// and as the cache double in tests.
type MemoryGeometryCache struct {
	mu     sync.RWMutex
	routes map[string]ports.RoadRoute
}

func NewMemoryGeometryCache() *MemoryGeometryCache {
	return &MemoryGeometryCache{routes: map[string]ports.RoadRoute{}}
}

func (m *MemoryGeometryCache) Get(ctx context.Context, key string) (*ports.RoadRoute, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("get geometry cache: key must not be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	route, ok := m.routes[key]
	if !ok {
		return nil, nil
	}
	return &route, nil
}

func (m *MemoryGeometryCache) Put(ctx context.Context, key string, route ports.RoadRoute) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geometry cache: key must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.routes[key] = route
	return nil
}

func (m *MemoryGeometryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes)
}
