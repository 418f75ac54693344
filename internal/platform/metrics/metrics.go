package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the planner service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)

	// OptimizeSubmissions counts optimization submissions by outcome
	// (ok, transport_error, server_error).
	OptimizeSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_submissions_total", Help: "Optimization submissions by outcome."},
		[]string{"outcome"},
	)

	// RouteLookups counts routing-backend lookups by result (ok, error).
	RouteLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_lookups_total", Help: "Routing backend lookups by result."},
		[]string{"result"},
	)

	// GeometryCache counts geometry-cache accesses by layer and outcome.
	GeometryCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geometry_cache_total", Help: "Geometry cache accesses by layer (session, shared) and outcome (hit, miss)."},
		[]string{"layer", "outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(OptimizeSubmissions)
		Registry.MustRegister(RouteLookups)
		Registry.MustRegister(GeometryCache)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
