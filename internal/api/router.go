package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbenhaddou/optimisation-service/internal/api/handlers"
	"github.com/mbenhaddou/optimisation-service/internal/platform/metrics"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
	"github.com/mbenhaddou/optimisation-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	store ports.ScenarioStore,
	optimizer ports.Optimizer,
	routeMaps *services.RouteMapBuilder,
) http.Handler {
	mux := http.NewServeMux()

	scenarioHandler := &handlers.ScenarioHandler{Store: store}
	settingsHandler := &handlers.SettingsHandler{Store: store}
	plannerHandler := &handlers.PlannerHandler{
		Optimizer: optimizer,
		Maps:      routeMaps,
		Store:     store,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/settings", settingsHandler.Settings)
	mux.HandleFunc("/history", settingsHandler.History)
	mux.HandleFunc("/console/state", settingsHandler.ConsoleState)
	mux.HandleFunc("/scenarios", scenarioHandler.Collection)
	mux.HandleFunc("/scenarios/", scenarioHandler.Item)
	mux.HandleFunc("/planner/compile", plannerHandler.Compile)
	mux.HandleFunc("/planner/optimize", plannerHandler.Optimize)
	mux.HandleFunc("/planner/routemap", plannerHandler.RouteMap)

	mux.Handle("/metrics", promhttp.HandlerFor(
		metrics.Registry, promhttp.HandlerOpts{},
	))

	return loggingMiddleware(mux)
}
