package dto

import (
	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/services"
)

type CompileRequest struct {
	Scenario domain.ScenarioData `json:"scenario"`
}

type CompileResponse struct {
	Request domain.OptimizeRequest `json:"request"`
}

type OptimizeRequest struct {
	Scenario domain.ScenarioData `json:"scenario"`
}

// OptimizeResponse carries both the verbatim response text and its parsed
// form. Raw is always present so the console can show exactly what the
// solver returned.
type OptimizeResponse struct {
	Raw      string           `json:"raw"`
	Solution *domain.Solution `json:"solution,omitempty"`
}

type RouteMapRequest struct {
	Scenario domain.ScenarioData `json:"scenario"`
	Solution *domain.Solution    `json:"solution,omitempty"`
}

type RouteMapResponse struct {
	View services.RouteMapView `json:"view"`
}

type HistoryResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
}
