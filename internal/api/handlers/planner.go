package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mbenhaddou/optimisation-service/internal/api/dto"
	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
	"github.com/mbenhaddou/optimisation-service/internal/services"
)

type PlannerHandler struct {
	Optimizer ports.Optimizer
	Maps      *services.RouteMapBuilder
	Store     ports.ScenarioStore
}

// Compile returns the request the scenario would submit, without submitting
// it. The console renders this as the request preview.
func (h *PlannerHandler) Compile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.CompileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	compiled := services.BuildOptimizeRequest(req.Scenario.WithDefaults())
	writeJSON(w, r, http.StatusOK, dto.CompileResponse{Request: compiled})
}

// Optimize compiles the scenario, submits it and records the exchange in
// the request history. The raw response body is returned alongside the
// parsed solution in every case, including solver failures.
func (h *PlannerHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.Optimizer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "optimizer is not configured")
		return
	}

	compiled := services.BuildOptimizeRequest(req.Scenario.WithDefaults())

	start := time.Now()
	outcome, err := h.Optimizer.Optimize(r.Context(), compiled)
	latency := int(time.Since(start).Milliseconds())

	entry := domain.HistoryEntry{
		ID:        uuid.NewString(),
		At:        time.Now().UTC(),
		Method:    http.MethodPost,
		Path:      "/v1/optimize",
		LatencyMs: latency,
	}

	if err != nil {
		var failure *ports.Failure
		if errors.As(err, &failure) {
			entry.Error = failure.Message
			h.recordHistory(r, entry)

			status := http.StatusBadGateway
			if failure.Kind == ports.FailureServer {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, r, status, map[string]any{
				"error": failure.Message,
				"raw":   outcome.Raw,
			})
			return
		}

		entry.Error = "internal error"
		h.recordHistory(r, entry)
		log.Printf("optimize failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	entry.Status = http.StatusOK
	h.recordHistory(r, entry)

	// A new solution invalidates any route map still rendering.
	if h.Maps != nil {
		h.Maps.Invalidate()
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponse{
		Raw:      outcome.Raw,
		Solution: outcome.Solution,
	})
}

// RouteMap turns a scenario and an optional solution into drawable map
// primitives. Without a solution the result is the editing preview.
func (h *PlannerHandler) RouteMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.RouteMapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.Maps == nil {
		writeError(w, r, http.StatusServiceUnavailable, "route rendering is not configured")
		return
	}

	view, err := h.Maps.Render(r.Context(), req.Scenario.WithDefaults(), req.Solution)
	if err != nil {
		if errors.Is(err, services.ErrStaleRender) {
			writeError(w, r, http.StatusConflict, "render superseded")
			return
		}
		log.Printf("route map render failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteMapResponse{View: view})
}

func (h *PlannerHandler) recordHistory(r *http.Request, entry domain.HistoryEntry) {
	if h.Store == nil {
		return
	}
	if err := h.Store.AppendHistory(r.Context(), entry); err != nil {
		log.Printf("append history failed: %v", err)
	}
}
