package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/mbenhaddou/optimisation-service/internal/api/dto"
	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

type ScenarioHandler struct {
	Store ports.ScenarioStore
}

// Collection handles the scenario list: GET returns every saved scenario
// newest first, POST saves a snapshot under a name.
func (h *ScenarioHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		methodNotAllowed(w, r, "GET, POST")
	}
}

// Item handles /scenarios/{id} and the /scenarios/sample shortcut.
func (h *ScenarioHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/scenarios/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if id == "sample" {
		h.sample(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		methodNotAllowed(w, r, "GET, DELETE")
	}
}

func (h *ScenarioHandler) list(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.Store.ListScenarios(r.Context())
	if err != nil {
		log.Printf("list scenarios failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListScenariosResponse{Scenarios: scenarios})
}

func (h *ScenarioHandler) save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	saved, err := h.Store.SaveScenario(r.Context(), name, req.Data)
	if err != nil {
		log.Printf("save scenario failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, saved)
}

func (h *ScenarioHandler) sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	writeJSON(w, r, http.StatusOK, domain.SampleScenario())
}

func (h *ScenarioHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	scenario, err := h.Store.GetScenario(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "scenario not found")
			return
		}
		log.Printf("get scenario failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, scenario)
}

func (h *ScenarioHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Store.DeleteScenario(r.Context(), id); err != nil {
		log.Printf("delete scenario failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
