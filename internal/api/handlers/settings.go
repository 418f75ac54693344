package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mbenhaddou/optimisation-service/internal/api/dto"
	"github.com/mbenhaddou/optimisation-service/internal/domain"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
)

type SettingsHandler struct {
	Store ports.ScenarioStore
}

func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.Store.LoadSettings(r.Context())
		if err != nil {
			log.Printf("load settings failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, r, http.StatusOK, settings)

	case http.MethodPut:
		var settings domain.Settings
		if !decodeJSON(w, r, &settings) {
			return
		}
		if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
			log.Printf("save settings failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, r, http.StatusOK, settings)

	default:
		methodNotAllowed(w, r, "GET, PUT")
	}
}

func (h *SettingsHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	entries, err := h.Store.ListHistory(r.Context())
	if err != nil {
		log.Printf("list history failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HistoryResponse{Entries: entries})
}

// ConsoleState persists the console's in-flight state as an opaque JSON
// document. The server never interprets it.
func (h *SettingsHandler) ConsoleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		state, err := h.Store.LoadConsoleState(r.Context())
		if err != nil {
			log.Printf("load console state failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		if state == nil {
			state = []byte("null")
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(state); err != nil {
			log.Printf("write console state failed: %v", err)
		}

	case http.MethodPut:
		var state json.RawMessage
		dec := json.NewDecoder(r.Body)
		defer r.Body.Close()
		if err := dec.Decode(&state); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := h.Store.SaveConsoleState(r.Context(), state); err != nil {
			log.Printf("save console state failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, "GET, PUT")
	}
}
