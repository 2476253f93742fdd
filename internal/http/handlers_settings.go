package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"finjar/internal/core"
)

type settingsPayload struct {
	DefaultPeriod string `json:"defaultPeriod"`
	DefaultJar    string `json:"defaultJar"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetSettings(w, r)
	case http.MethodPut:
		s.handlePutSettings(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	period, err := s.settings.DefaultPeriod(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load default period", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	jar, err := s.settings.DefaultJar(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load default jar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsPayload{
		DefaultPeriod: string(period),
		DefaultJar:    jar,
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}

	period, err := core.ParsePeriod(payload.DefaultPeriod)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid period: "+payload.DefaultPeriod)
		return
	}

	if err := s.settings.SetDefaultPeriod(r.Context(), period); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store default period", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store settings")
		return
	}
	if err := s.settings.SetDefaultJar(r.Context(), payload.DefaultJar); err != nil {
		slog.ErrorContext(r.Context(), "Failed to store default jar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store settings")
		return
	}

	jar, err := s.settings.DefaultJar(r.Context())
	if err != nil {
		jar = payload.DefaultJar
	}
	writeJSON(w, http.StatusOK, settingsPayload{
		DefaultPeriod: string(period),
		DefaultJar:    jar,
	})
}
