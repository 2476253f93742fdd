package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"finjar/internal/backend"
	"finjar/internal/core"
)

type reportResponse struct {
	Report *core.ReportData `json:"report"`
	Error  string           `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// reportSelection resolves period and jar from the query, falling back to the
// stored defaults when a parameter is absent.
func (s *Server) reportSelection(r *http.Request) (core.Period, string, error) {
	q := r.URL.Query()

	var period core.Period
	if raw := strings.TrimSpace(q.Get("period")); raw != "" {
		p, err := core.ParsePeriod(raw)
		if err != nil {
			return "", "", fmt.Errorf("period %q: %w", raw, err)
		}
		period = p
	} else {
		p, err := s.settings.DefaultPeriod(r.Context())
		if err != nil {
			slog.WarnContext(r.Context(), "Failed to load default period", "error", err)
			p = core.PeriodAll
		}
		period = p
	}

	jar := strings.TrimSpace(q.Get("jar"))
	if jar == "" {
		stored, err := s.settings.DefaultJar(r.Context())
		if err != nil {
			slog.WarnContext(r.Context(), "Failed to load default jar", "error", err)
			stored = core.AllJarsFilter
		}
		jar = stored
	}

	return period, jar, nil
}

func backendStatus(err error) int {
	// A missing token is a deployment problem, not an upstream one.
	if errors.Is(err, backend.ErrAuthMissing) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period, jar, err := s.reportSelection(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := s.reports.Report(r.Context(), period, jar)
	if err != nil && report == nil {
		slog.ErrorContext(r.Context(), "Report error", "error", err, "period", period, "jar", jar)
		writeError(w, backendStatus(err), err.Error())
		return
	}

	resp := reportResponse{Report: report}
	if err == nil {
		// A refresh failure with a previous snapshot is swallowed by the
		// service so stale data keeps flowing; surface it here.
		err = s.reports.LastError()
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.reports.Refresh(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Manual refresh failed", "error", err)
		writeError(w, backendStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period, jar, err := s.reportSelection(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := s.reports.Report(r.Context(), period, jar)
	if err != nil && report == nil {
		slog.ErrorContext(r.Context(), "Export report error", "error", err, "period", period, "jar", jar)
		writeError(w, backendStatus(err), err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "no report data to export")
		return
	}

	filename := core.ReportFilename(report.GeneratedAt)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := core.WriteJarPerformanceCSV(w, report.JarPerformance); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err, "filename", filename)
	}
}
