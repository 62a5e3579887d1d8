package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

// analyzeRequest asks for an analysis of a server-local file. Engine
// settings not supplied keep their configured defaults.
type analyzeRequest struct {
	Path string `json:"path"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze reads the requested file, runs the full analysis and
// returns the aggregate result. Cached fingerprints return instantly.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	ds, err := a.reader.Read(r.Context(), req.Path)
	if err != nil {
		a.log.Warn("dataset read failed: %v", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := a.analyzer.Analyze(r.Context(), ds, a.engineCfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		a.log.Error("analysis failed: %v", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetResult returns a previously computed result by fingerprint
func (a *App) handleGetResult(w http.ResponseWriter, r *http.Request) {
	result, ok := a.findResult(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetReport renders a previously computed result as HTML
func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	result, ok := a.findResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(a.generator.HTML(result))
}

func (a *App) findResult(w http.ResponseWriter, r *http.Request) (*analysis.AnalysisResult, bool) {
	fp := core.Fingerprint(chi.URLParam(r, "fingerprint"))
	if fp == "" {
		writeError(w, http.StatusBadRequest, "fingerprint is required")
		return nil, false
	}
	if a.store == nil {
		writeError(w, http.StatusNotFound, "no result store configured")
		return nil, false
	}

	result, err := a.store.Find(r.Context(), fp)
	if err != nil {
		if errors.Is(err, core.ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
		} else {
			a.log.Error("result lookup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "result lookup failed")
		}
		return nil, false
	}
	return result, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
