// Package handlers implements the HTTP endpoint handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/pkg/logger"
)

var etfPattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// ReportHandler serves published run artifacts straight from the output
// directory. The pipeline writes them atomically, so reading the current
// file is always consistent; no in-process cache to go stale.
type ReportHandler struct {
	dir    string
	logger *logger.Logger
}

// NewReportHandler creates a report handler rooted at the artifact dir.
func NewReportHandler(dir string, log *logger.Logger) *ReportHandler {
	return &ReportHandler{dir: dir, logger: log}
}

// GetLatest returns the full latest run report.
// GET /api/rotation/latest
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, "latest.json")
}

// GetSectorDetail returns one sector's constituent report.
// GET /api/rotation/sectors/{etf}
func (h *ReportHandler) GetSectorDetail(w http.ResponseWriter, r *http.Request) {
	etf := mux.Vars(r)["etf"]
	if !etfPattern.MatchString(etf) {
		respondError(w, http.StatusBadRequest, "invalid sector symbol")
		return
	}
	h.serveFile(w, filepath.Join("sectors", etf+".json"))
}

// GetSignalsHistory returns the signal ledger.
// GET /api/signals/history
func (h *ReportHandler) GetSignalsHistory(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, "signals_history.json")
}

// GetRegime returns just the regime call from the latest report.
// GET /api/regime
func (h *ReportHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(h.dir, "latest.json"))
	if err != nil {
		h.respondReadError(w, err, "latest.json")
		return
	}
	var rep contracts.RunReport
	if err := json.Unmarshal(data, &rep); err != nil {
		h.logger.WithError(err).Error("failed to parse latest report")
		respondError(w, http.StatusInternalServerError, "failed to parse report")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   rep.Metadata.Date,
		"regime": rep.Regime,
	})
}

func (h *ReportHandler) serveFile(w http.ResponseWriter, name string) {
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	if err != nil {
		h.respondReadError(w, err, name)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ReportHandler) respondReadError(w http.ResponseWriter, err error, name string) {
	if errors.Is(err, os.ErrNotExist) {
		respondError(w, http.StatusNotFound, "no report published yet")
		return
	}
	h.logger.WithError(err).WithField("artifact", name).Error("failed to read artifact")
	respondError(w, http.StatusInternalServerError, "failed to read report")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
