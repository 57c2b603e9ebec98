package handlers

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rotationlab/backend/internal/contracts"
	"github.com/rotationlab/backend/pkg/logger"
)

// Runner triggers one pipeline pass.
type Runner interface {
	Run(ctx context.Context, asOf time.Time, forceReplay bool) (*contracts.RunReport, error)
}

// RunHandler exposes on-demand pipeline execution. At most one run at a
// time; a second trigger while one is in flight gets 409.
type RunHandler struct {
	runner  Runner
	logger  *logger.Logger
	running atomic.Bool
}

// NewRunHandler creates a run handler.
func NewRunHandler(runner Runner, log *logger.Logger) *RunHandler {
	return &RunHandler{runner: runner, logger: log}
}

// Trigger executes a pipeline run synchronously.
// POST /api/run?replay=1
func (h *RunHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		respondError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer h.running.Store(false)

	forceReplay := r.URL.Query().Get("replay") == "1"

	rep, err := h.runner.Run(r.Context(), time.Now(), forceReplay)
	if err != nil {
		h.logger.WithError(err).Error("triggered run failed")
		respondError(w, http.StatusInternalServerError, "pipeline run failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "completed",
		"date":   rep.Metadata.Date,
	})
}
