package api

import (
	"context"
	"net/http"

	"github.com/traffixlab/traffix/internal/domain/types"
)

// StatusDependencies defines the interface for the dashboard report.
type StatusDependencies interface {
	TrafficStatus(ctx context.Context) types.StatusReport
}

// StatusHandler handles traffic-status requests.
type StatusHandler struct {
	deps StatusDependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps StatusDependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleGetStatus handles GET /traffic-status requests. An empty
// snapshot yields a well-formed empty report, not an error.
func (h *StatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report := h.deps.TrafficStatus(r.Context())
	if report.GraphData == nil {
		report.GraphData = []types.GraphEdge{}
	}
	writeJSON(w, http.StatusOK, report)
}
