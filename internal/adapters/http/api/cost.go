package api

import (
	"context"
	"net/http"

	"github.com/traffixlab/traffix/internal/domain/types"
)

// CostDependencies defines the interface for the monetized report.
type CostDependencies interface {
	CostSummary(ctx context.Context) types.NetworkCost
}

// CostHandler handles network-cost requests.
type CostHandler struct {
	deps CostDependencies
}

// NewCostHandler creates a new cost handler.
func NewCostHandler(deps CostDependencies) *CostHandler {
	return &CostHandler{deps: deps}
}

// HandleGetCost handles GET /network-cost requests.
func (h *CostHandler) HandleGetCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CostSummary(r.Context()))
}
