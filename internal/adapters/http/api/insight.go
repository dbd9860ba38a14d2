package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/traffixlab/traffix/internal/adapters/insight"
	"github.com/traffixlab/traffix/internal/domain/types"
)

// InsightDependencies defines the interface for situation analysis.
type InsightDependencies interface {
	Insight(ctx context.Context, req insight.Request) types.Insight
}

// InsightHandler handles conversational analysis requests.
type InsightHandler struct {
	deps InsightDependencies
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(deps InsightDependencies) *InsightHandler {
	return &InsightHandler{deps: deps}
}

// insightRequest mirrors the OpenAPI schema for POST /ai-insight.
type insightRequest struct {
	PoA        float64 `json:"poa"`
	Location   string  `json:"location"`
	Congestion float64 `json:"congestion"`
	Intent     string  `json:"intent,omitempty"`
	Query      string  `json:"query,omitempty"`
}

// HandleInsight handles POST /ai-insight requests. Upstream failures
// come back as a canned 200 answer, never an error status.
func (h *InsightHandler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req insightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	answer := h.deps.Insight(r.Context(), insight.Request{
		PoA:        req.PoA,
		Location:   req.Location,
		Congestion: req.Congestion,
		Intent:     req.Intent,
		Query:      req.Query,
	})
	writeJSON(w, http.StatusOK, answer)
}
