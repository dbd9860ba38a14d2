package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/traffixlab/traffix/internal/domain/graph"
	"github.com/traffixlab/traffix/internal/domain/route"
	"github.com/traffixlab/traffix/internal/domain/types"
)

// RouteDependencies defines the interface for shortest-path queries.
type RouteDependencies interface {
	FindPath(ctx context.Context, source, target string, regime graph.Regime) (types.Path, error)
}

// RouteHandler handles shortest-path requests.
type RouteHandler struct {
	deps RouteDependencies
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(deps RouteDependencies) *RouteHandler {
	return &RouteHandler{deps: deps}
}

// HandleGetRoute handles GET /route?source=X&target=Y&regime=current requests.
func (h *RouteHandler) HandleGetRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	source := strings.TrimSpace(q.Get("source"))
	target := strings.TrimSpace(q.Get("target"))
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: source and target are required", ErrBadRequest))
		return
	}

	regime, ok := graph.ParseRegime(q.Get("regime"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: regime must be 'current' or 'optimized'", ErrBadRequest))
		return
	}

	path, err := h.deps.FindPath(r.Context(), source, target, regime)
	if err != nil {
		switch {
		case errors.Is(err, route.ErrNodeNotFound):
			writeError(w, http.StatusNotFound, "node_not_found", err)
		case errors.Is(err, route.ErrNoRoute):
			writeError(w, http.StatusNotFound, "no_route", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, path)
}
