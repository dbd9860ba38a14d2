package api

import (
	"context"
	"net/http"
)

// NodesDependencies defines the interface for node listing.
type NodesDependencies interface {
	ListNodes(ctx context.Context) []string
}

// NodesHandler handles node listing requests.
type NodesHandler struct {
	deps NodesDependencies
}

// NewNodesHandler creates a new nodes handler.
func NewNodesHandler(deps NodesDependencies) *NodesHandler {
	return &NodesHandler{deps: deps}
}

type nodesResponse struct {
	Nodes []string `json:"nodes"`
	Count int      `json:"count"`
}

// HandleGetNodes handles GET /nodes requests.
func (h *NodesHandler) HandleGetNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	nodes := h.deps.ListNodes(r.Context())
	if nodes == nil {
		nodes = []string{}
	}
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: nodes, Count: len(nodes)})
}
