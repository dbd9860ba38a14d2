// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/traffixlab/traffix/internal/adapters/insight"
	"github.com/traffixlab/traffix/internal/domain/forecast"
	"github.com/traffixlab/traffix/internal/domain/graph"
	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations over the current snapshot.
	ListNodes(ctx context.Context) []string
	FindPath(ctx context.Context, source, target string, regime graph.Regime) (types.Path, error)
	TrafficStatus(ctx context.Context) types.StatusReport
	CostSummary(ctx context.Context) types.NetworkCost

	// Independent query paths.
	Forecast(ctx context.Context, in forecast.Input) types.Forecast
	Insight(ctx context.Context, req insight.Request) types.Insight

	// Refresh pipeline.
	SeenAndRecord(ctx context.Context, batchID string) bool
	Unrecord(ctx context.Context, batchID string)
	Enqueue(ctx context.Context, b model.Batch) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	nodesHandler     *NodesHandler
	routeHandler     *RouteHandler
	statusHandler    *StatusHandler
	costHandler      *CostHandler
	predictHandler   *PredictHandler
	insightHandler   *InsightHandler
	snapshotHandler  *SnapshotHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		nodesHandler:     NewNodesHandler(deps),
		routeHandler:     NewRouteHandler(deps),
		statusHandler:    NewStatusHandler(deps),
		costHandler:      NewCostHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		insightHandler:   NewInsightHandler(deps),
		snapshotHandler:  NewSnapshotHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/nodes", CORSMiddleware(MetricsMiddleware(s.nodesHandler.HandleGetNodes, "nodes")))
	mux.HandleFunc("/route", CORSMiddleware(MetricsMiddleware(s.routeHandler.HandleGetRoute, "route")))
	mux.HandleFunc("/traffic-status", CORSMiddleware(MetricsMiddleware(s.statusHandler.HandleGetStatus, "traffic_status")))
	mux.HandleFunc("/network-cost", CORSMiddleware(MetricsMiddleware(s.costHandler.HandleGetCost, "network_cost")))
	mux.HandleFunc("/predict-congestion", CORSMiddleware(MetricsMiddleware(s.predictHandler.HandlePredict, "predict_congestion")))
	mux.HandleFunc("/ai-insight", CORSMiddleware(MetricsMiddleware(s.insightHandler.HandleInsight, "ai_insight")))
	mux.HandleFunc("/snapshot", CORSMiddleware(MetricsMiddleware(s.snapshotHandler.HandlePostSnapshot, "snapshot")))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	BatchID   string `json:"batch_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
