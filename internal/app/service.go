// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/traffixlab/traffix/internal/adapters/ingest"
	"github.com/traffixlab/traffix/internal/adapters/insight"
	"github.com/traffixlab/traffix/internal/adapters/mlmodel"
	"github.com/traffixlab/traffix/internal/adapters/mq/queue"
	"github.com/traffixlab/traffix/internal/adapters/mq/worker"
	"github.com/traffixlab/traffix/internal/adapters/repository"
	"github.com/traffixlab/traffix/internal/domain/dedupe"
	"github.com/traffixlab/traffix/internal/domain/forecast"
	"github.com/traffixlab/traffix/internal/domain/graph"
	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/internal/domain/route"
	"github.com/traffixlab/traffix/internal/domain/summary"
	"github.com/traffixlab/traffix/internal/domain/types"
	"github.com/traffixlab/traffix/pkg/logger"
	"github.com/traffixlab/traffix/pkg/metrics"
)

// InsightClient analyzes the network situation conversationally.
type InsightClient interface {
	Analyze(ctx context.Context, req insight.Request) types.Insight
}

// Service implements the API dependencies for the traffic network.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      queue.Queue
	refresher  *worker.Refresher
	forecaster *forecast.Engine
	insighter  InsightClient
	graphCache *gocache.Cache

	// Configuration
	queueSize     int
	dedupeSize    int
	snapshotPath  string
	modelPath     string
	graphCacheTTL time.Duration
	provider      forecast.Provider

	insightAPIKey  string
	insightBaseURL string
	insightModel   string
	insightTimeout time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum size of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the batch-id deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSnapshotPath sets the CSV snapshot loaded at startup.
func WithSnapshotPath(path string) Option {
	return func(s *Service) {
		s.snapshotPath = path
	}
}

// WithModelPath sets the congestion model artifact location.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithGraphCacheTTL bounds how long a built graph is reused for an
// unchanged snapshot version.
func WithGraphCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.graphCacheTTL = ttl
		}
	}
}

// WithForecastProvider overrides the model artifact provider. Used by
// tests to inject a stub model.
func WithForecastProvider(p forecast.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithInsightClient overrides the insight client. Used by tests.
func WithInsightClient(c InsightClient) Option {
	return func(s *Service) {
		s.insighter = c
	}
}

// WithInsightConfig configures the live insight client.
func WithInsightConfig(apiKey, baseURL, model string, timeout time.Duration) Option {
	return func(s *Service) {
		s.insightAPIKey = apiKey
		s.insightBaseURL = baseURL
		s.insightModel = model
		if timeout > 0 {
			s.insightTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:      1024,
		dedupeSize:     10_000,
		graphCacheTTL:  30 * time.Second,
		insightTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting traffic service...")

	s.store = repository.NewMemStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.graphCache = gocache.New(s.graphCacheTTL, 2*s.graphCacheTTL)

	if s.provider == nil && s.modelPath != "" {
		s.provider = mlmodel.New(s.modelPath)
	}
	s.forecaster = forecast.NewEngine(forecast.WithProvider(s.provider))

	if s.insighter == nil {
		s.insighter = insight.New(s.insightAPIKey, s.insightBaseURL,
			insight.WithModel(s.insightModel),
			insight.WithTimeout(s.insightTimeout),
		)
	}

	if s.snapshotPath != "" {
		rows, err := ingest.ReadFile(ctx, s.snapshotPath)
		if err != nil {
			return fmt.Errorf("loading startup snapshot: %w", err)
		}
		if len(rows) > 0 {
			version := s.store.Replace(ctx, rows)
			s.logger.Info(ctx, "startup snapshot loaded",
				logger.String("path", s.snapshotPath),
				logger.String("version", version),
				logger.Int("rows", len(rows)),
			)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.refresher = worker.NewRefresher(s.queue, s.store)
	go s.refresher.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "traffic service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("graphCacheTTL", s.graphCacheTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping traffic service...")

	_ = s.queue.Close()

	if s.refresher != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = s.refresher.Shutdown(shutdownCtx)
		cancel()
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "traffic service stopped")
}

// ListNodes returns the sorted node names of the current network.
func (s *Service) ListNodes(ctx context.Context) []string {
	return s.store.Snapshot(ctx).Nodes()
}

// networkGraph returns a graph for the regime, reusing a cached build
// while the snapshot version is unchanged.
func (s *Service) networkGraph(ctx context.Context, regime graph.Regime) *graph.Graph {
	version := s.store.Version(ctx)
	key := version + "|" + regime.String()

	if version != "" {
		if cached, ok := s.graphCache.Get(key); ok {
			metrics.RecordGraphCacheHit()
			return cached.(*graph.Graph)
		}
		metrics.RecordGraphCacheMiss()
	}

	g := graph.Build(s.store.Snapshot(ctx), regime)
	metrics.RecordGraphBuild(regime.String())

	if version != "" {
		s.graphCache.Set(key, g, gocache.DefaultExpiration)
	}
	return g
}

// FindPath runs a shortest-path query under the given regime.
func (s *Service) FindPath(ctx context.Context, source, target string, regime graph.Regime) (types.Path, error) {
	start := time.Now()

	g := s.networkGraph(ctx, regime)
	p, err := route.ShortestPath(g, source, target)

	outcome := "ok"
	if err != nil {
		outcome = "not_found"
	}
	metrics.RecordRouteQuery(regime.String(), outcome)
	metrics.RecordRouteLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		return types.Path{}, err
	}

	edges := make([]types.PathEdge, len(p.Steps))
	for i, step := range p.Steps {
		edges[i] = types.PathEdge{
			Source:            step.Source,
			Target:            step.Target,
			CongestionPercent: step.CongestionPercent,
			SpeedKmh:          step.Speed,
		}
	}
	return types.Path{
		Nodes:       p.Nodes,
		Edges:       edges,
		TotalWeight: p.TotalWeight,
		Regime:      regime.String(),
	}, nil
}

// TrafficStatus builds the dashboard report: graph rows, efficiency
// metrics and the bottleneck. An empty snapshot yields a well-formed
// empty report.
func (s *Service) TrafficStatus(ctx context.Context) types.StatusReport {
	rows := s.store.Snapshot(ctx).Current()
	sum := s.summarize(rows)

	graphData := make([]types.GraphEdge, len(rows))
	for i, r := range rows {
		edge := types.GraphEdge{
			From:       r.Source,
			To:         r.Target,
			Congestion: r.Congestion * 100,
		}
		if r.Speed != nil {
			edge.SpeedKmh = *r.Speed
		}
		if r.Flow != nil {
			edge.Flow = *r.Flow
		}
		graphData[i] = edge
	}

	report := types.StatusReport{
		GraphData: graphData,
		Metrics: types.Metrics{
			PriceOfAnarchy: sum.PriceOfAnarchy,
			NashCost:       sum.NashCost,
			OptimalCost:    sum.OptimalCost,
			Status:         sum.Status,
		},
	}
	if sum.Bottleneck != nil {
		report.Bottleneck = &types.Bottleneck{
			From:       sum.Bottleneck.Source,
			To:         sum.Bottleneck.Target,
			Congestion: sum.Bottleneck.CongestionPercent,
		}
	}
	return report
}

// CostSummary builds the currency-denominated report.
func (s *Service) CostSummary(ctx context.Context) types.NetworkCost {
	sum := s.summarize(s.store.Snapshot(ctx))

	return types.NetworkCost{
		MonetizedNashCost:    sum.MonetizedNashCost,
		MonetizedOptimalCost: sum.MonetizedOptimalCost,
		PotentialSavings:     round2(sum.MonetizedNashCost - sum.MonetizedOptimalCost),
		TotalThroughput:      sum.TotalThroughput,
		ValueOfTimePerHour:   summary.ValueOfTimePerHour,
	}
}

func (s *Service) summarize(snap model.Snapshot) summary.Summary {
	sum := summary.Summarize(snap)

	metrics.RecordSummaryComputation()
	metrics.UpdatePriceOfAnarchy(sum.PriceOfAnarchy)
	if sum.Bottleneck != nil {
		metrics.UpdateBottleneckCongestion(sum.Bottleneck.CongestionPercent)
	}
	return sum
}

// Forecast predicts congestion for a hypothetical segment.
func (s *Service) Forecast(ctx context.Context, in forecast.Input) types.Forecast {
	result := s.forecaster.Predict(ctx, in)

	tier := "model"
	if result.Degraded {
		tier = "heuristic"
		if result.Reason == forecast.ReasonPredictionFailure {
			tier = "fallback"
		}
	}
	metrics.RecordForecast(tier)

	return types.Forecast{
		Congestion: result.CongestionPercent,
		SpeedKmh:   result.Speed,
		Confidence: result.Confidence,
		Degraded:   result.Degraded,
		Reason:     result.Reason,
	}
}

// Insight passes the situation to the analysis model.
func (s *Service) Insight(ctx context.Context, req insight.Request) types.Insight {
	return s.insighter.Analyze(ctx, req)
}

// SeenAndRecord atomically checks whether a batch id was seen and
// records it if not. Returns true for duplicates.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordBatchDuplicate()
	}
	return seen
}

// Unrecord removes a batch id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a refresh batch for asynchronous application.
func (s *Service) Enqueue(ctx context.Context, b model.Batch) bool {
	return s.queue.Enqueue(ctx, b)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["snapshotRows"] = s.store.Count(ctx)
		stats["snapshotVersion"] = s.store.Version(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		stats["modelLoaded"] = s.provider != nil && s.provider.Loaded()
	}

	return stats
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
