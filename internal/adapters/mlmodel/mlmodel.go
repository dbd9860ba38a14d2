// Package mlmodel loads the trained congestion regression artifact from
// disk and serves predictions from it.
//
// The artifact is a JSON file exported by the offline training job:
// a linear model (one weight per feature plus a bias) and the fitted
// categorical encoder tables.
package mlmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/traffixlab/traffix/internal/domain/forecast"
	"github.com/traffixlab/traffix/pkg/logger"
	"github.com/traffixlab/traffix/pkg/metrics"
)

// artifact mirrors the on-disk JSON layout.
type artifact struct {
	Weights  []float64                 `json:"weights"`
	Bias     float64                   `json:"bias"`
	Encoders map[string]map[string]int `json:"encoders"`
}

// Model implements forecast.Provider backed by a JSON artifact file.
// The file may not exist at startup; TryLoad re-attempts on every call
// until an artifact appears.
type Model struct {
	path string

	mu     sync.RWMutex
	loaded bool
	art    artifact

	logger logger.Logger
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithLogger sets a custom logger for the model.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a model provider reading its artifact from path.
func New(path string, opts ...Option) *Model {
	m := &Model{
		path:   path,
		logger: logger.Get().Named("mlmodel"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TryLoad loads the artifact if not already loaded.
func (m *Model) TryLoad(ctx context.Context) error {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		metrics.RecordModelLoadError()
		return fmt.Errorf("reading model artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		metrics.RecordModelLoadError()
		return fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	if len(art.Weights) != forecast.FeatureCount {
		metrics.RecordModelLoadError()
		return fmt.Errorf("%w: expected %d weights, got %d",
			ErrBadArtifact, forecast.FeatureCount, len(art.Weights))
	}

	m.art = art
	m.loaded = true
	metrics.UpdateModelLoaded(true)
	m.logger.Info(ctx, "model artifact loaded",
		logger.String("path", m.path),
		logger.Int("encoders", len(art.Encoders)),
	)
	return nil
}

// Loaded reports whether a usable artifact is in memory.
func (m *Model) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Predict runs the linear regression over the feature vector.
func (m *Model) Predict(features []float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return 0, ErrNotLoaded
	}
	if len(features) != len(m.art.Weights) {
		return 0, fmt.Errorf("%w: expected %d, got %d",
			ErrBadFeatureVector, len(m.art.Weights), len(features))
	}

	sum := m.art.Bias
	for i, w := range m.art.Weights {
		sum += w * features[i]
	}
	return sum, nil
}

// Encode maps a categorical value to its fitted integer code. Unseen
// features and values map to 0.
func (m *Model) Encode(feature, value string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.art.Encoders[feature]
	if !ok {
		return 0
	}
	return table[value]
}
