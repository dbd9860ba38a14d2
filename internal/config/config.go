// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SnapshotPath points at the CSV snapshot loaded at startup. A
	// missing file means the service starts with an empty network.
	SnapshotPath string `koanf:"snapshot_path"`

	// ModelPath points at the trained congestion model artifact.
	ModelPath string `koanf:"model_path"`

	// RefreshQueueSize bounds the in-memory refresh batch queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// DedupeSize bounds the batch-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// GraphCacheTTLSeconds bounds how long a built graph is reused for
	// an unchanged snapshot version.
	GraphCacheTTLSeconds int `koanf:"graph_cache_ttl_seconds"`

	// InsightBaseURL targets an OpenAI-compatible endpoint. Empty means
	// the default endpoint.
	InsightBaseURL string `koanf:"insight_base_url"`

	// InsightAPIKey authenticates against the insight endpoint. Empty
	// disables the live client; callers get the canned fallback.
	InsightAPIKey string `koanf:"insight_api_key"`

	// InsightModel names the chat model.
	InsightModel string `koanf:"insight_model"`

	// InsightTimeoutMS bounds each insight completion call.
	InsightTimeoutMS int `koanf:"insight_timeout_ms"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8000",
		SnapshotPath:         "data/traffic.csv",
		ModelPath:            "data/congestion_model.json",
		RefreshQueueSize:     1024,
		DedupeSize:           10_000,
		GraphCacheTTLSeconds: 30,
		InsightModel:         "gpt-4o-mini",
		InsightTimeoutMS:     10_000,
	}
}
