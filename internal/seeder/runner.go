package seeder

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/traffixlab/traffix/pkg/logger"
)

const (
	directoryPermission = 0750
	applyPollInterval   = 100 * time.Millisecond
	applyPollDeadline   = 10 * time.Second
)

// Run executes the complete seeding flow: health check, generation,
// submission, and a verification pass over the read endpoints.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting traffic seeder",
		logger.String("baseURL", config.BaseURL),
		logger.Int("segments", config.Segments),
		logger.Int("nodes", config.Nodes),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	segments := generate(ctx, config, stats)

	if config.OutputFile != "" {
		if err := saveSnapshotCSV(ctx, config.OutputFile, segments); err != nil {
			logger.Get().Warn(ctx, "failed to save snapshot copy", logger.Error(err))
		}
	}

	if err := submitSnapshot(ctx, client, config, segments, stats); err != nil {
		return err
	}

	if err := waitForApply(ctx, client, config, len(segments)); err != nil {
		return err
	}

	if err := verifyRoutes(ctx, client, config, segments, stats); err != nil {
		return fmt.Errorf("route verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "seeding completed",
		logger.Int("segmentsGenerated", stats.SegmentsGenerated),
		logger.Any("batchAccepted", stats.BatchAccepted),
		logger.String("batchID", stats.BatchID),
		logger.Int("routesQueried", stats.RoutesQueried),
		logger.String("duration", stats.Duration.String()))
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForApply polls /stats until the refresher has installed at least
// the submitted row count.
func waitForApply(ctx context.Context, client *HTTPClient, config *Config, want int) error {
	deadline := time.Now().Add(applyPollDeadline)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(applyPollInterval):
		}

		resp, err := client.Get(ctx, config.BaseURL+"/stats")
		if err != nil {
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			continue
		}

		var stats map[string]interface{}
		if err := json.Unmarshal(body, &stats); err != nil {
			continue
		}
		if rows, ok := stats["snapshotRows"].(float64); ok && int(rows) >= want {
			return nil
		}
	}
	return fmt.Errorf("snapshot was not applied within %s", applyPollDeadline)
}

// verifyRoutes queries the status report and a pair of shortest paths
// over the freshly seeded network.
func verifyRoutes(ctx context.Context, client *HTTPClient, config *Config, segments []Segment, stats *Stats) error {
	resp, err := client.Get(ctx, config.BaseURL+"/traffic-status")
	if err != nil {
		return fmt.Errorf("status query failed: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status query failed with status: %d", resp.StatusCode)
	}

	if len(segments) == 0 {
		return nil
	}
	source := segments[0].Source
	target := segments[len(segments)/2].Target

	for _, regime := range []string{"current", "optimized"} {
		url := fmt.Sprintf("%s/route?source=%s&target=%s&regime=%s", config.BaseURL, source, target, regime)
		resp, err := client.Get(ctx, url)
		if err != nil {
			return fmt.Errorf("route query failed: %w", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("route %s -> %s (%s) failed with status: %d", source, target, regime, resp.StatusCode)
		}
		stats.RoutesQueried++
	}

	logger.Get().Info(ctx, "verification passed",
		logger.String("source", source),
		logger.String("target", target))
	return nil
}

// saveSnapshotCSV writes the generated segments in the startup snapshot
// schema, so the file can double as a snapshot_path input.
func saveSnapshotCSV(ctx context.Context, filename string, segments []Segment) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"source", "target", "congestion", "speed", "flow", "timestamp"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range segments {
		record := []string{
			s.Source,
			s.Target,
			strconv.FormatFloat(s.Congestion, 'f', -1, 64),
			strconv.FormatFloat(s.Speed, 'f', -1, 64),
			strconv.FormatFloat(s.Flow, 'f', -1, 64),
			s.Timestamp,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write segment: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	logger.Get().Info(ctx, "snapshot saved to file", logger.String("filename", filename))
	return nil
}
