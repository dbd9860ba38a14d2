package seeder

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/traffixlab/traffix/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the traffic seeder.
func ShowHelp() {
	os.Stdout.WriteString(`Traffix Seeder
==============

Generates a synthetic road network snapshot and loads it into a running
Traffix instance through POST /snapshot.

Usage:
  go run cmd/seed-traffic/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -segments int
        Number of road segments to generate (default 40)
  -nodes int
        Number of intersections (default 10)
  -seed int
        RNG seed for reproducible networks (default: time-based)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Also write the snapshot as CSV (usable as snapshot_path)
  -log string
        Log file for seeder output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-traffic/main.go

  # A bigger reproducible network, with a CSV copy
  go run cmd/seed-traffic/main.go -segments 200 -nodes 25 -seed 7 -output data/traffic.csv
`)
}
