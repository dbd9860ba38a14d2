package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/traffixlab/traffix/internal/seeder"
)

// Default configuration constants.
const (
	defaultSegments    = 40
	defaultNodes       = 10
	defaultTimeout     = 30 * time.Second
	defaultRunDeadline = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		segments   = flag.Int("segments", defaultSegments, "Number of road segments to generate")
		nodes      = flag.Int("nodes", defaultNodes, "Number of intersections")
		seed       = flag.Int64("seed", 0, "RNG seed for reproducible networks (0 = time-based)")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Also write the snapshot as CSV")
		logFile    = flag.String("log", "", "Log file for seeder output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	if err := seeder.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunDeadline)
	defer cancel()

	config := &seeder.Config{
		BaseURL:    *baseURL,
		Segments:   *segments,
		Nodes:      *nodes,
		Seed:       *seed,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := seeder.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
