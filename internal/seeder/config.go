package seeder

import "time"

// Config holds configuration for the traffic seeder.
type Config struct {
	BaseURL    string        // Base URL of the service
	Segments   int           // Number of road segments to generate
	Nodes      int           // Number of intersections to spread them over
	Seed       int64         // RNG seed; 0 means time-based
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional CSV copy of the generated snapshot
	LogFile    string        // Log file for seeder output
	Verbose    bool          // Enable verbose logging
}

// Segment is one generated road segment.
type Segment struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Congestion float64 `json:"congestion"`
	Speed      float64 `json:"speed"`
	Flow       float64 `json:"flow"`
	Timestamp  string  `json:"timestamp"`
}

// AckResponse is the answer from a snapshot submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	BatchID   string `json:"batch_id"`
}

// Stats holds seeder run statistics.
type Stats struct {
	SegmentsGenerated int
	BatchAccepted     bool
	BatchID           string
	RoutesQueried     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
