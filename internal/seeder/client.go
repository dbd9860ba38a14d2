package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with a shared timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// snapshotPayload mirrors the POST /snapshot request schema.
type snapshotPayload struct {
	BatchID string    `json:"batch_id"`
	Rows    []Segment `json:"rows"`
}

// submitSnapshot posts the generated segments as one refresh batch.
func submitSnapshot(ctx context.Context, client *HTTPClient, config *Config, segments []Segment, stats *Stats) error {
	payload := snapshotPayload{
		BatchID: "seed-" + uuid.NewString(),
		Rows:    segments,
	}

	resp, err := client.Post(ctx, config.BaseURL+"/snapshot", payload)
	if err != nil {
		return fmt.Errorf("snapshot submission failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading snapshot response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusAccepted:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil {
			stats.BatchID = ack.BatchID
		}
		stats.BatchAccepted = true
		return nil
	case http.StatusOK:
		// A resubmitted seed id; the network is already loaded.
		stats.BatchAccepted = true
		return nil
	case http.StatusTooManyRequests:
		return fmt.Errorf("snapshot rejected under backpressure; retry later")
	default:
		return fmt.Errorf("snapshot rejected with status %d: %s", resp.StatusCode, string(body))
	}
}
