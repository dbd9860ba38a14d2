package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traffixlab/traffix/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot refreshes.
type SnapshotDependencies interface {
	SeenAndRecord(ctx context.Context, batchID string) bool
	Unrecord(ctx context.Context, batchID string)
	Enqueue(ctx context.Context, b model.Batch) bool
}

// SnapshotHandler handles snapshot refresh submissions.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// snapshotRow mirrors the OpenAPI schema for one submitted segment.
type snapshotRow struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Congestion float64  `json:"congestion"`
	Speed      *float64 `json:"speed,omitempty"`
	Flow       *float64 `json:"flow,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// snapshotRequest mirrors the OpenAPI schema for POST /snapshot.
// batch_id is optional; one is assigned when absent.
type snapshotRequest struct {
	BatchID string        `json:"batch_id"`
	Rows    []snapshotRow `json:"rows"`
}

func (s snapshotRequest) toBatch() (model.Batch, error) {
	if len(s.Rows) == 0 {
		return model.Batch{}, errors.New("rows must not be empty")
	}

	b := model.Batch{
		ID:   strings.TrimSpace(s.BatchID),
		Rows: make([]model.Row, 0, len(s.Rows)),
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	for i, r := range s.Rows {
		source := strings.TrimSpace(r.Source)
		target := strings.TrimSpace(r.Target)
		if source == "" || target == "" {
			return model.Batch{}, fmt.Errorf("row %d: missing source or target", i)
		}
		if r.Congestion < 0 {
			return model.Batch{}, fmt.Errorf("row %d: congestion must not be negative", i)
		}

		row := model.Row{
			Source:     source,
			Target:     target,
			Congestion: r.Congestion,
			Speed:      r.Speed,
			Flow:       r.Flow,
		}
		if r.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339, r.Timestamp)
			if err != nil {
				return model.Batch{}, fmt.Errorf("row %d: invalid timestamp; must be RFC3339", i)
			}
			row.Timestamp = ts
		}
		b.Rows = append(b.Rows, row)
	}
	return b, nil
}

// HandlePostSnapshot handles POST /snapshot requests.
func (h *SnapshotHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	batch, err := req.toBatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	// Idempotency check first.
	if h.deps.SeenAndRecord(r.Context(), batch.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, BatchID: batch.ID})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), batch); !ok {
		// Roll back the recorded id so the client can retry.
		h.deps.Unrecord(r.Context(), batch.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, BatchID: batch.ID})
}
