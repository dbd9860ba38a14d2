package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/traffixlab/traffix/internal/domain/forecast"
	"github.com/traffixlab/traffix/internal/domain/types"
)

// PredictDependencies defines the interface for congestion forecasts.
type PredictDependencies interface {
	Forecast(ctx context.Context, in forecast.Input) types.Forecast
}

// PredictHandler handles congestion forecast requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// predictRequest mirrors the OpenAPI schema for POST /predict-congestion.
// The segment does not need to exist in the current snapshot.
type predictRequest struct {
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Hour          int     `json:"hour"`
	RainIntensity float64 `json:"rain_intensity"`
	Visibility    float64 `json:"visibility"`
	Temperature   float64 `json:"temperature"`
	EventType     string  `json:"event_type"`
}

func (p predictRequest) validate() error {
	switch {
	case strings.TrimSpace(p.Source) == "":
		return errors.New("missing source")
	case strings.TrimSpace(p.Target) == "":
		return errors.New("missing target")
	case p.Hour < 0 || p.Hour > 23:
		return errors.New("hour must be in [0,23]")
	}
	return nil
}

// HandlePredict handles POST /predict-congestion requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	result := h.deps.Forecast(r.Context(), forecast.Input{
		Source:        strings.TrimSpace(req.Source),
		Target:        strings.TrimSpace(req.Target),
		Hour:          req.Hour,
		RainIntensity: req.RainIntensity,
		Visibility:    req.Visibility,
		Temperature:   req.Temperature,
		EventType:     req.EventType,
	})
	writeJSON(w, http.StatusOK, result)
}
