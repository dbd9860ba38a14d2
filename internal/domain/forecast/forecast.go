// Package forecast predicts congestion and speed for a hypothetical
// road segment under given conditions, degrading through a
// deterministic heuristic when the trained model is unavailable.
package forecast

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
)

// FeatureCount is the width of the model input vector:
// [sourceCode, targetCode, hour, rain, visibility, temperature,
// eventCode, timeOfDayFactor].
const FeatureCount = 8

// Encoder feature names recognized by the model artifact.
const (
	FeatureSource = "source"
	FeatureTarget = "target"
	FeatureEvent  = "event_type"
)

// Confidence labels. The parenthetical suffix tells the consumer which
// degradation path produced the number.
const (
	ConfidenceHigh          = "High"
	ConfidenceMedium        = "Medium"
	ConfidenceLowHeuristic  = "Low (Heuristic)"
	ConfidenceLowFallback   = "Low (Fallback)"
	ReasonModelUnavailable  = "model unavailable"
	ReasonPredictionFailure = "prediction failed"
)

// Heuristic-tier bounds and speed model constants.
const (
	heuristicMin  = 20.0
	heuristicMax  = 90.0
	baseSpeedKmh  = 60.0
	minSpeedKmh   = 10.0
	speedDragCoef = 0.7
	highBandLow   = 0.2
	highBandHigh  = 0.8
)

// Input describes the hypothetical segment and its context. The
// segment does not need to exist in the current snapshot.
type Input struct {
	Source        string
	Target        string
	Hour          int // 0..23
	RainIntensity float64
	Visibility    float64
	Temperature   float64
	EventType     string
}

// Result is a congestion forecast. Degraded is set whenever a fallback
// tier produced the numbers; Reason names the failure that triggered
// it so consumers can branch structurally instead of parsing the label.
type Result struct {
	CongestionPercent float64
	Speed             float64
	Confidence        string
	Degraded          bool
	Reason            string
}

// Provider supplies the trained regression model and its categorical
// encoders. TryLoad is re-attempted on every call until it succeeds so
// an artifact appearing later (a training job finishing) is picked up.
type Provider interface {
	// TryLoad loads the artifact if not already loaded. Safe for
	// concurrent use; cheap once loaded.
	TryLoad(ctx context.Context) error

	// Loaded reports whether a usable artifact is in memory.
	Loaded() bool

	// Predict runs the regression over a FeatureCount-wide vector.
	Predict(features []float64) (float64, error)

	// Encode maps a categorical value to its fitted integer code.
	// Unseen categories map to 0 and never fail.
	Encode(feature, value string) int
}

// Engine is the two-tier congestion forecaster.
type Engine struct {
	provider Provider
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithProvider sets the model artifact provider. Without one the engine
// always answers from the heuristic tier.
func WithProvider(p Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// NewEngine creates a forecaster with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Predict produces a forecast for the input. It never returns an
// error: every model failure is absorbed into a degraded result.
func (e *Engine) Predict(ctx context.Context, in Input) Result {
	if e.provider == nil {
		return e.heuristic(in, ConfidenceLowHeuristic, ReasonModelUnavailable)
	}
	if err := e.provider.TryLoad(ctx); err != nil || !e.provider.Loaded() {
		return e.heuristic(in, ConfidenceLowHeuristic, ReasonModelUnavailable)
	}

	features := []float64{
		float64(e.provider.Encode(FeatureSource, in.Source)),
		float64(e.provider.Encode(FeatureTarget, in.Target)),
		float64(in.Hour),
		in.RainIntensity,
		in.Visibility,
		in.Temperature,
		float64(e.provider.Encode(FeatureEvent, in.EventType)),
		1.0, // time-of-day factor, fixed during inference
	}

	prediction, err := e.provider.Predict(features)
	if err != nil {
		return e.heuristic(in, ConfidenceLowFallback, ReasonPredictionFailure)
	}

	prediction = math.Max(0, math.Min(1, prediction))
	speed := math.Max(minSpeedKmh, baseSpeedKmh*(1-prediction*speedDragCoef))

	confidence := ConfidenceMedium
	if prediction < highBandLow || prediction > highBandHigh {
		confidence = ConfidenceHigh
	}

	return Result{
		CongestionPercent: round1(prediction * 100),
		Speed:             round1(speed),
		Confidence:        confidence,
	}
}

// heuristic draws a deterministic pseudo-random congestion level seeded
// from the segment identity and the hour. Weather inputs do not feed
// the seed, so identical (source, target, hour) tuples always
// reproduce the same answer.
func (e *Engine) heuristic(in Input, confidence, reason string) Result {
	h := fnv.New64a()
	_, _ = h.Write([]byte(in.Source))
	_, _ = h.Write([]byte(in.Target))
	_, _ = h.Write([]byte(strconv.Itoa(in.Hour)))

	rng := rand.New(rand.NewSource(int64(h.Sum64()))) //nolint:gosec // not used for security
	congestion := heuristicMin + rng.Float64()*(heuristicMax-heuristicMin)

	return Result{
		CongestionPercent: round1(congestion),
		Speed:             round1(baseSpeedKmh * (1 - congestion/100)),
		Confidence:        confidence,
		Degraded:          true,
		Reason:            reason,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
