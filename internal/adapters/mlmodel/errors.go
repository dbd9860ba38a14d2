package mlmodel

import "errors"

var (
	// ErrNotLoaded is returned by Predict before an artifact is in memory.
	ErrNotLoaded = errors.New("model artifact not loaded")

	// ErrBadArtifact is returned when the artifact file fails validation.
	ErrBadArtifact = errors.New("invalid model artifact")

	// ErrBadFeatureVector is returned when the input width is wrong.
	ErrBadFeatureVector = errors.New("feature vector has wrong width")
)
