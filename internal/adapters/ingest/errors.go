package ingest

import "errors"

var (
	ErrBadHeader         = errors.New("unrecognized csv header")
	ErrMissingEndpoint   = errors.New("row is missing source or target")
	ErrMissingCongestion = errors.New("row is missing a congestion value")
)
