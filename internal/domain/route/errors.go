package route

import "errors"

// Sentinel kinds for routing errors. These are the only core failures
// that cross the service boundary.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrNoRoute      = errors.New("no route between nodes")
)
