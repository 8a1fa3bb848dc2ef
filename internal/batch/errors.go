package batch

import "errors"

// Sentinel kinds for batch pipeline errors.
var (
	ErrQueueFull = errors.New("batch queue full")
)
