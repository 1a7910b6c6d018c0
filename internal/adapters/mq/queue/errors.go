package queue

import "errors"

// ErrShutdown completes jobs that were dropped before a worker could analyze
// them, so blocked submitters are released instead of waiting forever.
var ErrShutdown = errors.New("queue: shut down before analysis")
