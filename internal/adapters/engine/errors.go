package engine

import "errors"

var (
	// ErrUnavailable marks an engine that failed twice on the same request
	// (crash, protocol breakdown, or timeout). Fatal for the position, not
	// for the pipeline.
	ErrUnavailable = errors.New("engine unavailable")
	// ErrClosed marks requests made after the pool shut down.
	ErrClosed = errors.New("engine pool closed")
	// ErrProtocol marks UCI output the adapter could not make sense of.
	ErrProtocol = errors.New("uci protocol error")
)
