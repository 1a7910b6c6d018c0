package telemetry

import "errors"

// ErrFormat marks telemetry input that cannot be used: missing fields,
// negative times, duplicate or out-of-range plies.
var ErrFormat = errors.New("telemetry format error")
