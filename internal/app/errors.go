package app

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrNoGame        = errors.New("job carries no parsed game")
	ErrUnknownPlayer = errors.New("player not in game")
	ErrQueueFull     = errors.New("analysis queue full")
	ErrDuplicateGame = errors.New("game already submitted")
	ErrBatchCanceled = errors.New("batch canceled")
)
