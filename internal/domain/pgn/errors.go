package pgn

import "errors"

// Sentinel kinds for parser errors.
var (
	// ErrParse marks malformed movetext or tag pairs. Local to one game:
	// batch callers skip the game and continue.
	ErrParse = errors.New("pgn parse error")
	// ErrEmpty marks input with no movetext at all.
	ErrEmpty = errors.New("empty pgn input")
)
