package features

import "errors"

// ErrInsufficientData marks a game with neither engine evaluations nor
// usable timing data. The structural counts in the returned vector are
// still valid.
var ErrInsufficientData = errors.New("insufficient data for feature extraction")
