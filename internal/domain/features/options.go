package features

// Option configures an Extractor.
type Option func(*Extractor)

// WithBookPlies sets how many opening plies count as book. Default 10.
func WithBookPlies(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.bookPlies = n
		}
	}
}

// WithCriticalSwingCP sets the top-2 gap beyond which a position counts as
// tactically sharp. Default 150.
func WithCriticalSwingCP(cp int) Option {
	return func(e *Extractor) {
		if cp > 0 {
			e.criticalSwingCP = cp
		}
	}
}

// WithForcedGapCP sets the top-2 gap beyond which a move counts as forced
// and is discounted from agreement. Default 200.
func WithForcedGapCP(cp int) Option {
	return func(e *Extractor) {
		if cp > 0 {
			e.forcedGapCP = cp
		}
	}
}

// WithFastMoveSeconds sets the think time below which a move counts as
// instant for burstiness. Default 2s.
func WithFastMoveSeconds(s float64) Option {
	return func(e *Extractor) {
		if s > 0 {
			e.fastMoveSecs = s
		}
	}
}
