package engine

import (
	"time"

	"github.com/chessguard/chessguard/pkg/logger"
)

// Option configures a Pool.
type Option func(*Pool)

// WithPoolSize sets the number of engine processes. Default 2.
func WithPoolSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.size = n
		}
	}
}

// WithDepth sets the search depth per evaluation. Default 16.
func WithDepth(d int) Option {
	return func(p *Pool) {
		if d > 0 {
			p.depth = d
		}
	}
}

// WithMultiPV sets how many ranked lines the engine reports. Default 2,
// which is the minimum for top-2 gap features.
func WithMultiPV(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.multiPV = n
		}
	}
}

// WithTimeout sets the hard wall-clock limit per evaluation call.
// Default 10s.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithCache shares an evaluation cache across pools.
func WithCache(c *Cache) Option {
	return func(p *Pool) {
		if c != nil {
			p.cache = c
		}
	}
}

// WithLogger sets the pool's logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}
