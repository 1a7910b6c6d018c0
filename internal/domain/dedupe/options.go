package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemory)

// WithMaxSize bounds the number of remembered IDs. Zero or negative means
// unbounded.
func WithMaxSize(n int) Option {
	return func(d *inMemory) {
		d.maxSize = n
	}
}
