package queue

// Option configures an InMemory queue.
type Option func(*InMemory)

// WithCapacity sets the maximum number of queued jobs. Default 1000.
func WithCapacity(n int) Option {
	return func(q *InMemory) {
		if n > 0 {
			q.capacity = n
		}
	}
}
