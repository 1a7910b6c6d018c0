// Package dedupe tracks submitted game IDs so a re-submitted game returns
// its stored report instead of burning engine time again.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen game IDs.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an ID so the game can be re-submitted. Used when a
	// recorded game never produced a report (queue reject, failed analysis).
	Unrecord(ctx context.Context, id string)

	Size() int
}

// inMemory implements Deduper with a map plus a FIFO ring for eviction.
// maxSize <= 0 means unbounded.
type inMemory struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// NewInMemory builds a deduper. The default keeps the last 100k IDs.
func NewInMemory(opts ...Option) Deduper {
	d := &inMemory{maxSize: 100_000}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemory) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 {
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemory) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
	// The ring slot keeps the stale ID until eviction reaches it; deleting
	// an absent map key there is harmless.
}

func (d *inMemory) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
