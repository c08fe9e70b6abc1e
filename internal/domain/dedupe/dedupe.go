// Package dedupe defines the replay guard for game resolution.
//
// A game must be resolved at most once per season: replaying it would apply
// fatigue and injuries a second time and corrupt carried state. The guard
// tracks enqueued game ids so a retried week only submits unresolved games.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Default configuration values.
const defaultMaxSize = 4096

// Guard records seen game IDs to ensure at-most-once resolution.
type Guard interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// This is the ONLY method for deduplication - thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing it to be retried.
	// Used when a game was marked as seen but never enqueued (e.g., queue
	// backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryGuard implements Guard with a bounded map. When the cap is hit an
// arbitrary entry is evicted; a full season stays well under the default cap,
// so eviction only matters for multi-season reuse.
type inMemoryGuard struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates a new in-memory replay guard with configuration
// options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.seen = make(map[string]struct{}, g.maxSize)

	return g
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (g *inMemoryGuard) SeenAndRecord(ctx context.Context, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[id]; exists {
		return true
	}

	if g.maxSize > 0 && len(g.seen) >= g.maxSize {
		for evict := range g.seen {
			delete(g.seen, evict)
			g.size.Add(-1)
			break
		}
	}

	g.seen[id] = struct{}{}
	g.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (g *inMemoryGuard) Unrecord(ctx context.Context, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[id]; exists {
		delete(g.seen, id)
		g.size.Add(-1)
	}
}

// Size returns the current number of recorded ids.
func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}
