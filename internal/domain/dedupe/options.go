// Package dedupe defines the replay guard for game resolution.
package dedupe

// Option applies a configuration option to the inMemoryGuard.
type Option func(*inMemoryGuard)

// WithMaxSize sets the maximum number of IDs to keep in memory.
// If maxSize <= 0 the guard is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(g *inMemoryGuard) {
		g.maxSize = maxSize
	}
}
