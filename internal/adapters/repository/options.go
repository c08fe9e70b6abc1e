// Package repository defines the franchise state store boundary and errors.
package repository

// Default configuration values.
const (
	defaultResultCapacity = 16
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithResultCapacity sets the per-week result slice preallocation hint.
func WithResultCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity > 0 {
			s.resultCapacity = capacity
		}
	}
}
