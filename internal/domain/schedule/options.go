// Package schedule builds season fixture lists from team metadata.
package schedule

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the base seed for deterministic week placement.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithWeeks sets the number of regular-season weeks fixtures are placed into.
func WithWeeks(weeks int) Option {
	return func(g *Generator) {
		if weeks > 0 {
			g.weeks = weeks
		}
	}
}

// WithDoubleRoundRobin makes the round-robin fallback schedule every pairing
// twice, home and away.
func WithDoubleRoundRobin(double bool) Option {
	return func(g *Generator) {
		g.doubleRoundRobin = double
	}
}
