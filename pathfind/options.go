package pathfind

import "terrainnav/grid"

// Heuristic estimates the remaining cost from a cell to the goal, in the
// same units as StraightCost and DiagonalCost.
type Heuristic func(from, goal grid.Coord) int

type options struct {
	heuristic     Heuristic
	cornerCutting bool
	maxExpansions int
}

func defaultOptions() options {
	return options{
		heuristic:     EuclideanHeuristic,
		cornerCutting: true,
	}
}

type Option func(*options)

// WithHeuristic replaces the default EuclideanHeuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *options) {
		if h != nil {
			o.heuristic = h
		}
	}
}

// WithoutCornerCutting rejects a diagonal step when either orthogonal
// neighbour it passes is blocked.
func WithoutCornerCutting() Option {
	return func(o *options) { o.cornerCutting = false }
}

// WithMaxExpansions stops the search after n expanded nodes and reports
// no path. n <= 0 means unbounded.
func WithMaxExpansions(n int) Option {
	return func(o *options) { o.maxExpansions = n }
}
