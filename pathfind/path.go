package pathfind

import (
	"slices"

	"terrainnav/grid"
)

// Path lists the cells of a route starting at the goal and walking back
// towards the start. The start cell itself is not included.
type Path []grid.Coord

// reconstruct 沿 parent 回溯, 不含起点.
func reconstruct(goal *node) Path {
	var p Path
	for n := goal; n.parent != nil; n = n.parent {
		p = append(p, n.at)
	}
	if p == nil {
		p = Path{}
	}
	return p
}

// Travel returns the cells in walking order: the first step after the
// start comes first, the goal last.
func (p Path) Travel() []grid.Coord {
	out := slices.Clone([]grid.Coord(p))
	slices.Reverse(out)
	return out
}

// Goal returns the final cell, or false for an empty path.
func (p Path) Goal() (grid.Coord, bool) {
	if len(p) == 0 {
		return grid.Coord{}, false
	}
	return p[0], true
}

// Cost sums the step costs of walking this path from start.
func (p Path) Cost(start grid.Coord) int {
	total := 0
	prev := start
	for _, c := range p.Travel() {
		if c.X != prev.X && c.Y != prev.Y {
			total += DiagonalCost
		} else {
			total += StraightCost
		}
		prev = c
	}
	return total
}
