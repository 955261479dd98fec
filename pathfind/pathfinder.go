package pathfind

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"terrainnav/grid"
)

// dir indexes dirOffsets. Straight moves come first, then diagonals.
type dir int8

const (
	dirE dir = iota
	dirW
	dirN
	dirS
	dirNE
	dirNW
	dirSE
	dirSW
)

// dirOffsets is indexed by dir. North is y-1.
var dirOffsets = [8][2]int{
	dirE:  {1, 0},
	dirW:  {-1, 0},
	dirN:  {0, -1},
	dirS:  {0, 1},
	dirNE: {1, -1},
	dirNW: {-1, -1},
	dirSE: {1, 1},
	dirSW: {-1, 1},
}

const (
	StraightCost = 10
	DiagonalCost = 14
)

// cancelCheckInterval is the number of expansions between context checks.
const cancelCheckInterval = 256

func isDiag(d dir) bool { return d >= dirNE }

func moveCost(d dir) int {
	if isDiag(d) {
		return DiagonalCost
	}
	return StraightCost
}

// Pathfinder runs A* searches over a fixed obstacle grid. The grid is only
// read, so one Pathfinder may serve concurrent searches.
type Pathfinder struct {
	obstacles *grid.Grid[bool]
	opts      options
}

func New(obstacles *grid.Grid[bool], opts ...Option) (*Pathfinder, error) {
	if obstacles == nil {
		return nil, fmt.Errorf("%w: nil obstacle grid", grid.ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Pathfinder{obstacles: obstacles, opts: o}, nil
}

func (pf *Pathfinder) blocked(x, y int) bool {
	return !pf.obstacles.InBounds(x, y) || pf.obstacles.At(x, y)
}

// FindPath searches from start to goal. found is false when the goal cannot
// be reached; that is not an error.
func (pf *Pathfinder) FindPath(start, goal grid.Coord) (Path, bool, error) {
	return pf.FindPathContext(context.Background(), start, goal)
}

// FindPathVec truncates continuous coordinates to cells before searching.
func (pf *Pathfinder) FindPathVec(sx, sy, gx, gy float32) (Path, bool, error) {
	return pf.FindPath(grid.CoordOf(sx, sy), grid.CoordOf(gx, gy))
}

func (pf *Pathfinder) FindPathContext(ctx context.Context, start, goal grid.Coord) (Path, bool, error) {
	bounds := pf.obstacles.Bounds()
	if !bounds.ContainsPoint(start) {
		return nil, false, fmt.Errorf("%w: start %v outside %v", grid.ErrInvalidArgument, start, bounds)
	}
	if !bounds.ContainsPoint(goal) {
		return nil, false, fmt.Errorf("%w: goal %v outside %v", grid.ErrInvalidArgument, goal, bounds)
	}

	s := acquireSearch(bounds.AreaSize())
	defer releaseSearch(s)

	width := pf.obstacles.Width()
	key := func(c grid.Coord) int { return c.X + c.Y*width }

	first := s.newNode(start, 0, pf.opts.heuristic(start, goal), nil)
	s.vis[key(start)] = first
	heap.Push(&s.open, first)

	expansions := 0
	for s.open.Len() > 0 {
		if expansions%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}
		if pf.opts.maxExpansions > 0 && expansions >= pf.opts.maxExpansions {
			return nil, false, nil
		}
		expansions++

		cur := heap.Pop(&s.open).(*node)
		if cur.at == goal {
			return reconstruct(cur), true, nil
		}
		cur.closed = true

		for d := dirE; d <= dirSW; d++ {
			off := dirOffsets[d]
			next := cur.at.Add(off[0], off[1])
			if pf.blocked(next.X, next.Y) {
				continue
			}
			if isDiag(d) && !pf.opts.cornerCutting {
				if pf.blocked(cur.at.X+off[0], cur.at.Y) || pf.blocked(cur.at.X, cur.at.Y+off[1]) {
					continue
				}
			}
			ng := cur.g + moveCost(d)
			k := key(next)
			if old, ok := s.vis[k]; ok {
				if old.closed || ng >= old.g {
					continue
				}
				old.g = ng
				old.f = ng + old.h
				old.parent = cur
				heap.Fix(&s.open, old.openIdx)
				continue
			}
			nn := s.newNode(next, ng, pf.opts.heuristic(next, goal), cur)
			s.vis[k] = nn
			heap.Push(&s.open, nn)
		}
	}
	return nil, false, nil
}

// EuclideanHeuristic is the straight-line distance to the goal scaled by
// StraightCost and truncated. It over-estimates long diagonals slightly.
func EuclideanHeuristic(from, goal grid.Coord) int {
	dx := float64(goal.X - from.X)
	dy := float64(goal.Y - from.Y)
	return int(math.Sqrt(dx*dx+dy*dy) * StraightCost)
}

// OctileHeuristic matches the 10/14 step costs exactly and never
// over-estimates.
func OctileHeuristic(from, goal grid.Coord) int {
	dx := abs(goal.X - from.X)
	dy := abs(goal.Y - from.Y)
	minv, maxv := dx, dy
	if minv > maxv {
		minv, maxv = maxv, minv
	}
	return minv*DiagonalCost + (maxv-minv)*StraightCost
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
