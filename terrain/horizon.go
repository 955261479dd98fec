package terrain

import (
	"github.com/chewxy/math32"

	"terrainnav/grid"
)

type direction struct{ dx, dy int }

var (
	towardPosX = direction{1, 0}
	towardNegX = direction{-1, 0}
	towardPosY = direction{0, 1}
	towardNegY = direction{0, -1}
)

// horizonAngle walks from (x, y) to the grid edge and returns the highest
// elevation angle of the terrain silhouette. Terrain below the cell never
// counts, so the result is never negative.
func horizonAngle(heights *grid.Grid[byte], x, y int, d direction, stretchH, stretchV float32) float32 {
	base := float32(heights.At(x, y))
	var best float32
	for k, cx, cy := 1, x+d.dx, y+d.dy; heights.InBounds(cx, cy); k, cx, cy = k+1, cx+d.dx, cy+d.dy {
		rise := (float32(heights.At(cx, cy)) - base) * stretchV
		if rise <= 0 {
			continue
		}
		if a := math32.Atan2(rise, float32(k)*stretchH); a > best {
			best = a
		}
	}
	return best
}

// quantizeRound maps v onto a byte, rounding half up and saturating.
func quantizeRound(v float32) byte {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return byte(v + 0.5)
}

// quantizeTrunc maps v onto a byte, truncating and saturating.
func quantizeTrunc(v float32) byte {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}
