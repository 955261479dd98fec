package terrain

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"

	"terrainnav/grid"
)

// Occlusion computes the occlusion interval of every cell of heights. The
// input is only read; the returned grid is freshly allocated.
func Occlusion(ctx context.Context, heights *grid.Grid[byte], opts ...Option) (*grid.Grid[OcclusionInterval], error) {
	if heights == nil {
		return nil, fmt.Errorf("%w: nil height-map", grid.ErrInvalidArgument)
	}
	o := buildOptions(opts)
	size := grid.Size{Width: heights.Width(), Height: heights.Height(), StretchH: o.stretchH, StretchV: o.stretchV}
	if err := size.Validate(); err != nil {
		return nil, err
	}

	out, err := grid.New[OcclusionInterval](heights.Width(), heights.Height())
	if err != nil {
		return nil, err
	}
	err = forEachRow(ctx, heights.Height(), o, func(y int) {
		for x := 0; x < heights.Width(); x++ {
			out.Set(x, y, occlusionAt(heights, x, y, o.stretchH, o.stretchV))
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func occlusionAt(heights *grid.Grid[byte], x, y int, stretchH, stretchV float32) OcclusionInterval {
	var v OcclusionInterval
	v[RiseX] = encodeOcclusionRise(horizonAngle(heights, x, y, towardPosX, stretchH, stretchV))
	v[SetX] = encodeOcclusionSet(horizonAngle(heights, x, y, towardNegX, stretchH, stretchV))
	v[RiseY] = encodeOcclusionRise(horizonAngle(heights, x, y, towardPosY, stretchH, stretchV))
	v[SetY] = encodeOcclusionSet(horizonAngle(heights, x, y, towardNegY, stretchH, stretchV))
	return v
}

// [0, π] -> [0, 255]
func encodeOcclusionRise(horizon float32) byte {
	return quantizeRound(horizon / math32.Pi * 255)
}

func encodeOcclusionSet(horizon float32) byte {
	return quantizeRound((math32.Pi - horizon) / math32.Pi * 255)
}
