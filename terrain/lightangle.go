package terrain

import (
	"context"
	"fmt"

	"github.com/chewxy/math32"

	"terrainnav/grid"
)

const halfPi = math32.Pi / 2

// LightAngleMaps holds, per cell, the elevation at which the sun first
// clears the terrain after rising (+x) and the one at which it disappears
// before setting (-x).
type LightAngleMaps struct {
	Rise *grid.Grid[byte]
	Set  *grid.Grid[byte]
}

// LightAngles computes the rise and set angle maps. size must match the
// height-map and supplies the stretch factors.
func LightAngles(ctx context.Context, size grid.Size, heights *grid.Grid[byte], opts ...Option) (LightAngleMaps, error) {
	if heights == nil {
		return LightAngleMaps{}, fmt.Errorf("%w: nil height-map", grid.ErrInvalidArgument)
	}
	if err := size.Validate(); err != nil {
		return LightAngleMaps{}, err
	}
	if !size.Matches(heights.Width(), heights.Height()) {
		return LightAngleMaps{}, fmt.Errorf("%w: terrain size %dx%d does not match height-map %dx%d",
			grid.ErrInvalidArgument, size.Width, size.Height, heights.Width(), heights.Height())
	}
	o := buildOptions(opts)

	rise, err := grid.New[byte](size.Width, size.Height)
	if err != nil {
		return LightAngleMaps{}, err
	}
	set := rise.Clone()
	err = forEachRow(ctx, size.Height, o, func(y int) {
		for x := 0; x < size.Width; x++ {
			rise.Set(x, y, encodeLightRise(horizonAngle(heights, x, y, towardPosX, size.StretchH, size.StretchV)))
			set.Set(x, y, encodeLightSet(horizonAngle(heights, x, y, towardNegX, size.StretchH, size.StretchV)))
		}
	})
	if err != nil {
		return LightAngleMaps{}, err
	}
	return LightAngleMaps{Rise: rise, Set: set}, nil
}

// [0, π/2] -> [0, 255]
func encodeLightRise(horizon float32) byte {
	return quantizeTrunc(min(horizon, halfPi) / halfPi * 255)
}

// [π/2, π] -> [0, 255], stored as the set angle minus π/2.
func encodeLightSet(horizon float32) byte {
	return quantizeTrunc((halfPi - min(horizon, halfPi)) / halfPi * 255)
}

// Interval decodes the lit interval of cell (x, y).
func (m LightAngleMaps) Interval(x, y int) AngleInterval {
	return AngleInterval{
		Rise: float32(m.Rise.At(x, y)) / 255 * halfPi,
		Set:  halfPi + float32(m.Set.At(x, y))/255*halfPi,
	}
}

// IsLit reports whether a sun at elevation angle (0 at the rising horizon,
// π at the setting horizon) reaches cell (x, y).
func (m LightAngleMaps) IsLit(x, y int, angle float32) bool {
	return m.Interval(x, y).Contains(angle)
}

func (m LightAngleMaps) Clone() LightAngleMaps {
	return LightAngleMaps{Rise: m.Rise.Clone(), Set: m.Set.Clone()}
}
