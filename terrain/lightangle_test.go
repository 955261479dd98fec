package terrain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrainnav/grid"
)

// plateauHeightMap is indexed [x][y]: a two-cell plateau at x=1, y=1..2.
func plateauHeightMap(t testing.TB) *grid.Grid[byte] {
	t.Helper()
	g, err := grid.FromColumns([][]byte{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	require.NoError(t, err)
	return g
}

func columns(g *grid.Grid[byte]) [][]byte {
	out := make([][]byte, g.Width())
	for x := range out {
		out[x] = make([]byte, g.Height())
		for y := range out[x] {
			out[x][y] = g.At(x, y)
		}
	}
	return out
}

func TestLightAngles_Plateau(t *testing.T) {
	heights := plateauHeightMap(t)
	maps, err := LightAngles(context.Background(), grid.SizeOf(heights), heights)
	require.NoError(t, err)

	assert.Equal(t, byte(0), maps.Rise.At(0, 0))
	assert.Equal(t, byte(127), maps.Rise.At(0, 1))
	assert.Equal(t, byte(127), maps.Rise.At(0, 2))
	assert.Equal(t, byte(0), maps.Rise.At(0, 3))
	for y := 0; y < 4; y++ {
		assert.Equal(t, byte(255), maps.Set.At(0, y), "set[0,%d]", y)
	}
	assert.Equal(t, byte(127), maps.Set.At(2, 1))
	assert.Equal(t, byte(127), maps.Set.At(2, 2))
	assert.Equal(t, byte(179), maps.Set.At(3, 1))
	assert.Equal(t, byte(179), maps.Set.At(3, 2))
}

func TestLightAngles_PlateauFullMaps(t *testing.T) {
	heights := plateauHeightMap(t)
	maps, err := LightAngles(context.Background(), grid.SizeOf(heights), heights)
	require.NoError(t, err)

	assert.Equal(t, [][]byte{
		{0, 127, 127, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, columns(maps.Rise))
	assert.Equal(t, [][]byte{
		{255, 255, 255, 255},
		{255, 255, 255, 255},
		{255, 127, 127, 255},
		{255, 179, 179, 255},
	}, columns(maps.Set))
}

func TestLightAngles_ParallelismInvariance(t *testing.T) {
	heights := randomHeightMap(t, 29, 31, 4)
	size := grid.Size{Width: 29, Height: 31, StretchH: 3, StretchV: 0.5}
	serial, err := LightAngles(context.Background(), size, heights, WithParallelism(1))
	require.NoError(t, err)
	parallel, err := LightAngles(context.Background(), size, heights, WithParallelism(7))
	require.NoError(t, err)
	assert.True(t, grid.Equal(serial.Rise, parallel.Rise))
	assert.True(t, grid.Equal(serial.Set, parallel.Set))
}

func TestLightAngles_StretchLowersAngles(t *testing.T) {
	heights := plateauHeightMap(t)
	size := grid.SizeOf(heights)
	size.StretchH = 2
	maps, err := LightAngles(context.Background(), size, heights)
	require.NoError(t, err)
	// atan(1/2) of a quarter turn: 75.27
	assert.Equal(t, byte(75), maps.Rise.At(0, 1))
	assert.Equal(t, byte(179), maps.Set.At(2, 1))
}

func TestLightAngles_InvalidArguments(t *testing.T) {
	heights := plateauHeightMap(t)
	ctx := context.Background()

	_, err := LightAngles(ctx, grid.Size{Width: 3, Height: 4, StretchH: 1, StretchV: 1}, heights)
	require.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, err = LightAngles(ctx, grid.Size{Width: 4, Height: 4, StretchH: 1}, heights)
	require.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, err = LightAngles(ctx, grid.Size{Width: 4, Height: 4, StretchH: 1, StretchV: 1}, nil)
	require.ErrorIs(t, err, grid.ErrInvalidArgument)
}

func TestLightAngleMaps_IsLit(t *testing.T) {
	heights := plateauHeightMap(t)
	maps, err := LightAngles(context.Background(), grid.SizeOf(heights), heights)
	require.NoError(t, err)

	// (0,1) sits in front of the plateau: dark until the sun clears 45°
	assert.False(t, maps.IsLit(0, 1, 0.5))
	assert.True(t, maps.IsLit(0, 1, 1.0))
	assert.True(t, maps.IsLit(0, 1, 3.0))

	// (2,1) is behind it: dark once the sun falls below 45° in the west
	assert.True(t, maps.IsLit(2, 1, 1.0))
	assert.False(t, maps.IsLit(2, 1, 2.5))

	iv := maps.Interval(0, 0)
	assert.Equal(t, float32(0), iv.Rise)
	assert.InDelta(t, 3.14159, iv.Set, 1e-4)
}
