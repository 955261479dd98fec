package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terrainnav/grid"
)

func writeHeightPNG(t *testing.T, dir, name string, rows [][]byte) string {
	t.Helper()
	g, err := grid.FromRows(rows)
	require.NoError(t, err)
	p := filepath.Join(dir, name)
	require.NoError(t, writeImage(p, grayImage(g)))
	return p
}

func readPNG(t *testing.T, p string) image.Image {
	t.Helper()
	fp, err := os.Open(p)
	require.NoError(t, err)
	defer fp.Close()
	img, _, err := image.Decode(fp)
	require.NoError(t, err)
	return img
}

func redRow(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		out = append(out, color.NRGBAModel.Convert(img.At(x, b.Min.Y)).(color.NRGBA).R)
	}
	return out
}

func runTool(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromFlags(true, false, false))
	assert.Equal(t, slog.LevelDebug, levelFromFlags(true, true, true))
	assert.Equal(t, slog.LevelInfo, levelFromFlags(false, true, true))
	assert.Equal(t, slog.LevelError, levelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, levelFromFlags(false, false, false))
}

func TestParseCoord(t *testing.T) {
	tests := []struct {
		in      string
		want    grid.Coord
		wantErr bool
	}{
		{"3,4", grid.Coord{X: 3, Y: 4}, false},
		{" 10 , 0 ", grid.Coord{X: 10, Y: 0}, false},
		{"-1,2", grid.Coord{X: -1, Y: 2}, false},
		{"3", grid.Coord{}, true},
		{"a,1", grid.Coord{}, true},
		{"1,", grid.Coord{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCoord(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, grid.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := openConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	tomlPath := filepath.Join(dir, "terrain.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("stretch_v = 2.5\nparallelism = 3\ncache_entries = 8\n\n[path]\nwater = 12\nheuristic = \"octile\"\n"), 0o644))
	cfg, err = openConfig(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, float32(1), cfg.StretchH)
	assert.Equal(t, float32(2.5), cfg.StretchV)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 8, cfg.CacheEntries)
	assert.Equal(t, uint8(12), cfg.Path.Water)
	assert.Equal(t, "octile", cfg.Path.Heuristic)
	assert.True(t, cfg.Path.CornerCutting, "absent keys keep their defaults")

	yamlPath := filepath.Join(dir, "terrain.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("stretch_h: 4\npath:\n  corner_cutting: false\n"), 0o644))
	cfg, err = openConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, float32(4), cfg.StretchH)
	assert.Equal(t, float32(1), cfg.StretchV)
	assert.False(t, cfg.Path.CornerCutting)

	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0o644))
	cfg, err = openConfig(emptyPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestOpenConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("stretch = 2\n"), 0o644))
	_, err := openConfig(unknown)
	require.Error(t, err)

	unknownYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(unknownYAML, []byte("colour: red\n"), 0o644))
	_, err = openConfig(unknownYAML)
	require.Error(t, err)

	_, err = openConfig(filepath.Join(dir, "terrain.json"))
	require.Error(t, err)

	_, err = openConfig(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	cfg := DefaultConfig()
	cfg.Path.Heuristic = "manhattan"
	require.ErrorIs(t, cfg.validate(), grid.ErrInvalidArgument)

	cfg = DefaultConfig()
	cfg.CacheEntries = -1
	require.ErrorIs(t, cfg.validate(), grid.ErrInvalidArgument)
}

func TestOcclusionCommand_ConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	in := writeHeightPNG(t, dir, "step.png", [][]byte{{0, 0, 1}})
	conf := filepath.Join(dir, "tall.toml")
	require.NoError(t, os.WriteFile(conf, []byte("stretch_v = 2\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want []byte
	}{
		{"defaults", nil, []byte{38, 64, 0}},
		{"file", []string{"-config", conf}, []byte{64, 90, 0}},
		{"flag-over-file", []string{"-config", conf, "-stretch-v", "1"}, []byte{38, 64, 0}},
		{"flag", []string{"-stretch-h", "2"}, []byte{20, 38, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "occ.png")
			args := append(append([]string{}, tt.args...), "occlusion", "-in", in, "-out", out)
			_, _, err := runTool(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, redRow(readPNG(t, out)))
		})
	}
}

func TestOcclusionCommand_Ambient(t *testing.T) {
	dir := t.TempDir()
	in := writeHeightPNG(t, dir, "flat.png", [][]byte{{5, 5}, {5, 5}})
	occ := filepath.Join(dir, "occ.png")
	amb := filepath.Join(dir, "amb.png")

	_, _, err := runTool(t, "occlusion", "-in", in, "-out", occ, "-ambient", amb)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255}, redRow(readPNG(t, amb)))
	assert.Equal(t, []byte{0, 0}, redRow(readPNG(t, occ)))
}

func TestLightAnglesCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeHeightPNG(t, dir, "plateau.png", [][]byte{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	})
	rise := filepath.Join(dir, "rise.png")
	set := filepath.Join(dir, "set.png")

	_, _, err := runTool(t, "lightangles", "-in", in, "-out-rise", rise, "-out-set", set)
	require.NoError(t, err)

	riseImg, err := heightsFromImage(readPNG(t, rise))
	require.NoError(t, err)
	setImg, err := heightsFromImage(readPNG(t, set))
	require.NoError(t, err)
	assert.Equal(t, byte(127), riseImg.At(0, 1))
	assert.Equal(t, byte(0), riseImg.At(0, 0))
	assert.Equal(t, byte(127), setImg.At(2, 2))
	assert.Equal(t, byte(179), setImg.At(3, 1))
}

func TestBakeCommand(t *testing.T) {
	dir := t.TempDir()
	flat := [][]byte{{3, 3, 3}, {3, 3, 3}}
	a := writeHeightPNG(t, dir, "a.png", flat)
	b := writeHeightPNG(t, dir, "b.png", flat)
	c := writeHeightPNG(t, dir, "c.png", [][]byte{{0, 0, 9}, {0, 0, 9}})
	out := filepath.Join(dir, "out")

	_, stderr, err := runTool(t, "-v", "bake", "-dir", out, "-jobs", "3", a, b, c)
	require.NoError(t, err)
	for _, tile := range []string{"a", "b", "c"} {
		for _, suffix := range []string{".occlusion.png", ".ambient.png", ".rise.png", ".set.png"} {
			assert.FileExists(t, filepath.Join(out, tile+suffix))
		}
	}
	// two distinct height-maps, two analyses each
	assert.Contains(t, stderr, "results=4")
}

func TestBakeCommand_CacheBound(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "small.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("cache_entries: 2\n"), 0o644))
	tiles := []string{
		writeHeightPNG(t, dir, "a.png", [][]byte{{1, 2}}),
		writeHeightPNG(t, dir, "b.png", [][]byte{{3, 4}}),
		writeHeightPNG(t, dir, "c.png", [][]byte{{5, 6}}),
	}

	args := append([]string{"-v", "-config", conf, "bake", "-dir", filepath.Join(dir, "out"), "-jobs", "1"}, tiles...)
	_, stderr, err := runTool(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "results=2")
}

func TestPathCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeHeightPNG(t, dir, "pillar.png", [][]byte{
		{0, 0, 0},
		{0, 9, 0},
		{0, 0, 0},
	})

	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	stdout, _, err := runTool(t, "path", "-in", in, "-from", "0,1", "-to", "2,1", "-clipboard")
	require.NoError(t, err)
	assert.Equal(t, "path (0,1) -> (2,1): 2 steps, cost 28\n1,0 2,1\n", stdout)
	assert.Equal(t, "1,0 2,1", copied)

	// raising the water level opens the pillar
	stdout, _, err = runTool(t, "path", "-in", in, "-from", "0,1", "-to", "2,1", "-water", "9")
	require.NoError(t, err)
	assert.Equal(t, "path (0,1) -> (2,1): 2 steps, cost 20\n1,1 2,1\n", stdout)
}

func TestPathCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeHeightPNG(t, dir, "pillar.png", [][]byte{
		{0, 0, 0},
		{0, 9, 0},
		{0, 0, 0},
	})

	stdout, _, err := runTool(t, "path", "-in", in, "-from", "0,0", "-to", "1,1")
	require.ErrorIs(t, err, errNoPath)
	assert.Equal(t, "no path (0,0) -> (1,1)\n", stdout)

	_, _, err = runTool(t, "path", "-in", in, "-from", "0,0", "-to", "5,5")
	require.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, _, err = runTool(t, "path", "-in", in, "-from", "0,0", "-to", "1,1", "-water", "300")
	require.ErrorIs(t, err, grid.ErrInvalidArgument)

	_, _, err = runTool(t, "path", "-in", in, "-from", "0,0", "-to", "2,2", "-heuristic", "manhattan")
	require.ErrorIs(t, err, grid.ErrInvalidArgument)
}

func TestRun_Usage(t *testing.T) {
	_, stderr, err := runTool(t)
	require.Error(t, err)
	assert.Contains(t, stderr, "usage: terraintool")

	_, _, err = runTool(t, "render")
	require.ErrorContains(t, err, "unknown command")

	_, _, err = runTool(t, "occlusion", "-in", "x.png")
	require.ErrorContains(t, err, "-out")
}

func TestHeightMapFormats(t *testing.T) {
	g, err := grid.FromRows([][]byte{{0, 64, 128}, {255, 1, 2}})
	require.NoError(t, err)

	for _, ext := range []string{".png", ".bmp", ".tiff"} {
		t.Run(ext, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encodeImage(&buf, ext, grayImage(g)))
			back, err := decodeHeightMap(&buf)
			require.NoError(t, err)
			assert.True(t, grid.Equal(g, back))
		})
	}

	require.Error(t, encodeImage(&bytes.Buffer{}, ".gif", grayImage(g)))
}

func TestHeightsFromImage_OffsetAndColour(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 3, 4, 4))
	img.Set(2, 3, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	img.Set(3, 3, color.NRGBA{A: 255})

	g, err := heightsFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Width())
	assert.Equal(t, 1, g.Height())
	assert.Equal(t, byte(200), g.At(0, 0))
	assert.Equal(t, byte(0), g.At(1, 0))
}
