package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/sync/errgroup"

	"terrainnav/grid"
	"terrainnav/pathfind"
	"terrainnav/terrain"
)

var writeClipboard = clipboard.WriteAll

func runOcclusion(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("occlusion")
	in := fs.String("in", "", "height-map image")
	out := fs.String("out", "", "occlusion image (R=rise x, G=set x, B=rise y, A=set y)")
	ambient := fs.String("ambient", "", "optional ambient-light image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("occlusion: -in and -out are required")
	}
	if err := a.cfg.validate(); err != nil {
		return err
	}

	heights, err := readHeightMap(*in)
	if err != nil {
		return err
	}
	res, err := track(ctx, a, "occlusion", func(ctx context.Context, opts []terrain.Option) (*grid.Grid[terrain.OcclusionInterval], error) {
		return a.cache.Occlusion(ctx, heights, opts...)
	})
	if err != nil {
		return err
	}
	if err := writeImage(*out, occlusionImage(res)); err != nil {
		return err
	}
	if *ambient != "" {
		return writeImage(*ambient, ambientImage(res))
	}
	return nil
}

func runLightAngles(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("lightangles")
	in := fs.String("in", "", "height-map image")
	outRise := fs.String("out-rise", "", "rise angle image")
	outSet := fs.String("out-set", "", "set angle image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || (*outRise == "" && *outSet == "") {
		return errors.New("lightangles: -in and at least one of -out-rise, -out-set are required")
	}
	if err := a.cfg.validate(); err != nil {
		return err
	}

	heights, err := readHeightMap(*in)
	if err != nil {
		return err
	}
	maps, err := track(ctx, a, "lightangles", func(ctx context.Context, opts []terrain.Option) (terrain.LightAngleMaps, error) {
		return a.cache.LightAngles(ctx, a.cfg.Size(heights), heights, opts...)
	})
	if err != nil {
		return err
	}
	if *outRise != "" {
		if err := writeImage(*outRise, grayImage(maps.Rise)); err != nil {
			return err
		}
	}
	if *outSet != "" {
		return writeImage(*outSet, grayImage(maps.Set))
	}
	return nil
}

// runBake writes all four maps for every tile. Tiles with identical
// heights are analyzed once.
func runBake(ctx context.Context, a *app, args []string) error {
	fs := a.flagSet("bake")
	dir := fs.String("dir", "", "output directory")
	jobs := fs.Int("jobs", 2, "tiles processed at once")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tiles := fs.Args()
	if *dir == "" || len(tiles) == 0 {
		return errors.New("bake: -dir and at least one tile are required")
	}
	if err := a.cfg.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for _, tile := range tiles {
		tile := tile
		g.Go(func() error {
			return a.bakeTile(ctx, tile, *dir)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("bake done", "tiles", len(tiles), "results", a.cache.Len())
	return nil
}

func (a *app) bakeTile(ctx context.Context, tile, dir string) error {
	heights, err := readHeightMap(tile)
	if err != nil {
		return err
	}
	occ, err := a.cache.Occlusion(ctx, heights, a.analysisOptions()...)
	if err != nil {
		return err
	}
	maps, err := a.cache.LightAngles(ctx, a.cfg.Size(heights), heights, a.analysisOptions()...)
	if err != nil {
		return err
	}

	base := filepath.Join(dir, strings.TrimSuffix(filepath.Base(tile), filepath.Ext(tile)))
	for _, out := range []struct {
		suffix string
		write  func(string) error
	}{
		{".occlusion.png", func(p string) error { return writeImage(p, occlusionImage(occ)) }},
		{".ambient.png", func(p string) error { return writeImage(p, ambientImage(occ)) }},
		{".rise.png", func(p string) error { return writeImage(p, grayImage(maps.Rise)) }},
		{".set.png", func(p string) error { return writeImage(p, grayImage(maps.Set)) }},
	} {
		if err := out.write(base + out.suffix); err != nil {
			return err
		}
	}
	a.log.Info("baked", "tile", tile, "width", heights.Width(), "height", heights.Height())
	return nil
}

func runPath(ctx context.Context, a *app, args []string) error {
	cfg := a.cfg.Path
	fs := a.flagSet("path")
	in := fs.String("in", "", "height-map image")
	from := fs.String("from", "", "start cell x,y")
	to := fs.String("to", "", "goal cell x,y")
	water := fs.Uint("water", uint(cfg.Water), "cells higher than this are blocked")
	heuristic := fs.String("heuristic", cfg.Heuristic, "euclidean or octile")
	noCorner := fs.Bool("no-corner-cutting", !cfg.CornerCutting, "forbid diagonal steps past blocked cells")
	maxExp := fs.Int("max-expansions", cfg.MaxExpansions, "give up after this many expanded cells, 0 for no limit")
	toClipboard := fs.Bool("clipboard", false, "copy the path to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *from == "" || *to == "" {
		return errors.New("path: -in, -from and -to are required")
	}
	if *water > 255 {
		return fmt.Errorf("%w: water level %d exceeds 255", grid.ErrInvalidArgument, *water)
	}
	a.cfg.Path = PathConfig{Water: uint8(*water), Heuristic: *heuristic, CornerCutting: !*noCorner, MaxExpansions: *maxExp}
	if err := a.cfg.validate(); err != nil {
		return err
	}

	start, err := parseCoord(*from)
	if err != nil {
		return err
	}
	goal, err := parseCoord(*to)
	if err != nil {
		return err
	}
	heights, err := readHeightMap(*in)
	if err != nil {
		return err
	}

	pf, err := pathfind.New(grid.AboveLevel(heights, a.cfg.Path.Water), a.cfg.Path.options()...)
	if err != nil {
		return err
	}
	path, found, err := pf.FindPathContext(ctx, start, goal)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.stdout, "no path %v -> %v\n", start, goal)
		return errNoPath
	}

	cells := formatCells(path.Travel())
	fmt.Fprintf(a.stdout, "path %v -> %v: %d steps, cost %d\n", start, goal, len(path), path.Cost(start))
	fmt.Fprintln(a.stdout, cells)
	a.log.Debug("path", "start", start, "goal", goal, "steps", len(path))
	if *toClipboard {
		if err := writeClipboard(cells); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		a.log.Info("copied path to clipboard", "steps", len(path))
	}
	return nil
}

func (c PathConfig) options() []pathfind.Option {
	var opts []pathfind.Option
	if c.Heuristic == "octile" {
		opts = append(opts, pathfind.WithHeuristic(pathfind.OctileHeuristic))
	}
	if !c.CornerCutting {
		opts = append(opts, pathfind.WithoutCornerCutting())
	}
	if c.MaxExpansions > 0 {
		opts = append(opts, pathfind.WithMaxExpansions(c.MaxExpansions))
	}
	return opts
}

// parseCoord parses "x,y".
func parseCoord(s string) (grid.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("%w: coordinate %q is not x,y", grid.ErrInvalidArgument, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("%w: coordinate %q: %v", grid.ErrInvalidArgument, s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("%w: coordinate %q: %v", grid.ErrInvalidArgument, s, err)
	}
	return grid.Coord{X: x, Y: y}, nil
}

func formatCells(cells []grid.Coord) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
	}
	return strings.Join(parts, " ")
}
