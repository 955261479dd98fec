// Command terraintool bakes occlusion and light-angle maps from height-map
// images and finds walkable paths across them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"terrainnav/task"
	"terrainnav/terrain"
)

const usage = `usage: terraintool [flags] <command> [command flags]

commands:
  occlusion    -in height.png -out occlusion.png [-ambient ambient.png]
  lightangles  -in height.png -out-rise rise.png -out-set set.png
  bake         -dir out/ [-jobs N] tile.png...
  path         -in height.png -from x,y -to x,y [-water N] [-clipboard]

flags:
`

// errNoPath is returned by the path command when the goal is unreachable.
var errNoPath = errors.New("no path")

var progressInterval = time.Second

type app struct {
	cfg    Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
	cache  *terrain.Cache
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"occlusion":   runOcclusion,
	"lightangles": runLightAngles,
	"bake":        runBake,
	"path":        runPath,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errNoPath):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("terraintool", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	def := DefaultConfig()
	var (
		configPath         string
		vv, v, q           bool
		stretchH, stretchV float64
		parallelism        int
	)
	fs.StringVar(&configPath, "config", "", "TOML or YAML config file")
	fs.BoolVar(&vv, "vv", false, "debug logging")
	fs.BoolVar(&v, "v", false, "info logging")
	fs.BoolVar(&q, "q", false, "only log errors")
	fs.Float64Var(&stretchH, "stretch-h", float64(def.StretchH), "world length of one cell")
	fs.Float64Var(&stretchV, "stretch-v", float64(def.StretchV), "world length of one height unit")
	fs.IntVar(&parallelism, "parallelism", def.Parallelism, "analyzer workers, 0 for GOMAXPROCS")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("missing command")
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (known: %s)", rest[0], strings.Join(commandNames(), ", "))
	}

	cfg, err := openConfig(configPath)
	if err != nil {
		return err
	}
	set := explicit(fs)
	if set["stretch-h"] {
		cfg.StretchH = float32(stretchH)
	}
	if set["stretch-v"] {
		cfg.StretchV = float32(stretchV)
	}
	if set["parallelism"] {
		cfg.Parallelism = parallelism
	}

	a := &app{
		cfg:    cfg,
		log:    newLogger(stderr, levelFromFlags(vv, v, q)),
		stdout: stdout,
		stderr: stderr,
		cache:  terrain.NewCache(terrain.WithMaxEntries(cfg.CacheEntries)),
	}
	a.log.Debug("config", "file", configPath, "stretch_h", cfg.StretchH, "stretch_v", cfg.StretchV, "parallelism", cfg.Parallelism)
	return cmd(ctx, a, rest[1:])
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) analysisOptions() []terrain.Option {
	return []terrain.Option{
		terrain.WithStretch(a.cfg.StretchH, a.cfg.StretchV),
		terrain.WithParallelism(a.cfg.Parallelism),
	}
}

// track runs fn as a task and logs its progress until it finishes.
func track[T any](ctx context.Context, a *app, name string, fn func(ctx context.Context, opts []terrain.Option) (T, error)) (T, error) {
	start := time.Now()
	t := task.Start(ctx, func(ctx context.Context, report task.Reporter) (T, error) {
		opts := append(a.analysisOptions(), terrain.WithProgress(terrain.ProgressFunc(report)))
		return fn(ctx, opts)
	})

	tick := time.NewTicker(progressInterval)
	defer tick.Stop()
	for {
		select {
		case <-t.Done():
			res, err := t.Wait()
			a.log.Info("finished", "task", name, "state", t.State(), "elapsed", time.Since(start).Round(time.Millisecond))
			return res, err
		case <-tick.C:
			p := t.Progress()
			a.log.Info("progress", "task", name, "done", p.Done, "total", p.Total)
		}
	}
}
