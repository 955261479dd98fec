package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"terrainnav/grid"
	"terrainnav/terrain"
)

// Config holds the settings shared by every subcommand. Values start from
// DefaultConfig, are overlaid by the -config file and then by flags that
// were set explicitly on the command line.
type Config struct {
	StretchH    float32 `toml:"stretch_h" yaml:"stretch_h"`
	StretchV    float32 `toml:"stretch_v" yaml:"stretch_v"`
	Parallelism int     `toml:"parallelism" yaml:"parallelism"`

	// CacheEntries bounds the analysis results kept by bake; 0 keeps all.
	CacheEntries int `toml:"cache_entries" yaml:"cache_entries"`

	Path PathConfig `toml:"path" yaml:"path"`
}

type PathConfig struct {
	Water         uint8  `toml:"water" yaml:"water"`
	Heuristic     string `toml:"heuristic" yaml:"heuristic"`
	CornerCutting bool   `toml:"corner_cutting" yaml:"corner_cutting"`
	MaxExpansions int    `toml:"max_expansions" yaml:"max_expansions"`
}

func DefaultConfig() Config {
	return Config{
		StretchH:     1,
		StretchV:     1,
		CacheEntries: terrain.DefaultCacheEntries,
		Path: PathConfig{
			Heuristic:     "euclidean",
			CornerCutting: true,
		},
	}
}

func (c Config) Size(heights *grid.Grid[byte]) grid.Size {
	return grid.Size{Width: heights.Width(), Height: heights.Height(), StretchH: c.StretchH, StretchV: c.StretchV}
}

func (c Config) validate() error {
	if !(c.StretchH > 0) || !(c.StretchV > 0) {
		return fmt.Errorf("%w: stretch factors must be positive, got h=%v v=%v", grid.ErrInvalidArgument, c.StretchH, c.StretchV)
	}
	if c.CacheEntries < 0 {
		return fmt.Errorf("%w: cache_entries must not be negative, got %d", grid.ErrInvalidArgument, c.CacheEntries)
	}
	switch c.Path.Heuristic {
	case "euclidean", "octile":
	default:
		return fmt.Errorf("%w: unknown heuristic %q", grid.ErrInvalidArgument, c.Path.Heuristic)
	}
	return nil
}

// decoder is satisfied by both the TOML and YAML decoders.
type decoder interface {
	Decode(v any) error
}

type decoderFunc func(r io.Reader) decoder

func decoderFor(filename string) (decoderFunc, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return func(r io.Reader) decoder {
			return toml.NewDecoder(r).DisallowUnknownFields()
		}, nil
	case ".yaml", ".yml":
		return func(r io.Reader) decoder {
			d := yaml.NewDecoder(r)
			d.KnownFields(true)
			return d
		}, nil
	}
	return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(filename))
}

// openConfig reads filename over the defaults. An empty filename returns
// the defaults.
func openConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	df, err := decoderFor(filename)
	if err != nil {
		return cfg, err
	}
	fp, err := os.Open(filename)
	if err != nil {
		return cfg, err
	}
	defer fp.Close()
	if err := readConfig(&cfg, bufio.NewReader(fp), df); err != nil {
		return cfg, fmt.Errorf("config %s: %w", filename, err)
	}
	return cfg, nil
}

func readConfig(cfg *Config, r io.Reader, df decoderFunc) error {
	err := df(r).Decode(cfg)
	if errors.Is(err, io.EOF) {
		// empty yaml document
		return nil
	}
	return err
}

// explicit reports the names of flags set on the command line.
func explicit(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
