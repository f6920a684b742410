package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/tilemap/batch"
)

// envPrefix prefixes environment overrides, e.g. TILEDEMO_FRAMES=120.
const envPrefix = "TILEDEMO"

type config struct {
	Width     int
	Height    int
	Tile      int
	Margin    int
	MapWidth  int
	MapHeight int
	Seed      uint64
	Frames    int
	ScrollX   float64
	ScrollY   float64
	Output    string
	Encoding  batch.Encoding
	GPU       bool
	Verbose   bool
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("tiledemo", pflag.ContinueOnError)
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.Int("width", 816, "screen width")
	fs.Int("height", 624, "screen height")
	fs.Int("tile", 48, "tile size in pixels")
	fs.Int("margin", 20, "pixels painted beyond each screen edge")
	fs.Int("map-width", 64, "map width in tiles")
	fs.Int("map-height", 48, "map height in tiles")
	fs.Uint64("seed", 1, "map generator seed")
	fs.Int("frames", 90, "number of ticks to simulate")
	fs.Float64("scroll-x", 1.5, "horizontal scroll per tick in pixels")
	fs.Float64("scroll-y", 0.5, "vertical scroll per tick in pixels")
	fs.StringP("output", "o", "tiledemo.png", "output PNG")
	fs.String("encoding", "quad", "batch encoding: quad or point-sprite")
	fs.Bool("gpu", false, "also run the GPU path on the noop backend")
	fs.BoolP("verbose", "v", false, "debug logging")
	return fs
}

// loadConfig merges flags, environment and an optional config file, in
// that order of precedence.
func loadConfig(args []string) (config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return config{}, fmt.Errorf("bind flags: %w", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	enc, err := parseEncoding(v.GetString("encoding"))
	if err != nil {
		return config{}, err
	}
	cfg := config{
		Width:     v.GetInt("width"),
		Height:    v.GetInt("height"),
		Tile:      v.GetInt("tile"),
		Margin:    v.GetInt("margin"),
		MapWidth:  v.GetInt("map-width"),
		MapHeight: v.GetInt("map-height"),
		Seed:      v.GetUint64("seed"),
		Frames:    v.GetInt("frames"),
		ScrollX:   v.GetFloat64("scroll-x"),
		ScrollY:   v.GetFloat64("scroll-y"),
		Output:    v.GetString("output"),
		Encoding:  enc,
		GPU:       v.GetBool("gpu"),
		Verbose:   v.GetBool("verbose"),
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid screen size %dx%d", c.Width, c.Height)
	case c.Tile <= 0 || c.Tile%2 != 0:
		return fmt.Errorf("tile size must be a positive even number, got %d", c.Tile)
	case c.MapWidth <= 0 || c.MapHeight <= 0:
		return fmt.Errorf("invalid map size %dx%d", c.MapWidth, c.MapHeight)
	case c.Margin < 0 || c.Frames < 0:
		return fmt.Errorf("margin and frames must not be negative")
	}
	return nil
}

func parseEncoding(s string) (batch.Encoding, error) {
	switch strings.ToLower(s) {
	case "quad", "":
		return batch.EncodingQuad, nil
	case "point-sprite", "sprite":
		return batch.EncodingPointSprite, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}
