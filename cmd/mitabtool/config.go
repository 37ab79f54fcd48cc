package main

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"

	"github.com/tingold/orb-mitab/fgb"
	"github.com/tingold/orb-mitab/mapfile"
)

// Config holds the settings read from the TOML configuration file.
type Config struct {
	// Bounds of the map coordinate system as [minx, miny, maxx, maxy].
	Bounds   []float64 `toml:"bounds"`
	Quadrant int       `toml:"quadrant"`
	Charset  string    `toml:"charset"`

	// TwoPointLineAsPolyline stores two vertex lines as polylines
	// instead of LINE objects.
	TwoPointLineAsPolyline bool `toml:"two_point_line_as_polyline"`

	Layer LayerConfig `toml:"layer"`
}

// LayerConfig describes the FlatGeobuf layer written by export and serve.
type LayerConfig struct {
	Name         string `toml:"name"`
	Description  string `toml:"description"`
	IncludeIndex bool   `toml:"include_index"`
}

var errBounds = errors.New("bounds must hold four values with min < max")

func defaultConfig() *Config {
	m := mapfile.DefaultOptions()
	return &Config{
		Bounds:   []float64{m.Bounds.Min[0], m.Bounds.Min[1], m.Bounds.Max[0], m.Bounds.Max[1]},
		Quadrant: m.Quadrant,
		Charset:  m.Charset,
		Layer: LayerConfig{
			Name:         "mitab",
			IncludeIndex: true,
		},
	}
}

// readConfig reads path over the defaults. An empty path returns the
// defaults.
func readConfig(path string) (*Config, error) {
	c := defaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, fmt.Errorf("read config: unknown key %q", undec[0].String())
		}
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) validate() error {
	if len(c.Bounds) != 4 || c.Bounds[0] >= c.Bounds[2] || c.Bounds[1] >= c.Bounds[3] {
		return errBounds
	}
	if c.Quadrant < 0 || c.Quadrant > 4 {
		return fmt.Errorf("quadrant %d out of range", c.Quadrant)
	}
	if _, err := mapfile.Charset(c.Charset); err != nil {
		return err
	}
	return nil
}

func (c *Config) mapfileOptions() *mapfile.Options {
	return &mapfile.Options{
		Bounds: orb.Bound{
			Min: orb.Point{c.Bounds[0], c.Bounds[1]},
			Max: orb.Point{c.Bounds[2], c.Bounds[3]},
		},
		Quadrant: c.Quadrant,
		Charset:  c.Charset,
	}
}

func (c *Config) fgbOptions() *fgb.Options {
	opts := fgb.DefaultOptions()
	opts.Name = c.Layer.Name
	opts.Description = c.Layer.Description
	opts.IncludeIndex = c.Layer.IncludeIndex
	return opts
}
