package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds defaults read from a YAML file. Command-line flags win over
// every field.
type Config struct {
	Shape    string  `yaml:"shape"`
	Style    string  `yaml:"style"`
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	Font     string  `yaml:"font"`
	Caption  string  `yaml:"caption"`
	Subtitle string  `yaml:"subtitle"`
	Output   string  `yaml:"output"`
	Swatch   string  `yaml:"swatch"`
	Seed     *uint64 `yaml:"seed"`
	Palette  string  `yaml:"palette"`
	Colors   int     `yaml:"colors"`
	Workers  int     `yaml:"workers"`
	White    *int    `yaml:"white_threshold"`
	Black    *int    `yaml:"black_threshold"`
	Addr     string  `yaml:"addr"`
}

// loadConfig reads path. A missing file yields an empty Config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// merge copies every non-zero field of c into flags that were not set on
// the command line. Seed and the thresholds are pointers so an explicit 0
// still counts.
func (c Config) merge(o *options, set map[string]bool) {
	str := func(name string, dst *string, v string) {
		if !set[name] && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int, v int) {
		if !set[name] && v != 0 {
			*dst = v
		}
	}
	str("shape", &o.shape, c.Shape)
	str("style", &o.style, c.Style)
	num("w", &o.width, c.Width)
	num("h", &o.height, c.Height)
	str("font", &o.font, c.Font)
	str("caption", &o.caption, c.Caption)
	str("subtitle", &o.subtitle, c.Subtitle)
	str("o", &o.output, c.Output)
	str("swatch", &o.swatch, c.Swatch)
	str("palette", &o.palette, c.Palette)
	num("colors", &o.colors, c.Colors)
	num("workers", &o.workers, c.Workers)
	ptr := func(name string, dst *int, v *int) {
		if !set[name] && v != nil {
			*dst = *v
		}
	}
	ptr("white", &o.white, c.White)
	ptr("black", &o.black, c.Black)
	if !set["seed"] && c.Seed != nil {
		o.seed, o.seeded = *c.Seed, true
	}
}
