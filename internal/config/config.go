// Package config handles mapkit configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/illarion-mapkit/pkg/coord"
	"github.com/Faultbox/illarion-mapkit/pkg/encoding"
)

// Config holds all mapkit settings.
type Config struct {
	Maps     MapsConfig     `yaml:"maps"`
	Geometry GeometryConfig `yaml:"geometry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MapsConfig holds map storage settings.
type MapsConfig struct {
	Root         string        `yaml:"root"`           // Directory holding the map files
	Charset      string        `yaml:"charset"`        // Text encoding of the map files
	CacheMaxCost int64         `yaml:"cache_max_cost"` // Cache budget in map cells
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	DefaultLevel int32         `yaml:"default_level"` // Level of version 1 maps
}

// GeometryConfig holds the tile projection constants.
type GeometryConfig struct {
	StepX int32 `yaml:"step_x"`
	StepY int32 `yaml:"step_y"`
	// LayerOffsets overrides render layer offsets by layer name.
	LayerOffsets map[string]int32 `yaml:"layer_offsets"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Maps: MapsConfig{
			Root:         "maps",
			Charset:      string(encoding.UTF8),
			CacheMaxCost: 4 << 20,
			CacheTTL:     10 * time.Minute,
			DefaultLevel: 0,
		},
		Geometry: GeometryConfig{
			StepX: coord.DefaultStepX,
			StepY: coord.DefaultStepY,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// CharsetValue returns the parsed map file charset.
func (c *MapsConfig) CharsetValue() (encoding.Charset, error) {
	return encoding.ParseCharset(c.Charset)
}

// Build converts the section into a projection geometry.
func (g *GeometryConfig) Build() (coord.Geometry, error) {
	geo := coord.DefaultGeometry()
	geo.StepX = g.StepX
	geo.StepY = g.StepY
	for name, offset := range g.LayerOffsets {
		layer, err := coord.ParseLayer(name)
		if err != nil {
			return coord.Geometry{}, fmt.Errorf("geometry.layer_offsets: %w", err)
		}
		geo = geo.WithOffset(layer, offset)
	}
	if err := geo.Validate(); err != nil {
		return coord.Geometry{}, err
	}
	return geo, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Maps.Root == "" {
		return fmt.Errorf("maps.root must not be empty")
	}
	if _, err := c.Maps.CharsetValue(); err != nil {
		return fmt.Errorf("maps.charset: %w", err)
	}
	if c.Maps.CacheMaxCost < 0 {
		return fmt.Errorf("maps.cache_max_cost must not be negative")
	}
	if _, err := c.Geometry.Build(); err != nil {
		return err
	}
	return nil
}
