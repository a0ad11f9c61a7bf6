// Package config loads the runtime configuration of the particle visualizer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeusync/particleviz/internal/core/geom"
	"github.com/zeusync/particleviz/internal/core/observability/log"
	"github.com/zeusync/particleviz/internal/core/scene"
	"github.com/zeusync/particleviz/internal/core/visualizer"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Run        RunConfig        `yaml:"run"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RunConfig controls the frame loop of the driver.
type RunConfig struct {
	Start        time.Time     `yaml:"start"`
	Step         time.Duration `yaml:"step"`
	Frames       int           `yaml:"frames"`
	Parallel     int           `yaml:"parallel"`      // scenes run concurrently
	TelemetryDir string        `yaml:"telemetry_dir"` // empty disables telemetry
	Scenes       []string      `yaml:"scenes"`
}

type VisualizerConfig struct {
	HideWhenNotShown bool           `yaml:"hide_when_not_shown"`
	Defaults         DefaultsConfig `yaml:"defaults"`
}

// DefaultsConfig is the file form of visualizer.Defaults.
type DefaultsConfig struct {
	Emitter            scene.EmitterSpec `yaml:"emitter"`
	StartScale         float64           `yaml:"start_scale"`
	EndScale           float64           `yaml:"end_scale"`
	StartColor         geom.Color        `yaml:"start_color"`
	EndColor           geom.Color        `yaml:"end_color"`
	Rate               float64           `yaml:"rate"`
	MinWidth           float64           `yaml:"min_width"`
	MaxWidth           float64           `yaml:"max_width"`
	MinHeight          float64           `yaml:"min_height"`
	MaxHeight          float64           `yaml:"max_height"`
	MinSpeed           float64           `yaml:"min_speed"`
	MaxSpeed           float64           `yaml:"max_speed"`
	MinLife            float64           `yaml:"min_life"`
	MaxLife            float64           `yaml:"max_life"`
	LifeTime           float64           `yaml:"life_time"`
	Loop               bool              `yaml:"loop"`
	EmitterModelMatrix geom.Matrix4      `yaml:"emitter_model_matrix"`
}

// Load reads the embedded defaults and overlays the file at path, if any.
// Only keys present in the file override the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Run.Start.IsZero() {
		errs = append(errs, ErrMissingStart)
	}
	if c.Run.Step <= 0 {
		errs = append(errs, ErrInvalidStep)
	}
	if c.Run.Frames < 0 {
		errs = append(errs, ErrInvalidFrames)
	}
	if c.Run.Parallel < 1 {
		errs = append(errs, ErrInvalidParallel)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.Visualizer.Defaults.Emitter.Build(); err != nil {
		errs = append(errs, fmt.Errorf("visualizer.defaults.emitter: %w", err))
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// Defaults materializes the visualizer default table.
func (c *Config) Defaults() (visualizer.Defaults, error) {
	d := c.Visualizer.Defaults
	emitter, err := d.Emitter.Build()
	if err != nil {
		return visualizer.Defaults{}, fmt.Errorf("building default emitter: %w", err)
	}
	return visualizer.Defaults{
		Emitter:            emitter,
		StartScale:         d.StartScale,
		EndScale:           d.EndScale,
		StartColor:         d.StartColor,
		EndColor:           d.EndColor,
		Rate:               d.Rate,
		MinWidth:           d.MinWidth,
		MaxWidth:           d.MaxWidth,
		MinHeight:          d.MinHeight,
		MaxHeight:          d.MaxHeight,
		MinSpeed:           d.MinSpeed,
		MaxSpeed:           d.MaxSpeed,
		MinLife:            d.MinLife,
		MaxLife:            d.MaxLife,
		LifeTime:           d.LifeTime,
		Loop:               d.Loop,
		EmitterModelMatrix: d.EmitterModelMatrix,
	}, nil
}

// VisualizerOptions returns the options that apply this configuration.
func (c *Config) VisualizerOptions() ([]visualizer.Option, error) {
	d, err := c.Defaults()
	if err != nil {
		return nil, err
	}
	return []visualizer.Option{
		visualizer.WithDefaults(d),
		visualizer.WithHideWhenNotShown(c.Visualizer.HideWhenNotShown),
	}, nil
}

// WriteYAML saves the effective configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
