// Package config loads engine settings from TOML.
package config

import (
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
)

var ErrInvalid = eris.New("invalid config")

type Config struct {
	Logging   LoggingConfig  `toml:"logging"`
	Engine    EngineConfig   `toml:"engine"`
	Scene     SceneConfig    `toml:"scene"`
	Window    WindowConfig   `toml:"window"`
	Resources ResourceConfig `toml:"resources"`
	Scripts   []ScriptConfig `toml:"scripts"`
	Profile   ProfileConfig  `toml:"profile"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type EngineConfig struct {
	UpdateRateHz float64       `toml:"update_rate_hz"` // used when the scene has no TargetRate
	PollInterval time.Duration `toml:"poll_interval"`
}

type SceneConfig struct {
	Path     string `toml:"path"`
	SavePath string `toml:"save_path"` // snapshot written on shutdown when set
}

type WindowConfig struct {
	Enabled bool   `toml:"enabled"`
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Title   string `toml:"title"`
	DebugUI bool   `toml:"debug_ui"`
}

type ResourceConfig struct {
	Root    string `toml:"root"`
	Workers int    `toml:"workers"`
}

// ScriptConfig registers a Lua system under Name so scenes can list it.
type ScriptConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "none", "cpu" or "mem"
	Path string `toml:"path"`
}

var profileModes = []string{"none", "cpu", "mem"}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrap(err, "parse")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Engine: EngineConfig{
			UpdateRateHz: 60,
			PollInterval: time.Millisecond,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "tessera",
		},
		Resources: ResourceConfig{
			Root:    ".",
			Workers: 4,
		},
		Profile: ProfileConfig{
			Mode: "none",
			Path: ".",
		},
	}
}

func (c *Config) Validate() error {
	if c.Engine.UpdateRateHz <= 0 {
		return eris.Wrapf(ErrInvalid, "engine.update_rate_hz must be positive, got %v", c.Engine.UpdateRateHz)
	}
	if c.Engine.PollInterval <= 0 {
		return eris.Wrapf(ErrInvalid, "engine.poll_interval must be positive, got %v", c.Engine.PollInterval)
	}
	if c.Resources.Workers < 1 {
		return eris.Wrapf(ErrInvalid, "resources.workers must be at least 1, got %d", c.Resources.Workers)
	}
	if c.Window.Enabled && (c.Window.Width <= 0 || c.Window.Height <= 0) {
		return eris.Wrapf(ErrInvalid, "window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if !slices.Contains(profileModes, c.Profile.Mode) {
		return eris.Wrapf(ErrInvalid, "profile.mode %q", c.Profile.Mode)
	}

	seen := make(map[string]bool, len(c.Scripts))
	for i, s := range c.Scripts {
		if s.Name == "" || s.Path == "" {
			return eris.Wrapf(ErrInvalid, "scripts[%d] needs a name and a path", i)
		}
		if seen[s.Name] {
			return eris.Wrapf(ErrInvalid, "script %q listed twice", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
