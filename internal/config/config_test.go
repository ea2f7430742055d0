package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/tessera/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := config.Load(filepath.Join("testdata", "engine.toml"))
	require.NoError(t, err)

	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
	assert.Equal(t, 30.0, cfg.Engine.UpdateRateHz)
	assert.Equal(t, 2*time.Millisecond, cfg.Engine.PollInterval)
	assert.Equal(t, "scenes/level.yaml", cfg.Scene.Path)
	assert.Equal(t, "saves/level.json", cfg.Scene.SavePath)
	assert.True(t, cfg.Window.Enabled)
	assert.True(t, cfg.Window.DebugUI)
	assert.Equal(t, "level editor", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width, "unset keys keep their defaults")
	assert.Equal(t, config.ResourceConfig{Root: "assets", Workers: 8}, cfg.Resources)
	assert.Equal(t, []config.ScriptConfig{
		{Name: "Drift", Path: "scripts/drift.lua"},
		{Name: "Spawner", Path: "scripts/spawner.lua"},
	}, cfg.Scripts)
	assert.Equal(t, "cpu", cfg.Profile.Mode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join("testdata", "nope.toml"))
	assert.Error(t, err)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestParseRejects(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":       "[engine",
		"rate":         "[engine]\nupdate_rate_hz = 0",
		"poll":         "[engine]\npoll_interval = \"-1s\"",
		"workers":      "[resources]\nworkers = 0",
		"window":       "[window]\nenabled = true\nwidth = 0",
		"profile":      "[profile]\nmode = \"trace\"",
		"script path":  "[[scripts]]\nname = \"a\"",
		"script twice": "[[scripts]]\nname = \"a\"\npath = \"a.lua\"\n[[scripts]]\nname = \"a\"\npath = \"b.lua\"",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(data))
			require.Error(t, err)
			if name != "syntax" {
				assert.ErrorIs(t, err, config.ErrInvalid)
			}
		})
	}
}
