// Command tessera runs a scene headless or in a window with the debug UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	debugui_ebiten "github.com/plus3/tessera/ecs/debugui/ebiten"
	"github.com/plus3/tessera/internal/config"
	"github.com/plus3/tessera/internal/logging"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultConfigPath = "tessera.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "Path to the TOML config. Defaults to $TESSERA_CONFIG or "+defaultConfigPath+".")
	scenePath := flag.String("scene", "", "Scene file to load, overriding the config.")
	headless := flag.Bool("headless", false, "Run without a window even if the config enables one.")
	flag.Parse()

	// 1. Load config
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *scenePath != "" {
		cfg.Scene.Path = *scenePath
	}
	if *headless {
		cfg.Window.Enabled = false
	}

	// 2. Init logger
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return eris.Wrap(err, "init logger")
	}
	defer log.Sync()

	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Path), profile.NoShutdownHook).Stop()
	}

	// 3. Load the scene
	e, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	log.Info("scene ready",
		zap.String("scene", e.scene.Name()),
		zap.Int("entities", e.scene.EntityCount()),
		zap.Int("systems", len(e.scene.Systems())),
		zap.Duration("interval", e.updater.Interval()),
	)

	// 4. Drive frames until closed
	if cfg.Window.Enabled {
		err = debugui_ebiten.Run(e.scene, e.updater, cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = e.updater.Run(ctx)
		stop()
	}
	if err != nil {
		log.Error("run failed", zap.Error(err))
	}

	stats := e.updater.Stats()
	log.Info("shutting down", zap.Int64("frames", stats.Frames), zap.Int64("failed", stats.FailedFrames))
	return errors.Join(err, e.shutdown(cfg.Scene.SavePath))
}

// loadConfig reads path, or $TESSERA_CONFIG, or the default path. Only a
// missing default file falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("TESSERA_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = defaultConfigPath
		}
	}

	if _, err := os.Stat(path); !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Defaults(), nil
	}
	return config.Load(path)
}
