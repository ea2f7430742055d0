package main

import (
	"errors"

	"github.com/plus3/tessera/components"
	"github.com/plus3/tessera/ecs"
	"github.com/plus3/tessera/ecs/debugui"
	"github.com/plus3/tessera/internal/config"
	"github.com/plus3/tessera/resource"
	"github.com/plus3/tessera/sceneio"
	"github.com/plus3/tessera/script"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// engine is everything run needs to drive one scene.
type engine struct {
	scene     *ecs.Scene
	updater   *ecs.Updater
	resources *resource.Manager
	log       *zap.Logger
}

func newRegistries(cfg *config.Config, log *zap.Logger) (*ecs.ComponentRegistry, *ecs.SystemRegistry) {
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	debugui.Register(registry)

	systems := ecs.NewSystemRegistry()
	components.RegisterSystems(systems)
	for _, s := range cfg.Scripts {
		systems.Register(s.Name, script.Factory(s.Name, s.Path, script.WithLogger(log)))
	}
	return registry, systems
}

// newEngine loads the configured scene, or starts an empty one when no scene
// is configured. Items the loader skipped are logged, not fatal.
func newEngine(cfg *config.Config, log *zap.Logger) (*engine, error) {
	registry, systems := newRegistries(cfg, log)
	loader := sceneio.Loader{Components: registry, Systems: systems, Logger: log}

	model := ecs.SceneModel{FormatVersion: ecs.FormatVersion, Name: "untitled"}
	if cfg.Scene.Path != "" {
		var err error
		if model, err = sceneio.DecodeFile(cfg.Scene.Path); err != nil {
			return nil, eris.Wrap(err, "load scene")
		}
	}

	scene, report := loader.Load(model)
	if report.Errors > 0 {
		log.Warn("scene loaded with errors", zap.Int("errors", report.Errors), zap.Error(report.Err()))
	}

	if _, ok := ecs.GetGlobal[ecs.TargetRate](scene); !ok {
		if err := ecs.SetGlobal(scene, ecs.TargetRate{Hz: cfg.Engine.UpdateRateHz}); err != nil {
			return nil, err
		}
	}

	resources := resource.New(resource.ReadFile,
		resource.WithRoot(cfg.Resources.Root),
		resource.WithWorkers(cfg.Resources.Workers),
		resource.WithLogger(log),
	)
	updater := ecs.NewUpdater(scene,
		ecs.WithBeforeFrame(resources.Pump),
		ecs.WithPollInterval(cfg.Engine.PollInterval),
	)

	if cfg.Window.Enabled && cfg.Window.DebugUI {
		if err := scene.AddSystem(debugui.NewSystem(debugui.DefaultWindows(updater)...)); err != nil {
			return nil, err
		}
	}

	return &engine{scene: scene, updater: updater, resources: resources, log: log}, nil
}

// shutdown stops the scene, waits for pending loads and writes a snapshot
// when savePath is set.
func (e *engine) shutdown(savePath string) error {
	var errs []error
	if e.scene.IsRunning() {
		if err := e.scene.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.resources.Close(); err != nil {
		errs = append(errs, err)
	}

	if savePath != "" {
		model, err := sceneio.Snapshot(e.scene)
		if err == nil {
			err = sceneio.EncodeFile(savePath, model)
		}
		if err != nil {
			errs = append(errs, eris.Wrapf(err, "save scene to %s", savePath))
		} else {
			e.log.Info("scene saved", zap.String("path", savePath))
		}
	}
	return errors.Join(errs...)
}
