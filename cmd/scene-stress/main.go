package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/tessera/components"
	"github.com/plus3/tessera/ecs"
	"github.com/plus3/tessera/script"
)

// churnScript moves every entity a second time from Lua so the script
// bridge shows up in the frame timings.
const churnScript = `
function on_post_update(dt)
  for _, e in ipairs(entities("Transform", "Velocity")) do
    local t = get("Transform", e)
    t.rotation.z = t.rotation.z + dt
    set("Transform", e, t)
  end
end
`

// respawner keeps the population steady by spawning one entity for every
// entity a Lifetime destroyed.
type respawner struct {
	ecs.SystemBase
	target int
}

func (r *respawner) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.On(func(ev ecs.PostUpdate) error {
			for range r.target - r.Scene().EntityCount() {
				ev.Commands.Spawn(spawnRandomEntity)
			}
			return nil
		}),
	}
}

func spawnRandomEntity(scene *ecs.Scene, id ecs.EntityId) error {
	position := components.Vec3{X: rand.Float64() * 100, Y: rand.Float64() * 100}
	if err := ecs.SetComponent(scene, id, components.NewTransform(position)); err != nil {
		return err
	}
	if rand.Intn(2) == 0 {
		velocity := components.Velocity{Linear: components.Vec3{X: rand.Float64() - 0.5, Y: rand.Float64() - 0.5}}
		if err := ecs.SetComponent(scene, id, velocity); err != nil {
			return err
		}
	}
	if rand.Intn(4) == 0 {
		return ecs.SetComponent(scene, id, components.Lifetime{Remaining: rand.Float64() * 5})
	}
	return nil
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of entities to keep alive.")
	withScript := flag.Bool("script", false, "Also run a Lua system over every moving entity.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	log.Println("Starting scene stress test...")

	// 1. Setup registry, scene and systems
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	scene := ecs.NewScene(registry, ecs.WithSceneName("stress"))

	systems := []ecs.System{&components.MovementSystem{}, &components.LifetimeSystem{}, &respawner{target: *entityCount}}
	if *withScript {
		systems = append(systems, script.New("Churn", churnScript))
	}
	for _, sys := range systems {
		if err := scene.AddSystem(sys); err != nil {
			log.Fatalf("add system %s: %v", ecs.SystemName(sys), err)
		}
	}

	// 2. Populate the scene
	log.Printf("Populating scene with %d entities...\n", *entityCount)
	for range *entityCount {
		if err := spawnRandomEntity(scene, scene.CreateEntity()); err != nil {
			log.Fatalf("spawn: %v", err)
		}
	}
	if err := scene.Start(); err != nil {
		log.Fatalf("start scene: %v", err)
	}
	log.Println("Population complete.")

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Systems:        len(systems),
		Script:         *withScript,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	updater := ecs.NewUpdater(scene)
	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			if err := updater.Once(deltaTime.Seconds()); err != nil {
				report.FrameErrors++
			}
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.Updater = updater.Stats()
	report.Scene = scene.CollectStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	if err := scene.Stop(); err != nil {
		log.Printf("stop scene: %v", err)
	}
	log.Println("Simulation finished.")

	// 4. Generate report to console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}
