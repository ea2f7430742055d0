package ecs_test

import (
	"fmt"

	"github.com/plus3/tessera/ecs"
)

// ExampleUpdater demonstrates a system that declares its bindings and is
// driven by an Updater.
func ExampleUpdater() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	scene := ecs.NewScene(registry)

	id := scene.CreateEntity()
	_ = ecs.SetComponent(scene, id, Position{X: 1, Y: 2, Z: 3})
	_ = ecs.SetComponent(scene, id, Velocity{DX: 2})

	_ = scene.AddSystem(&mover{})
	_ = scene.Start()

	updater := ecs.NewUpdater(scene)
	_ = updater.Once(0.5)

	pos, _ := ecs.Get[Position](scene, id)
	fmt.Printf("(%.0f, %.0f, %.0f)\n", pos.X, pos.Y, pos.Z)

	// Output:
	// (2, 2, 3)
}

// ExampleCommands demonstrates deferring structural changes until the end of
// the frame.
func ExampleCommands() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Health](registry)
	scene := ecs.NewScene(registry)

	for i := range 3 {
		_ = ecs.SetComponent(scene, scene.CreateEntity(), Health{Current: i})
	}

	ecs.Subscribe(scene.Events(), func(ev ecs.Update) error {
		healths, _ := ecs.GetComponent[Health](scene)
		for id, health := range healths.All() {
			if health.Current == 0 {
				ev.Commands.Destroy(id)
			}
		}
		fmt.Println("entities during update:", scene.EntityCount())
		return nil
	})

	_ = ecs.NewUpdater(scene).Once(0.016)
	fmt.Println("entities after frame:", scene.EntityCount())

	// Output:
	// entities during update: 3
	// entities after frame: 2
}

// ExampleEventBus demonstrates named events published at runtime.
func ExampleEventBus() {
	bus := ecs.NewEventBus()

	bus.Subscribe("door.opened", func(e ecs.Event) error {
		fmt.Println("first:", e.(ecs.Signal).Args[0])
		return nil
	})
	bus.Subscribe("door.opened", func(e ecs.Event) error {
		fmt.Println("second")
		return nil
	})

	_ = bus.Publish(ecs.Signal{Name: "door.opened", Args: []any{"north"}})

	// Output:
	// first: north
	// second
}
