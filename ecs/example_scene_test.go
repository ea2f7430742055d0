package ecs_test

import (
	"fmt"

	"github.com/plus3/tessera/ecs"
)

// ExampleNewScene demonstrates the basic scene workflow: register component
// types, create entities, attach state and query it back.
func ExampleNewScene() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Name](registry)

	scene := ecs.NewScene(registry)

	player := scene.CreateEntity()
	_ = ecs.SetComponent(scene, player, Position{X: 1, Y: 2})
	_ = ecs.SetComponent(scene, player, Name{Value: "player"})

	rock := scene.CreateEntity()
	_ = ecs.SetComponent(scene, rock, Position{X: 5})

	positions, _ := ecs.GetComponent[Position](scene)
	names, _ := ecs.GetComponent[Name](scene)

	for id := range scene.EntitiesWith(positions.Type(), names.Type()) {
		pos, _ := positions.Get(id)
		name, _ := names.Get(id)
		fmt.Printf("%s at (%.0f, %.0f)\n", name.Value, pos.X, pos.Y)
	}
	fmt.Printf("%d entities, %d with a position\n", scene.EntityCount(), positions.Len())

	// Output:
	// player at (1, 2)
	// 2 entities, 2 with a position
}

// ExampleSetGlobal demonstrates global components, which hold scene-wide state
// not tied to an entity.
func ExampleSetGlobal() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterGlobal[Gravity](registry)
	scene := ecs.NewScene(registry)

	if _, ok := ecs.GetGlobal[Gravity](scene); !ok {
		fmt.Println("no gravity yet")
	}

	_ = ecs.SetGlobal(scene, Gravity{Y: -9.8})
	gravity, _ := ecs.GetGlobal[Gravity](scene)
	fmt.Printf("gravity %.1f\n", gravity.Y)

	ct, _ := ecs.TypeOf[Gravity](registry)
	data, _, _ := scene.SerializeGlobal(ct)
	fmt.Println(data)

	// Output:
	// no gravity yet
	// gravity -9.8
	// {"Y":-9.8}
}

// ExampleComponentStore_SerializeState shows the persisted form of a component.
func ExampleComponentStore_SerializeState() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Health](registry)
	scene := ecs.NewScene(registry)

	healths, _ := ecs.AddComponent[Health](scene)
	id := scene.CreateEntity()
	_ = healths.Set(id, Health{Current: 3, Max: 5})

	data, ok, _ := healths.SerializeState(id)
	fmt.Println(ok, data)

	other := scene.CreateEntity()
	_ = healths.DeserializeState(ecs.ComponentDataModel{Entity: other, Value: data})
	health, _ := healths.Get(other)
	fmt.Printf("%d/%d\n", health.Current, health.Max)

	// Output:
	// true {"Current":3,"Max":5}
	// 3/5
}
