package ecs_test

import "github.com/plus3/tessera/ecs"

// Common test component types
type Position struct {
	X, Y, Z float64
}

type Velocity struct {
	DX, DY, DZ float64
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

// Global test component types
type Gravity struct {
	Y float64
}

type Paused struct {
	Reason string
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry, ecs.WithPolicy(ecs.DeserializeUpdateOnly))
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterGlobal[Gravity](registry)
	ecs.RegisterGlobal[Paused](registry)
	return registry
}

func newTestScene() *ecs.Scene {
	return ecs.NewScene(newTestRegistry(), ecs.WithSceneName("test"))
}

func mustStore[T any](s *ecs.Scene) *ecs.ComponentStore[T] {
	store, err := ecs.AddComponent[T](s)
	if err != nil {
		panic(err)
	}
	return store
}
