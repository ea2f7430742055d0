// Package components provides the stock component types and systems of the
// runtime: spatial state, movement and timed expiry.
package components

import "github.com/plus3/tessera/ecs"

// Vec3 is a three-component vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Transform is the position, rotation (Euler angles, radians) and scale of an
// entity. Deserializing a Transform onto an entity without one creates it.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

// NewTransform returns a transform at position with unit scale.
func NewTransform(position Vec3) Transform {
	return Transform{Position: position, Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// Velocity is the linear velocity of an entity in units per second.
// Deserializing a Velocity onto an entity without one creates it.
type Velocity struct {
	Linear Vec3 `json:"linear"`
}

// Lifetime destroys its entity once Remaining seconds have elapsed. Lifetimes
// are attached by spawning code, so deserializing one only updates entities
// that already have a Lifetime.
type Lifetime struct {
	Remaining float64 `json:"remaining"`
}

// Register registers every component type of this package.
func Register(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](r, ecs.WithPolicy(ecs.DeserializeUpsert))
	ecs.RegisterComponent[Velocity](r, ecs.WithPolicy(ecs.DeserializeUpsert))
	ecs.RegisterComponent[Lifetime](r, ecs.WithPolicy(ecs.DeserializeUpdateOnly))
}

// RegisterSystems registers every system of this package under its type name.
func RegisterSystems(r *ecs.SystemRegistry) {
	ecs.RegisterSystem(r, func() *MovementSystem { return &MovementSystem{} })
	ecs.RegisterSystem(r, func() *LifetimeSystem { return &LifetimeSystem{} })
}
