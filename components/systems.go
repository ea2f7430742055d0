package components

import "github.com/plus3/tessera/ecs"

// MovementSystem integrates Velocity into Transform.Position on every Update.
type MovementSystem struct {
	ecs.SystemBase

	Transforms ecs.ComponentRef[Transform]
	Velocities ecs.ComponentRef[Velocity]
}

func (s *MovementSystem) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.Cache(&s.Transforms),
		ecs.Cache(&s.Velocities),
		ecs.On(s.update),
	}
}

func (s *MovementSystem) update(ev ecs.Update) error {
	transforms, ok := s.Transforms.Get()
	if !ok {
		return nil
	}
	velocities, ok := s.Velocities.Get()
	if !ok {
		return nil
	}

	for id, vel := range velocities.All() {
		t, ok := transforms.Get(id)
		if !ok {
			continue
		}
		t.Position = t.Position.Add(vel.Linear.Scale(ev.DeltaTime))
	}
	return nil
}

// LifetimeSystem counts down Lifetime components and queues the destruction
// of expired entities.
type LifetimeSystem struct {
	ecs.SystemBase

	Lifetimes ecs.ComponentRef[Lifetime]
}

func (s *LifetimeSystem) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.Cache(&s.Lifetimes),
		ecs.On(s.update),
	}
}

func (s *LifetimeSystem) update(ev ecs.Update) error {
	lifetimes, ok := s.Lifetimes.Get()
	if !ok {
		return nil
	}

	for id, l := range lifetimes.All() {
		l.Remaining -= ev.DeltaTime
		if l.Remaining <= 0 && ev.Commands != nil {
			ev.Commands.Destroy(id)
		}
	}
	return nil
}
