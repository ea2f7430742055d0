package ecs

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Commands buffers structural changes recorded while a frame is being
// dispatched. The Updater flushes them after PostUpdate, so handlers never
// destroy entities or drop state out from under the other handlers of the
// same frame.
type Commands struct {
	destroys     []EntityId
	removes      []removeCommand
	deserializes []deserializeCommand
	spawns       []func(s *Scene, id EntityId) error
	defers       []func()
}

type removeCommand struct {
	entity EntityId
	ct     ComponentType
}

type deserializeCommand struct {
	ct     ComponentType
	record ComponentDataModel
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

// Destroy queues an entity destruction.
func (c *Commands) Destroy(id EntityId) {
	c.destroys = append(c.destroys, id)
}

// Remove queues a reset of the entity's state in the store for ct.
func (c *Commands) Remove(id EntityId, ct ComponentType) {
	c.removes = append(c.removes, removeCommand{entity: id, ct: ct})
}

// Deserialize queues a DeserializeState on the store for ct, attaching it if needed.
func (c *Commands) Deserialize(ct ComponentType, record ComponentDataModel) {
	c.deserializes = append(c.deserializes, deserializeCommand{ct: ct, record: record})
}

// Spawn queues the creation of an entity; fn initializes it once it exists.
func (c *Commands) Spawn(fn func(s *Scene, id EntityId) error) {
	c.spawns = append(c.spawns, fn)
}

// Defer queues a function to run at flush time, after every other command.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	return len(c.destroys) + len(c.removes) + len(c.deserializes) + len(c.spawns) + len(c.defers)
}

// maxFlushPasses bounds how often Flush drains commands queued by the
// commands it is applying. Anything queued after the last pass stays in the
// buffer for the next Flush.
const maxFlushPasses = 16

// Flush applies the queued commands to the scene in a fixed order (destroys,
// removes, deserializes, spawns, defers). Removes and deserializes aimed at
// entities destroyed in the same flush are dropped. Commands queued while the
// flush runs are applied in a further pass.
func (c *Commands) Flush(s *Scene) error {
	var errs []error
	destroyed := make(map[EntityId]bool, len(c.destroys))

	for pass := 0; pass < maxFlushPasses && c.Len() > 0; pass++ {
		batch := *c
		*c = Commands{}
		errs = append(errs, batch.apply(s, destroyed)...)
	}
	return errors.Join(errs...)
}

func (c *Commands) apply(s *Scene, destroyed map[EntityId]bool) []error {
	var errs []error

	for _, id := range c.destroys {
		if destroyed[id] {
			continue
		}
		destroyed[id] = true
		if err := s.DestroyEntity(id); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.removes {
		if destroyed[cmd.entity] {
			continue
		}
		if store, ok := s.Store(cmd.ct); ok {
			if err := store.ResetEntity(cmd.entity); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, cmd := range c.deserializes {
		if destroyed[cmd.record.Entity] {
			continue
		}
		store, err := s.AttachStore(cmd.ct)
		if store == nil {
			errs = append(errs, err)
			continue
		}
		if err := errors.Join(err, store.DeserializeState(cmd.record)); err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range c.spawns {
		id := s.CreateEntity()
		if err := fn(s, id); err != nil {
			errs = append(errs, eris.Wrapf(err, "spawn entity %d", id))
		}
	}

	for _, fn := range c.defers {
		fn()
	}
	return errs
}
