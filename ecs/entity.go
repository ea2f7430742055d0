package ecs

import (
	"iter"
	"math"
)

// EntityId encodes both the entity index (lower 32 bits) and its generation (upper 32 bits).
// The generation increments every time an index is released, so a destroyed id never
// aliases the entity that later reuses its index.
type EntityId uint64

// NoEntity is the sentinel id used where an event or record is not about a single entity.
const NoEntity EntityId = math.MaxUint64

// NewEntityId creates an EntityId from an entity index and generation
func NewEntityId(index uint32, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index extracts the entity index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// EntityRegistry allocates and recycles entity identifiers and tracks which are alive.
type EntityRegistry struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	count       int
}

// NewEntityRegistry creates an empty entity registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		generations: make([]uint32, 0, 256),
		alive:       make([]bool, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

// Create allocates a new entity id, reusing a released index when one is available.
func (r *EntityRegistry) Create() EntityId {
	r.count++

	if len(r.freeList) > 0 {
		idx := r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.alive[idx] = true
		return NewEntityId(idx, r.generations[idx])
	}

	idx := uint32(len(r.generations))
	r.generations = append(r.generations, 0)
	r.alive = append(r.alive, true)
	return NewEntityId(idx, 0)
}

// Destroy releases the id. Returns false if the id was not alive.
func (r *EntityRegistry) Destroy(id EntityId) bool {
	if !r.Exists(id) {
		return false
	}

	idx := id.Index()
	r.alive[idx] = false
	r.generations[idx]++
	r.freeList = append(r.freeList, idx)
	r.count--
	return true
}

// Exists reports whether the id names a live entity.
func (r *EntityRegistry) Exists(id EntityId) bool {
	if id == NoEntity {
		return false
	}
	idx := id.Index()
	if int(idx) >= len(r.generations) {
		return false
	}
	return r.alive[idx] && r.generations[idx] == id.Generation()
}

// Len returns the number of live entities.
func (r *EntityRegistry) Len() int {
	return r.count
}

// All returns the live entities in ascending index order.
// The set is captured when All is called; later creates and destroys are not observed.
func (r *EntityRegistry) All() iter.Seq[EntityId] {
	ids := make([]EntityId, 0, r.count)
	for idx, alive := range r.alive {
		if alive {
			ids = append(ids, NewEntityId(uint32(idx), r.generations[idx]))
		}
	}

	return func(yield func(EntityId) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}
