package ecs

import (
	"iter"
	"slices"
)

// EntitiesWith returns the entities that have state in every listed store. The
// smallest store drives iteration, so the order is that store's storage order.
// Membership is evaluated when the sequence is iterated. With no types it
// yields every live entity.
func (s *Scene) EntitiesWith(types ...ComponentType) iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		if len(types) == 0 {
			for id := range s.entities.All() {
				if !yield(id) {
					return
				}
			}
			return
		}

		stores := make([]AnyStore, 0, len(types))
		for _, ct := range types {
			store, ok := s.Store(ct)
			if !ok {
				return
			}
			stores = append(stores, store)
		}
		slices.SortStableFunc(stores, func(a, b AnyStore) int {
			return a.Len() - b.Len()
		})

		candidates := slices.Collect(stores[0].Entities())
		for _, id := range candidates {
			if !presentInAll(stores, id) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

func presentInAll(stores []AnyStore, id EntityId) bool {
	for _, store := range stores {
		if !store.IsPresentOn(id) {
			return false
		}
	}
	return true
}

// Each2 calls fn for every entity that has both an A and a B, stopping when fn
// returns false.
func Each2[A, B any](s *Scene, fn func(id EntityId, a *A, b *B) bool) {
	as, ok := GetComponent[A](s)
	if !ok {
		return
	}
	bs, ok := GetComponent[B](s)
	if !ok {
		return
	}

	for id := range s.EntitiesWith(as.Type(), bs.Type()) {
		a, okA := as.Get(id)
		b, okB := bs.Get(id)
		if !okA || !okB {
			continue
		}
		if !fn(id, a, b) {
			return
		}
	}
}
