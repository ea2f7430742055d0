package ecs

// SceneStats is a point-in-time summary of a scene, used by the debug UI and
// the stress tool.
type SceneStats struct {
	Name     string
	Running  bool
	Entities int
	Stores   []StoreStats
	Globals  []string
	Systems  []SystemInfo
	Events   []EventStats
}

// StoreStats describes one attached component store.
type StoreStats struct {
	Type     ComponentType
	Name     string
	Entities int
}

// SystemInfo describes one added system.
type SystemInfo struct {
	Name          string
	State         SystemState
	Subscriptions int
	Caches        int
}

// CollectStats gathers a SceneStats snapshot.
func (s *Scene) CollectStats() SceneStats {
	stats := SceneStats{
		Name:     s.name,
		Running:  s.running,
		Entities: s.entities.Len(),
		Events:   s.bus.Stats(),
	}

	for _, store := range s.Stores() {
		stats.Stores = append(stats.Stores, StoreStats{
			Type:     store.Type(),
			Name:     store.Name(),
			Entities: store.Len(),
		})
	}
	for _, ct := range s.Globals() {
		stats.Globals = append(stats.Globals, s.registry.Name(ct))
	}
	for _, e := range s.systems {
		stats.Systems = append(stats.Systems, SystemInfo{
			Name:          e.name,
			State:         e.state,
			Subscriptions: len(e.subs),
			Caches:        len(e.caches),
		})
	}
	return stats
}
