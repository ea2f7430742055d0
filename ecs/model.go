package ecs

// FormatVersion is the SceneModel format written by this package.
const FormatVersion = "1"

// ComponentDataModel is the persisted state of one component on one entity.
type ComponentDataModel struct {
	Entity EntityId `json:"entity" yaml:"entity"`
	Value  string   `json:"value" yaml:"value"`
}

// ComponentModel is the persisted state of one component type across entities.
type ComponentModel struct {
	Type string               `json:"type" yaml:"type"`
	Data []ComponentDataModel `json:"data" yaml:"data"`
}

// GlobalComponentModel is the persisted state of one global component.
type GlobalComponentModel struct {
	Type string `json:"type" yaml:"type"`
	Data string `json:"data" yaml:"data"`
}

// SceneModel is the persisted form of a whole scene. Component records refer to
// entities by their position in creation order, 0 through EntityCount-1.
type SceneModel struct {
	FormatVersion    string                 `json:"formatVersion" yaml:"formatVersion"`
	Name             string                 `json:"name" yaml:"name"`
	EntityCount      int                    `json:"entityCount" yaml:"entityCount"`
	Systems          []string               `json:"systems" yaml:"systems"`
	Components       []ComponentModel       `json:"components" yaml:"components"`
	GlobalComponents []GlobalComponentModel `json:"globalComponents" yaml:"globalComponents"`
}
