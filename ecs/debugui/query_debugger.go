package debugui

import (
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// QueryDebugger runs EntitiesWith over a set of component types picked from
// the registry and shows the matching entities.
type QueryDebugger struct {
	selected []string
	limit    int
}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{limit: 200}
}

// Toggle adds name to the selection, or removes it if already selected.
func (qd *QueryDebugger) Toggle(name string) {
	if i := slices.Index(qd.selected, name); i >= 0 {
		qd.selected = slices.Delete(qd.selected, i, i+1)
		return
	}
	qd.selected = append(qd.selected, name)
}

// Selected returns the selected component names in selection order.
func (qd *QueryDebugger) Selected() []string {
	return qd.selected
}

// Run returns the entities that have every selected component. Names the
// registry does not know match nothing.
func (qd *QueryDebugger) Run(scene *ecs.Scene) []ecs.EntityId {
	types := make([]ecs.ComponentType, 0, len(qd.selected))
	for _, name := range qd.selected {
		ct, ok := scene.Registry().Lookup(name)
		if !ok {
			return nil
		}
		types = append(types, ct)
	}
	return slices.Collect(scene.EntitiesWith(types...))
}

func (qd *QueryDebugger) Render(scene *ecs.Scene, _ float64) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()
	if imgui.Button("Clear All") {
		qd.selected = nil
	}

	for _, name := range scene.Registry().Names(ecs.KindComponent) {
		checked := slices.Contains(qd.selected, name)
		if imgui.Checkbox(name, &checked) {
			qd.Toggle(name)
		}
	}
	imgui.Separator()

	if len(qd.selected) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matches := qd.Run(scene)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))

	if imgui.TreeNodeStr("Entities") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Entity")
			imgui.TableSetupColumn("Generation")
			imgui.TableHeadersRow()

			for _, id := range matches[:min(len(matches), qd.limit)] {
				imgui.TableNextRow()
				imgui.TableSetColumnIndex(0)
				imgui.Text(fmt.Sprintf("%d", id.Index()))
				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%d", id.Generation()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}
