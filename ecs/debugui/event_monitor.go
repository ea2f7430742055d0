package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// Columns of the event monitor table.
const (
	EventColumnName = iota
	EventColumnSubscribers
	EventColumnPublished
	EventColumnFailures
	EventColumnLast
)

// EventMonitor lists every event name seen on the scene's bus with its
// subscriber count and dispatch statistics.
type EventMonitor struct {
	sortColumn    int
	sortAscending bool
}

func NewEventMonitor() *EventMonitor {
	return &EventMonitor{sortColumn: EventColumnPublished}
}

// Rows returns the bus statistics in the monitor's sort order.
func (em *EventMonitor) Rows(scene *ecs.Scene) []ecs.EventStats {
	rows := scene.Events().Stats()
	slices.SortStableFunc(rows, func(a, b ecs.EventStats) int {
		var c int
		switch em.sortColumn {
		case EventColumnSubscribers:
			c = cmp.Compare(a.Subscribers, b.Subscribers)
		case EventColumnPublished:
			c = cmp.Compare(a.Published, b.Published)
		case EventColumnFailures:
			c = cmp.Compare(a.Failures, b.Failures)
		case EventColumnLast:
			c = cmp.Compare(a.LastDuration, b.LastDuration)
		}
		if c == 0 {
			c = cmp.Compare(a.Name, b.Name)
		}
		if !em.sortAscending {
			return -c
		}
		return c
	})
	return rows
}

func (em *EventMonitor) SortBy(column int, ascending bool) {
	em.sortColumn, em.sortAscending = column, ascending
}

func (em *EventMonitor) Render(scene *ecs.Scene, _ float64) {
	if !imgui.BeginV("Event Monitor", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	rows := em.Rows(scene)
	var maxPublished int64
	for _, row := range rows {
		maxPublished = max(maxPublished, row.Published)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EventTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Event")
		imgui.TableSetupColumn("Subscribers")
		imgui.TableSetupColumn("Published")
		imgui.TableSetupColumn("Failures")
		imgui.TableSetupColumn("Last")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			em.SortBy(int(spec.ColumnIndex()), spec.SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, row := range rows {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(row.Name)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Subscribers))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Published))
			if maxPublished > 0 && row.Published > 0 {
				barWidth := float32(row.Published) / float32(maxPublished) * 60
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Failures))
			imgui.TableNextColumn()
			imgui.Text(row.LastDuration.String())
		}

		imgui.EndTable()
	}

	imgui.End()
}
