package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// PerformanceStats shows frame times, scene counts and the updater's per-phase timings.
type PerformanceStats struct {
	updater *ecs.Updater
	history []float32
	next    int
	filled  int
}

func NewPerformanceStats(updater *ecs.Updater, historyFrames int) *PerformanceStats {
	return &PerformanceStats{
		updater: updater,
		history: make([]float32, max(historyFrames, 1)),
	}
}

// Record adds a frame time in seconds to the history.
func (ps *PerformanceStats) Record(dt float64) {
	ps.history[ps.next] = float32(dt * 1000)
	ps.next = (ps.next + 1) % len(ps.history)
	ps.filled = min(ps.filled+1, len(ps.history))
}

// AverageFrameMillis returns the mean of the recorded frame times.
func (ps *PerformanceStats) AverageFrameMillis() float32 {
	if ps.filled == 0 {
		return 0
	}
	var total float32
	for _, ft := range ps.history[:ps.filled] {
		total += ft
	}
	return total / float32(ps.filled)
}

func (ps *PerformanceStats) Render(scene *ecs.Scene, dt float64) {
	ps.Record(dt)

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := scene.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.Entities))
	imgui.Text(fmt.Sprintf("Stores: %d", len(stats.Stores)))
	imgui.Text(fmt.Sprintf("Globals: %d", len(stats.Globals)))
	imgui.Text(fmt.Sprintf("Systems: %d", len(stats.Systems)))

	avg := ps.AverageFrameMillis()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history[0], int32(len(ps.history)))

	if ps.updater != nil && imgui.TreeNodeStr("Frame Phases") {
		updaterStats := ps.updater.Stats()
		imgui.Text(fmt.Sprintf("Frames: %d (%d failed)", updaterStats.Frames, updaterStats.FailedFrames))

		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("PhaseTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableSetupColumn("Last")
			imgui.TableHeadersRow()

			for _, phase := range updaterStats.Phases {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(phase.Name)
				imgui.TableNextColumn()
				imgui.Text(phase.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(phase.MaxDuration.String())
				imgui.TableNextColumn()
				imgui.Text(phase.LastDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Stores") {
		for _, store := range stats.Stores {
			imgui.BulletText(fmt.Sprintf("%s: %d", store.Name, store.Entities))
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Systems") {
		for _, sys := range stats.Systems {
			imgui.BulletText(fmt.Sprintf("%s (%s)", sys.Name, sys.State))
		}
		imgui.TreePop()
	}

	imgui.End()
}
