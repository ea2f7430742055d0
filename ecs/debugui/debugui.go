// Package debugui provides immediate-mode GUI integration for scenes using Dear ImGui.
// It renders ImguiItem components and a set of inspector windows at the end of
// every frame and mirrors ImGui's input capture into a global component.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func() `json:"-"`
}

// InputCapture is a global component tracking whether Dear ImGui is consuming
// mouse or keyboard input. Game systems should ignore input the UI captured.
type InputCapture struct {
	WantCaptureMouse    bool `json:"wantCaptureMouse"`
	WantCaptureKeyboard bool `json:"wantCaptureKeyboard"`
}

// Window is an inspector window rendered by System once per frame.
type Window interface {
	Render(scene *ecs.Scene, dt float64)
}

// Register registers the component types of this package.
func Register(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](r)
	ecs.RegisterGlobal[InputCapture](r)
}

// System renders ImguiItem components and inspector windows on PostUpdate.
// Rendering is deferred until the frame's commands have been flushed, so the
// windows show the state the next frame starts from.
type System struct {
	ecs.SystemBase

	Items ecs.ComponentRef[ImguiItem]
	Input ecs.GlobalRef[InputCapture]

	Windows []Window

	// ReadInput samples the current capture state. Defaults to ImGui's IO.
	ReadInput func() InputCapture
}

// NewSystem creates a System rendering windows in order.
func NewSystem(windows ...Window) *System {
	return &System{Windows: windows, ReadInput: imguiInput}
}

// Transient keeps the debug UI out of scene snapshots; hosts add it when
// they open a window.
func (s *System) Transient() bool { return true }

func imguiInput() InputCapture {
	io := imgui.CurrentIO()
	return InputCapture{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
}

func (s *System) Bindings() []ecs.Binding {
	return []ecs.Binding{
		ecs.Cache(&s.Items),
		ecs.CacheGlobal(&s.Input),
		ecs.On(s.postUpdate),
	}
}

func (s *System) OnStart(scene *ecs.Scene) error {
	if _, ok := ecs.GetGlobal[InputCapture](scene); ok {
		return nil
	}
	return ecs.SetGlobal(scene, InputCapture{})
}

func (s *System) postUpdate(ev ecs.PostUpdate) error {
	if state, ok := s.Input.Get(); ok && s.ReadInput != nil {
		*state = s.ReadInput()
	}

	if items, ok := s.Items.Get(); ok {
		for _, item := range items.All() {
			if item.Render != nil {
				ev.Commands.Defer(item.Render)
			}
		}
	}

	scene := s.Scene()
	for _, w := range s.Windows {
		ev.Commands.Defer(func() { w.Render(scene, ev.DeltaTime) })
	}
	return nil
}

// DefaultWindows returns the stock inspector windows. The component inspector
// follows the entity browser's selection. updater may be nil, in which case
// frame phase timings are not shown.
func DefaultWindows(updater *ecs.Updater) []Window {
	browser := NewEntityBrowser(100)
	return []Window{
		browser,
		NewComponentInspector(browser),
		NewEventMonitor(),
		NewQueryDebugger(),
		NewPerformanceStats(updater, 120),
	}
}
