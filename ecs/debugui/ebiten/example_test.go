package ebiten_test

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tessera/ecs"
	"github.com/plus3/tessera/ecs/debugui"
	debugui_ebiten "github.com/plus3/tessera/ecs/debugui/ebiten"
)

func Example() {
	registry := ecs.NewComponentRegistry()
	debugui.Register(registry)

	scene := ecs.NewScene(registry, ecs.WithSceneName("debug"))
	_ = ecs.SetGlobal(scene, ecs.TargetRate{Hz: 60})

	// Entities with an ImguiItem render their own widgets each frame.
	item := scene.CreateEntity()
	_ = ecs.SetComponent(scene, item, debugui.ImguiItem{
		Render: func() {
			imgui.Begin("Debug Window")
			imgui.Text("Hello from the scene!")
			imgui.End()
		},
	})

	updater := ecs.NewUpdater(scene)
	_ = scene.AddSystem(debugui.NewSystem(debugui.DefaultWindows(updater)...))
	if err := scene.Start(); err != nil {
		panic(err)
	}

	if err := debugui_ebiten.Run(scene, updater, "Scene Inspector", 1280, 720); err != nil {
		panic(err)
	}
}
