// Package ebiten runs a scene in an Ebiten window with the Dear ImGui
// backend, so debugui windows render on top of the game.
package ebiten

import (
	"math"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tessera/ecs"
	"go.uber.org/zap"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Game implements ebiten.Game. Each tick runs one scene frame inside an
// ImGui frame, so systems may issue ImGui calls while handling frame events.
type Game struct {
	scene   *ecs.Scene
	updater *ecs.Updater
	backend ImguiBackend
	draw    func(screen *ebiten.Image)
}

// Option configures a Game.
type Option func(*Game)

// WithDraw sets a function that draws the game below the ImGui overlay.
func WithDraw(fn func(screen *ebiten.Image)) Option {
	return func(g *Game) {
		g.draw = fn
	}
}

func NewGame(scene *ecs.Scene, updater *ecs.Updater, backend ImguiBackend, opts ...Option) *Game {
	g := &Game{scene: scene, updater: updater, backend: backend}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Update() error {
	g.backend.BeginFrame()
	err := g.updater.Once(1.0 / float64(ebiten.TPS()))
	g.backend.EndFrame()

	if err != nil {
		g.scene.Logger().Warn("frame failed", zap.Error(err))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.draw != nil {
		g.draw(screen)
	}
	g.backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a window and drives the scene until the window closes. The tick
// rate follows the scene's TargetRate at the time Run is called.
func Run(scene *ecs.Scene, updater *ecs.Updater, title string, width, height int, opts ...Option) error {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	ebiten.SetTPS(max(1, int(math.Round(1/updater.Interval().Seconds()))))
	return ebiten.RunGame(NewGame(scene, updater, ImguiBackend{EbitenBackend: backend}, opts...))
}
