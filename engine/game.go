package engine

import (
	"github.com/bloeys/nmage-pbr/timing"
	nmageimgui "github.com/bloeys/nmage-pbr/ui/imgui"
)

var (
	isRunning = false
)

type Game interface {
	Init()

	Update()
	Render()
	FrameEnd()

	DeInit()
}

// Run drives the game until Quit is called. Input is pumped before Update, and the
// imgui frame (if ui is not nil) is started before Update so the game can build windows in it.
func Run(g Game, w *Window, ui *nmageimgui.Overlay) {

	isRunning = true
	g.Init()

	for isRunning {

		timing.FrameStarted()
		w.handleInputs(ui)

		if ui != nil {
			winWidth, winHeight, fbWidth, fbHeight := w.Size()
			ui.FrameStart(float32(winWidth), float32(winHeight), fbWidth, fbHeight)
		}

		g.Update()
		if !isRunning {
			break
		}

		g.Render()
		g.FrameEnd()
		timing.FrameEnded()
	}

	g.DeInit()
}

func Quit() {
	isRunning = false
}

func IsRunning() bool {
	return isRunning
}
