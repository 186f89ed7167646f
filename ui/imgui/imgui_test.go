package imgui

import (
	"testing"

	imgui "github.com/AllenDang/cimgui-go"
	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestSdlScancodeToImGuiKey(t *testing.T) {

	tests := []struct {
		scancode sdl.Scancode
		expected imgui.Key
	}{
		{scancode: sdl.SCANCODE_A, expected: imgui.KeyA},
		{scancode: sdl.SCANCODE_Z, expected: imgui.KeyZ},
		{scancode: sdl.SCANCODE_1, expected: imgui.Key1},
		{scancode: sdl.SCANCODE_9, expected: imgui.Key9},
		{scancode: sdl.SCANCODE_0, expected: imgui.Key0},
		{scancode: sdl.SCANCODE_LEFT, expected: imgui.KeyLeftArrow},
		{scancode: sdl.SCANCODE_RETURN, expected: imgui.KeyEnter},
		{scancode: sdl.SCANCODE_F13, expected: imgui.KeyNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SdlScancodeToImGuiKey(tt.scancode), "scancode %d", tt.scancode)
	}
}

func TestProjectionMatrixFlipsY(t *testing.T) {

	proj := ProjectionMatrix(800, 600)

	project := func(x, y float32) (float32, float32) {
		p := [4]float32{x, y, 0, 1}
		var out [2]float32
		for row := 0; row < 2; row++ {
			for col := 0; col < 4; col++ {
				out[row] += proj.Data[col][row] * p[col]
			}
		}
		return out[0], out[1]
	}

	x, y := project(0, 0)
	assert.InDelta(t, -1, x, 1e-5)
	assert.InDelta(t, 1, y, 1e-5)

	x, y = project(800, 600)
	assert.InDelta(t, 1, x, 1e-5)
	assert.InDelta(t, -1, y, 1e-5)
}
