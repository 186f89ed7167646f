package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func keyEvent(kc sdl.Keycode, state uint8, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{
		Type:   sdl.KEYDOWN,
		State:  state,
		Repeat: repeat,
		Keysym: sdl.Keysym{Sym: kc},
	}
}

func TestKeyPressLastsOneFrame(t *testing.T) {

	s := NewState()
	s.FrameStart(false, false)
	s.HandleEvent(keyEvent(sdl.K_c, sdl.PRESSED, 0))

	assert.True(t, s.KeyClicked(sdl.K_c))
	assert.True(t, s.KeyDown(sdl.K_c))

	s.FrameStart(false, false)
	assert.False(t, s.KeyClicked(sdl.K_c))
	assert.True(t, s.KeyDown(sdl.K_c))

	// Repeats are not presses
	s.HandleEvent(keyEvent(sdl.K_c, sdl.PRESSED, 1))
	assert.False(t, s.KeyClicked(sdl.K_c))

	s.HandleEvent(keyEvent(sdl.K_c, sdl.RELEASED, 0))
	assert.True(t, s.KeyReleased(sdl.K_c))
	assert.False(t, s.KeyDown(sdl.K_c))
}

func TestCaptureHidesInput(t *testing.T) {

	s := NewState()
	s.FrameStart(true, true)
	s.HandleEvent(keyEvent(sdl.K_w, sdl.PRESSED, 0))
	s.HandleEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.PRESSED, Clicks: 1})
	s.HandleEvent(&sdl.MouseMotionEvent{X: 10, Y: 20, XRel: 3, YRel: -2})
	s.HandleEvent(&sdl.MouseWheelEvent{Y: 2})

	assert.False(t, s.KeyDown(sdl.K_w))
	assert.True(t, s.KeyDownCaptured(sdl.K_w))
	assert.False(t, s.MouseDown(sdl.BUTTON_RIGHT))

	x, y := s.MouseMotion()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Zero(t, s.MouseWheelYNorm())

	x, y = s.MousePos()
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(20), y)
}

func TestMouseMotionAndWheelAccumulate(t *testing.T) {

	s := NewState()
	s.FrameStart(false, false)
	s.HandleEvent(&sdl.MouseMotionEvent{XRel: 3, YRel: 1})
	s.HandleEvent(&sdl.MouseMotionEvent{XRel: 2, YRel: -4})
	s.HandleEvent(&sdl.MouseWheelEvent{Y: -1})
	s.HandleEvent(&sdl.MouseWheelEvent{Y: -2})

	x, y := s.MouseMotion()
	assert.Equal(t, int32(5), x)
	assert.Equal(t, int32(-3), y)
	assert.Equal(t, int32(-1), s.MouseWheelYNorm())

	s.FrameStart(false, false)
	x, y = s.MouseMotion()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Zero(t, s.MouseWheelYNorm())
}

func TestMouseButtons(t *testing.T) {

	s := NewState()
	s.FrameStart(false, false)
	s.HandleEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_LEFT, State: sdl.PRESSED, Clicks: 2})

	assert.True(t, s.MouseClicked(sdl.BUTTON_LEFT))
	assert.True(t, s.MouseDoubleClicked(sdl.BUTTON_LEFT))
	assert.True(t, s.MouseDown(sdl.BUTTON_LEFT))

	s.FrameStart(false, false)
	s.HandleEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_LEFT, State: sdl.RELEASED})
	assert.True(t, s.MouseReleased(sdl.BUTTON_LEFT))
	assert.False(t, s.MouseDown(sdl.BUTTON_LEFT))
}

func TestQuitAndClear(t *testing.T) {

	s := NewState()
	s.FrameStart(false, false)
	s.HandleEvent(&sdl.QuitEvent{})
	assert.True(t, s.IsQuitRequested())

	s.HandleEvent(keyEvent(sdl.K_a, sdl.PRESSED, 0))
	s.ClearKeyboard()
	assert.False(t, s.KeyDown(sdl.K_a))

	s.FrameStart(false, false)
	assert.False(t, s.IsQuitRequested())
}
