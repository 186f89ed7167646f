// The input package tracks mouse and keyboard state from SDL events. Besides held/up state it
// knows what got pressed or released during the current frame.
//
// While the UI captures a device, the plain queries (KeyDown, MouseDown, GetMouseMotion...) report
// nothing for it, so that typing in a text box does not move the camera. The 'Captured' forms
// ignore UI capture.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

type keyState struct {
	Down                bool
	IsPressedThisFrame  bool
	IsReleasedThisFrame bool
}

type mouseBtnState struct {
	Down                bool
	IsPressedThisFrame  bool
	IsReleasedThisFrame bool
	IsDoubleClicked     bool
}

// State is the input of one window. The package level functions use a shared State fed by the engine loop.
type State struct {
	keys    map[sdl.Keycode]keyState
	buttons map[uint8]mouseBtnState

	xPos, yPos       int32
	xDelta, yDelta   int32
	wheelX, wheelY   int32
	mouseCaptured    bool
	keyboardCaptured bool
	isQuitRequested  bool
}

func NewState() *State {
	return &State{
		keys:    make(map[sdl.Keycode]keyState),
		buttons: make(map[uint8]mouseBtnState),
	}
}

// FrameStart clears everything that only lasts one frame. Must be called before handling the frame's events.
func (s *State) FrameStart(mouseCaptured, keyboardCaptured bool) {

	s.mouseCaptured = mouseCaptured
	s.keyboardCaptured = keyboardCaptured

	for k, v := range s.keys {
		v.IsPressedThisFrame = false
		v.IsReleasedThisFrame = false
		s.keys[k] = v
	}

	for b, v := range s.buttons {
		v.IsPressedThisFrame = false
		v.IsReleasedThisFrame = false
		v.IsDoubleClicked = false
		s.buttons[b] = v
	}

	s.xDelta, s.yDelta = 0, 0
	s.wheelX, s.wheelY = 0, 0
	s.isQuitRequested = false
}

// ClearKeyboard forgets held keys. Used when the UI takes the keyboard, since the release event goes to the UI.
func (s *State) ClearKeyboard() {
	clear(s.keys)
}

func (s *State) ClearMouse() {
	clear(s.buttons)
	s.xDelta, s.yDelta = 0, 0
	s.wheelX, s.wheelY = 0, 0
}

func (s *State) HandleEvent(event sdl.Event) {

	switch e := event.(type) {

	case *sdl.KeyboardEvent:

		// Repeats keep the key down but are not new presses
		if e.Repeat != 0 {
			return
		}

		ks := s.keys[e.Keysym.Sym]
		ks.Down = e.State == sdl.PRESSED
		ks.IsPressedThisFrame = ks.Down
		ks.IsReleasedThisFrame = !ks.Down
		s.keys[e.Keysym.Sym] = ks

	case *sdl.MouseButtonEvent:

		mb := s.buttons[e.Button]
		mb.Down = e.State == sdl.PRESSED
		mb.IsPressedThisFrame = mb.Down
		mb.IsReleasedThisFrame = !mb.Down
		mb.IsDoubleClicked = mb.Down && e.Clicks == 2
		s.buttons[e.Button] = mb

	case *sdl.MouseMotionEvent:

		s.xPos, s.yPos = e.X, e.Y

		// Several motion events can arrive in one frame
		s.xDelta += e.XRel
		s.yDelta += e.YRel

	case *sdl.MouseWheelEvent:
		s.wheelX += e.X
		s.wheelY += e.Y

	case *sdl.QuitEvent:
		s.isQuitRequested = true
	}
}

func (s *State) IsQuitRequested() bool {
	return s.isQuitRequested
}

func (s *State) IsMouseCaptured() bool {
	return s.mouseCaptured
}

func (s *State) IsKeyboardCaptured() bool {
	return s.keyboardCaptured
}

func (s *State) KeyClickedCaptured(kc sdl.Keycode) bool {
	return s.keys[kc].IsPressedThisFrame
}

func (s *State) KeyReleasedCaptured(kc sdl.Keycode) bool {
	return s.keys[kc].IsReleasedThisFrame
}

func (s *State) KeyDownCaptured(kc sdl.Keycode) bool {
	return s.keys[kc].Down
}

func (s *State) KeyClicked(kc sdl.Keycode) bool {
	return !s.keyboardCaptured && s.KeyClickedCaptured(kc)
}

func (s *State) KeyReleased(kc sdl.Keycode) bool {
	return !s.keyboardCaptured && s.KeyReleasedCaptured(kc)
}

func (s *State) KeyDown(kc sdl.Keycode) bool {
	return !s.keyboardCaptured && s.KeyDownCaptured(kc)
}

func (s *State) MouseClicked(mb uint8) bool {
	return !s.mouseCaptured && s.buttons[mb].IsPressedThisFrame
}

func (s *State) MouseDoubleClicked(mb uint8) bool {
	return !s.mouseCaptured && s.buttons[mb].IsDoubleClicked
}

func (s *State) MouseReleased(mb uint8) bool {
	return !s.mouseCaptured && s.buttons[mb].IsReleasedThisFrame
}

func (s *State) MouseDown(mb uint8) bool {
	return !s.mouseCaptured && s.buttons[mb].Down
}

// MousePos returns window coordinates even when the mouse is captured
func (s *State) MousePos() (x, y int32) {
	return s.xPos, s.yPos
}

// MouseMotion returns how many pixels the mouse moved this frame
func (s *State) MouseMotion() (xDelta, yDelta int32) {

	if s.mouseCaptured {
		return 0, 0
	}

	return s.xDelta, s.yDelta
}

// MouseWheelYNorm returns 1 if the wheel moved up this frame, -1 if down, and 0 otherwise
func (s *State) MouseWheelYNorm() int32 {

	if s.mouseCaptured {
		return 0
	}

	return sign(s.wheelY)
}

func sign(x int32) int32 {

	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}

	return 0
}

var (
	std = NewState()
)

// Std returns the state fed by the engine loop
func Std() *State {
	return std
}

func IsQuitClicked() bool {
	return std.IsQuitRequested()
}

func KeyClicked(kc sdl.Keycode) bool {
	return std.KeyClicked(kc)
}

func KeyReleased(kc sdl.Keycode) bool {
	return std.KeyReleased(kc)
}

func KeyDown(kc sdl.Keycode) bool {
	return std.KeyDown(kc)
}

func KeyDownCaptured(kc sdl.Keycode) bool {
	return std.KeyDownCaptured(kc)
}

func MouseClicked(mb uint8) bool {
	return std.MouseClicked(mb)
}

func MouseDown(mb uint8) bool {
	return std.MouseDown(mb)
}

func GetMousePos() (x, y int32) {
	return std.MousePos()
}

func GetMouseMotion() (xDelta, yDelta int32) {
	return std.MouseMotion()
}

func GetMouseWheelYNorm() int32 {
	return std.MouseWheelYNorm()
}
