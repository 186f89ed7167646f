package engine

import (
	"runtime"

	imgui "github.com/AllenDang/cimgui-go"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/input"
	"github.com/bloeys/nmage-pbr/timing"
	nmageimgui "github.com/bloeys/nmage-pbr/ui/imgui"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	isInited = false

	isSdlButtonLeftDown   = false
	isSdlButtonMiddleDown = false
	isSdlButtonRightDown  = false

	ImguiRelativeMouseModePosX float32
	ImguiRelativeMouseModePosY float32
)

type Window struct {
	SDLWin         *sdl.Window
	GlCtx          sdl.GLContext
	EventCallbacks []func(sdl.Event)
}

// Size returns the window size in points and the drawable size in pixels, which differ on high dpi displays
func (w *Window) Size() (winWidth, winHeight, fbWidth, fbHeight int32) {
	winWidth, winHeight = w.SDLWin.GetSize()
	fbWidth, fbHeight = w.SDLWin.GLGetDrawableSize()
	return winWidth, winHeight, fbWidth, fbHeight
}

func (w *Window) handleInputs(ui *nmageimgui.Overlay) {

	in := input.Std()

	// Without an overlay nothing captures input
	if ui == nil {

		in.FrameStart(false, false)
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			w.fireCallbacks(event)
			in.HandleEvent(event)
		}

		return
	}

	imIo := imgui.CurrentIO()
	imguiCaptureMouse := ui.WantCaptureMouse()
	imguiCaptureKeyboard := ui.WantCaptureKeyboard()
	in.FrameStart(imguiCaptureMouse, imguiCaptureKeyboard)

	// A key held when imgui takes the keyboard never sees its release, so it would stay down forever
	if imguiCaptureMouse {
		in.ClearMouse()
	}

	if imguiCaptureKeyboard {
		in.ClearKeyboard()
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {

		w.fireCallbacks(event)

		switch e := event.(type) {

		case *sdl.MouseWheelEvent:

			if !imguiCaptureMouse {
				in.HandleEvent(e)
			}

			imIo.AddMouseWheelDelta(float32(e.X), float32(e.Y))

		case *sdl.KeyboardEvent:

			if !imguiCaptureKeyboard {
				in.HandleEvent(e)
			}

			imIo.AddKeyEvent(nmageimgui.SdlScancodeToImGuiKey(e.Keysym.Scancode), e.Type == sdl.KEYDOWN)

			isDown := e.Type == sdl.KEYDOWN
			switch e.Keysym.Sym {
			case sdl.K_LCTRL, sdl.K_RCTRL:
				imIo.SetKeyCtrl(isDown)
			case sdl.K_LSHIFT, sdl.K_RSHIFT:
				imIo.SetKeyShift(isDown)
			case sdl.K_LALT, sdl.K_RALT:
				imIo.SetKeyAlt(isDown)
			case sdl.K_LGUI, sdl.K_RGUI:
				imIo.SetKeySuper(isDown)
			}

		case *sdl.TextInputEvent:
			imIo.AddInputCharactersUTF8(e.GetText())

		case *sdl.MouseButtonEvent:

			if !imguiCaptureMouse {
				in.HandleEvent(e)
			}

			isPressed := e.State == sdl.PRESSED
			switch e.Button {
			case sdl.BUTTON_LEFT:
				isSdlButtonLeftDown = isPressed
			case sdl.BUTTON_MIDDLE:
				isSdlButtonMiddleDown = isPressed
			case sdl.BUTTON_RIGHT:
				isSdlButtonRightDown = isPressed
			}

		case *sdl.MouseMotionEvent:

			if !imguiCaptureMouse {
				in.HandleEvent(e)
			}

		case *sdl.QuitEvent:
			in.HandleEvent(e)
		}
	}

	if sdl.GetRelativeMouseMode() {
		imIo.SetMousePos(imgui.Vec2{X: ImguiRelativeMouseModePosX, Y: ImguiRelativeMouseModePosY})
	} else {
		x, y, _ := sdl.GetMouseState()
		imIo.SetMousePos(imgui.Vec2{X: float32(x), Y: float32(y)})
	}

	// Clicks shorter than a frame still show up as held for that frame
	imIo.SetMouseButtonDown(imgui.MouseButtonLeft, isSdlButtonLeftDown)
	imIo.SetMouseButtonDown(imgui.MouseButtonRight, isSdlButtonRightDown)
	imIo.SetMouseButtonDown(imgui.MouseButtonMiddle, isSdlButtonMiddleDown)
}

func (w *Window) fireCallbacks(event sdl.Event) {
	for i := 0; i < len(w.EventCallbacks); i++ {
		w.EventCallbacks[i](event)
	}
}

func (w *Window) Destroy() error {
	sdl.GLDeleteContext(w.GlCtx)
	return w.SDLWin.Destroy()
}

func Init() error {

	isInited = true

	runtime.LockOSThread()
	timing.Init()
	err := initSDL()

	return err
}

func initSDL() error {

	err := sdl.Init(sdl.INIT_TIMER | sdl.INIT_VIDEO)
	if err != nil {
		return err
	}

	sdl.ShowCursor(1)

	// 4.3+ is needed for storage buffers and debug output
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 6)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_DEBUG_FLAG)

	sdl.GLSetAttribute(sdl.GL_RED_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_GREEN_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_BLUE_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_ALPHA_SIZE, 8)

	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 8)

	sdl.GLSetAttribute(sdl.GL_FRAMEBUFFER_SRGB_CAPABLE, 1)

	sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, 1)
	sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, 4)

	return nil
}

func CreateOpenGLWindow(title string, x, y, width, height int32, flags WindowFlags) (*Window, error) {
	return createWindow(title, x, y, width, height, WindowFlags_OPENGL|flags)
}

func CreateOpenGLWindowCentered(title string, width, height int32, flags WindowFlags) (*Window, error) {
	return createWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, width, height, WindowFlags_OPENGL|flags)
}

func createWindow(title string, x, y, width, height int32, flags WindowFlags) (*Window, error) {

	assert.T(isInited, "engine.Init() was not called!")

	sdlWin, err := sdl.CreateWindow(title, x, y, width, height, uint32(flags))
	if err != nil {
		return nil, err
	}

	win := &Window{
		SDLWin:         sdlWin,
		EventCallbacks: make([]func(sdl.Event), 0),
	}

	win.GlCtx, err = sdlWin.GLCreateContext()
	if err != nil {
		return nil, err
	}

	err = initOpenGL()
	if err != nil {
		return nil, err
	}

	// Get rid of the blinding white startup screen (unfortunately there is still one frame of white)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
	sdlWin.GLSwap()

	return win, err
}

// initOpenGL sets the defaults everything else assumes. Per pass state is owned by the renderer.
func initOpenGL() error {

	if err := gl.Init(); err != nil {
		return err
	}

	enableGlDebugOutput()

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	gl.ClearColor(0, 0, 0, 1)

	assets.InitDefaultTextures()

	return nil
}

func SetSrgbFramebuffer(isEnabled bool) {

	if isEnabled {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	} else {
		gl.Disable(gl.FRAMEBUFFER_SRGB)
	}
}

func SetVSync(enabled bool) {

	if enabled {
		sdl.GLSetSwapInterval(1)
	} else {
		sdl.GLSetSwapInterval(0)
	}
}

func SetMSAA(isEnabled bool) {

	if isEnabled {
		gl.Enable(gl.MULTISAMPLE)
	} else {
		gl.Disable(gl.MULTISAMPLE)
	}
}
