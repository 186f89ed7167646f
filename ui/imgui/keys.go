package imgui

import (
	imgui "github.com/AllenDang/cimgui-go"
	"github.com/veandco/go-sdl2/sdl"
)

var namedKeys = map[sdl.Scancode]imgui.Key{
	sdl.SCANCODE_TAB:       imgui.KeyTab,
	sdl.SCANCODE_LEFT:      imgui.KeyLeftArrow,
	sdl.SCANCODE_RIGHT:     imgui.KeyRightArrow,
	sdl.SCANCODE_UP:        imgui.KeyUpArrow,
	sdl.SCANCODE_DOWN:      imgui.KeyDownArrow,
	sdl.SCANCODE_PAGEUP:    imgui.KeyPageUp,
	sdl.SCANCODE_PAGEDOWN:  imgui.KeyPageDown,
	sdl.SCANCODE_HOME:      imgui.KeyHome,
	sdl.SCANCODE_END:       imgui.KeyEnd,
	sdl.SCANCODE_INSERT:    imgui.KeyInsert,
	sdl.SCANCODE_DELETE:    imgui.KeyDelete,
	sdl.SCANCODE_BACKSPACE: imgui.KeyBackspace,
	sdl.SCANCODE_SPACE:     imgui.KeySpace,
	sdl.SCANCODE_RETURN:    imgui.KeyEnter,
	sdl.SCANCODE_ESCAPE:    imgui.KeyEscape,
	sdl.SCANCODE_KP_ENTER:  imgui.KeyKeypadEnter,
	sdl.SCANCODE_LCTRL:     imgui.KeyLeftCtrl,
	sdl.SCANCODE_RCTRL:     imgui.KeyRightCtrl,
	sdl.SCANCODE_LSHIFT:    imgui.KeyLeftShift,
	sdl.SCANCODE_RSHIFT:    imgui.KeyRightShift,
	sdl.SCANCODE_LALT:      imgui.KeyLeftAlt,
	sdl.SCANCODE_RALT:      imgui.KeyRightAlt,
}

// SdlScancodeToImGuiKey returns imgui.KeyNone for keys imgui widgets have no use for
func SdlScancodeToImGuiKey(scancode sdl.Scancode) imgui.Key {

	// Letters are contiguous in both enums. Digits are too, except sdl puts 0 after 9.
	switch {
	case scancode >= sdl.SCANCODE_A && scancode <= sdl.SCANCODE_Z:
		return imgui.KeyA + imgui.Key(scancode-sdl.SCANCODE_A)
	case scancode >= sdl.SCANCODE_1 && scancode <= sdl.SCANCODE_9:
		return imgui.Key1 + imgui.Key(scancode-sdl.SCANCODE_1)
	case scancode == sdl.SCANCODE_0:
		return imgui.Key0
	}

	if k, ok := namedKeys[scancode]; ok {
		return k
	}

	return imgui.KeyNone
}
