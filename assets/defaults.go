package assets

import "image/color"

var (
	DefaultAlbedoTex    Texture
	DefaultNormalTex    Texture
	DefaultRoughnessTex Texture
	DefaultMetallicTex  Texture
	DefaultBlackTex     Texture
)

// InitDefaultTextures creates the 1x1 textures materials fall back to when a map is missing or failed to load.
// Must be called after an OpenGL context exists.
func InitDefaultTextures() {
	DefaultAlbedoTex = NewSolidColorTexture(color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false)
	DefaultNormalTex = NewSolidColorTexture(color.NRGBA{R: 128, G: 128, B: 255, A: 255}, true)
	DefaultRoughnessTex = NewSolidColorTexture(color.NRGBA{R: 128, G: 128, B: 128, A: 255}, true)
	DefaultMetallicTex = NewSolidColorTexture(color.NRGBA{A: 255}, true)
	DefaultBlackTex = NewSolidColorTexture(color.NRGBA{A: 255}, true)
}
