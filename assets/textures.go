package assets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/mandykoh/prism"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type Texture struct {
	// Path only exists for textures loaded from disk
	Path   string
	TexID  uint32
	Width  int32
	Height int32
}

func (t *Texture) Delete() {

	if t.TexID == 0 {
		return
	}

	gl.DeleteTextures(1, &t.TexID)
	t.TexID = 0
}

type TextureLoadOptions struct {
	TryLoadFromCache bool
	WriteToCache     bool
	GenMipMaps       bool
	// NoSrgba is used for data textures (normal, roughness, metallic) that must not be gamma corrected on sampling
	NoSrgba bool
	// NoFlip keeps the first image row at the top. By default rows are flipped to match OpenGL's bottom-up convention
	NoFlip bool
}

var (
	textureCache = make(map[string]Texture)
)

// DecodeImageFile decodes a png/jpeg/webp/bmp file and converts it to non-premultiplied RGBA8
func DecodeImageFile(file string, flipY bool) (*image.NRGBA, error) {

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image '%s': %w", file, err)
	}

	nrgbaImg := prism.ConvertImageToNRGBA(img, runtime.NumCPU())
	if flipY {
		FlipImageY(nrgbaImg)
	}

	return nrgbaImg, nil
}

// FlipImageY flips the rows of the image in place
func FlipImageY(img *image.NRGBA) {

	h := img.Rect.Dy()
	rowBytes := img.Rect.Dx() * 4
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {

		topRow := img.Pix[top*img.Stride : top*img.Stride+rowBytes]
		bottomRow := img.Pix[bottom*img.Stride : bottom*img.Stride+rowBytes]

		copy(tmp, topRow)
		copy(topRow, bottomRow)
		copy(bottomRow, tmp)
	}
}

// LoadTexture loads an image file into a 2D texture with repeat wrapping and trilinear filtering.
// On failure the zero texture and an error are returned. Callers usually log and keep the default texture.
func LoadTexture(file string, loadOptions *TextureLoadOptions) (Texture, error) {

	if loadOptions == nil {
		loadOptions = &TextureLoadOptions{GenMipMaps: true}
	}

	if loadOptions.TryLoadFromCache {
		if tex, ok := textureCache[file]; ok {
			return tex, nil
		}
	}

	img, err := DecodeImageFile(file, !loadOptions.NoFlip)
	if err != nil {
		return Texture{}, err
	}

	tex := uploadTexture2D(img, loadOptions)
	tex.Path = file

	if loadOptions.WriteToCache {
		textureCache[file] = tex
	}

	return tex, nil
}

func uploadTexture2D(img *image.NRGBA, loadOptions *TextureLoadOptions) Texture {

	tex := Texture{
		Width:  int32(img.Rect.Dx()),
		Height: int32(img.Rect.Dy()),
	}

	gl.GenTextures(1, &tex.TexID)
	gl.BindTexture(gl.TEXTURE_2D, tex.TexID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if loadOptions.GenMipMaps {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}

	internalFormat := int32(gl.SRGB_ALPHA)
	if loadOptions.NoSrgba {
		internalFormat = gl.RGBA8
	}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, tex.Width, tex.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&img.Pix[0]))

	if loadOptions.GenMipMaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// NewSolidColorTexture creates a 1x1 texture of the given color
func NewSolidColorTexture(c color.NRGBA, noSrgba bool) Texture {

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, c)

	return uploadTexture2D(img, &TextureLoadOptions{NoSrgba: noSrgba})
}

// NewEmptyTexture2D allocates an uninitialized 2D render texture with clamped edges and linear filtering
func NewEmptyTexture2D(width, height int32, internalFormat int32, format, pixelType uint32) Texture {

	tex := Texture{
		Width:  width,
		Height: height,
	}

	gl.GenTextures(1, &tex.TexID)
	gl.BindTexture(gl.TEXTURE_2D, tex.TexID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, width, height, 0, format, pixelType, nil)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}
