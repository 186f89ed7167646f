package assets

import (
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
	"golang.org/x/image/draw"
)

type Cubemap struct {
	// These only exists for cubemaps loaded from disk
	RightPath string
	LeftPath  string
	TopPath   string
	BotPath   string
	FrontPath string
	BackPath  string
	TexID     uint32
	Size      int32
	MipLevels int32
}

func (c *Cubemap) Delete() {

	if c.TexID == 0 {
		return
	}

	gl.DeleteTextures(1, &c.TexID)
	c.TexID = 0
}

// LoadCubemapTextures loads six face images, in the order +X, -X, +Y, -Y, +Z, -Z, into one cubemap.
// Faces that differ in size from the largest face are resampled so every face is square and equal.
func LoadCubemapTextures(rightTex, leftTex, topTex, botTex, frontTex, backTex string, loadOptions *TextureLoadOptions) (Cubemap, error) {

	if loadOptions == nil {
		loadOptions = &TextureLoadOptions{}
	}

	cmap := Cubemap{
		RightPath: rightTex,
		LeftPath:  leftTex,
		TopPath:   topTex,
		BotPath:   botTex,
		FrontPath: frontTex,
		BackPath:  backTex,
		MipLevels: 1,
	}

	var faces [6]*image.NRGBA
	for i, fPath := range [6]string{rightTex, leftTex, topTex, botTex, frontTex, backTex} {

		// Cubemap faces are addressed top-left first, so they are never flipped
		img, err := DecodeImageFile(fPath, false)
		if err != nil {
			return Cubemap{}, err
		}

		faces[i] = img
	}

	faces, cmap.Size = NormalizeCubemapFaces(faces)

	internalFormat := int32(gl.SRGB_ALPHA)
	if loadOptions.NoSrgba {
		internalFormat = gl.RGBA8
	}

	gl.GenTextures(1, &cmap.TexID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cmap.TexID)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i := 0; i < len(faces); i++ {
		gl.TexImage2D(uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i), 0, internalFormat, cmap.Size, cmap.Size, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&faces[i].Pix[0]))
	}

	setCubemapParams(cmap.MipLevels)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	return cmap, nil
}

// NormalizeCubemapFaces returns the faces resized to a common square size, which is the largest
// dimension found among the faces. Faces already at that size are returned as is.
func NormalizeCubemapFaces(faces [6]*image.NRGBA) (out [6]*image.NRGBA, size int32) {

	maxDim := 1
	for i := 0; i < len(faces); i++ {
		maxDim = max(maxDim, faces[i].Rect.Dx(), faces[i].Rect.Dy())
	}

	for i := 0; i < len(faces); i++ {

		f := faces[i]
		if f.Rect.Dx() == maxDim && f.Rect.Dy() == maxDim {
			out[i] = f
			continue
		}

		dst := image.NewNRGBA(image.Rect(0, 0, maxDim, maxDim))
		draw.CatmullRom.Scale(dst, dst.Bounds(), f, f.Bounds(), draw.Src, nil)
		out[i] = dst
	}

	return out, int32(maxDim)
}

// NewEmptyCubemap allocates a cubemap with mipLevels levels of storage per face, each level half the size of the previous one
func NewEmptyCubemap(size, mipLevels int32, internalFormat int32, format, pixelType uint32) Cubemap {

	mipLevels = max(mipLevels, 1)
	cmap := Cubemap{
		Size:      size,
		MipLevels: mipLevels,
	}

	gl.GenTextures(1, &cmap.TexID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, cmap.TexID)

	for mip := int32(0); mip < mipLevels; mip++ {

		mipSize := max(size>>mip, 1)
		for face := uint32(0); face < 6; face++ {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, mip, internalFormat, mipSize, mipSize, 0, format, pixelType, nil)
		}
	}

	setCubemapParams(mipLevels)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	return cmap
}

func setCubemapParams(mipLevels int32) {

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAX_LEVEL, mipLevels-1)

	if mipLevels > 1 {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
}
