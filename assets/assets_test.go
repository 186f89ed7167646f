package assets

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilledImage(w, h int, c color.NRGBA) *image.NRGBA {

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}

func TestFlipImageY(t *testing.T) {

	img := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{G: 2, A: 255})
	img.SetNRGBA(0, 2, color.NRGBA{B: 3, A: 255})

	FlipImageY(img)

	assert.Equal(t, color.NRGBA{B: 3, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{G: 2, A: 255}, img.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{R: 1, A: 255}, img.NRGBAAt(0, 2))
}

func TestNormalizeCubemapFaces(t *testing.T) {

	red := color.NRGBA{R: 255, A: 255}

	var faces [6]*image.NRGBA
	for i := 0; i < len(faces); i++ {
		faces[i] = newFilledImage(8, 8, red)
	}
	faces[3] = newFilledImage(4, 2, red)

	out, size := NormalizeCubemapFaces(faces)
	require.Equal(t, int32(8), size)

	for i := 0; i < len(out); i++ {
		assert.Equal(t, 8, out[i].Rect.Dx(), "face %d", i)
		assert.Equal(t, 8, out[i].Rect.Dy(), "face %d", i)
	}

	// Untouched faces are passed through, the resized one keeps its color
	assert.Same(t, faces[0], out[0])
	assert.NotSame(t, faces[3], out[3])
	c := out[3].NRGBAAt(4, 4)
	assert.InDelta(t, 255, int(c.R), 1)
	assert.InDelta(t, 0, int(c.G), 1)
	assert.InDelta(t, 255, int(c.A), 1)
}
