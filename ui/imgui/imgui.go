// Package imgui draws Dear ImGui windows over the composited frame. Overlay implements the
// pipeline's overlay pass.
package imgui

import (
	"fmt"
	"unsafe"

	imgui "github.com/AllenDang/cimgui-go"
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/timing"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type Overlay struct {
	ImCtx imgui.Context
	Mat   materials.Material

	VaoId      uint32
	VboId      uint32
	IndexBufId uint32
	TexId      uint32

	// Build, if set, runs between FrameStart and Render and is where the app creates its windows
	Build func()

	winWidth, winHeight float32
	fbWidth, fbHeight   int32
}

// FrameStart begins a new imgui frame. Window size is in points, framebuffer size in pixels.
func (o *Overlay) FrameStart(winWidth, winHeight float32, fbWidth, fbHeight int32) {

	o.winWidth, o.winHeight = winWidth, winHeight
	o.fbWidth, o.fbHeight = fbWidth, fbHeight

	io := imgui.CurrentIO()
	io.SetDisplaySize(imgui.Vec2{X: winWidth, Y: winHeight})

	dt := timing.DT()
	if dt <= 0 {
		dt = 1.0 / 60
	}
	io.SetDeltaTime(dt)

	imgui.NewFrame()
}

func (o *Overlay) WantCaptureMouse() bool {
	return imgui.CurrentIO().WantCaptureMouse()
}

func (o *Overlay) WantCaptureKeyboard() bool {
	return imgui.CurrentIO().WantCaptureKeyboard()
}

// Render builds the app's windows and draws them on top of whatever is bound.
// GL state changed here is restored before returning.
func (o *Overlay) Render() {

	if o.Build != nil {
		o.Build()
	}

	imgui.Render()
	if o.fbWidth <= 0 || o.fbHeight <= 0 || o.winWidth <= 0 || o.winHeight <= 0 {
		return
	}

	drawData := imgui.CurrentDrawData()
	drawData.ScaleClipRects(imgui.Vec2{
		X: float32(o.fbWidth) / o.winWidth,
		Y: float32(o.fbHeight) / o.winHeight,
	})

	var lastPolygonMode [2]int32
	gl.GetIntegerv(gl.POLYGON_MODE, &lastPolygonMode[0])
	wasBlend := gl.IsEnabled(gl.BLEND)
	wasCull := gl.IsEnabled(gl.CULL_FACE)
	wasDepthTest := gl.IsEnabled(gl.DEPTH_TEST)

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Viewport(0, 0, o.fbWidth, o.fbHeight)

	o.Mat.ShaderProg.Bind()
	proj := ProjectionMatrix(o.winWidth, o.winHeight)
	o.Mat.SetUnifMat4("ProjMtx", &proj)
	o.Mat.SetUnifInt32("Texture", 0)

	gl.BindVertexArray(o.VaoId)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.VboId)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.IndexBufId)
	gl.ActiveTexture(gl.TEXTURE0)

	indexSize := imgui.IndexBufferLayout()
	drawType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {

		vertexBuffer, vertexBufferSize := list.GetVertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize, vertexBuffer, gl.STREAM_DRAW)

		indexBuffer, indexBufferSize := list.GetIndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize, indexBuffer, gl.STREAM_DRAW)

		for _, cmd := range list.Commands() {

			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}

			clip := cmd.ClipRect()
			gl.Scissor(int32(clip.X), o.fbHeight-int32(clip.W), int32(clip.Z-clip.X), int32(clip.W-clip.Y))

			gl.BindTexture(gl.TEXTURE_2D, uint32(uintptr(cmd.TextureId())))
			gl.DrawElementsBaseVertexWithOffset(
				gl.TRIANGLES,
				int32(cmd.ElemCount()),
				drawType,
				uintptr(int(cmd.IdxOffset())*indexSize),
				int32(cmd.VtxOffset()),
			)
		}
	}

	gl.Disable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, uint32(lastPolygonMode[0]))
	restoreCap(gl.BLEND, wasBlend)
	restoreCap(gl.CULL_FACE, wasCull)
	restoreCap(gl.DEPTH_TEST, wasDepthTest)

	// Materials drawn after this may assume their own program and vao are still bound
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func restoreCap(capability uint32, enabled bool) {

	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (o *Overlay) Delete() {
	gl.DeleteTextures(1, &o.TexId)
	gl.DeleteBuffers(1, &o.IndexBufId)
	gl.DeleteBuffers(1, &o.VboId)
	gl.DeleteVertexArrays(1, &o.VaoId)
	o.Mat.Delete()
	imgui.DestroyContext()
}

// ProjectionMatrix maps imgui's top-left origin window points to clip space
func ProjectionMatrix(winWidth, winHeight float32) gglm.Mat4 {
	return gglm.Ortho(0, winWidth, winHeight, 0, -1, 1).Mat4
}

// NewOverlay creates the imgui context, its font atlas texture and the buffers imgui streams into
func NewOverlay(shaderPath string) (*Overlay, error) {

	mat, err := materials.NewMaterial("ImGUI Mat", shaderPath, materials.MaterialSettings_None)
	if err != nil {
		return nil, fmt.Errorf("failed to create imgui overlay: %w", err)
	}

	o := &Overlay{
		ImCtx: imgui.CreateContext(),
		Mat:   mat,
	}

	io := imgui.CurrentIO()

	gl.GenVertexArrays(1, &o.VaoId)
	gl.GenBuffers(1, &o.VboId)
	gl.GenBuffers(1, &o.IndexBufId)

	gl.BindVertexArray(o.VaoId)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.VboId)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, o.IndexBufId)

	vertexSize, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()

	posLoc := uint32(mat.GetAttribLoc("Position"))
	uvLoc := uint32(mat.GetAttribLoc("UV"))
	colorLoc := uint32(mat.GetAttribLoc("Color"))

	gl.EnableVertexAttribArray(posLoc)
	gl.VertexAttribPointerWithOffset(posLoc, 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetPos))

	gl.EnableVertexAttribArray(uvLoc)
	gl.VertexAttribPointerWithOffset(uvLoc, 2, gl.FLOAT, false, int32(vertexSize), uintptr(vertexOffsetUv))

	gl.EnableVertexAttribArray(colorLoc)
	gl.VertexAttribPointerWithOffset(colorLoc, 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(vertexOffsetCol))

	gl.BindVertexArray(0)

	pixels, width, height, _ := io.Fonts().GetTextureDataAsRGBA32()

	gl.GenTextures(1, &o.TexId)
	gl.BindTexture(gl.TEXTURE_2D, o.TexId)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	io.Fonts().SetTexID(imgui.TextureID(uintptr(o.TexId)))

	return o, nil
}
