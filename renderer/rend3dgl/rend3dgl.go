package rend3dgl

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
	"github.com/go-gl/gl/v4.6-core/gl"
)

var _ renderer.Render = &Rend3DGL{}

type Rend3DGL struct {
	BoundVaoId uint32
	BoundMatId uint32
	BoundFboId uint32

	FrameUbo buffers.UniformBuffer

	depthTest  bool
	depthFunc  renderer.DepthFunc
	depthWrite bool
	blend      bool
	cullMode   renderer.CullMode
	wireframe  bool
}

func (r *Rend3DGL) bindVao(vao *buffers.VertexArray) {

	if vao.Id != r.BoundVaoId {
		vao.Bind()
		r.BoundVaoId = vao.Id
	}
}

// bindMat always binds textures, since they may be swapped between draws of the same material
func (r *Rend3DGL) bindMat(mat *materials.Material) {

	if mat.Id != r.BoundMatId {
		r.BoundMatId = mat.Id
	}

	mat.Bind()
	mat.FlushStagedUniforms()
}

func (r *Rend3DGL) DrawMesh(mesh *meshes.Mesh, modelMat *gglm.TrMat, mat *materials.Material) {

	r.bindVao(&mesh.Vao)
	r.bindMat(mat)

	if mat.Settings.Has(materials.MaterialSettings_HasModelMtx) {
		mat.SetUnifMat4("modelMat", &modelMat.Mat4)
	}

	drawSubMeshes(mesh)
}

func drawSubMeshes(mesh *meshes.Mesh) {
	for i := 0; i < len(mesh.SubMeshes); i++ {
		gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, mesh.SubMeshes[i].IndexCount, gl.UNSIGNED_INT, uintptr(mesh.SubMeshes[i].BaseIndex*4), mesh.SubMeshes[i].BaseVertex)
	}
}

func (r *Rend3DGL) DrawVertexArray(mat *materials.Material, vao *buffers.VertexArray, firstElement int32, elementCount int32) {

	r.bindVao(vao)
	r.bindMat(mat)

	gl.DrawArrays(gl.TRIANGLES, firstElement, elementCount)
}

func (r *Rend3DGL) DrawCubemap(mesh *meshes.Mesh, mat *materials.Material) {

	r.bindVao(&mesh.Vao)
	r.bindMat(mat)

	drawSubMeshes(mesh)
}

func (r *Rend3DGL) DrawParticles(mat *materials.Material, vao *buffers.VertexArray, ssbo *buffers.StorageBuffer, indexCount int32) {

	if indexCount <= 0 {
		return
	}

	r.bindVao(vao)
	r.bindMat(mat)
	ssbo.SetBindPoint(ssbo.BindPoint)

	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, 0)
}

func (r *Rend3DGL) SetFrameData(fd *renderer.FrameData) {
	renderer.WriteFrameData(&r.FrameUbo, fd)
	r.FrameUbo.Upload()
}

func (r *Rend3DGL) BindTarget(fbo *buffers.Framebuffer) {
	fbo.BindWithViewport()
	r.BoundFboId = fbo.Id
}

func (r *Rend3DGL) BindDefaultTarget(width, height int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, width, height)
	r.BoundFboId = 0
}

func (r *Rend3DGL) NewFramebuffer(width, height uint32, attachments ...renderer.AttachmentDesc) buffers.Framebuffer {

	fbo := buffers.NewFramebuffer(width, height)
	for i := 0; i < len(attachments); i++ {

		a := &attachments[i]
		switch a.Format {
		case buffers.FramebufferAttachmentDataFormat_Depth24:
			fbo.NewDepthAttachment(a.Type)
		case buffers.FramebufferAttachmentDataFormat_Depth24Stencil8:
			fbo.NewDepthStencilAttachment(a.Type)
		default:
			fbo.NewColorAttachment(a.Type, a.Format)
		}
	}

	if fbo.ColorAttachmentsCount == 0 {
		fbo.SetNoColorBuffer()
	} else if fbo.ColorAttachmentsCount > 1 {
		fbo.SetDrawBuffers()
	}

	logIfIncomplete(&fbo)
	r.restoreBoundFbo()
	return fbo
}

func (r *Rend3DGL) ResizeTarget(fbo *buffers.Framebuffer, width, height uint32) {

	fbo.Resize(width, height)
	logIfIncomplete(fbo)
	r.restoreBoundFbo()
}

func logIfIncomplete(fbo *buffers.Framebuffer) {
	if !fbo.IsComplete() {
		logging.ErrLog.Printf("Framebuffer id=%d of size %dx%d is incomplete. GlError=%d\n", fbo.Id, fbo.Width, fbo.Height, gl.GetError())
	}
}

// restoreBoundFbo rebinds the last bound target, since framebuffer setup leaves framebuffer zero bound
func (r *Rend3DGL) restoreBoundFbo() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.BoundFboId)
}

func (r *Rend3DGL) AttachCubemapFace(fbo *buffers.Framebuffer, cubemap *assets.Cubemap, face uint32, mip int32) {
	fbo.AttachCubemapFace(cubemap.TexID, face, mip)
	r.BoundFboId = fbo.Id
}

func (r *Rend3DGL) AttachTexture2D(fbo *buffers.Framebuffer, tex *assets.Texture) {
	fbo.AttachTexture2D(tex.TexID)
	r.BoundFboId = fbo.Id
}

func (r *Rend3DGL) SetClearColor(red, green, blue, alpha float32) {
	gl.ClearColor(red, green, blue, alpha)
}

func (r *Rend3DGL) Clear(mask renderer.ClearMask) {

	var glMask uint32
	if mask&renderer.ClearMask_Color != 0 {
		glMask |= gl.COLOR_BUFFER_BIT
	}

	if mask&renderer.ClearMask_Depth != 0 {
		glMask |= gl.DEPTH_BUFFER_BIT
	}

	if mask&renderer.ClearMask_Stencil != 0 {
		glMask |= gl.STENCIL_BUFFER_BIT
	}

	// Depth writes must be on for the depth clear to have an effect
	if glMask&gl.DEPTH_BUFFER_BIT != 0 && !r.depthWrite {
		gl.DepthMask(true)
		gl.Clear(glMask)
		gl.DepthMask(false)
		return
	}

	gl.Clear(glMask)
}

func setCap(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (r *Rend3DGL) SetDepthTest(enabled bool) {

	if r.depthTest == enabled {
		return
	}

	setCap(gl.DEPTH_TEST, enabled)
	r.depthTest = enabled
}

func (r *Rend3DGL) SetDepthFunc(f renderer.DepthFunc) {

	if r.depthFunc == f {
		return
	}

	if f == renderer.DepthFunc_LEqual {
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.DepthFunc(gl.LESS)
	}

	r.depthFunc = f
}

func (r *Rend3DGL) SetDepthWrite(enabled bool) {

	if r.depthWrite == enabled {
		return
	}

	gl.DepthMask(enabled)
	r.depthWrite = enabled
}

func (r *Rend3DGL) SetBlend(enabled bool) {

	if r.blend == enabled {
		return
	}

	setCap(gl.BLEND, enabled)
	r.blend = enabled
}

func (r *Rend3DGL) SetCullMode(mode renderer.CullMode) {

	if r.cullMode == mode {
		return
	}

	switch mode {
	case renderer.CullMode_None:
		gl.Disable(gl.CULL_FACE)
	case renderer.CullMode_Back:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case renderer.CullMode_Front:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	}

	r.cullMode = mode
}

func (r *Rend3DGL) SetWireframe(enabled bool) {

	if r.wireframe == enabled {
		return
	}

	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.wireframe = enabled
}

func (r *Rend3DGL) NewCubemap(size, mipLevels int32, format buffers.FramebufferAttachmentDataFormat) assets.Cubemap {
	return assets.NewEmptyCubemap(size, mipLevels, format.GlInternalFormat(), format.GlFormat(), format.GlPixelType())
}

func (r *Rend3DGL) NewTexture2D(width, height int32, format buffers.FramebufferAttachmentDataFormat) assets.Texture {
	return assets.NewEmptyTexture2D(width, height, format.GlInternalFormat(), format.GlFormat(), format.GlPixelType())
}

func (r *Rend3DGL) BeginPass(name string) {
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, 0, int32(len(name)), gl.Str(name+"\x00"))
}

func (r *Rend3DGL) EndPass() {
	gl.PopDebugGroup()
}

func (r *Rend3DGL) FrameEnd() {
	r.BoundVaoId = 0
	r.BoundMatId = 0
}

func (r *Rend3DGL) Delete() {
	r.FrameUbo.Delete()
}

// NewRend3DGL creates the renderer and puts OpenGL into the state it tracks. Needs a current OpenGL context.
func NewRend3DGL() *Rend3DGL {

	r := &Rend3DGL{
		FrameUbo: buffers.NewUniformBuffer(renderer.FrameDataFields(), buffers.BufUsage_Dynamic_Draw),
	}
	r.FrameUbo.SetBindPoint(renderer.FrameDataBindPoint)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	r.depthTest = true
	r.depthFunc = renderer.DepthFunc_Less
	r.depthWrite = true
	r.blend = false
	r.cullMode = renderer.CullMode_Back
	r.wireframe = false

	return r
}
