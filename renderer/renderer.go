package renderer

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
)

type ClearMask uint32

const (
	ClearMask_None  ClearMask = 0
	ClearMask_Color ClearMask = 1 << (iota - 1)
	ClearMask_Depth
	ClearMask_Stencil
)

type DepthFunc int32

const (
	DepthFunc_Less DepthFunc = iota
	DepthFunc_LEqual
)

type CullMode int32

const (
	CullMode_None CullMode = iota
	CullMode_Back
	CullMode_Front
)

// AttachmentDesc describes one attachment of a new render target
type AttachmentDesc struct {
	Type   buffers.FramebufferAttachmentType
	Format buffers.FramebufferAttachmentDataFormat
}

// Render is everything the frame passes need from the GPU. Implementations cache bound state
// and so all draws and state changes must go through the same Render.
type Render interface {
	DrawMesh(mesh *meshes.Mesh, modelMat *gglm.TrMat, mat *materials.Material)
	DrawVertexArray(mat *materials.Material, vao *buffers.VertexArray, firstElement int32, count int32)
	DrawCubemap(mesh *meshes.Mesh, mat *materials.Material)
	// DrawParticles draws indexCount indices of the vao with the storage buffer bound at its bind point
	DrawParticles(mat *materials.Material, vao *buffers.VertexArray, ssbo *buffers.StorageBuffer, indexCount int32)

	SetFrameData(fd *FrameData)

	// BindTarget binds the render target and sets the viewport to its size
	BindTarget(fbo *buffers.Framebuffer)
	BindDefaultTarget(width, height int32)
	// NewFramebuffer creates a render target. An incomplete target is logged and still returned.
	NewFramebuffer(width, height uint32, attachments ...AttachmentDesc) buffers.Framebuffer
	ResizeTarget(fbo *buffers.Framebuffer, width, height uint32)
	AttachCubemapFace(fbo *buffers.Framebuffer, cubemap *assets.Cubemap, face uint32, mip int32)
	AttachTexture2D(fbo *buffers.Framebuffer, tex *assets.Texture)

	SetClearColor(r, g, b, a float32)
	Clear(mask ClearMask)

	SetDepthTest(enabled bool)
	SetDepthFunc(f DepthFunc)
	SetDepthWrite(enabled bool)
	SetBlend(enabled bool)
	SetCullMode(mode CullMode)
	SetWireframe(enabled bool)

	NewCubemap(size, mipLevels int32, format buffers.FramebufferAttachmentDataFormat) assets.Cubemap
	NewTexture2D(width, height int32, format buffers.FramebufferAttachmentDataFormat) assets.Texture

	// BeginPass and EndPass group the commands in between under a name for debuggers
	BeginPass(name string)
	EndPass()

	FrameEnd()
}
