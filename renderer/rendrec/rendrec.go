// Package rendrec implements renderer.Render by recording every call instead of talking to a GPU.
// Resources get fake, unique ids, so code that creates targets and textures runs unchanged.
package rendrec

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
)

var _ renderer.Render = &Recorder{}

type CommandKind int32

const (
	CommandKind_Unknown CommandKind = iota
	CommandKind_DrawMesh
	CommandKind_DrawVertexArray
	CommandKind_DrawCubemap
	CommandKind_DrawParticles
	CommandKind_SetFrameData
	CommandKind_BindTarget
	CommandKind_BindDefaultTarget
	CommandKind_NewFramebuffer
	CommandKind_ResizeTarget
	CommandKind_AttachCubemapFace
	CommandKind_AttachTexture2D
	CommandKind_SetClearColor
	CommandKind_Clear
	CommandKind_SetDepthTest
	CommandKind_SetDepthFunc
	CommandKind_SetDepthWrite
	CommandKind_SetBlend
	CommandKind_SetCullMode
	CommandKind_SetWireframe
	CommandKind_NewCubemap
	CommandKind_NewTexture2D
	CommandKind_BeginPass
	CommandKind_EndPass
	CommandKind_FrameEnd
)

func (k CommandKind) IsDraw() bool {
	return k == CommandKind_DrawMesh || k == CommandKind_DrawVertexArray || k == CommandKind_DrawCubemap || k == CommandKind_DrawParticles
}

type Command struct {
	Kind CommandKind
	// Pass is the innermost pass open when the command was recorded
	Pass string
	// Name is the pass name for BeginPass, and the mesh name for mesh draws
	Name string

	// Mat is a copy of the material at draw time, with Uniforms holding what was staged on it
	Mat      materials.Material
	Uniforms []materials.StagedUniform
	ModelMat gglm.Mat4
	Count    int32
	First    int32

	// Target is the framebuffer id a draw went to, or the one a target command worked on
	Target uint32
	Width  uint32
	Height uint32
	Face   uint32
	Mip    int32
	TexId  uint32

	ClearMask  renderer.ClearMask
	ClearColor [4]float32
	Enabled    bool
	DepthFunc  renderer.DepthFunc
	CullMode   renderer.CullMode
	FrameData  renderer.FrameData
}

// Uniform returns the staged uniform of the given name recorded with the command
func (c *Command) Uniform(name string) (materials.StagedUniform, bool) {

	for i := 0; i < len(c.Uniforms); i++ {
		if c.Uniforms[i].Name == name {
			return c.Uniforms[i], true
		}
	}

	return materials.StagedUniform{}, false
}

// State is the pipeline state the recorder tracks, matching what OpenGL would have
type State struct {
	Target         uint32
	ViewportWidth  uint32
	ViewportHeight uint32
	DepthTest      bool
	DepthFunc      renderer.DepthFunc
	DepthWrite     bool
	Blend          bool
	CullMode       renderer.CullMode
	Wireframe      bool
}

type Recorder struct {
	Commands []Command
	State    State

	lastId     uint32
	openPasses []string
}

func (r *Recorder) nextId() uint32 {
	r.lastId++
	return r.lastId
}

func (r *Recorder) record(c Command) {

	if len(r.openPasses) > 0 {
		c.Pass = r.openPasses[len(r.openPasses)-1]
	}

	r.Commands = append(r.Commands, c)
}

func (r *Recorder) recordDraw(kind CommandKind, mat *materials.Material, c Command) {

	c.Kind = kind
	c.Target = r.State.Target
	c.Uniforms = mat.TakeStagedUniforms()
	c.Mat = *mat
	r.record(c)
}

func (r *Recorder) DrawMesh(mesh *meshes.Mesh, modelMat *gglm.TrMat, mat *materials.Material) {
	r.recordDraw(CommandKind_DrawMesh, mat, Command{Name: mesh.Name, ModelMat: modelMat.Mat4, Count: mesh.IndexCount()})
}

func (r *Recorder) DrawVertexArray(mat *materials.Material, vao *buffers.VertexArray, firstElement int32, count int32) {
	r.recordDraw(CommandKind_DrawVertexArray, mat, Command{First: firstElement, Count: count})
}

func (r *Recorder) DrawCubemap(mesh *meshes.Mesh, mat *materials.Material) {
	r.recordDraw(CommandKind_DrawCubemap, mat, Command{Name: mesh.Name, Count: mesh.IndexCount()})
}

func (r *Recorder) DrawParticles(mat *materials.Material, vao *buffers.VertexArray, ssbo *buffers.StorageBuffer, indexCount int32) {
	r.recordDraw(CommandKind_DrawParticles, mat, Command{Count: indexCount, TexId: ssbo.Id})
}

func (r *Recorder) SetFrameData(fd *renderer.FrameData) {
	r.record(Command{Kind: CommandKind_SetFrameData, FrameData: *fd})
}

func (r *Recorder) BindTarget(fbo *buffers.Framebuffer) {
	r.State.Target = fbo.Id
	r.State.ViewportWidth = fbo.Width
	r.State.ViewportHeight = fbo.Height
	r.record(Command{Kind: CommandKind_BindTarget, Target: fbo.Id, Width: fbo.Width, Height: fbo.Height})
}

func (r *Recorder) BindDefaultTarget(width, height int32) {
	r.State.Target = 0
	r.State.ViewportWidth = uint32(width)
	r.State.ViewportHeight = uint32(height)
	r.record(Command{Kind: CommandKind_BindDefaultTarget, Width: uint32(width), Height: uint32(height)})
}

func (r *Recorder) NewFramebuffer(width, height uint32, attachments ...renderer.AttachmentDesc) buffers.Framebuffer {

	fbo := buffers.Framebuffer{
		Id:     r.nextId(),
		Width:  width,
		Height: height,
	}

	for i := 0; i < len(attachments); i++ {

		fbo.Attachments = append(fbo.Attachments, buffers.FramebufferAttachment{
			Id:     r.nextId(),
			Type:   attachments[i].Type,
			Format: attachments[i].Format,
		})

		if attachments[i].Format.IsColorFormat() {
			fbo.ColorAttachmentsCount++
		}
	}

	r.record(Command{Kind: CommandKind_NewFramebuffer, Target: fbo.Id, Width: width, Height: height})
	return fbo
}

func (r *Recorder) ResizeTarget(fbo *buffers.Framebuffer, width, height uint32) {
	fbo.Width = width
	fbo.Height = height
	r.record(Command{Kind: CommandKind_ResizeTarget, Target: fbo.Id, Width: width, Height: height})
}

func (r *Recorder) AttachCubemapFace(fbo *buffers.Framebuffer, cubemap *assets.Cubemap, face uint32, mip int32) {
	r.State.Target = fbo.Id
	r.record(Command{Kind: CommandKind_AttachCubemapFace, Target: fbo.Id, TexId: cubemap.TexID, Face: face, Mip: mip, Width: fbo.Width, Height: fbo.Height})
}

func (r *Recorder) AttachTexture2D(fbo *buffers.Framebuffer, tex *assets.Texture) {
	r.State.Target = fbo.Id
	r.record(Command{Kind: CommandKind_AttachTexture2D, Target: fbo.Id, TexId: tex.TexID, Width: fbo.Width, Height: fbo.Height})
}

func (r *Recorder) SetClearColor(red, green, blue, alpha float32) {
	r.record(Command{Kind: CommandKind_SetClearColor, ClearColor: [4]float32{red, green, blue, alpha}})
}

func (r *Recorder) Clear(mask renderer.ClearMask) {
	r.record(Command{Kind: CommandKind_Clear, ClearMask: mask, Target: r.State.Target})
}

func (r *Recorder) SetDepthTest(enabled bool) {
	r.State.DepthTest = enabled
	r.record(Command{Kind: CommandKind_SetDepthTest, Enabled: enabled})
}

func (r *Recorder) SetDepthFunc(f renderer.DepthFunc) {
	r.State.DepthFunc = f
	r.record(Command{Kind: CommandKind_SetDepthFunc, DepthFunc: f})
}

func (r *Recorder) SetDepthWrite(enabled bool) {
	r.State.DepthWrite = enabled
	r.record(Command{Kind: CommandKind_SetDepthWrite, Enabled: enabled})
}

func (r *Recorder) SetBlend(enabled bool) {
	r.State.Blend = enabled
	r.record(Command{Kind: CommandKind_SetBlend, Enabled: enabled})
}

func (r *Recorder) SetCullMode(mode renderer.CullMode) {
	r.State.CullMode = mode
	r.record(Command{Kind: CommandKind_SetCullMode, CullMode: mode})
}

func (r *Recorder) SetWireframe(enabled bool) {
	r.State.Wireframe = enabled
	r.record(Command{Kind: CommandKind_SetWireframe, Enabled: enabled})
}

func (r *Recorder) NewCubemap(size, mipLevels int32, format buffers.FramebufferAttachmentDataFormat) assets.Cubemap {

	cmap := assets.Cubemap{TexID: r.nextId(), Size: size, MipLevels: max(mipLevels, 1)}
	r.record(Command{Kind: CommandKind_NewCubemap, TexId: cmap.TexID, Width: uint32(size), Height: uint32(size), Mip: cmap.MipLevels})
	return cmap
}

func (r *Recorder) NewTexture2D(width, height int32, format buffers.FramebufferAttachmentDataFormat) assets.Texture {

	tex := assets.Texture{TexID: r.nextId(), Width: width, Height: height}
	r.record(Command{Kind: CommandKind_NewTexture2D, TexId: tex.TexID, Width: uint32(width), Height: uint32(height)})
	return tex
}

func (r *Recorder) BeginPass(name string) {
	r.openPasses = append(r.openPasses, name)
	r.record(Command{Kind: CommandKind_BeginPass, Name: name})
}

func (r *Recorder) EndPass() {

	r.record(Command{Kind: CommandKind_EndPass})
	if len(r.openPasses) > 0 {
		r.openPasses = r.openPasses[:len(r.openPasses)-1]
	}
}

func (r *Recorder) FrameEnd() {
	r.record(Command{Kind: CommandKind_FrameEnd})
}

// Reset forgets recorded commands but keeps the tracked state and id counter
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
	r.openPasses = r.openPasses[:0]
}

// Passes returns the names of the recorded passes in order
func (r *Recorder) Passes() []string {

	names := make([]string, 0, 8)
	for i := 0; i < len(r.Commands); i++ {
		if r.Commands[i].Kind == CommandKind_BeginPass {
			names = append(names, r.Commands[i].Name)
		}
	}

	return names
}

// Draws returns the draw commands, optionally only those recorded inside the named pass
func (r *Recorder) Draws(pass string) []Command {

	draws := make([]Command, 0, len(r.Commands))
	for i := 0; i < len(r.Commands); i++ {

		c := &r.Commands[i]
		if c.Kind.IsDraw() && (pass == "" || c.Pass == pass) {
			draws = append(draws, *c)
		}
	}

	return draws
}

// InPass returns every command recorded inside the named pass
func (r *Recorder) InPass(pass string) []Command {

	cmds := make([]Command, 0, len(r.Commands))
	for i := 0; i < len(r.Commands); i++ {
		if r.Commands[i].Pass == pass {
			cmds = append(cmds, r.Commands[i])
		}
	}

	return cmds
}

// OfKind returns the commands of the given kind in order
func (r *Recorder) OfKind(kind CommandKind) []Command {

	cmds := make([]Command, 0, 8)
	for i := 0; i < len(r.Commands); i++ {
		if r.Commands[i].Kind == kind {
			cmds = append(cmds, r.Commands[i])
		}
	}

	return cmds
}

// NewRecorder returns a recorder whose state matches what a freshly created GL renderer sets up
func NewRecorder() *Recorder {
	return &Recorder{
		State: State{
			DepthTest:  true,
			DepthFunc:  renderer.DepthFunc_Less,
			DepthWrite: true,
			CullMode:   renderer.CullMode_Back,
		},
	}
}
