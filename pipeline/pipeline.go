// Package pipeline draws a scene as a fixed sequence of passes:
// shadow, opaque, sky, transparency, an optional post process composite, then the overlay.
package pipeline

import (
	"sort"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/camera"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
	"github.com/bloeys/nmage-pbr/scene"
)

const (
	PassShadow       = "Shadow"
	PassOpaque       = "Opaque"
	PassSky          = "Sky"
	PassTransparency = "Transparency"
	PassPostProcess  = "PostProcess"
	PassOverlay      = "Overlay"
)

// Overlay draws UI on top of the finished frame
type Overlay interface {
	Render()
}

// Resources are the materials and meshes the pipeline draws with besides the scene's own
type Resources struct {
	DepthMat       *materials.Material
	LightGizmoMat  *materials.Material
	PostProcessMat *materials.Material

	GizmoMesh  *meshes.Mesh
	ScreenQuad *meshes.Mesh
}

type Pipeline struct {
	Rend    renderer.Render
	Scene   *scene.Scene
	Res     Resources
	Cfg     Config
	Overlay Overlay
	// Swap presents the finished frame
	Swap func()

	ShadowTarget buffers.Framebuffer
	// PostTarget gets color, normals and visualized depth of the opaque pass when post processing is on
	PostTarget buffers.Framebuffer

	width  int32
	height int32

	postProcess     bool
	wireframe       bool
	refractionScale gglm.Vec2
	lightSpaceMat   gglm.Mat4
	warnedNoLight   bool

	frameData    renderer.FrameData
	env          materials.EnvironmentMaps
	emitterOrder []int
}

func (p *Pipeline) Width() int32 {
	return p.width
}

func (p *Pipeline) Height() int32 {
	return p.height
}

func (p *Pipeline) SetPostProcessEnabled(enabled bool) {
	p.postProcess = enabled
}

func (p *Pipeline) GetPostProcessEnabled() bool {
	return p.postProcess
}

func (p *Pipeline) SetRefractionScale(scale gglm.Vec2) {
	p.refractionScale = scale
}

func (p *Pipeline) RefractionScale() gglm.Vec2 {
	return p.refractionScale
}

// SetWireframe draws the opaque scene as lines. Other passes are unaffected.
func (p *Pipeline) SetWireframe(enabled bool) {
	p.wireframe = enabled
}

func (p *Pipeline) Wireframe() bool {
	return p.wireframe
}

func (p *Pipeline) ColorTexture() uint32 {
	return p.PostTarget.ColorAttachmentId(0)
}

func (p *Pipeline) NormalTexture() uint32 {
	return p.PostTarget.ColorAttachmentId(1)
}

func (p *Pipeline) DepthVisTexture() uint32 {
	return p.PostTarget.ColorAttachmentId(2)
}

func (p *Pipeline) ShadowMap() uint32 {
	return p.ShadowTarget.DepthAttachmentId()
}

// LightSpaceMat is the view projection of the shadow casting light as of the last Render
func (p *Pipeline) LightSpaceMat() gglm.Mat4 {
	return p.lightSpaceMat
}

// PostResize stores the new window size and reallocates the post process target.
// A zero width or height (a minimized window) is ignored.
func (p *Pipeline) PostResize(width, height int32) {

	if width <= 0 || height <= 0 {
		return
	}

	p.width = width
	p.height = height
	p.Rend.ResizeTarget(&p.PostTarget, uint32(width), uint32(height))
}

// Render draws one frame of the scene as seen by cam then presents it
func (p *Pipeline) Render(cam *camera.Camera, deltaTime, currentTime float32) {

	p.updateLightSpaceMat()
	p.updateFrameData(cam, currentTime)

	p.shadowPass()
	p.opaquePass()
	p.skyPass(cam)
	p.transparencyPass(cam, currentTime)

	if p.postProcess {
		p.postProcessPass()
	}

	p.overlayPass()

	p.Rend.FrameEnd()
	if p.Swap != nil {
		p.Swap()
	}
}

func (p *Pipeline) updateLightSpaceMat() {

	if len(p.Scene.DirLights) == 0 {

		if !p.warnedNoLight {
			logging.WarnLog.Println("Scene has no directional light, shadows use an identity light matrix")
			p.warnedNoLight = true
		}

		p.lightSpaceMat = gglm.NewMat4Diag(1)
		return
	}

	p.lightSpaceMat = LightSpaceMatrix(&p.Cfg, &p.Scene.DirLights[0].Dir)
}

// LightSpaceMatrix is an orthographic projection around the light position looking along lightDir
func LightSpaceMatrix(cfg *Config, lightDir *gglm.Vec3) gglm.Mat4 {

	target := cfg.LightPos.Clone().Add(lightDir)
	view := gglm.LookAtRH(&cfg.LightPos, target, &cfg.LightUp).Mat4

	e := cfg.LightOrthoExtent
	proj := gglm.Ortho(-e, e, -e, e, cfg.LightNear, cfg.LightFar).Mat4

	return *proj.Mul(&view)
}

func (p *Pipeline) updateFrameData(cam *camera.Camera, currentTime float32) {

	fd := &p.frameData
	fd.ViewMat = cam.ViewMat
	fd.ProjMat = cam.ProjMat
	fd.LightSpaceMat = p.lightSpaceMat
	fd.CamPos = cam.Pos
	fd.DirLights = p.Scene.DirLights
	fd.PointLights = p.Scene.PointLights
	fd.Time = currentTime
	fd.ScreenSize = gglm.NewVec2(float32(p.width), float32(p.height))
	fd.RefractionScale = p.refractionScale

	p.Rend.SetFrameData(fd)

	p.env = materials.EnvironmentMaps{ShadowMapTex: p.ShadowMap()}
	if sky := p.Scene.ActiveSky(); sky != nil {
		p.env = sky.Maps.MaterialMaps(p.ShadowMap())
	}
}

func (p *Pipeline) drawEntity(e *scene.Entity, mat *materials.Material) {
	world := &p.Scene.Transforms.Get(e.Transform).World
	p.Rend.DrawMesh(p.Scene.Mesh(e.Mesh), world, mat)
}

func (p *Pipeline) shadowPass() {

	rend := p.Rend
	rend.BeginPass(PassShadow)

	rend.SetDepthTest(true)
	rend.SetCullMode(renderer.CullMode_Back)
	rend.BindTarget(&p.ShadowTarget)
	rend.Clear(renderer.ClearMask_Depth)

	for i := 0; i < len(p.Scene.Entities); i++ {

		e := &p.Scene.Entities[i]
		if p.Scene.Material(e.Mat).IsRefractive() {
			continue
		}

		p.drawEntity(e, p.Res.DepthMat)
	}

	rend.EndPass()
}

func (p *Pipeline) opaquePass() {

	rend := p.Rend
	rend.BeginPass(PassOpaque)

	if p.postProcess {
		rend.BindTarget(&p.PostTarget)
	} else {
		rend.BindDefaultTarget(p.width, p.height)
	}

	c := &p.Cfg.ClearColor
	rend.SetClearColor(c[0], c[1], c[2], c[3])
	rend.Clear(renderer.ClearMask_Color | renderer.ClearMask_Depth)
	rend.SetWireframe(p.wireframe)

	p.drawPointLightGizmos()

	for i := 0; i < len(p.Scene.Entities); i++ {

		e := &p.Scene.Entities[i]
		mat := p.Scene.Material(e.Mat)
		if mat.IsRefractive() {
			continue
		}

		mat.PrepareEnvironment(&p.env)
		p.drawEntity(e, mat)
	}

	rend.SetWireframe(false)
	rend.EndPass()
}

func (p *Pipeline) drawPointLightGizmos() {

	mat := p.Res.LightGizmoMat
	for i := 0; i < len(p.Scene.PointLights); i++ {

		pl := &p.Scene.PointLights[i]
		scale := pl.Range * p.Cfg.PointLightGizmoScale

		modelMat := gglm.NewTrMatId()
		modelMat.TranslateVec(&pl.Pos).Scale(scale, scale, scale)

		color := pl.Color
		color.Scale(pl.Intensity)
		mat.StageUnifVec3("color", &color)

		p.Rend.DrawMesh(p.Res.GizmoMesh, &modelMat, mat)
	}
}

func (p *Pipeline) skyPass(cam *camera.Camera) {

	rend := p.Rend
	rend.BeginPass(PassSky)

	sky := p.Scene.ActiveSky()
	if sky != nil {

		// Only where nothing opaque was drawn, and from inside the cube
		rend.SetDepthFunc(renderer.DepthFunc_LEqual)
		rend.SetCullMode(renderer.CullMode_Front)

		sky.Draw(rend, cam)

		rend.SetDepthFunc(renderer.DepthFunc_Less)
		rend.SetCullMode(renderer.CullMode_Back)
	}

	rend.EndPass()
}

func (p *Pipeline) transparencyPass(cam *camera.Camera, currentTime float32) {

	rend := p.Rend
	rend.BeginPass(PassTransparency)

	rend.SetDepthWrite(false)
	rend.SetBlend(true)
	rend.SetCullMode(renderer.CullMode_None)

	p.emitterOrder = EmitterDrawOrder(&cam.Pos, p.Scene.Emitters, p.emitterOrder)
	for _, i := range p.emitterOrder {
		p.Scene.Emitters[i].Draw(rend, cam, currentTime)
	}

	rend.SetCullMode(renderer.CullMode_Back)
	rend.SetBlend(false)
	rend.SetDepthWrite(true)

	rend.EndPass()
}

// Positioner is anything with a world position, like a particle emitter
type Positioner interface {
	Pos() gglm.Vec3
}

// EmitterDrawOrder returns indices into emitters from farthest to nearest camPos.
// Emitters at equal distance keep their index order. order is reused if it has the capacity.
func EmitterDrawOrder[T Positioner](camPos *gglm.Vec3, emitters []T, order []int) []int {

	order = order[:0]
	dists := make([]float32, len(emitters))
	for i := 0; i < len(emitters); i++ {

		pos := emitters[i].Pos()
		d := gglm.NewVec3(pos.Data[0]-camPos.Data[0], pos.Data[1]-camPos.Data[1], pos.Data[2]-camPos.Data[2])
		dists[i] = gglm.DotVec3(&d, &d)
		order = append(order, i)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] > dists[order[b]]
	})

	return order
}

func (p *Pipeline) postProcessPass() {

	rend := p.Rend
	rend.BeginPass(PassPostProcess)

	rend.BindDefaultTarget(p.width, p.height)
	rend.SetDepthTest(false)

	c := &p.Cfg.CompositeClearColor
	rend.SetClearColor(c[0], c[1], c[2], c[3])
	rend.Clear(renderer.ClearMask_Color)

	ppMat := p.Res.PostProcessMat
	ppMat.AlbedoTex = p.ColorTexture()
	quadMat := gglm.NewTrMatId()
	rend.DrawMesh(p.Res.ScreenQuad, &quadMat, ppMat)

	rend.SetCullMode(renderer.CullMode_Back)
	for i := 0; i < len(p.Scene.Entities); i++ {

		e := &p.Scene.Entities[i]
		mat := p.Scene.Material(e.Mat)
		if !mat.IsRefractive() {
			continue
		}

		mat.PrepareEnvironment(&p.env)
		mat.AlbedoTex = p.ColorTexture()
		p.drawEntity(e, mat)
	}

	rend.SetDepthTest(true)
	rend.EndPass()
}

func (p *Pipeline) overlayPass() {

	p.Rend.BeginPass(PassOverlay)
	if p.Overlay != nil {
		p.Overlay.Render()
	}
	p.Rend.EndPass()
}

// Delete frees the render targets in reverse order of creation
func (p *Pipeline) Delete() {
	p.PostTarget.Delete()
	p.ShadowTarget.Delete()
}

// New creates the shadow target and the post process target sized to the window
func New(rend renderer.Render, sc *scene.Scene, res Resources, width, height int32, cfg Config) *Pipeline {

	assert.T(width > 0 && height > 0, "Pipeline needs a positive size, but got %dx%d", width, height)
	assert.T(res.DepthMat != nil && res.LightGizmoMat != nil && res.PostProcessMat != nil, "Pipeline materials must all be set")

	p := &Pipeline{
		Rend:            rend,
		Scene:           sc,
		Res:             res,
		Cfg:             cfg,
		width:           width,
		height:          height,
		postProcess:     cfg.PostProcessEnabled,
		refractionScale: cfg.RefractionScale,
		lightSpaceMat:   gglm.NewMat4Diag(1),
	}

	p.ShadowTarget = rend.NewFramebuffer(cfg.ShadowMapSize, cfg.ShadowMapSize,
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Texture, Format: buffers.FramebufferAttachmentDataFormat_Depth24},
	)

	p.PostTarget = rend.NewFramebuffer(uint32(width), uint32(height),
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Texture, Format: buffers.FramebufferAttachmentDataFormat_RGB8},
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Texture, Format: buffers.FramebufferAttachmentDataFormat_RGB8},
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Texture, Format: buffers.FramebufferAttachmentDataFormat_RGB8},
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Renderbuffer, Format: buffers.FramebufferAttachmentDataFormat_Depth24Stencil8},
	)

	return p
}
