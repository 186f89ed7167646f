// Package ibl bakes the image based lighting maps of a sky: a diffuse irradiance cubemap,
// a roughness prefiltered specular cubemap and a BRDF integration lookup texture.
package ibl

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
)

const (
	BakePassName = "IBL Bake"

	captureFovDeg = 90
	captureNear   = 0.1
	captureFar    = 10
)

type Config struct {
	IrradianceSize    int32
	SpecularSize      int32
	SpecularMipLevels int32
	BrdfLutSize       int32
}

func DefaultConfig() Config {
	return Config{
		IrradianceSize:    32,
		SpecularSize:      32,
		SpecularMipLevels: 5,
		BrdfLutSize:       128,
	}
}

// RoughnessForMip maps mip 0 to roughness 0 and the last mip to roughness 1
func RoughnessForMip(mip, mipLevels int32) float32 {

	if mipLevels <= 1 {
		return 0
	}

	return float32(mip) / float32(mipLevels-1)
}

// MipResolution is the size of a mip level, never below 1
func MipResolution(baseSize, mip int32) int32 {
	return max(baseSize>>mip, 1)
}

// CaptureProjection is the projection that makes one cubemap face fill the target exactly
func CaptureProjection() gglm.Mat4 {
	p := gglm.Perspective(gglm.Deg2Rad*captureFovDeg, 1, captureNear, captureFar)
	return *p.Clone()
}

// CaptureViews are the views from the origin toward each cubemap face in the order +X, -X, +Y, -Y, +Z, -Z.
// The up vectors follow the cubemap face orientation convention.
func CaptureViews() [6]gglm.Mat4 {

	origin := gglm.NewVec3(0, 0, 0)
	dirs := [6][2]gglm.Vec3{
		{gglm.NewVec3(1, 0, 0), gglm.NewVec3(0, -1, 0)},
		{gglm.NewVec3(-1, 0, 0), gglm.NewVec3(0, -1, 0)},
		{gglm.NewVec3(0, 1, 0), gglm.NewVec3(0, 0, 1)},
		{gglm.NewVec3(0, -1, 0), gglm.NewVec3(0, 0, -1)},
		{gglm.NewVec3(0, 0, 1), gglm.NewVec3(0, -1, 0)},
		{gglm.NewVec3(0, 0, -1), gglm.NewVec3(0, -1, 0)},
	}

	var views [6]gglm.Mat4
	for i := 0; i < 6; i++ {
		views[i] = gglm.LookAtRH(&origin, &dirs[i][0], &dirs[i][1]).Mat4
	}

	return views
}

// EnvironmentMaps are the outputs of a bake. They are only read after the bake returns.
type EnvironmentMaps struct {
	Irradiance assets.Cubemap
	Specular   assets.Cubemap
	BrdfLut    assets.Texture
}

// MaterialMaps returns the texture ids lit materials sample, along with the given shadow map
func (em *EnvironmentMaps) MaterialMaps(shadowMapTex uint32) materials.EnvironmentMaps {
	return materials.EnvironmentMaps{
		IrradianceTex: em.Irradiance.TexID,
		SpecularTex:   em.Specular.TexID,
		BrdfLutTex:    em.BrdfLut.TexID,
		ShadowMapTex:  shadowMapTex,
	}
}

func (em *EnvironmentMaps) Delete() {
	em.Irradiance.Delete()
	em.Specular.Delete()
	em.BrdfLut.Delete()
}

// BakeMaterials are the shaders of the three bake stages.
// Irradiance and Specular sample the base cubemap, Brdf needs no input.
type BakeMaterials struct {
	Irradiance *materials.Material
	Specular   *materials.Material
	Brdf       *materials.Material
}

// Baker holds what every bake shares: a scratch render target with only a depth renderbuffer,
// the capture cube and the full screen quad.
type Baker struct {
	Rend    renderer.Render
	Scratch buffers.Framebuffer
	Cube    *meshes.Mesh
	Quad    *meshes.Mesh
	Mats    BakeMaterials
	Cfg     Config

	captureProj  gglm.Mat4
	captureViews [6]gglm.Mat4
}

// Bake renders the irradiance, specular and BRDF maps of base, strictly in that order, and returns them.
// The pipeline state is restored to back face culling on return.
func (b *Baker) Bake(base *assets.Cubemap) EnvironmentMaps {

	assert.T(base.TexID != 0, "Baking a sky needs a loaded base cubemap")

	rend := b.Rend
	rend.BeginPass(BakePassName)

	// The cube is seen from the inside
	rend.SetCullMode(renderer.CullMode_None)

	maps := EnvironmentMaps{}

	logging.InfoLog.Printf("Computing sky irradiance (%dx%d)\n", b.Cfg.IrradianceSize, b.Cfg.IrradianceSize)
	maps.Irradiance = rend.NewCubemap(b.Cfg.IrradianceSize, 1, buffers.FramebufferAttachmentDataFormat_RGB16F)
	b.bakeIrradiance(base, &maps.Irradiance)

	logging.InfoLog.Printf("Computing sky specular (%d mips)\n", b.Cfg.SpecularMipLevels)
	maps.Specular = rend.NewCubemap(b.Cfg.SpecularSize, b.Cfg.SpecularMipLevels, buffers.FramebufferAttachmentDataFormat_RGB16F)
	b.bakeSpecular(base, &maps.Specular)

	logging.InfoLog.Printf("Computing BRDF lookup texture (%dx%d)\n", b.Cfg.BrdfLutSize, b.Cfg.BrdfLutSize)
	maps.BrdfLut = rend.NewTexture2D(b.Cfg.BrdfLutSize, b.Cfg.BrdfLutSize, buffers.FramebufferAttachmentDataFormat_RG16F)
	b.bakeBrdf(&maps.BrdfLut)

	rend.SetCullMode(renderer.CullMode_Back)
	rend.EndPass()

	return maps
}

func (b *Baker) bakeIrradiance(base, out *assets.Cubemap) {

	mat := b.Mats.Irradiance
	mat.CubemapTex = base.TexID

	b.useScratchSize(b.Cfg.IrradianceSize)
	for face := uint32(0); face < 6; face++ {

		b.Rend.AttachCubemapFace(&b.Scratch, out, face, 0)
		b.Rend.Clear(renderer.ClearMask_Color | renderer.ClearMask_Depth)

		b.stageCapture(mat, face)
		b.Rend.DrawCubemap(b.Cube, mat)
	}
}

func (b *Baker) bakeSpecular(base, out *assets.Cubemap) {

	mat := b.Mats.Specular
	mat.CubemapTex = base.TexID

	for mip := int32(0); mip < b.Cfg.SpecularMipLevels; mip++ {

		b.useScratchSize(MipResolution(b.Cfg.SpecularSize, mip))
		roughness := RoughnessForMip(mip, b.Cfg.SpecularMipLevels)

		for face := uint32(0); face < 6; face++ {

			b.Rend.AttachCubemapFace(&b.Scratch, out, face, mip)
			b.Rend.Clear(renderer.ClearMask_Color | renderer.ClearMask_Depth)

			b.stageCapture(mat, face)
			mat.StageUnifFloat32("roughness", roughness)
			mat.StageUnifInt32("cubeMapRes", base.Size)
			b.Rend.DrawCubemap(b.Cube, mat)
		}
	}
}

func (b *Baker) bakeBrdf(out *assets.Texture) {

	b.useScratchSize(b.Cfg.BrdfLutSize)
	b.Rend.AttachTexture2D(&b.Scratch, out)
	b.Rend.Clear(renderer.ClearMask_Color | renderer.ClearMask_Depth)

	modelMat := gglm.NewTrMatId()
	b.Rend.DrawMesh(b.Quad, &modelMat, b.Mats.Brdf)
}

func (b *Baker) useScratchSize(size int32) {

	if b.Scratch.Width != uint32(size) || b.Scratch.Height != uint32(size) {
		b.Rend.ResizeTarget(&b.Scratch, uint32(size), uint32(size))
	}

	b.Rend.BindTarget(&b.Scratch)
}

func (b *Baker) stageCapture(mat *materials.Material, face uint32) {
	mat.StageUnifMat4("projection", &b.captureProj)
	mat.StageUnifMat4("view", &b.captureViews[face])
}

func (b *Baker) Delete() {
	b.Scratch.Delete()
}

// NewBaker creates the scratch target used by all bakes. Cube and quad are borrowed, not owned.
func NewBaker(rend renderer.Render, cube, quad *meshes.Mesh, mats BakeMaterials, cfg Config) *Baker {

	assert.T(cfg.SpecularMipLevels > 0, "Specular mip levels must be at least 1, but got %d", cfg.SpecularMipLevels)

	return &Baker{
		Rend: rend,
		Scratch: rend.NewFramebuffer(
			uint32(cfg.IrradianceSize),
			uint32(cfg.IrradianceSize),
			renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Renderbuffer, Format: buffers.FramebufferAttachmentDataFormat_Depth24},
		),
		Cube:         cube,
		Quad:         quad,
		Mats:         mats,
		Cfg:          cfg,
		captureProj:  CaptureProjection(),
		captureViews: CaptureViews(),
	}
}
