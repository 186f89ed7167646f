package pipeline

import (
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/camera"
	"github.com/bloeys/nmage-pbr/ibl"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/particles"
	"github.com/bloeys/nmage-pbr/renderer"
	"github.com/bloeys/nmage-pbr/renderer/rendrec"
	"github.com/bloeys/nmage-pbr/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWorld struct {
	Rec   *rendrec.Recorder
	Scene *scene.Scene
	Pipe  *Pipeline
	Cam   camera.Camera
	Swaps int
}

func newMat(name string, settings materials.MaterialSettings) *materials.Material {
	m := materials.NewMaterialNoGL(name, settings)
	return &m
}

func newTestEmitter(ssboId uint32, pos gglm.Vec3, mat *materials.Material) *particles.Emitter {
	return &particles.Emitter{
		Sim:  particles.NewSimulator(4, 1, 1, pos, nil, nil),
		Ssbo: buffers.StorageBuffer{Id: ssboId},
		Mat:  mat,
	}
}

func newTestWorld(t *testing.T, postProcess bool) *testWorld {

	t.Helper()

	sc := &scene.Scene{}
	sphere := sc.AddMesh(&meshes.Mesh{Name: "sphere", SubMeshes: []meshes.SubMesh{{IndexCount: 60}}})
	cube := &meshes.Mesh{Name: "cube", SubMeshes: []meshes.SubMesh{{IndexCount: 36}}}
	sc.AddMesh(cube)

	phong := sc.AddMaterial(newMat("phong", materials.MaterialSettings_HasModelMtx))
	pbr := sc.AddMaterial(newMat("pbr", materials.MaterialSettings_HasModelMtx|materials.MaterialSettings_PBR))
	glass := sc.AddMaterial(newMat("glass", materials.MaterialSettings_HasModelMtx|materials.MaterialSettings_Refractive))

	sc.AddEntity("phongSphere", sphere, phong, gglm.NewVec3(0, 0, 0))
	sc.AddEntity("glassSphere", sphere, glass, gglm.NewVec3(0, 21, 1.5))
	sc.AddEntity("pbrSphere", sphere, pbr, gglm.NewVec3(0, 0, 3))

	particleMat := newMat("particle", materials.MaterialSettings_None)
	sc.AddEmitter(newTestEmitter(101, gglm.NewVec3(0, 0, -5), particleMat))
	sc.AddEmitter(newTestEmitter(102, gglm.NewVec3(0, 0, -10), particleMat))
	sc.AddEmitter(newTestEmitter(103, gglm.NewVec3(5, 0, 0), particleMat))

	sc.AddDirLight(renderer.DirLight{Dir: gglm.NewVec3(1, 1, -1), Color: gglm.NewVec3(1, 1, 1), Intensity: 1})
	sc.AddPointLight(renderer.PointLight{Pos: gglm.NewVec3(1, 2, 3), Color: gglm.NewVec3(1, 0, 0), Intensity: 2, Range: 4})
	sc.AddPointLight(renderer.PointLight{Pos: gglm.NewVec3(3, 2, 1), Color: gglm.NewVec3(0, 1, 0), Intensity: 1, Range: 4})

	sc.AddSky(&ibl.Sky{
		Name: "blue",
		Base: assets.Cubemap{TexID: 500},
		Maps: ibl.EnvironmentMaps{
			Irradiance: assets.Cubemap{TexID: 501},
			Specular:   assets.Cubemap{TexID: 502},
			BrdfLut:    assets.Texture{TexID: 503},
		},
		Mat:  newMat("sky", materials.MaterialSettings_None),
		Cube: cube,
	})
	sc.Transforms.UpdateWorld()

	w := &testWorld{
		Rec:   rendrec.NewRecorder(),
		Scene: sc,
	}

	cfg := DefaultConfig()
	cfg.PostProcessEnabled = postProcess

	res := Resources{
		DepthMat:       newMat("depth", materials.MaterialSettings_HasModelMtx),
		LightGizmoMat:  newMat("light", materials.MaterialSettings_HasModelMtx),
		PostProcessMat: newMat("postprocess", materials.MaterialSettings_None),
		GizmoMesh:      sc.Mesh(sphere),
		ScreenQuad:     &meshes.Mesh{Name: "quad", SubMeshes: []meshes.SubMesh{{IndexCount: 6}}},
	}

	w.Pipe = New(w.Rec, sc, res, 1280, 720, cfg)
	w.Pipe.Swap = func() { w.Swaps++ }

	pos := gglm.NewVec3(0, 0, 0)
	fwd := gglm.NewVec3(0, 0, -1)
	up := gglm.NewVec3(0, 1, 0)
	w.Cam = camera.NewPerspective(&pos, &fwd, &up, 0.1, 200, 45*gglm.Deg2Rad, 1280.0/720)

	w.Rec.Reset()
	return w
}

func drawNames(cmds []rendrec.Command) []string {

	names := make([]string, len(cmds))
	for i := 0; i < len(cmds); i++ {
		names[i] = cmds[i].Mat.Name
	}

	return names
}

func TestNewCreatesTargets(t *testing.T) {

	rec := rendrec.NewRecorder()
	p := New(rec, &scene.Scene{}, Resources{
		DepthMat:       newMat("depth", 0),
		LightGizmoMat:  newMat("light", 0),
		PostProcessMat: newMat("pp", 0),
	}, 800, 600, DefaultConfig())

	assert.Equal(t, uint32(1024), p.ShadowTarget.Width)
	assert.Equal(t, uint32(1024), p.ShadowTarget.Height)
	assert.Zero(t, p.ShadowTarget.ColorAttachmentsCount)
	assert.NotZero(t, p.ShadowMap())

	assert.Equal(t, uint32(800), p.PostTarget.Width)
	assert.Equal(t, uint32(3), p.PostTarget.ColorAttachmentsCount)
	assert.NotZero(t, p.ColorTexture())
	assert.NotZero(t, p.NormalTexture())
	assert.NotZero(t, p.DepthVisTexture())
	assert.NotEqual(t, p.ColorTexture(), p.NormalTexture())
	assert.True(t, p.GetPostProcessEnabled())
}

func TestPassOrder(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	assert.Equal(t, []string{PassShadow, PassOpaque, PassSky, PassTransparency, PassPostProcess, PassOverlay}, w.Rec.Passes())
	assert.Equal(t, 1, w.Swaps)
	assert.Equal(t, rendrec.CommandKind_FrameEnd, w.Rec.Commands[len(w.Rec.Commands)-1].Kind)

	// Every draw of an earlier pass comes before every draw of a later one
	passIndex := map[string]int{}
	for i, name := range w.Rec.Passes() {
		passIndex[name] = i
	}

	last := -1
	for _, d := range w.Rec.Draws("") {
		require.GreaterOrEqual(t, passIndex[d.Pass], last)
		last = passIndex[d.Pass]
	}
}

func TestPassOrderWithoutPostProcess(t *testing.T) {

	w := newTestWorld(t, false)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	assert.Equal(t, []string{PassShadow, PassOpaque, PassSky, PassTransparency, PassOverlay}, w.Rec.Passes())

	opaque := w.Rec.InPass(PassOpaque)
	require.NotEmpty(t, opaque)
	assert.Equal(t, rendrec.CommandKind_BindDefaultTarget, opaque[1].Kind)
	assert.Equal(t, uint32(1280), opaque[1].Width)

	for _, d := range w.Rec.Draws("") {
		assert.NotEqual(t, "glass", d.Mat.Name, "refractive entities are only drawn by the composite")
	}
}

func TestShadowPass(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	draws := w.Rec.Draws(PassShadow)
	assert.Equal(t, []string{"depth", "depth"}, drawNames(draws))
	for _, d := range draws {
		assert.Equal(t, w.Pipe.ShadowTarget.Id, d.Target)
	}

	clears := 0
	for _, c := range w.Rec.InPass(PassShadow) {
		if c.Kind == rendrec.CommandKind_Clear {
			clears++
			assert.Equal(t, renderer.ClearMask_Depth, c.ClearMask)
		}
	}
	assert.Equal(t, 1, clears)

	fd := w.Rec.OfKind(rendrec.CommandKind_SetFrameData)
	require.Len(t, fd, 1)
	assert.Equal(t, w.Pipe.LightSpaceMat(), fd[0].FrameData.LightSpaceMat)
	assert.NotEqual(t, gglm.NewMat4Diag(1), w.Pipe.LightSpaceMat())
}

func TestOpaquePass(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	draws := w.Rec.Draws(PassOpaque)
	require.Equal(t, []string{"light", "light", "phong", "pbr"}, drawNames(draws))

	for _, d := range draws {
		assert.Equal(t, w.Pipe.PostTarget.Id, d.Target)
	}

	gizmoColor, ok := draws[0].Uniform("color")
	require.True(t, ok)
	assert.Equal(t, gglm.NewVec3(2, 0, 0), gizmoColor.Vec3())
	assert.InDelta(t, 0.4, draws[0].ModelMat.Data[0][0], 1e-6)

	phong := draws[2]
	shininess, ok := phong.Uniform("shininess")
	require.True(t, ok)
	assert.Equal(t, materials.NonPbrShininess, shininess.Float32())
	assert.Equal(t, w.Pipe.ShadowMap(), phong.Mat.ShadowMapTex)

	pbr := draws[3]
	assert.Equal(t, uint32(501), pbr.Mat.IrradianceTex)
	assert.Equal(t, uint32(502), pbr.Mat.SpecularTex)
	assert.Equal(t, uint32(503), pbr.Mat.BrdfLutTex)
	assert.Equal(t, w.Pipe.ShadowMap(), pbr.Mat.ShadowMapTex)
	assert.Equal(t, float32(3), pbr.ModelMat.Data[3][2])

	for _, c := range w.Rec.InPass(PassOpaque) {
		if c.Kind == rendrec.CommandKind_SetClearColor {
			assert.Equal(t, [4]float32{0.8, 0.8, 1, 1}, c.ClearColor)
		}
	}
}

func TestSkyPassState(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	cmds := w.Rec.InPass(PassSky)
	kinds := make([]rendrec.CommandKind, 0, len(cmds))
	for _, c := range cmds {
		kinds = append(kinds, c.Kind)
	}

	assert.Equal(t, []rendrec.CommandKind{
		rendrec.CommandKind_BeginPass,
		rendrec.CommandKind_SetDepthFunc,
		rendrec.CommandKind_SetCullMode,
		rendrec.CommandKind_DrawCubemap,
		rendrec.CommandKind_SetDepthFunc,
		rendrec.CommandKind_SetCullMode,
		rendrec.CommandKind_EndPass,
	}, kinds)

	assert.Equal(t, renderer.DepthFunc_LEqual, cmds[1].DepthFunc)
	assert.Equal(t, renderer.CullMode_Front, cmds[2].CullMode)
	assert.Equal(t, uint32(500), cmds[3].Mat.CubemapTex)
	assert.Equal(t, renderer.DepthFunc_Less, cmds[4].DepthFunc)
	assert.Equal(t, renderer.CullMode_Back, cmds[5].CullMode)
}

func TestTransparencyDrawsFarthestFirst(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.Render(&w.Cam, 0.016, 1)

	draws := w.Rec.Draws(PassTransparency)
	require.Len(t, draws, 3)

	// Emitter ids are their storage buffer ids. Emitters 101 and 103 are both 5 away, so index order decides.
	assert.Equal(t, uint32(102), draws[0].TexId)
	assert.Equal(t, uint32(101), draws[1].TexId)
	assert.Equal(t, uint32(103), draws[2].TexId)

	var sawBlend, sawNoCull, sawNoDepthWrite bool
	for _, c := range w.Rec.InPass(PassTransparency) {

		if c.Kind.IsDraw() {
			break
		}

		sawBlend = sawBlend || (c.Kind == rendrec.CommandKind_SetBlend && c.Enabled)
		sawNoCull = sawNoCull || (c.Kind == rendrec.CommandKind_SetCullMode && c.CullMode == renderer.CullMode_None)
		sawNoDepthWrite = sawNoDepthWrite || (c.Kind == rendrec.CommandKind_SetDepthWrite && !c.Enabled)
	}

	assert.True(t, sawBlend)
	assert.True(t, sawNoCull)
	assert.True(t, sawNoDepthWrite)
}

func TestPostProcessComposite(t *testing.T) {

	w := newTestWorld(t, true)
	w.Pipe.SetRefractionScale(gglm.NewVec2(0.5, 2))
	w.Pipe.Render(&w.Cam, 0.016, 1)

	draws := w.Rec.Draws(PassPostProcess)
	require.Equal(t, []string{"postprocess", "glass"}, drawNames(draws))

	assert.Equal(t, uint32(0), draws[0].Target)
	assert.Equal(t, "quad", draws[0].Name)
	assert.Equal(t, w.Pipe.ColorTexture(), draws[0].Mat.AlbedoTex)
	assert.Equal(t, w.Pipe.ColorTexture(), draws[1].Mat.AlbedoTex)

	fd := w.Rec.OfKind(rendrec.CommandKind_SetFrameData)
	require.Len(t, fd, 1)
	assert.Equal(t, gglm.NewVec2(0.5, 2), fd[0].FrameData.RefractionScale)
	assert.Equal(t, gglm.NewVec2(1280, 720), fd[0].FrameData.ScreenSize)

	cmds := w.Rec.InPass(PassPostProcess)
	var depthOff, depthBackOn bool
	for _, c := range cmds {
		if c.Kind == rendrec.CommandKind_SetDepthTest {
			if !c.Enabled {
				depthOff = true
			} else if depthOff {
				depthBackOn = true
			}
		}
	}
	assert.True(t, depthOff)
	assert.True(t, depthBackOn)
}

func TestStateRestoredAfterFrame(t *testing.T) {

	for _, pp := range []bool{true, false} {

		w := newTestWorld(t, pp)
		w.Pipe.SetWireframe(true)
		w.Pipe.Render(&w.Cam, 0.016, 1)

		s := w.Rec.State
		assert.True(t, s.DepthTest)
		assert.True(t, s.DepthWrite)
		assert.False(t, s.Blend)
		assert.False(t, s.Wireframe)
		assert.Equal(t, renderer.CullMode_Back, s.CullMode)
		assert.Equal(t, renderer.DepthFunc_Less, s.DepthFunc)
	}
}

func TestPostResize(t *testing.T) {

	w := newTestWorld(t, true)

	w.Pipe.PostResize(0, 600)
	w.Pipe.PostResize(800, 0)
	assert.Empty(t, w.Rec.OfKind(rendrec.CommandKind_ResizeTarget))
	assert.Equal(t, int32(1280), w.Pipe.Width())

	w.Pipe.PostResize(640, 480)
	resizes := w.Rec.OfKind(rendrec.CommandKind_ResizeTarget)
	require.Len(t, resizes, 1)
	assert.Equal(t, w.Pipe.PostTarget.Id, resizes[0].Target)
	assert.Equal(t, uint32(640), w.Pipe.PostTarget.Width)
	assert.Equal(t, int32(480), w.Pipe.Height())

	w.Rec.Reset()
	w.Pipe.Render(&w.Cam, 0.016, 1)

	binds := w.Rec.OfKind(rendrec.CommandKind_BindTarget)
	require.Len(t, binds, 2)
	assert.Equal(t, uint32(640), binds[1].Width)
	assert.Equal(t, uint32(480), binds[1].Height)
}

func TestNoDirectionalLight(t *testing.T) {

	w := newTestWorld(t, true)
	w.Scene.DirLights = nil

	w.Pipe.Render(&w.Cam, 0.016, 1)
	w.Pipe.Render(&w.Cam, 0.016, 2)
	assert.Equal(t, gglm.NewMat4Diag(1), w.Pipe.LightSpaceMat())
}

type pos3 gglm.Vec3

func (p pos3) Pos() gglm.Vec3 {
	return gglm.Vec3(p)
}

func TestEmitterDrawOrder(t *testing.T) {

	cam := gglm.NewVec3(0, 0, 0)
	emitters := []pos3{
		pos3(gglm.NewVec3(0, 0, 5)),
		pos3(gglm.NewVec3(0, 10, 0)),
		pos3(gglm.NewVec3(-5, 0, 0)),
		pos3(gglm.NewVec3(1, 0, 0)),
		pos3(gglm.NewVec3(0, -5, 0)),
	}

	order := EmitterDrawOrder(&cam, emitters, nil)
	assert.Equal(t, []int{1, 0, 2, 4, 3}, order)

	// Reuses the given slice
	again := EmitterDrawOrder(&cam, emitters[:2], order)
	assert.Equal(t, []int{1, 0}, again)

	assert.Empty(t, EmitterDrawOrder(&cam, []pos3{}, nil))
}

func TestLightSpaceMatrixCentersLightAxis(t *testing.T) {

	cfg := DefaultConfig()
	dir := gglm.NewVec3(1, 1, -1)
	m := LightSpaceMatrix(&cfg, &dir)

	// A point straight along the light direction lands in the middle of the shadow map
	p := [3]float32{cfg.LightPos.Data[0] + 5, cfg.LightPos.Data[1] + 5, cfg.LightPos.Data[2] - 5}
	var clip [4]float32
	for row := 0; row < 4; row++ {
		clip[row] = m.Data[0][row]*p[0] + m.Data[1][row]*p[1] + m.Data[2][row]*p[2] + m.Data[3][row]
	}

	assert.InDelta(t, 0, clip[0], 1e-4)
	assert.InDelta(t, 0, clip[1], 1e-4)
	assert.InDelta(t, 1, clip[3], 1e-6)
}
