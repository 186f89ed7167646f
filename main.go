package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"strings"

	imgui "github.com/AllenDang/cimgui-go"
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/camera"
	"github.com/bloeys/nmage-pbr/engine"
	"github.com/bloeys/nmage-pbr/ibl"
	"github.com/bloeys/nmage-pbr/input"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/particles"
	"github.com/bloeys/nmage-pbr/pipeline"
	"github.com/bloeys/nmage-pbr/renderer"
	"github.com/bloeys/nmage-pbr/renderer/rend3dgl"
	"github.com/bloeys/nmage-pbr/scene"
	"github.com/bloeys/nmage-pbr/timing"
	nmageimgui "github.com/bloeys/nmage-pbr/ui/imgui"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	WINDOW_WIDTH  = 1280
	WINDOW_HEIGHT = 720

	PROFILE_CPU = false

	SHADERS_DIR  = "./res/shaders/"
	TEXTURES_DIR = "./res/textures/"

	// An optional extra model shown next to the sphere columns. Skipped if missing.
	EXTRA_MODEL_PATH = "./res/models/extra.fbx"

	POINT_LIGHT_COUNT = 9

	camNear         float32 = 0.1
	camFar          float32 = 100
	camFovDeg       float32 = 45
	camSensitivity  float32 = 0.2
	camMinMoveSpeed float32 = 0.1
	camMaxMoveSpeed float32 = 10
)

// Each texture set is used by one phong and one pbr sphere
var textureSets = [...]struct {
	Name   string
	Folder string
	Prefix string
}{
	{Name: "Bronze", Folder: "Bronze", Prefix: "bronze"},
	{Name: "Cobble", Folder: "Cobblestone", Prefix: "cobblestone"},
	{Name: "Floor", Folder: "Floor", Prefix: "floor"},
	{Name: "Paint", Folder: "Paint", Prefix: "paint"},
	{Name: "Rough", Folder: "Rough", Prefix: "rough"},
	{Name: "Scratched", Folder: "Scratched", Prefix: "scratched"},
	{Name: "Wood", Folder: "Wood", Prefix: "wood"},
}

var skyFolders = [...]string{"BlueClouds", "PinkClouds"}

type Game struct {
	Win       *engine.Window
	WinWidth  int32
	WinHeight int32

	Rend     *rend3dgl.Rend3DGL
	UI       *nmageimgui.Overlay
	Scene    *scene.Scene
	Pipeline *pipeline.Pipeline
	Baker    *ibl.Baker

	Cam          camera.Camera
	camYaw       float32
	camPitch     float32
	camMoveSpeed float32

	refractionScale gglm.Vec2
}

func main() {

	err := engine.Init()
	if err != nil {
		logging.ErrLog.Fatalln("Failed to init nMage. Err:", err)
	}

	window, err := engine.CreateOpenGLWindowCentered("nMage PBR", WINDOW_WIDTH, WINDOW_HEIGHT, engine.WindowFlags_RESIZABLE|engine.WindowFlags_ALLOW_HIGHDPI)
	if err != nil {
		logging.ErrLog.Fatalln("Failed to create window. Err: ", err)
	}
	defer window.Destroy()

	engine.SetMSAA(true)
	engine.SetVSync(true)
	engine.SetSrgbFramebuffer(false)

	ui, err := nmageimgui.NewOverlay(SHADERS_DIR + "imgui.glsl")
	if err != nil {
		logging.ErrLog.Fatalln("Failed to create imgui overlay. Err: ", err)
	}

	game := &Game{
		Win:          window,
		Rend:         rend3dgl.NewRend3DGL(),
		UI:           ui,
		camMoveSpeed: 5,
	}
	window.EventCallbacks = append(window.EventCallbacks, game.handleWindowEvents)

	if PROFILE_CPU {

		pf, err := os.Create("cpu.pprof")
		if err == nil {
			defer pf.Close()
			pprof.StartCPUProfile(pf)
			defer pprof.StopCPUProfile()
		} else {
			logging.ErrLog.Printf("Creating cpu.pprof file failed. CPU profiling will not run. Err=%v\n", err)
		}
	}

	engine.Run(game, window, ui)
}

func (g *Game) handleWindowEvents(e sdl.Event) {

	switch e := e.(type) {
	case *sdl.WindowEvent:

		if e.Event != sdl.WINDOWEVENT_SIZE_CHANGED {
			return
		}

		_, _, fbWidth, fbHeight := g.Win.Size()
		g.WinWidth, g.WinHeight = fbWidth, fbHeight
		if g.Pipeline == nil || fbWidth <= 0 || fbHeight <= 0 {
			return
		}

		g.Pipeline.PostResize(fbWidth, fbHeight)
		g.Cam.AspectRatio = float32(fbWidth) / float32(fbHeight)
		g.Cam.Update()
	}
}

func mustLoadMaterial(name, shaderFile string, settings materials.MaterialSettings) *materials.Material {

	mat, err := materials.NewMaterial(name, SHADERS_DIR+shaderFile, settings)
	if err != nil {
		logging.ErrLog.Panicln("Failed to create material. Err:", err)
	}

	return &mat
}

// loadTexture falls back to fallback (a default texture) when the file can't be loaded
func (g *Game) loadTexture(path string, isData bool, fallback assets.Texture) uint32 {

	tex, err := assets.LoadTexture(path, &assets.TextureLoadOptions{GenMipMaps: true, NoSrgba: isData})
	if err != nil {
		logging.ErrLog.Printf("Failed to load texture. Using default instead. Err: %v\n", err)
		return fallback.TexID
	}

	g.Scene.AddTexture(tex)
	return tex.TexID
}

func (g *Game) Init() {

	_, _, fbWidth, fbHeight := g.Win.Size()
	g.WinWidth, g.WinHeight = fbWidth, fbHeight

	rng := rand.New(rand.NewSource(int64(sdl.GetPerformanceCounter())))
	sc := &scene.Scene{}
	g.Scene = sc

	// Meshes
	sphere := meshes.NewSphere("Sphere", 1, 36, 18)
	cube := meshes.NewCube("Cube")
	quad := meshes.NewScreenQuad("Screen Quad")
	sphereHandle := sc.AddMesh(&sphere)
	sc.AddMesh(&cube)
	sc.AddMesh(&quad)

	// Materials used by the frame passes and the bakes
	depthMat := mustLoadMaterial("Depth", "depth.glsl", materials.MaterialSettings_HasModelMtx)
	lightMat := mustLoadMaterial("Light", "light.glsl", materials.MaterialSettings_HasModelMtx)
	postMat := mustLoadMaterial("Post Process", "postprocess.glsl", materials.MaterialSettings_None)
	skyMat := mustLoadMaterial("Sky", "sky.glsl", materials.MaterialSettings_None)
	particleMat := mustLoadMaterial("Particle", "particle.glsl", materials.MaterialSettings_None)
	bakeMats := ibl.BakeMaterials{
		Irradiance: mustLoadMaterial("Irradiance", "irradiance.glsl", materials.MaterialSettings_None),
		Specular:   mustLoadMaterial("Specular", "specular.glsl", materials.MaterialSettings_None),
		Brdf:       mustLoadMaterial("BRDF", "brdf.glsl", materials.MaterialSettings_None),
	}

	for _, m := range []*materials.Material{depthMat, lightMat, postMat, skyMat, particleMat, bakeMats.Irradiance, bakeMats.Specular, bakeMats.Brdf} {
		sc.AddMaterial(m)
	}

	// Sphere columns, phong at z=0 and pbr at z=3
	for i, set := range textureSets {

		base := TEXTURES_DIR + set.Folder + "/" + set.Prefix
		albedo := g.loadTexture(base+"_albedo.png", false, assets.DefaultAlbedoTex)
		normal := g.loadTexture(base+"_normals.png", true, assets.DefaultNormalTex)
		metal := g.loadTexture(base+"_metal.png", true, assets.DefaultMetallicTex)
		rough := g.loadTexture(base+"_roughness.png", true, assets.DefaultRoughnessTex)

		phong := mustLoadMaterial(set.Name, "phong.glsl", materials.MaterialSettings_HasModelMtx)
		pbr := mustLoadMaterial(set.Name+"PBR", "pbr.glsl", materials.MaterialSettings_HasModelMtx|materials.MaterialSettings_PBR)
		for _, m := range []*materials.Material{phong, pbr} {
			m.AlbedoTex = albedo
			m.NormalTex = normal
			m.MetallicTex = metal
			m.RoughnessTex = rough
		}

		y := float32(i) * 3
		sc.AddEntity(set.Name+"Sphere", sphereHandle, sc.AddMaterial(phong), gglm.NewVec3(0, y, 0))
		sc.AddEntity(set.Name+"SpherePBR", sphereHandle, sc.AddMaterial(pbr), gglm.NewVec3(0, y, 3))
	}

	glass := mustLoadMaterial("Glass", "refractive.glsl", materials.MaterialSettings_HasModelMtx|materials.MaterialSettings_Refractive)
	glass.NormalTex = g.loadTexture(TEXTURES_DIR+"glass_normal.png", true, assets.DefaultNormalTex)
	sc.AddEntity("GlassSphere", sphereHandle, sc.AddMaterial(glass), gglm.NewVec3(0, 21, 1.5))

	floor := sc.AddEntity("FloorWoodSphere", sphereHandle, sc.Entity(sc.EntityByName("WoodSphere")).Mat, gglm.NewVec3(0, 10, -3))
	sc.EntityTransform(floor).Scale = gglm.NewVec3(25, 25, 1)

	sc.ParentEntity(sc.EntityByName("CobbleSphere"), sc.EntityByName("BronzeSphere"))
	g.loadExtraModel(sc)

	// Lights
	sc.AddDirLight(renderer.DirLight{
		Dir:       gglm.NewVec3(1, 1, -1),
		Color:     gglm.NewVec3(1, 1, 1),
		Intensity: 1,
	})
	sc.AddRandomPointLights(rng, POINT_LIGHT_COUNT)

	// Particles
	dirt := g.loadTexture(TEXTURES_DIR+"Particles/dirt.png", false, assets.DefaultAlbedoTex)
	sc.AddEmitter(particles.NewEmitter(50, 1, 4, 0, particleMat, assets.Texture{TexID: dirt}, gglm.NewVec3(0, 0, 6), rng))

	// Skies, each baked once here
	g.Baker = ibl.NewBaker(g.Rend, &cube, &quad, bakeMats, ibl.DefaultConfig())
	for _, folder := range skyFolders {

		dir := TEXTURES_DIR + "Skyboxes/" + folder + "/"
		faces := [6]string{dir + "right.png", dir + "left.png", dir + "up.png", dir + "down.png", dir + "front.png", dir + "back.png"}

		sky, err := ibl.NewSky(folder, faces, skyMat, g.Baker)
		if err != nil {
			logging.ErrLog.Printf("Failed to load sky '%s'. Err: %v\n", folder, err)
			continue
		}

		sc.AddSky(sky)
	}

	sc.Animate = animateScene

	// Camera looks down +X at the sphere columns
	camPos := gglm.NewVec3(-20, 9, 1)
	camForward := gglm.NewVec3(1, 0, 0)
	worldUp := gglm.NewVec3(0, 1, 0)
	g.Cam = camera.NewPerspective(&camPos, &camForward, &worldUp, camNear, camFar, camFovDeg*gglm.Deg2Rad, float32(fbWidth)/float32(fbHeight))

	// Pipeline
	res := pipeline.Resources{
		DepthMat:       depthMat,
		LightGizmoMat:  lightMat,
		PostProcessMat: postMat,
		GizmoMesh:      &sphere,
		ScreenQuad:     &quad,
	}

	g.Pipeline = pipeline.New(g.Rend, sc, res, fbWidth, fbHeight, pipeline.DefaultConfig())
	g.Pipeline.Overlay = g.UI
	g.Pipeline.Swap = g.Win.SDLWin.GLSwap
	g.refractionScale = g.Pipeline.RefractionScale()

	g.UI.Build = g.showDebugWindow
}

func (g *Game) loadExtraModel(sc *scene.Scene) {

	if _, err := os.Stat(EXTRA_MODEL_PATH); err != nil {
		return
	}

	mesh, err := meshes.NewMesh("Extra Model", EXTRA_MODEL_PATH, 0)
	if err != nil {
		logging.ErrLog.Printf("Failed to load extra model. Err: %v\n", err)
		return
	}

	mat := sc.Entity(sc.EntityByName("PaintSpherePBR")).Mat
	sc.AddEntity("ExtraModel", sc.AddMesh(&mesh), mat, gglm.NewVec3(0, 0, 8))
}

// animateScene swings the bronze sphere (and its cobble child) along x while spinning it
func animateScene(s *scene.Scene, deltaTime, totalTime float32) {

	bronze := s.EntityTransform(s.EntityByName("BronzeSphere"))
	bronze.Pos = gglm.NewVec3(gglm.Sin32(totalTime)*2, 0, 0)

	spin := gglm.NewVec3(0, 0, 20*deltaTime)
	s.Transforms.Rotate(s.Entity(s.EntityByName("BronzeSphere")).Transform, &spin)
}

func (g *Game) Update() {

	if input.IsQuitClicked() || input.KeyClicked(sdl.K_ESCAPE) {
		engine.Quit()
		return
	}

	if input.KeyClicked(sdl.K_c) {
		g.Pipeline.SetPostProcessEnabled(!g.Pipeline.GetPostProcessEnabled())
	}

	if input.KeyClicked(sdl.K_x) {
		g.Pipeline.SetWireframe(!g.Pipeline.Wireframe())
	}

	if input.KeyClicked(sdl.K_LEFT) {
		g.Scene.SetActiveSky(g.Scene.ActiveSkyIndex() - 1)
	} else if input.KeyClicked(sdl.K_RIGHT) {
		g.Scene.SetActiveSky(g.Scene.ActiveSkyIndex() + 1)
	}

	g.updateCameraLookAround()
	g.updateCameraPos()

	g.Scene.Update(timing.DT(), timing.ElapsedTime())
}

func (g *Game) updateCameraLookAround() {

	isLooking := input.MouseDown(sdl.BUTTON_RIGHT)
	if isLooking != sdl.GetRelativeMouseMode() {
		sdl.SetRelativeMouseMode(isLooking)
	}

	mouseX, mouseY := input.GetMouseMotion()
	if !isLooking || (mouseX == 0 && mouseY == 0) {
		return
	}

	g.camYaw += float32(mouseX) * camSensitivity * gglm.Deg2Rad
	g.camPitch += float32(-mouseY) * camSensitivity * gglm.Deg2Rad

	var maxPitch float32 = 89 * gglm.Deg2Rad
	if g.camPitch > maxPitch {
		g.camPitch = maxPitch
	} else if g.camPitch < -maxPitch {
		g.camPitch = -maxPitch
	}

	g.Cam.UpdateRotation(g.camPitch, g.camYaw)
}

func (g *Game) updateCameraPos() {

	wheel := input.GetMouseWheelYNorm()
	if wheel != 0 {
		g.camMoveSpeed = min(max(g.camMoveSpeed+float32(wheel), camMinMoveSpeed), camMaxMoveSpeed)
	}

	step := g.camMoveSpeed * timing.DT()
	right := g.Cam.RightDir()
	moved := false

	move := func(dir *gglm.Vec3, amount float32) {
		g.Cam.Pos.Add(dir.Clone().Scale(amount))
		moved = true
	}

	if input.KeyDown(sdl.K_w) {
		move(&g.Cam.Forward, step)
	} else if input.KeyDown(sdl.K_s) {
		move(&g.Cam.Forward, -step)
	}

	if input.KeyDown(sdl.K_d) {
		move(&right, step)
	} else if input.KeyDown(sdl.K_a) {
		move(&right, -step)
	}

	if input.KeyDown(sdl.K_SPACE) {
		move(&g.Cam.WorldUp, step)
	} else if input.KeyDown(sdl.K_LCTRL) {
		move(&g.Cam.WorldUp, -step)
	}

	if moved {
		g.Cam.Update()
	}
}

func (g *Game) showDebugWindow() {

	imgui.Begin("Engine Info")

	imgui.PushStyleColorVec4(imgui.ColText, imgui.NewColor(1, 1, 0, 1).Value)
	imgui.LabelText("FPS", fmt.Sprint(timing.GetAvgFPS()))
	imgui.PopStyleColor()
	imgui.Text(fmt.Sprintf("Framebuffer: %dx%d", g.WinWidth, g.WinHeight))

	imgui.Spacing()
	imgui.Text(strings.Join([]string{
		"Controls:",
		"W/A/S/D/Space/LCtrl - Movement",
		"Right mouse drag - Look around",
		"Scroll - Adjust speed",
		"Left/Right - Cycle skies",
		"X - Toggle wireframe",
		"C - Toggle post-processing (refractive objects need it)",
	}, "\n"))

	imgui.Spacing()
	postProcess := g.Pipeline.GetPostProcessEnabled()
	if imgui.Checkbox("Post Processing", &postProcess) {
		g.Pipeline.SetPostProcessEnabled(postProcess)
	}

	wireframe := g.Pipeline.Wireframe()
	if imgui.Checkbox("Wireframe", &wireframe) {
		g.Pipeline.SetWireframe(wireframe)
	}

	if imgui.DragFloat2("Refraction Scale", &g.refractionScale.Data) {
		g.Pipeline.SetRefractionScale(g.refractionScale)
	}

	if sky := g.Scene.ActiveSky(); sky != nil {
		imgui.Text("Sky: " + sky.Name)
	}

	imgui.End()

	imgui.Begin("Entities")
	for i := range g.Scene.Entities {

		e := &g.Scene.Entities[i]
		if !imgui.TreeNodeExStrV(e.Name, imgui.TreeNodeFlagsSpanAvailWidth) {
			continue
		}

		t := g.Scene.Transforms.Get(e.Transform)
		imgui.DragFloat3("Pos", &t.Pos.Data)
		imgui.DragFloat3("Rotation", &t.RotDeg.Data)
		imgui.DragFloat3("Scale", &t.Scale.Data)
		imgui.TreePop()
	}
	imgui.End()
}

func (g *Game) Render() {
	g.Pipeline.Render(&g.Cam, timing.DT(), timing.ElapsedTime())
}

func (g *Game) FrameEnd() {
}

func (g *Game) DeInit() {
	g.Pipeline.Delete()
	g.Baker.Delete()
	g.Scene.Delete()
	g.UI.Delete()
	g.Rend.Delete()
}
