package materials

import (
	"fmt"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/bloeys/nmage-pbr/shaders"
	"github.com/go-gl/gl/v4.6-core/gl"
)

var (
	lastMatId uint32
)

type TextureSlot uint32

const (
	TextureSlot_Albedo     TextureSlot = 0
	TextureSlot_Normal     TextureSlot = 1
	TextureSlot_Roughness  TextureSlot = 2
	TextureSlot_Metallic   TextureSlot = 3
	TextureSlot_Irradiance TextureSlot = 4
	TextureSlot_Specular   TextureSlot = 5
	TextureSlot_BrdfLut    TextureSlot = 6
	TextureSlot_ShadowMap  TextureSlot = 7
	TextureSlot_Cubemap    TextureSlot = 10
)

// NonPbrShininess is the specular exponent given to every phong material
const NonPbrShininess float32 = 16

type MaterialSettings uint64

const (
	MaterialSettings_None        MaterialSettings = iota
	MaterialSettings_HasModelMtx MaterialSettings = 1 << (iota - 1)
	MaterialSettings_PBR
	// Refractive materials sample the rendered scene and so are drawn during post processing
	MaterialSettings_Refractive
)

func (ms *MaterialSettings) Set(flags MaterialSettings) {
	*ms |= flags
}

func (ms *MaterialSettings) Remove(flags MaterialSettings) {
	*ms &= ^flags
}

func (ms *MaterialSettings) Has(flags MaterialSettings) bool {
	return *ms&flags == flags
}

type UniformType int32

const (
	UniformType_Unknown UniformType = iota
	UniformType_Int32
	UniformType_Float32
	UniformType_Vec2
	UniformType_Vec3
	UniformType_Mat4
)

// StagedUniform is a uniform value waiting to be sent to the GPU on the next draw using the material
type StagedUniform struct {
	Name string
	Type UniformType
	Int  int32
	// Data holds floats, vectors and matrices (column major)
	Data [16]float32
}

func (su *StagedUniform) Float32() float32 {
	return su.Data[0]
}

func (su *StagedUniform) Vec2() gglm.Vec2 {
	return gglm.Vec2{Data: [2]float32{su.Data[0], su.Data[1]}}
}

func (su *StagedUniform) Vec3() gglm.Vec3 {
	return gglm.Vec3{Data: [3]float32{su.Data[0], su.Data[1], su.Data[2]}}
}

func (su *StagedUniform) Mat4() gglm.Mat4 {

	m := gglm.Mat4{}
	for col := 0; col < 4; col++ {
		copy(m.Data[col][:], su.Data[col*4:col*4+4])
	}

	return m
}

// EnvironmentMaps are the per frame textures shared by every lit material
type EnvironmentMaps struct {
	IrradianceTex uint32
	SpecularTex   uint32
	BrdfLutTex    uint32
	ShadowMapTex  uint32
}

type Material struct {
	Id         uint32
	Name       string
	ShaderProg shaders.ShaderProgram
	Settings   MaterialSettings

	UnifLocs   map[string]int32
	AttribLocs map[string]int32

	AlbedoTex    uint32
	NormalTex    uint32
	RoughnessTex uint32
	MetallicTex  uint32

	// Shininess of specular highlights for non-pbr materials
	Shininess float32

	// Image based lighting, only bound for pbr materials
	IrradianceTex uint32
	SpecularTex   uint32
	BrdfLutTex    uint32

	ShadowMapTex uint32
	CubemapTex   uint32

	staged []StagedUniform
}

func (m *Material) IsPBR() bool {
	return m.Settings.Has(MaterialSettings_PBR)
}

func (m *Material) IsRefractive() bool {
	return m.Settings.Has(MaterialSettings_Refractive)
}

// PrepareEnvironment assigns the shadow map and, for pbr materials, the image based lighting maps of the active sky.
// Non-pbr materials get their shininess staged instead.
func (m *Material) PrepareEnvironment(env *EnvironmentMaps) {

	m.ShadowMapTex = env.ShadowMapTex

	if m.IsPBR() {
		m.IrradianceTex = env.IrradianceTex
		m.SpecularTex = env.SpecularTex
		m.BrdfLutTex = env.BrdfLutTex
		return
	}

	m.Shininess = NonPbrShininess
	m.StageUnifFloat32("shininess", m.Shininess)
}

func (m *Material) Bind() {

	m.ShaderProg.Bind()

	// Refractive materials get the rendered scene color as their albedo
	bindTex(TextureSlot_Albedo, gl.TEXTURE_2D, m.AlbedoTex)
	if !m.IsRefractive() {
		bindTex(TextureSlot_Roughness, gl.TEXTURE_2D, m.RoughnessTex)
	}

	bindTex(TextureSlot_Normal, gl.TEXTURE_2D, m.NormalTex)

	if m.IsPBR() {
		bindTex(TextureSlot_Metallic, gl.TEXTURE_2D, m.MetallicTex)
		bindTex(TextureSlot_Irradiance, gl.TEXTURE_CUBE_MAP, m.IrradianceTex)
		bindTex(TextureSlot_Specular, gl.TEXTURE_CUBE_MAP, m.SpecularTex)
		bindTex(TextureSlot_BrdfLut, gl.TEXTURE_2D, m.BrdfLutTex)
	}

	if m.ShadowMapTex != 0 {
		bindTex(TextureSlot_ShadowMap, gl.TEXTURE_2D, m.ShadowMapTex)
	}

	if m.CubemapTex != 0 {
		bindTex(TextureSlot_Cubemap, gl.TEXTURE_CUBE_MAP, m.CubemapTex)
	}
}

func bindTex(slot TextureSlot, target, texId uint32) {
	gl.ActiveTexture(uint32(gl.TEXTURE0 + slot))
	gl.BindTexture(target, texId)
}

func (m *Material) UnBind() {
	gl.UseProgram(0)
}

func (m *Material) SetUniformBlockBindingPoint(uniformBlockName string, bindPointIndex uint32) {

	nullStr := gl.Str(uniformBlockName + "\x00")
	index := gl.GetUniformBlockIndex(m.ShaderProg.Id, nullStr)
	assert.T(
		index != gl.INVALID_INDEX,
		"SetUniformBlockBindingPoint for material=%s (matId=%d; shaderId=%d) failed because the uniform block=%s wasn't found",
		m.Name,
		m.Id,
		m.ShaderProg.Id,
		uniformBlockName,
	)
	gl.UniformBlockBinding(m.ShaderProg.Id, index, bindPointIndex)
}

func (m *Material) SetShaderStorageBlockBindingPoint(storageBlockName string, bindPointIndex uint32) {

	nullStr := gl.Str(storageBlockName + "\x00")
	index := gl.GetProgramResourceIndex(m.ShaderProg.Id, gl.SHADER_STORAGE_BLOCK, nullStr)
	assert.T(
		index != gl.INVALID_INDEX,
		"SetShaderStorageBlockBindingPoint for material=%s (matId=%d; shaderId=%d) failed because the storage block=%s wasn't found",
		m.Name,
		m.Id,
		m.ShaderProg.Id,
		storageBlockName,
	)
	gl.ShaderStorageBlockBinding(m.ShaderProg.Id, index, bindPointIndex)
}

func (m *Material) GetAttribLoc(attribName string) int32 {

	loc, ok := m.AttribLocs[attribName]
	if ok {
		return loc
	}

	name := gl.Str(attribName + "\x00")
	loc = gl.GetAttribLocation(m.ShaderProg.Id, name)
	assert.T(loc != -1, "Attribute '"+attribName+"' doesn't exist on material "+m.Name)
	m.AttribLocs[attribName] = loc
	return loc
}

func (m *Material) GetUnifLoc(uniformName string) int32 {

	loc, ok := m.UnifLocs[uniformName]
	if ok {
		return loc
	}

	name := gl.Str(uniformName + "\x00")
	loc = gl.GetUniformLocation(m.ShaderProg.Id, name)

	// Drivers strip unused uniforms, so a missing one is only worth a warning
	if loc == -1 {
		logging.WarnLog.Printf("Uniform '%s' doesn't exist on material '%s'\n", uniformName, m.Name)
	}

	m.UnifLocs[uniformName] = loc
	return loc
}

func (m *Material) SetUnifInt32(uniformName string, val int32) {
	gl.ProgramUniform1i(m.ShaderProg.Id, m.GetUnifLoc(uniformName), val)
}

func (m *Material) SetUnifFloat32(uniformName string, val float32) {
	gl.ProgramUniform1f(m.ShaderProg.Id, m.GetUnifLoc(uniformName), val)
}

func (m *Material) SetUnifVec2(uniformName string, vec2 *gglm.Vec2) {
	gl.ProgramUniform2fv(m.ShaderProg.Id, m.GetUnifLoc(uniformName), 1, &vec2.Data[0])
}

func (m *Material) SetUnifVec3(uniformName string, vec3 *gglm.Vec3) {
	gl.ProgramUniform3fv(m.ShaderProg.Id, m.GetUnifLoc(uniformName), 1, &vec3.Data[0])
}

func (m *Material) SetUnifMat4(uniformName string, mat4 *gglm.Mat4) {
	gl.ProgramUniformMatrix4fv(m.ShaderProg.Id, m.GetUnifLoc(uniformName), 1, false, &mat4.Data[0][0])
}

// stage adds the uniform or overwrites a pending value of the same name
func (m *Material) stage(su StagedUniform) {

	for i := 0; i < len(m.staged); i++ {
		if m.staged[i].Name == su.Name {
			m.staged[i] = su
			return
		}
	}

	m.staged = append(m.staged, su)
}

func (m *Material) StageUnifInt32(uniformName string, val int32) {
	m.stage(StagedUniform{Name: uniformName, Type: UniformType_Int32, Int: val})
}

func (m *Material) StageUnifFloat32(uniformName string, val float32) {
	su := StagedUniform{Name: uniformName, Type: UniformType_Float32}
	su.Data[0] = val
	m.stage(su)
}

func (m *Material) StageUnifVec2(uniformName string, vec2 *gglm.Vec2) {
	su := StagedUniform{Name: uniformName, Type: UniformType_Vec2}
	copy(su.Data[:], vec2.Data[:])
	m.stage(su)
}

func (m *Material) StageUnifVec3(uniformName string, vec3 *gglm.Vec3) {
	su := StagedUniform{Name: uniformName, Type: UniformType_Vec3}
	copy(su.Data[:], vec3.Data[:])
	m.stage(su)
}

func (m *Material) StageUnifMat4(uniformName string, mat4 *gglm.Mat4) {

	su := StagedUniform{Name: uniformName, Type: UniformType_Mat4}
	for col := 0; col < 4; col++ {
		copy(su.Data[col*4:col*4+4], mat4.Data[col][:])
	}

	m.stage(su)
}

// TakeStagedUniforms returns the pending uniforms and clears them without touching the GPU
func (m *Material) TakeStagedUniforms() []StagedUniform {
	out := m.staged
	m.staged = nil
	return out
}

// FlushStagedUniforms sends the pending uniforms to the shader program
func (m *Material) FlushStagedUniforms() {

	for i := 0; i < len(m.staged); i++ {

		su := &m.staged[i]
		loc := m.GetUnifLoc(su.Name)
		switch su.Type {
		case UniformType_Int32:
			gl.ProgramUniform1i(m.ShaderProg.Id, loc, su.Int)
		case UniformType_Float32:
			gl.ProgramUniform1f(m.ShaderProg.Id, loc, su.Data[0])
		case UniformType_Vec2:
			gl.ProgramUniform2fv(m.ShaderProg.Id, loc, 1, &su.Data[0])
		case UniformType_Vec3:
			gl.ProgramUniform3fv(m.ShaderProg.Id, loc, 1, &su.Data[0])
		case UniformType_Mat4:
			gl.ProgramUniformMatrix4fv(m.ShaderProg.Id, loc, 1, false, &su.Data[0])
		default:
			assert.T(false, "Unknown staged uniform type '%d' for uniform '%s'", su.Type, su.Name)
		}
	}

	m.staged = m.staged[:0]
}

func (m *Material) Delete() {
	m.ShaderProg.Delete()
}

func getNewMatId() uint32 {
	lastMatId++
	return lastMatId
}

// NewMaterialNoGL creates a material without a shader program, with its textures set to the defaults
func NewMaterialNoGL(matName string, settings MaterialSettings) Material {

	return Material{
		Id:         getNewMatId(),
		Name:       matName,
		Settings:   settings,
		UnifLocs:   make(map[string]int32),
		AttribLocs: make(map[string]int32),

		AlbedoTex:    assets.DefaultAlbedoTex.TexID,
		NormalTex:    assets.DefaultNormalTex.TexID,
		RoughnessTex: assets.DefaultRoughnessTex.TexID,
		MetallicTex:  assets.DefaultMetallicTex.TexID,
	}
}

func NewMaterial(matName, shaderPath string, settings MaterialSettings) (Material, error) {

	shdrProg, err := shaders.LoadAndCompileCombinedShader(shaderPath)
	if err != nil {
		return Material{}, fmt.Errorf("failed to create new material '%s': %w", matName, err)
	}

	mat := NewMaterialNoGL(matName, settings)
	mat.ShaderProg = shdrProg
	mat.setSamplerSlots()
	return mat, nil
}

func NewMaterialSrc(matName string, shaderSrc []byte, settings MaterialSettings) (Material, error) {

	shdrProg, err := shaders.LoadAndCompileCombinedShaderSrc(shaderSrc)
	if err != nil {
		return Material{}, fmt.Errorf("failed to create new material '%s': %w", matName, err)
	}

	mat := NewMaterialNoGL(matName, settings)
	mat.ShaderProg = shdrProg
	mat.setSamplerSlots()
	return mat, nil
}

// setSamplerSlots points every sampler the shader declares at its fixed texture slot
func (m *Material) setSamplerSlots() {

	samplers := [...]struct {
		Name string
		Slot TextureSlot
	}{
		{Name: "albedoMap", Slot: TextureSlot_Albedo},
		{Name: "normalMap", Slot: TextureSlot_Normal},
		{Name: "roughnessMap", Slot: TextureSlot_Roughness},
		{Name: "metallicMap", Slot: TextureSlot_Metallic},
		{Name: "irradianceMap", Slot: TextureSlot_Irradiance},
		{Name: "specularMap", Slot: TextureSlot_Specular},
		{Name: "brdfLut", Slot: TextureSlot_BrdfLut},
		{Name: "shadowMap", Slot: TextureSlot_ShadowMap},
		{Name: "cubemap", Slot: TextureSlot_Cubemap},
	}

	for i := 0; i < len(samplers); i++ {

		name := gl.Str(samplers[i].Name + "\x00")
		loc := gl.GetUniformLocation(m.ShaderProg.Id, name)
		if loc == -1 {
			continue
		}

		m.UnifLocs[samplers[i].Name] = loc
		gl.ProgramUniform1i(m.ShaderProg.Id, loc, int32(samplers[i].Slot))
	}
}
