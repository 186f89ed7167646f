// Package scene holds everything a frame draws. Items are added once at load time and referred
// to by index handles afterwards, so nothing is looked up by name while rendering.
package scene

import (
	"math/rand"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/ibl"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/particles"
	"github.com/bloeys/nmage-pbr/renderer"
)

type MeshHandle int32
type MaterialHandle int32
type TextureHandle int32
type EntityHandle int32
type EmitterHandle int32
type SkyHandle int32

// Entity is a mesh drawn with a material at a transform
type Entity struct {
	Name      string
	Mesh      MeshHandle
	Mat       MaterialHandle
	Transform TransformHandle
}

type Scene struct {
	Meshes     []*meshes.Mesh
	Materials  []*materials.Material
	Textures   []assets.Texture
	Entities   []Entity
	Emitters   []*particles.Emitter
	Skies      []*ibl.Sky
	Transforms Transforms

	DirLights   []renderer.DirLight
	PointLights []renderer.PointLight

	// Animate, if set, runs at the end of every Update with the total time spent in Update
	Animate func(s *Scene, deltaTime, totalTime float32)

	activeSky int
	totalTime float32
}

// AddMesh stores the pointer, so meshes shared with skies or bakers are deleted once, by the scene
func (s *Scene) AddMesh(m *meshes.Mesh) MeshHandle {
	s.Meshes = append(s.Meshes, m)
	return MeshHandle(len(s.Meshes) - 1)
}

func (s *Scene) Mesh(h MeshHandle) *meshes.Mesh {
	assert.T(h >= 0 && int(h) < len(s.Meshes), "Mesh handle %d out of range", h)
	return s.Meshes[h]
}

func (s *Scene) AddMaterial(m *materials.Material) MaterialHandle {
	s.Materials = append(s.Materials, m)
	return MaterialHandle(len(s.Materials) - 1)
}

func (s *Scene) Material(h MaterialHandle) *materials.Material {
	assert.T(h >= 0 && int(h) < len(s.Materials), "Material handle %d out of range", h)
	return s.Materials[h]
}

func (s *Scene) AddTexture(t assets.Texture) TextureHandle {
	s.Textures = append(s.Textures, t)
	return TextureHandle(len(s.Textures) - 1)
}

func (s *Scene) Texture(h TextureHandle) *assets.Texture {
	assert.T(h >= 0 && int(h) < len(s.Textures), "Texture handle %d out of range", h)
	return &s.Textures[h]
}

// AddEntity creates an entity with its own transform at pos
func (s *Scene) AddEntity(name string, mesh MeshHandle, mat MaterialHandle, pos gglm.Vec3) EntityHandle {

	s.Entities = append(s.Entities, Entity{
		Name:      name,
		Mesh:      mesh,
		Mat:       mat,
		Transform: s.Transforms.New(pos),
	})

	return EntityHandle(len(s.Entities) - 1)
}

func (s *Scene) Entity(h EntityHandle) *Entity {
	assert.T(h >= 0 && int(h) < len(s.Entities), "Entity handle %d out of range", h)
	return &s.Entities[h]
}

func (s *Scene) EntityTransform(h EntityHandle) *Transform {
	return s.Transforms.Get(s.Entity(h).Transform)
}

// EntityByName is meant for setup code. Returns -1 if no entity has the name.
func (s *Scene) EntityByName(name string) EntityHandle {

	for i := 0; i < len(s.Entities); i++ {
		if s.Entities[i].Name == name {
			return EntityHandle(i)
		}
	}

	return -1
}

// ParentEntity makes child's transform relative to parent's
func (s *Scene) ParentEntity(child, parent EntityHandle) bool {
	return s.Transforms.SetParent(s.Entity(child).Transform, s.Entity(parent).Transform)
}

func (s *Scene) AddEmitter(e *particles.Emitter) EmitterHandle {
	s.Emitters = append(s.Emitters, e)
	return EmitterHandle(len(s.Emitters) - 1)
}

func (s *Scene) AddDirLight(l renderer.DirLight) {
	s.DirLights = append(s.DirLights, l)
}

func (s *Scene) AddPointLight(l renderer.PointLight) {
	s.PointLights = append(s.PointLights, l)
}

// AddRandomPointLights scatters count randomly colored lights of range 4 around the demo sphere columns
func (s *Scene) AddRandomPointLights(rng *rand.Rand, count int) {

	randRange := func(lo, hi float32) float32 {
		return lo + rng.Float32()*(hi-lo)
	}

	for i := 0; i < count; i++ {
		s.AddPointLight(renderer.PointLight{
			Pos:       gglm.NewVec3(randRange(-5, 5), randRange(0, 18), randRange(-5, 5)),
			Color:     gglm.NewVec3(randRange(0, 1), randRange(0, 1), randRange(0, 1)),
			Intensity: 1,
			Range:     4,
		})
	}
}

func (s *Scene) AddSky(sky *ibl.Sky) SkyHandle {
	s.Skies = append(s.Skies, sky)
	return SkyHandle(len(s.Skies) - 1)
}

// ActiveSky returns nil when the scene has no skies
func (s *Scene) ActiveSky() *ibl.Sky {

	if len(s.Skies) == 0 {
		return nil
	}

	return s.Skies[s.activeSky]
}

func (s *Scene) ActiveSkyIndex() int {
	return s.activeSky
}

// SetActiveSky wraps index around the sky count, so stepping past either end cycles
func (s *Scene) SetActiveSky(index int) {

	if len(s.Skies) == 0 {
		s.activeSky = 0
		return
	}

	index %= len(s.Skies)
	if index < 0 {
		index += len(s.Skies)
	}

	s.activeSky = index
}

func (s *Scene) TotalTime() float32 {
	return s.totalTime
}

// Update ticks every emitter, runs the scene animation and refreshes world matrices
func (s *Scene) Update(deltaTime, currentTime float32) {

	for i := 0; i < len(s.Emitters); i++ {
		s.Emitters[i].Tick(deltaTime, currentTime)
	}

	s.totalTime += deltaTime
	if s.Animate != nil {
		s.Animate(s, deltaTime, s.totalTime)
	}

	s.Transforms.UpdateWorld()
}

// Delete frees GPU resources in reverse order of how the demo creates them
func (s *Scene) Delete() {

	for i := len(s.Skies) - 1; i >= 0; i-- {
		s.Skies[i].Delete()
	}

	for i := len(s.Emitters) - 1; i >= 0; i-- {
		s.Emitters[i].Delete()
	}

	for i := len(s.Materials) - 1; i >= 0; i-- {
		s.Materials[i].Delete()
	}

	for i := len(s.Meshes) - 1; i >= 0; i-- {
		s.Meshes[i].Delete()
	}

	for i := len(s.Textures) - 1; i >= 0; i-- {
		s.Textures[i].Delete()
	}

	s.Skies = nil
	s.Emitters = nil
	s.Materials = nil
	s.Meshes = nil
	s.Textures = nil
}
