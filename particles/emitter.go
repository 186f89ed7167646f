package particles

import (
	"math/rand"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assets"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/camera"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/renderer"
)

// ParticleDataBlockName is the name of the storage block particle shaders read particles from
const ParticleDataBlockName = "ParticleData"

// storageMirror mirrors particles into a shader storage buffer
type storageMirror struct {
	sb       *buffers.StorageBuffer
	capacity int
}

func (m *storageMirror) Map() []Particle {
	return buffers.MapAs[Particle](m.sb, m.capacity)
}

func (m *storageMirror) Unmap() {
	m.sb.Unmap()
}

// Emitter draws a Simulator's particles as camera facing quads. The vertex shader builds
// quad gl_VertexID/4 from the mirrored particle of the same index, so no vertex buffer is needed.
type Emitter struct {
	Sim *Simulator

	Ssbo       buffers.StorageBuffer
	Vao        buffers.VertexArray
	BufferSlot uint32

	Mat *materials.Material
	Tex assets.Texture
}

func (e *Emitter) Tick(deltaTime, currentTime float32) {
	e.Sim.Tick(deltaTime, currentTime)
}

// Pos is where the emitter spawns particles
func (e *Emitter) Pos() gglm.Vec3 {
	return e.Sim.Origin
}

func (e *Emitter) SetPos(pos gglm.Vec3) {
	e.Sim.Origin = pos
}

// Draw issues one draw of every live particle from the already mirrored data
func (e *Emitter) Draw(rend renderer.Render, cam *camera.Camera, currentTime float32) {

	right := cam.RightDir()
	up := gglm.Cross(&right, &cam.Forward)

	e.Mat.AlbedoTex = e.Tex.TexID
	e.Mat.StageUnifFloat32("currentTime", currentTime)
	e.Mat.StageUnifFloat32("lifetime", e.Sim.Lifetime())
	e.Mat.StageUnifVec3("camRight", &right)
	e.Mat.StageUnifVec3("camUp", up.Normalize())

	rend.DrawParticles(e.Mat, &e.Vao, &e.Ssbo, int32(e.Sim.LiveCount()*6))
}

// Delete frees GPU resources in reverse order of creation
func (e *Emitter) Delete() {
	e.Ssbo.Delete()
	e.Vao.Delete()
}

// NewEmitter creates the simulator along with its storage buffer at bufferSlot and a static index buffer of capacity quads.
// The material is told to read its particle block from bufferSlot.
func NewEmitter(capacity int, emissionRate, lifetime float32, bufferSlot uint32, mat *materials.Material, tex assets.Texture, origin gglm.Vec3, rng *rand.Rand) *Emitter {

	e := &Emitter{
		BufferSlot: bufferSlot,
		Mat:        mat,
		Tex:        tex,
	}

	e.Vao = buffers.NewVertexArray()
	ibo := buffers.NewIndexBuffer()
	ibo.SetData(buffers.QuadIndices(capacity))
	e.Vao.SetIndexBuffer(ibo)
	e.Vao.UnBind()

	e.Ssbo = buffers.NewStorageBuffer(capacity*ParticleSize, buffers.BufUsage_Dynamic_Draw)
	e.Ssbo.SetBindPoint(bufferSlot)
	mat.SetShaderStorageBlockBindingPoint(ParticleDataBlockName, bufferSlot)

	e.Sim = NewSimulator(capacity, emissionRate, lifetime, origin, &storageMirror{sb: &e.Ssbo, capacity: capacity}, rng)
	return e
}
