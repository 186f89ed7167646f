package particles

import (
	"math/rand"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
)

// Particle is the record shared with the GPU. Its layout matches this std430 struct:
//
//	struct Particle { vec4 startPos; float emitTime; float pad[3]; };
//
// where startPos.w is unused.
type Particle struct {
	StartPos [3]float32
	_        float32
	EmitTime float32
	_        [3]float32
}

// ParticleSize is the size in bytes of one Particle on the CPU and the GPU
const ParticleSize = 32

// Mirror is a device array of particles written by the simulator once per tick.
// Map returns at least capacity writable records and Unmap publishes them.
type Mirror interface {
	Map() []Particle
	Unmap()
}

// Simulator is a fixed capacity ring of particles. Live particles are [firstAlive, firstDead) modulo capacity,
// and since particles only die of age they always retire from the head of the ring.
type Simulator struct {
	particles []Particle

	lifetime           float32
	secondsPerParticle float32
	timeSinceLastEmit  float32

	firstAlive int
	firstDead  int
	liveCount  int

	// Origin is where particles spawn, before jitter
	Origin gglm.Vec3
	Rand   *rand.Rand

	mirror Mirror
}

func (s *Simulator) Capacity() int {
	return len(s.particles)
}

func (s *Simulator) LiveCount() int {
	return s.liveCount
}

func (s *Simulator) FirstAlive() int {
	return s.firstAlive
}

func (s *Simulator) FirstDead() int {
	return s.firstDead
}

func (s *Simulator) Lifetime() float32 {
	return s.lifetime
}

// Particle returns the record at ring index i, which is only meaningful for live indices
func (s *Simulator) Particle(i int) Particle {
	return s.particles[i]
}

// liveRuns returns the live range as up to two linear runs, oldest first. A run with end <= start is empty.
func (s *Simulator) liveRuns() (start1, end1, start2, end2 int) {

	if s.liveCount == 0 {
		return 0, 0, 0, 0
	}

	if s.firstAlive < s.firstDead {
		return s.firstAlive, s.firstDead, 0, 0
	}

	// Wrapped (or full, where firstAlive == firstDead)
	return s.firstAlive, len(s.particles), 0, s.firstDead
}

// Tick retires particles that reached their lifetime, emits new ones at the emission rate, then writes the live particles
// to the mirror oldest first starting at index zero. The mirror is always unmapped before Tick returns.
func (s *Simulator) Tick(deltaTime, currentTime float32) {

	s.retire(currentTime)

	s.timeSinceLastEmit += deltaTime
	for s.timeSinceLastEmit > s.secondsPerParticle {
		s.emit(currentTime)
		s.timeSinceLastEmit -= s.secondsPerParticle
	}

	s.writeMirror()
}

func (s *Simulator) retire(currentTime float32) {

	for s.liveCount > 0 {

		age := currentTime - s.particles[s.firstAlive].EmitTime
		if age < s.lifetime {
			break
		}

		s.firstAlive = (s.firstAlive + 1) % len(s.particles)
		s.liveCount--
	}
}

// emit spawns one particle at the tail, and does nothing if the ring is full
func (s *Simulator) emit(currentTime float32) {

	if s.liveCount == len(s.particles) {
		return
	}

	// One random offset on all axes, so particles spawn along the origin's diagonal
	jitter := s.Rand.Float32()

	p := &s.particles[s.firstDead]
	p.EmitTime = currentTime
	p.StartPos = [3]float32{s.Origin.X() + jitter, s.Origin.Y() + jitter, s.Origin.Z() + jitter}

	s.firstDead = (s.firstDead + 1) % len(s.particles)
	s.liveCount++
}

func (s *Simulator) writeMirror() {

	if s.mirror == nil {
		return
	}

	dst := s.mirror.Map()
	if dst == nil {
		// Mapping failure is logged by the mirror, the previous contents are kept
		return
	}
	defer s.mirror.Unmap()

	assert.T(len(dst) >= len(s.particles), "particle mirror has %d records but the simulator capacity is %d", len(dst), len(s.particles))

	start1, end1, start2, end2 := s.liveRuns()
	n := copy(dst, s.particles[start1:end1])
	copy(dst[n:], s.particles[start2:end2])
}

// NewSimulator creates an empty simulator. The mirror may be nil, in which case nothing is mirrored.
func NewSimulator(capacity int, emissionRate, lifetime float32, origin gglm.Vec3, mirror Mirror, rng *rand.Rand) *Simulator {

	assert.T(capacity > 0, "particle capacity must be positive, got %d", capacity)
	assert.T(emissionRate > 0, "particle emission rate must be positive, got %f", emissionRate)

	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	return &Simulator{
		particles:          make([]Particle, capacity),
		lifetime:           lifetime,
		secondsPerParticle: 1 / emissionRate,
		Origin:             origin,
		Rand:               rng,
		mirror:             mirror,
	}
}
