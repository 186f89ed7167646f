package scene

import (
	"math/rand"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/ibl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worldPos(t *Transform) []float32 {
	return []float32{t.World.Data[3][0], t.World.Data[3][1], t.World.Data[3][2]}
}

func TestTransformParenting(t *testing.T) {

	ts := Transforms{}
	parent := ts.New(gglm.NewVec3(2, 0, 0))
	child := ts.New(gglm.NewVec3(0, 3, 0))
	require.True(t, ts.SetParent(child, parent))

	ts.UpdateWorld()
	assert.InDeltaSlice(t, []float32{2, 0, 0}, worldPos(ts.Get(parent)), 1e-5)
	assert.InDeltaSlice(t, []float32{2, 3, 0}, worldPos(ts.Get(child)), 1e-5)

	ts.Get(parent).Scale = gglm.NewVec3(2, 2, 2)
	ts.UpdateWorld()
	assert.InDeltaSlice(t, []float32{2, 6, 0}, worldPos(ts.Get(child)), 1e-5)

	// A quarter turn around z takes the child's +y offset to -x
	ts.Get(parent).Scale = gglm.NewVec3(1, 1, 1)
	ts.Get(parent).RotDeg = gglm.NewVec3(0, 0, 90)
	ts.UpdateWorld()
	assert.InDeltaSlice(t, []float32{-1, 0, 0}, worldPos(ts.Get(child)), 1e-5)
}

func TestTransformParentCreatedAfterChild(t *testing.T) {

	ts := Transforms{}
	child := ts.New(gglm.NewVec3(1, 0, 0))
	parent := ts.New(gglm.NewVec3(0, 0, 5))
	require.True(t, ts.SetParent(child, parent))

	ts.UpdateWorld()
	assert.InDeltaSlice(t, []float32{1, 0, 5}, worldPos(ts.Get(child)), 1e-5)
}

func TestTransformCycleRefused(t *testing.T) {

	ts := Transforms{}
	a := ts.New(gglm.NewVec3(0, 0, 0))
	b := ts.New(gglm.NewVec3(0, 0, 0))
	c := ts.New(gglm.NewVec3(0, 0, 0))

	require.True(t, ts.SetParent(b, a))
	require.True(t, ts.SetParent(c, b))
	assert.False(t, ts.SetParent(a, c))
	assert.False(t, ts.SetParent(a, a))
	assert.Equal(t, NoParent, ts.Get(a).Parent)

	require.True(t, ts.SetParent(c, NoParent))
	assert.True(t, ts.SetParent(a, c))
}

func TestMoveAndRotateAccumulate(t *testing.T) {

	ts := Transforms{}
	h := ts.New(gglm.NewVec3(1, 1, 1))

	d := gglm.NewVec3(0, 2, 0)
	ts.Move(h, &d)
	ts.Move(h, &d)
	assert.Equal(t, gglm.NewVec3(1, 5, 1), ts.Get(h).Pos)

	r := gglm.NewVec3(0, 0, 10)
	ts.Rotate(h, &r)
	ts.Rotate(h, &r)
	assert.InDelta(t, 20, ts.Get(h).RotDeg.Data[2], 1e-5)
}

func TestActiveSkyWraps(t *testing.T) {

	s := Scene{}
	assert.Nil(t, s.ActiveSky())

	s.AddSky(&ibl.Sky{Name: "blue"})
	s.AddSky(&ibl.Sky{Name: "pink"})
	s.AddSky(&ibl.Sky{Name: "night"})
	assert.Equal(t, "blue", s.ActiveSky().Name)

	s.SetActiveSky(s.ActiveSkyIndex() - 1)
	assert.Equal(t, 2, s.ActiveSkyIndex())
	assert.Equal(t, "night", s.ActiveSky().Name)

	s.SetActiveSky(s.ActiveSkyIndex() + 1)
	assert.Equal(t, 0, s.ActiveSkyIndex())

	s.SetActiveSky(7)
	assert.Equal(t, 1, s.ActiveSkyIndex())
}

func TestRandomPointLights(t *testing.T) {

	s := Scene{}
	s.AddRandomPointLights(rand.New(rand.NewSource(3)), 9)
	require.Len(t, s.PointLights, 9)

	for _, pl := range s.PointLights {

		assert.GreaterOrEqual(t, pl.Pos.Data[0], float32(-5))
		assert.Less(t, pl.Pos.Data[0], float32(5))
		assert.GreaterOrEqual(t, pl.Pos.Data[1], float32(0))
		assert.Less(t, pl.Pos.Data[1], float32(18))
		assert.GreaterOrEqual(t, pl.Pos.Data[2], float32(-5))
		assert.Less(t, pl.Pos.Data[2], float32(5))

		for c := 0; c < 3; c++ {
			assert.GreaterOrEqual(t, pl.Color.Data[c], float32(0))
			assert.Less(t, pl.Color.Data[c], float32(1))
		}

		assert.Equal(t, float32(4), pl.Range)
		assert.Equal(t, float32(1), pl.Intensity)
	}
}

func TestUpdateAnimatesAndRefreshesWorld(t *testing.T) {

	s := Scene{}
	e := s.AddEntity("bronze", 0, 0, gglm.NewVec3(0, 0, 0))
	assert.Equal(t, e, s.EntityByName("bronze"))
	assert.Equal(t, EntityHandle(-1), s.EntityByName("missing"))

	calls := 0
	s.Animate = func(s *Scene, deltaTime, totalTime float32) {
		calls++
		s.EntityTransform(e).Pos = gglm.NewVec3(totalTime, 0, 0)
	}

	s.Update(0.25, 0.25)
	s.Update(0.25, 0.5)

	assert.Equal(t, 2, calls)
	assert.InDelta(t, 0.5, s.TotalTime(), 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, 0, 0}, worldPos(s.EntityTransform(e)), 1e-5)
}
