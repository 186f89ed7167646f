package camera

import (
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/stretchr/testify/assert"
)

func newTestCam() Camera {

	pos := gglm.NewVec3(-20, 9, 1)
	forward := gglm.NewVec3(0, 0, -1)
	up := gglm.NewVec3(0, 1, 0)
	return NewPerspective(&pos, &forward, &up, 0.1, 100, 45*gglm.Deg2Rad, 16.0/9.0)
}

func TestRotationOnlyViewDropsTranslation(t *testing.T) {

	cam := newTestCam()
	assert.NotEqual(t, float32(0), cam.ViewMat.Data[3][0])

	v := cam.RotationOnlyView()
	assert.Equal(t, float32(0), v.Data[3][0])
	assert.Equal(t, float32(0), v.Data[3][1])
	assert.Equal(t, float32(0), v.Data[3][2])
	assert.Equal(t, float32(1), v.Data[3][3])

	for col := 0; col < 3; col++ {
		assert.Equal(t, cam.ViewMat.Data[col], v.Data[col])
	}

	// Moving the camera does not change the rotation only view
	cam.Pos = gglm.NewVec3(100, -3, 7)
	cam.Update()
	assert.Equal(t, v.Data, cam.RotationOnlyView().Data)
}

func TestUpdateRotation(t *testing.T) {

	cam := newTestCam()

	cam.UpdateRotation(0, 0)
	assert.InDelta(t, 1, cam.Forward.X(), 1e-5)
	assert.InDelta(t, 0, cam.Forward.Y(), 1e-5)
	assert.InDelta(t, 0, cam.Forward.Z(), 1e-5)

	cam.UpdateRotation(0, -90*gglm.Deg2Rad)
	assert.InDelta(t, 0, cam.Forward.X(), 1e-5)
	assert.InDelta(t, -1, cam.Forward.Z(), 1e-5)

	right := cam.RightDir()
	assert.InDelta(t, 1, right.X(), 1e-5)
}

func TestViewMovesWorldOpposite(t *testing.T) {

	cam := newTestCam()

	// The camera position must map to the view space origin
	p := cam.Pos
	x := cam.ViewMat.Data[0][0]*p.X() + cam.ViewMat.Data[1][0]*p.Y() + cam.ViewMat.Data[2][0]*p.Z() + cam.ViewMat.Data[3][0]
	y := cam.ViewMat.Data[0][1]*p.X() + cam.ViewMat.Data[1][1]*p.Y() + cam.ViewMat.Data[2][1]*p.Z() + cam.ViewMat.Data[3][1]
	z := cam.ViewMat.Data[0][2]*p.X() + cam.ViewMat.Data[1][2]*p.Y() + cam.ViewMat.Data[2][2]*p.Z() + cam.ViewMat.Data[3][2]
	assert.InDelta(t, 0, x, 1e-4)
	assert.InDelta(t, 0, y, 1e-4)
	assert.InDelta(t, 0, z, 1e-4)
}
