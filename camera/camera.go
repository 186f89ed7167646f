package camera

import (
	"github.com/bloeys/gglm/gglm"
)

type Type int32

const (
	Type_Unknown Type = iota
	Type_Perspective
	Type_Orthographic
)

type Camera struct {
	Type Type

	Pos     gglm.Vec3
	Forward gglm.Vec3
	WorldUp gglm.Vec3

	NearClip float32
	FarClip  float32

	// Perspective data
	FovRad      float32
	AspectRatio float32

	// Ortho data
	Left, Right, Top, Bottom float32

	ViewMat gglm.Mat4
	ProjMat gglm.Mat4
}

// Update recalculates the view and projection matrices. Call after changing any camera field.
func (c *Camera) Update() {

	c.ViewMat = gglm.LookAtRH(&c.Pos, c.Pos.Clone().Add(&c.Forward), &c.WorldUp).Mat4

	if c.Type == Type_Perspective {
		projMat := gglm.Perspective(c.FovRad, c.AspectRatio, c.NearClip, c.FarClip)
		c.ProjMat = *projMat.Clone()
	} else {
		c.ProjMat = gglm.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.NearClip, c.FarClip).Mat4
	}
}

// UpdateRotation sets the forward direction from pitch and yaw (radians), then updates the matrices.
// Yaw of zero looks down +X, and yaw of -pi/2 looks down -Z.
func (c *Camera) UpdateRotation(pitch, yaw float32) {

	dir := gglm.NewVec3(
		gglm.Cos32(yaw)*gglm.Cos32(pitch),
		gglm.Sin32(pitch),
		gglm.Sin32(yaw)*gglm.Cos32(pitch),
	)
	c.Forward = *dir.Normalize()

	c.Update()
}

// RightDir returns the normalized direction to the right of the camera
func (c *Camera) RightDir() gglm.Vec3 {
	cross := gglm.Cross(&c.Forward, &c.WorldUp)
	return *cross.Normalize()
}

// RotationOnlyView returns the view matrix without its translation, so things drawn with it
// (like a sky) stay centered on the camera.
func (c *Camera) RotationOnlyView() gglm.Mat4 {

	v := c.ViewMat
	v.Data[3][0] = 0
	v.Data[3][1] = 0
	v.Data[3][2] = 0

	return v
}

func NewPerspective(pos, forward, worldUp *gglm.Vec3, nearClip, farClip, fovRadians, aspectRatio float32) Camera {

	cam := Camera{
		Type:     Type_Perspective,
		Pos:      *pos,
		Forward:  *forward,
		WorldUp:  *worldUp,
		NearClip: nearClip,
		FarClip:  farClip,

		FovRad:      fovRadians,
		AspectRatio: aspectRatio,
	}

	cam.Update()

	return cam
}

func NewOrthographic(pos, forward, worldUp *gglm.Vec3, nearClip, farClip, left, right, top, bottom float32) Camera {

	cam := Camera{
		Type:     Type_Orthographic,
		Pos:      *pos,
		Forward:  *forward,
		WorldUp:  *worldUp,
		NearClip: nearClip,
		FarClip:  farClip,

		Left:   left,
		Right:  right,
		Top:    top,
		Bottom: bottom,
	}

	cam.Update()

	return cam
}
