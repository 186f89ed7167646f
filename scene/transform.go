package scene

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/logging"
)

type TransformHandle int32

const NoParent TransformHandle = -1

// Transform is a node in the Transforms arena. Rotation is euler angles in degrees applied x then y then z.
type Transform struct {
	Pos    gglm.Vec3
	RotDeg gglm.Vec3
	Scale  gglm.Vec3
	Parent TransformHandle

	// World is parent world * local, valid after Transforms.UpdateWorld
	World gglm.TrMat
}

// Local returns translate * rotate * scale of this node alone
func (t *Transform) Local() gglm.TrMat {

	m := gglm.NewTrMatId()
	m.TranslateVec(&t.Pos)
	m.Rotate(t.RotDeg.Data[0]*gglm.Deg2Rad, 1, 0, 0)
	m.Rotate(t.RotDeg.Data[1]*gglm.Deg2Rad, 0, 1, 0)
	m.Rotate(t.RotDeg.Data[2]*gglm.Deg2Rad, 0, 0, 1)
	m.Scale(t.Scale.Data[0], t.Scale.Data[1], t.Scale.Data[2])

	return m
}

// Transforms stores every transform of a scene. Handles are indices and stay valid for the life of the arena.
type Transforms struct {
	Nodes []Transform

	// updated is scratch for UpdateWorld
	updated []bool
}

func (ts *Transforms) New(pos gglm.Vec3) TransformHandle {

	ts.Nodes = append(ts.Nodes, Transform{
		Pos:    pos,
		Scale:  gglm.NewVec3(1, 1, 1),
		Parent: NoParent,
		World:  gglm.NewTrMatId(),
	})

	return TransformHandle(len(ts.Nodes) - 1)
}

func (ts *Transforms) Get(h TransformHandle) *Transform {
	assert.T(h >= 0 && int(h) < len(ts.Nodes), "Transform handle %d out of range [0, %d)", h, len(ts.Nodes))
	return &ts.Nodes[h]
}

func (ts *Transforms) Move(h TransformHandle, delta *gglm.Vec3) {
	t := ts.Get(h)
	t.Pos.Add(delta)
}

func (ts *Transforms) Rotate(h TransformHandle, deltaDeg *gglm.Vec3) {
	t := ts.Get(h)
	t.RotDeg.Add(deltaDeg)
}

// SetParent makes child relative to parent. Parenting that would create a cycle is refused and logged.
// Passing NoParent detaches the child.
func (ts *Transforms) SetParent(child, parent TransformHandle) bool {

	c := ts.Get(child)
	if parent == NoParent {
		c.Parent = NoParent
		return true
	}

	for p := parent; p != NoParent; p = ts.Get(p).Parent {
		if p == child {
			logging.WarnLog.Printf("Refusing to parent transform %d to %d as it would create a cycle\n", child, parent)
			return false
		}
	}

	c.Parent = parent
	return true
}

// UpdateWorld recomputes the world matrix of every node, parents before their children
func (ts *Transforms) UpdateWorld() {

	if cap(ts.updated) < len(ts.Nodes) {
		ts.updated = make([]bool, len(ts.Nodes))
	}
	ts.updated = ts.updated[:len(ts.Nodes)]
	clear(ts.updated)

	for i := 0; i < len(ts.Nodes); i++ {
		ts.updateWorld(TransformHandle(i))
	}
}

func (ts *Transforms) updateWorld(h TransformHandle) *gglm.TrMat {

	t := &ts.Nodes[h]
	if ts.updated[h] {
		return &t.World
	}

	local := t.Local()
	if t.Parent == NoParent {
		t.World = local
	} else {
		t.World = *ts.updateWorld(t.Parent)
		t.World.Mat4.Mul(&local.Mat4)
	}

	ts.updated[h] = true
	return &t.World
}
