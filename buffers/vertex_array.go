package buffers

import (
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type VertexArray struct {
	Id          uint32
	Vbos        []VertexBuffer
	IndexBuffer IndexBuffer
}

func (va *VertexArray) Bind() {
	gl.BindVertexArray(va.Id)
}

func (va *VertexArray) UnBind() {
	gl.BindVertexArray(0)
}

func (va *VertexArray) AddVertexBuffer(vbo VertexBuffer) {

	// NOTE: VBOs are only bound at 'VertexAttribPointer' (and related) calls

	va.Bind()
	vbo.Bind()

	for i := 0; i < len(vbo.layout); i++ {

		l := &vbo.layout[i]

		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), l.ElementType.CompCount(), l.ElementType.GLType(), false, vbo.Stride, uintptr(l.Offset))
	}

	va.Vbos = append(va.Vbos, vbo)
}

func (va *VertexArray) SetIndexBuffer(ib IndexBuffer) {
	va.Bind()
	ib.Bind()
	va.IndexBuffer = ib
}

// Delete frees the vao along with the vertex and index buffers it owns
func (va *VertexArray) Delete() {

	if va.Id == 0 {
		return
	}

	gl.DeleteVertexArrays(1, &va.Id)
	va.Id = 0

	for i := len(va.Vbos) - 1; i >= 0; i-- {
		va.Vbos[i].Delete()
	}
	va.Vbos = nil

	va.IndexBuffer.Delete()
}

func NewVertexArray() VertexArray {

	vao := VertexArray{}

	gl.GenVertexArrays(1, &vao.Id)
	if vao.Id == 0 {
		logging.ErrLog.Println("Failed to create OpenGL vertex array object")
	}

	return vao
}
