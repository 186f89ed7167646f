package buffers

import (
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type VertexBuffer struct {
	Id     uint32
	Stride int32
	layout []Element
}

func (vb *VertexBuffer) Bind() {
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.Id)
}

func (vb *VertexBuffer) UnBind() {
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (vb *VertexBuffer) SetData(values []float32, usage BufUsage) {

	vb.Bind()

	if len(values) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, usage.ToGL())
		return
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(values)*4, gl.Ptr(&values[0]), usage.ToGL())
}

func (vb *VertexBuffer) GetLayout() []Element {
	e := make([]Element, len(vb.layout))
	copy(e, vb.layout)
	return e
}

func (vb *VertexBuffer) SetLayout(layout ...Element) {
	vb.layout = make([]Element, len(layout))
	copy(vb.layout, layout)
	vb.Stride = computeLayoutOffsets(vb.layout)
}

func (vb *VertexBuffer) Delete() {

	if vb.Id == 0 {
		return
	}

	gl.DeleteBuffers(1, &vb.Id)
	vb.Id = 0
}

// computeLayoutOffsets packs the elements one after the other and returns the resulting stride
func computeLayoutOffsets(layout []Element) (stride int32) {

	for i := 0; i < len(layout); i++ {
		layout[i].Offset = int(stride)
		stride += layout[i].Size()
	}

	return stride
}

func NewVertexBuffer(layout ...Element) VertexBuffer {

	vb := VertexBuffer{}

	gl.GenBuffers(1, &vb.Id)
	if vb.Id == 0 {
		logging.ErrLog.Panicln("Failed to create OpenGL buffer")
	}

	vb.SetLayout(layout...)
	return vb
}
