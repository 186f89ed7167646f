package buffers

import (
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type IndexBuffer struct {
	Id uint32
	// IndexBufCount is the number of elements in the index buffer. Updated in IndexBuffer.SetData
	IndexBufCount int32
}

func (ib *IndexBuffer) Bind() {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.Id)
}

func (ib *IndexBuffer) UnBind() {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
}

func (ib *IndexBuffer) SetData(values []uint32) {

	ib.Bind()
	ib.IndexBufCount = int32(len(values))

	if len(values) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, BufUsage_Static_Draw.ToGL())
		return
	}

	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(values)*4, gl.Ptr(&values[0]), BufUsage_Static_Draw.ToGL())
}

func (ib *IndexBuffer) Delete() {

	if ib.Id == 0 {
		return
	}

	gl.DeleteBuffers(1, &ib.Id)
	ib.Id = 0
}

func NewIndexBuffer() IndexBuffer {

	ib := IndexBuffer{}

	gl.GenBuffers(1, &ib.Id)
	if ib.Id == 0 {
		logging.ErrLog.Println("Failed to create OpenGL buffer")
	}

	return ib
}

// QuadIndices returns the indices for drawing quadCount quads as two triangles each,
// where quad i uses the four vertices starting at 4*i
func QuadIndices(quadCount int) []uint32 {

	indices := make([]uint32, 0, quadCount*6)
	for i := 0; i < quadCount; i++ {

		v := uint32(i * 4)
		indices = append(indices,
			v, v+1, v+2,
			v, v+2, v+3,
		)
	}

	return indices
}
