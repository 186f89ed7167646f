package buffers

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformBufferLayoutStd140(t *testing.T) {

	fields, size := computeUniformBufferLayout([]UniformBufferFieldInput{
		{Id: 0, Type: DataTypeMat4},
		{Id: 1, Type: DataTypeMat4},
		{Id: 2, Type: DataTypeMat4},
		{Id: 3, Type: DataTypeVec3},
		{Id: 4, Type: DataTypeInt32},
		{Id: 5, Type: DataTypeInt32},
		{Id: 6, Type: DataTypeVec3, Count: 4},
		{Id: 7, Type: DataTypeFloat32, Count: 4},
		{Id: 8, Type: DataTypeVec2},
		{Id: 9, Type: DataTypeFloat32},
	})

	require.Len(t, fields, 10)

	expectedOffsets := []uint16{0, 64, 128, 192, 204, 208, 224, 288, 352, 360}
	for i, f := range fields {
		assert.Equal(t, expectedOffsets[i], f.AlignedOffset, "field id=%d", f.Id)
		assert.GreaterOrEqual(t, f.Count, uint16(1))
	}

	// 364 rounded up to a vec4
	assert.Equal(t, uint32(368), size)
}

func TestUniformBufferStaging(t *testing.T) {

	ub := NewStagedUniformBuffer([]UniformBufferFieldInput{
		{Id: 0, Type: DataTypeVec3},
		{Id: 1, Type: DataTypeInt32},
		{Id: 2, Type: DataTypeFloat32, Count: 3},
		{Id: 3, Type: DataTypeMat4},
	})
	require.Equal(t, uint32(16+48+64), ub.Size)

	v := gglm.NewVec3(1, 2, 3)
	ub.SetVec3(0, &v)
	ub.SetInt32(1, -7)
	ub.SetFloat32Array(2, []float32{4, 5})

	mat := gglm.NewTrMatId()
	mat.Translate(9, 8, 7)
	ub.SetMat4(3, &mat.Mat4)

	buf := ub.Staged()
	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
	}

	assert.Equal(t, float32(1), readF32(0))
	assert.Equal(t, float32(2), readF32(4))
	assert.Equal(t, float32(3), readF32(8))
	assert.Equal(t, int32(-7), int32(binary.LittleEndian.Uint32(buf[12:])))

	// Array elements are 16 bytes apart
	assert.Equal(t, float32(4), readF32(16))
	assert.Equal(t, float32(5), readF32(32))
	assert.Equal(t, float32(0), readF32(48))

	// Column major, translation lives in the last column
	assert.Equal(t, float32(1), readF32(64))
	assert.Equal(t, float32(9), readF32(64+48))
	assert.Equal(t, float32(8), readF32(64+52))
	assert.Equal(t, float32(7), readF32(64+56))
	assert.True(t, ub.dirty)
}

func TestVertexLayoutOffsets(t *testing.T) {

	layout := []Element{
		{ElementType: DataTypeVec3},
		{ElementType: DataTypeVec3},
		{ElementType: DataTypeVec2},
		{ElementType: DataTypeVec4},
	}

	stride := computeLayoutOffsets(layout)
	assert.Equal(t, int32(12+12+8+16), stride)
	assert.Equal(t, []int{0, 12, 24, 32}, []int{layout[0].Offset, layout[1].Offset, layout[2].Offset, layout[3].Offset})
}

func TestElementTypeSizes(t *testing.T) {

	tests := []struct {
		dt        ElementType
		compCount int32
		size      int32
		align     uint16
	}{
		{DataTypeFloat32, 1, 4, 4},
		{DataTypeVec2, 2, 8, 8},
		{DataTypeVec3, 3, 12, 16},
		{DataTypeVec4, 4, 16, 16},
		{DataTypeMat4, 16, 64, 16},
	}

	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			assert.Equal(t, tt.compCount, tt.dt.CompCount())
			assert.Equal(t, tt.size, tt.dt.Size())
			assert.Equal(t, tt.align, tt.dt.GlStd140AlignmentBoundary())
		})
	}

	assert.Equal(t, "Unknown", ElementType(200).String())
}

func TestQuadIndices(t *testing.T) {

	assert.Empty(t, QuadIndices(0))

	indices := QuadIndices(2)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}, indices)
}
