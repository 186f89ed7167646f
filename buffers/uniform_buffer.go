package buffers

import (
	"encoding/binary"
	"math"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type UniformBufferFieldInput struct {
	Id   uint16
	Type ElementType
	// Count should be set in case this field is an array of type `[Count]Type`.
	// Count=0 is valid and is equivalent to Count=1, which means the type is NOT an array, but a single field.
	Count uint16
}

type UniformBufferField struct {
	Id            uint16
	AlignedOffset uint16
	// Count is at least 1. Anything above 1 means this is an array with std140 array stride
	Count uint16
	Type  ElementType
}

// UniformBuffer is a std140 uniform buffer. Setters only write into a CPU side copy,
// which is sent to the GPU in one go by Upload.
type UniformBuffer struct {
	Id uint32
	// Size is the allocated memory in bytes on the GPU for this uniform buffer
	Size   uint32
	Fields []UniformBufferField

	staging []byte
	dirty   bool
}

func (ub *UniformBuffer) Bind() {
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.Id)
}

func (ub *UniformBuffer) UnBind() {
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
}

func (ub *UniformBuffer) SetBindPoint(bindPointIndex uint32) {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, bindPointIndex, ub.Id)
}

// Upload sends the staged bytes to the GPU if anything changed since the last upload
func (ub *UniformBuffer) Upload() {

	if !ub.dirty {
		return
	}

	ub.Bind()
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(ub.staging), gl.Ptr(&ub.staging[0]))
	ub.UnBind()

	ub.dirty = false
}

// Staged returns the CPU side copy of the buffer
func (ub *UniformBuffer) Staged() []byte {
	return ub.staging
}

func computeUniformBufferLayout(fieldsToAdd []UniformBufferFieldInput) (fields []UniformBufferField, totalSize uint32) {

	fields = make([]UniformBufferField, 0, len(fieldsToAdd))
	fieldIdToTypeMap := make(map[uint16]ElementType, len(fieldsToAdd))

	var offset uint16 = 0
	for i := 0; i < len(fieldsToAdd); i++ {

		f := fieldsToAdd[i]
		if f.Count == 0 {
			f.Count = 1
		}

		assert.T(f.Type != DataTypeStruct, "Uniform buffer field id=%d is a struct, which is not supported", f.Id)

		existingFieldType, ok := fieldIdToTypeMap[f.Id]
		assert.T(!ok, "Uniform buffer field id is reused within the same uniform buffer. FieldId=%d was first used on a field with type=%s and then used on a different field with type=%s\n", f.Id, existingFieldType.String(), f.Type.String())
		fieldIdToTypeMap[f.Id] = f.Type

		// Arrays of anything, and matrices, are aligned like a vec4 and have each element padded to 16 bytes
		isArray := f.Count > 1
		alignment := f.Type.GlStd140AlignmentBoundary()
		if isArray {
			alignment = 16
		}

		padToBoundary(&offset, alignment)
		fields = append(fields, UniformBufferField{Id: f.Id, Type: f.Type, AlignedOffset: offset, Count: f.Count})

		cols := f.Type.GlStd140Columns()
		switch {
		case isArray:
			offset += 16 * cols * f.Count
		case f.Type == DataTypeMat2 || f.Type == DataTypeMat3 || f.Type == DataTypeMat4:
			offset += 16 * cols
		default:
			offset += uint16(f.Type.Size())
		}
	}

	// The block size is rounded up to a vec4
	padToBoundary(&offset, 16)
	return fields, uint32(offset)
}

func padToBoundary(val *uint16, boundary uint16) {
	alignmentError := *val % boundary
	if alignmentError != 0 {
		*val += boundary - alignmentError
	}
}

func (ub *UniformBuffer) getField(fieldId uint16, fieldType ElementType) UniformBufferField {

	for i := 0; i < len(ub.Fields); i++ {

		f := ub.Fields[i]

		if f.Id != fieldId {
			continue
		}

		assert.T(f.Type == fieldType, "Uniform buffer field id is reused within the same uniform buffer. FieldId=%d was first used on a field with type=%v, but is now being used on a field with type=%v\n", fieldId, f.Type.String(), fieldType.String())

		return f
	}

	logging.ErrLog.Panicf("couldn't find uniform buffer field of id=%d and type=%s\n", fieldId, fieldType.String())
	return UniformBufferField{}
}

func (ub *UniformBuffer) SetInt32(fieldId uint16, val int32) {
	f := ub.getField(fieldId, DataTypeInt32)
	Write32BitIntegerToByteBuf(ub.staging, int(f.AlignedOffset), val)
	ub.dirty = true
}

func (ub *UniformBuffer) SetUint32(fieldId uint16, val uint32) {
	f := ub.getField(fieldId, DataTypeUint32)
	Write32BitIntegerToByteBuf(ub.staging, int(f.AlignedOffset), val)
	ub.dirty = true
}

func (ub *UniformBuffer) SetFloat32(fieldId uint16, val float32) {
	f := ub.getField(fieldId, DataTypeFloat32)
	WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset), 4, []float32{val})
	ub.dirty = true
}

func (ub *UniformBuffer) SetVec2(fieldId uint16, val *gglm.Vec2) {
	f := ub.getField(fieldId, DataTypeVec2)
	WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset), 4, val.Data[:])
	ub.dirty = true
}

func (ub *UniformBuffer) SetVec3(fieldId uint16, val *gglm.Vec3) {
	f := ub.getField(fieldId, DataTypeVec3)
	WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset), 4, val.Data[:])
	ub.dirty = true
}

func (ub *UniformBuffer) SetVec4(fieldId uint16, val *gglm.Vec4) {
	f := ub.getField(fieldId, DataTypeVec4)
	WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset), 4, val.Data[:])
	ub.dirty = true
}

func (ub *UniformBuffer) SetMat4(fieldId uint16, val *gglm.Mat4) {

	f := ub.getField(fieldId, DataTypeMat4)
	for col := 0; col < 4; col++ {
		WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset)+col*16, 4, val.Data[col][:])
	}

	ub.dirty = true
}

// SetFloat32Array writes vals into an array field, starting at element zero. Each element takes 16 bytes.
func (ub *UniformBuffer) SetFloat32Array(fieldId uint16, vals []float32) {

	f := ub.getField(fieldId, DataTypeFloat32)
	assert.T(len(vals) <= int(f.Count), "uniform buffer field id=%d has %d elements but got %d values", fieldId, f.Count, len(vals))

	WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset), 16, vals)
	ub.dirty = true
}

// SetVec3Array writes vals into an array field, starting at element zero. Each element takes 16 bytes.
func (ub *UniformBuffer) SetVec3Array(fieldId uint16, vals []gglm.Vec3) {

	f := ub.getField(fieldId, DataTypeVec3)
	assert.T(len(vals) <= int(f.Count), "uniform buffer field id=%d has %d elements but got %d values", fieldId, f.Count, len(vals))

	for i := 0; i < len(vals); i++ {
		WriteF32SliceToByteBuf(ub.staging, int(f.AlignedOffset)+i*16, 4, vals[i].Data[:])
	}

	ub.dirty = true
}

func Write32BitIntegerToByteBuf[T uint32 | int32](buf []byte, startIndex int, val T) {

	assert.T(startIndex+4 <= len(buf), "failed to write uint32/int32 to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", startIndex, len(buf))
	binary.LittleEndian.PutUint32(buf[startIndex:], uint32(val))
}

// WriteF32SliceToByteBuf writes each float at startIndex + i*stride
func WriteF32SliceToByteBuf(buf []byte, startIndex int, stride int, vals []float32) {

	if len(vals) == 0 {
		return
	}

	assert.T(startIndex+(len(vals)-1)*stride+4 <= len(buf), "failed to write slice of float32 with stride=%d to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d, Value count=%d", stride, startIndex, len(buf), len(vals))

	for i := 0; i < len(vals); i++ {
		binary.LittleEndian.PutUint32(buf[startIndex+i*stride:], math.Float32bits(vals[i]))
	}
}

// NewStagedUniformBuffer computes the layout and staging memory without touching the GPU
func NewStagedUniformBuffer(fields []UniformBufferFieldInput) UniformBuffer {

	ub := UniformBuffer{}
	ub.Fields, ub.Size = computeUniformBufferLayout(fields)
	ub.staging = make([]byte, ub.Size)

	return ub
}

func NewUniformBuffer(fields []UniformBufferFieldInput, usage BufUsage) UniformBuffer {

	ub := NewStagedUniformBuffer(fields)

	gl.GenBuffers(1, &ub.Id)
	if ub.Id == 0 {
		logging.ErrLog.Panicln("Failed to create OpenGL buffer for a uniform buffer")
	}

	ub.Bind()
	gl.BufferData(gl.UNIFORM_BUFFER, int(ub.Size), nil, usage.ToGL())
	ub.UnBind()

	return ub
}

func (ub *UniformBuffer) Delete() {

	if ub.Id == 0 {
		return
	}

	gl.DeleteBuffers(1, &ub.Id)
	ub.Id = 0
}
