package buffers

import (
	"unsafe"

	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/logging"
	"github.com/go-gl/gl/v4.6-core/gl"
)

// StorageBuffer is a shader storage buffer (SSBO) of a fixed size, written by the CPU through Map/Unmap
type StorageBuffer struct {
	Id uint32
	// Size is the allocated memory in bytes on the GPU for this buffer
	Size int
	// BindPoint is the indexed SHADER_STORAGE_BUFFER binding this buffer was last bound to
	BindPoint uint32

	isMapped bool
}

func (sb *StorageBuffer) Bind() {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, sb.Id)
}

func (sb *StorageBuffer) UnBind() {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

func (sb *StorageBuffer) SetBindPoint(bindPointIndex uint32) {
	sb.BindPoint = bindPointIndex
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, bindPointIndex, sb.Id)
}

// Map returns a write-only CPU pointer to the whole buffer. Previous contents are invalidated.
// Unmap must be called before the buffer is used by any draw.
func (sb *StorageBuffer) Map() unsafe.Pointer {

	assert.T(!sb.isMapped, "storage buffer id=%d is already mapped", sb.Id)

	sb.Bind()
	p := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, sb.Size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	if p == nil {
		logging.ErrLog.Printf("failed to map storage buffer id=%d. GlError=%d\n", sb.Id, gl.GetError())
		sb.UnBind()
		return nil
	}

	sb.isMapped = true
	return p
}

func (sb *StorageBuffer) Unmap() {

	if !sb.isMapped {
		return
	}

	sb.Bind()
	if !gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER) {
		// Data store contents become undefined in this case (e.g. on video mode changes), next map rewrites it anyway
		logging.WarnLog.Printf("storage buffer id=%d got corrupted while mapped\n", sb.Id)
	}
	sb.UnBind()

	sb.isMapped = false
}

func (sb *StorageBuffer) Delete() {

	if sb.Id == 0 {
		return
	}

	sb.Unmap()
	gl.DeleteBuffers(1, &sb.Id)
	sb.Id = 0
}

// MapAs maps the buffer and views it as count values of T
func MapAs[T any](sb *StorageBuffer, count int) []T {

	var zero T
	assert.T(count*int(unsafe.Sizeof(zero)) <= sb.Size, "storage buffer of size %d is too small for %d values of size %d", sb.Size, count, unsafe.Sizeof(zero))

	p := sb.Map()
	if p == nil {
		return nil
	}

	return unsafe.Slice((*T)(p), count)
}

func NewStorageBuffer(sizeBytes int, usage BufUsage) StorageBuffer {

	sb := StorageBuffer{Size: sizeBytes}

	gl.GenBuffers(1, &sb.Id)
	if sb.Id == 0 {
		logging.ErrLog.Panicln("Failed to create OpenGL buffer for a storage buffer")
	}

	sb.Bind()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, sizeBytes, nil, usage.ToGL())
	sb.UnBind()

	return sb
}
