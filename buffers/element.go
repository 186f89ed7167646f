package buffers

import (
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/go-gl/gl/v4.6-core/gl"
)

// Element represents an element that makes up a buffer (e.g. Vec3 at an offset of 12 bytes)
type Element struct {
	Offset int
	ElementType
}

// ElementType is the type of an element thats makes up a buffer (e.g. Vec3)
type ElementType uint8

const (
	DataTypeUnknown ElementType = iota

	DataTypeUint32
	DataTypeInt32
	DataTypeFloat32

	DataTypeVec2
	DataTypeVec3
	DataTypeVec4

	DataTypeMat2
	DataTypeMat3
	DataTypeMat4

	DataTypeStruct
)

type elementTypeInfo struct {
	name      string
	glType    uint32
	compCount int32

	// std140 base alignment when the type is used as a single (non-array) field
	std140Align uint16
	// Number of vec4 columns a matrix occupies in std140. Zero for non-matrices
	std140Columns uint16
}

var elementTypeInfos = [...]elementTypeInfo{
	DataTypeUnknown: {name: "Unknown"},

	DataTypeUint32:  {name: "uint32", glType: gl.UNSIGNED_INT, compCount: 1, std140Align: 4},
	DataTypeInt32:   {name: "int32", glType: gl.INT, compCount: 1, std140Align: 4},
	DataTypeFloat32: {name: "float32", glType: gl.FLOAT, compCount: 1, std140Align: 4},

	DataTypeVec2: {name: "Vec2", glType: gl.FLOAT, compCount: 2, std140Align: 8},
	DataTypeVec3: {name: "Vec3", glType: gl.FLOAT, compCount: 3, std140Align: 16},
	DataTypeVec4: {name: "Vec4", glType: gl.FLOAT, compCount: 4, std140Align: 16},

	DataTypeMat2: {name: "Mat2", glType: gl.FLOAT, compCount: 2 * 2, std140Align: 16, std140Columns: 2},
	DataTypeMat3: {name: "Mat3", glType: gl.FLOAT, compCount: 3 * 3, std140Align: 16, std140Columns: 3},
	DataTypeMat4: {name: "Mat4", glType: gl.FLOAT, compCount: 4 * 4, std140Align: 16, std140Columns: 4},

	DataTypeStruct: {name: "Struct", std140Align: 16},
}

func (dt ElementType) info() *elementTypeInfo {

	assert.T(dt > DataTypeUnknown && int(dt) < len(elementTypeInfos), "Unknown data type passed. DataType '%d'", dt)
	return &elementTypeInfos[dt]
}

func (dt ElementType) GLType() uint32 {
	assert.T(dt != DataTypeStruct, "ElementType.GLType of DataTypeStruct is not supported")
	return dt.info().glType
}

// CompSize returns the size in bytes for one component of the type (e.g. for Vec2 its 4)
func (dt ElementType) CompSize() int32 {
	assert.T(dt != DataTypeStruct, "ElementType.CompSize of DataTypeStruct is not supported")
	return 4
}

// CompCount returns the number of components in the element (e.g. for Vec2 its 2)
func (dt ElementType) CompCount() int32 {
	assert.T(dt != DataTypeStruct, "ElementType.CompCount of DataTypeStruct is not supported")
	return dt.info().compCount
}

// Size returns the total size in bytes (e.g. for vec3 its 3*4=12 bytes)
func (dt ElementType) Size() int32 {
	return dt.CompSize() * dt.CompCount()
}

func (dt ElementType) GlStd140AlignmentBoundary() uint16 {
	return dt.info().std140Align
}

// GlStd140Columns returns how many vec4 sized columns a matrix takes in std140, or 1 for anything else
func (dt ElementType) GlStd140Columns() uint16 {

	cols := dt.info().std140Columns
	if cols == 0 {
		return 1
	}

	return cols
}

func (dt ElementType) String() string {

	if int(dt) >= len(elementTypeInfos) {
		return "Unknown"
	}

	return elementTypeInfos[dt].name
}
