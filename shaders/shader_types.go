package shaders

import (
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/go-gl/gl/v4.6-core/gl"
)

type ShaderType int32

const (
	ShaderType_Unknown ShaderType = iota
	ShaderType_Vertex
	ShaderType_Fragment
	ShaderType_Geometry
)

// shaderTypeTags maps the name used after '//shader:' in combined files to the shader type
var shaderTypeTags = [...]struct {
	Tag  string
	Type ShaderType
}{
	{Tag: "vertex", Type: ShaderType_Vertex},
	{Tag: "fragment", Type: ShaderType_Fragment},
	{Tag: "geometry", Type: ShaderType_Geometry},
}

func (s ShaderType) ToGl() uint32 {

	switch s {
	case ShaderType_Vertex:
		return gl.VERTEX_SHADER
	case ShaderType_Fragment:
		return gl.FRAGMENT_SHADER
	case ShaderType_Geometry:
		return gl.GEOMETRY_SHADER
	default:
		assert.T(false, "Unknown shader type '%d'", s)
		return 0
	}
}

func (s ShaderType) String() string {

	for i := 0; i < len(shaderTypeTags); i++ {
		if shaderTypeTags[i].Type == s {
			return shaderTypeTags[i].Tag
		}
	}

	return "unknown"
}
