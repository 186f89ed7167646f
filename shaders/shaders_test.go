package shaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCombinedShader(t *testing.T) {

	src := []byte(`//shader:vertex
#version 460
void main() {}

//shader:fragment
#version 460
void main() {}
`)

	sources, err := SplitCombinedShader(src)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, ShaderType_Vertex, sources[0].Type)
	assert.Contains(t, string(sources[0].Src), "#version 460")
	assert.NotContains(t, string(sources[0].Src), "vertex")

	assert.Equal(t, ShaderType_Fragment, sources[1].Type)
	assert.NotContains(t, string(sources[1].Src), "//shader:")
}

func TestSplitCombinedShaderGeometry(t *testing.T) {

	src := []byte("//shader:vertex\nA\n//shader:geometry\nB\n//shader:fragment\nC\n")

	sources, err := SplitCombinedShader(src)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, ShaderType_Geometry, sources[1].Type)
	assert.Equal(t, "\nB\n", string(sources[1].Src))
}

func TestSplitCombinedShaderErrors(t *testing.T) {

	tests := []struct {
		name string
		src  string
		err  error
	}{
		{name: "no markers", src: "#version 460\nvoid main() {}", err: ErrMissingStages},
		{name: "no fragment", src: "//shader:vertex\nvoid main() {}", err: ErrMissingStages},
		{name: "unknown stage", src: "//shader:vertex\nA\n//shader:compute\nB", err: ErrUnknownStage},
		{name: "duplicate stage", src: "//shader:vertex\nA\n//shader:vertex\nB\n//shader:fragment\nC", err: ErrDuplicateStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitCombinedShader([]byte(tt.src))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestShaderTypeString(t *testing.T) {
	assert.Equal(t, "vertex", ShaderType_Vertex.String())
	assert.Equal(t, "fragment", ShaderType_Fragment.String())
	assert.Equal(t, "unknown", ShaderType_Unknown.String())
}
