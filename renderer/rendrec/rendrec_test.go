package rendrec

import (
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/buffers"
	"github.com/bloeys/nmage-pbr/materials"
	"github.com/bloeys/nmage-pbr/meshes"
	"github.com/bloeys/nmage-pbr/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderPassesAndDraws(t *testing.T) {

	rec := NewRecorder()
	mesh := meshes.Mesh{Name: "sphere", SubMeshes: []meshes.SubMesh{{IndexCount: 36}}}
	mat := materials.NewMaterialNoGL("mat", materials.MaterialSettings_HasModelMtx)

	fbo := rec.NewFramebuffer(64, 32,
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Texture, Format: buffers.FramebufferAttachmentDataFormat_RGB8},
		renderer.AttachmentDesc{Type: buffers.FramebufferAttachmentType_Renderbuffer, Format: buffers.FramebufferAttachmentDataFormat_Depth24Stencil8},
	)
	require.NotZero(t, fbo.Id)
	assert.Equal(t, uint32(1), fbo.ColorAttachmentsCount)
	assert.NotZero(t, fbo.ColorAttachmentId(0))

	rec.BeginPass("A")
	rec.BindTarget(&fbo)
	mat.StageUnifFloat32("roughness", 0.5)
	tr := gglm.NewTrMatId()
	rec.DrawMesh(&mesh, &tr, &mat)
	rec.EndPass()

	rec.BeginPass("B")
	rec.BindDefaultTarget(800, 600)
	rec.DrawCubemap(&mesh, &mat)
	rec.EndPass()

	assert.Equal(t, []string{"A", "B"}, rec.Passes())

	drawsA := rec.Draws("A")
	require.Len(t, drawsA, 1)
	assert.Equal(t, fbo.Id, drawsA[0].Target)
	assert.Equal(t, int32(36), drawsA[0].Count)
	u, ok := drawsA[0].Uniform("roughness")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), u.Float32())

	drawsB := rec.Draws("B")
	require.Len(t, drawsB, 1)
	assert.Equal(t, uint32(0), drawsB[0].Target)
	assert.Empty(t, drawsB[0].Uniforms)

	assert.Equal(t, uint32(800), rec.State.ViewportWidth)
	assert.Len(t, rec.Draws(""), 2)
}

func TestRecorderStateTracking(t *testing.T) {

	rec := NewRecorder()
	assert.True(t, rec.State.DepthTest)
	assert.Equal(t, renderer.CullMode_Back, rec.State.CullMode)

	rec.SetCullMode(renderer.CullMode_Front)
	rec.SetDepthFunc(renderer.DepthFunc_LEqual)
	rec.SetBlend(true)
	rec.SetDepthWrite(false)

	assert.Equal(t, renderer.CullMode_Front, rec.State.CullMode)
	assert.Equal(t, renderer.DepthFunc_LEqual, rec.State.DepthFunc)
	assert.True(t, rec.State.Blend)
	assert.False(t, rec.State.DepthWrite)

	cmap := rec.NewCubemap(32, 5, buffers.FramebufferAttachmentDataFormat_RGB16F)
	assert.Equal(t, int32(5), cmap.MipLevels)
	assert.NotZero(t, cmap.TexID)

	rec.Reset()
	assert.Empty(t, rec.Commands)
	assert.True(t, rec.State.Blend)
}
