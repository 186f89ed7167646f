package meshes

import (
	"errors"
	"fmt"

	"github.com/bloeys/assimp-go/asig"
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/buffers"
)

type SubMesh struct {
	BaseVertex int32
	BaseIndex  uint32
	IndexCount int32
}

type Mesh struct {
	Name string
	/*
		Vao has the following shader attribute layout:
			- Loc0: Pos
			- Loc1: Normal
			- Loc2: Tangent
			- Loc3: UV0
			- Loc4: (Optional) Color, only for loaded meshes that have vertex colors
	*/
	Vao       buffers.VertexArray
	SubMeshes []SubMesh
}

func (m *Mesh) IndexCount() int32 {

	var count int32
	for i := 0; i < len(m.SubMeshes); i++ {
		count += m.SubMeshes[i].IndexCount
	}

	return count
}

func (m *Mesh) Delete() {
	m.Vao.Delete()
	m.SubMeshes = nil
}

var (
	// DefaultMeshLoadFlags are the flags always applied when loading a new mesh regardless
	// of what post process flags are used when loading a mesh.
	//
	// Defaults to: asig.PostProcessTriangulate | asig.PostProcessCalcTangentSpace;
	// Note: changing this will break the normal lit shaders, which expect tangents to be there
	DefaultMeshLoadFlags asig.PostProcess = asig.PostProcessTriangulate | asig.PostProcessCalcTangentSpace
)

func NewMesh(name, modelPath string, postProcessFlags asig.PostProcess) (Mesh, error) {

	finalPostProcessFlags := DefaultMeshLoadFlags | postProcessFlags

	scene, release, err := asig.ImportFile(modelPath, finalPostProcessFlags)
	if err != nil {
		return Mesh{}, fmt.Errorf("failed to load model '%s': %w", modelPath, err)
	}
	defer release()

	if len(scene.Meshes) == 0 {
		return Mesh{}, errors.New("no meshes found in file: " + modelPath)
	}

	mesh := Mesh{
		Name:      name,
		Vao:       buffers.NewVertexArray(),
		SubMeshes: make([]SubMesh, 0, 1),
	}

	vbo := buffers.NewVertexBuffer()
	ibo := buffers.NewIndexBuffer()

	// Estimate a useful prealloc capacity based on the first submesh that has vertex pos+normals+tangents+texCoords
	vertexBufDataCapacity := len(scene.Meshes[0].Vertices) * 3 * 3 * 3 * 2

	// Increase capacity depending on what the mesh has
	if len(scene.Meshes[0].ColorSets) > 0 && len(scene.Meshes[0].ColorSets[0]) > 0 {
		vertexBufDataCapacity *= 4
	}

	var vertexBufData []float32 = make([]float32, 0, vertexBufDataCapacity)

	// Initial size assumes 3 indices per face
	var indexBufData []uint32 = make([]uint32, 0, len(scene.Meshes[0].Faces)*3)

	for i := 0; i < len(scene.Meshes); i++ {

		sceneMesh := scene.Meshes[i]

		// We always want tangents and UV0
		if len(sceneMesh.Tangents) == 0 {
			sceneMesh.Tangents = make([]gglm.Vec3, len(sceneMesh.Vertices))
		}

		if len(sceneMesh.TexCoords[0]) == 0 {
			sceneMesh.TexCoords[0] = make([]gglm.Vec3, len(sceneMesh.Vertices))
		}

		hasColorSet0 := len(sceneMesh.ColorSets) > 0 && len(sceneMesh.ColorSets[0]) > 0

		layoutToUse := append([]buffers.Element{}, StdVertexLayout...)

		if hasColorSet0 {
			layoutToUse = append(layoutToUse, buffers.Element{ElementType: buffers.DataTypeVec4})
		}

		if i == 0 {
			vbo.SetLayout(layoutToUse...)
		} else {

			// One VAO+VBO holds all submeshes, so they must share one format
			firstSubmeshLayout := vbo.GetLayout()
			assert.T(len(firstSubmeshLayout) == len(layoutToUse), "Vertex layout of submesh '%d' of mesh '%s' at path '%s' does not equal vertex layout of the first submesh. Original layout: %v; This layout: %v", i, name, modelPath, firstSubmeshLayout, layoutToUse)

			for i := 0; i < len(firstSubmeshLayout); i++ {
				assert.T(firstSubmeshLayout[i].ElementType == layoutToUse[i].ElementType, "Vertex layout of submesh '%d' of mesh '%s' at path '%s' does not equal vertex layout of the first submesh. Original layout: %v; This layout: %v", i, name, modelPath, firstSubmeshLayout, layoutToUse)
			}
		}

		var colors []gglm.Vec4
		if hasColorSet0 {
			colors = sceneMesh.ColorSets[0]
		}

		indices := flattenFaces(sceneMesh.Faces)
		mesh.SubMeshes = append(mesh.SubMeshes, SubMesh{

			// Index of the vertex to start from (e.g. if index buffer says use vertex 5, and BaseVertex=3, the vertex used will be vertex 8)
			BaseVertex: int32(len(vertexBufData)*4) / vbo.Stride,
			// Which index (in the index buffer) to start from
			BaseIndex: uint32(len(indexBufData)),
			// How many indices in this submesh
			IndexCount: int32(len(indices)),
		})

		vertexBufData = appendVertices(vertexBufData, sceneMesh.Vertices, sceneMesh.Normals, sceneMesh.Tangents, sceneMesh.TexCoords[0], colors)
		indexBufData = append(indexBufData, indices...)
	}

	vbo.SetData(vertexBufData, buffers.BufUsage_Static_Draw)
	ibo.SetData(indexBufData)

	mesh.Vao.AddVertexBuffer(vbo)
	mesh.Vao.SetIndexBuffer(ibo)

	// Otherwise the next loaded mesh attaches its buffers to this vao
	mesh.Vao.UnBind()

	return mesh, nil
}

// appendVertices writes vertices in StdVertexLayout order, followed by the color when colors is not empty.
// UVs come from assimp as vec3 and only xy is kept.
func appendVertices(dst []float32, pos, normals, tangents, uvs []gglm.Vec3, colors []gglm.Vec4) []float32 {

	assert.T(len(normals) == len(pos) && len(tangents) == len(pos) && len(uvs) == len(pos), "Vertex attribute arrays have different lengths. Pos=%d; Normals=%d; Tangents=%d; UVs=%d", len(pos), len(normals), len(tangents), len(uvs))
	assert.T(len(colors) == 0 || len(colors) == len(pos), "Vertex color count %d does not match vertex count %d", len(colors), len(pos))

	for i := 0; i < len(pos); i++ {

		dst = append(dst, pos[i].Data[:]...)
		dst = append(dst, normals[i].Data[:]...)
		dst = append(dst, tangents[i].Data[:]...)
		dst = append(dst, uvs[i].Data[0], uvs[i].Data[1])

		if len(colors) > 0 {
			dst = append(dst, colors[i].Data[:]...)
		}
	}

	return dst
}

func flattenFaces(faces []asig.Face) []uint32 {

	assert.T(len(faces[0].Indices) == 3, "Face doesn't have 3 indices. Index count: %v\n", len(faces[0].Indices))

	uints := make([]uint32, len(faces)*3)
	for i := 0; i < len(faces); i++ {
		uints[i*3+0] = uint32(faces[i].Indices[0])
		uints[i*3+1] = uint32(faces[i].Indices[1])
		uints[i*3+2] = uint32(faces[i].Indices[2])
	}

	return uints
}
