package meshes

import (
	"math"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nmage-pbr/assert"
	"github.com/bloeys/nmage-pbr/buffers"
)

// StdVertexLayout is the layout of every procedural mesh, and the layout of loaded meshes without vertex colors
var StdVertexLayout = []buffers.Element{
	{ElementType: buffers.DataTypeVec3}, // Position
	{ElementType: buffers.DataTypeVec3}, // Normals
	{ElementType: buffers.DataTypeVec3}, // Tangents
	{ElementType: buffers.DataTypeVec2}, // UV0
}

// StdVertexFloats is the number of floats one vertex of StdVertexLayout takes
const StdVertexFloats = 3 + 3 + 3 + 2

// MeshData is CPU side vertex (interleaved in StdVertexLayout) and index data
type MeshData struct {
	Vertices []float32
	Indices  []uint32
}

func (md *MeshData) VertexCount() int {
	return len(md.Vertices) / StdVertexFloats
}

// Pos returns the position of the i-th vertex
func (md *MeshData) Pos(i int) gglm.Vec3 {
	v := md.Vertices[i*StdVertexFloats:]
	return gglm.NewVec3(v[0], v[1], v[2])
}

func (md *MeshData) addVertex(pos, normal, tangent *gglm.Vec3, u, v float32) {
	md.Vertices = append(md.Vertices,
		pos.Data[0], pos.Data[1], pos.Data[2],
		normal.Data[0], normal.Data[1], normal.Data[2],
		tangent.Data[0], tangent.Data[1], tangent.Data[2],
		u, v,
	)
}

// SphereData generates a UV sphere centered at the origin with the poles on the z axis.
// There are (stacks+1)*(sectors+1) vertices, since seam and pole vertices are duplicated for texturing.
func SphereData(radius float32, sectors, stacks int) MeshData {

	assert.T(sectors >= 3 && stacks >= 2, "Sphere needs at least 3 sectors and 2 stacks, got sectors=%d stacks=%d", sectors, stacks)

	md := MeshData{
		Vertices: make([]float32, 0, (stacks+1)*(sectors+1)*StdVertexFloats),
		Indices:  make([]uint32, 0, sectors*(stacks-1)*6),
	}

	sectorStep := 2 * math.Pi / float32(sectors)
	stackStep := math.Pi / float32(stacks)

	for i := 0; i <= stacks; i++ {

		stackAngle := math.Pi/2 - float32(i)*stackStep
		xy := radius * gglm.Cos32(stackAngle)
		z := radius * gglm.Sin32(stackAngle)

		for j := 0; j <= sectors; j++ {

			sectorAngle := float32(j) * sectorStep
			sinSector := gglm.Sin32(sectorAngle)
			cosSector := gglm.Cos32(sectorAngle)

			pos := gglm.NewVec3(xy*cosSector, xy*sinSector, z)
			normal := gglm.NewVec3(pos.X()/radius, pos.Y()/radius, pos.Z()/radius)
			tangent := gglm.NewVec3(-sinSector, cosSector, 0)

			md.addVertex(&pos, &normal, &tangent, float32(j)/float32(sectors), float32(i)/float32(stacks))
		}
	}

	for i := 0; i < stacks; i++ {

		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors) + 1

		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {

			// The first and last stacks have one triangle per sector
			if i != 0 {
				md.Indices = append(md.Indices, k1, k2, k1+1)
			}

			if i != stacks-1 {
				md.Indices = append(md.Indices, k1+1, k2, k2+1)
			}
		}
	}

	return md
}

// CubeData generates a unit cube of 8 shared corners spanning [-1, 1] with outward facing counter clockwise triangles.
// Normals point from the center through each corner, which is what cubemap sampling wants.
func CubeData() MeshData {

	corners := [8]gglm.Vec3{
		gglm.NewVec3(-1, -1, -1),
		gglm.NewVec3(1, -1, -1),
		gglm.NewVec3(1, 1, -1),
		gglm.NewVec3(-1, 1, -1),
		gglm.NewVec3(-1, -1, 1),
		gglm.NewVec3(1, -1, 1),
		gglm.NewVec3(1, 1, 1),
		gglm.NewVec3(-1, 1, 1),
	}

	md := MeshData{
		Vertices: make([]float32, 0, len(corners)*StdVertexFloats),
		Indices: []uint32{
			4, 5, 6, 4, 6, 7, // +Z
			1, 0, 3, 1, 3, 2, // -Z
			5, 1, 2, 5, 2, 6, // +X
			0, 4, 7, 0, 7, 3, // -X
			7, 6, 2, 7, 2, 3, // +Y
			0, 1, 5, 0, 5, 4, // -Y
		},
	}

	tangent := gglm.NewVec3(1, 0, 0)
	for i := 0; i < len(corners); i++ {
		normal := corners[i].Clone().Normalize()
		md.addVertex(&corners[i], normal, &tangent, (corners[i].X()+1)/2, (corners[i].Y()+1)/2)
	}

	return md
}

// ScreenQuadData generates a quad covering all of normalized device space, facing +Z
func ScreenQuadData() MeshData {

	md := MeshData{
		Vertices: make([]float32, 0, 4*StdVertexFloats),
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}

	normal := gglm.NewVec3(0, 0, 1)
	tangent := gglm.NewVec3(1, 0, 0)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i := 0; i < len(corners); i++ {
		pos := gglm.NewVec3(corners[i][0], corners[i][1], 0)
		md.addVertex(&pos, &normal, &tangent, (corners[i][0]+1)/2, (corners[i][1]+1)/2)
	}

	return md
}

// NewMeshFromData uploads the data as a mesh with a single submesh
func NewMeshFromData(name string, md MeshData) Mesh {

	mesh := Mesh{
		Name: name,
		Vao:  buffers.NewVertexArray(),
		SubMeshes: []SubMesh{
			{BaseVertex: 0, BaseIndex: 0, IndexCount: int32(len(md.Indices))},
		},
	}

	vbo := buffers.NewVertexBuffer(StdVertexLayout...)
	vbo.SetData(md.Vertices, buffers.BufUsage_Static_Draw)

	ibo := buffers.NewIndexBuffer()
	ibo.SetData(md.Indices)

	mesh.Vao.AddVertexBuffer(vbo)
	mesh.Vao.SetIndexBuffer(ibo)
	mesh.Vao.UnBind()

	return mesh
}

func NewSphere(name string, radius float32, sectors, stacks int) Mesh {
	return NewMeshFromData(name, SphereData(radius, sectors, stacks))
}

func NewCube(name string) Mesh {
	return NewMeshFromData(name, CubeData())
}

func NewScreenQuad(name string) Mesh {
	return NewMeshFromData(name, ScreenQuadData())
}
