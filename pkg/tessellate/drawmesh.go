package tessellate

import (
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/scene"
)

// DrawMesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, texCoords 2 per vertex, indices has
// 3 uint32s per triangle.
type DrawMesh struct {
	Vertices  []float32 `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	TexCoords []float32 `json:"texCoords"` // [u0,v0, u1,v1, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	PartName  string    `json:"partName"`  // which scene part this came from
}

// VertexCount returns the number of vertices.
func (m *DrawMesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *DrawMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *DrawMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// FromMesh flattens a polygon mesh. Vertex IDs map to dense indices in
// ascending ID order and every face (v0, v1, ..., vn) becomes the fan
// (v0, vi, vi+1). Vertices without a normal get an area-weighted one
// computed on a copy; authored normals are kept and m is not modified.
func FromMesh(m *mesh.Mesh, name string) *DrawMesh {
	var filled *mesh.Mesh
	for _, v := range m.Vertices() {
		if !v.HasNormal {
			filled = m.Clone()
			filled.ComputeNormals(mesh.NormalWeightArea)
			break
		}
	}

	ids := m.VertexIDs()
	index := make(map[mesh.VertexID]uint32, len(ids))
	dm := &DrawMesh{
		Vertices:  make([]float32, 0, 3*len(ids)),
		Normals:   make([]float32, 0, 3*len(ids)),
		TexCoords: make([]float32, 0, 2*len(ids)),
		PartName:  name,
	}
	for i, id := range ids {
		index[id] = uint32(i)
		v := m.Vertex(id)
		n := v.Normal
		if !v.HasNormal {
			n = filled.Vertex(id).Normal
		}
		dm.Vertices = append(dm.Vertices, float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]))
		dm.Normals = append(dm.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
		dm.TexCoords = append(dm.TexCoords, float32(v.TexCoord[0]), float32(v.TexCoord[1]))
	}

	for _, fid := range m.FaceIDs() {
		loop := m.FaceVertices(fid)
		for i := 1; i+1 < len(loop); i++ {
			dm.Indices = append(dm.Indices, index[loop[0]], index[loop[i]], index[loop[i+1]])
		}
	}
	return dm
}

// Tessellate builds every part of the scene and flattens it for drawing.
// Parts with no geometry, such as disjoint intersections, are skipped.
func Tessellate(s *scene.Scene, b Builder) ([]*DrawMesh, error) {
	parts, err := b.Build(s)
	if err != nil {
		return nil, err
	}
	meshes := make([]*DrawMesh, 0, len(parts))
	for _, p := range parts {
		if p.Mesh.IsEmpty() {
			continue
		}
		meshes = append(meshes, FromMesh(p.Mesh, p.Name))
	}
	return meshes, nil
}
