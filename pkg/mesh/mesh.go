// Package mesh implements an indexed polygon mesh with per-vertex
// neighbor-face adjacency. Vertices and faces live in arenas keyed by
// integer IDs. IDs are allocated monotonically and never reused, so
// references held outside the mesh stay meaningful across edits.
//
// Invalid IDs and malformed faces are programmer errors: the mesh panics
// with a "mesh:" prefixed message instead of returning an error.
package mesh

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// VertexID identifies a vertex within a single Mesh.
type VertexID uint32

// FaceID identifies a face within a single Mesh.
type FaceID uint32

// Reserved sentinels. They are never allocated.
const (
	InvalidVertexID VertexID = math.MaxUint32
	InvalidFaceID   FaceID   = math.MaxUint32
)

// Vertex is the per-vertex record. NeighborFaces is the inverse of the
// face→vertex relation and is maintained by the Mesh.
type Vertex struct {
	Position    mgl64.Vec3
	Normal      mgl64.Vec3
	TexCoord    mgl64.Vec2
	HasNormal   bool
	HasTexCoord bool

	NeighborFaces []FaceID
}

// Face is an ordered boundary loop of at least three distinct vertices.
type Face struct {
	Vertices []VertexID
}

// Mesh owns vertex and face storage. The zero value is not usable; call New.
type Mesh struct {
	vertices   map[VertexID]*Vertex
	faces      map[FaceID]*Face
	nextVertex VertexID
	nextFace   FaceID
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{
		vertices: make(map[VertexID]*Vertex),
		faces:    make(map[FaceID]*Face),
	}
}

// ---------------------------------------------------------------------------
// Mutation
// ---------------------------------------------------------------------------

// AddVertex stores a new vertex at pos and returns its ID. The ID is
// strictly greater than every ID allocated before, including removed ones.
func (m *Mesh) AddVertex(pos mgl64.Vec3) VertexID {
	if m.nextVertex == InvalidVertexID {
		panic("mesh: vertex id space exhausted")
	}
	id := m.nextVertex
	m.nextVertex++
	m.vertices[id] = &Vertex{Position: pos}
	return id
}

// AddVertexUV stores a new vertex with a texture coordinate.
func (m *Mesh) AddVertexUV(pos mgl64.Vec3, uv mgl64.Vec2) VertexID {
	id := m.AddVertex(pos)
	v := m.vertices[id]
	v.TexCoord = uv
	v.HasTexCoord = true
	return id
}

// AddVertexWithID stores a vertex under an explicit ID. The ID must not be
// lower than the next ID the mesh would allocate, which keeps allocation
// monotonic. Used by readers that preserve IDs.
func (m *Mesh) AddVertexWithID(id VertexID, pos mgl64.Vec3) {
	if id == InvalidVertexID {
		panic("mesh: cannot allocate the invalid vertex id")
	}
	if id < m.nextVertex {
		panic(fmt.Sprintf("mesh: vertex id %d already allocated (next is %d)", id, m.nextVertex))
	}
	m.vertices[id] = &Vertex{Position: pos}
	m.nextVertex = id + 1
}

// SetPosition moves a vertex.
func (m *Mesh) SetPosition(id VertexID, pos mgl64.Vec3) {
	m.mustVertex(id).Position = pos
}

// SetNormal assigns a vertex normal.
func (m *Mesh) SetNormal(id VertexID, n mgl64.Vec3) {
	v := m.mustVertex(id)
	v.Normal = n
	v.HasNormal = true
}

// SetTexCoord assigns a vertex texture coordinate.
func (m *Mesh) SetTexCoord(id VertexID, uv mgl64.Vec2) {
	v := m.mustVertex(id)
	v.TexCoord = uv
	v.HasTexCoord = true
}

// AddFace adds a face with the given boundary loop and returns its ID.
// The loop needs at least three vertices, every vertex must exist and no
// vertex may appear twice.
func (m *Mesh) AddFace(ids ...VertexID) FaceID {
	if m.nextFace == InvalidFaceID {
		panic("mesh: face id space exhausted")
	}
	m.checkLoop(ids)
	id := m.nextFace
	m.nextFace++
	m.insertFace(id, ids)
	return id
}

// AddFaceWithID adds a face under an explicit ID, with the same monotonic
// rule as AddVertexWithID.
func (m *Mesh) AddFaceWithID(id FaceID, ids ...VertexID) {
	if id == InvalidFaceID {
		panic("mesh: cannot allocate the invalid face id")
	}
	if id < m.nextFace {
		panic(fmt.Sprintf("mesh: face id %d already allocated (next is %d)", id, m.nextFace))
	}
	m.checkLoop(ids)
	m.insertFace(id, ids)
	m.nextFace = id + 1
}

// Reserve raises the ID allocation watermarks to at least nextVertex and
// nextFace; it never lowers them. Readers use it to restore the watermark
// of a mesh whose highest IDs were removed before it was written.
func (m *Mesh) Reserve(nextVertex VertexID, nextFace FaceID) {
	m.nextVertex = max(m.nextVertex, nextVertex)
	m.nextFace = max(m.nextFace, nextFace)
}

func (m *Mesh) checkLoop(ids []VertexID) {
	if len(ids) < 3 {
		panic(fmt.Sprintf("mesh: face needs at least 3 vertices, got %d", len(ids)))
	}
	for i, vid := range ids {
		m.mustVertex(vid)
		if slices.Contains(ids[:i], vid) {
			panic(fmt.Sprintf("mesh: vertex %d repeated in face loop", vid))
		}
	}
}

func (m *Mesh) insertFace(id FaceID, ids []VertexID) {
	m.faces[id] = &Face{Vertices: slices.Clone(ids)}
	for _, vid := range ids {
		v := m.vertices[vid]
		v.NeighborFaces = append(v.NeighborFaces, id)
	}
}

// RemoveFace deletes a face and unlinks it from its vertices. The vertices
// stay in the mesh.
func (m *Mesh) RemoveFace(id FaceID) {
	f := m.mustFace(id)
	for _, vid := range f.Vertices {
		v := m.vertices[vid]
		v.NeighborFaces = slices.DeleteFunc(v.NeighborFaces, func(fid FaceID) bool { return fid == id })
	}
	delete(m.faces, id)
}

// RemoveVertex deletes a vertex together with every face that uses it.
func (m *Mesh) RemoveVertex(id VertexID) {
	v := m.mustVertex(id)
	for _, fid := range slices.Clone(v.NeighborFaces) {
		m.RemoveFace(fid)
	}
	delete(m.vertices, id)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// IsValidVertex reports whether id is a live vertex of this mesh.
func (m *Mesh) IsValidVertex(id VertexID) bool {
	if id == InvalidVertexID {
		return false
	}
	_, ok := m.vertices[id]
	return ok
}

// IsValidFace reports whether id is a live face of this mesh.
func (m *Mesh) IsValidFace(id FaceID) bool {
	if id == InvalidFaceID {
		return false
	}
	_, ok := m.faces[id]
	return ok
}

// NumVertices returns the number of live vertices.
func (m *Mesh) NumVertices() int {
	return len(m.vertices)
}

// NumFaces returns the number of live faces.
func (m *Mesh) NumFaces() int {
	return len(m.faces)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.vertices) == 0
}

// NextVertexID returns the ID the next AddVertex call will allocate.
func (m *Mesh) NextVertexID() VertexID {
	return m.nextVertex
}

// NextFaceID returns the ID the next AddFace call will allocate.
func (m *Mesh) NextFaceID() FaceID {
	return m.nextFace
}

// Vertex returns a copy of the vertex record.
func (m *Mesh) Vertex(id VertexID) Vertex {
	v := *m.mustVertex(id)
	v.NeighborFaces = slices.Clone(v.NeighborFaces)
	return v
}

// Position returns the position of a vertex.
func (m *Mesh) Position(id VertexID) mgl64.Vec3 {
	return m.mustVertex(id).Position
}

// Face returns a copy of the face record.
func (m *Mesh) Face(id FaceID) Face {
	return Face{Vertices: slices.Clone(m.mustFace(id).Vertices)}
}

// FaceVertices returns the boundary loop of a face. The slice is owned by
// the mesh and must not be modified.
func (m *Mesh) FaceVertices(id FaceID) []VertexID {
	return m.mustFace(id).Vertices
}

// VertexIDs returns all live vertex IDs in ascending order.
func (m *Mesh) VertexIDs() []VertexID {
	return slices.Sorted(maps.Keys(m.vertices))
}

// FaceIDs returns all live face IDs in ascending order.
func (m *Mesh) FaceIDs() []FaceID {
	return slices.Sorted(maps.Keys(m.faces))
}

// Vertices iterates over vertices in ascending ID order. The yielded
// records share their NeighborFaces slice with the mesh and must be
// treated as read-only.
func (m *Mesh) Vertices() iter.Seq2[VertexID, Vertex] {
	return func(yield func(VertexID, Vertex) bool) {
		for _, id := range m.VertexIDs() {
			if !yield(id, *m.vertices[id]) {
				return
			}
		}
	}
}

// Faces iterates over faces in ascending ID order. The yielded records
// share their loop slice with the mesh and must be treated as read-only.
func (m *Mesh) Faces() iter.Seq2[FaceID, Face] {
	return func(yield func(FaceID, Face) bool) {
		for _, id := range m.FaceIDs() {
			if !yield(id, *m.faces[id]) {
				return
			}
		}
	}
}

// VerticesData returns a deep copy of the vertex table.
func (m *Mesh) VerticesData() map[VertexID]Vertex {
	out := make(map[VertexID]Vertex, len(m.vertices))
	for id := range m.vertices {
		out[id] = m.Vertex(id)
	}
	return out
}

// FacesData returns a deep copy of the face table.
func (m *Mesh) FacesData() map[FaceID]Face {
	out := make(map[FaceID]Face, len(m.faces))
	for id := range m.faces {
		out[id] = m.Face(id)
	}
	return out
}

// NeighborFaces iterates over the faces incident to a vertex.
func (m *Mesh) NeighborFaces(id VertexID) iter.Seq[FaceID] {
	v := m.mustVertex(id)
	return func(yield func(FaceID) bool) {
		for _, fid := range v.NeighborFaces {
			if !yield(fid) {
				return
			}
		}
	}
}

// AdjacentVertices returns the vertices sharing an edge with id, in
// ascending order.
func (m *Mesh) AdjacentVertices(id VertexID) []VertexID {
	v := m.mustVertex(id)
	seen := make(map[VertexID]struct{})
	for _, fid := range v.NeighborFaces {
		loop := m.faces[fid].Vertices
		n := len(loop)
		for i, vid := range loop {
			if vid != id {
				continue
			}
			seen[loop[(i+n-1)%n]] = struct{}{}
			seen[loop[(i+1)%n]] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// ---------------------------------------------------------------------------
// Whole-mesh operations
// ---------------------------------------------------------------------------

// Clone returns a deep copy, including the ID allocation watermarks.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		vertices:   make(map[VertexID]*Vertex, len(m.vertices)),
		faces:      make(map[FaceID]*Face, len(m.faces)),
		nextVertex: m.nextVertex,
		nextFace:   m.nextFace,
	}
	for id, v := range m.vertices {
		cv := *v
		cv.NeighborFaces = slices.Clone(v.NeighborFaces)
		c.vertices[id] = &cv
	}
	for id, f := range m.faces {
		c.faces[id] = &Face{Vertices: slices.Clone(f.Vertices)}
	}
	return c
}

// Append copies every vertex and face of other into m under fresh IDs and
// returns the vertex ID remap (other's ID → m's ID).
func (m *Mesh) Append(other *Mesh) map[VertexID]VertexID {
	remap := make(map[VertexID]VertexID, len(other.vertices))
	for _, oid := range other.VertexIDs() {
		ov := other.vertices[oid]
		id := m.AddVertex(ov.Position)
		v := m.vertices[id]
		v.Normal, v.HasNormal = ov.Normal, ov.HasNormal
		v.TexCoord, v.HasTexCoord = ov.TexCoord, ov.HasTexCoord
		remap[oid] = id
	}
	for _, fid := range other.FaceIDs() {
		loop := other.faces[fid].Vertices
		ids := make([]VertexID, len(loop))
		for i, vid := range loop {
			ids[i] = remap[vid]
		}
		m.AddFace(ids...)
	}
	return remap
}

// Transform applies an affine transform to every vertex position. Normals
// are carried by the inverse transpose of the linear part and
// renormalized. A mirroring transform reverses every face loop so faces
// keep facing outward. IDs and adjacency are untouched.
func (m *Mesh) Transform(mat mgl64.Mat4) {
	linear := mat.Mat3()
	normalMat := linear.Inv().Transpose()
	for _, v := range m.vertices {
		v.Position = mgl64.TransformCoordinate(v.Position, mat)
		if v.HasNormal {
			v.Normal = safeNormalize(normalMat.Mul3x1(v.Normal))
		}
	}
	if linear.Det() < 0 {
		for _, f := range m.faces {
			slices.Reverse(f.Vertices)
		}
	}
}

// Bounds returns the axis-aligned bounding box of all vertices. An empty
// mesh returns two zero vectors.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	first := true
	for _, v := range m.vertices {
		p := v.Position
		if first {
			lo, hi = p, p
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	return lo, hi
}

// ---------------------------------------------------------------------------
// Contract checks
// ---------------------------------------------------------------------------

func (m *Mesh) mustVertex(id VertexID) *Vertex {
	v, ok := m.vertices[id]
	if !ok {
		panic(fmt.Sprintf("mesh: invalid vertex id %d", id))
	}
	return v
}

func (m *Mesh) mustFace(id FaceID) *Face {
	f, ok := m.faces[id]
	if !ok {
		panic(fmt.Sprintf("mesh: invalid face id %d", id))
	}
	return f
}
