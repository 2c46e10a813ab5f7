package mesh

import "fmt"

// NeighborFaceCirculator walks the faces incident to one vertex. It
// borrows the mesh: the mesh must outlive the circulator and must not be
// edited while the circulator is in use.
//
// The walk is finite. Next past the last face and Prev before the first
// face leave the circulator invalid, and an invalid circulator stays
// invalid until Reset.
type NeighborFaceCirculator struct {
	mesh   *Mesh
	vertex VertexID
	pos    int
}

// NewNeighborFaceCirculator returns a circulator positioned on the first
// neighbor face of v. It starts invalid if v is not a live vertex or has
// no incident faces.
func NewNeighborFaceCirculator(m *Mesh, v VertexID) NeighborFaceCirculator {
	return NeighborFaceCirculator{mesh: m, vertex: v}
}

func (c *NeighborFaceCirculator) faces() []FaceID {
	if c.mesh == nil {
		return nil
	}
	v, ok := c.mesh.vertices[c.vertex]
	if !ok {
		return nil
	}
	return v.NeighborFaces
}

// Vertex returns the vertex being circulated.
func (c *NeighborFaceCirculator) Vertex() VertexID {
	return c.vertex
}

// IsValid reports whether the circulator points at a face.
func (c *NeighborFaceCirculator) IsValid() bool {
	return c.pos >= 0 && c.pos < len(c.faces())
}

// FaceID returns the current face. Calling it on an invalid circulator
// panics.
func (c *NeighborFaceCirculator) FaceID() FaceID {
	if !c.IsValid() {
		panic(fmt.Sprintf("mesh: dereferencing invalid circulator on vertex %d", c.vertex))
	}
	return c.faces()[c.pos]
}

// Next advances to the following neighbor face.
func (c *NeighborFaceCirculator) Next() {
	if c.IsValid() {
		c.pos++
	}
}

// Prev steps back one neighbor face. From past-the-end it returns to the
// last face; from the first face it becomes invalid.
func (c *NeighborFaceCirculator) Prev() {
	n := len(c.faces())
	switch {
	case c.pos == n && n > 0:
		c.pos = n - 1
	case c.IsValid():
		c.pos--
	}
}

// Reset rewinds to the first neighbor face.
func (c *NeighborFaceCirculator) Reset() {
	c.pos = 0
}

// Equal compares logical positions. Two invalid circulators are equal.
func (c *NeighborFaceCirculator) Equal(o NeighborFaceCirculator) bool {
	cv, ov := c.IsValid(), o.IsValid()
	if !cv || !ov {
		return cv == ov
	}
	return c.mesh == o.mesh && c.vertex == o.vertex && c.pos == o.pos
}
