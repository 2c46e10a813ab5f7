package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// newell returns the Newell normal of a polygon loop. Its length is twice
// the polygon area, so it doubles as an area-weighted normal.
func (m *Mesh) newell(loop []VertexID) mgl64.Vec3 {
	var n mgl64.Vec3
	for i, vid := range loop {
		cur := m.vertices[vid].Position
		next := m.vertices[loop[(i+1)%len(loop)]].Position
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	return n
}

// FaceNormal returns the unit normal of a face, following the loop's
// counter-clockwise winding. Degenerate faces yield the zero vector.
func (m *Mesh) FaceNormal(id FaceID) mgl64.Vec3 {
	return safeNormalize(m.newell(m.mustFace(id).Vertices))
}

// FaceArea returns the area of a planar face.
func (m *Mesh) FaceArea(id FaceID) float64 {
	return m.newell(m.mustFace(id).Vertices).Len() / 2
}

// FaceCentroid returns the average of the face's vertex positions.
func (m *Mesh) FaceCentroid(id FaceID) mgl64.Vec3 {
	loop := m.mustFace(id).Vertices
	var c mgl64.Vec3
	for _, vid := range loop {
		c = c.Add(m.vertices[vid].Position)
	}
	return c.Mul(1 / float64(len(loop)))
}

// cornerAngle returns the interior angle of the loop at index i.
func (m *Mesh) cornerAngle(loop []VertexID, i int) float64 {
	n := len(loop)
	p := m.vertices[loop[i]].Position
	a := m.vertices[loop[(i+n-1)%n]].Position.Sub(p)
	b := m.vertices[loop[(i+1)%n]].Position.Sub(p)
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
