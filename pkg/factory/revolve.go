package factory

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Cone returns a cone of base radius r and the given height, apex up.
// The lateral surface is a fan of lon triangles to the apex; the base is
// closed by a second fan. Welding leaves lon+2 vertices.
func (f Factory) Cone(radius, height float64, lon int) *mesh.Mesh {
	precondition(lon >= 3, "cone needs lon >= 3, got %d", lon)

	m := mesh.New()
	top, bottom := height*0.5, height*-0.5

	apex := make([]mesh.VertexID, lon)
	for j := range apex {
		apex[j] = m.AddVertexUV(mgl64.Vec3{0, top, 0}, mgl64.Vec2{(float64(j) + 0.5) / float64(lon), 0})
	}
	base := ring(m, radius, bottom, 1, lon)
	for j := range apex {
		m.AddFace(apex[j], base[j+1], base[j])
	}
	capFan(m, radius, bottom, lon, false)

	return f.finish(m)
}

// Cylinder returns a closed cylinder with heightSegs bands of lon quads
// and a triangle fan on each end. Welding leaves (heightSegs+1)*lon+2
// vertices.
func (f Factory) Cylinder(radius, height float64, lon, heightSegs int) *mesh.Mesh {
	precondition(lon >= 3 && heightSegs >= 1, "cylinder needs lon >= 3 and heightSegs >= 1, got %d, %d", lon, heightSegs)

	m := mesh.New()
	rows := make([][]mesh.VertexID, heightSegs+1)
	for i := range rows {
		v := float64(i) / float64(heightSegs)
		rows[i] = ring(m, radius, height*(0.5-v), v, lon)
	}
	quadStrip(m, rows)
	capFan(m, radius, height*0.5, lon, true)
	capFan(m, radius, height*-0.5, lon, false)

	return f.finish(m)
}
