// Package factory builds parametric meshes. Every generator returns a
// brand-new mesh built only through the mesh mutation API, so generated
// meshes satisfy the same invariants as hand-built ones.
//
// All 3D shapes are y-up and centered on the origin. Plane, Circle and
// CircleSection lie in the z = 0 plane facing +z.
package factory

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Factory holds the consolidation settings applied to 3D generators.
// A Factory has no mutable state and is safe for concurrent use.
type Factory struct {
	// Consolidate is passed to Mesh.Consolidate after a 3D shape is built.
	Consolidate mesh.ConsolidateOptions
	// Raw skips consolidation: seam and pole duplicates are kept and no
	// normals are computed.
	Raw bool
}

// New returns a factory that welds with mesh.DefaultWeldTolerance and
// computes area-weighted normals.
func New() Factory {
	return Factory{Consolidate: mesh.DefaultConsolidateOptions()}
}

func (f Factory) finish(m *mesh.Mesh) *mesh.Mesh {
	if !f.Raw {
		m.Consolidate(f.Consolidate)
	}
	return m
}

func precondition(ok bool, format string, args ...any) {
	if !ok {
		panic("factory: " + fmt.Sprintf(format, args...))
	}
}

// unitCircle returns the sine and cosine of step j of n around a full
// turn. j == n maps onto j == 0 so seam columns repeat column 0 exactly.
func unitCircle(j, n int) (sin, cos float64) {
	return math.Sincos(2 * math.Pi * float64(j%n) / float64(n))
}

// ring adds n+1 vertices around the y axis at height y. The last vertex
// duplicates the first position and carries u = 1.
func ring(m *mesh.Mesh, radius, y, v float64, n int) []mesh.VertexID {
	ids := make([]mesh.VertexID, n+1)
	for j := range ids {
		s, c := unitCircle(j, n)
		ids[j] = m.AddVertexUV(
			mgl64.Vec3{radius * c, y, radius * s},
			mgl64.Vec2{float64(j) / float64(n), v},
		)
	}
	return ids
}

// quadStrip joins consecutive rows with quads wound outward for rows
// ordered top to bottom and columns ordered counter-clockwise seen from +y.
func quadStrip(m *mesh.Mesh, rows [][]mesh.VertexID) {
	for i := 0; i+1 < len(rows); i++ {
		top, bottom := rows[i], rows[i+1]
		for j := 0; j+1 < len(top); j++ {
			m.AddFace(top[j], top[j+1], bottom[j+1], bottom[j])
		}
	}
}

// capFan closes a ring with triangles around a center vertex. up selects
// the winding: +y facing for top caps, -y for bottom caps.
func capFan(m *mesh.Mesh, radius, y float64, n int, up bool) {
	center := m.AddVertexUV(mgl64.Vec3{0, y, 0}, mgl64.Vec2{0.5, 0.5})
	rim := make([]mesh.VertexID, n)
	for j := range rim {
		s, c := unitCircle(j, n)
		rim[j] = m.AddVertexUV(
			mgl64.Vec3{radius * c, y, radius * s},
			mgl64.Vec2{0.5 + 0.5*c, 0.5 + 0.5*s},
		)
	}
	for j := range rim {
		a, b := rim[j], rim[(j+1)%n]
		if up {
			m.AddFace(center, b, a)
		} else {
			m.AddFace(center, a, b)
		}
	}
}
