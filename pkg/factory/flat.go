package factory

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

var up = mgl64.Vec3{0, 0, 1}

// flatVertex adds a z = 0 vertex with a +z normal.
func flatVertex(m *mesh.Mesh, x, y float64, uv mgl64.Vec2) mesh.VertexID {
	id := m.AddVertexUV(mgl64.Vec3{x, y, 0}, uv)
	m.SetNormal(id, up)
	return id
}

// Plane returns a width x height grid centered on the origin with nx
// vertices along x and ny along y. Vertex (ix, iy) has ID iy*nx+ix, so
// Plane(w, h, 2, 2) is the single quad [0 1 3 2].
//
// Flat shapes carry their normals already and are never consolidated.
func (f Factory) Plane(width, height float64, nx, ny int) *mesh.Mesh {
	precondition(nx >= 2 && ny >= 2, "plane needs nx >= 2 and ny >= 2, got %d, %d", nx, ny)

	m := mesh.New()
	grid := make([][]mesh.VertexID, ny)
	for iy := range grid {
		v := float64(iy) / float64(ny-1)
		grid[iy] = make([]mesh.VertexID, nx)
		for ix := range grid[iy] {
			u := float64(ix) / float64(nx-1)
			grid[iy][ix] = flatVertex(m, width*(u-0.5), height*(v-0.5), mgl64.Vec2{u, v})
		}
	}
	for iy := 0; iy+1 < ny; iy++ {
		for ix := 0; ix+1 < nx; ix++ {
			m.AddFace(grid[iy][ix], grid[iy][ix+1], grid[iy+1][ix+1], grid[iy+1][ix])
		}
	}
	return m
}

// Circle returns a disk as a closed fan of segments triangles around a
// center vertex.
func (f Factory) Circle(radius float64, segments int) *mesh.Mesh {
	precondition(segments >= 3, "circle needs segments >= 3, got %d", segments)

	m := mesh.New()
	center := flatVertex(m, 0, 0, mgl64.Vec2{0.5, 0.5})
	rim := make([]mesh.VertexID, segments)
	for j := range rim {
		s, c := unitCircle(j, segments)
		rim[j] = flatVertex(m, radius*c, radius*s, mgl64.Vec2{0.5 + 0.5*c, 0.5 + 0.5*s})
	}
	for j := range rim {
		m.AddFace(center, rim[j], rim[(j+1)%segments])
	}
	return m
}

// CircleSection returns a pie slice subtending angle radians from the +x
// axis, as an open fan of segments triangles.
func (f Factory) CircleSection(radius, angle float64, segments int) *mesh.Mesh {
	precondition(segments >= 1, "circle section needs segments >= 1, got %d", segments)
	precondition(angle > 0 && angle <= 2*math.Pi, "circle section angle %g outside (0, 2π]", angle)

	m := mesh.New()
	center := flatVertex(m, 0, 0, mgl64.Vec2{0.5, 0.5})
	rim := make([]mesh.VertexID, segments+1)
	for j := range rim {
		s, c := math.Sincos(angle * float64(j) / float64(segments))
		rim[j] = flatVertex(m, radius*c, radius*s, mgl64.Vec2{0.5 + 0.5*c, 0.5 + 0.5*s})
	}
	for j := 0; j < segments; j++ {
		m.AddFace(center, rim[j], rim[j+1])
	}
	return m
}
