package factory

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Torus returns a ring torus lying in the xz plane. radius is the distance
// from the origin to the tube center and tube the tube radius. The grid is
// periodic in both directions: radial*tubular vertices, one quad per
// vertex, and no seam duplicates to weld.
//
// Vertex (i, j) is added i*tubular+j-th, where i runs around the ring and
// j around the tube.
func (f Factory) Torus(radius, tube float64, radial, tubular int) *mesh.Mesh {
	precondition(radial >= 3 && tubular >= 3, "torus needs radial >= 3 and tubular >= 3, got %d, %d", radial, tubular)

	m := mesh.New()
	grid := make([][]mesh.VertexID, radial)
	for i := range grid {
		sp, cp := unitCircle(i, radial)
		grid[i] = make([]mesh.VertexID, tubular)
		for j := range grid[i] {
			st, ct := unitCircle(j, tubular)
			d := radius + tube*ct
			grid[i][j] = m.AddVertexUV(
				mgl64.Vec3{d * cp, tube * st, d * sp},
				mgl64.Vec2{float64(i) / float64(radial), float64(j) / float64(tubular)},
			)
		}
	}

	for i := range grid {
		next := grid[(i+1)%radial]
		for j := range grid[i] {
			k := (j + 1) % tubular
			m.AddFace(grid[i][j], grid[i][k], next[k], next[j])
		}
	}

	return f.finish(m)
}
