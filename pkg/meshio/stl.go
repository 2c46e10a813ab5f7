package meshio

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Triangles fan-triangulates every face of m into sdfx triangles, in
// ascending face ID order.
func Triangles(m *mesh.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, m.NumFaces())
	for _, f := range m.Faces() {
		p0 := toV3(m.Position(f.Vertices[0]))
		for i := 1; i+1 < len(f.Vertices); i++ {
			tris = append(tris, &sdf.Triangle3{
				p0,
				toV3(m.Position(f.Vertices[i])),
				toV3(m.Position(f.Vertices[i+1])),
			})
		}
	}
	return tris
}

// WriteSTL saves m as a binary STL file. STL carries positions only, so
// normals and texture coordinates are dropped.
func WriteSTL(path string, m *mesh.Mesh) error {
	if m.NumFaces() == 0 {
		return fmt.Errorf("meshio: %s: mesh has no faces", path)
	}
	if err := render.SaveSTL(path, Triangles(m)); err != nil {
		return fmt.Errorf("meshio: writing stl: %w", err)
	}
	return nil
}

func toV3(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
