package tessellate

import (
	"fmt"

	"github.com/chazu/polymesh/pkg/factory"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/scene"
)

// Generate builds the mesh for one primitive with the given factory. The
// factory panics on contract violations; Generate turns such a panic into
// an error so a bad script cannot take the process down.
func Generate(f factory.Factory, d scene.PrimitiveData) (m *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("generating %s: %v", d.Shape, r)
		}
	}()

	switch d.Shape {
	case scene.ShapeBox:
		return f.Box(d.Size), nil
	case scene.ShapeSphere:
		return f.Sphere(d.Radius, d.Lat, d.Lon), nil
	case scene.ShapeHemisphere:
		return f.Hemisphere(d.Radius, d.Lat, d.Lon), nil
	case scene.ShapeCone:
		return f.Cone(d.Radius, d.Height, d.Lon), nil
	case scene.ShapeCylinder:
		return f.Cylinder(d.Radius, d.Height, d.Lon, d.Segments), nil
	case scene.ShapeCapsule:
		return f.Capsule(d.Radius, d.Length, d.Lat, d.Lon), nil
	case scene.ShapeTorus:
		return f.Torus(d.Radius, d.Tube, d.Radial, d.Tubular), nil
	case scene.ShapePlane:
		return f.Plane(d.Width, d.Height, d.NX, d.NY), nil
	case scene.ShapeCircle:
		return f.Circle(d.Radius, d.Segments), nil
	case scene.ShapeCircleSection:
		return f.CircleSection(d.Radius, d.Angle, d.Segments), nil
	default:
		return nil, fmt.Errorf("unknown shape %d", int(d.Shape))
	}
}
