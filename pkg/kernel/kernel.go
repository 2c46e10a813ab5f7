// Package kernel defines the solid modeling interface used for boolean
// operations. Implementations build implicit or boundary solids and hand
// the result back as a consolidated polygon mesh, so the rest of the
// system only ever sees mesh.Mesh values.
//
// Primitives follow the same frame as the mesh factory: y-up, centered
// on the origin.
package kernel

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Solid is an opaque handle to a kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max mgl64.Vec3)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(size mgl64.Vec3) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Cone(height, radius float64) (Solid, error)
	Torus(radius, tube float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, v mgl64.Vec3) Solid
	Rotate(s Solid, degrees mgl64.Vec3) Solid // x, then y, then z
	Scale(s Solid, v mgl64.Vec3) Solid

	// Mesh output. The returned mesh is welded and carries normals.
	ToMesh(s Solid) (*mesh.Mesh, error)
}

// relativeWeld is the weld tolerance as a fraction of the bounding box
// diagonal.
const relativeWeld = 1e-6

// WeldOptions returns consolidation options suited to a triangle soup
// spanning [lo, hi]. Triangle soups never share vertices, so the
// tolerance scales with the model instead of using the exact default.
func WeldOptions(lo, hi mgl64.Vec3) mesh.ConsolidateOptions {
	opts := mesh.DefaultConsolidateOptions()
	if d := hi.Sub(lo).Len(); d > 0 {
		opts.Tolerance = d * relativeWeld
	}
	opts.DropIsolated = true
	return opts
}
