// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along
// the longest bounding box axis.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max mgl64.Vec3) {
	bb := s.s.BoundingBox()
	return fromV3(bb.Min), fromV3(bb.Max)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a kernel that meshes at DefaultMeshCells.
func New() *SdfxKernel {
	return NewWithResolution(DefaultMeshCells)
}

// NewWithResolution returns a kernel that meshes with the given number of
// marching cubes cells. Values below 8 are raised to 8.
func NewWithResolution(cells int) *SdfxKernel {
	return &SdfxKernel{cells: max(cells, 8)}
}

// Resolution returns the marching cubes cell count.
func (k *SdfxKernel) Resolution() int {
	return k.cells
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func toV3(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func fromV3(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// yUp turns the z-axis solids sdfx builds into the y-up frame shared with
// the mesh factory.
func yUp(s sdf.SDF3) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))
}

// Box creates a box of the given size centered on the origin.
func (k *SdfxKernel) Box(size mgl64.Vec3) (kernel.Solid, error) {
	s, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx box: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder along the y axis spanning y = ±height/2.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx cylinder: %w", err)
	}
	return wrap(yUp(s)), nil
}

// Cone creates a cone with its base at y = -height/2 and apex at
// y = +height/2.
func (k *SdfxKernel) Cone(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cone3D(height, radius, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx cone: %w", err)
	}
	return wrap(yUp(s)), nil
}

// Torus creates a ring torus around the y axis by revolving a circle.
func (k *SdfxKernel) Torus(radius, tube float64) (kernel.Solid, error) {
	c, err := sdf.Circle2D(tube)
	if err != nil {
		return nil, fmt.Errorf("sdfx torus: %w", err)
	}
	c = sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: radius, Y: 0}))
	s, err := sdf.Revolve3D(c)
	if err != nil {
		return nil, fmt.Errorf("sdfx torus: %w", err)
	}
	return wrap(yUp(s)), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v mgl64.Vec3) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(toV3(v))))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, degrees mgl64.Vec3) kernel.Solid {
	x := mgl64.DegToRad(degrees[0])
	y := mgl64.DegToRad(degrees[1])
	z := mgl64.DegToRad(degrees[2])

	m := sdf.RotateZ(z).Mul(sdf.RotateY(y)).Mul(sdf.RotateX(x))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Scale scales a solid about the origin. Non-uniform scales distort the
// distance field but keep its zero set, which is all meshing needs.
func (k *SdfxKernel) Scale(s kernel.Solid, v mgl64.Vec3) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Scale3d(toV3(v))))
}

// ToMesh converts a solid to a polygon mesh using marching cubes. Each
// triangle becomes a face over three fresh vertices; the soup is then
// welded and given area-weighted normals.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*mesh.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	m := mesh.New()
	if len(triangles) == 0 {
		return m, nil
	}

	for _, tri := range triangles {
		a := m.AddVertex(fromV3(tri[0]))
		b := m.AddVertex(fromV3(tri[1]))
		c := m.AddVertex(fromV3(tri[2]))
		m.AddFace(a, b, c)
	}

	lo, hi := m.Bounds()
	m.Consolidate(kernel.WeldOptions(lo, hi))
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("sdfx mesh: %w", err)
	}
	return m, nil
}
