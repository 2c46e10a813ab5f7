package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/scene"
)

// maxSolidDepth bounds recursion through a boolean subtree; only a cyclic
// scene reaches it.
const maxSolidDepth = 256

var errTooDeep = errors.New("boolean subtree too deep (cycle?)")

// solid converts the subtree rooted at n into a kernel solid in n's local
// frame. Groups become unions of their children.
func (b Builder) solid(s *scene.Scene, n *scene.Node, depth int) (kernel.Solid, error) {
	if depth > maxSolidDepth {
		return nil, errTooDeep
	}

	switch data := n.Data.(type) {
	case scene.PrimitiveData:
		return primitiveSolid(b.Kernel, data)

	case scene.TransformData:
		children := s.Children(n)
		if len(children) != 1 {
			return nil, fmt.Errorf("transform node %s has %d children, want 1", n.Label(), len(children))
		}
		inner, err := b.solid(s, children[0], depth+1)
		if err != nil {
			return nil, err
		}
		if data.Scale != nil {
			inner = b.Kernel.Scale(inner, *data.Scale)
		}
		if data.Rotation != nil {
			inner = b.Kernel.Rotate(inner, *data.Rotation)
		}
		if data.Translation != nil {
			inner = b.Kernel.Translate(inner, *data.Translation)
		}
		return inner, nil

	case scene.GroupData:
		var acc kernel.Solid
		for _, c := range s.Children(n) {
			cs, err := b.solid(s, c, depth+1)
			if err != nil {
				return nil, err
			}
			if acc == nil {
				acc = cs
			} else {
				acc = b.Kernel.Union(acc, cs)
			}
		}
		if acc == nil {
			return nil, fmt.Errorf("group %s is empty", n.Label())
		}
		return acc, nil

	case scene.BooleanData:
		children := s.Children(n)
		if len(children) != 2 {
			return nil, fmt.Errorf("%s node %s has %d operands, want 2", data.Op, n.Label(), len(children))
		}
		a, err := b.solid(s, children[0], depth+1)
		if err != nil {
			return nil, err
		}
		c, err := b.solid(s, children[1], depth+1)
		if err != nil {
			return nil, err
		}
		switch data.Op {
		case scene.OpUnion:
			return b.Kernel.Union(a, c), nil
		case scene.OpDifference:
			return b.Kernel.Difference(a, c), nil
		case scene.OpIntersection:
			return b.Kernel.Intersection(a, c), nil
		}
		return nil, fmt.Errorf("unknown boolean op %d", int(data.Op))

	default:
		return nil, fmt.Errorf("node %s has unsupported data type %T", n.Label(), n.Data)
	}
}

// primitiveSolid builds the kernel counterpart of a generated shape.
func primitiveSolid(k kernel.Kernel, d scene.PrimitiveData) (kernel.Solid, error) {
	switch d.Shape {
	case scene.ShapeBox:
		return k.Box(d.Size)
	case scene.ShapeSphere:
		return k.Sphere(d.Radius)
	case scene.ShapeCylinder:
		return k.Cylinder(d.Height, d.Radius)
	case scene.ShapeCone:
		return k.Cone(d.Height, d.Radius)
	case scene.ShapeTorus:
		return k.Torus(d.Radius, d.Tube)
	default:
		return nil, fmt.Errorf("%s has no solid form", d.Shape)
	}
}
