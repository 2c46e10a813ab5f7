// Package tessellate walks a scene and produces one polygon mesh per
// part. Plain primitives come from the mesh factory; boolean subtrees are
// evaluated by a geometry kernel. Placement transforms accumulate into a
// world matrix applied to each finished mesh.
package tessellate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/factory"
	"github.com/chazu/polymesh/pkg/kernel"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/scene"
)

// Part is one mesh produced from the scene.
type Part struct {
	Name string
	Node scene.NodeID
	Mesh *mesh.Mesh
}

// transformStack accumulates world matrices during scene traversal.
type transformStack struct {
	mats []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{mats: []mgl64.Mat4{mgl64.Ident4()}}
}

func (ts *transformStack) push(local mgl64.Mat4) {
	ts.mats = append(ts.mats, ts.top().Mul4(local))
}

func (ts *transformStack) pop() {
	if len(ts.mats) > 1 {
		ts.mats = ts.mats[:len(ts.mats)-1]
	}
}

func (ts *transformStack) top() mgl64.Mat4 {
	return ts.mats[len(ts.mats)-1]
}

// Builder holds what a traversal needs. Kernel may be nil when the scene
// has no boolean nodes.
type Builder struct {
	Factory factory.Factory
	Kernel  kernel.Kernel
}

// Build walks every root of s and returns its parts in traversal order.
// The builder is read-only and never mutates the scene. A node reached
// through several paths yields one part per path.
func (b Builder) Build(s *scene.Scene) ([]Part, error) {
	if s == nil {
		return nil, nil
	}

	var parts []Part
	ts := newTransformStack()

	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := b.walkNode(s, root, ts)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		parts = append(parts, collected...)
	}

	return parts, nil
}

// walkNode recursively traverses a node and its children, collecting parts.
func (b Builder) walkNode(s *scene.Scene, n *scene.Node, ts *transformStack) ([]Part, error) {
	switch n.Kind {
	case scene.NodePrimitive:
		return b.handlePrimitive(s, n, ts)

	case scene.NodeTransform:
		return b.handleTransform(s, n, ts)

	case scene.NodeGroup:
		return b.handleGroup(s, n, ts)

	case scene.NodeBoolean:
		return b.handleBoolean(s, n, ts)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handlePrimitive generates the node's mesh and moves it into place.
func (b Builder) handlePrimitive(s *scene.Scene, n *scene.Node, ts *transformStack) ([]Part, error) {
	data, ok := n.Data.(scene.PrimitiveData)
	if !ok {
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	m, err := Generate(b.Factory, data.WithDefaults(s.Defaults))
	if err != nil {
		return nil, fmt.Errorf("primitive node %s: %w", n.Label(), err)
	}
	m.Transform(ts.top())

	return []Part{{Name: n.Label(), Node: n.ID, Mesh: m}}, nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func (b Builder) handleTransform(s *scene.Scene, n *scene.Node, ts *transformStack) ([]Part, error) {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	ts.push(td.Matrix())
	defer ts.pop()

	var parts []Part
	for _, child := range s.Children(n) {
		collected, err := b.walkNode(s, child, ts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// handleGroup recurses into children transparently.
func (b Builder) handleGroup(s *scene.Scene, n *scene.Node, ts *transformStack) ([]Part, error) {
	var parts []Part
	for _, child := range s.Children(n) {
		collected, err := b.walkNode(s, child, ts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// handleBoolean evaluates the whole subtree in the kernel and emits a
// single part for it.
func (b Builder) handleBoolean(s *scene.Scene, n *scene.Node, ts *transformStack) ([]Part, error) {
	if b.Kernel == nil {
		return nil, fmt.Errorf("boolean node %s: no geometry kernel configured", n.Label())
	}

	solid, err := b.solid(s, n, 0)
	if err != nil {
		return nil, fmt.Errorf("boolean node %s: %w", n.Label(), err)
	}
	m, err := b.Kernel.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	m.Transform(ts.top())

	return []Part{{Name: n.Label(), Node: n.ID, Mesh: m}}, nil
}
