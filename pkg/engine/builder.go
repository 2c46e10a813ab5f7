package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/polymesh/pkg/scene"
)

// builder accumulates the scene for one evaluation. Anonymous node IDs
// come from a per-evaluation counter, so the same source always yields
// the same IDs.
type builder struct {
	scene    *scene.Scene
	anon     int
	order    []scene.NodeID
	parented map[scene.NodeID]bool
}

func newBuilder(s *scene.Scene) *builder {
	return &builder{scene: s, parented: make(map[scene.NodeID]bool)}
}

// nextID returns a fresh deterministic ID under prefix.
func (b *builder) nextID(prefix string) scene.NodeID {
	b.anon++
	return scene.NewNodeID(fmt.Sprintf("%s/_anon_%d", prefix, b.anon))
}

// add stores n and records its children as referenced.
func (b *builder) add(n *scene.Node) scene.NodeID {
	b.scene.AddNode(n)
	b.order = append(b.order, n.ID)
	for _, c := range n.Children {
		b.parented[c] = true
	}
	return n.ID
}

// ref resolves a builtin argument to a node. An unnamed shape expression
// becomes an anonymous primitive node.
func (b *builder) ref(s zygo.Sexp) (scene.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *sexpShape:
		return b.add(&scene.Node{
			ID:   b.nextID("shape/" + v.data.Shape.String()),
			Kind: scene.NodePrimitive,
			Data: v.data,
		}), nil
	}
	return scene.ZeroID, fmt.Errorf("expected mesh reference or shape, got %T (%s)", s, s.SexpString(nil))
}

func (b *builder) label(id scene.NodeID) string {
	if n := b.scene.Get(id); n != nil {
		return n.Label()
	}
	return id.Short()
}

// optionalName reads a :name keyword and checks it is free.
func (b *builder) optionalName(pa kwArgs, fn string) (string, error) {
	v, ok := pa.kw["name"]
	if !ok {
		return "", nil
	}
	name, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	if b.scene.Lookup(name) != nil {
		return "", fmt.Errorf("%s: %q is already defined", fn, name)
	}
	return name, nil
}

// finish picks roots for scripts that never call (scene ...): every node
// nothing else references becomes a root, in creation order.
func (b *builder) finish() {
	if len(b.scene.Roots) > 0 {
		return
	}
	for _, id := range b.order {
		if !b.parented[id] {
			b.scene.AddRoot(id)
		}
	}
}
