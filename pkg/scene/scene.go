package scene

import (
	"cmp"
	"fmt"
	"slices"
)

// Defaults are the subdivision counts used when a script leaves them out.
type Defaults struct {
	Lat      int `json:"lat" toml:"lat"`
	Lon      int `json:"lon" toml:"lon"`
	Segments int `json:"segments" toml:"segments"`
}

// DefaultDefaults returns the built-in subdivision counts.
func DefaultDefaults() Defaults {
	return Defaults{Lat: 16, Lon: 32, Segments: 32}
}

// Scene is the top-level immutable data structure produced by evaluation.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  Defaults          `json:"defaults"`
}

// New creates an empty Scene with the built-in defaults.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults:  DefaultDefaults(),
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root. Adding the same root twice is a
// no-op.
func (s *Scene) AddRoot(id NodeID) {
	if !slices.Contains(s.Roots, id) {
		s.Roots = append(s.Roots, id)
	}
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Primitives returns all primitive nodes, sorted by label.
func (s *Scene) Primitives() []*Node {
	var prims []*Node
	for _, n := range s.Nodes {
		if n.Kind == NodePrimitive {
			prims = append(prims, n)
		}
	}
	slices.SortFunc(prims, func(a, b *Node) int {
		return cmp.Compare(a.Label(), b.Label())
	})
	return prims
}

// Children returns the child nodes of n, skipping dangling references.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}
