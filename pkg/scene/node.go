package scene

// NodeKind enumerates the types of nodes in a scene.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // generated shape (sphere, box, ...)
	NodeTransform                 // placement (place)
	NodeGroup                     // named collection of parts (scene)
	NodeBoolean                   // CSG combination of exactly two children
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	case NodeBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of a scene.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Label returns the node's name, or its short ID when it has none.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
