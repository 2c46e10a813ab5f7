package scene

import (
	"fmt"
	"maps"
	"slices"
)

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks and returns every finding. An empty
// slice means the scene is well formed. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateArity(s)...)
	return errs
}

// ValidateAll runs structural and geometric checks and separates errors
// from warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	all := append(Validate(s), validateGeometry(s)...)
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

func (s *Scene) sortedIDs() []NodeID {
	return slices.Sorted(maps.Keys(s.Nodes))
}

// validateDAG checks for cycles using DFS with 3-color marking.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // reports whether a cycle was found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := s.Nodes[id]
		if !ok {
			// Dangling; reported by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range s.sortedIDs() {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference resolves.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.sortedIDs() {
		for _, childID := range s.Nodes[id].Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective and that every
// entry points to an existing node.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, name := range slices.Sorted(maps.Keys(s.NameIndex)) {
		id := s.NameIndex[name]
		if _, ok := s.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	byName := make(map[string]int)
	for _, n := range s.Nodes {
		if n.Name != "" {
			byName[n.Name]++
		}
	}
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		if c := byName[name]; c > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, c),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root exists and warns about nodes that
// no root reaches.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range s.Roots {
		if _, ok := s.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		n := s.Nodes[queue[0]]
		queue = queue[1:]
		if n == nil {
			continue
		}
		for _, childID := range n.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for _, id := range s.sortedIDs() {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", s.Nodes[id].Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateArity checks child counts and payload types per node kind.
func validateArity(s *Scene) []ValidationError {
	var errs []ValidationError
	add := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: n.ID, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}

	for _, id := range s.sortedIDs() {
		n := s.Nodes[id]
		switch n.Kind {
		case NodePrimitive:
			if _, ok := n.Data.(PrimitiveData); !ok {
				add(n, "primitive node carries %T", n.Data)
			}
			if len(n.Children) != 0 {
				add(n, "primitive node has %d children", len(n.Children))
			}
		case NodeTransform:
			if _, ok := n.Data.(TransformData); !ok {
				add(n, "transform node carries %T", n.Data)
			}
			if len(n.Children) != 1 {
				add(n, "transform node has %d children, want 1", len(n.Children))
			}
		case NodeBoolean:
			if _, ok := n.Data.(BooleanData); !ok {
				add(n, "boolean node carries %T", n.Data)
			}
			if len(n.Children) != 2 {
				add(n, "boolean node has %d children, want 2", len(n.Children))
			}
		case NodeGroup:
			if _, ok := n.Data.(GroupData); !ok {
				add(n, "group node carries %T", n.Data)
			}
		default:
			add(n, "unknown node kind %d", int(n.Kind))
		}
	}
	return errs
}
