package mesh

import (
	"errors"
	"fmt"
	"slices"
)

// InvariantError describes one broken mesh invariant.
type InvariantError struct {
	Vertex  VertexID // InvalidVertexID if not vertex-specific
	Face    FaceID   // InvalidFaceID if not face-specific
	Message string
}

func (e InvariantError) Error() string {
	switch {
	case e.Vertex != InvalidVertexID && e.Face != InvalidFaceID:
		return fmt.Sprintf("vertex %d / face %d: %s", e.Vertex, e.Face, e.Message)
	case e.Vertex != InvalidVertexID:
		return fmt.Sprintf("vertex %d: %s", e.Vertex, e.Message)
	case e.Face != InvalidFaceID:
		return fmt.Sprintf("face %d: %s", e.Face, e.Message)
	default:
		return e.Message
	}
}

// Validate checks referential integrity, adjacency symmetry, face arity
// and ID bounds. It returns nil for a consistent mesh, otherwise the
// errors.Join of every InvariantError found. It never mutates the mesh.
func (m *Mesh) Validate() error {
	var errs []error
	errs = append(errs, m.validateFaces()...)
	errs = append(errs, m.validateNeighbors()...)
	return errors.Join(errs...)
}

func (m *Mesh) validateFaces() []error {
	var errs []error
	for _, fid := range m.FaceIDs() {
		if fid >= m.nextFace {
			errs = append(errs, InvariantError{InvalidVertexID, fid, fmt.Sprintf("id beyond allocation watermark %d", m.nextFace)})
		}
		loop := m.faces[fid].Vertices
		if len(loop) < 3 {
			errs = append(errs, InvariantError{InvalidVertexID, fid, fmt.Sprintf("loop has %d vertices", len(loop))})
		}
		for i, vid := range loop {
			v, ok := m.vertices[vid]
			if !ok {
				errs = append(errs, InvariantError{vid, fid, "face references missing vertex"})
				continue
			}
			if slices.Contains(loop[:i], vid) {
				errs = append(errs, InvariantError{vid, fid, "vertex repeated in loop"})
				continue
			}
			if !slices.Contains(v.NeighborFaces, fid) {
				errs = append(errs, InvariantError{vid, fid, "face missing from vertex neighbor list"})
			}
		}
	}
	return errs
}

func (m *Mesh) validateNeighbors() []error {
	var errs []error
	for _, vid := range m.VertexIDs() {
		if vid >= m.nextVertex {
			errs = append(errs, InvariantError{vid, InvalidFaceID, fmt.Sprintf("id beyond allocation watermark %d", m.nextVertex)})
		}
		nbrs := m.vertices[vid].NeighborFaces
		for i, fid := range nbrs {
			if slices.Contains(nbrs[:i], fid) {
				errs = append(errs, InvariantError{vid, fid, "duplicate neighbor face"})
				continue
			}
			f, ok := m.faces[fid]
			if !ok {
				errs = append(errs, InvariantError{vid, fid, "neighbor list references missing face"})
				continue
			}
			if !slices.Contains(f.Vertices, vid) {
				errs = append(errs, InvariantError{vid, fid, "neighbor face does not contain vertex"})
			}
		}
	}
	return errs
}
