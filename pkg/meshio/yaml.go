package meshio

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/chazu/polymesh/pkg/mesh"
)

// YAMLOptions controls WriteYAML.
type YAMLOptions struct {
	// PreserveIDs writes vertex and face IDs plus the allocation
	// watermarks, and makes faces reference vertices by ID. Without it
	// vertices are referenced by list position and IDs are renumbered
	// densely on read.
	PreserveIDs bool
}

// Document is the YAML form of a mesh.
type Document struct {
	IDs        bool          `yaml:"ids,omitempty"`
	NextVertex uint32        `yaml:"next_vertex,omitempty"`
	NextFace   uint32        `yaml:"next_face,omitempty"`
	Vertices   []VertexEntry `yaml:"vertices"`
	Faces      []FaceEntry   `yaml:"faces"`
}

// VertexEntry is one vertex record. Normal and UV are omitted when the
// vertex has none.
type VertexEntry struct {
	ID       *uint32     `yaml:"id,omitempty"`
	Position [3]float64  `yaml:"position,flow"`
	Normal   *[3]float64 `yaml:"normal,omitempty,flow"`
	UV       *[2]float64 `yaml:"uv,omitempty,flow"`
}

// FaceEntry is one face record.
type FaceEntry struct {
	ID       *uint32  `yaml:"id,omitempty"`
	Vertices []uint32 `yaml:"vertices,flow"`
}

// EncodeDocument converts m to its YAML document form.
func EncodeDocument(m *mesh.Mesh, opts YAMLOptions) Document {
	doc := Document{
		IDs:      opts.PreserveIDs,
		Vertices: make([]VertexEntry, 0, m.NumVertices()),
		Faces:    make([]FaceEntry, 0, m.NumFaces()),
	}
	if opts.PreserveIDs {
		doc.NextVertex = uint32(m.NextVertexID())
		doc.NextFace = uint32(m.NextFaceID())
	}

	ref := make(map[mesh.VertexID]uint32, m.NumVertices())
	for id, v := range m.Vertices() {
		e := VertexEntry{Position: [3]float64(v.Position)}
		if opts.PreserveIDs {
			raw := uint32(id)
			e.ID = &raw
			ref[id] = raw
		} else {
			ref[id] = uint32(len(doc.Vertices))
		}
		if v.HasNormal {
			n := [3]float64(v.Normal)
			e.Normal = &n
		}
		if v.HasTexCoord {
			uv := [2]float64(v.TexCoord)
			e.UV = &uv
		}
		doc.Vertices = append(doc.Vertices, e)
	}

	for id, f := range m.Faces() {
		e := FaceEntry{Vertices: make([]uint32, len(f.Vertices))}
		for i, vid := range f.Vertices {
			e.Vertices[i] = ref[vid]
		}
		if opts.PreserveIDs {
			raw := uint32(id)
			e.ID = &raw
		}
		doc.Faces = append(doc.Faces, e)
	}
	return doc
}

// WriteYAML encodes m as a YAML document.
func WriteYAML(w io.Writer, m *mesh.Mesh, opts YAMLOptions) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(EncodeDocument(m, opts)); err != nil {
		return fmt.Errorf("meshio: encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("meshio: encoding yaml: %w", err)
	}
	return nil
}

// ReadYAML decodes a document written by WriteYAML. Whether IDs are
// restored is decided by the document itself.
func ReadYAML(r io.Reader) (*mesh.Mesh, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return mesh.New(), nil
		}
		return nil, fmt.Errorf("meshio: decoding yaml: %w", err)
	}
	m, err := doc.Mesh()
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	return m, nil
}

// Mesh builds a mesh from the document. Malformed input is reported as an
// error rather than a panic.
func (doc Document) Mesh() (*mesh.Mesh, error) {
	if doc.IDs {
		return doc.meshWithIDs()
	}

	m := mesh.New()
	ids := make([]mesh.VertexID, len(doc.Vertices))
	for i, e := range doc.Vertices {
		ids[i] = addVertexEntry(m, e, nil)
	}
	for i, f := range doc.Faces {
		loop, err := resolveLoop(f.Vertices, func(ref uint32) (mesh.VertexID, bool) {
			if int(ref) >= len(ids) {
				return 0, false
			}
			return ids[ref], true
		})
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		m.AddFace(loop...)
	}
	return m, nil
}

func (doc Document) meshWithIDs() (*mesh.Mesh, error) {
	verts := slices.Clone(doc.Vertices)
	for i, e := range verts {
		if e.ID == nil {
			return nil, fmt.Errorf("vertex %d has no id", i)
		}
		if mesh.VertexID(*e.ID) == mesh.InvalidVertexID {
			return nil, fmt.Errorf("vertex %d uses the reserved id", i)
		}
	}
	slices.SortStableFunc(verts, func(a, b VertexEntry) int { return cmp.Compare(*a.ID, *b.ID) })
	for i := 1; i < len(verts); i++ {
		if *verts[i].ID == *verts[i-1].ID {
			return nil, fmt.Errorf("duplicate vertex id %d", *verts[i].ID)
		}
	}

	faces := slices.Clone(doc.Faces)
	for i, f := range faces {
		if f.ID == nil {
			return nil, fmt.Errorf("face %d has no id", i)
		}
		if mesh.FaceID(*f.ID) == mesh.InvalidFaceID {
			return nil, fmt.Errorf("face %d uses the reserved id", i)
		}
	}
	slices.SortStableFunc(faces, func(a, b FaceEntry) int { return cmp.Compare(*a.ID, *b.ID) })
	for i := 1; i < len(faces); i++ {
		if *faces[i].ID == *faces[i-1].ID {
			return nil, fmt.Errorf("duplicate face id %d", *faces[i].ID)
		}
	}

	m := mesh.New()
	for _, e := range verts {
		id := mesh.VertexID(*e.ID)
		addVertexEntry(m, e, &id)
	}
	for _, f := range faces {
		loop, err := resolveLoop(f.Vertices, func(ref uint32) (mesh.VertexID, bool) {
			id := mesh.VertexID(ref)
			return id, m.IsValidVertex(id)
		})
		if err != nil {
			return nil, fmt.Errorf("face id %d: %w", *f.ID, err)
		}
		m.AddFaceWithID(mesh.FaceID(*f.ID), loop...)
	}
	m.Reserve(mesh.VertexID(doc.NextVertex), mesh.FaceID(doc.NextFace))
	return m, nil
}

func addVertexEntry(m *mesh.Mesh, e VertexEntry, id *mesh.VertexID) mesh.VertexID {
	pos := mgl64.Vec3(e.Position)
	var vid mesh.VertexID
	if id != nil {
		vid = *id
		m.AddVertexWithID(vid, pos)
	} else {
		vid = m.AddVertex(pos)
	}
	if e.Normal != nil {
		m.SetNormal(vid, mgl64.Vec3(*e.Normal))
	}
	if e.UV != nil {
		m.SetTexCoord(vid, mgl64.Vec2(*e.UV))
	}
	return vid
}

// resolveLoop maps face references to vertex IDs and checks the loop is a
// valid polygon.
func resolveLoop(refs []uint32, lookup func(uint32) (mesh.VertexID, bool)) ([]mesh.VertexID, error) {
	if len(refs) < 3 {
		return nil, fmt.Errorf("has %d vertices, need at least 3", len(refs))
	}
	loop := make([]mesh.VertexID, len(refs))
	seen := make(map[mesh.VertexID]bool, len(refs))
	for i, ref := range refs {
		id, ok := lookup(ref)
		if !ok {
			return nil, fmt.Errorf("references unknown vertex %d", ref)
		}
		if seen[id] {
			return nil, fmt.Errorf("repeats vertex %d", ref)
		}
		seen[id] = true
		loop[i] = id
	}
	return loop, nil
}
