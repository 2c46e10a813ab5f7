// Package meshio reads and writes meshes in interchange formats: Wavefront
// OBJ, binary STL and a YAML document that can carry vertex and face IDs.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteOBJ writes m as Wavefront OBJ. Vertices are numbered densely in
// ascending ID order. Texture coordinates and normals are written only for
// vertices that carry them.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	index := make(map[mesh.VertexID]int, m.NumVertices())
	tex := make(map[mesh.VertexID]int)
	norm := make(map[mesh.VertexID]int)

	fmt.Fprintf(bw, "# %d vertices, %d faces\n", m.NumVertices(), m.NumFaces())
	for id, v := range m.Vertices() {
		index[id] = len(index) + 1
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v.Position[0]), formatFloat(v.Position[1]), formatFloat(v.Position[2]))
	}
	for id, v := range m.Vertices() {
		if v.HasTexCoord {
			tex[id] = len(tex) + 1
			fmt.Fprintf(bw, "vt %s %s\n", formatFloat(v.TexCoord[0]), formatFloat(v.TexCoord[1]))
		}
	}
	for id, v := range m.Vertices() {
		if v.HasNormal {
			norm[id] = len(norm) + 1
			fmt.Fprintf(bw, "vn %s %s %s\n", formatFloat(v.Normal[0]), formatFloat(v.Normal[1]), formatFloat(v.Normal[2]))
		}
	}

	for _, f := range m.Faces() {
		bw.WriteString("f")
		for _, vid := range f.Vertices {
			t, hasT := tex[vid]
			n, hasN := norm[vid]
			switch {
			case hasT && hasN:
				fmt.Fprintf(bw, " %d/%d/%d", index[vid], t, n)
			case hasT:
				fmt.Fprintf(bw, " %d/%d", index[vid], t)
			case hasN:
				fmt.Fprintf(bw, " %d//%d", index[vid], n)
			default:
				fmt.Fprintf(bw, " %d", index[vid])
			}
		}
		bw.WriteString("\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("meshio: writing obj: %w", err)
	}
	return nil
}

// objKey is one distinct position/texcoord/normal triple referenced by a
// face corner. Absent components are -1.
type objKey struct {
	v, t, n int
}

type objReader struct {
	positions []mgl64.Vec3
	texcoords []mgl64.Vec2
	normals   []mgl64.Vec3

	m       *mesh.Mesh
	corners map[objKey]mesh.VertexID
	used    []bool
}

// ReadOBJ parses Wavefront OBJ geometry. Every distinct combination of
// position, texture coordinate and normal referenced by a face becomes one
// mesh vertex. Positions that no face references are kept as isolated
// vertices. Grouping, smoothing and material statements are ignored.
func ReadOBJ(r io.Reader) (*mesh.Mesh, error) {
	or := &objReader{
		m:       mesh.New(),
		corners: make(map[objKey]mesh.VertexID),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := or.statement(fields); err != nil {
			return nil, fmt.Errorf("meshio: obj line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("meshio: reading obj: %w", err)
	}

	for i, p := range or.positions {
		if i >= len(or.used) || !or.used[i] {
			or.m.AddVertex(p)
		}
	}
	return or.m, nil
}

func (or *objReader) statement(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		or.positions = append(or.positions, mgl64.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		or.texcoords = append(or.texcoords, mgl64.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		or.normals = append(or.normals, mgl64.Vec3{v[0], v[1], v[2]})
	case "f":
		return or.face(fields[1:])
	case "o", "g", "s", "usemtl", "mtllib", "vp", "l", "p":
	default:
		return fmt.Errorf("unknown statement %q", fields[0])
	}
	return nil
}

// parseFloats reads at least want numbers. Extra components such as the
// optional w of a position are ignored.
func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d numbers, got %d", want, len(fields))
	}
	out := make([]float64, want)
	for i := range want {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = f
	}
	return out, nil
}

// resolveIndex turns a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(s string, count int, what string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad %s index %q", what, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("%s index %d out of range (have %d)", what, i, count)
}

func (or *objReader) corner(tok string) (objKey, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return objKey{}, fmt.Errorf("bad face corner %q", tok)
	}
	key := objKey{t: -1, n: -1}
	var err error
	if key.v, err = resolveIndex(parts[0], len(or.positions), "vertex"); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.t, err = resolveIndex(parts[1], len(or.texcoords), "texcoord"); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.n, err = resolveIndex(parts[2], len(or.normals), "normal"); err != nil {
			return key, err
		}
	}
	return key, nil
}

func (or *objReader) face(tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("face has %d vertices, need at least 3", len(tokens))
	}
	keys := make([]objKey, len(tokens))
	seen := make(map[objKey]bool, len(tokens))
	for i, tok := range tokens {
		k, err := or.corner(tok)
		if err != nil {
			return err
		}
		if seen[k] {
			return fmt.Errorf("face repeats corner %q", tok)
		}
		seen[k] = true
		keys[i] = k
	}

	ids := make([]mesh.VertexID, len(keys))
	for i, k := range keys {
		ids[i] = or.vertexFor(k)
	}
	or.m.AddFace(ids...)
	return nil
}

func (or *objReader) vertexFor(k objKey) mesh.VertexID {
	if id, ok := or.corners[k]; ok {
		return id
	}
	id := or.m.AddVertex(or.positions[k.v])
	if k.t >= 0 {
		or.m.SetTexCoord(id, or.texcoords[k.t])
	}
	if k.n >= 0 {
		or.m.SetNormal(id, or.normals[k.n])
	}
	or.corners[k] = id
	for len(or.used) <= k.v {
		or.used = append(or.used, false)
	}
	or.used[k.v] = true
	return id
}
