package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/meshio"
	"github.com/chazu/polymesh/pkg/tessellate"
)

// formatOf returns the explicit format or the one implied by the file
// extension.
func formatOf(path, explicit string) (string, error) {
	f := explicit
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "obj", "stl":
		return f, nil
	case "yaml", "yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("%s: unknown mesh format %q", path, f)
}

func readMesh(path string) (*mesh.Mesh, error) {
	format, err := formatOf(path, "")
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "obj":
		return meshio.ReadOBJ(f)
	case "yaml":
		return meshio.ReadYAML(f)
	}
	return nil, fmt.Errorf("%s: cannot read %s files", path, format)
}

func writeMesh(o outputFlags, m *mesh.Mesh, log *slog.Logger) error {
	format, err := formatOf(o.out, o.format)
	if err != nil {
		return err
	}
	if format == "stl" {
		if err := meshio.WriteSTL(o.out, m); err != nil {
			return err
		}
	} else {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		if format == "obj" {
			err = meshio.WriteOBJ(f, m)
		} else {
			err = meshio.WriteYAML(f, m, meshio.YAMLOptions{PreserveIDs: o.preserveIDs})
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	log.Info("mesh written", "path", o.out, "format", format, "vertices", m.NumVertices(), "faces", m.NumFaces())
	return nil
}

// mergeParts appends every part into one mesh, in part order.
func mergeParts(parts []tessellate.Part) *mesh.Mesh {
	out := mesh.New()
	for _, p := range parts {
		out.Append(p.Mesh)
	}
	return out
}

func printInfo(w io.Writer, name string, m *mesh.Mesh) error {
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  vertices  %d (next id %d)\n", m.NumVertices(), m.NextVertexID())
	fmt.Fprintf(w, "  faces     %d (next id %d)\n", m.NumFaces(), m.NextFaceID())
	if m.IsEmpty() {
		return nil
	}

	sizes := make(map[int]int)
	var tris int
	for _, f := range m.Faces() {
		sizes[len(f.Vertices)]++
		tris += len(f.Vertices) - 2
	}
	fmt.Fprintf(w, "  triangles %d after fan split\n", tris)
	for n := 3; len(sizes) > 0; n++ {
		if c, ok := sizes[n]; ok {
			fmt.Fprintf(w, "  %d-gons    %d\n", n, c)
			delete(sizes, n)
		}
	}
	lo, hi := m.Bounds()
	fmt.Fprintf(w, "  bounds    %s\n", formatBounds(lo, hi))

	if err := m.Validate(); err != nil {
		fmt.Fprintf(w, "  invalid:\n    %s\n", strings.ReplaceAll(err.Error(), "\n", "\n    "))
		return fmt.Errorf("%s: mesh fails validation", name)
	}
	fmt.Fprintln(w, "  valid")
	return nil
}
