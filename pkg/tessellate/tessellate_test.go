package tessellate_test

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/factory"
	"github.com/chazu/polymesh/pkg/kernel/sdfx"
	"github.com/chazu/polymesh/pkg/mesh"
	"github.com/chazu/polymesh/pkg/scene"
	"github.com/chazu/polymesh/pkg/tessellate"
)

// newBuilder returns a builder with the default factory and a coarse sdfx
// kernel.
func newBuilder() tessellate.Builder {
	return tessellate.Builder{Factory: factory.New(), Kernel: sdfx.NewWithResolution(32)}
}

// makePrimitive creates a primitive node with the given name and shape.
func makePrimitive(name string, d scene.PrimitiveData) *scene.Node {
	return &scene.Node{
		ID:   scene.NewNodeID("defmesh/" + name),
		Kind: scene.NodePrimitive,
		Name: name,
		Data: d,
	}
}

func makeSphere(name string) *scene.Node {
	return makePrimitive(name, scene.PrimitiveData{Shape: scene.ShapeSphere, Radius: 1, Lat: 4, Lon: 6})
}

// makePlace creates a transform node with a translation and optional
// rotation in degrees.
func makePlace(name string, at mgl64.Vec3, rot *mgl64.Vec3, child scene.NodeID) *scene.Node {
	return &scene.Node{
		ID:       scene.NewNodeID("place/" + name),
		Kind:     scene.NodeTransform,
		Children: []scene.NodeID{child},
		Data:     scene.TransformData{Translation: &at, Rotation: rot},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...scene.NodeID) *scene.Node {
	return &scene.Node{
		ID:       scene.NewNodeID("scene/" + name),
		Kind:     scene.NodeGroup,
		Name:     name,
		Children: children,
		Data:     scene.GroupData{Description: name},
	}
}

func makeBoolean(name string, op scene.BooleanOp, a, b scene.NodeID) *scene.Node {
	return &scene.Node{
		ID:       scene.NewNodeID(op.String() + "/" + name),
		Kind:     scene.NodeBoolean,
		Name:     name,
		Children: []scene.NodeID{a, b},
		Data:     scene.BooleanData{Op: op},
	}
}

func TestSinglePrimitive(t *testing.T) {
	s := scene.New()
	ball := makeSphere("ball")
	s.AddNode(ball)
	s.AddRoot(ball.ID)

	meshes, err := tessellate.Tessellate(s, newBuilder())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.PartName != "ball" {
		t.Errorf("expected PartName %q, got %q", "ball", m.PartName)
	}
	// Welded sphere: two poles plus three rings of six.
	if m.VertexCount() != 20 {
		t.Errorf("VertexCount() = %d, want 20", m.VertexCount())
	}
	// 12 pole triangles plus 12 quads split in two.
	if m.TriangleCount() != 36 {
		t.Errorf("TriangleCount() = %d, want 36", m.TriangleCount())
	}
	if len(m.Normals) != len(m.Vertices) || len(m.TexCoords) != 2*m.VertexCount() {
		t.Errorf("attribute arrays out of step: %d vertices, %d normals, %d texcoords",
			len(m.Vertices), len(m.Normals), len(m.TexCoords))
	}
}

func TestTwoParts(t *testing.T) {
	s := scene.New()
	a := makeSphere("left")
	b := makePrimitive("right", scene.PrimitiveData{Shape: scene.ShapeTorus, Radius: 2, Tube: 0.5, Radial: 8, Tubular: 6})
	s.AddNode(a)
	s.AddNode(b)
	s.AddRoot(a.ID)
	s.AddRoot(b.ID)

	meshes, err := tessellate.Tessellate(s, newBuilder())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].PartName != "left" || meshes[1].PartName != "right" {
		t.Errorf("parts out of root order: %q, %q", meshes[0].PartName, meshes[1].PartName)
	}
	if got := meshes[1].TriangleCount(); got != 2*8*6 {
		t.Errorf("torus TriangleCount() = %d, want %d", got, 2*8*6)
	}
}

func TestPartWithTransform(t *testing.T) {
	s := scene.New()
	box := makePrimitive("crate", scene.PrimitiveData{Shape: scene.ShapeBox, Size: mgl64.Vec3{100, 50, 10}})
	s.AddNode(box)

	place := makePlace("crate", mgl64.Vec3{200, 100, 50}, nil, box.ID)
	s.AddNode(place)
	s.AddRoot(place.ID)

	parts, err := newBuilder().Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}

	lo, hi := parts[0].Mesh.Bounds()
	if !lo.ApproxEqual(mgl64.Vec3{150, 75, 45}) || !hi.ApproxEqual(mgl64.Vec3{250, 125, 55}) {
		t.Errorf("bounds = %v..%v, want (150,75,45)..(250,125,55)", lo, hi)
	}
	if parts[0].Node != box.ID {
		t.Errorf("part node = %s, want %s", parts[0].Node.Short(), box.ID.Short())
	}
}

func TestNestedTransforms(t *testing.T) {
	s := scene.New()
	plane := makePrimitive("tile", scene.PrimitiveData{Shape: scene.ShapePlane, Width: 2, Height: 2, NX: 2, NY: 2})
	s.AddNode(plane)

	rot := mgl64.Vec3{90, 0, 0}
	inner := makePlace("inner", mgl64.Vec3{}, &rot, plane.ID)
	outer := makePlace("outer", mgl64.Vec3{0, 5, 0}, nil, inner.ID)
	s.AddNode(inner)
	s.AddNode(outer)
	s.AddRoot(outer.ID)

	parts, err := newBuilder().Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	m := parts[0].Mesh
	// The +z facing tile turns to face -y, then moves up.
	for id, v := range m.Vertices() {
		if math.Abs(v.Position[1]-5) > 1e-9 {
			t.Errorf("vertex %d y = %f, want 5", id, v.Position[1])
		}
		if !v.Normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-9) {
			t.Errorf("vertex %d normal = %v, want (0,-1,0)", id, v.Normal)
		}
	}
}

func TestSharedNodeYieldsPartPerPath(t *testing.T) {
	s := scene.New()
	ball := makeSphere("ball")
	s.AddNode(ball)
	left := makePlace("left", mgl64.Vec3{-3, 0, 0}, nil, ball.ID)
	right := makePlace("right", mgl64.Vec3{3, 0, 0}, nil, ball.ID)
	s.AddNode(left)
	s.AddNode(right)
	g := makeGroup("pair", left.ID, right.ID)
	s.AddNode(g)
	s.AddRoot(g.ID)

	parts, err := newBuilder().Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	lo, _ := parts[0].Mesh.Bounds()
	_, hi := parts[1].Mesh.Bounds()
	if math.Abs(lo[0]+4) > 1e-9 || math.Abs(hi[0]-4) > 1e-9 {
		t.Errorf("copies not placed apart: lo.x = %f, hi.x = %f", lo[0], hi[0])
	}
}

func TestDefaultsApplied(t *testing.T) {
	s := scene.New()
	s.Defaults = scene.Defaults{Lat: 4, Lon: 6, Segments: 5}
	ball := makePrimitive("ball", scene.PrimitiveData{Shape: scene.ShapeSphere, Radius: 1})
	disc := makePrimitive("disc", scene.PrimitiveData{Shape: scene.ShapeCircle, Radius: 1})
	s.AddNode(ball)
	s.AddNode(disc)
	s.AddRoot(ball.ID)
	s.AddRoot(disc.ID)

	parts, err := newBuilder().Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := parts[0].Mesh.NumVertices(); got != 20 {
		t.Errorf("sphere vertices = %d, want 20", got)
	}
	if got := parts[1].Mesh.NumFaces(); got != 5 {
		t.Errorf("circle faces = %d, want 5", got)
	}
}

func TestGeneratorPanicBecomesError(t *testing.T) {
	s := scene.New()
	bad := makePrimitive("bad", scene.PrimitiveData{Shape: scene.ShapeSphere, Radius: 1, Lat: 1, Lon: 6})
	s.AddNode(bad)
	s.AddRoot(bad.ID)

	_, err := newBuilder().Build(s)
	if err == nil {
		t.Fatal("expected an error for an under-subdivided sphere")
	}
	if !strings.Contains(err.Error(), "factory:") || !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q should name the node and carry the factory message", err)
	}
}

func TestBooleanDifference(t *testing.T) {
	s := scene.New()
	box := makePrimitive("block", scene.PrimitiveData{Shape: scene.ShapeBox, Size: mgl64.Vec3{2, 2, 2}})
	hole := makePrimitive("hole", scene.PrimitiveData{Shape: scene.ShapeCylinder, Radius: 0.5, Height: 3})
	cut := makeBoolean("drilled", scene.OpDifference, box.ID, hole.ID)
	place := makePlace("drilled", mgl64.Vec3{10, 0, 0}, nil, cut.ID)
	for _, n := range []*scene.Node{box, hole, cut, place} {
		s.AddNode(n)
	}
	s.AddRoot(place.ID)

	parts, err := newBuilder().Build(s)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("boolean subtree should yield 1 part, got %d", len(parts))
	}
	p := parts[0]
	if p.Name != "drilled" {
		t.Errorf("part name = %q, want drilled", p.Name)
	}
	if err := p.Mesh.Validate(); err != nil {
		t.Fatalf("kernel mesh invalid: %v", err)
	}
	lo, hi := p.Mesh.Bounds()
	if math.Abs(lo[0]-9) > 0.2 || math.Abs(hi[0]-11) > 0.2 {
		t.Errorf("x bounds = [%f, %f], want ~[9, 11]", lo[0], hi[0])
	}
	// The hole runs along y, so no vertex lies on the axis inside it.
	for id, v := range p.Mesh.Vertices() {
		dx, dz := v.Position[0]-10, v.Position[2]
		if math.Hypot(dx, dz) < 0.4 {
			t.Fatalf("vertex %d at %v lies inside the hole", id, v.Position)
		}
	}
}

func TestBooleanNeedsKernel(t *testing.T) {
	s := scene.New()
	a := makeSphere("a")
	b := makeSphere("b")
	u := makeBoolean("u", scene.OpUnion, a.ID, b.ID)
	for _, n := range []*scene.Node{a, b, u} {
		s.AddNode(n)
	}
	s.AddRoot(u.ID)

	_, err := tessellate.Builder{Factory: factory.New()}.Build(s)
	if err == nil || !strings.Contains(err.Error(), "no geometry kernel") {
		t.Fatalf("expected missing kernel error, got %v", err)
	}
}

func TestBooleanRejectsFlatOperand(t *testing.T) {
	s := scene.New()
	a := makeSphere("a")
	disc := makePrimitive("disc", scene.PrimitiveData{Shape: scene.ShapeCircle, Radius: 1, Segments: 8})
	u := makeBoolean("u", scene.OpIntersection, a.ID, disc.ID)
	for _, n := range []*scene.Node{a, disc, u} {
		s.AddNode(n)
	}
	s.AddRoot(u.ID)

	_, err := newBuilder().Build(s)
	if err == nil || !strings.Contains(err.Error(), "circle has no solid form") {
		t.Fatalf("expected operand error, got %v", err)
	}
}

func TestEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(scene.New(), newBuilder())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestFromMeshFanTriangulates(t *testing.T) {
	m := mesh.New()
	var pent []mesh.VertexID
	for i := range 5 {
		a := 2 * math.Pi * float64(i) / 5
		pent = append(pent, m.AddVertex(mgl64.Vec3{math.Cos(a), math.Sin(a), 0}))
	}
	m.AddFace(pent...)
	m.RemoveVertex(m.AddVertex(mgl64.Vec3{9, 9, 9})) // leaves an ID gap
	q := []mesh.VertexID{
		m.AddVertex(mgl64.Vec3{2, 0, 0}),
		m.AddVertex(mgl64.Vec3{3, 0, 0}),
		m.AddVertex(mgl64.Vec3{3, 1, 0}),
		m.AddVertex(mgl64.Vec3{2, 1, 0}),
	}
	m.AddFace(q...)

	dm := tessellate.FromMesh(m, "fan")
	if dm.VertexCount() != 9 {
		t.Errorf("VertexCount() = %d, want 9", dm.VertexCount())
	}
	// (5-2) + (4-2) triangles.
	if dm.TriangleCount() != 5 {
		t.Errorf("TriangleCount() = %d, want 5", dm.TriangleCount())
	}
	want := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4, 5, 6, 7, 5, 7, 8}
	for i, idx := range want {
		if dm.Indices[i] != idx {
			t.Fatalf("Indices = %v, want %v", dm.Indices, want)
		}
	}
	// Missing normals are computed on a copy.
	if dm.Normals[2] != 1 {
		t.Errorf("first normal z = %f, want 1", dm.Normals[2])
	}
	if m.Vertex(pent[0]).HasNormal {
		t.Error("FromMesh must not modify its input")
	}
}

func TestFromMeshKeepsAuthoredNormals(t *testing.T) {
	m := mesh.New()
	a := m.AddVertex(mgl64.Vec3{0, 0, 0})
	b := m.AddVertex(mgl64.Vec3{1, 0, 0})
	c := m.AddVertex(mgl64.Vec3{1, 1, 0})
	d := m.AddVertex(mgl64.Vec3{0, 1, 0})
	m.AddFace(a, b, c, d)
	m.SetNormal(a, mgl64.Vec3{1, 0, 0})

	dm := tessellate.FromMesh(m, "partial")
	if got := dm.Normals[0:3]; got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("authored normal = %v, want [1 0 0]", got)
	}
	for i := 1; i < 4; i++ {
		if z := dm.Normals[3*i+2]; z != 1 {
			t.Errorf("vertex %d: filled normal z = %f, want 1", i, z)
		}
	}
	if m.Vertex(b).HasNormal {
		t.Error("FromMesh must not modify its input")
	}
}

// --- DrawMesh helper method tests ---

func TestDrawMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []float32
		indices   []uint32
		wantVerts int
		wantTris  int
	}{
		{"empty", nil, nil, 0, 0},
		{"one triangle", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}, 3, 1},
		{"quad", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, []uint32{0, 1, 2, 2, 3, 0}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &tessellate.DrawMesh{Vertices: tt.vertices, Indices: tt.indices}
			if got := m.VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
			if got := m.TriangleCount(); got != tt.wantTris {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.wantTris)
			}
			if got := m.IsEmpty(); got != (tt.wantVerts == 0) {
				t.Errorf("IsEmpty() = %v", got)
			}
		})
	}
}
