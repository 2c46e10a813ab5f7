package factory

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/polymesh/pkg/mesh"
)

func raw() Factory {
	return Factory{Raw: true}
}

// exact welds only bit-identical positions.
func exact() Factory {
	return Factory{Consolidate: mesh.ConsolidateOptions{Tolerance: 0, Normals: mesh.NormalWeightArea}}
}

func arity(m *mesh.Mesh) map[int]int {
	counts := make(map[int]int)
	for _, f := range m.Faces() {
		counts[len(f.Vertices)]++
	}
	return counts
}

func TestGeneratorsProduceValidMeshes(t *testing.T) {
	gens := map[string]func(f Factory) *mesh.Mesh{
		"box":            func(f Factory) *mesh.Mesh { return f.Box(mgl64.Vec3{1, 2, 3}) },
		"sphere":         func(f Factory) *mesh.Mesh { return f.Sphere(1, 8, 12) },
		"hemisphere":     func(f Factory) *mesh.Mesh { return f.Hemisphere(1, 4, 12) },
		"cone":           func(f Factory) *mesh.Mesh { return f.Cone(1, 2, 16) },
		"cylinder":       func(f Factory) *mesh.Mesh { return f.Cylinder(1, 2, 16, 3) },
		"capsule":        func(f Factory) *mesh.Mesh { return f.Capsule(0.5, 2, 4, 12) },
		"torus":          func(f Factory) *mesh.Mesh { return f.Torus(2, 0.5, 16, 8) },
		"plane":          func(f Factory) *mesh.Mesh { return f.Plane(2, 1, 5, 3) },
		"circle":         func(f Factory) *mesh.Mesh { return f.Circle(1, 24) },
		"circle section": func(f Factory) *mesh.Mesh { return f.CircleSection(1, math.Pi/2, 6) },
	}
	for name, gen := range gens {
		t.Run(name, func(t *testing.T) {
			r := gen(raw())
			require.NoError(t, r.Validate(), "raw")
			w := gen(New())
			require.NoError(t, w.Validate(), "welded")

			assert.LessOrEqual(t, w.NumVertices(), r.NumVertices())

			e := gen(exact())
			require.NoError(t, e.Validate(), "exact")
			assert.Equal(t, w.NumVertices(), e.NumVertices(), "seams must meet without tolerance slack")
			assert.Subset(t, r.VertexIDs(), w.VertexIDs(), "welding keeps a subset of ids")
			for id, v := range w.Vertices() {
				require.True(t, v.HasNormal, "vertex %d has no normal", id)
				assert.InDelta(t, 1.0, v.Normal.Len(), 1e-9, "vertex %d", id)
			}
		})
	}
}

func TestSphereCounts(t *testing.T) {
	r := raw().Sphere(1, 3, 4)
	assert.Equal(t, 20, r.NumVertices())

	w := New().Sphere(1, 3, 4)
	require.NoError(t, w.Validate())
	assert.Equal(t, 10, w.NumVertices())
	assert.Equal(t, map[int]int{3: 8, 4: 4}, arity(w))

	north := w.Vertex(0)
	assert.Len(t, north.NeighborFaces, 4, "the pole is shared by a full ring of triangles")
	assert.True(t, north.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-12))
}

func TestSphereNormalsPointOutward(t *testing.T) {
	m := New().Sphere(2, 10, 16)
	for id, v := range m.Vertices() {
		radial := v.Position.Normalize()
		assert.Greater(t, v.Normal.Dot(radial), 0.99, "vertex %d", id)
	}
	for _, fid := range m.FaceIDs() {
		assert.Greater(t, m.FaceNormal(fid).Dot(m.FaceCentroid(fid)), 0.0, "face %d winds inward", fid)
	}
}

func TestCapsuleWeldsSeamsExactly(t *testing.T) {
	const lat = 2
	for _, lon := range []int{3, 5, 8, 16} {
		m := exact().Capsule(1, 2, lat, lon)
		require.NoError(t, m.Validate())
		assert.Equal(t, 2*lat*lon+2, m.NumVertices(), "lon %d", lon)
		for _, fid := range m.FaceIDs() {
			assert.Greater(t, m.FaceNormal(fid).Dot(m.FaceCentroid(fid)), 0.0, "lon %d: face %d winds inward", lon, fid)
		}
	}
}

func TestHemisphereCounts(t *testing.T) {
	m := New().Hemisphere(1, 3, 6)
	require.NoError(t, m.Validate())
	assert.Equal(t, 3*6+1, m.NumVertices())
	assert.Equal(t, map[int]int{3: 6, 4: 12}, arity(m))

	lo, hi := m.Bounds()
	assert.InDelta(t, 0, lo[1], 1e-12, "open at the equator")
	assert.InDelta(t, 1, hi[1], 1e-12)
}

func TestCapsuleWeldsSeams(t *testing.T) {
	const lat, lon = 2, 8
	m := New().Capsule(1, 2, lat, lon)
	require.NoError(t, m.Validate())

	assert.Equal(t, 2*lat*lon+2, m.NumVertices())
	assert.Equal(t, 2*lat*lon+lon, m.NumFaces())
	lo, hi := m.Bounds()
	assert.InDelta(t, -2, lo[1], 1e-12)
	assert.InDelta(t, 2, hi[1], 1e-12)

	for _, fid := range m.FaceIDs() {
		assert.Greater(t, m.FaceNormal(fid).Dot(m.FaceCentroid(fid)), 0.0, "face %d winds inward", fid)
	}
}

func TestCapsuleZeroLengthIsSphere(t *testing.T) {
	m := New().Capsule(1, 0, 2, 6)
	require.NoError(t, m.Validate())
	assert.Equal(t, New().Sphere(1, 4, 6).NumVertices(), m.NumVertices())
}

func TestConeAndCylinderCounts(t *testing.T) {
	cone := New().Cone(1, 2, 8)
	require.NoError(t, cone.Validate())
	assert.Equal(t, 8+2, cone.NumVertices())
	assert.Equal(t, map[int]int{3: 16}, arity(cone))

	cyl := New().Cylinder(1, 2, 8, 3)
	require.NoError(t, cyl.Validate())
	assert.Equal(t, 4*8+2, cyl.NumVertices())
	assert.Equal(t, map[int]int{3: 16, 4: 24}, arity(cyl))

	lo, hi := cyl.Bounds()
	assert.Equal(t, -1.0, lo[1])
	assert.Equal(t, 1.0, hi[1])
}

func TestTorusWrapsPeriodically(t *testing.T) {
	const radial, tubular = 6, 4
	m := New().Torus(2, 0.5, radial, tubular)
	require.NoError(t, m.Validate())
	assert.Equal(t, radial*tubular, m.NumVertices())
	assert.Equal(t, radial*tubular, m.NumFaces())

	// Face (i, j) is added i*tubular+j-th. The last column of ring 0 must
	// come back to column 0 of the same ring.
	last := m.Face(mesh.FaceID(tubular - 1)).Vertices
	assert.Contains(t, last, mesh.VertexID(0))
	assert.Contains(t, last, mesh.VertexID(tubular-1))

	// The last ring wraps onto ring 0.
	wrap := m.Face(mesh.FaceID((radial - 1) * tubular)).Vertices
	assert.Contains(t, wrap, mesh.VertexID(0))

	for id, v := range m.Vertices() {
		assert.Len(t, v.NeighborFaces, 4, "vertex %d", id)
	}
}

func TestPlaneTwoByTwo(t *testing.T) {
	m := New().Plane(1, 1, 2, 2)
	require.NoError(t, m.Validate())
	assert.Equal(t, []mesh.VertexID{0, 1, 2, 3}, m.VertexIDs())
	require.Equal(t, 1, m.NumFaces())
	assert.Equal(t, []mesh.VertexID{0, 1, 3, 2}, m.Face(0).Vertices)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.FaceNormal(0))
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Vertex(3).Normal)
	assert.Equal(t, mgl64.Vec2{1, 1}, m.Vertex(3).TexCoord)
}

func TestCircleFans(t *testing.T) {
	c := New().Circle(1, 6)
	assert.Equal(t, 7, c.NumVertices())
	assert.Len(t, c.Vertex(0).NeighborFaces, 6)
	assert.Contains(t, c.Face(5).Vertices, mesh.VertexID(1), "the last triangle closes the fan")

	s := New().CircleSection(1, math.Pi, 4)
	assert.Equal(t, 6, s.NumVertices())
	assert.Equal(t, 4, s.NumFaces())
	assert.InDelta(t, 4*0.5*math.Sin(math.Pi/4), totalArea(s), 1e-12)
}

func TestBoxWelding(t *testing.T) {
	assert.Equal(t, 24, raw().Box(mgl64.Vec3{1, 1, 1}).NumVertices())

	m := New().Box(mgl64.Vec3{2, 2, 2})
	require.NoError(t, m.Validate())
	assert.Equal(t, 8, m.NumVertices())
	assert.InDelta(t, 24, totalArea(m), 1e-12)
	for id, v := range m.Vertices() {
		diag := v.Position.Normalize()
		assert.True(t, v.Normal.ApproxEqualThreshold(diag, 1e-12), "vertex %d normal %v", id, v.Normal)
	}
}

func TestContractViolationsPanic(t *testing.T) {
	f := New()
	tests := map[string]func(){
		"sphere lat":       func() { f.Sphere(1, 1, 8) },
		"sphere lon":       func() { f.Sphere(1, 4, 2) },
		"hemisphere lat":   func() { f.Hemisphere(1, 0, 8) },
		"capsule lon":      func() { f.Capsule(1, 1, 2, 2) },
		"cone lon":         func() { f.Cone(1, 1, 2) },
		"cylinder segs":    func() { f.Cylinder(1, 1, 8, 0) },
		"torus tubular":    func() { f.Torus(2, 1, 8, 2) },
		"plane nx":         func() { f.Plane(1, 1, 1, 2) },
		"circle segments":  func() { f.Circle(1, 2) },
		"section segments": func() { f.CircleSection(1, 1, 0) },
		"section angle":    func() { f.CircleSection(1, 7, 4) },
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, fn)
			assert.True(t, strings.HasPrefix(panicValue(fn), "factory: "))
		})
	}
}

func TestRawSkipsNormals(t *testing.T) {
	m := raw().Sphere(1, 4, 6)
	for _, v := range m.Vertices() {
		assert.False(t, v.HasNormal)
	}
	custom := Factory{Consolidate: mesh.ConsolidateOptions{Tolerance: mesh.DefaultWeldTolerance}}
	m = custom.Sphere(1, 4, 6)
	assert.Equal(t, 3*6+2, m.NumVertices())
	for _, v := range m.Vertices() {
		assert.False(t, v.HasNormal)
	}
}

func totalArea(m *mesh.Mesh) float64 {
	var a float64
	for _, fid := range m.FaceIDs() {
		a += m.FaceArea(fid)
	}
	return a
}

func panicValue(fn func()) (msg string) {
	defer func() { msg, _ = recover().(string) }()
	fn()
	return ""
}
