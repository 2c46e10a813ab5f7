package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/scene"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// mustEval evaluates source and fails the test on any error.
func mustEval(t *testing.T, eng *Engine, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

// evalFails evaluates source and returns the joined eval error messages.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	var msgs []string
	for _, e := range evalErrs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func primitive(t *testing.T, s *scene.Scene, name string) scene.PrimitiveData {
	t.Helper()
	n := s.Lookup(name)
	if n == nil {
		t.Fatalf("expected node named %q", name)
	}
	d, ok := n.Data.(scene.PrimitiveData)
	if !ok {
		t.Fatalf("expected PrimitiveData, got %T", n.Data)
	}
	return d
}

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 1)`,
			expect: `(sphere "__kw_radius" 1)`,
		},
		{
			name:   "multiple keywords",
			input:  `(plane :width 4 :height 2)`,
			expect: `(plane "__kw_width" 4 "__kw_height" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(circle-section :radius 1)`,
			expect: `(circle_section "__kw_radius" 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 0 -1 0)`,
			expect: `(vec3 0 -1 0)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:height-segs`,
			expect: `"__kw_height-segs"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Shape builtins
// ---------------------------------------------------------------------------

func TestSimpleSphere(t *testing.T) {
	s := mustEval(t, NewEngine(), `(defmesh "ball" (sphere :radius 2 :lat 8 :lon 16))`)

	if s.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", s.NodeCount())
	}
	ball := s.Lookup("ball")
	if ball == nil {
		t.Fatal("expected node named 'ball'")
	}
	if ball.Kind != scene.NodePrimitive {
		t.Errorf("expected NodePrimitive, got %s", ball.Kind)
	}
	want := scene.PrimitiveData{Shape: scene.ShapeSphere, Radius: 2, Lat: 8, Lon: 16}
	if d := primitive(t, s, "ball"); d != want {
		t.Errorf("data = %+v, want %+v", d, want)
	}
	// Without a (scene ...) form the unreferenced mesh becomes the root.
	if len(s.Roots) != 1 || s.Roots[0] != ball.ID {
		t.Errorf("roots = %v, want [ball]", s.Roots)
	}
}

func TestAllShapeBuiltins(t *testing.T) {
	tests := []struct {
		source string
		want   scene.PrimitiveData
	}{
		{`(box :size (vec3 1 2 3))`, scene.PrimitiveData{Shape: scene.ShapeBox, Size: mgl64.Vec3{1, 2, 3}}},
		{`(box :size 2)`, scene.PrimitiveData{Shape: scene.ShapeBox, Size: mgl64.Vec3{2, 2, 2}}},
		{`(hemisphere :radius 1 :lat 3 :lon 6)`, scene.PrimitiveData{Shape: scene.ShapeHemisphere, Radius: 1, Lat: 3, Lon: 6}},
		{`(cone :radius 1 :height 2 :lon 8)`, scene.PrimitiveData{Shape: scene.ShapeCone, Radius: 1, Height: 2, Lon: 8}},
		{`(cylinder :radius 1 :height 2 :lon 8 :segs 3)`, scene.PrimitiveData{Shape: scene.ShapeCylinder, Radius: 1, Height: 2, Lon: 8, Segments: 3}},
		{`(capsule :radius 1 :length 2 :lat 2 :lon 8)`, scene.PrimitiveData{Shape: scene.ShapeCapsule, Radius: 1, Length: 2, Lat: 2, Lon: 8}},
		{`(torus :radius 2 :tube 0.5 :radial 12 :tubular 6)`, scene.PrimitiveData{Shape: scene.ShapeTorus, Radius: 2, Tube: 0.5, Radial: 12, Tubular: 6}},
		{`(plane :width 4 :height 2 :nx 3 :ny 2)`, scene.PrimitiveData{Shape: scene.ShapePlane, Width: 4, Height: 2, NX: 3, NY: 2}},
		{`(circle :radius 1 :segments 5)`, scene.PrimitiveData{Shape: scene.ShapeCircle, Radius: 1, Segments: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.want.Shape.String(), func(t *testing.T) {
			s := mustEval(t, NewEngine(), `(defmesh "m" `+tt.source+`)`)
			if d := primitive(t, s, "m"); d != tt.want {
				t.Errorf("data = %+v, want %+v", d, tt.want)
			}
		})
	}
}

func TestCircleSectionAngleInDegrees(t *testing.T) {
	s := mustEval(t, NewEngine(), `(defmesh "wedge" (circle-section :radius 1 :angle 90 :segments 4))`)
	d := primitive(t, s, "wedge")
	if math.Abs(d.Angle-math.Pi/2) > 1e-12 {
		t.Errorf("angle = %f rad, want pi/2", d.Angle)
	}
}

func TestShapeDefaults(t *testing.T) {
	eng := NewEngine()
	eng.Defaults = scene.Defaults{Lat: 6, Lon: 12, Segments: 9}

	s := mustEval(t, eng, `
(defmesh "ball" (sphere :radius 1))
(defmesh "disc" (circle :radius 1))
(defmesh "pill" (capsule :radius 1 :length 1 :lon 8))
`)
	if d := primitive(t, s, "ball"); d.Lat != 6 || d.Lon != 12 {
		t.Errorf("sphere subdivisions = %d x %d, want 6 x 12", d.Lat, d.Lon)
	}
	if d := primitive(t, s, "disc"); d.Segments != 9 {
		t.Errorf("circle segments = %d, want 9", d.Segments)
	}
	if d := primitive(t, s, "pill"); d.Lat != 3 || d.Lon != 8 {
		t.Errorf("capsule subdivisions = %d x %d, want 3 x 8", d.Lat, d.Lon)
	}
	if s.Defaults != eng.Defaults {
		t.Errorf("scene defaults = %+v, want %+v", s.Defaults, eng.Defaults)
	}
}

// ---------------------------------------------------------------------------
// Variable reference test
// ---------------------------------------------------------------------------

func TestVariableReference(t *testing.T) {
	s := mustEval(t, NewEngine(), `
(def r 3)
(def ball (defmesh "ball" (sphere :radius r)))
(scene "main" (place ball :at (vec3 0 r 0)))
`)

	if d := primitive(t, s, "ball"); d.Radius != 3 {
		t.Errorf("expected radius=3 (from variable), got %f", d.Radius)
	}
	main := s.Lookup("main")
	if main == nil || len(main.Children) != 1 {
		t.Fatalf("expected scene 'main' with one child, got %+v", main)
	}
	td, ok := s.Get(main.Children[0]).Data.(scene.TransformData)
	if !ok {
		t.Fatalf("expected TransformData, got %T", s.Get(main.Children[0]).Data)
	}
	if td.Translation == nil || *td.Translation != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("translation = %v, want (0,3,0)", td.Translation)
	}
}

// ---------------------------------------------------------------------------
// Scene with placement test
// ---------------------------------------------------------------------------

func TestSceneWithPlacement(t *testing.T) {
	s := mustEval(t, NewEngine(), `
(defmesh "post" (cylinder :radius 0.1 :height 2 :lon 8))
(defmesh "cap" (hemisphere :radius 0.1 :lat 2 :lon 8))
(scene "lamp"
  (place (mesh "post") :at (vec3 0 1 0))
  (place (mesh "cap") :at (vec3 0 2 0) :rotate (vec3 0 45 0) :scale 2)
  (place (mesh "post") :at (vec3 1 1 0) :name "spare"))
`)

	if len(s.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(s.Roots))
	}
	lamp := s.Get(s.Roots[0])
	if lamp.Name != "lamp" || lamp.Kind != scene.NodeGroup {
		t.Fatalf("root = %s %q, want group lamp", lamp.Kind, lamp.Name)
	}
	if len(lamp.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(lamp.Children))
	}
	// Placing the same mesh twice yields two distinct transforms.
	if lamp.Children[0] == lamp.Children[2] {
		t.Error("two placements of one mesh share an ID")
	}

	capPlace := s.Get(lamp.Children[1])
	td := capPlace.Data.(scene.TransformData)
	if td.Rotation == nil || *td.Rotation != (mgl64.Vec3{0, 45, 0}) {
		t.Errorf("rotation = %v", td.Rotation)
	}
	if td.Scale == nil || *td.Scale != (mgl64.Vec3{2, 2, 2}) {
		t.Errorf("scale = %v", td.Scale)
	}
	if capPlace.Children[0] != s.Lookup("cap").ID {
		t.Error("cap placement does not reference the cap mesh")
	}
	if s.Lookup("spare") == nil {
		t.Error("named placement not indexed")
	}

	if errs := scene.Validate(s); len(errs) != 0 {
		t.Errorf("scene should validate, got %v", errs)
	}
}

func TestBooleanBuiltins(t *testing.T) {
	s := mustEval(t, NewEngine(), `
(defmesh "ring" (torus :radius 2 :tube 0.5 :radial 12 :tubular 6))
(scene "part"
  (difference (box :size 2) (cylinder :radius 0.5 :height 3 :lon 16) :name "drilled")
  (intersection (sphere :radius 1) (mesh "ring")))
`)

	drilled := s.Lookup("drilled")
	if drilled == nil {
		t.Fatal("expected node named 'drilled'")
	}
	if drilled.Kind != scene.NodeBoolean {
		t.Fatalf("expected NodeBoolean, got %s", drilled.Kind)
	}
	if bd := drilled.Data.(scene.BooleanData); bd.Op != scene.OpDifference {
		t.Errorf("op = %s, want difference", bd.Op)
	}
	if len(drilled.Children) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(drilled.Children))
	}
	// Inline shapes become anonymous primitive nodes.
	first := s.Get(drilled.Children[0])
	if first.Kind != scene.NodePrimitive || first.Name != "" {
		t.Errorf("first operand = %s %q, want anonymous primitive", first.Kind, first.Name)
	}
	if d := first.Data.(scene.PrimitiveData); d.Shape != scene.ShapeBox {
		t.Errorf("first operand shape = %s, want box", d.Shape)
	}

	part := s.Lookup("part")
	inter := s.Get(part.Children[1])
	if inter.Data.(scene.BooleanData).Op != scene.OpIntersection {
		t.Errorf("second child op = %s, want intersection", inter.Data.(scene.BooleanData).Op)
	}
	if inter.Children[1] != s.Lookup("ring").ID {
		t.Error("intersection should reference the named ring")
	}

	if r := scene.ValidateAll(s); !r.OK() {
		t.Errorf("scene should validate, got %v", r.Errors)
	}
}

func TestRootsWithoutScene(t *testing.T) {
	s := mustEval(t, NewEngine(), `
(defmesh "a" (sphere :radius 1))
(defmesh "b" (box :size 1))
(place (mesh "b") :at (vec3 3 0 0))
`)
	if len(s.Roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(s.Roots))
	}
	if s.Roots[0] != s.Lookup("a").ID {
		t.Error("first root should be the unplaced mesh 'a'")
	}
	if s.Get(s.Roots[1]).Kind != scene.NodeTransform {
		t.Error("second root should be the placement of 'b'")
	}
}

func TestDeterministicIDs(t *testing.T) {
	source := `
(scene "main"
  (place (sphere :radius 1) :at (vec3 1 0 0))
  (union (box :size 1) (box :size 2)))
`
	eng := NewEngine()
	s1 := mustEval(t, eng, source)
	s2 := mustEval(t, eng, source)

	if s1.NodeCount() != s2.NodeCount() {
		t.Fatalf("node counts differ: %d vs %d", s1.NodeCount(), s2.NodeCount())
	}
	for id := range s1.Nodes {
		if s2.Get(id) == nil {
			t.Errorf("node %s missing from second evaluation", id.Short())
		}
	}
}

// ---------------------------------------------------------------------------
// Error cases
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing mesh", `(mesh "nonexistent")`, `no mesh named "nonexistent"`},
		{"duplicate defmesh", `(defmesh "a" (sphere :radius 1)) (defmesh "a" (box :size 1))`, `"a" is already defined`},
		{"unknown keyword", `(sphere :radius 1 :sides 3)`, "unknown keyword :sides"},
		{"fractional count", `(sphere :radius 1 :lat 2.5)`, "expected integer"},
		{"non-positive count", `(circle :radius 1 :segments 0)`, "segments must be positive"},
		{"section needs angle", `(circle-section :radius 1)`, ":angle is required"},
		{"defmesh non-shape", `(defmesh "a" 42)`, "expected shape expression"},
		{"boolean arity", `(union (sphere :radius 1))`, "requires exactly two operands"},
		{"place arity", `(place :at (vec3 0 0 0))`, "exactly one mesh reference"},
		{"place bad ref", `(place 7)`, "expected mesh reference or shape"},
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 "y" 3)`, "vec3: y: expected number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if msg := evalFails(t, tt.source); !strings.Contains(msg, tt.want) {
				t.Errorf("error %q should contain %q", msg, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Full example test
// ---------------------------------------------------------------------------

func TestFullSnowmanExample(t *testing.T) {
	source := `
;; A snowman on a disc, with a carrot nose.
(def body-lat 12)
(def body-lon 24)

(defmesh "base"   (sphere :radius 1.0 :lat body-lat :lon body-lon))
(defmesh "middle" (sphere :radius 0.7 :lat body-lat :lon body-lon))
(defmesh "head"   (sphere :radius 0.5 :lat body-lat :lon body-lon))
(defmesh "nose"   (cone :radius 0.08 :height 0.4 :lon 12))
(defmesh "ground" (circle :radius 3 :segments 48))

(scene "snowman"
  (place (mesh "ground") :rotate (vec3 -90 0 0))
  (place (mesh "base")   :at (vec3 0 1 0))
  (place (mesh "middle") :at (vec3 0 2.4 0))
  (place (mesh "head")   :at (vec3 0 3.4 0))
  (place (mesh "nose")   :at (vec3 0 3.4 0.6) :rotate (vec3 90 0 0)))
`
	s := mustEval(t, NewEngine(), source)

	// 5 meshes + 5 placements + 1 scene.
	if s.NodeCount() != 11 {
		t.Errorf("expected 11 nodes, got %d", s.NodeCount())
	}
	if len(s.Primitives()) != 5 {
		t.Errorf("expected 5 primitives, got %d", len(s.Primitives()))
	}
	if d := primitive(t, s, "head"); d.Lat != 12 || d.Lon != 24 {
		t.Errorf("head subdivisions = %d x %d, want 12 x 24", d.Lat, d.Lon)
	}
	if r := scene.ValidateAll(s); !r.OK() || len(r.Warnings) != 0 {
		t.Errorf("snowman should validate cleanly, got %+v", r)
	}
}

func TestEmptySourceStillWorks(t *testing.T) {
	s := mustEval(t, NewEngine(), "")
	if s.NodeCount() != 0 {
		t.Errorf("expected empty scene, got %d nodes", s.NodeCount())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	s := mustEval(t, NewEngine(), `(defmesh "b" (box :size (vec3 (+ 1 2) (* 2 3) (- 10 3))))`)
	if d := primitive(t, s, "b"); d.Size != (mgl64.Vec3{3, 6, 7}) {
		t.Errorf("size = %v, want (3,6,7)", d.Size)
	}
}
