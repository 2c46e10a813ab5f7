package scene

import "github.com/go-gl/mathgl/mgl64"

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// ShapeKind distinguishes the generated shapes.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeHemisphere
	ShapeCone
	ShapeCylinder
	ShapeCapsule
	ShapeTorus
	ShapePlane
	ShapeCircle
	ShapeCircleSection
)

var shapeNames = [...]string{
	ShapeBox:           "box",
	ShapeSphere:        "sphere",
	ShapeHemisphere:    "hemisphere",
	ShapeCone:          "cone",
	ShapeCylinder:      "cylinder",
	ShapeCapsule:       "capsule",
	ShapeTorus:         "torus",
	ShapePlane:         "plane",
	ShapeCircle:        "circle",
	ShapeCircleSection: "circle-section",
}

func (k ShapeKind) String() string {
	if k >= 0 && int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return "unknown"
}

// ParseShapeKind maps a shape name ("circle-section") to its kind.
func ParseShapeKind(s string) (ShapeKind, bool) {
	for k, name := range shapeNames {
		if name == s {
			return ShapeKind(k), true
		}
	}
	return 0, false
}

// Flat reports whether the shape lies in the z = 0 plane.
func (k ShapeKind) Flat() bool {
	return k == ShapePlane || k == ShapeCircle || k == ShapeCircleSection
}

// Solid reports whether the geometry kernel can build the shape as a
// solid, which boolean operands require.
func (k ShapeKind) Solid() bool {
	switch k {
	case ShapeBox, ShapeSphere, ShapeCone, ShapeCylinder, ShapeTorus:
		return true
	}
	return false
}

// PrimitiveData holds the parameters of one generated shape. Only the
// fields the shape uses are meaningful.
type PrimitiveData struct {
	Shape ShapeKind `json:"shape"`

	Size   mgl64.Vec3 `json:"size,omitempty"`   // box
	Radius float64    `json:"radius,omitempty"` // torus: ring radius
	Tube   float64    `json:"tube,omitempty"`   // torus tube radius
	Width  float64    `json:"width,omitempty"`  // plane
	Height float64    `json:"height,omitempty"` // cone, cylinder, plane
	Length float64    `json:"length,omitempty"` // capsule band
	Angle  float64    `json:"angle,omitempty"`  // circle section, radians

	Lat      int `json:"lat,omitempty"`
	Lon      int `json:"lon,omitempty"`
	Segments int `json:"segments,omitempty"` // cylinder height bands, circle rim
	Radial   int `json:"radial,omitempty"`
	Tubular  int `json:"tubular,omitempty"`
	NX       int `json:"nx,omitempty"`
	NY       int `json:"ny,omitempty"`
}

func (PrimitiveData) nodeData() {}

// WithDefaults fills every zero subdivision count the shape uses from def.
// Hemispheres and capsules get half the sphere's latitude bands so their
// caps match a sphere of the same defaults. Planes default to a single
// quad and cylinders to a single height band.
func (d PrimitiveData) WithDefaults(def Defaults) PrimitiveData {
	fill := func(v *int, to int) {
		if *v == 0 {
			*v = to
		}
	}
	switch d.Shape {
	case ShapeSphere:
		fill(&d.Lat, def.Lat)
		fill(&d.Lon, def.Lon)
	case ShapeHemisphere, ShapeCapsule:
		fill(&d.Lat, max(def.Lat/2, 1))
		fill(&d.Lon, def.Lon)
	case ShapeCone:
		fill(&d.Lon, def.Lon)
	case ShapeCylinder:
		fill(&d.Lon, def.Lon)
		fill(&d.Segments, 1)
	case ShapeTorus:
		fill(&d.Radial, def.Lon)
		fill(&d.Tubular, def.Lat)
	case ShapePlane:
		fill(&d.NX, 2)
		fill(&d.NY, 2)
	case ShapeCircle, ShapeCircleSection:
		fill(&d.Segments, def.Segments)
	}
	return d
}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData places its single child. Created by the (place ...) form.
// The local matrix is T * R * S with R = Rz * Ry * Rx.
type TransformData struct {
	Translation *mgl64.Vec3 `json:"translation,omitempty"`
	Rotation    *mgl64.Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
	Scale       *mgl64.Vec3 `json:"scale,omitempty"`
}

func (TransformData) nodeData() {}

// Matrix returns the local transform.
func (t TransformData) Matrix() mgl64.Mat4 {
	m := mgl64.Ident4()
	if t.Translation != nil {
		m = mgl64.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	}
	if t.Rotation != nil {
		r := t.Rotation
		m = m.Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(r[2]))).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r[1]))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r[0])))
	}
	if t.Scale != nil {
		m = m.Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
	}
	return m
}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData is a named collection of parts. Created by the (scene ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Boolean
// ---------------------------------------------------------------------------

// BooleanOp enumerates CSG operations.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines the node's two children. For OpDifference the
// second child is subtracted from the first.
type BooleanData struct {
	Op BooleanOp `json:"op"`
}

func (BooleanData) nodeData() {}
