package scene

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// ---------------------------------------------------------------------------
// Geometric validation
// ---------------------------------------------------------------------------

// maxSubdivision is the count above which a subdivision parameter draws a
// warning.
const maxSubdivision = 1024

func validateGeometry(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePrimitiveParams(s)...)
	errs = append(errs, validateTransforms(s)...)
	errs = append(errs, validateBooleanOperands(s)...)
	return errs
}

// primitiveMinimums lists the topological minimum of each subdivision
// parameter a shape uses. The mesh factory panics below these.
func primitiveMinimums(d PrimitiveData) map[string][2]int {
	switch d.Shape {
	case ShapeSphere:
		return map[string][2]int{"lat": {d.Lat, 2}, "lon": {d.Lon, 3}}
	case ShapeHemisphere, ShapeCapsule:
		return map[string][2]int{"lat": {d.Lat, 1}, "lon": {d.Lon, 3}}
	case ShapeCone:
		return map[string][2]int{"lon": {d.Lon, 3}}
	case ShapeCylinder:
		return map[string][2]int{"lon": {d.Lon, 3}, "segments": {d.Segments, 1}}
	case ShapeTorus:
		return map[string][2]int{"radial": {d.Radial, 3}, "tubular": {d.Tubular, 3}}
	case ShapePlane:
		return map[string][2]int{"nx": {d.NX, 2}, "ny": {d.NY, 2}}
	case ShapeCircle:
		return map[string][2]int{"segments": {d.Segments, 3}}
	case ShapeCircleSection:
		return map[string][2]int{"segments": {d.Segments, 1}}
	}
	return nil
}

// primitiveExtents lists the dimensions a shape uses, all of which must be
// positive. Capsule length may be zero.
func primitiveExtents(d PrimitiveData) map[string]float64 {
	switch d.Shape {
	case ShapeBox:
		return map[string]float64{"size x": d.Size[0], "size y": d.Size[1], "size z": d.Size[2]}
	case ShapeSphere, ShapeHemisphere, ShapeCircle, ShapeCapsule:
		return map[string]float64{"radius": d.Radius}
	case ShapeCone, ShapeCylinder:
		return map[string]float64{"radius": d.Radius, "height": d.Height}
	case ShapeTorus:
		return map[string]float64{"radius": d.Radius, "tube": d.Tube}
	case ShapePlane:
		return map[string]float64{"width": d.Width, "height": d.Height}
	case ShapeCircleSection:
		return map[string]float64{"radius": d.Radius, "angle": d.Angle}
	}
	return nil
}

func validatePrimitiveParams(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.sortedIDs() {
		d, ok := s.Nodes[id].Data.(PrimitiveData)
		if !ok {
			continue
		}
		if d.Shape.String() == "unknown" {
			errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf("unknown shape %d", int(d.Shape)), Severity: SeverityError})
			continue
		}

		mins := primitiveMinimums(d)
		for _, name := range slices.Sorted(maps.Keys(mins)) {
			v := mins[name]
			switch {
			case v[0] < v[1]:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("%s %s is %d, must be at least %d", d.Shape, name, v[0], v[1]),
					Severity: SeverityError,
				})
			case v[0] > maxSubdivision:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("%s %s is %d, tessellation will be slow", d.Shape, name, v[0]),
					Severity: SeverityWarning,
				})
			}
		}

		extents := primitiveExtents(d)
		for _, name := range slices.Sorted(maps.Keys(extents)) {
			if v := extents[name]; !(v > 0) {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("%s %s is %.4f, must be positive", d.Shape, name, v),
					Severity: SeverityError,
				})
			}
		}
		if d.Shape == ShapeCapsule && d.Length < 0 {
			errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf("capsule length is %.4f, must not be negative", d.Length), Severity: SeverityError})
		}
		if d.Shape == ShapeCircleSection && d.Angle > 2*math.Pi {
			errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf("circle-section angle %.4f exceeds a full turn", d.Angle), Severity: SeverityError})
		}
		if d.Shape == ShapeTorus && d.Tube >= d.Radius && d.Tube > 0 {
			errs = append(errs, ValidationError{NodeID: id, Message: "torus tube reaches the axis; the surface self-intersects", Severity: SeverityWarning})
		}
	}
	return errs
}

// validateTransforms rejects singular scales.
func validateTransforms(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.sortedIDs() {
		td, ok := s.Nodes[id].Data.(TransformData)
		if !ok || td.Scale == nil {
			continue
		}
		if td.Scale[0] == 0 || td.Scale[1] == 0 || td.Scale[2] == 0 {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("scale %v collapses a dimension", *td.Scale),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateBooleanOperands checks that every primitive under a boolean node
// is a shape the geometry kernel can build as a solid.
func validateBooleanOperands(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.sortedIDs() {
		n := s.Nodes[id]
		bd, ok := n.Data.(BooleanData)
		if !ok {
			continue
		}
		seen := make(map[NodeID]bool)
		var walk func(cur *Node)
		walk = func(cur *Node) {
			if seen[cur.ID] {
				return
			}
			seen[cur.ID] = true
			if d, ok := cur.Data.(PrimitiveData); ok && !d.Shape.Solid() {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("%s operand %q is a %s, which has no solid form", bd.Op, cur.Label(), d.Shape),
					Severity: SeverityError,
				})
			}
			for _, c := range s.Children(cur) {
				walk(c)
			}
		}
		for _, c := range s.Children(n) {
			walk(c)
		}
	}
	return errs
}
