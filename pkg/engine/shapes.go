package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/scene"
)

// shapeKeywords lists the keywords each shape builtin accepts.
var shapeKeywords = map[scene.ShapeKind][]string{
	scene.ShapeBox:           {"size"},
	scene.ShapeSphere:        {"radius", "lat", "lon"},
	scene.ShapeHemisphere:    {"radius", "lat", "lon"},
	scene.ShapeCone:          {"radius", "height", "lon"},
	scene.ShapeCylinder:      {"radius", "height", "lon", "segs"},
	scene.ShapeCapsule:       {"radius", "length", "lat", "lon"},
	scene.ShapeTorus:         {"radius", "tube", "radial", "tubular"},
	scene.ShapePlane:         {"width", "height", "nx", "ny"},
	scene.ShapeCircle:        {"radius", "segments"},
	scene.ShapeCircleSection: {"radius", "angle", "segments"},
}

func floatField(d *scene.PrimitiveData, key string) *float64 {
	switch key {
	case "radius":
		return &d.Radius
	case "tube":
		return &d.Tube
	case "width":
		return &d.Width
	case "height":
		return &d.Height
	case "length":
		return &d.Length
	case "angle":
		return &d.Angle
	}
	return nil
}

func intField(d *scene.PrimitiveData, key string) *int {
	switch key {
	case "lat":
		return &d.Lat
	case "lon":
		return &d.Lon
	case "segs", "segments":
		return &d.Segments
	case "radial":
		return &d.Radial
	case "tubular":
		return &d.Tubular
	case "nx":
		return &d.NX
	case "ny":
		return &d.NY
	}
	return nil
}

// parseShape builds the parameters of one shape from its keyword
// arguments. :angle is read in degrees. Subdivision counts left out are
// filled from def.
func parseShape(kind scene.ShapeKind, args []zygo.Sexp, def scene.Defaults) (scene.PrimitiveData, error) {
	fn := kind.String()
	pa := parseArgs(args)
	if len(pa.positional) > 0 {
		return scene.PrimitiveData{}, fmt.Errorf("%s takes keyword arguments only", fn)
	}
	if err := pa.only(fn, shapeKeywords[kind]...); err != nil {
		return scene.PrimitiveData{}, err
	}

	d := scene.PrimitiveData{Shape: kind}
	for _, key := range pa.order {
		v := pa.kw[key]
		if key == "size" {
			size, err := toVec3(v)
			if err != nil {
				return d, fmt.Errorf("%s: size: %w", fn, err)
			}
			d.Size = size
			continue
		}
		if dst := floatField(&d, key); dst != nil {
			f, err := toFloat64(v)
			if err != nil {
				return d, fmt.Errorf("%s: %s: %w", fn, key, err)
			}
			*dst = f
			continue
		}
		if dst := intField(&d, key); dst != nil {
			n, err := toInt(v)
			if err != nil {
				return d, fmt.Errorf("%s: %s: %w", fn, key, err)
			}
			if n <= 0 {
				return d, fmt.Errorf("%s: %s must be positive, got %d", fn, key, n)
			}
			*dst = n
		}
	}

	if kind == scene.ShapeCircleSection {
		if _, ok := pa.kw["angle"]; !ok {
			return d, fmt.Errorf("%s: :angle is required", fn)
		}
		d.Angle = mgl64.DegToRad(d.Angle)
	}
	return d.WithDefaults(def), nil
}

// registerShapes installs one builtin per shape kind. Kebab-case names
// are registered in underscore form to match preprocessSource.
func registerShapes(env *zygo.Zlisp, b *builder) {
	for kind := range shapeKeywords {
		fn := strings.ReplaceAll(kind.String(), "-", "_")
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			d, err := parseShape(kind, args, b.scene.Defaults)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpShape{data: d}, nil
		})
	}
}
