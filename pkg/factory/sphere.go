package factory

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// Sphere returns a UV sphere with lat rings of faces between the poles and
// lon faces around each ring. The raw grid has (lat+1)(lon+1) vertices;
// welding leaves (lat-1)*lon+2.
func (f Factory) Sphere(radius float64, lat, lon int) *mesh.Mesh {
	precondition(lat >= 2 && lon >= 3, "sphere needs lat >= 2 and lon >= 3, got %d, %d", lat, lon)
	return f.finish(sphereGrid(radius, lat, lon, false))
}

// Hemisphere returns the upper half of a sphere, open at the equator.
// Welding leaves lat*lon+1 vertices.
func (f Factory) Hemisphere(radius float64, lat, lon int) *mesh.Mesh {
	precondition(lat >= 1 && lon >= 3, "hemisphere needs lat >= 1 and lon >= 3, got %d, %d", lat, lon)
	return f.finish(sphereGrid(radius, lat, lon, true))
}

// Capsule returns two hemispherical caps of lat rings each joined by a
// cylindrical band. length is the distance between the cap centers.
func (f Factory) Capsule(radius, length float64, lat, lon int) *mesh.Mesh {
	precondition(lat >= 1 && lon >= 3, "capsule needs lat >= 1 and lon >= 3, got %d, %d", lat, lon)

	half := length / 2
	m := sphereGrid(radius, lat, lon, true)
	m.Transform(mgl64.Translate3D(0, half, 0))

	band := mesh.New()
	quadStrip(band, [][]mesh.VertexID{
		ring(band, radius, half, 0, lon),
		ring(band, radius, -half, 1, lon),
	})
	m.Append(band)

	// Mirror in y so x and z stay bit-identical and the equator meets the
	// band's bottom ring exactly. Transform restores outward winding.
	bottom := sphereGrid(radius, lat, lon, true)
	bottom.Transform(mgl64.Translate3D(0, -half, 0).Mul4(mgl64.Scale3D(1, -1, 1)))
	m.Append(bottom)

	return f.finish(m)
}

// sphereGrid builds the raw latitude/longitude grid shared by Sphere,
// Hemisphere and Capsule. Row 0 is the north pole. Pole rows hold lon+1
// copies of the pole position; every row repeats column 0 at column lon.
func sphereGrid(radius float64, lat, lon int, hemisphere bool) *mesh.Mesh {
	span := math.Pi
	if hemisphere {
		span = math.Pi / 2
	}

	m := mesh.New()
	rows := make([][]mesh.VertexID, lat+1)
	for i := range rows {
		v := float64(i) / float64(lat)
		var r, y float64
		switch {
		case i == 0:
			r, y = 0, radius
		case i == lat && hemisphere:
			r, y = radius, 0
		case i == lat:
			r, y = 0, -radius
		default:
			s, c := math.Sincos(span * v)
			r, y = radius*s, radius*c
		}
		rows[i] = ring(m, r, y, v, lon)
	}

	for j := 0; j < lon; j++ {
		m.AddFace(rows[0][j], rows[1][j+1], rows[1][j])
	}
	if hemisphere {
		quadStrip(m, rows[1:])
		return m
	}
	quadStrip(m, rows[1:lat])
	for j := 0; j < lon; j++ {
		m.AddFace(rows[lat-1][j], rows[lat-1][j+1], rows[lat][j])
	}
	return m
}
