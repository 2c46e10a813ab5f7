package factory

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/polymesh/pkg/mesh"
)

// boxSides lists each side of a box as four corner indices wound
// counter-clockwise seen from outside. Corner k has bit 0 set for +x,
// bit 1 for +y and bit 2 for +z.
var boxSides = [6][4]int{
	{0, 4, 6, 2}, // -x
	{1, 3, 7, 5}, // +x
	{0, 1, 5, 4}, // -y
	{2, 6, 7, 3}, // +y
	{0, 2, 3, 1}, // -z
	{4, 5, 7, 6}, // +z
}

var sideUV = [4]mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Box returns an axis-aligned box of the given size. Each side gets its
// own four vertices so texture coordinates stay per side; welding leaves
// the eight corners.
func (f Factory) Box(size mgl64.Vec3) *mesh.Mesh {
	half := size.Mul(0.5)
	var corners [8]mgl64.Vec3
	for k := range corners {
		for axis := 0; axis < 3; axis++ {
			if k&(1<<axis) != 0 {
				corners[k][axis] = half[axis]
			} else {
				corners[k][axis] = -half[axis]
			}
		}
	}

	m := mesh.New()
	for _, side := range boxSides {
		var loop [4]mesh.VertexID
		for i, k := range side {
			loop[i] = m.AddVertexUV(corners[k], sideUV[i])
		}
		m.AddFace(loop[:]...)
	}
	return f.finish(m)
}
