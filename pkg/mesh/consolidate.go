package mesh

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultWeldTolerance absorbs the rounding noise of trigonometric seam
// positions without merging distinct vertices of any sane resolution.
const DefaultWeldTolerance = 1e-9

// NormalWeighting selects how face normals are averaged into vertex normals.
type NormalWeighting int

const (
	NormalsNone         NormalWeighting = iota // leave vertex normals untouched
	NormalWeightUniform                        // every incident face counts equally
	NormalWeightArea                           // weighted by face area
	NormalWeightAngle                          // weighted by the corner angle at the vertex
)

func (w NormalWeighting) String() string {
	switch w {
	case NormalsNone:
		return "none"
	case NormalWeightUniform:
		return "uniform"
	case NormalWeightArea:
		return "area"
	case NormalWeightAngle:
		return "angle"
	default:
		return "unknown"
	}
}

// ParseNormalWeighting is the inverse of NormalWeighting.String.
func ParseNormalWeighting(s string) (NormalWeighting, bool) {
	for _, w := range []NormalWeighting{NormalsNone, NormalWeightUniform, NormalWeightArea, NormalWeightAngle} {
		if w.String() == s {
			return w, true
		}
	}
	return NormalsNone, false
}

// ConsolidateOptions configures Consolidate. A zero Tolerance welds only
// bit-identical positions; the zero Normals value skips normal computation.
type ConsolidateOptions struct {
	Tolerance    float64
	Normals      NormalWeighting
	DropIsolated bool // remove vertices no face references after welding
}

// DefaultConsolidateOptions welds with DefaultWeldTolerance and computes
// area-weighted normals.
func DefaultConsolidateOptions() ConsolidateOptions {
	return ConsolidateOptions{
		Tolerance: DefaultWeldTolerance,
		Normals:   NormalWeightArea,
	}
}

// ConsolidateStats reports what a Consolidate pass changed.
type ConsolidateStats struct {
	WeldedVertices  int
	RemovedFaces    int
	DroppedVertices int
}

// Consolidate welds vertices closer than opts.Tolerance, remaps face loops
// onto the surviving (lowest) ID of each cluster, removes faces that
// collapse below three distinct vertices, rebuilds every neighbor-face
// list and optionally recomputes vertex normals. Surviving IDs are a
// subset of the IDs before the pass.
func (m *Mesh) Consolidate(opts ConsolidateOptions) ConsolidateStats {
	var stats ConsolidateStats

	remap := m.weldMap(opts.Tolerance)
	for id, to := range remap {
		if id != to {
			delete(m.vertices, id)
			stats.WeldedVertices++
		}
	}

	for _, fid := range m.FaceIDs() {
		f := m.faces[fid]
		loop := collapseLoop(f.Vertices, remap)
		if len(loop) < 3 || hasRepeats(loop) {
			delete(m.faces, fid)
			stats.RemovedFaces++
			continue
		}
		f.Vertices = loop
	}

	m.rebuildNeighbors()

	if opts.DropIsolated {
		for id, v := range m.vertices {
			if len(v.NeighborFaces) == 0 {
				delete(m.vertices, id)
				stats.DroppedVertices++
			}
		}
	}

	if opts.Normals != NormalsNone {
		m.ComputeNormals(opts.Normals)
	}
	return stats
}

type cellKey [3]int64

// cellLimit bounds the cell index that still fits an int64.
const cellLimit = 1 << 62

// weldCell returns the spatial-hash cell of p for cell size tol. Beyond
// cellLimit cells adjacent float64 values are more than tol apart, so only
// identical coordinates can weld there and the coordinate bits serve as
// the index.
func weldCell(p mgl64.Vec3, tol float64) cellKey {
	var c cellKey
	for i, x := range p {
		q := math.Floor(x / tol)
		if math.Abs(q) < cellLimit {
			c[i] = int64(q)
		} else {
			c[i] = int64(math.Float64bits(x))
		}
	}
	return c
}

// weldMap assigns every vertex to a survivor. Vertices are visited in
// ascending ID order, so the survivor of a cluster is its lowest ID.
func (m *Mesh) weldMap(tol float64) map[VertexID]VertexID {
	ids := m.VertexIDs()
	remap := make(map[VertexID]VertexID, len(ids))

	if tol <= 0 {
		exact := make(map[mgl64.Vec3]VertexID, len(ids))
		for _, id := range ids {
			p := m.vertices[id].Position
			if s, ok := exact[p]; ok {
				remap[id] = s
				continue
			}
			exact[p] = id
			remap[id] = id
		}
		return remap
	}

	grid := make(map[cellKey][]VertexID)
	for _, id := range ids {
		p := m.vertices[id].Position
		c := weldCell(p, tol)
		survivor := InvalidVertexID
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, s := range grid[cellKey{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if s < survivor && m.vertices[s].Position.Sub(p).Len() <= tol {
							survivor = s
						}
					}
				}
			}
		}
		if survivor != InvalidVertexID {
			remap[id] = survivor
			continue
		}
		grid[c] = append(grid[c], id)
		remap[id] = id
	}
	return remap
}

// collapseLoop remaps a loop and drops consecutive duplicates, including
// the wrap-around pair.
func collapseLoop(loop []VertexID, remap map[VertexID]VertexID) []VertexID {
	out := make([]VertexID, 0, len(loop))
	for _, vid := range loop {
		to := remap[vid]
		if len(out) > 0 && out[len(out)-1] == to {
			continue
		}
		out = append(out, to)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func hasRepeats(loop []VertexID) bool {
	for i, vid := range loop {
		if slices.Contains(loop[:i], vid) {
			return true
		}
	}
	return false
}

// rebuildNeighbors recomputes every neighbor-face list from the face
// loops, in ascending face ID order.
func (m *Mesh) rebuildNeighbors() {
	for _, v := range m.vertices {
		v.NeighborFaces = v.NeighborFaces[:0]
	}
	for _, fid := range m.FaceIDs() {
		for _, vid := range m.faces[fid].Vertices {
			v := m.vertices[vid]
			v.NeighborFaces = append(v.NeighborFaces, fid)
		}
	}
}

// ComputeNormals sets every vertex normal to the weighted average of its
// incident face normals. Vertices without faces, or whose faces cancel
// out, are left without a normal.
func (m *Mesh) ComputeNormals(w NormalWeighting) {
	if w == NormalsNone {
		return
	}
	sums := make(map[VertexID]mgl64.Vec3, len(m.vertices))
	for _, fid := range m.FaceIDs() {
		loop := m.faces[fid].Vertices
		raw := m.newell(loop)
		unit := safeNormalize(raw)
		for i, vid := range loop {
			var contrib mgl64.Vec3
			switch w {
			case NormalWeightUniform:
				contrib = unit
			case NormalWeightArea:
				contrib = raw
			case NormalWeightAngle:
				contrib = unit.Mul(m.cornerAngle(loop, i))
			}
			sums[vid] = sums[vid].Add(contrib)
		}
	}
	for id, v := range m.vertices {
		n := safeNormalize(sums[id])
		v.Normal = n
		v.HasNormal = n != (mgl64.Vec3{})
	}
}
