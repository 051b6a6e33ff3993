// Package geom provides the box, bounding-box and plane math the painter
// dispatcher and transforms need: an oriented Box (the unit cube transformed
// by a 4x4 matrix), an axis-aligned AABB, and a Plane for extrude.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FacesNormals lists the six face-neighbor unit vectors, used by select and
// by the shape SPI's callers. Order: +X,-X,+Y,-Y,+Z,-Z.
var FacesNormals = [6][3]int32{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Box is the unit cube [-1,1]^3 transformed into world space by Mat. A
// painter's target region, and the SPI shapes sample, are expressed this
// way so that rotation, scale and translation all fall out of one matrix.
type Box struct {
	Mat mgl32.Mat4
}

// IdentityBox returns the axis-aligned unit cube at the origin.
func IdentityBox() Box {
	return Box{Mat: mgl32.Ident4()}
}

// BoxFromAABB builds a Box whose unit cube maps exactly onto a.
func BoxFromAABB(a AABB) Box {
	center := a.Min.Add(a.Max).Mul(0.5)
	half := a.Max.Sub(a.Min).Mul(0.5)
	m := mgl32.Ident4()
	m[0], m[5], m[10] = half[0], half[1], half[2]
	m[12], m[13], m[14] = center[0], center[1], center[2]
	return Box{Mat: m}
}

// Mul premultiplies the box's transform by m (applies m after Mat).
func (b Box) Mul(m mgl32.Mat4) Box {
	return Box{Mat: m.Mul4(b.Mat)}
}

// Corners returns the 8 world-space corners of the transformed unit cube.
func (b Box) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	i := 0
	for _, x := range [2]float32{-1, 1} {
		for _, y := range [2]float32{-1, 1} {
			for _, z := range [2]float32{-1, 1} {
				w := b.Mat.Mul4x1(mgl32.Vec4{x, y, z, 1})
				out[i] = mgl32.Vec3{w[0], w[1], w[2]}
				i++
			}
		}
	}
	return out
}

// BBox returns the axis-aligned bounding box of the transformed cube.
func (b Box) BBox() AABB {
	var out AABB
	for _, c := range b.Corners() {
		out = out.extend(c)
	}
	return out
}

// Grow grows the box along each of its own local axes by the given amount,
// keeping orientation. Used to expand a painter's target by its smoothness.
func (b Box) Grow(dx, dy, dz float32) Box {
	m := b.Mat
	deltas := [3]float32{dx, dy, dz}
	for col := 0; col < 3; col++ {
		base := col * 4
		axis := mgl32.Vec3{m[base], m[base+1], m[base+2]}
		if l := axis.Len(); l > 1e-9 {
			axis = axis.Add(axis.Mul(deltas[col] / l))
		}
		m[base], m[base+1], m[base+2] = axis[0], axis[1], axis[2]
	}
	return Box{Mat: m}
}

// ContainsAABB reports whether the box fully contains a: every corner of a,
// mapped into the box's local unit-cube space, falls within [-1,1]^3. Used
// by the painter's cube/SUB fast path to clear a chunk without scanning it.
func (b Box) ContainsAABB(a AABB) bool {
	inv := b.Mat.Inv()
	for _, c := range a.Corners() {
		p := inv.Mul4x1(mgl32.Vec4{c[0], c[1], c[2], 1})
		if p[0] < -1 || p[0] > 1 || p[1] < -1 || p[1] > 1 || p[2] < -1 || p[2] > 1 {
			return false
		}
	}
	return true
}

// AABB is an axis-aligned bounding box. The zero value is the null (empty)
// box: Valid is false and Min/Max carry no meaning.
type AABB struct {
	Min, Max mgl32.Vec3
	Valid    bool
}

func (a AABB) extend(p mgl32.Vec3) AABB {
	if !a.Valid {
		return AABB{Min: p, Max: p, Valid: true}
	}
	return AABB{
		Min:   mgl32.Vec3{min(a.Min[0], p[0]), min(a.Min[1], p[1]), min(a.Min[2], p[2])},
		Max:   mgl32.Vec3{max(a.Max[0], p[0]), max(a.Max[1], p[1]), max(a.Max[2], p[2])},
		Valid: true,
	}
}

// Corners returns the 8 corners of the box.
func (a AABB) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	i := 0
	for _, x := range [2]float32{a.Min[0], a.Max[0]} {
		for _, y := range [2]float32{a.Min[1], a.Max[1]} {
			for _, z := range [2]float32{a.Min[2], a.Max[2]} {
				out[i] = mgl32.Vec3{x, y, z}
				i++
			}
		}
	}
	return out
}

// Grow expands the box by n on every side (used to add the halo around a
// painter's bounds).
func (a AABB) Grow(n float32) AABB {
	if !a.Valid {
		return a
	}
	d := mgl32.Vec3{n, n, n}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d), Valid: true}
}

// Intersect returns the intersection of a and b, or the null box if they
// don't overlap.
func (a AABB) Intersect(b AABB) AABB {
	if !a.Valid || !b.Valid {
		return AABB{}
	}
	lo := mgl32.Vec3{max(a.Min[0], b.Min[0]), max(a.Min[1], b.Min[1]), max(a.Min[2], b.Min[2])}
	hi := mgl32.Vec3{min(a.Max[0], b.Max[0]), min(a.Max[1], b.Max[1]), min(a.Max[2], b.Max[2])}
	if lo[0] > hi[0] || lo[1] > hi[1] || lo[2] > hi[2] {
		return AABB{}
	}
	return AABB{Min: lo, Max: hi, Valid: true}
}

// Intersects reports whether a and b overlap.
func (a AABB) Intersects(b AABB) bool {
	return a.Intersect(b).Valid
}

// Merge returns the union bounding box of a and b.
func (a AABB) Merge(b AABB) AABB {
	if !a.Valid {
		return b
	}
	if !b.Valid {
		return a
	}
	return AABB{
		Min:   mgl32.Vec3{min(a.Min[0], b.Min[0]), min(a.Min[1], b.Min[1]), min(a.Min[2], b.Min[2])},
		Max:   mgl32.Vec3{max(a.Max[0], b.Max[0]), max(a.Max[1], b.Max[1]), max(a.Max[2], b.Max[2])},
		Valid: true,
	}
}

// Contains reports whether p lies within the box, inclusive.
func (a AABB) Contains(p mgl32.Vec3) bool {
	return a.Valid &&
		p[0] >= a.Min[0] && p[0] <= a.Max[0] &&
		p[1] >= a.Min[1] && p[1] <= a.Max[1] &&
		p[2] >= a.Min[2] && p[2] <= a.Max[2]
}

// Plane is an oriented plane used by extrude: a point on the plane and its
// normal. Extrude only supports near-axis-aligned normals; AxisDominant
// reports whether a given axis component dominates enough to be treated as
// that axis.
type Plane struct {
	Point  mgl32.Vec3
	Normal mgl32.Vec3
}

// AxisDominant reports whether the plane's normal, once normalized, has a
// large enough component along axis (0=x,1=y,2=z) to be projected along it.
// This mirrors the source's bare `fabs(n.x) > 0.1` precondition: normals far
// from axis-aligned are not supported and simply contribute no projection
// on that axis.
func (p Plane) AxisDominant(axis int) bool {
	n := p.Normal
	if l := n.Len(); l > 1e-9 {
		n = n.Mul(1 / l)
	}
	return float32(math.Abs(float64(n[axis]))) > 0.1
}
