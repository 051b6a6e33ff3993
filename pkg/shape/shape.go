// Package shape defines the analytic shape SPI the painter dispatcher
// rasterizes against a chunk: a signed-distance-like sample in the shape's
// own local (box) space, with an optional smoothness falloff.
//
// Shapes are a tagged set of small value types, not a class hierarchy —
// the painter only ever needs to know whether a shape is the cube, for its
// SUB fast path.
package shape

import "github.com/go-gl/mathgl/mgl32"

// Shape reports the brush alpha in [0,1] at a point expressed in the
// painter box's local unit-cube space (i.e. after the box's inverse
// transform has already been applied by the caller).
type Shape interface {
	Sample(point mgl32.Vec3, smoothness float32) float32
}

// Cube is the unit cube itself: solid inside [-1,1]^3.
type Cube struct{}

// Sample implements Shape.
func (Cube) Sample(p mgl32.Vec3, smoothness float32) float32 {
	return falloff(cubeDistance(p), smoothness)
}

func cubeDistance(p mgl32.Vec3) float32 {
	return max(max(abs32(p[0]), abs32(p[1])), abs32(p[2])) - 1
}

// Sphere is the unit sphere inscribed in the same box.
type Sphere struct{}

// Sample implements Shape.
func (Sphere) Sample(p mgl32.Vec3, smoothness float32) float32 {
	return falloff(p.Len()-1, smoothness)
}

// Cylinder is a unit cylinder with its axis along local Y.
type Cylinder struct{}

// Sample implements Shape.
func (Cylinder) Sample(p mgl32.Vec3, smoothness float32) float32 {
	radial := mgl32.Vec2{p[0], p[2]}.Len() - 1
	axial := abs32(p[1]) - 1
	return falloff(max(radial, axial), smoothness)
}

// falloff converts a signed distance (negative inside, positive outside)
// to a brush alpha in [0,1]. With smoothness == 0 the edge is hard; with
// smoothness > 0 the alpha ramps linearly over that distance.
func falloff(d, smoothness float32) float32 {
	if smoothness <= 0 {
		if d <= 0 {
			return 1
		}
		return 0
	}
	v := 1 - d/smoothness
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
