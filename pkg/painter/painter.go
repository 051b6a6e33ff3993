// Package painter describes one brush stroke: the shape being rasterized,
// the compositing mode, and the symmetry/clip options the volume's Apply
// dispatcher expands before touching any chunk.
package painter

import (
	"github.com/leterax/go-voxels/pkg/geom"
	"github.com/leterax/go-voxels/pkg/rgba"
	"github.com/leterax/go-voxels/pkg/shape"
)

// Mode selects how a brush sample (or a peer volume's sample, for Merge)
// combines with the existing voxel.
type Mode int

const (
	// Over alpha-composites the brush color onto the existing sample.
	Over Mode = iota
	// Sub clears existing alpha proportionally to brush coverage.
	Sub
	// Max takes the per-channel maximum of the existing sample and the brush.
	Max
	// Intersect keeps the minimum of the existing alpha and the brush alpha.
	Intersect
	// MultAlpha multiplies the existing alpha by the brush coverage.
	MultAlpha
	// Replace overwrites the sample wherever the brush has coverage.
	Replace
)

// String names the mode, mostly for log fields.
func (m Mode) String() string {
	switch m {
	case Over:
		return "over"
	case Sub:
		return "sub"
	case Max:
		return "max"
	case Intersect:
		return "intersect"
	case MultAlpha:
		return "mult_alpha"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

// Constructive reports whether the mode may create new chunks. Sub,
// Intersect and MultAlpha are destructive only: they never grow coverage.
func (m Mode) Constructive() bool {
	return m == Over || m == Max
}

// Symmetry axis bits for Painter.SymmetryMask.
const (
	SymmetryX uint8 = 1 << iota
	SymmetryY
	SymmetryZ
)

// Painter bundles one brush stroke's configuration. Shape and Mode are
// required; the rest default to their zero value (no smoothness,
// transparent black color, no symmetry, no clip).
type Painter struct {
	Shape        shape.Shape
	Mode         Mode
	Smoothness   float32
	Color        rgba.RGBA
	SymmetryMask uint8
	ClipBox      *geom.AABB
}
