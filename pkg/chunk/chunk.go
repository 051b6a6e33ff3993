// Package chunk implements the fixed-size 3-D tile that backs the sparse
// volume: a dense RGBA array for one N^3 cube of space, with copy-on-write
// payload sharing and a monotone data id external caches (e.g. GPU texture
// uploads) use to detect staleness.
package chunk

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/leterax/go-voxels/pkg/geom"
	"github.com/leterax/go-voxels/pkg/painter"
	"github.com/leterax/go-voxels/pkg/rgba"
)

// Size is the chunk side length. A compile-time constant by design: the
// voxel array below is sized from it directly.
const Size = 16

const cellCount = Size * Size * Size

// nextDataID is a global monotone counter shared by every chunk payload in
// the process. Plain, non-atomic: the store is single-threaded cooperative
// (see package volume's doc comment), so there is nothing to race with.
var nextDataID uint64

func newDataID() uint64 {
	nextDataID++
	return nextDataID
}

// payload is the actual voxel array plus its refcount. It may be aliased
// (shared) across chunk handles until one of them needs to mutate it.
type payload struct {
	voxels        [cellCount]rgba.RGBA
	id            uint64
	ref           int32
	nonEmptyCount int32
}

// Chunk is one N^3 tile at an integer, N-aligned origin. Chunk.ID is the
// per-volume integer assigned when the chunk was created, used by external
// consumers to correlate GPU resources with chunks across frames.
type Chunk struct {
	Origin [3]int32
	ID     uint64
	data   *payload
}

// New creates an empty (all alpha=0) chunk at origin.
func New(origin [3]int32) *Chunk {
	return &Chunk{
		Origin: origin,
		data:   &payload{id: newDataID(), ref: 1},
	}
}

// Copy deep-copies c's payload into a new, uniquely-owned chunk with a
// fresh data id.
func Copy(c *Chunk) *Chunk {
	nd := &payload{voxels: c.data.voxels, id: newDataID(), ref: 1, nonEmptyCount: c.data.nonEmptyCount}
	return &Chunk{Origin: c.Origin, ID: c.ID, data: nd}
}

// Alias returns a new chunk handle sharing c's payload, bumping its
// refcount. Used when a chunk table is cloned for copy-on-write: the clone
// gets its own handle, but mutation is deferred until something actually
// writes to it (ensureUnique forks at that point).
func (c *Chunk) Alias() *Chunk {
	c.data.ref++
	return &Chunk{Origin: c.Origin, ID: c.ID, data: c.data}
}

// ensureUnique forks the payload if another chunk handle shares it. A fork
// keeps the same data id (no sample actually changed yet); the caller is
// expected to bump DataID itself once it finishes mutating.
func (c *Chunk) ensureUnique() {
	if c.data.ref <= 1 {
		return
	}
	c.data.ref--
	c.data = &payload{voxels: c.data.voxels, id: c.data.id, ref: 1, nonEmptyCount: c.data.nonEmptyCount}
}

func (c *Chunk) touch() {
	c.data.id = newDataID()
}

// DataID returns the chunk's current data id.
func (c *Chunk) DataID() uint64 {
	return c.data.id
}

// RawData exposes the chunk's voxel array directly, for external consumers
// (e.g. a GPU texture upload) keyed on DataID for staleness.
func (c *Chunk) RawData() *[cellCount]rgba.RGBA {
	return &c.data.voxels
}

// LocalIndex converts local (x,y,z) coordinates, each in [0,Size), to an
// index into the chunk's flat voxel array: x-major, then y, then z.
func LocalIndex(x, y, z int32) int32 {
	return x*Size*Size + y*Size + z
}

func (c *Chunk) localCoords(world [3]int32) (x, y, z int32) {
	return world[0] - c.Origin[0], world[1] - c.Origin[1], world[2] - c.Origin[2]
}

func inBounds(x, y, z int32) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// IsEmpty reports whether every sample has alpha=0. With fast=true it
// trusts the running occupancy counter maintained by every mutating
// method (valid immediately after any of them returns); with fast=false it
// scans the array.
func (c *Chunk) IsEmpty(fast bool) bool {
	if fast {
		return c.data.nonEmptyCount == 0
	}
	for i := range c.data.voxels {
		if c.data.voxels[i][3] != 0 {
			return false
		}
	}
	return true
}

// BBox returns the chunk's tile box when exact is false, or the tight
// bounding box of its occupied samples (and ok=false if none) when true.
func (c *Chunk) BBox(exact bool) (box geom.AABB, ok bool) {
	min := mgl32.Vec3{float32(c.Origin[0]), float32(c.Origin[1]), float32(c.Origin[2])}
	if !exact {
		max := min.Add(mgl32.Vec3{Size, Size, Size})
		return geom.AABB{Min: min, Max: max, Valid: true}, true
	}
	if c.data.nonEmptyCount == 0 {
		return geom.AABB{}, false
	}
	var lo, hi [3]int32
	lo = [3]int32{Size, Size, Size}
	hi = [3]int32{-1, -1, -1}
	for x := int32(0); x < Size; x++ {
		for y := int32(0); y < Size; y++ {
			for z := int32(0); z < Size; z++ {
				if c.data.voxels[LocalIndex(x, y, z)][3] == 0 {
					continue
				}
				lo[0], hi[0] = minI32(lo[0], x), maxI32(hi[0], x)
				lo[1], hi[1] = minI32(lo[1], y), maxI32(hi[1], y)
				lo[2], hi[2] = minI32(lo[2], z), maxI32(hi[2], z)
			}
		}
	}
	worldMin := mgl32.Vec3{float32(c.Origin[0] + lo[0]), float32(c.Origin[1] + lo[1]), float32(c.Origin[2] + lo[2])}
	worldMax := mgl32.Vec3{float32(c.Origin[0] + hi[0] + 1), float32(c.Origin[1] + hi[1] + 1), float32(c.Origin[2] + hi[2] + 1)}
	return geom.AABB{Min: worldMin, Max: worldMax, Valid: true}, true
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Fill overwrites every sample by calling getColor with each cell's world
// position.
func (c *Chunk) Fill(getColor func(world [3]int32) rgba.RGBA) {
	c.ensureUnique()
	count := int32(0)
	for x := int32(0); x < Size; x++ {
		for y := int32(0); y < Size; y++ {
			for z := int32(0); z < Size; z++ {
				world := [3]int32{c.Origin[0] + x, c.Origin[1] + y, c.Origin[2] + z}
				v := getColor(world)
				c.data.voxels[LocalIndex(x, y, z)] = v
				if v[3] != 0 {
					count++
				}
			}
		}
	}
	c.data.nonEmptyCount = count
	c.touch()
}

// GetAt returns the sample at a world position, or transparent if it is
// outside the chunk's tile.
func (c *Chunk) GetAt(world [3]int32) rgba.RGBA {
	x, y, z := c.localCoords(world)
	if !inBounds(x, y, z) {
		return rgba.RGBA{}
	}
	return c.data.voxels[LocalIndex(x, y, z)]
}

// SetAt writes a single sample at a world position within the chunk.
func (c *Chunk) SetAt(world [3]int32, v rgba.RGBA) {
	x, y, z := c.localCoords(world)
	if !inBounds(x, y, z) {
		return
	}
	c.ensureUnique()
	idx := LocalIndex(x, y, z)
	old := c.data.voxels[idx]
	c.data.voxels[idx] = v
	switch {
	case old[3] == 0 && v[3] != 0:
		c.data.nonEmptyCount++
	case old[3] != 0 && v[3] == 0:
		c.data.nonEmptyCount--
	}
	c.touch()
}

// ShiftAlpha saturating-adds delta to every sample's alpha channel.
func (c *Chunk) ShiftAlpha(delta int) {
	c.ensureUnique()
	count := int32(0)
	for i := range c.data.voxels {
		a := int(c.data.voxels[i][3]) + delta
		switch {
		case a < 0:
			a = 0
		case a > 255:
			a = 255
		}
		c.data.voxels[i][3] = uint8(a)
		if a != 0 {
			count++
		}
	}
	c.data.nonEmptyCount = count
	c.touch()
}

// Op rasterizes an analytic shape, transformed by box, into the chunk
// according to the painter's mode and smoothness.
func (c *Chunk) Op(p *painter.Painter, box geom.Box) {
	c.ensureUnique()
	inv := box.Mat.Inv()
	count := int32(0)
	for x := int32(0); x < Size; x++ {
		for y := int32(0); y < Size; y++ {
			for z := int32(0); z < Size; z++ {
				world := [3]int32{c.Origin[0] + x, c.Origin[1] + y, c.Origin[2] + z}
				local := inv.Mul4x1(mgl32.Vec4{float32(world[0]), float32(world[1]), float32(world[2]), 1})
				b := p.Shape.Sample(mgl32.Vec3{local[0], local[1], local[2]}, p.Smoothness)
				idx := LocalIndex(x, y, z)
				c.data.voxels[idx] = blendPaint(p.Mode, c.data.voxels[idx], p.Color, b)
				if c.data.voxels[idx][3] != 0 {
					count++
				}
			}
		}
	}
	c.data.nonEmptyCount = count
	c.touch()
}

// Merge sample-wise combines c with a peer chunk (which may be nil,
// treated as fully transparent).
func (c *Chunk) Merge(other *Chunk, mode painter.Mode) {
	c.ensureUnique()
	count := int32(0)
	for i := range c.data.voxels {
		var o rgba.RGBA
		if other != nil {
			o = other.data.voxels[i]
		}
		nv := blendMerge(mode, c.data.voxels[i], o)
		c.data.voxels[i] = nv
		if nv[3] != 0 {
			count++
		}
	}
	c.data.nonEmptyCount = count
	c.touch()
}
