// Package volume implements the public, sparse, copy-on-write voxel store:
// a chunk table wrapped with COW metadata, a global monotone version id,
// and a per-volume next-chunk-id counter.
//
// The store is single-threaded cooperative: there is no internal
// synchronization. Callers must externally serialize mutations on a
// volume; read-only operations are safe to parallelize across goroutines
// only if no goroutine holds a mutable path and no Accessor is shared
// across them.
package volume

import (
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/leterax/go-voxels/pkg/chunk"
	"github.com/leterax/go-voxels/pkg/chunktable"
	"github.com/leterax/go-voxels/pkg/geom"
	"github.com/leterax/go-voxels/pkg/painter"
	"github.com/leterax/go-voxels/pkg/rgba"
	"github.com/leterax/go-voxels/pkg/shape"
)

// nextVersion is a global monotone counter shared by every volume,
// mirroring chunk's data-id counter: plain, non-atomic, by the same
// single-threaded contract.
var nextVersion uint64

func bumpVersion() uint64 {
	nextVersion++
	return nextVersion
}

// Volume is the sparse voxel store.
type Volume struct {
	table       *chunktable.Table
	version     uint64
	nextChunkID uint64
}

// New returns an empty volume.
func New() *Volume {
	return &Volume{table: chunktable.New(), version: bumpVersion(), nextChunkID: 1}
}

// Clone returns a second volume pointing at the same chunk table (an O(1)
// operation: the table's refcount is bumped, no chunk is touched). It does
// not change v's version, since the logical content hasn't changed.
func Clone(v *Volume) *Volume {
	v.table.Retain()
	return &Volume{table: v.table, version: v.version, nextChunkID: v.nextChunkID}
}

// Assign drops dst's table (releasing it, which frees it once no volume
// holds it) and makes dst point at src's table instead. A no-op when dst
// and src already share a table.
func Assign(dst, src *Volume) {
	if dst.table == src.table {
		return
	}
	dst.table.Release()
	src.table.Retain()
	dst.table = src.table
	dst.nextChunkID = src.nextChunkID
	dst.version = bumpVersion()
}

// Delete releases v's hold on its chunk table.
func Delete(v *Volume) {
	v.table.Release()
}

// Clear removes every chunk from v.
func Clear(v *Volume) {
	v.prepareWrite()
	v.table.Clear()
	v.nextChunkID = 1
}

// BBox returns the volume's bounding box: the union of every chunk's
// BBox(exact).
func (v *Volume) BBox(exact bool) (geom.AABB, bool) {
	var out geom.AABB
	v.table.ForEachReadOnly(func(_ chunktable.Key, c *chunk.Chunk) bool {
		if box, ok := c.BBox(exact); ok {
			out = out.Merge(box)
		}
		return false
	})
	return out, out.Valid
}

// IsEmpty reports whether the volume holds any chunk. Chunks left empty by
// a mutation are always swept before the mutating call returns, so an
// empty table is the only way a volume can be empty.
func (v *Volume) IsEmpty() bool {
	return v.table.Len() == 0
}

// Version returns the volume's current version id. It strictly increases
// on every mutation and is unaffected by Clone.
func (v *Volume) Version() uint64 {
	return v.version
}

// prepareWrite is the copy-on-write entry point every mutating operation
// calls first: it bumps the version, and if the table is shared, forks a
// private copy (with aliased, not copied, chunk payloads).
func (v *Volume) prepareWrite() {
	if v.table.RefCount() <= 0 {
		panic("volume: prepare_write on a released table")
	}
	v.version = bumpVersion()
	if v.table.RefCount() == 1 {
		return
	}
	v.table.Release()
	v.table = v.table.Clone()
}

func (v *Volume) newChunkAt(origin chunktable.Key) *chunk.Chunk {
	c := chunk.New(origin)
	c.ID = v.nextChunkID
	v.nextChunkID++
	v.table.Insert(c)
	return c
}

// insertChunksCovering adds an empty chunk for every tile origin
// intersecting bbox that isn't already present.
func (v *Volume) insertChunksCovering(bbox geom.AABB) {
	if !bbox.Valid {
		return
	}
	ia := tileOriginF(bbox.Min, math.Floor)
	ib := tileOriginF(bbox.Max, math.Ceil)
	for z := ia[2]; z <= ib[2]; z += chunk.Size {
		for y := ia[1]; y <= ib[1]; y += chunk.Size {
			for x := ia[0]; x <= ib[0]; x += chunk.Size {
				origin := chunktable.Key{x, y, z}
				if _, ok := v.table.Find(origin); !ok {
					v.newChunkAt(origin)
				}
			}
		}
	}
}

func tileOriginF(p mgl32.Vec3, round func(float64) float64) chunktable.Key {
	cell := func(v float32) int32 {
		return floorToMultiple(int32(round(float64(v))))
	}
	return chunktable.Key{cell(p[0]), cell(p[1]), cell(p[2])}
}

func tileOrigin(pos [3]int32) chunktable.Key {
	return chunktable.Key{floorToMultiple(pos[0]), floorToMultiple(pos[1]), floorToMultiple(pos[2])}
}

func floorToMultiple(x int32) int32 {
	r := x % chunk.Size
	if r < 0 {
		r += chunk.Size
	}
	return x - r
}

// Accessor caches the most recently used (tile origin, chunk) pair for
// GetAt/SetAt/GetAlphaAt. It is single-threaded scratch state pinned to one
// volume; a mutation through any other path invalidates it, per the
// "accessor valid only between mutations" contract — callers that
// interleave accessors across mutations are responsible for re-seating
// them.
type Accessor struct {
	origin chunktable.Key
	chunk  *chunk.Chunk
	valid  bool
}

// NewAccessor returns a fresh, unseated accessor.
func NewAccessor() *Accessor {
	return &Accessor{}
}

func (v *Volume) lookup(origin chunktable.Key, acc *Accessor) *chunk.Chunk {
	if acc != nil && acc.valid && acc.origin == origin {
		return acc.chunk
	}
	c, _ := v.table.Find(origin)
	if acc != nil {
		acc.origin, acc.chunk, acc.valid = origin, c, true
	}
	return c
}

// GetAt returns the sample at pos, or transparent if no chunk covers it.
func (v *Volume) GetAt(pos [3]int32, acc *Accessor) rgba.RGBA {
	c := v.lookup(tileOrigin(pos), acc)
	if c == nil {
		return rgba.RGBA{}
	}
	return c.GetAt(pos)
}

// GetAlphaAt returns just the alpha channel at pos.
func (v *Volume) GetAlphaAt(pos [3]int32, acc *Accessor) uint8 {
	return v.GetAt(pos, acc)[3]
}

// SetAt writes a sample at pos, inserting a new chunk if none covers it yet.
func (v *Volume) SetAt(pos [3]int32, val rgba.RGBA, acc *Accessor) {
	v.prepareWrite()
	origin := tileOrigin(pos)
	c := v.lookup(origin, acc)
	if c == nil {
		c = v.newChunkAt(origin)
		if acc != nil {
			acc.origin, acc.chunk, acc.valid = origin, c, true
		}
	}
	c.SetAt(pos, val)
	if c.IsEmpty(true) {
		v.table.Delete(origin)
		if acc != nil {
			acc.valid = false
		}
	}
}

// sweepEmpty deletes every chunk left empty by a mutation: the "no empty
// chunks at rest" invariant.
func (v *Volume) sweepEmpty() {
	v.table.ForEach(func(_ chunktable.Key, c *chunk.Chunk) bool {
		return c.IsEmpty(true)
	})
}

// Apply runs a painter's brush stroke against the volume.
func (v *Volume) Apply(p *painter.Painter, box geom.Box) {
	v.applyOne(p, box)
}

func (v *Volume) applyOne(p *painter.Painter, box geom.Box) {
	if p.SymmetryMask != 0 {
		p2 := *p
		for axis := 0; axis < 3; axis++ {
			bit := uint8(1) << axis
			if p2.SymmetryMask&bit == 0 {
				continue
			}
			p2.SymmetryMask &^= bit
			reflect := mgl32.Ident4()
			reflect[axis*4+axis] = -1
			box2 := geom.Box{Mat: reflect.Mul4(box.Mat)}
			v.applyOne(&p2, box2)
		}
	}

	fullBox := box.Grow(p.Smoothness, p.Smoothness, p.Smoothness)
	bbox := fullBox.BBox().Grow(1)
	if p.ClipBox != nil {
		bbox = bbox.Intersect(*p.ClipBox)
		if !bbox.Valid {
			return
		}
	}

	v.prepareWrite()

	if p.Mode.Constructive() {
		v.insertChunksCovering(bbox)
	}

	_, cubeShape := p.Shape.(shape.Cube)
	v.table.ForEach(func(_ chunktable.Key, c *chunk.Chunk) bool {
		cbox, _ := c.BBox(false)
		if !bbox.Intersects(cbox) {
			return p.Mode == painter.Intersect
		}
		if cubeShape && p.Mode == painter.Sub && fullBox.ContainsAABB(cbox) {
			return true
		}
		c.Op(p, box)
		return c.IsEmpty(true)
	})
}

// Merge combines src's samples into dst, per mode, chunk by chunk. src is
// left unmodified.
func Merge(dst, src *Volume, mode painter.Mode) {
	dst.prepareWrite()
	if mode.Constructive() {
		src.table.ForEachReadOnly(func(origin chunktable.Key, _ *chunk.Chunk) bool {
			if _, ok := dst.table.Find(origin); !ok {
				dst.newChunkAt(origin)
			}
			return false
		})
	}
	dst.table.ForEach(func(origin chunktable.Key, c *chunk.Chunk) bool {
		peer, _ := src.table.Find(origin)
		peerEmpty := peer == nil || peer.IsEmpty(true)
		if (c.IsEmpty(true) && peerEmpty) || (mode == painter.MultAlpha && peerEmpty) {
			return true
		}
		c.Merge(peer, mode)
		return c.IsEmpty(true)
	})
}

// Blit sample-wise overwrites a w x h x d box anchored at (x,y,z) with a
// packed RGBA buffer in x-major, then y, then z order, sweeping any chunk
// left empty afterward.
func (v *Volume) Blit(buf []rgba.RGBA, x, y, z, w, h, d int32, acc *Accessor) {
	v.prepareWrite()
	i := 0
	for lx := int32(0); lx < w; lx++ {
		for ly := int32(0); ly < h; ly++ {
			for lz := int32(0); lz < d; lz++ {
				pos := [3]int32{x + lx, y + ly, z + lz}
				val := buf[i]
				i++
				origin := tileOrigin(pos)
				c := v.lookup(origin, acc)
				if c == nil {
					if val[3] == 0 {
						continue
					}
					c = v.newChunkAt(origin)
					if acc != nil {
						acc.origin, acc.chunk, acc.valid = origin, c, true
					}
				}
				c.SetAt(pos, val)
			}
		}
	}
	v.sweepEmpty()
}

// ShiftAlpha saturating-adds delta to the alpha of every sample in every
// chunk the volume holds (alpha-0 samples included; positions with no chunk
// are not touched), sweeping chunks that become empty.
func (v *Volume) ShiftAlpha(delta int) {
	v.prepareWrite()
	v.table.ForEach(func(_ chunktable.Key, c *chunk.Chunk) bool {
		c.ShiftAlpha(delta)
		return c.IsEmpty(true)
	})
}

// Move resamples v through mat via nearest-neighbor back-projection: every
// destination cell's color is sampled from round(inverse(mat) * p) in the
// pre-move volume.
func (v *Volume) Move(mat mgl32.Mat4) {
	src := Clone(v)
	imat := mat.Inv()

	v.prepareWrite()
	bbox, ok := v.BBox(true)
	if !ok {
		Delete(src)
		return
	}

	var dst geom.AABB
	for _, c := range bbox.Corners() {
		w := mat.Mul4x1(mgl32.Vec4{c[0], c[1], c[2], 1})
		wp := mgl32.Vec3{w[0], w[1], w[2]}
		dst = dst.Merge(geom.AABB{Min: wp, Max: wp, Valid: true})
	}

	v.table.Clear()
	v.nextChunkID = 1
	v.insertChunksCovering(dst)

	srcAcc := NewAccessor()
	v.table.ForEach(func(origin chunktable.Key, c *chunk.Chunk) bool {
		for lx := int32(0); lx < chunk.Size; lx++ {
			for ly := int32(0); ly < chunk.Size; ly++ {
				for lz := int32(0); lz < chunk.Size; lz++ {
					world := [3]int32{origin[0] + lx, origin[1] + ly, origin[2] + lz}
					p := imat.Mul4x1(mgl32.Vec4{float32(world[0]), float32(world[1]), float32(world[2]), 1})
					srcPos := [3]int32{
						int32(math.Round(float64(p[0]))),
						int32(math.Round(float64(p[1]))),
						int32(math.Round(float64(p[2]))),
					}
					c.SetAt(world, src.GetAt(srcPos, srcAcc))
				}
			}
		}
		return c.IsEmpty(true)
	})

	Delete(src)
}

// Extrude projects the volume along a near-axis-aligned plane normal into
// box, overwriting every cell of box with a sample of the volume taken
// along the projected ray.
func (v *Volume) Extrude(plane geom.Plane, box geom.AABB) {
	if !box.Valid {
		return
	}

	// Clone before prepare_write so the fork below separates the
	// pre-extrude chunks (kept alive through src) from the chunks this
	// call is about to overwrite in place.
	src := Clone(v)
	v.prepareWrite()

	proj := mgl32.Ident4()
	if plane.AxisDominant(0) {
		proj[0], proj[12] = 0, plane.Point[0]
	}
	if plane.AxisDominant(1) {
		proj[5], proj[13] = 0, plane.Point[1]
	}
	if plane.AxisDominant(2) {
		proj[10], proj[14] = 0, plane.Point[2]
	}

	// insertChunksCovering only adds chunks the destination region needs;
	// every chunk already in the table, wherever it sits, is still walked
	// below and cleared outside box, matching mesh_extrude's unconditional
	// whole-mesh iteration rather than scoping the clear to a local halo.
	v.insertChunksCovering(box)

	acc := NewAccessor()
	v.table.ForEach(func(origin chunktable.Key, c *chunk.Chunk) bool {
		for lx := int32(0); lx < chunk.Size; lx++ {
			for ly := int32(0); ly < chunk.Size; ly++ {
				for lz := int32(0); lz < chunk.Size; lz++ {
					world := [3]int32{origin[0] + lx, origin[1] + ly, origin[2] + lz}
					wv := mgl32.Vec3{float32(world[0]), float32(world[1]), float32(world[2])}
					if !box.Contains(wv) {
						c.SetAt(world, rgba.RGBA{})
						continue
					}
					p := proj.Mul4x1(mgl32.Vec4{wv[0], wv[1], wv[2], 1})
					srcPos := [3]int32{
						int32(math.Floor(float64(p[0]))),
						int32(math.Floor(float64(p[1]))),
						int32(math.Floor(float64(p[2]))),
					}
					c.SetAt(world, src.GetAt(srcPos, acc))
				}
			}
		}
		return c.IsEmpty(true)
	})
	Delete(src)
}

// SelectPredicate decides whether a candidate voxel q joins the mask, given
// v's own sample, the 6 face-neighbor samples of v, and the 6 face-neighbor
// alpha values already present in the mask (face order matches
// geom.FacesNormals).
type SelectPredicate func(v rgba.RGBA, neighbors [6]rgba.RGBA, maskNeighbors [6]uint8) uint8

// Select flood-fills a mask volume from seed, driven by predicate, and
// returns a reserved status (currently always 0; any non-negative value
// means success).
func Select(v *Volume, seed [3]int32, predicate SelectPredicate, mask *Volume) int32 {
	Clear(mask)
	mask.SetAt(seed, rgba.RGBA{255, 255, 255, 255}, nil)

	vAcc, mAcc := NewAccessor(), NewAccessor()
	for {
		frontier := make([][3]int32, 0)
		mask.table.ForEachReadOnly(func(origin chunktable.Key, c *chunk.Chunk) bool {
			for lx := int32(0); lx < chunk.Size; lx++ {
				for ly := int32(0); ly < chunk.Size; ly++ {
					for lz := int32(0); lz < chunk.Size; lz++ {
						world := [3]int32{origin[0] + lx, origin[1] + ly, origin[2] + lz}
						if c.GetAt(world)[3] != 0 {
							frontier = append(frontier, world)
						}
					}
				}
			}
			return false
		})

		progress := false
		for _, p := range frontier {
			for _, f := range geom.FacesNormals {
				q := [3]int32{p[0] + f[0], p[1] + f[1], p[2] + f[2]}
				if mask.GetAlphaAt(q, mAcc) != 0 {
					continue
				}
				var nb [6]rgba.RGBA
				var mnb [6]uint8
				for i, g := range geom.FacesNormals {
					qn := [3]int32{q[0] + g[0], q[1] + g[1], q[2] + g[2]}
					nb[i] = v.GetAt(qn, vAcc)
					mnb[i] = mask.GetAlphaAt(qn, mAcc)
				}
				val := v.GetAt(q, vAcc)
				a := predicate(val, nb, mnb)
				if a != 0 {
					mask.SetAt(q, rgba.RGBA{255, 255, 255, a}, mAcc)
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}
	return 0
}

// IterVoxels lazily yields every (world position, sample) with alpha > 0,
// chunk-major in table order, then x, then y, then z within a chunk.
func (v *Volume) IterVoxels() iter.Seq2[[3]int32, rgba.RGBA] {
	return func(yield func([3]int32, rgba.RGBA) bool) {
		v.table.ForEachReadOnly(func(origin chunktable.Key, c *chunk.Chunk) bool {
			stop := false
			for x := int32(0); x < chunk.Size && !stop; x++ {
				for y := int32(0); y < chunk.Size && !stop; y++ {
					for z := int32(0); z < chunk.Size && !stop; z++ {
						world := [3]int32{origin[0] + x, origin[1] + y, origin[2] + z}
						val := c.GetAt(world)
						if val[3] == 0 {
							continue
						}
						if !yield(world, val) {
							stop = true
						}
					}
				}
			}
			return stop
		})
	}
}

// ChunkInfo is one entry of IterChunks: a chunk's identity alongside a
// handle for ChunkRawData / direct inspection.
type ChunkInfo struct {
	Origin  [3]int32
	DataID  uint64
	ChunkID uint64
	Handle  *chunk.Chunk
}

// IterChunks lazily yields every chunk's identity, in table order.
func (v *Volume) IterChunks() iter.Seq[ChunkInfo] {
	return func(yield func(ChunkInfo) bool) {
		v.table.ForEachReadOnly(func(origin chunktable.Key, c *chunk.Chunk) bool {
			info := ChunkInfo{Origin: origin, DataID: c.DataID(), ChunkID: c.ID, Handle: c}
			return !yield(info)
		})
	}
}

// ChunkRawData exposes a chunk's voxel array directly for external
// consumers (e.g. a GPU texture upload) keyed on its DataID for staleness.
func ChunkRawData(h *chunk.Chunk) *[chunk.Size * chunk.Size * chunk.Size]rgba.RGBA {
	return h.RawData()
}
