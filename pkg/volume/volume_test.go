package volume

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/leterax/go-voxels/pkg/chunk"
	"github.com/leterax/go-voxels/pkg/geom"
	"github.com/leterax/go-voxels/pkg/painter"
	"github.com/leterax/go-voxels/pkg/rgba"
	"github.com/leterax/go-voxels/pkg/shape"
	"github.com/stretchr/testify/assert"
)

func cubeBoxAt(cx, cy, cz, half float32) geom.Box {
	return geom.BoxFromAABB(geom.AABB{
		Min:   mgl32.Vec3{cx - half, cy - half, cz - half},
		Max:   mgl32.Vec3{cx + half, cy + half, cz + half},
		Valid: true,
	})
}

// S1: new(); set_at; bbox/get_at checks.
func TestScenarioS1PointAccess(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.SetAt([3]int32{0, 0, 0}, rgba.RGBA{10, 20, 30, 255}, nil)

	bbox, ok := v.BBox(true)
	assert.True(ok)
	assert.Equal(mgl32.Vec3{0, 0, 0}, bbox.Min)
	assert.Equal(mgl32.Vec3{1, 1, 1}, bbox.Max)

	assert.Equal(rgba.RGBA{10, 20, 30, 255}, v.GetAt([3]int32{0, 0, 0}, nil))
	assert.Equal(rgba.Transparent, v.GetAt([3]int32{1, 0, 0}, nil))
}

// S2: paint cube OVER then SUB with the same box empties it completely.
func TestScenarioS2PaintThenSubtract(t *testing.T) {
	assert := assert.New(t)

	v := New()
	box := cubeBoxAt(0, 0, 0, 1)

	v.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(255, 0, 0)}, box)
	assert.False(v.IsEmpty())

	v.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Sub}, box)
	assert.True(v.IsEmpty())
	assert.Equal(0, chunkCount(v))
}

// S3: clone isolation — painting on a clone must not affect the source.
func TestScenarioS3CloneIsolation(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(255, 0, 0)}, cubeBoxAt(0, 0, 0, 0.5))

	w := Clone(v)
	w.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(0, 0, 255)}, cubeBoxAt(chunk.Size, 0, 0, 0.5))

	assert.Equal(1, chunkCount(v))
	assert.Equal(2, chunkCount(w))
	assert.Equal(rgba.Transparent, v.GetAt([3]int32{chunk.Size, 0, 0}, nil))
	assert.NotEqual(rgba.Transparent, w.GetAt([3]int32{chunk.Size, 0, 0}, nil))
}

// S4: blit a 3x3x3 solid buffer, expect exactly 27 occupied voxels.
func TestScenarioS4BlitRoundTrip(t *testing.T) {
	assert := assert.New(t)

	v := New()
	buf := make([]rgba.RGBA, 27)
	for i := range buf {
		buf[i] = rgba.Opaque(255, 255, 255)
	}
	v.Blit(buf, -1, -1, -1, 3, 3, 3, nil)

	count := 0
	for range v.IterVoxels() {
		count++
	}
	assert.Equal(27, count)

	bbox, ok := v.BBox(true)
	assert.True(ok)
	assert.Equal(mgl32.Vec3{-1, -1, -1}, bbox.Min)
	assert.Equal(mgl32.Vec3{2, 2, 2}, bbox.Max)
}

// S5: move by translate(N,0,0) carries S1's sample along and clears its
// origin.
func TestScenarioS5MoveTranslate(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.SetAt([3]int32{0, 0, 0}, rgba.RGBA{10, 20, 30, 255}, nil)

	mat := mgl32.Translate3D(float32(chunk.Size), 0, 0)
	v.Move(mat)

	assert.Equal(rgba.RGBA{10, 20, 30, 255}, v.GetAt([3]int32{chunk.Size, 0, 0}, nil))
	assert.Equal(rgba.Transparent, v.GetAt([3]int32{0, 0, 0}, nil))
}

func TestMoveIdentityPreservesVoxels(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.SetAt([3]int32{5, 5, 5}, rgba.Opaque(1, 2, 3), nil)
	before := v.GetAt([3]int32{5, 5, 5}, nil)

	v.Move(mgl32.Ident4())
	assert.Equal(before, v.GetAt([3]int32{5, 5, 5}, nil))
}

// S6: select with an "any alpha>0" predicate over a solid cube yields the
// cube's own occupied set.
func TestScenarioS6SelectFloodFill(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(1, 1, 1)}, cubeBoxAt(0, 0, 0, 1))

	mask := New()
	predicate := func(val rgba.RGBA, _ [6]rgba.RGBA, _ [6]uint8) uint8 {
		if val[3] > 0 {
			return 255
		}
		return 0
	}

	status := Select(v, [3]int32{0, 0, 0}, predicate, mask)
	assert.Equal(int32(0), status)

	var wantCount, gotCount int
	for pos, val := range v.IterVoxels() {
		if val[3] > 0 {
			wantCount++
			assert.NotEqual(uint8(0), mask.GetAlphaAt(pos, nil))
		}
	}
	for range mask.IterVoxels() {
		gotCount++
	}
	assert.Equal(wantCount, gotCount)
}

func TestVersionMonotoneAndCloneStable(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v0 := v.Version()

	w := Clone(v)
	assert.Equal(v0, w.Version())

	v.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 1, 1), nil)
	assert.Greater(v.Version(), v0)
}

func TestNoEmptyChunksAtRest(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 1, 1), nil)
	v.SetAt([3]int32{0, 0, 0}, rgba.Transparent, nil)
	v.ShiftAlpha(0)

	assert.Equal(0, chunkCount(v))
}

func TestAlignmentInvariant(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(1, 1, 1)}, cubeBoxAt(5, 5, 5, 3))

	for info := range v.IterChunks() {
		assert.Equal(int32(0), info.Origin[0]%chunk.Size)
		assert.Equal(int32(0), info.Origin[1]%chunk.Size)
		assert.Equal(int32(0), info.Origin[2]%chunk.Size)
	}
}

func TestOverIdempotent(t *testing.T) {
	assert := assert.New(t)

	v := New()
	p := &painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(200, 100, 50)}
	box := cubeBoxAt(0, 0, 0, 1)

	v.Apply(p, box)
	once := snapshot(v)
	v.Apply(p, box)
	twice := snapshot(v)

	assert.Equal(once, twice)
}

// Extrude must clear every pre-existing voxel outside box, however far from
// the destination region it sits, the same way a full-mesh iteration would.
func TestExtrudeClearsFarChunks(t *testing.T) {
	assert := assert.New(t)

	v := New()
	v.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 2, 3), nil)
	far := [3]int32{10 * chunk.Size, 10 * chunk.Size, 10 * chunk.Size}
	v.SetAt(far, rgba.Opaque(4, 5, 6), nil)

	box := geom.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}, Valid: true}
	v.Extrude(geom.Plane{Point: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}}, box)

	assert.Equal(rgba.Transparent, v.GetAt(far, nil))
}

func TestMergeMultAlphaDropsEmptyPeer(t *testing.T) {
	assert := assert.New(t)

	dst := New()
	dst.Apply(&painter.Painter{Shape: shape.Cube{}, Mode: painter.Over, Color: rgba.Opaque(1, 1, 1)}, cubeBoxAt(0, 0, 0, 1))
	src := New()

	Merge(dst, src, painter.MultAlpha)
	assert.True(dst.IsEmpty())
}

// A translucent OVER brush is not idempotent at the same box (each extra
// application alpha-composites again), so it exposes a symmetry recursion
// that visits a sign-combination more than once: a bug there shows up as
// over-painted alpha at the reflected positions, not just a wrong voxel
// count. Testable Property #9 (the volume equals its own reflection across
// each axis) only holds if every combination is applied exactly once.
func TestApplySymmetryVisitsEachCombinationOnce(t *testing.T) {
	assert := assert.New(t)

	v := New()
	color := rgba.RGBA{200, 100, 50, 128}
	p := &painter.Painter{
		Shape:        shape.Cube{},
		Mode:         painter.Over,
		Color:        color,
		SymmetryMask: painter.SymmetryX | painter.SymmetryY | painter.SymmetryZ,
	}
	v.Apply(p, cubeBoxAt(5, 5, 5, 1))

	want := rgba.AlphaOver(rgba.Transparent, color, 1)
	for _, sx := range [2]float32{1, -1} {
		for _, sy := range [2]float32{1, -1} {
			for _, sz := range [2]float32{1, -1} {
				pos := [3]int32{int32(5 * sx), int32(5 * sy), int32(5 * sz)}
				assert.Equal(want, v.GetAt(pos, nil))
			}
		}
	}
}

func chunkCount(v *Volume) int {
	n := 0
	for range v.IterChunks() {
		n++
	}
	return n
}

func snapshot(v *Volume) map[[3]int32]rgba.RGBA {
	out := make(map[[3]int32]rgba.RGBA)
	for pos, val := range v.IterVoxels() {
		out[pos] = val
	}
	return out
}
