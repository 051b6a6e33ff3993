package chunk

import (
	"testing"

	"github.com/leterax/go-voxels/pkg/rgba"
	"github.com/stretchr/testify/assert"
)

func TestNewChunkIsEmpty(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	assert.True(c.IsEmpty(true))
	assert.True(c.IsEmpty(false))
}

func TestSetGetRoundTrip(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	want := rgba.Opaque(10, 20, 30)
	c.SetAt([3]int32{1, 2, 3}, want)

	assert.Equal(want, c.GetAt([3]int32{1, 2, 3}))
	assert.False(c.IsEmpty(true))
	assert.False(c.IsEmpty(false))
}

func TestGetAtOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	assert.Equal(rgba.Transparent, c.GetAt([3]int32{100, 0, 0}))
}

func TestDataIDBumpsOnMutation(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	before := c.DataID()
	c.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 1, 1))
	assert.Greater(c.DataID(), before)
}

func TestAliasSharesPayloadUntilMutated(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	c.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 2, 3))
	alias := c.Alias()

	assert.Equal(c.GetAt([3]int32{0, 0, 0}), alias.GetAt([3]int32{0, 0, 0}))

	alias.SetAt([3]int32{0, 0, 0}, rgba.Opaque(9, 9, 9))
	assert.Equal(rgba.Opaque(1, 2, 3), c.GetAt([3]int32{0, 0, 0}))
	assert.Equal(rgba.Opaque(9, 9, 9), alias.GetAt([3]int32{0, 0, 0}))
}

func TestCopyIsIndependent(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	c.SetAt([3]int32{0, 0, 0}, rgba.Opaque(1, 2, 3))
	cp := Copy(c)

	assert.NotEqual(c.DataID(), cp.DataID())
	cp.SetAt([3]int32{0, 0, 0}, rgba.Opaque(9, 9, 9))
	assert.Equal(rgba.Opaque(1, 2, 3), c.GetAt([3]int32{0, 0, 0}))
}

func TestBBoxExactEmptyReturnsFalse(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	_, ok := c.BBox(true)
	assert.False(ok)

	box, ok := c.BBox(false)
	assert.True(ok)
	assert.Equal(float32(Size), box.Max[0]-box.Min[0])
}

func TestBBoxExactTight(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{16, 0, 0})
	c.SetAt([3]int32{17, 2, 3}, rgba.Opaque(1, 1, 1))

	box, ok := c.BBox(true)
	assert.True(ok)
	assert.Equal(float32(17), box.Min[0])
	assert.Equal(float32(18), box.Max[0])
	assert.Equal(float32(2), box.Min[1])
	assert.Equal(float32(3), box.Max[1])
}

func TestShiftAlphaSaturates(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	c.SetAt([3]int32{0, 0, 0}, rgba.RGBA{1, 2, 3, 200})
	c.ShiftAlpha(100)
	assert.Equal(uint8(255), c.GetAt([3]int32{0, 0, 0})[3])

	c.ShiftAlpha(-300)
	assert.True(c.IsEmpty(true))
}

func TestFillCoversEveryCell(t *testing.T) {
	assert := assert.New(t)

	c := New([3]int32{0, 0, 0})
	c.Fill(func(world [3]int32) rgba.RGBA {
		return rgba.Opaque(1, 1, 1)
	})
	assert.False(c.IsEmpty(false))
	for x := int32(0); x < Size; x++ {
		assert.Equal(rgba.Opaque(1, 1, 1), c.GetAt([3]int32{x, 0, 0}))
	}
}
