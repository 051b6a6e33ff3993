// Package chunktable implements the sparse mapping from integer chunk
// origin to chunk, shared and refcounted across volumes for O(1) clone.
package chunktable

import "github.com/leterax/go-voxels/pkg/chunk"

// Key is a chunk's tile origin, always a multiple of chunk.Size per axis.
type Key = [3]int32

// Table is a refcounted hash map of chunks keyed by origin. Multiple
// volumes may point at the same table (Retain/Release track how many);
// prepare_write forks a private copy on the first write after a clone.
type Table struct {
	chunks map[Key]*chunk.Chunk
	ref    int32
}

// New returns an empty table with a refcount of 1.
func New() *Table {
	return &Table{chunks: make(map[Key]*chunk.Chunk), ref: 1}
}

// Retain increments the table's refcount (a volume clone).
func (t *Table) Retain() {
	t.ref++
}

// Release decrements the table's refcount and returns the new value.
func (t *Table) Release() int32 {
	t.ref--
	return t.ref
}

// RefCount returns the table's current refcount.
func (t *Table) RefCount() int32 {
	return t.ref
}

// Find looks up the chunk at origin.
func (t *Table) Find(origin Key) (*chunk.Chunk, bool) {
	c, ok := t.chunks[origin]
	return c, ok
}

// Insert adds c, keyed by its origin. Panics if the origin is not a multiple
// of chunk.Size on every axis, or if a chunk already occupies that origin:
// two chunks may never share an origin in one table.
func (t *Table) Insert(c *chunk.Chunk) {
	for _, o := range c.Origin {
		if o%chunk.Size != 0 {
			panic("chunktable: chunk origin not aligned to chunk.Size")
		}
	}
	if _, exists := t.chunks[c.Origin]; exists {
		panic("chunktable: duplicate chunk origin")
	}
	t.chunks[c.Origin] = c
}

// Delete removes the chunk at origin, if any.
func (t *Table) Delete(origin Key) {
	delete(t.chunks, origin)
}

// Len returns the number of chunks in the table.
func (t *Table) Len() int {
	return len(t.chunks)
}

// Clear removes every chunk.
func (t *Table) Clear() {
	t.chunks = make(map[Key]*chunk.Chunk)
}

// ForEach calls fn for every chunk. Returning remove=true deletes that
// chunk immediately; Go's map iteration permits deleting the current key
// mid-range, so this needs no separate deferred-delete pass.
func (t *Table) ForEach(fn func(origin Key, c *chunk.Chunk) (remove bool)) {
	for origin, c := range t.chunks {
		if fn(origin, c) {
			delete(t.chunks, origin)
		}
	}
}

// ForEachReadOnly calls fn for every chunk; returning stop=true ends the
// iteration early. Used by iterators, which must not mutate the table.
func (t *Table) ForEachReadOnly(fn func(origin Key, c *chunk.Chunk) (stop bool)) {
	for origin, c := range t.chunks {
		if fn(origin, c) {
			return
		}
	}
}

// Clone returns a new table, ref=1, holding an aliased handle (shared
// payload, bumped payload refcount) for every chunk in t. Used by
// prepare_write when forking a shared table.
func (t *Table) Clone() *Table {
	nt := New()
	for origin, c := range t.chunks {
		nt.chunks[origin] = c.Alias()
	}
	return nt
}
