package world

import "github.com/cespare/xxhash/v2"

// PositionIndex is a position -> chunk lookup used by dynamic maps
// (MapFlagDynamic) to check whether a chunk near the player's current
// edge has already been requested/received before asking the peer for
// it again. It is additional to the adjacency graph itself (which only
// answers "what is north of X", not "do we have anything at (3,-1)"),
// grounded on the teacher's xxhash-keyed chunk position cache.
type PositionIndex struct {
	buckets map[uint64][]posEntry
}

type posEntry struct {
	pos   Point
	chunk *MapChunk
}

// NewPositionIndex returns an empty index.
func NewPositionIndex() *PositionIndex {
	return &PositionIndex{buckets: make(map[uint64][]posEntry)}
}

func hashPoint(p Point) uint64 {
	var buf [8]byte
	buf[0] = byte(p.X)
	buf[1] = byte(p.X >> 8)
	buf[2] = byte(p.X >> 16)
	buf[3] = byte(p.X >> 24)
	buf[4] = byte(p.Y)
	buf[5] = byte(p.Y >> 8)
	buf[6] = byte(p.Y >> 16)
	buf[7] = byte(p.Y >> 24)
	return xxhash.Sum64(buf[:])
}

// Put records chunk as occupying pos.
func (idx *PositionIndex) Put(pos Point, chunk *MapChunk) {
	h := hashPoint(pos)
	bucket := idx.buckets[h]
	for i, e := range bucket {
		if e.pos == pos {
			bucket[i].chunk = chunk
			return
		}
	}
	idx.buckets[h] = append(bucket, posEntry{pos: pos, chunk: chunk})
}

// Get returns the chunk at pos, if indexed.
func (idx *PositionIndex) Get(pos Point) (*MapChunk, bool) {
	for _, e := range idx.buckets[hashPoint(pos)] {
		if e.pos == pos {
			return e.chunk, true
		}
	}
	return nil, false
}

// Delete removes pos from the index.
func (idx *PositionIndex) Delete(pos Point) {
	h := hashPoint(pos)
	bucket := idx.buckets[h]
	for i, e := range bucket {
		if e.pos == pos {
			idx.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}
