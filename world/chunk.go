package world

import "github.com/pokgame/engine/errs"

// ChunkFlags mirrors pok_map_chunk_flags in protocol.h.
type ChunkFlags uint8

const (
	ChunkFlagNone  ChunkFlags = 0
	ChunkFlagByRef ChunkFlags = 0x01
)

// MapChunk owns a Size.Rows x Size.Columns grid of Tile and up to four
// neighboring chunks, indexed by Direction. It is the dynamic network
// object described by spec.md's Map & chunk graph component; NetID is 0
// until the chunk has been assigned (or has claimed) a netobj identity.
type MapChunk struct {
	NetID uint32

	Size Size
	data [][]Tile // data[row][column]

	adjacent [4]*MapChunk // indexed by Direction (DirNone excluded)

	Counter uint8
	Flags   ChunkFlags

	discov bool // DFS visited marker used by Free
}

// NewChunk allocates a size.Rows x size.Columns grid filled with
// DefaultTile, matching pok_map_chunk_new's zero-initialised grid.
func NewChunk(size Size) *MapChunk {
	c := &MapChunk{Size: size}
	c.data = make([][]Tile, size.Rows)
	for r := range c.data {
		row := make([]Tile, size.Columns)
		for i := range row {
			row[i] = DefaultTile
		}
		c.data[r] = row
	}
	return c
}

// Tile returns the tile at (column, row), or DefaultTile if out of range.
func (c *MapChunk) Tile(loc Location) Tile {
	if loc.Row >= c.Size.Rows || loc.Column >= c.Size.Columns {
		return DefaultTile
	}
	return c.data[loc.Row][loc.Column]
}

// SetTile writes the tile at (column, row). It is a no-op if out of range.
func (c *MapChunk) SetTile(loc Location, t Tile) {
	if loc.Row >= c.Size.Rows || loc.Column >= c.Size.Columns {
		return
	}
	c.data[loc.Row][loc.Column] = t
}

// Adjacent returns the neighbor in direction d, or nil.
func (c *MapChunk) Adjacent(d Direction) *MapChunk {
	if d == DirNone {
		return nil
	}
	return c.adjacent[d]
}

// Link sets c.adjacent[d] = other and other.adjacent[Opposite(d)] = c,
// maintaining the bidirectional invariant required by spec.md's chunk
// graph (invariant 1 in spec.md §8).
func Link(c *MapChunk, d Direction, other *MapChunk) {
	if c == nil || other == nil || d == DirNone {
		return
	}
	c.adjacent[d] = other
	other.adjacent[d.Opposite()] = c
}

// Unlink removes the edge between c and its neighbor in direction d, if
// any, clearing both sides of the invariant.
func Unlink(c *MapChunk, d Direction) {
	if c == nil || d == DirNone {
		return
	}
	if n := c.adjacent[d]; n != nil {
		n.adjacent[d.Opposite()] = nil
		c.adjacent[d] = nil
	}
}

// ReconcileDiagonal checks whether the diagonal neighbor reachable from c
// via dir1 then dir2 agrees with the one reachable via dir2 then dir1, and
// if exactly one path resolves a chunk, links it in along the other path
// too. It returns errs.ErrBadFormat if both paths resolve to different
// chunks, resolving the disk-format Open Question from spec.md §9 in favor
// of rejecting the disagreement (the original pok_map_chunk_open does not
// perform this check).
func ReconcileDiagonal(c *MapChunk, dir1, dir2 Direction) error {
	if c == nil {
		return nil
	}
	var viaFirst, viaSecond *MapChunk
	if n1 := c.Adjacent(dir1); n1 != nil {
		viaFirst = n1.Adjacent(dir2)
	}
	if n2 := c.Adjacent(dir2); n2 != nil {
		viaSecond = n2.Adjacent(dir1)
	}
	switch {
	case viaFirst != nil && viaSecond != nil:
		if viaFirst != viaSecond {
			return errs.Wrap(errs.KindMap, "world.ReconcileDiagonal", errs.ErrBadFormat)
		}
	case viaFirst != nil:
		Link(c.Adjacent(dir2), dir1, viaFirst)
	case viaSecond != nil:
		Link(c.Adjacent(dir1), dir2, viaSecond)
	}
	return nil
}

// Free detaches c from every surviving neighbor (nulling their inbound
// adjacency so they are never left dangling) and recursively frees every
// chunk still reachable from c, using the discov bit to tolerate cycles in
// the adjacency graph. It matches the original's DFS free in map.c.
func Free(c *MapChunk) {
	if c == nil || c.discov {
		return
	}
	c.discov = true
	for _, d := range Directions {
		n := c.adjacent[d]
		if n == nil {
			continue
		}
		n.adjacent[d.Opposite()] = nil
		c.adjacent[d] = nil
		Free(n)
	}
}

// ChunkInsertHint is a cursor used while building a chunk grid from a
// rectangular tile array (Map.Load) or a row-major wire stream (ReadNet):
// it remembers the first chunk of the current row (west edge) and the
// first chunk of the previous row (north edge) so each newly created
// chunk can be linked to its west and north neighbors, with diagonals
// cross-linked by ReconcileDiagonal.
type ChunkInsertHint struct {
	rowStart  *MapChunk // first chunk inserted in the current row
	prevStart *MapChunk // first chunk inserted in the previous row
	west      *MapChunk // previous chunk inserted in the current row
	north     *MapChunk // chunk directly above the one about to be inserted
	col, cols int
}

// NewChunkInsertHint starts a cursor for a grid with the given column
// count.
func NewChunkInsertHint(cols int) *ChunkInsertHint {
	return &ChunkInsertHint{cols: cols}
}

// Insert links chunk into the grid at the cursor's current position and
// advances the cursor, wrapping to the next row when a full row of
// columns has been inserted.
func (h *ChunkInsertHint) Insert(chunk *MapChunk) {
	if h.west != nil {
		Link(h.west, DirRight, chunk)
	} else {
		h.rowStart = chunk
	}
	if h.north != nil {
		Link(h.north, DirDown, chunk)
		if h.west != nil {
			// both the west and north neighbors of chunk are set; try to
			// cross-link the NW diagonal through whichever path already
			// resolved it.
			_ = ReconcileDiagonal(chunk, DirLeft, DirUp)
		}
	}
	h.west = chunk
	h.col++
	if h.north != nil {
		h.north = h.north.Adjacent(DirRight)
	}
	if h.col == h.cols {
		h.col = 0
		h.west = nil
		h.prevStart = h.rowStart
		h.north = h.prevStart
		h.rowStart = nil
	}
}
