package world

import "github.com/pokgame/engine/errs"

// MapFlags mirrors pok_map_flags in protocol.h.
type MapFlags uint16

const (
	MapFlagNone    MapFlags = 0
	MapFlagDynamic MapFlags = 0x01 // make requests to obtain more chunks
)

// Limits from original_source/src/protocol.h's pok_limits enum: protocol
// bounds that a conforming peer must respect.
const (
	MaxTileImages         = 1024
	MaxDimension          = 128
	MinDimension          = 8
	MaxImageSize          = 5242880
	MaxMapChunkDimension  = 128
	MaxInitialChunks      = 255
)

// Map is a grid of equally sized chunks linked by adjacency. It is either
// static (all chunks received up front) or dynamic (MapFlagDynamic; new
// chunks are requested as the player nears a missing edge).
type Map struct {
	MapNo     uint32
	Chunk     *MapChunk // current chunk
	Origin    *MapChunk // original chunk
	ChunkSize Size
	MapSize   Size // dimensions in units of chunks
	Pos       Location
	Flags     MapFlags

	// Index answers "do we already have a chunk at this position" for
	// dynamic maps, so the I/O loop does not re-request a chunk it is
	// already holding while waiting for the player to approach a new
	// edge. Static maps built by Load or ReadNet populate it too but never
	// consult it for request suppression.
	Index *PositionIndex
}

// NewMap returns an empty, unpositioned Map.
func NewMap(mapNo uint32) *Map {
	return &Map{MapNo: mapNo}
}

// Free recursively frees every chunk reachable from the map's origin.
func (m *Map) Free() {
	Free(m.Origin)
	m.Origin = nil
	m.Chunk = nil
}

// Load builds a chunk grid from a rectangular array of tiles, splitting
// columns/rows in half repeatedly until each axis is <= MaxMapChunkDimension,
// distributing any remainder alternately to the low/high edge and padding
// the remainder with DefaultTile, matching pok_map_load.
func (m *Map) Load(tiles [][]TileData, columns, rows uint32) error {
	if rows == 0 || columns == 0 {
		return errs.New(errs.KindMap, "world.Map.Load")
	}
	chunkRows, rowSplits := splitDimension(rows)
	chunkCols, colSplits := splitDimension(columns)

	m.ChunkSize = Size{Columns: chunkCols, Rows: chunkRows}
	m.MapSize = Size{Columns: uint32(len(colSplits)), Rows: uint32(len(rowSplits))}

	hint := NewChunkInsertHint(len(colSplits))
	index := NewPositionIndex()
	var origin *MapChunk
	rowOff := uint32(0)
	for gridRow, rowSpan := range rowSplits {
		colOff := uint32(0)
		for gridCol, colSpan := range colSplits {
			chunk := NewChunk(Size{Columns: chunkCols, Rows: chunkRows})
			for r := uint32(0); r < rowSpan; r++ {
				for c := uint32(0); c < colSpan; c++ {
					if rowOff+r < rows && colOff+c < columns {
						t, err := NewTileEx(tiles[rowOff+r][colOff+c])
						if err != nil {
							return err
						}
						chunk.SetTile(Location{Column: c, Row: r}, t)
					}
				}
			}
			hint.Insert(chunk)
			index.Put(Point{X: int32(gridCol), Y: int32(gridRow)}, chunk)
			if origin == nil {
				origin = chunk
			}
			colOff += colSpan
		}
		rowOff += rowSpan
	}
	m.Origin = origin
	m.Chunk = origin
	m.Pos = Location{}
	m.Index = index
	return nil
}

// InsertDynamicChunk links a newly-received chunk (MapFlagDynamic) into
// the graph at pos: it reconciles against the adjacent chunk in every
// direction already present in the index, and adds the new chunk to the
// index itself.
func (m *Map) InsertDynamicChunk(pos Point, chunk *MapChunk) {
	if m.Index == nil {
		m.Index = NewPositionIndex()
	}
	for _, dir := range Directions {
		if n, ok := m.Index.Get(pos.Add(dir)); ok {
			Link(chunk, dir, n)
		}
	}
	m.Index.Put(pos, chunk)
	if m.Origin == nil {
		m.Origin = chunk
		m.Chunk = chunk
	}
}

// HasChunk reports whether a chunk is already indexed at pos, letting a
// dynamic map's I/O handler skip re-requesting a chunk it already holds.
func (m *Map) HasChunk(pos Point) bool {
	if m.Index == nil {
		return false
	}
	_, ok := m.Index.Get(pos)
	return ok
}

// splitDimension repeatedly halves n until each chunk span is <=
// MaxMapChunkDimension, returning the chosen chunk span and the list of
// actual spans covering n (the remainder distributed across the produced
// spans so every chunk is <= the uniform chunk span).
func splitDimension(n uint32) (chunkSpan uint32, spans []uint32) {
	chunkSpan = n
	count := uint32(1)
	for chunkSpan > MaxMapChunkDimension {
		count *= 2
		chunkSpan = (n + count - 1) / count
	}
	spans = make([]uint32, count)
	base := n / count
	extra := n % count
	// distribute remainder alternately to the left/top and right/bottom
	// edges, matching the original's alternating-edge padding rule.
	left, right := int(0), int(count)-1
	remaining := extra
	for remaining > 0 {
		if left <= right {
			spans[left]++
			left++
			remaining--
			if remaining == 0 {
				break
			}
		}
		if right >= left {
			spans[right]++
			right--
			remaining--
		}
	}
	for i := range spans {
		spans[i] += base
	}
	return chunkSpan, spans
}

// World is an indexed collection of maps by map number.
type World struct {
	maps map[uint32]*Map
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{maps: make(map[uint32]*Map)}
}

// Get returns the map with the given number, if loaded.
func (w *World) Get(mapNo uint32) (*Map, bool) {
	m, ok := w.maps[mapNo]
	return m, ok
}

// Put installs m into the world, replacing any existing map with the same
// number (freeing the replaced map's chunk graph first).
func (w *World) Put(m *Map) {
	if old, ok := w.maps[m.MapNo]; ok && old != m {
		old.Free()
	}
	w.maps[m.MapNo] = m
}

// Delete frees and removes the map with the given number.
func (w *World) Delete(mapNo uint32) {
	if m, ok := w.maps[mapNo]; ok {
		m.Free()
		delete(w.maps, mapNo)
	}
}
