package world

import (
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/netio"
)

// wireErr turns a non-Complete ReadProgress into the error a netread
// should return: nil for Incomplete (the caller retries), a wrapped cause
// for Failed.
func wireErr(prog netio.ReadProgress, err error, op string) error {
	if prog == netio.Failed {
		return errs.Wrap(errs.KindMap, op, err)
	}
	return nil
}

// Tile wire form field-progress steps, matching spec.md §6: u16 tile_id;
// u8 warp_kind; if warp_kind != none: u32 warp_map, Point warp_chunk,
// Location warp_location; u8 override_bits.
const (
	tileWireID = iota
	tileWireWarpKind
	tileWireWarpMap
	tileWireWarpChunkX
	tileWireWarpChunkY
	tileWireWarpLocCol
	tileWireWarpLocRow
	tileWireOverrides
)

type tileWireRead struct {
	data TileData
}

// readTileWire resumably decodes one Tile from its wire form. A none warp
// kind skips straight to the override byte, matching the conditional
// clause of spec.md §6's tile wire form.
func readTileWire(ch *netio.Channel, info *netio.ReadInfo) (Tile, netio.ReadProgress, error) {
	if info.Aux == nil {
		info.Aux = &tileWireRead{}
	}
	st := info.Aux.(*tileWireRead)

	for {
		switch info.FieldProg {
		case tileWireID:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.TileID = v
			continue

		case tileWireWarpKind:
			v, ok, err := ch.ReadU8()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpKind = WarpKind(v)
			if st.data.WarpKind == WarpNone {
				info.FieldProg = tileWireOverrides
			}
			continue

		case tileWireWarpMap:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpMap = v
			continue

		case tileWireWarpChunkX:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpChunk.X = int32(v)
			continue

		case tileWireWarpChunkY:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpChunk.Y = int32(v)
			continue

		case tileWireWarpLocCol:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpLocation.Column = v
			continue

		case tileWireWarpLocRow:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			st.data.WarpLocation.Row = v
			continue

		case tileWireOverrides:
			v, ok, err := ch.ReadU8()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return Tile{}, prog, wireErr(prog, err, "world.readTileWire")
			}
			t, err := NewTileEx(st.data)
			if err != nil {
				return Tile{}, netio.Failed, err
			}
			t.Pass = v&0x01 != 0
			t.Impass = v&0x02 != 0
			return t, netio.Complete, nil
		}
		return Tile{}, netio.Failed, errs.New(errs.KindTile, "world.readTileWire")
	}
}

// Map chunk wire form field-progress steps, matching spec.md §6: u32
// netobj_id; u8 flags; rows x columns x Tile.
const (
	chunkWireID = iota
	chunkWireFlags
	chunkWireTiles
)

type chunkWireRead struct {
	chunk *MapChunk
}

// readMapChunkWire resumably decodes one MapChunk of the given size. Its
// netobj id is claimed in reg as soon as it is decoded (reg may be nil, in
// which case the chunk is simply not tracked by a registry).
func readMapChunkWire(ch *netio.Channel, info *netio.ReadInfo, reg *netio.Registry, size Size) (*MapChunk, netio.ReadProgress, error) {
	if info.Aux == nil {
		info.Aux = &chunkWireRead{chunk: NewChunk(size)}
	}
	st := info.Aux.(*chunkWireRead)
	total := size.Rows * size.Columns

	for {
		switch info.FieldProg {
		case chunkWireID:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.readMapChunkWire")
			}
			st.chunk.NetID = v
			if reg != nil {
				if err := reg.NetRead(v, st.chunk); err != nil {
					return nil, netio.Failed, err
				}
			}
			continue

		case chunkWireFlags:
			v, ok, err := ch.ReadU8()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.readMapChunkWire")
			}
			st.chunk.Flags = ChunkFlags(v)
			continue

		case chunkWireTiles:
			for uint32(info.Depth[0]) < total {
				info.AllocNext()
				row := uint32(info.Depth[0]) / size.Columns
				col := uint32(info.Depth[0]) % size.Columns
				t, prog, err := readTileWire(ch, info.Next)
				if prog != netio.Complete {
					return nil, prog, err
				}
				st.chunk.SetTile(Location{Column: col, Row: row}, t)
				info.Next = nil
				info.Depth[0]++
			}
			return st.chunk, netio.Complete, nil
		}
		return nil, netio.Failed, errs.New(errs.KindMap, "world.readMapChunkWire")
	}
}

// Map wire form field-progress steps. spec.md §6 lists the map wire form
// as "u16 flags; u16 chunk_columns; ...", but §3's Data Model names
// map_no as one of Map's core fields (alongside origin, cursor,
// chunk_size); since every other creation path (Map.Load's caller,
// FlatFile's one-file-per-map-number layout) needs a map number to file
// the result under, this netread leads with it too rather than leaving
// the wire Map anonymous.
const (
	mapWireMapNo = iota
	mapWireFlags
	mapWireChunkCols
	mapWireChunkRows
	mapWireGridCols
	mapWireGridRows
	mapWireChunks
)

type mapWireRead struct {
	m         *Map
	chunkSize Size
	gridCols  uint16
	gridRows  uint16
	hint      *ChunkInsertHint
	index     *PositionIndex
}

// ReadNet resumably decodes a Map from its wire form, matching spec.md
// §4.6 creation path (c): "over the wire via netread, which receives an
// initial rectangular window of chunks in row-major order." Each decoded
// chunk is fed through a ChunkInsertHint exactly as Map.Load feeds its
// in-memory grid, so the adjacency graph (including diagonal
// reconciliation) comes out identical regardless of which creation path
// built it. reg, if non-nil, receives every chunk's netobj id.
func ReadNet(ch *netio.Channel, info *netio.ReadInfo, reg *netio.Registry) (*Map, netio.ReadProgress, error) {
	if info.Aux == nil {
		info.Aux = &mapWireRead{m: NewMap(0)}
	}
	st := info.Aux.(*mapWireRead)

	for {
		switch info.FieldProg {
		case mapWireMapNo:
			v, ok, err := ch.ReadU32()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.m.MapNo = v
			continue

		case mapWireFlags:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.m.Flags = MapFlags(v)
			continue

		case mapWireChunkCols:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.chunkSize.Columns = uint32(v)
			continue

		case mapWireChunkRows:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.chunkSize.Rows = uint32(v)
			continue

		case mapWireGridCols:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.gridCols = v
			continue

		case mapWireGridRows:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "world.ReadNet")
			}
			st.gridRows = v
			if uint32(st.gridCols)*uint32(st.gridRows) > MaxInitialChunks {
				return nil, netio.Failed, errs.New(errs.KindMap, "world.ReadNet")
			}
			st.m.ChunkSize = st.chunkSize
			st.m.MapSize = Size{Columns: uint32(st.gridCols), Rows: uint32(st.gridRows)}
			st.hint = NewChunkInsertHint(int(st.gridCols))
			st.index = NewPositionIndex()
			continue

		case mapWireChunks:
			total := uint32(st.gridCols) * uint32(st.gridRows)
			for uint32(info.Depth[0]) < total {
				info.AllocNext()
				chunk, prog, err := readMapChunkWire(ch, info.Next, reg, st.chunkSize)
				if prog != netio.Complete {
					return nil, prog, err
				}
				gridRow := int32(uint32(info.Depth[0]) / uint32(st.gridCols))
				gridCol := int32(uint32(info.Depth[0]) % uint32(st.gridCols))
				st.hint.Insert(chunk)
				st.index.Put(Point{X: gridCol, Y: gridRow}, chunk)
				if st.m.Origin == nil {
					st.m.Origin = chunk
					st.m.Chunk = chunk
				}
				info.Next = nil
				info.Depth[0]++
			}
			st.m.Index = st.index
			st.m.Pos = Location{}
			return st.m, netio.Complete, nil
		}
		return nil, netio.Failed, errs.New(errs.KindMap, "world.ReadNet")
	}
}
