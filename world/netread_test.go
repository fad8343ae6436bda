package world

import (
	"bytes"
	"testing"

	"github.com/pokgame/engine/netio"
)

func putU16(b *[]byte, v uint16) { *b = append(*b, byte(v), byte(v>>8)) }
func putU32(b *[]byte, v uint32) {
	*b = append(*b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// appendTileWire appends the wire form of a plain, no-warp tile: u16
// tile_id; u8 warp_kind(=WarpNone); u8 override_bits.
func appendTileWire(b *[]byte, tileID uint16) {
	putU16(b, tileID)
	*b = append(*b, byte(WarpNone), 0)
}

// appendWarpTileWire appends a tile carrying a non-latent instant warp, to
// exercise the conditional warp fields of the tile wire form.
func appendWarpTileWire(b *[]byte, tileID uint16, mapNo uint32, chunk Point, loc Location) {
	putU16(b, tileID)
	*b = append(*b, byte(WarpInstant))
	putU32(b, mapNo)
	putU32(b, uint32(chunk.X))
	putU32(b, uint32(chunk.Y))
	putU32(b, loc.Column)
	putU32(b, loc.Row)
	*b = append(*b, 0) // override_bits
}

// appendChunkWire appends one chunk's wire form: u32 netobj_id; u8 flags;
// rows x columns x Tile, filling every tile with the same plain tile_id.
func appendChunkWire(b *[]byte, netID uint32, size Size, tileID uint16) {
	putU32(b, netID)
	*b = append(*b, 0) // flags
	for r := uint32(0); r < size.Rows; r++ {
		for c := uint32(0); c < size.Columns; c++ {
			appendTileWire(b, tileID)
		}
	}
}

// buildMapWire assembles a complete two-chunk map (1 column x 2 rows of
// chunks, stacked north/south), matching spec.md §6's map wire form with
// the map_no field this engine's ReadNet leads with (see netread.go).
func buildMapWire(mapNo uint32, chunkSize Size, topID, bottomID uint32) []byte {
	var b []byte
	putU32(&b, mapNo)
	putU16(&b, 0) // flags
	putU16(&b, uint16(chunkSize.Columns))
	putU16(&b, uint16(chunkSize.Rows))
	putU16(&b, 1) // columns_of_chunks
	putU16(&b, 2) // rows_of_chunks
	appendChunkWire(&b, topID, chunkSize, 1)
	appendChunkWire(&b, bottomID, chunkSize, 2)
	return b
}

func TestMapReadNetFullRoundTrip(t *testing.T) {
	chunkSize := Size{Columns: 2, Rows: 2}
	wire := buildMapWire(7, chunkSize, 10, 11)

	ch := netio.NewChannel(bytes.NewReader(wire))
	reg := netio.NewRegistry()
	info := netio.NewReadInfo()

	m, prog, err := ReadNet(ch, info, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != netio.Complete {
		t.Fatalf("expected Complete, got %v", prog)
	}
	if m.MapNo != 7 {
		t.Fatalf("got map_no %d want 7", m.MapNo)
	}
	if m.ChunkSize != chunkSize {
		t.Fatalf("got chunk size %+v want %+v", m.ChunkSize, chunkSize)
	}
	if m.MapSize != (Size{Columns: 1, Rows: 2}) {
		t.Fatalf("got map size %+v want {1 2}", m.MapSize)
	}
	if m.Origin == nil || m.Origin.NetID != 10 {
		t.Fatalf("expected origin chunk with netobj id 10, got %+v", m.Origin)
	}
	south := m.Origin.Adjacent(DirDown)
	if south == nil || south.NetID != 11 {
		t.Fatalf("expected origin's south neighbor to be netobj id 11, got %+v", south)
	}
	if south.Adjacent(DirUp) != m.Origin {
		t.Fatalf("adjacency invariant broken: south chunk does not link back up to origin")
	}
	if got := m.Origin.Tile(Location{}).Data.TileID; got != 1 {
		t.Fatalf("got origin tile id %d want 1", got)
	}
	if got := south.Tile(Location{}).Data.TileID; got != 2 {
		t.Fatalf("got south tile id %d want 2", got)
	}

	if obj, ok := reg.Lookup(10); !ok || obj.(*MapChunk) != m.Origin {
		t.Fatalf("registry did not track the origin chunk under id 10")
	}
	if obj, ok := reg.Lookup(11); !ok || obj.(*MapChunk) != south {
		t.Fatalf("registry did not track the south chunk under id 11")
	}
}

// TestMapReadNetResumesAcrossShortReads feeds the wire form to ReadNet in
// two pieces, arriving on two different Channels (simulating a connection
// that only had part of the payload buffered on the first call), and
// checks that the same ReadInfo picks back up where it left off rather
// than losing the partially decoded map.
func TestMapReadNetResumesAcrossShortReads(t *testing.T) {
	chunkSize := Size{Columns: 2, Rows: 2}
	wire := buildMapWire(9, chunkSize, 20, 21)

	// split exactly at the end of the map header, before any chunk data
	// has arrived: a clean field boundary, since splitting mid-primitive
	// would require resuming on the same Channel rather than a new one.
	split := 4 + 2 + 2 + 2 + 2 + 2
	first, second := wire[:split], wire[split:]

	reg := netio.NewRegistry()
	info := netio.NewReadInfo()

	ch1 := netio.NewChannel(bytes.NewReader(first))
	m, prog, err := ReadNet(ch1, info, reg)
	if err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}
	if prog != netio.Incomplete {
		t.Fatalf("expected Incomplete on truncated input, got %v", prog)
	}
	if m != nil {
		t.Fatalf("expected nil map on an incomplete read, got %+v", m)
	}

	ch2 := netio.NewChannel(bytes.NewReader(second))
	m, prog, err = ReadNet(ch2, info, reg)
	if err != nil {
		t.Fatalf("unexpected error on resumed call: %v", err)
	}
	if prog != netio.Complete {
		t.Fatalf("expected Complete after resuming, got %v", prog)
	}
	if m.MapNo != 9 {
		t.Fatalf("got map_no %d want 9, resumed read lost earlier field state", m.MapNo)
	}
	if m.Origin == nil || m.Origin.NetID != 20 {
		t.Fatalf("expected origin chunk id 20, got %+v", m.Origin)
	}
	if south := m.Origin.Adjacent(DirDown); south == nil || south.NetID != 21 {
		t.Fatalf("expected south chunk id 21, got %+v", south)
	}
}

func TestReadTileWireWarpFields(t *testing.T) {
	var b []byte
	appendWarpTileWire(&b, 3, 42, Point{X: 1, Y: -1}, Location{Column: 5, Row: 6})

	ch := netio.NewChannel(bytes.NewReader(b))
	info := netio.NewReadInfo()

	tile, prog, err := readTileWire(ch, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != netio.Complete {
		t.Fatalf("expected Complete, got %v", prog)
	}
	if tile.Data.WarpKind != WarpInstant {
		t.Fatalf("got warp kind %v want WarpInstant", tile.Data.WarpKind)
	}
	if tile.Data.WarpMap != 42 {
		t.Fatalf("got warp map %d want 42", tile.Data.WarpMap)
	}
	if tile.Data.WarpChunk != (Point{X: 1, Y: -1}) {
		t.Fatalf("got warp chunk %+v want {1 -1}", tile.Data.WarpChunk)
	}
	if tile.Data.WarpLocation != (Location{Column: 5, Row: 6}) {
		t.Fatalf("got warp location %+v want {5 6}", tile.Data.WarpLocation)
	}
}

func TestReadTileWirePartialReturnsIncomplete(t *testing.T) {
	// only the tile_id's first byte is available
	ch := netio.NewChannel(bytes.NewReader([]byte{7}))
	info := netio.NewReadInfo()

	_, prog, err := readTileWire(ch, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != netio.Incomplete {
		t.Fatalf("expected Incomplete on truncated input, got %v", prog)
	}
}
