package provider

import (
	"bytes"
	"encoding/binary"

	"github.com/df-mc/goleveldb/leveldb"

	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/world"
)

// LevelDB persists dynamic-map chunks (spec.md §3's MapFlagDynamic case,
// where chunks are fetched/saved one at a time rather than loaded as a
// single flat file) keyed by "mapNo:X:Y" big-endian, with chunk bytes
// encoded via the same frame codec (engine/netio) used on the wire. The
// stored form adds the chunk's u16 columns and rows to the wire chunk
// form, so its bytes are not identical to a chunk read from the protocol.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a LevelDB-backed provider at
// dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindMap, "provider.OpenLevelDB", err)
	}
	return &LevelDB{db: db}, nil
}

func levelDBKey(mapNo uint32, pos world.Point) []byte {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[0:4], mapNo)
	binary.BigEndian.PutUint32(buf[4:8], uint32(pos.X))
	binary.BigEndian.PutUint32(buf[8:12], uint32(pos.Y))
	return buf[:]
}

// LoadChunk reads and decodes the chunk at (mapNo, pos), if present.
func (l *LevelDB) LoadChunk(mapNo uint32, pos world.Point) (*world.MapChunk, bool, error) {
	data, err := l.db.Get(levelDBKey(mapNo, pos), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.KindMap, "provider.LevelDB.LoadChunk", err)
	}
	ch := netio.NewChannel(bytes.NewReader(data))
	chunk, err := decodeChunk(ch)
	if err != nil {
		return nil, false, err
	}
	return chunk, true, nil
}

// SaveChunk encodes and writes chunk at (mapNo, pos).
func (l *LevelDB) SaveChunk(mapNo uint32, pos world.Point, chunk *world.MapChunk) error {
	var buf bytes.Buffer
	ch := netio.NewChannel(&buf)
	ch.Buffering(false)
	if err := encodeChunk(ch, chunk); err != nil {
		return err
	}
	if err := l.db.Put(levelDBKey(mapNo, pos), buf.Bytes(), nil); err != nil {
		return errs.Wrap(errs.KindMap, "provider.LevelDB.SaveChunk", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *LevelDB) Close() error {
	if err := l.db.Close(); err != nil {
		return errs.Wrap(errs.KindMap, "provider.LevelDB.Close", err)
	}
	return nil
}

// decodeChunk/encodeChunk use the map chunk wire form from spec.md §6 with
// the chunk size inserted after the flags: u32 netobj_id; u8 flags; u16
// columns; u16 rows; rows*columns*Tile. The
// dynamic-chunk case never has pre-decoded neighbors, so adjacency is
// reconciled by the caller once all four surrounding chunks are fetched.
func decodeChunk(ch *netio.Channel) (*world.MapChunk, error) {
	netID, ok, err := ch.ReadU32()
	if err != nil || !ok {
		return nil, errs.Wrap(errs.KindMap, "provider.decodeChunk", errs.ErrBadFormat)
	}
	_, ok, err = ch.ReadU8() // flags, currently unused by dynamic reload
	if err != nil || !ok {
		return nil, errs.Wrap(errs.KindMap, "provider.decodeChunk", errs.ErrBadFormat)
	}
	cols, ok, err := ch.ReadU16()
	if err != nil || !ok {
		return nil, errs.Wrap(errs.KindMap, "provider.decodeChunk", errs.ErrBadFormat)
	}
	rows, ok, err := ch.ReadU16()
	if err != nil || !ok {
		return nil, errs.Wrap(errs.KindMap, "provider.decodeChunk", errs.ErrBadFormat)
	}
	chunk := world.NewChunk(world.Size{Columns: uint32(cols), Rows: uint32(rows)})
	chunk.NetID = netID
	for r := uint32(0); r < uint32(rows); r++ {
		for c := uint32(0); c < uint32(cols); c++ {
			t, err := readDiskTile(ch, true)
			if err != nil {
				return nil, err
			}
			chunk.SetTile(world.Location{Column: c, Row: r}, t)
		}
	}
	return chunk, nil
}

func encodeChunk(ch *netio.Channel, chunk *world.MapChunk) error {
	if err := ch.WriteU32(chunk.NetID); err != nil {
		return errs.Wrap(errs.KindMap, "provider.encodeChunk", err)
	}
	if err := ch.WriteU8(0); err != nil {
		return errs.Wrap(errs.KindMap, "provider.encodeChunk", err)
	}
	if err := ch.WriteU16(uint16(chunk.Size.Columns)); err != nil {
		return errs.Wrap(errs.KindMap, "provider.encodeChunk", err)
	}
	if err := ch.WriteU16(uint16(chunk.Size.Rows)); err != nil {
		return errs.Wrap(errs.KindMap, "provider.encodeChunk", err)
	}
	for r := uint32(0); r < chunk.Size.Rows; r++ {
		for c := uint32(0); c < chunk.Size.Columns; c++ {
			if err := writeDiskTile(ch, chunk.Tile(world.Location{Column: c, Row: r})); err != nil {
				return err
			}
		}
	}
	return ch.Flush()
}
