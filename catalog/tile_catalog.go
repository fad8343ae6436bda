// Package catalog implements the tile and sprite catalogs: indexed frame
// sets, terrain classification and animation chains, grounded on
// original_source/src/tileman.c and spriteman.c.
package catalog

import (
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/netio"
)

// TerrainClass enumerates the ten terrain categories carried by
// pok_tile_terrain_type in tileman.h. Only water, lava and waterfall ever
// travel over the wire per spec.md §6 (the wire's fourth, reserved list is
// read and discarded); the rest are populated locally, e.g. by a version
// process classifying tiles after the catalog loads.
type TerrainClass int

const (
	TerrainCutable TerrainClass = iota
	TerrainHeadbuttable
	TerrainWater
	TerrainIce
	TerrainLava
	TerrainWaterfall
	TerrainWhirlpool
	TerrainLedgeDown
	TerrainLedgeLeft
	TerrainLedgeRight
	terrainTop
)

// AniData links one tile id into a logical animation sequence, matching
// pok_tile_ani_data: ticks is how long this frame holds, forward/backward
// chain to the next/previous frame (0 means "no further link" in that
// direction), and TotalTicks is the precomputed sum of Ticks over the
// distinct tiles of the chain (see computeTotalTicks).
type AniData struct {
	Ticks      byte
	Forward    uint16
	Backward   uint16
	TotalTicks uint16
}

// TileCatalog carries the set of tile images (referenced here only by
// index; actual pixel data belongs to the out-of-scope graphics backend),
// an impassability cutoff, an optional animation table and terrain
// classification lists.
type TileCatalog struct {
	TileCount     uint16
	Impassability uint16 // tile ids in 1..=Impassability are impassable by default

	Ani     []AniData // indexed by tile id; zero-value entries are unanimated
	Terrain [terrainTop][]uint16
}

// NewTileCatalog returns an empty catalog sized for tileCount tiles.
func NewTileCatalog(tileCount, impassability uint16) (*TileCatalog, error) {
	if tileCount == 0 {
		return nil, errs.New(errs.KindTileCatalog, "catalog.NewTileCatalog")
	}
	return &TileCatalog{
		TileCount:     tileCount,
		Impassability: impassability,
		Ani:           make([]AniData, tileCount),
	}, nil
}

// SetTerrain installs the tile id list for a terrain class, used both by
// the wire decoder (for the classes the protocol transmits) and by
// version-local code classifying additional tiles.
func (t *TileCatalog) SetTerrain(class TerrainClass, ids []uint16) {
	if class < 0 || class >= terrainTop {
		return
	}
	t.Terrain[class] = ids
}

// computeTotalTicks precomputes TotalTicks for every animated tile by
// walking its chain once: forward while a "direction" flag is true, then
// (once a zero forward link is hit) backward, summing Ticks along the
// way, matching pok_tile_manager_compute_ani_ticks. Each tile is counted
// once: the walk stops at the first tile it has already visited, so a
// backward link into the forward leg adds nothing.
func (t *TileCatalog) computeTotalTicks() {
	for id := range t.Ani {
		if t.Ani[id].Forward == 0 && t.Ani[id].Backward == 0 {
			continue // not animated
		}
		total := uint16(0)
		cur := uint16(id)
		dir := true
		visited := make(map[uint16]bool)
		for {
			if visited[cur] {
				break
			}
			visited[cur] = true
			total += uint16(t.Ani[cur].Ticks)
			var next uint16
			if dir {
				next = t.Ani[cur].Forward
				if next == 0 {
					dir = false
					next = t.Ani[cur].Backward
				}
			} else {
				next = t.Ani[cur].Backward
				if next == 0 {
					break
				}
			}
			if next == uint16(id) || next == 0 {
				break
			}
			cur = next
		}
		t.Ani[id].TotalTicks = total
	}
}

// AnimatedFrame returns the tile id that should be displayed for base tile
// id at elapsed tick count t, matching pok_tile_manager_get_tile's
// modulo-based lookup: it is periodic with period TotalTicks(id), i.e.
// AnimatedFrame(id, t) == AnimatedFrame(id, t+TotalTicks(id)).
func (t *TileCatalog) AnimatedFrame(id uint16, ticks uint32) uint16 {
	if int(id) >= len(t.Ani) {
		return id
	}
	total := t.Ani[id].TotalTicks
	if total == 0 {
		return id
	}
	rem := uint32(ticks) % uint32(total)
	cur := id
	for {
		d := t.Ani[cur]
		if uint32(rem) < uint32(d.Ticks) {
			return cur
		}
		rem -= uint32(d.Ticks)
		if d.Forward != 0 {
			cur = d.Forward
		} else if d.Backward != 0 {
			cur = d.Backward
		} else {
			return cur
		}
	}
}

// IsImpassable reports whether a tile with the given catalog tile id and
// override bits is impassable, matching is_impassable in map-render.c:
// tile ids at or below the cutoff are base-impassable (pass inverts to
// passable); ids above are base-passable (impass inverts to impassable).
func (t *TileCatalog) IsImpassable(tileID uint16, impassOverride, passOverride bool) bool {
	if tileID <= t.Impassability {
		return !passOverride
	}
	return impassOverride
}

// tile catalog field-progress steps, matching spec.md §6's tile catalog
// wire form in order.
const (
	tileCatFieldCount = iota
	tileCatFieldImpassability
	tileCatFieldAniCount
	tileCatFieldAniEntries
	tileCatFieldTerrain
)

var terrainWireClasses = [4]TerrainClass{TerrainWater, TerrainLava, TerrainWaterfall, terrainTop /* reserved */}

// tileCatalogRead is the Aux state a ReadInfo carries across resumed
// ReadNet calls: the catalog built so far, plus scratch for the animation
// entry currently in flight.
type tileCatalogRead struct {
	cat      *TileCatalog
	aniCount uint16
	curAni   AniData
}

// ReadNet decodes a tile catalog from this wire form: u16 tile_count; u16
// impassability; u16 ani_count; ani_count x {u8 ticks, u16 forward, u16
// backward}; {u16 count; count x u16 tile_ids} x 4 (water, lava,
// waterfall, reserved). No image sheet is read or skipped: ani_count is
// read directly after impassability. info drives a field-progress switch so a caller
// can retry on netio.Incomplete without losing fields already decoded,
// per spec.md §9's "every netread function is a single switch over
// field_prog" design note.
func ReadNet(ch *netio.Channel, info *netio.ReadInfo) (*TileCatalog, netio.ReadProgress, error) {
	if info.Aux == nil {
		info.Aux = &tileCatalogRead{}
	}
	st := info.Aux.(*tileCatalogRead)

	for {
		switch info.FieldProg {
		case tileCatFieldCount:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "catalog.ReadNet")
			}
			cat, err := NewTileCatalog(v, 0)
			if err != nil {
				return nil, netio.Failed, err
			}
			st.cat = cat
			continue

		case tileCatFieldImpassability:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "catalog.ReadNet")
			}
			st.cat.Impassability = v
			// Image sheet decoding is delegated to the out-of-scope
			// graphics backend; the catalog only needs tileCount to size
			// Ani.
			continue

		case tileCatFieldAniCount:
			v, ok, err := ch.ReadU16()
			if prog := info.Process(ok, err); prog != netio.Complete {
				return nil, prog, wireErr(prog, err, "catalog.ReadNet")
			}
			st.aniCount = v
			continue

		case tileCatFieldAniEntries:
			for info.Depth[0] < st.aniCount {
				info.AllocNext()
				ok, err := readAniEntry(ch, info.Next, &st.curAni)
				if err != nil {
					return nil, netio.Failed, err
				}
				if !ok {
					return nil, netio.Incomplete, nil
				}
				if int(info.Depth[0]) < len(st.cat.Ani) {
					st.cat.Ani[info.Depth[0]] = st.curAni
				}
				st.curAni = AniData{}
				info.Next = nil
				info.Depth[0]++
			}
			st.cat.computeTotalTicks()
			info.Depth[0] = 0
			info.FieldProg++
			continue

		case tileCatFieldTerrain:
			for info.Depth[0] < uint16(len(terrainWireClasses)) {
				info.AllocNext()
				ids, ok, err := readTerrainIDs(ch, info.Next)
				if err != nil {
					return nil, netio.Failed, err
				}
				if !ok {
					return nil, netio.Incomplete, nil
				}
				if class := terrainWireClasses[info.Depth[0]]; class != terrainTop {
					st.cat.SetTerrain(class, ids)
				}
				info.Next = nil
				info.Depth[0]++
			}
			return st.cat, netio.Complete, nil
		}
		return nil, netio.Failed, errs.New(errs.KindTileCatalog, "catalog.ReadNet")
	}
}

// wireErr turns a non-Complete ReadProgress into the error ReadNet should
// return: nil for Incomplete (the caller just retries), a wrapped cause
// for Failed.
func wireErr(prog netio.ReadProgress, err error, op string) error {
	if prog == netio.Failed {
		return errs.Wrap(errs.KindTileCatalog, op, err)
	}
	return nil
}

const (
	aniFieldTicks = iota
	aniFieldForward
	aniFieldBackward
)

// readAniEntry resumably decodes one {u8 ticks, u16 forward, u16 backward}
// animation chain entry into out.
func readAniEntry(ch *netio.Channel, info *netio.ReadInfo, out *AniData) (bool, error) {
	for {
		switch info.FieldProg {
		case aniFieldTicks:
			v, ok, err := ch.ReadU8()
			switch prog := info.Process(ok, err); prog {
			case netio.Incomplete:
				return false, nil
			case netio.Failed:
				return false, errs.Wrap(errs.KindTileCatalog, "catalog.readAniEntry", err)
			}
			out.Ticks = v
			continue
		case aniFieldForward:
			v, ok, err := ch.ReadU16()
			switch prog := info.Process(ok, err); prog {
			case netio.Incomplete:
				return false, nil
			case netio.Failed:
				return false, errs.Wrap(errs.KindTileCatalog, "catalog.readAniEntry", err)
			}
			out.Forward = v
			continue
		case aniFieldBackward:
			v, ok, err := ch.ReadU16()
			switch prog := info.Process(ok, err); prog {
			case netio.Incomplete:
				return false, nil
			case netio.Failed:
				return false, errs.Wrap(errs.KindTileCatalog, "catalog.readAniEntry", err)
			}
			out.Backward = v
			return true, nil
		}
		return true, nil
	}
}

const (
	terrainFieldCount = iota
	terrainFieldIDs
)

// terrainIDsRead carries the in-progress id slice across resumed calls.
type terrainIDsRead struct {
	count uint16
	ids   []uint16
}

// readTerrainIDs resumably decodes one {u16 count; count x u16 tile_ids}
// terrain class list.
func readTerrainIDs(ch *netio.Channel, info *netio.ReadInfo) ([]uint16, bool, error) {
	if info.Aux == nil {
		info.Aux = &terrainIDsRead{}
	}
	st := info.Aux.(*terrainIDsRead)
	for {
		switch info.FieldProg {
		case terrainFieldCount:
			v, ok, err := ch.ReadU16()
			switch prog := info.Process(ok, err); prog {
			case netio.Incomplete:
				return nil, false, nil
			case netio.Failed:
				return nil, false, errs.Wrap(errs.KindTileCatalog, "catalog.readTerrainIDs", err)
			}
			st.count = v
			st.ids = make([]uint16, 0, v)
			continue
		case terrainFieldIDs:
			for uint16(len(st.ids)) < st.count {
				v, ok, err := ch.ReadU16()
				switch prog := info.ProcessDepth(0, ok, err); prog {
				case netio.Incomplete:
					return nil, false, nil
				case netio.Failed:
					return nil, false, errs.Wrap(errs.KindTileCatalog, "catalog.readTerrainIDs", err)
				}
				st.ids = append(st.ids, v)
			}
			return st.ids, true, nil
		}
		return st.ids, true, nil
	}
}
