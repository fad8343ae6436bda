package world

import "github.com/pokgame/engine/errs"

// WarpKind enumerates the kinds of warps a tile may perform, matching
// pok_tile_warp_kind in original_source/src/protocol.h. Order is
// wire-significant and must not change.
type WarpKind uint8

const (
	WarpNone WarpKind = iota
	WarpInstant
	WarpCaveEnter
	WarpCaveExit
	WarpLatentUp
	WarpLatentDown
	WarpLatentLeft
	WarpLatentRight
	WarpLatentCaveUp
	WarpLatentCaveDown
	WarpLatentCaveLeft
	WarpLatentCaveRight
	WarpSpin
	WarpFall
	warpBound
)

// Valid reports whether k is a recognised warp kind.
func (k WarpKind) Valid() bool { return k < warpBound }

// LatentDirection returns the direction a latent warp of kind k activates
// on, and ok=false if k is not a latent warp kind.
func (k WarpKind) LatentDirection() (Direction, bool) {
	switch k {
	case WarpLatentUp, WarpLatentCaveUp:
		return DirUp, true
	case WarpLatentDown, WarpLatentCaveDown:
		return DirDown, true
	case WarpLatentLeft, WarpLatentCaveLeft:
		return DirLeft, true
	case WarpLatentRight, WarpLatentCaveRight:
		return DirRight, true
	}
	return DirNone, false
}

// IsCave reports whether k uses the cave fadeout/fade-in variants.
func (k WarpKind) IsCave() bool {
	switch k {
	case WarpCaveEnter, WarpCaveExit, WarpLatentCaveUp, WarpLatentCaveDown, WarpLatentCaveLeft, WarpLatentCaveRight:
		return true
	}
	return false
}

// TileData is the static, on-the-wire portion of a tile: its image index
// and warp metadata. It corresponds to pok_tile_data in tile.h.
type TileData struct {
	TileID       uint16
	WarpMap      uint32
	WarpChunk    Point
	WarpLocation Location
	WarpKind     WarpKind
}

// Tile is a single grid cell of a MapChunk. Impass/Pass are per-tile
// overrides of the catalog-level passability of TileID, matching
// pok_tile in tile.h.
type Tile struct {
	Data TileData

	Impass bool // if true, an otherwise-passable tile is impassable
	Pass   bool // if true, an otherwise-impassable tile is passable
}

// DefaultTile is the zero-value tile used to pad chunk grids, matching
// DEFAULT_TILE in the original: tile id 0, no warp, no overrides.
var DefaultTile = Tile{}

// NewTile builds a plain tile with the given image index and no warp.
func NewTile(tileID uint16) Tile {
	return Tile{Data: TileData{TileID: tileID}}
}

// NewTileEx builds a tile from a fully specified TileData, validating the
// warp kind.
func NewTileEx(data TileData) (Tile, error) {
	if !data.WarpKind.Valid() {
		return Tile{}, errs.New(errs.KindTile, "world.NewTileEx")
	}
	return Tile{Data: data}, nil
}
