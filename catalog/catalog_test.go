package catalog_test

import (
	"bytes"
	"testing"

	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/world"
)

func TestBaseFrameAndDirectionOfRoundTrip(t *testing.T) {
	dirs := []world.Direction{world.DirUp, world.DirDown, world.DirLeft, world.DirRight}
	for _, d := range dirs {
		frame := catalog.BaseFrame(d)
		if got := catalog.DirectionOf(frame); got != d {
			t.Fatalf("DirectionOf(BaseFrame(%v)) = %v, want %v", d, got, d)
		}
	}
}

func TestNewTileCatalogRejectsZeroTileCount(t *testing.T) {
	if _, err := catalog.NewTileCatalog(0, 0); err == nil {
		t.Fatal("expected an error for a zero-sized tile catalog")
	}
}

func TestSetTerrainIgnoresOutOfRangeClass(t *testing.T) {
	cat, err := catalog.NewTileCatalog(4, 0)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	cat.SetTerrain(catalog.TerrainClass(-1), []uint16{1, 2})
	cat.SetTerrain(catalog.TerrainWater, []uint16{3, 4})

	if len(cat.Terrain[catalog.TerrainWater]) != 2 {
		t.Fatalf("Terrain[TerrainWater] = %v, want [3 4]", cat.Terrain[catalog.TerrainWater])
	}
}

func TestNewSpriteCatalogAllowsZeroCount(t *testing.T) {
	sc := catalog.NewSpriteCatalog(0)
	if sc.SpriteCount != 0 {
		t.Fatalf("SpriteCount = %d, want 0", sc.SpriteCount)
	}
}

func TestSpriteCatalogReadNetFullRoundTrip(t *testing.T) {
	ch := netio.NewChannel(bytes.NewReader([]byte{7, 0}))
	info := netio.NewReadInfo()

	sc, prog, err := catalog.ReadSpriteNet(ch, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != netio.Complete {
		t.Fatalf("expected Complete, got %v", prog)
	}
	if sc.SpriteCount != 7 {
		t.Fatalf("got sprite_set_count %d want 7", sc.SpriteCount)
	}
}

func TestSpriteCatalogReadNetPartialReturnsIncomplete(t *testing.T) {
	ch := netio.NewChannel(bytes.NewReader([]byte{7}))
	info := netio.NewReadInfo()

	sc, prog, err := catalog.ReadSpriteNet(ch, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog != netio.Incomplete {
		t.Fatalf("expected Incomplete on truncated input, got %v", prog)
	}
	if sc != nil {
		t.Fatalf("expected nil catalog on an incomplete read, got %+v", sc)
	}
}
