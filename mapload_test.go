package engine_test

import (
	"testing"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/world"
	"github.com/pokgame/engine/world/provider"
)

func TestLoadMapReturnsResidentMapWithoutProvider(t *testing.T) {
	tiles, err := catalog.NewTileCatalog(1, 0)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	g := engine.NewGameInfo(tiles)

	resident := world.NewMap(3)
	g.World.Put(resident)

	got, err := g.LoadMap(3)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if got != resident {
		t.Fatalf("LoadMap returned %p, want the already-resident map %p", got, resident)
	}
}

func TestLoadMapFailsWithoutProviderOrResidentMap(t *testing.T) {
	tiles, err := catalog.NewTileCatalog(1, 0)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	g := engine.NewGameInfo(tiles)

	if _, err := g.LoadMap(99); err == nil {
		t.Fatal("expected an error loading an unknown map with no Provider configured")
	}
}

// TestLoadMapAssemblesChunkGraphFromProvider saves a 3-chunk L-shape (origin,
// east of origin, south of origin) through a real FlatFile provider and
// checks LoadMap's BFS walk rebuilds the same adjacency via
// Map.InsertDynamicChunk.
func TestLoadMapAssemblesChunkGraphFromProvider(t *testing.T) {
	dir := t.TempDir()
	fp := provider.NewFlatFile(dir)

	origin := world.NewChunk(world.Size{Columns: 2, Rows: 2})
	origin.SetTile(world.Location{Column: 0, Row: 0}, world.NewTile(1))
	east := world.NewChunk(world.Size{Columns: 2, Rows: 2})
	east.SetTile(world.Location{Column: 0, Row: 0}, world.NewTile(2))
	south := world.NewChunk(world.Size{Columns: 2, Rows: 2})
	south.SetTile(world.Location{Column: 0, Row: 0}, world.NewTile(3))
	world.Link(origin, world.DirRight, east)
	world.Link(origin, world.DirDown, south)

	if err := fp.SaveChunk(5, world.Point{}, origin); err != nil {
		t.Fatalf("SaveChunk origin: %v", err)
	}
	if err := fp.SaveChunk(5, world.Point{X: 1, Y: 0}, east); err != nil {
		t.Fatalf("SaveChunk east: %v", err)
	}
	if err := fp.SaveChunk(5, world.Point{X: 0, Y: 1}, south); err != nil {
		t.Fatalf("SaveChunk south: %v", err)
	}
	if err := fp.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tiles, err := catalog.NewTileCatalog(4, 0)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	g := engine.NewGameInfo(tiles)
	g.Provider = provider.NewFlatFile(dir)

	m, err := g.LoadMap(5)
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if m.MapNo != 5 {
		t.Fatalf("got map_no %d want 5", m.MapNo)
	}
	if got := m.Origin.Tile(world.Location{}).Data.TileID; got != 1 {
		t.Fatalf("got origin tile id %d want 1", got)
	}
	gotEast := m.Origin.Adjacent(world.DirRight)
	if gotEast == nil || gotEast.Tile(world.Location{}).Data.TileID != 2 {
		t.Fatalf("expected east neighbor with tile id 2, got %+v", gotEast)
	}
	gotSouth := m.Origin.Adjacent(world.DirDown)
	if gotSouth == nil || gotSouth.Tile(world.Location{}).Data.TileID != 3 {
		t.Fatalf("expected south neighbor with tile id 3, got %+v", gotSouth)
	}

	if _, ok := g.World.Get(5); !ok {
		t.Fatal("LoadMap did not install the assembled map into World")
	}
}
