package provider_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pokgame/engine/world"
	"github.com/pokgame/engine/world/provider"
)

func TestFlatFileSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fp := provider.NewFlatFile(dir)

	origin := world.NewChunk(world.Size{Columns: 2, Rows: 2})
	origin.SetTile(world.Location{Column: 0, Row: 0}, world.NewTile(7))
	origin.SetTile(world.Location{Column: 1, Row: 0}, world.NewTile(8))

	east := world.NewChunk(world.Size{Columns: 2, Rows: 2})
	east.SetTile(world.Location{Column: 0, Row: 0}, world.NewTile(42))
	world.Link(origin, world.DirRight, east)

	if err := fp.SaveChunk(1, world.Point{}, origin); err != nil {
		t.Fatalf("SaveChunk origin: %v", err)
	}
	if err := fp.SaveChunk(1, world.Point{X: 1, Y: 0}, east); err != nil {
		t.Fatalf("SaveChunk east: %v", err)
	}
	if err := fp.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := provider.NewFlatFile(dir)
	loaded, ok, err := reopened.LoadChunk(1, world.Point{})
	if err != nil {
		t.Fatalf("LoadChunk origin: %v", err)
	}
	if !ok {
		t.Fatal("origin chunk not found after reload")
	}
	if loaded.Tile(world.Location{Column: 0, Row: 0}).Data.TileID != 7 {
		t.Fatalf("origin tile(0,0) = %d, want 7", loaded.Tile(world.Location{Column: 0, Row: 0}).Data.TileID)
	}
	if loaded.Tile(world.Location{Column: 1, Row: 0}).Data.TileID != 8 {
		t.Fatalf("origin tile(1,0) = %d, want 8", loaded.Tile(world.Location{Column: 1, Row: 0}).Data.TileID)
	}

	loadedEast, ok, err := reopened.LoadChunk(1, world.Point{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("LoadChunk east: %v", err)
	}
	if !ok {
		t.Fatal("east chunk not found after reload")
	}
	if loadedEast.Tile(world.Location{Column: 0, Row: 0}).Data.TileID != 42 {
		t.Fatalf("east tile(0,0) = %d, want 42", loadedEast.Tile(world.Location{Column: 0, Row: 0}).Data.TileID)
	}
	if loaded.Adjacent(world.DirRight) != loadedEast {
		t.Fatal("reloaded origin/east chunks should be linked")
	}
}

func TestFlatFileLoadMissingMapErrors(t *testing.T) {
	dir := t.TempDir()
	fp := provider.NewFlatFile(dir)
	if _, _, err := fp.LoadChunk(99, world.Point{}); err == nil {
		t.Fatal("expected an error loading a map that was never saved")
	}
}

func TestFlatFileRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "5.pokmap"), []byte("not a pokmap file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	fp := provider.NewFlatFile(dir)
	if _, _, err := fp.LoadChunk(5, world.Point{}); err == nil {
		t.Fatal("expected an error loading a file with a bad magic header")
	}
}
