package update_test

import (
	"testing"
	"time"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/render"
	"github.com/pokgame/engine/update"
	"github.com/pokgame/engine/world"
)

type fakeKeyboard struct {
	down map[engine.Key]bool
}

func (k *fakeKeyboard) Refresh() {}
func (k *fakeKeyboard) Down(key engine.Key) bool { return k.down[key] }

func newPlayingGame(t *testing.T) (*engine.GameInfo, *fakeKeyboard) {
	t.Helper()
	tiles, err := catalog.NewTileCatalog(4, 1)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	game := engine.NewGameInfo(tiles)
	game.Context = engine.ContextWorld
	game.Graphics.Dimension = 16

	chunk := world.NewChunk(world.Size{Columns: 4, Rows: 4})
	for row := uint32(0); row < chunk.Size.Rows; row++ {
		for col := uint32(0); col < chunk.Size.Columns; col++ {
			chunk.SetTile(world.Location{Column: col, Row: row}, world.Tile{Pass: true})
		}
	}
	game.MapRC.Chunk = chunk
	game.MapRC.RelPos = world.Location{Column: 1, Row: 1}
	game.MapRC.Align()

	game.Player = world.NewCharacter(0, 1, world.Point{}, game.MapRC.RelPos)
	game.PlayerContext = render.NewCharacterContext()
	game.CharRC.Add(game.PlayerContext)

	return game, &fakeKeyboard{down: map[engine.Key]bool{}}
}

func TestStepMovesPlayerOnDirectionPress(t *testing.T) {
	game, keys := newPlayingGame(t)
	keys.down[engine.KeyRight] = true

	loop := update.NewLoop(game, keys)
	loop.Step(10 * time.Millisecond)

	if game.MapRC.RelPos.Column != 2 {
		t.Fatalf("RelPos.Column after one step = %d, want 2", game.MapRC.RelPos.Column)
	}
	if !game.PlayerContext.IsMoving() {
		t.Fatal("expected PlayerContext to be moving after a direction press")
	}
	if game.Player.Direction != world.DirRight {
		t.Fatalf("Player.Direction = %v, want DirRight", game.Player.Direction)
	}
}

func TestStepIgnoresInputOutsideWorldContext(t *testing.T) {
	game, keys := newPlayingGame(t)
	game.Context = engine.ContextWarpFadeout
	keys.down[engine.KeyRight] = true

	loop := update.NewLoop(game, keys)
	loop.Step(10 * time.Millisecond)

	if game.MapRC.RelPos.Column != 1 {
		t.Fatalf("RelPos.Column = %d, want unchanged 1 outside ContextWorld", game.MapRC.RelPos.Column)
	}
}

func TestStepNoInputLeavesPositionUnchanged(t *testing.T) {
	game, _ := newPlayingGame(t)
	loop := update.NewLoop(game, &fakeKeyboard{down: map[engine.Key]bool{}})
	loop.Step(10 * time.Millisecond)

	if game.MapRC.RelPos.Column != 1 {
		t.Fatalf("RelPos.Column = %d, want unchanged 1 with no key pressed", game.MapRC.RelPos.Column)
	}
}
