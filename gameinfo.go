// Package engine wires the engine's leaf packages (world, catalog, render,
// effect, gamelock, netio) into the game state root and its two
// cooperative loops, grounded on original_source/src/pokgame.c.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/effect"
	"github.com/pokgame/engine/gamelock"
	"github.com/pokgame/engine/render"
	"github.com/pokgame/engine/world"
	"github.com/pokgame/engine/world/provider"
)

// GameContext names the coarse scene state, matching the game_context tag
// described in spec.md §4.11's post-fadeout transition table.
type GameContext int

const (
	ContextIntro GameContext = iota
	ContextWorld
	ContextWarpFadeout
	ContextWarpFadeoutCave
	ContextWarpLatentFadeout
	ContextWarpLatentFadeoutCave
	ContextWarpFadein
)

// GraphicsConfig carries the subset of the version peer's graphics
// parameters the engine itself needs (the rasterization backend owns the
// rest), matching the GRAPHICS bit of the intermediate exchange.
type GraphicsConfig struct {
	Dimension    int32 // pixel size of one tile
	WindowWidth  int32
	WindowHeight int32
}

// WarpTransition caches the tile's warp metadata while a fadeout plays,
// installed into the map render context and player context once the
// fadeout completes, matching map_trans in pokgame.c.
type WarpTransition struct {
	MapNo    uint32
	ChunkPos world.Point
	Location world.Location
	Latent   world.Direction
}

// GameInfo is the engine's game state root: it owns every other data
// component and the control flag the update loop watches for shutdown,
// matching pok_game_info.
type GameInfo struct {
	Graphics GraphicsConfig

	Tiles   *catalog.TileCatalog
	Sprites *catalog.SpriteCatalog

	World *world.World

	// Provider is the configured map persistence backend (nil disables
	// lazy map loading). LoadMap consults it when a warp targets a map
	// number World does not already hold.
	Provider provider.Provider

	MapRC   *render.MapRenderContext
	CharRC  *render.CharacterRenderContext
	Player  *world.Character
	PlayerContext *render.CharacterContext

	Locks *gamelock.Table

	ToIO   *InterMsgSlot
	FromIO *InterMsgSlot

	UpdateTimeout uint32 // milliseconds between update loop ticks
	IOTimeout     uint32 // milliseconds per I/O loop iteration

	Context  GameContext
	MapTrans WarpTransition

	Fadeout  *effect.Fadeout
	Daycycle *effect.Daycycle

	running atomic.Bool
}

// NewGameInfo returns a GameInfo in the Intro context with its loops
// marked running.
func NewGameInfo(tiles *catalog.TileCatalog) *GameInfo {
	g := &GameInfo{
		Tiles:    tiles,
		World:    world.NewWorld(),
		MapRC:    render.NewMapRenderContext(tiles),
		CharRC:   render.NewCharacterRenderContext(),
		Locks:    gamelock.New(),
		ToIO:     NewInterMsgSlot(),
		FromIO:   NewInterMsgSlot(),
		Fadeout:  effect.NewFadeout(),
		Daycycle: effect.NewDaycycle(),
		Context:  ContextIntro,
	}
	g.running.Store(true)
	return g
}

// Running reports whether the update loop should keep iterating.
func (g *GameInfo) Running() bool {
	return g.running.Load()
}

// Stop clears the control flag, signaling the update loop to exit on its
// next iteration check.
func (g *GameInfo) Stop() {
	g.running.Store(false)
}

// bootstrapOnce guards process-wide one-time engine initialization
// (mirroring the original's module-level init calls for the error module
// and netobj registry), matching pok_game_init's idempotent bootstrap.
var bootstrapOnce sync.Once

// Bootstrap performs any process-wide one-time setup. It is safe to call
// more than once.
func Bootstrap() {
	bootstrapOnce.Do(func() {})
}
