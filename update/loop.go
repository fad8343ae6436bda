// Package update implements the single-threaded cooperative update loop
// described in spec.md §4.11, grounded on original_source/src/update-proc.c:
// it polls input, advances the map and character render contexts and the
// effect engine, and posts InterMsgs to the I/O loop.
package update

import (
	"time"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/effect"
	"github.com/pokgame/engine/gamelock"
	"github.com/pokgame/engine/render"
	"github.com/pokgame/engine/world"
)

// Keyboard abstracts the platform input backend (out of scope per
// spec.md's PURPOSE & SCOPE): Refresh samples the OS input queue; Down
// reports whether a key is currently held.
type Keyboard interface {
	Refresh()
	Down(k engine.Key) bool
}

const defaultTileAniPeriod = 250 * time.Millisecond

// warpFadeoutTicks is the fixed time argument (in ticks) every warp
// fadeout and fade-in passes to Fadeout.SetUpdate, matching the constant
// travel time pok_game_new_fadeout_effect uses for map transitions; the
// fadeout itself completes in about half of it (see Fadeout.SetUpdate).
const warpFadeoutTicks = 600

// Loop drives one GameInfo's update tick, matching pok_update_proc.
type Loop struct {
	Game *engine.GameInfo
	Keys Keyboard

	tileAniAccum time.Duration
}

// NewLoop returns a loop bound to game and keys.
func NewLoop(game *engine.GameInfo, keys Keyboard) *Loop {
	return &Loop{Game: game, Keys: keys}
}

// Run drives ticks until the game's control flag is cleared, matching the
// loop's top-level structure in update-proc.c. elapsed is the real
// duration since the previous call, supplied by the caller (commonly a
// ticker) rather than read from the wall clock directly, so the loop
// stays testable without Date.now-style nondeterminism.
func (l *Loop) Run(tick func() time.Duration) {
	for l.Game.Running() {
		l.Step(tick())
	}
}

// Step runs exactly one iteration of the update loop body, matching
// spec.md §4.11's six numbered steps.
func (l *Loop) Step(elapsed time.Duration) {
	g := l.Game
	elapsedTicks := uint32(elapsed.Milliseconds())

	l.Keys.Refresh()

	if g.Context == engine.ContextWorld {
		l.handleInput()
	}

	dim := g.Graphics.Dimension
	g.MapRC.Update(dim, elapsedTicks)
	if g.PlayerContext != nil {
		g.PlayerContext.Update(dim, elapsedTicks)
	}

	if g.Fadeout.Update(elapsedTicks) && g.Fadeout.Done() {
		l.onFadeoutComplete()
	}

	if !g.MapRC.Updating && (g.PlayerContext == nil || !g.PlayerContext.IsMoving()) {
		l.tileAniAccum += elapsed
		if l.tileAniAccum >= defaultTileAniPeriod {
			l.tileAniAccum -= defaultTileAniPeriod
			g.MapRC.TileAniTicks++
		}
	}
}

// handleInput implements step 2 of spec.md §4.11: direction press
// handling, latent-warp detection, move+collision, and animation arming.
func (l *Loop) handleInput() {
	g := l.Game
	if g.PlayerContext == nil || g.PlayerContext.IsMoving() || g.MapRC.Updating {
		return
	}
	dir, pressed := l.pressedDirection()
	if !pressed {
		return
	}

	mapRCKey := gamelock.Key(g.MapRC)
	g.Locks.ModifyEnter(mapRCKey)
	defer g.Locks.ModifyExit(mapRCKey)

	dim := g.Graphics.Dimension
	slowDown := false

	currentTile := g.MapRC.Chunk.Tile(g.MapRC.RelPos)
	if latentDir, ok := currentTile.Data.WarpKind.LatentDirection(); ok && latentDir == dir && g.Player.Direction == dir {
		armWarpTransition(&g.MapTrans, currentTile.Data, dir)
		g.Fadeout.SetUpdate(warpFadeoutTicks, fadeoutKindFor(currentTile.Data.WarpKind), false, false, 0)
		if currentTile.Data.WarpKind.IsCave() {
			g.Context = engine.ContextWarpLatentFadeoutCave
		} else {
			g.Context = engine.ContextWarpLatentFadeout
		}
	} else if g.MapRC.Move(dir, true) == render.MoveOK {
		if l.collidesWithCharacter() {
			g.MapRC.Move(dir.Opposite(), false)
			slowDown = true
		} else {
			dest := g.MapRC.Chunk.Tile(g.MapRC.RelPos)
			_, isLatent := dest.Data.WarpKind.LatentDirection()
			if dest.Data.WarpKind != world.WarpNone && !isLatent {
				armWarpTransition(&g.MapTrans, dest.Data, world.DirNone)
				g.Fadeout.SetUpdate(warpFadeoutTicks, fadeoutKindFor(dest.Data.WarpKind), false, false, 0)
				if dest.Data.WarpKind.IsCave() {
					g.Context = engine.ContextWarpFadeoutCave
				} else {
					g.Context = engine.ContextWarpFadeout
				}
			}
			g.MapRC.SetUpdate(dir, dim)
			g.Player.Direction = dir
			g.Player.ChunkPos = g.MapRC.ChunkPos
			g.Player.TilePos = g.MapRC.RelPos
		}
	}

	param := dim
	if slowDown {
		param = 0
	}
	g.PlayerContext.SlowDown = slowDown
	g.PlayerContext.SetUpdate(dir, render.EffectNone, param)

	if dir == g.Player.Direction.Opposite() && !g.PlayerContext.IsMoving() {
		g.PlayerContext.SetUpdate(dir, render.EffectNone, 0)
	}
}

// onFadeoutComplete runs the post-fadeout transition table from
// spec.md §4.11 step 4.
func (l *Loop) onFadeoutComplete() {
	g := l.Game
	switch g.Context {
	case engine.ContextIntro:
		l.installWarpTarget()
		g.Context = engine.ContextWorld
	case engine.ContextWarpFadeout, engine.ContextWarpFadeoutCave:
		l.installWarpTarget()
		g.Fadeout.SetUpdate(warpFadeoutTicks, effect.FadeoutBlackScreen, true, false, 0)
		g.Context = engine.ContextWarpFadein
	case engine.ContextWarpLatentFadeout, engine.ContextWarpLatentFadeoutCave:
		l.installWarpTarget()
		g.MapRC.Move(g.MapTrans.Latent, false)
		g.PlayerContext.SetUpdate(g.MapTrans.Latent, render.EffectNone, g.Graphics.Dimension)
		g.Fadeout.SetUpdate(warpFadeoutTicks, effect.FadeoutBlackScreen, true, false, 0)
		g.Context = engine.ContextWarpFadein
	case engine.ContextWarpFadein:
		g.Context = engine.ContextWorld
	}
}

// installWarpTarget centers the map render context on g.MapTrans and
// updates the player's position to match. If the target map is not yet
// resident in World (the I/O loop has not netread it over the wire this
// session), it falls back to GameInfo.LoadMap, which asks Provider for
// the map's chunks on disk — matching spec.md §4.6's two other creation
// paths alongside the I/O loop's wire netread.
func (l *Loop) installWarpTarget() {
	g := l.Game
	m, ok := g.World.Get(g.MapTrans.MapNo)
	if !ok {
		m, _ = g.LoadMap(g.MapTrans.MapNo)
	}
	if m != nil {
		g.MapRC.SetMap(m)
		_ = g.MapRC.CenterOn(g.MapTrans.ChunkPos, g.MapTrans.Location)
	}
	g.Player.MapNo = g.MapTrans.MapNo
	g.Player.ChunkPos = g.MapTrans.ChunkPos
	g.Player.TilePos = g.MapTrans.Location
}

func armWarpTransition(trans *engine.WarpTransition, data world.TileData, latent world.Direction) {
	trans.MapNo = data.WarpMap
	trans.ChunkPos = data.WarpChunk
	trans.Location = data.WarpLocation
	trans.Latent = latent
}

func fadeoutKindFor(k world.WarpKind) effect.FadeoutKind {
	if k == world.WarpSpin {
		return effect.FadeoutToCenter
	}
	return effect.FadeoutBlackScreen
}

func (l *Loop) pressedDirection() (world.Direction, bool) {
	switch {
	case l.Keys.Down(engine.KeyUp):
		return world.DirUp, true
	case l.Keys.Down(engine.KeyDown):
		return world.DirDown, true
	case l.Keys.Down(engine.KeyLeft):
		return world.DirLeft, true
	case l.Keys.Down(engine.KeyRight):
		return world.DirRight, true
	}
	return world.DirNone, false
}

// collidesWithCharacter reports whether any non-player character context
// already occupies the player's current tile, matching the collision
// check in spec.md §4.11 step 2.
func (l *Loop) collidesWithCharacter() bool {
	g := l.Game
	collided := false
	g.CharRC.Each(func(_ int, ctx *render.CharacterContext) {
		if ctx == g.PlayerContext {
			return
		}
		if ctx.Chunk == g.MapRC.Chunk && ctx.Pos == g.MapRC.RelPos {
			collided = true
		}
	})
	return collided
}
