// Package renderer is an explicit stand-in for the renderer thread,
// which spec.md §1 places out of scope (the rasterization backend is a
// caller concern). Loop exists only so the three-loop concurrency model
// of spec.md §5 has a real third participant: it snapshots the map and
// character render contexts under the game lock table's reader side on
// every frame, exactly as a real renderer would before drawing, giving the
// lock table a genuine concurrent reader against the update loop's writer
// sections (this package's own tests run it beside a concurrent writer).
package renderer

import (
	"context"
	"time"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/gamelock"
)

// defaultFrameInterval approximates a 60Hz refresh; a real backend would
// instead be driven by the windowing platform (spec.md §5's "renderer is
// typically platform-driven").
const defaultFrameInterval = 16 * time.Millisecond

// Loop periodically takes a read-lock snapshot of the game's render
// contexts, matching the renderer's obligations under spec.md §5's
// ordering guarantees without performing any actual drawing.
type Loop struct {
	Game          *engine.GameInfo
	FrameInterval time.Duration
	Frames        func(snapshot Snapshot) // optional, called once per frame
}

// Snapshot is the data a real renderer would draw from, captured while
// holding both contexts' reader locks.
type Snapshot struct {
	Focus       [2]int
	Offset      [2]int32
	PlayerFrame int
}

// NewLoop returns a Loop bound to game, defaulting FrameInterval to a
// 60Hz cadence.
func NewLoop(game *engine.GameInfo) *Loop {
	return &Loop{Game: game, FrameInterval: defaultFrameInterval}
}

// Run renders frames until ctx is cancelled or the game's control flag
// clears, matching spec.md §5's "renderer may suspend itself to hold
// frame-rate" and the cancellation-propagates-to-all-three-loops rule.
func (l *Loop) Run(ctx context.Context) {
	interval := l.FrameInterval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for l.Game.Running() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.frame()
		}
	}
}

func (l *Loop) frame() {
	g := l.Game
	mapRCKey := gamelock.Key(g.MapRC)
	charRCKey := gamelock.Key(g.CharRC)

	g.Locks.Lock(mapRCKey)
	g.Locks.Lock(charRCKey)
	snap := Snapshot{Focus: g.MapRC.Focus, Offset: g.MapRC.Offset}
	if g.PlayerContext != nil {
		snap.PlayerFrame = g.PlayerContext.Frame
	}
	g.Locks.Unlock(charRCKey)
	g.Locks.Unlock(mapRCKey)

	if l.Frames != nil {
		l.Frames(snap)
	}
}
