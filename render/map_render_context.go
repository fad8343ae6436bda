// Package render implements the map render context and character render
// context: the scroll/move state machine and the per-character animation
// state machine, grounded on original_source/src/map-render.c and
// character-context.c.
package render

import (
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/world"
)

// MoveResult is the outcome of Move.
type MoveResult int

const (
	MoveOK MoveResult = iota
	MoveBlocked
)

// UpdateResult is the outcome of Update.
type UpdateResult int

const (
	UpdateInProgress UpdateResult = iota
	UpdateCompleted
)

// ChunkRenderInfo is the per-frame draw plan for one of up to four chunks
// contributing to the visible screen, matching pok_chunk_render_info in
// map-context.h.
type ChunkRenderInfo struct {
	PX, PY        int32
	Across, Down  uint16
	Loc           world.Location
	ChunkPos      world.Point
	Chunk         *world.MapChunk
}

// MapRenderContext is what the renderer paints: a focused 3x3 window of
// chunks, a scroll offset, and up to four ChunkRenderInfo rectangles
// covering the visible area plus a one-tile border, matching
// pok_map_render_context in map-context.h.
type MapRenderContext struct {
	Focus  [2]int // which of the 3x3 window (0..2, 0..2) is the current chunk
	Offset [2]int32

	viewingChunks [3][3]*world.MapChunk
	RelPos        world.Location
	ChunkPos      world.Point

	Chunk *world.MapChunk
	Map   *world.Map
	Tman  *catalog.TileCatalog

	Info [4]ChunkRenderInfo

	Granularity    uint16
	TileAniTicks   uint32
	ScrollTicks    uint32
	ScrollTicksAmt uint32
	GrooveTicks    uint32

	Groove   bool
	Changed  bool
	Updating bool

	// WindowSize is the visible tile span (columns, rows) the renderer
	// wants shown, used by compute_chunk_render_info.
	WindowSize world.Size
	// Dimension is the pixel size of one tile.
	Dimension int32
}

// NewMapRenderContext returns a context bound to the given tile catalog.
func NewMapRenderContext(tman *catalog.TileCatalog) *MapRenderContext {
	return &MapRenderContext{Tman: tman, Granularity: 1, Focus: [2]int{1, 1}}
}

// SetMap installs map as the context's current map, resetting position to
// the map's origin chunk and recomputing the viewing window.
func (ctx *MapRenderContext) SetMap(m *world.Map) {
	ctx.Map = m
	ctx.Chunk = m.Chunk
	ctx.ChunkPos = world.Point{}
	ctx.RelPos = m.Pos
	ctx.Align()
	ctx.Changed = true
}

// Align places the current chunk at viewingChunks[1][1] and fills the
// other eight slots from two-step traversals of adjacent, matching
// pok_map_render_context_align. Diagonals are derived via the north/south
// neighbor's own left/right (not via the west/east neighbor's up/down),
// matching the order ChunkInsertHint.Insert wires during construction.
func (ctx *MapRenderContext) Align() {
	ctx.Focus = [2]int{1, 1}
	for i := range ctx.viewingChunks {
		for j := range ctx.viewingChunks[i] {
			ctx.viewingChunks[i][j] = nil
		}
	}
	center := ctx.Chunk
	ctx.viewingChunks[1][1] = center
	if center == nil {
		return
	}
	north := center.Adjacent(world.DirUp)
	south := center.Adjacent(world.DirDown)
	west := center.Adjacent(world.DirLeft)
	east := center.Adjacent(world.DirRight)
	ctx.viewingChunks[0][1] = north
	ctx.viewingChunks[2][1] = south
	ctx.viewingChunks[1][0] = west
	ctx.viewingChunks[1][2] = east

	if north != nil {
		ctx.viewingChunks[0][0] = north.Adjacent(world.DirLeft)
		ctx.viewingChunks[0][2] = north.Adjacent(world.DirRight)
	}
	if south != nil {
		ctx.viewingChunks[2][0] = south.Adjacent(world.DirLeft)
		ctx.viewingChunks[2][2] = south.Adjacent(world.DirRight)
	}
}

// CenterOn walks the adjacency graph from the current chunk toward
// chunkPos, advancing along X until DeltaX = 0 then along Y (falling back
// to whichever axis still has a neighbor when the preferred one is
// missing), matching pok_map_render_context_center_on. On failure the
// context is left unchanged.
func (ctx *MapRenderContext) CenterOn(chunkPos world.Point, relPos world.Location) error {
	if ctx.Chunk == nil {
		return errs.Wrap(errs.KindMap, "render.MapRenderContext.CenterOn", errs.ErrBadPosition)
	}
	cur := ctx.Chunk
	curPos := ctx.ChunkPos
	for curPos.X != chunkPos.X || curPos.Y != chunkPos.Y {
		var dir world.Direction
		switch {
		case curPos.X < chunkPos.X:
			dir = world.DirRight
		case curPos.X > chunkPos.X:
			dir = world.DirLeft
		case curPos.Y < chunkPos.Y:
			dir = world.DirDown
		case curPos.Y > chunkPos.Y:
			dir = world.DirUp
		}
		next := cur.Adjacent(dir)
		if next == nil && (dir == world.DirLeft || dir == world.DirRight) && curPos.Y != chunkPos.Y {
			// X step missing: fall back to the Y axis while it still has ground to cover
			if curPos.Y < chunkPos.Y {
				dir = world.DirDown
			} else {
				dir = world.DirUp
			}
			next = cur.Adjacent(dir)
		}
		if next == nil {
			return errs.Wrap(errs.KindMap, "render.MapRenderContext.CenterOn", errs.ErrBadPosition)
		}
		cur = next
		curPos = curPos.Add(dir)
	}
	ctx.Chunk = cur
	ctx.ChunkPos = curPos
	ctx.RelPos = relPos
	ctx.Align()
	ctx.Changed = true
	return nil
}

// IsImpassable reports whether the tile at loc in chunk is impassable
// under the context's tile catalog, matching is_impassable in map-render.c.
func (ctx *MapRenderContext) IsImpassable(chunk *world.MapChunk, loc world.Location) bool {
	if chunk == nil || ctx.Tman == nil {
		return true
	}
	t := chunk.Tile(loc)
	return ctx.Tman.IsImpassable(t.Data.TileID, t.Impass, t.Pass)
}

// Move attempts to move one tile in dir, matching
// pok_map_render_context_move.
func (ctx *MapRenderContext) Move(dir world.Direction, checkPassable bool) MoveResult {
	if ctx.Chunk == nil {
		return MoveBlocked
	}
	newRel := ctx.RelPos
	crossesChunk := false
	switch dir {
	case world.DirUp:
		if newRel.Row == 0 {
			crossesChunk = true
		} else {
			newRel.Row--
		}
	case world.DirDown:
		if newRel.Row+1 >= ctx.Chunk.Size.Rows {
			crossesChunk = true
		} else {
			newRel.Row++
		}
	case world.DirLeft:
		if newRel.Column == 0 {
			crossesChunk = true
		} else {
			newRel.Column--
		}
	case world.DirRight:
		if newRel.Column+1 >= ctx.Chunk.Size.Columns {
			crossesChunk = true
		} else {
			newRel.Column++
		}
	}

	if !crossesChunk {
		if checkPassable && ctx.IsImpassable(ctx.Chunk, newRel) {
			return MoveBlocked
		}
		ctx.RelPos = newRel
		ctx.maybeRealign(dir)
		ctx.Changed = true
		return MoveOK
	}

	dx, dy := focusDelta(dir)
	nf0, nf1 := ctx.Focus[0]+dy, ctx.Focus[1]+dx
	if nf0 < 0 || nf0 > 2 || nf1 < 0 || nf1 > 2 {
		return MoveBlocked
	}
	neighborChunk := ctx.viewingChunks[nf0][nf1]
	if neighborChunk == nil {
		return MoveBlocked
	}
	edgeLoc := edgeLocation(dir, ctx.Chunk.Size, ctx.RelPos, neighborChunk.Size)
	if checkPassable && ctx.IsImpassable(neighborChunk, edgeLoc) {
		return MoveBlocked
	}
	ctx.RelPos = edgeLoc
	ctx.ChunkPos = ctx.ChunkPos.Add(dir)
	ctx.Chunk = neighborChunk
	ctx.Align()
	ctx.Changed = true
	return MoveOK
}

// maybeRealign does nothing: an intra-chunk move leaves the center chunk,
// and so the 3x3 viewing window, unchanged; the window is realigned only
// when Move crosses into a neighboring chunk.
func (ctx *MapRenderContext) maybeRealign(dir world.Direction) {
	// center chunk unchanged intra-chunk; nothing to realign.
	_ = dir
}

func focusDelta(dir world.Direction) (dx, dy int) {
	switch dir {
	case world.DirUp:
		return 0, -1
	case world.DirDown:
		return 0, 1
	case world.DirLeft:
		return -1, 0
	case world.DirRight:
		return 1, 0
	}
	return 0, 0
}

func edgeLocation(dir world.Direction, fromSize world.Size, rel world.Location, toSize world.Size) world.Location {
	switch dir {
	case world.DirUp:
		return world.Location{Column: rel.Column, Row: toSize.Rows - 1}
	case world.DirDown:
		return world.Location{Column: rel.Column, Row: 0}
	case world.DirLeft:
		return world.Location{Column: toSize.Columns - 1, Row: rel.Row}
	case world.DirRight:
		return world.Location{Column: 0, Row: rel.Row}
	}
	return rel
}

// SetUpdate installs an outgoing scroll animation: the offset is primed
// with +-dimension in the direction opposite to travel so painting shifts
// toward the old position and decays to zero, matching
// pok_map_render_context_set_update.
func (ctx *MapRenderContext) SetUpdate(dir world.Direction, dimension int32) {
	switch dir {
	case world.DirUp:
		ctx.Offset[1] = dimension
	case world.DirDown:
		ctx.Offset[1] = -dimension
	case world.DirLeft:
		ctx.Offset[0] = dimension
	case world.DirRight:
		ctx.Offset[0] = -dimension
	}
	ctx.ScrollTicks = 0
	ctx.Groove = false
	ctx.Updating = true
}

// Update advances the scroll by elapsedTicks, matching
// pok_map_render_context_update.
func (ctx *MapRenderContext) Update(dimension int32, elapsedTicks uint32) UpdateResult {
	ctx.ScrollTicks += elapsedTicks
	if ctx.Updating {
		if ctx.ScrollTicks >= ctx.ScrollTicksAmt && ctx.ScrollTicksAmt > 0 {
			times := ctx.ScrollTicks / ctx.ScrollTicksAmt
			inc := dimension / int32(ctx.Granularity)
			if inc == 0 {
				inc = int32(times)
			} else {
				inc *= int32(times)
			}
			ctx.ScrollTicks %= ctx.ScrollTicksAmt
			applyInc(&ctx.Offset[0], inc)
			applyInc(&ctx.Offset[1], inc)
			if ctx.Offset[0] == 0 && ctx.Offset[1] == 0 {
				ctx.Updating = false
				ctx.Groove = true
				return UpdateCompleted
			}
		}
	} else if ctx.Groove && ctx.Granularity > 0 && ctx.ScrollTicks >= ctx.ScrollTicksAmt*uint32(ctx.Granularity-1) {
		ctx.Groove = false
	}
	return UpdateInProgress
}

func applyInc(axis *int32, inc int32) {
	if *axis < 0 {
		*axis += inc
		if *axis > 0 {
			*axis = 0
		}
	} else if *axis > 0 {
		*axis -= inc
		if *axis < 0 {
			*axis = 0
		}
	}
}

// ComputeChunkRenderInfo recomputes ctx.Info from the current viewing
// window, widening the visible window by one tile in every direction,
// matching compute_chunk_render_info in map-render.c.
func (ctx *MapRenderContext) ComputeChunkRenderInfo() {
	for i := range ctx.Info {
		ctx.Info[i] = ChunkRenderInfo{}
	}
	if ctx.Chunk == nil {
		return
	}
	dim := ctx.Dimension
	across := uint16(ctx.WindowSize.Columns) + 2
	down := uint16(ctx.WindowSize.Rows) + 2

	ctx.Info[0] = ChunkRenderInfo{
		PX: -dim, PY: -dim,
		Across: across, Down: down,
		Loc:      world.Location{Column: clampSub(ctx.RelPos.Column, 1), Row: clampSub(ctx.RelPos.Row, 1)},
		ChunkPos: ctx.ChunkPos,
		Chunk:    ctx.Chunk,
	}

	halfCols := int32(ctx.WindowSize.Columns / 2)
	colsEast := int32(ctx.Chunk.Size.Columns) - int32(ctx.RelPos.Column) - 1
	if colsEast < halfCols+1 {
		if east := ctx.viewingChunks[ctx.Focus[0]][clampIdx(ctx.Focus[1] + 1)]; east != nil {
			need := halfCols + 1 - colsEast
			ctx.Info[0].Across -= uint16(need)
			ctx.Info[1] = ChunkRenderInfo{
				PX: ctx.Info[0].PX + int32(ctx.Info[0].Across)*dim,
				PY: ctx.Info[0].PY,
				Across: clampU16(uint32(need)), Down: down,
				Loc:      world.Location{Row: ctx.Info[0].Loc.Row},
				ChunkPos: ctx.ChunkPos.Add(world.DirRight),
				Chunk:    east,
			}
		}
	}
	i := int32(ctx.RelPos.Column) - halfCols - 1
	if i < 0 {
		if west := ctx.viewingChunks[ctx.Focus[0]][clampIdx(ctx.Focus[1] - 1)]; west != nil {
			shift := -i
			ctx.Info[0].PX += shift * dim
			ctx.Info[0].Across -= uint16(shift)
			ctx.Info[1] = ChunkRenderInfo{
				PX: -dim, PY: ctx.Info[0].PY,
				Across: clampU16(uint32(shift)), Down: down,
				Loc:      world.Location{Column: west.Size.Columns - uint32(shift), Row: ctx.Info[0].Loc.Row},
				ChunkPos: ctx.ChunkPos.Add(world.DirLeft),
				Chunk:    west,
			}
		}
	}

	halfRows := int32(ctx.WindowSize.Rows / 2)
	rowsSouth := int32(ctx.Chunk.Size.Rows) - int32(ctx.RelPos.Row) - 1
	if rowsSouth < halfRows+1 {
		if south := ctx.viewingChunks[clampIdx(ctx.Focus[0] + 1)][ctx.Focus[1]]; south != nil {
			need := halfRows + 1 - rowsSouth
			ctx.Info[0].Down -= uint16(need)
			ctx.Info[2] = ChunkRenderInfo{
				PX: ctx.Info[0].PX, PY: ctx.Info[0].PY + int32(ctx.Info[0].Down)*dim,
				Across: across, Down: clampU16(uint32(need)),
				Loc:      world.Location{Column: ctx.Info[0].Loc.Column},
				ChunkPos: ctx.ChunkPos.Add(world.DirDown),
				Chunk:    south,
			}
		}
	}
	j := int32(ctx.RelPos.Row) - halfRows - 1
	if j < 0 {
		if north := ctx.viewingChunks[clampIdx(ctx.Focus[0] - 1)][ctx.Focus[1]]; north != nil {
			shift := -j
			ctx.Info[0].PY += shift * dim
			ctx.Info[0].Down -= uint16(shift)
			ctx.Info[2] = ChunkRenderInfo{
				PX: ctx.Info[0].PX, PY: -dim,
				Across: across, Down: clampU16(uint32(shift)),
				Loc:      world.Location{Column: ctx.Info[0].Loc.Column, Row: north.Size.Rows - uint32(shift)},
				ChunkPos: ctx.ChunkPos.Add(world.DirUp),
				Chunk:    north,
			}
		}
	}

	if ctx.Info[1].Chunk != nil && ctx.Info[2].Chunk != nil {
		// the diagonal is vertically identical to info[1] and
		// horizontally identical to info[2].
		diagChunkPos := world.Point{X: ctx.Info[1].ChunkPos.X, Y: ctx.Info[2].ChunkPos.Y}
		var diag *world.MapChunk
		if c := ctx.Info[1].Chunk; c != nil {
			// derive via whichever orthogonal step resolves it
			if ctx.Info[2].ChunkPos.Y < ctx.ChunkPos.Y {
				diag = c.Adjacent(world.DirUp)
			} else {
				diag = c.Adjacent(world.DirDown)
			}
		}
		if diag != nil {
			ctx.Info[3] = ChunkRenderInfo{
				PX: ctx.Info[1].PX, PY: ctx.Info[2].PY,
				Across: ctx.Info[1].Across, Down: ctx.Info[2].Down,
				Loc:      world.Location{Column: ctx.Info[1].Loc.Column, Row: ctx.Info[2].Loc.Row},
				ChunkPos: diagChunkPos,
				Chunk:    diag,
			}
		}
	}

	for k := range ctx.Info {
		if ctx.Info[k].Chunk == nil {
			continue
		}
		if ctx.Info[k].Across > uint16(ctx.Info[k].Chunk.Size.Columns) {
			ctx.Info[k].Across = uint16(ctx.Info[k].Chunk.Size.Columns)
		}
		if ctx.Info[k].Down > uint16(ctx.Info[k].Chunk.Size.Rows) {
			ctx.Info[k].Down = uint16(ctx.Info[k].Chunk.Size.Rows)
		}
	}
}

func clampIdx(i int) int {
	if i < 0 {
		return 0
	}
	if i > 2 {
		return 2
	}
	return i
}

func clampSub(v uint32, n uint32) uint32 {
	if v < n {
		return 0
	}
	return v - n
}

func clampU16(v uint32) uint16 {
	if v > 0xffff {
		return 0xffff
	}
	return uint16(v)
}
