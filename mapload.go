package engine

import (
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/world"
)

// LoadMap returns the map numbered mapNo, installing it into World first
// if it is not already resident. A resident map is returned as-is (a
// no-op success). Otherwise Provider is asked for the origin chunk and
// the graph is walked outward one ring of chunks at a time via
// Map.InsertDynamicChunk, matching spec.md §4.6 creation path (b)'s
// "open from a saved file" in spirit: the provider answers per-chunk,
// per-position queries rather than handing back a whole Map, so the
// adjacency graph is rebuilt here the same way InsertDynamicChunk builds
// it for a chunk arriving mid-session.
func (g *GameInfo) LoadMap(mapNo uint32) (*world.Map, error) {
	if m, ok := g.World.Get(mapNo); ok {
		return m, nil
	}
	if g.Provider == nil {
		return nil, errs.New(errs.KindMap, "engine.GameInfo.LoadMap")
	}

	origin, ok, err := g.Provider.LoadChunk(mapNo, world.Point{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.KindMap, "engine.GameInfo.LoadMap")
	}

	m := world.NewMap(mapNo)
	m.ChunkSize = origin.Size
	m.InsertDynamicChunk(world.Point{}, origin)

	frontier := []world.Point{{}}
	for len(frontier) > 0 {
		pos := frontier[0]
		frontier = frontier[1:]
		for _, dir := range world.Directions {
			npos := pos.Add(dir)
			if m.HasChunk(npos) {
				continue
			}
			chunk, ok, err := g.Provider.LoadChunk(mapNo, npos)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			m.InsertDynamicChunk(npos, chunk)
			frontier = append(frontier, npos)
		}
	}

	g.World.Put(m)
	return m, nil
}
