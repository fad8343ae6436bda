// Package provider gives Map.Open/Map.Save a real backing store, grounded
// on original_source/src/map.c's (stubbed) open/save routines and the
// on-disk chunk_tree format in spec.md §6.
package provider

import "github.com/pokgame/engine/world"

// Provider persists and retrieves individual map chunks by map number and
// chunk-plane position.
type Provider interface {
	LoadChunk(mapNo uint32, pos world.Point) (*world.MapChunk, bool, error)
	SaveChunk(mapNo uint32, pos world.Point, chunk *world.MapChunk) error
	Close() error
}
