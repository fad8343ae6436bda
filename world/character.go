package world

// Character is the static identity/position of a game character. Its
// animation state lives separately in a render.CharacterContext, matching
// pok_character in character.h.
type Character struct {
	NetID       uint32
	SpriteIndex uint16
	Direction   Direction
	MapNo       uint32
	ChunkPos    Point
	TilePos     Location
	IsPlayer    bool
}

// NewCharacter builds a character at the given position.
func NewCharacter(spriteIndex uint16, mapNo uint32, chunkPos Point, tilePos Location) *Character {
	return &Character{
		SpriteIndex: spriteIndex,
		MapNo:       mapNo,
		ChunkPos:    chunkPos,
		TilePos:     tilePos,
	}
}
