package catalog

import (
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/world"
)

// SpriteFrame indexes the 10 directional frames of one character's sprite
// block, matching pok_sprite_frame_direction in spriteman.h.
type SpriteFrame int

const (
	FrameUp SpriteFrame = iota
	FrameUpAni1
	FrameUpAni2
	FrameDown
	FrameDownAni1
	FrameDownAni2
	FrameLeft
	FrameLeftAni
	FrameRight
	FrameRightAni
	framesPerSprite
)

// BaseFrame maps a direction to its resting (non-animated) frame index.
func BaseFrame(dir world.Direction) SpriteFrame {
	switch dir {
	case world.DirUp:
		return FrameUp
	case world.DirDown:
		return FrameDown
	case world.DirLeft:
		return FrameLeft
	case world.DirRight:
		return FrameRight
	}
	return FrameDown
}

// DirectionOf is the inverse of BaseFrame, used when only a frame index is
// known (e.g. after a netread), matching pok_from_frame_direction.
func DirectionOf(frame SpriteFrame) world.Direction {
	switch {
	case frame < FrameDown:
		return world.DirUp
	case frame < FrameLeft:
		return world.DirDown
	case frame < FrameRight:
		return world.DirLeft
	default:
		return world.DirRight
	}
}

// SpriteCatalog records how many 10-frame sprite blocks are available. It
// holds no frames and no sprite-index association table: pixel data is
// delegated to the out-of-scope graphics backend, and this catalog only
// tracks the count.
type SpriteCatalog struct {
	SpriteCount uint16
}

// NewSpriteCatalog returns a catalog with spriteCount logical sprite sets.
// spriteCount == 0 is valid: the catalog is usable but has no renderable
// characters (spec.md §8's boundary case).
func NewSpriteCatalog(spriteCount uint16) *SpriteCatalog {
	return &SpriteCatalog{SpriteCount: spriteCount}
}

// ReadSpriteNet decodes a sprite catalog from its wire form, a single u16
// sprite_set_count; no image sheet is read or skipped. info carries the
// (single-field) resumable-read progress, matching the ReadInfo discipline
// every other netread in this module follows.
func ReadSpriteNet(ch *netio.Channel, info *netio.ReadInfo) (*SpriteCatalog, netio.ReadProgress, error) {
	count, ok, err := ch.ReadU16()
	prog := info.Process(ok, err)
	if prog != netio.Complete {
		if prog == netio.Failed {
			return nil, prog, errs.Wrap(errs.KindSpriteCatalog, "catalog.ReadSpriteNet", err)
		}
		return nil, prog, nil
	}
	return NewSpriteCatalog(count), netio.Complete, nil
}
