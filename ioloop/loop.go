// Package ioloop implements the protocol-facing half of the three-loop
// engine: the introductory and intermediate exchanges, then the general
// exchange that pumps InterMsg mailboxes between the update loop and the
// peer, grounded on original_source/src/io-proc.c.
package ioloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/errs"
	"github.com/pokgame/engine/gamelock"
	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/world"
)

const (
	greetingSequence   = "POKGAME-GREETING"
	binaryModeSequence = "BINARY"
	textModeSequence   = "TEXT"
	maxLineLen         = 256

	bitGraphics = 0x01
	bitTiles    = 0x02
	bitSprites  = 0x04
	bitMap      = 0x08
)

// Loop drives one version peer's protocol session end to end: the
// greeting/mode/label sequence, the one-shot static-state exchange, then
// the steady-state InterMsg pump, matching run_game in io-proc.c.
type Loop struct {
	Game    *engine.GameInfo
	Channel *netio.Channel
	Timeout time.Duration // per general-exchange iteration, spec.md §4.12

	// Registry tracks the netobj ids claimed by map chunks this session
	// netreads, matching spec.md §4.4's process-wide table (scoped here
	// to the session since each version peer mints its own id space).
	Registry *netio.Registry

	Log       *slog.Logger
	SessionID uuid.UUID
	Label     string
}

// NewLoop returns a Loop for one version peer session, tagging it with a
// fresh session identifier used only in log lines to correlate a
// session's messages.
func NewLoop(game *engine.GameInfo, ch *netio.Channel, timeout time.Duration, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{Game: game, Channel: ch, Timeout: timeout, Log: log, SessionID: uuid.New(), Registry: netio.NewRegistry()}
}

// Run executes the introductory exchange, the intermediate exchange, then
// pumps the general exchange until the peer signals end-of-comms, the
// game's control flag clears, or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.Log.Info("session starting", "session", l.SessionID)
	if err := l.exchIntro(ctx); err != nil {
		return fmt.Errorf("introductory exchange: %w", err)
	}
	if err := l.exchInter(ctx); err != nil {
		return fmt.Errorf("intermediate exchange: %w", err)
	}
	l.Log.Info("session entering general exchange", "session", l.SessionID, "label", l.Label)
	err := l.exchGener(ctx)
	l.Log.Info("session ended", "session", l.SessionID, "err", err)
	return err
}

// exchIntro performs seq_greet, seq_mode and seq_label in sequence.
func (l *Loop) exchIntro(ctx context.Context) error {
	if err := l.writeLine(greetingSequence); err != nil {
		return err
	}
	greet, err := l.readLine(ctx)
	if err != nil {
		return err
	}
	if greet != greetingSequence {
		return errs.New(errs.KindNet, "ioloop.exchIntro: bad greeting sequence")
	}
	mode, err := l.readLine(ctx)
	if err != nil {
		return err
	}
	switch mode {
	case binaryModeSequence, textModeSequence:
		// only the binary form is implemented; a text-mode peer is
		// accepted at the handshake but exchInter/exchGener below speak
		// the binary wire form regardless.
	default:
		return errs.New(errs.KindNet, "ioloop.exchIntro: bad protocol mode sequence")
	}
	label, err := l.readLine(ctx)
	if err != nil {
		return err
	}
	l.Label = label
	return nil
}

// exchInter reads the bitmask byte and, for each set bit, the
// corresponding structure, installing it into the game state atomically
// under the map render context's lock. The fourth bit (a map) is this
// engine's own addition to spec.md §4.12's {graphics, tiles, sprites}
// bitmask: §2's component table requires the I/O loop to mutate the map
// & chunk graph, which otherwise has no netread call site at all.
func (l *Loop) exchInter(ctx context.Context) error {
	bitmask, err := l.readU8(ctx)
	if err != nil {
		return err
	}

	mapRCKey := gamelock.Key(l.Game.MapRC)

	if bitmask&bitGraphics != 0 {
		dim, err := l.readU32(ctx)
		if err != nil {
			return err
		}
		w, err := l.readU32(ctx)
		if err != nil {
			return err
		}
		h, err := l.readU32(ctx)
		if err != nil {
			return err
		}
		l.Game.Locks.ModifyEnter(mapRCKey)
		l.Game.Graphics = engine.GraphicsConfig{Dimension: int32(dim), WindowWidth: int32(w), WindowHeight: int32(h)}
		l.Game.Locks.ModifyExit(mapRCKey)
	}

	if bitmask&bitTiles != 0 {
		tiles, err := l.readTileCatalog(ctx)
		if err != nil {
			return err
		}
		l.Game.Locks.ModifyEnter(mapRCKey)
		l.Game.Tiles = tiles
		l.Game.MapRC.Tman = tiles
		l.Game.Locks.ModifyExit(mapRCKey)
	}

	if bitmask&bitSprites != 0 {
		sprites, err := l.readSpriteCatalog(ctx)
		if err != nil {
			return err
		}
		l.Game.Locks.ModifyEnter(mapRCKey)
		l.Game.Sprites = sprites
		l.Game.Locks.ModifyExit(mapRCKey)
	}

	if bitmask&bitMap != 0 {
		m, err := l.readMap(ctx)
		if err != nil {
			return err
		}
		l.Game.Locks.ModifyEnter(mapRCKey)
		l.Game.World.Put(m)
		l.Game.MapTrans.MapNo = m.MapNo
		l.Game.Locks.ModifyExit(mapRCKey)
	}

	return nil
}

// readTileCatalog, readSpriteCatalog and readMap drive their respective
// resumable netread to completion, retrying on netio.Incomplete with the
// same wait/backoff discipline as readU8/readU16/readU32 below instead of
// failing outright on a short read.
func (l *Loop) readTileCatalog(ctx context.Context) (*catalog.TileCatalog, error) {
	info := netio.NewReadInfo()
	for {
		cat, prog, err := catalog.ReadNet(l.Channel, info)
		if err != nil {
			return nil, err
		}
		if prog == netio.Complete {
			return cat, nil
		}
		if done, err := l.wait(ctx); done {
			return nil, err
		}
	}
}

func (l *Loop) readSpriteCatalog(ctx context.Context) (*catalog.SpriteCatalog, error) {
	info := netio.NewReadInfo()
	for {
		sprites, prog, err := catalog.ReadSpriteNet(l.Channel, info)
		if err != nil {
			return nil, err
		}
		if prog == netio.Complete {
			return sprites, nil
		}
		if done, err := l.wait(ctx); done {
			return nil, err
		}
	}
}

func (l *Loop) readMap(ctx context.Context) (*world.Map, error) {
	info := netio.NewReadInfo()
	for {
		m, prog, err := world.ReadNet(l.Channel, info, l.Registry)
		if err != nil {
			return nil, err
		}
		if prog == netio.Complete {
			return m, nil
		}
		if done, err := l.wait(ctx); done {
			return nil, err
		}
	}
}

// exchGener pumps InterMsg frames in both directions until the peer
// reaches end-of-comms, the control flag clears, or ctx is cancelled.
// Unlike the original's cooperative poll-and-retry loop (built for
// non-blocking file descriptors), the peer's reads happen on their own
// goroutine that blocks naturally on the channel; the main select loop
// only ever does non-blocking work, which is the idiomatic Go shape for
// the same "timeouts are per-iteration, a pending read never blocks the
// loop" requirement.
func (l *Loop) exchGener(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	incoming := make(chan engine.InterMsg)
	readErr := make(chan error, 1)
	go func() {
		for {
			msg, err := l.readInterMsg(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case incoming <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(l.Timeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, errs.ErrEndOfComms) {
				return nil
			}
			return err
		case msg := <-incoming:
			l.Game.FromIO.Post(msg)
		case <-ticker.C:
			if out, ok := l.Game.ToIO.Take(); ok {
				if err := writeInterMsg(l.Channel, out); err != nil {
					return err
				}
			}
			if !l.Game.Running() {
				return nil
			}
		}
	}
}

// readInterMsg decodes one frame from the wire form in spec.md §6: u8
// kind; u8 modflags; payload (u16 key for keyinput, a zero-terminated
// string for menu/stringinput, nothing for noop).
func (l *Loop) readInterMsg(ctx context.Context) (engine.InterMsg, error) {
	kind, err := l.readU8(ctx)
	if err != nil {
		return engine.InterMsg{}, err
	}
	modflags, err := l.readU8(ctx)
	if err != nil {
		return engine.InterMsg{}, err
	}
	msg := engine.InterMsg{Kind: engine.InterMsgKind(kind), ModFlags: engine.InterMsgModFlags(modflags)}
	switch msg.Kind {
	case engine.MsgKeyInput:
		k, err := l.readU16(ctx)
		if err != nil {
			return engine.InterMsg{}, err
		}
		msg.KeyPayload = engine.Key(k)
	case engine.MsgMenu, engine.MsgStringInput:
		s, err := l.readStringZ(ctx)
		if err != nil {
			return engine.InterMsg{}, err
		}
		msg.Text = s
	}
	return msg, nil
}

func writeInterMsg(ch *netio.Channel, msg engine.InterMsg) error {
	if err := ch.WriteU8(byte(msg.Kind)); err != nil {
		return err
	}
	if err := ch.WriteU8(byte(msg.ModFlags)); err != nil {
		return err
	}
	switch msg.Kind {
	case engine.MsgKeyInput:
		if err := ch.WriteU16(uint16(msg.KeyPayload)); err != nil {
			return err
		}
	case engine.MsgMenu, engine.MsgStringInput:
		if err := ch.WriteString(msg.Text); err != nil {
			return err
		}
	}
	return ch.Flush()
}

// writeLine writes s terminated by '\n' and flushes immediately, used
// only by the introductory exchange's ASCII lines.
func (l *Loop) writeLine(s string) error {
	if _, err := l.Channel.Write([]byte(s + "\n")); err != nil {
		return err
	}
	return l.Channel.Flush()
}

// readLine, readU8, readU16, readU32 and readStringZ retry their
// underlying Channel read on an "incomplete" result until data arrives,
// end-of-comms is observed, or ctx is cancelled — the resumable-read
// discipline of spec.md §4.3 expressed as a retry loop instead of a
// pushed/popped exception id.
func (l *Loop) readLine(ctx context.Context) (string, error) {
	for {
		s, ok, err := l.Channel.Line(maxLineLen)
		if err != nil {
			return "", err
		}
		if ok {
			return s, nil
		}
		if done, err := l.wait(ctx); done {
			return "", err
		}
	}
}

func (l *Loop) readU8(ctx context.Context) (byte, error) {
	for {
		v, ok, err := l.Channel.ReadU8()
		if err != nil {
			return 0, err
		}
		if ok {
			return v, nil
		}
		if done, err := l.wait(ctx); done {
			return 0, err
		}
	}
}

func (l *Loop) readU16(ctx context.Context) (uint16, error) {
	for {
		v, ok, err := l.Channel.ReadU16()
		if err != nil {
			return 0, err
		}
		if ok {
			return v, nil
		}
		if done, err := l.wait(ctx); done {
			return 0, err
		}
	}
}

func (l *Loop) readU32(ctx context.Context) (uint32, error) {
	for {
		v, ok, err := l.Channel.ReadU32()
		if err != nil {
			return 0, err
		}
		if ok {
			return v, nil
		}
		if done, err := l.wait(ctx); done {
			return 0, err
		}
	}
}

func (l *Loop) readStringZ(ctx context.Context) (string, error) {
	var acc []byte
	for {
		s, ok, err := l.Channel.ReadStringZ(&acc)
		if err != nil {
			return "", err
		}
		if ok {
			return s, nil
		}
		if done, err := l.wait(ctx); done {
			return "", err
		}
	}
}

// wait blocks for one retry interval, reporting (true, err) if the loop
// should give up instead of retrying (end-of-comms or ctx cancellation).
func (l *Loop) wait(ctx context.Context) (bool, error) {
	if l.Channel.EndOfComms() {
		return true, errs.ErrEndOfComms
	}
	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-time.After(l.Timeout):
		return false, nil
	}
}
