package version

import (
	"io"

	"github.com/pokgame/engine/netio"
)

// RunDefaultScenario plays the peer side of the introductory and
// intermediate exchanges against peer, then idles in the general
// exchange until the engine side closes its end, matching
// original_source's bundled "no version peer" demo mode: a minimal,
// always-available session that lets the engine run without spawning an
// external process, advertising no graphics/tiles/sprites overrides (the
// engine keeps whatever catalogs NewGameInfo was built with).
func RunDefaultScenario(peer io.ReadWriter) {
	ch := netio.NewChannel(peer)

	greet, ok, err := readLineBlocking(ch)
	if err != nil || !ok || greet != greetingSequence {
		return
	}
	if _, err := ch.Write([]byte(greetingSequence + "\n")); err != nil {
		return
	}
	if _, err := ch.Write([]byte(binaryModeSequence + "\n")); err != nil {
		return
	}
	if _, err := ch.Write([]byte(defaultLabel + "\n")); err != nil {
		return
	}
	if err := ch.Flush(); err != nil {
		return
	}

	// No graphics/tiles/sprites overrides: bitmask 0.
	if err := ch.WriteU8(0); err != nil {
		return
	}
	if err := ch.Flush(); err != nil {
		return
	}

	// General exchange: drain whatever the engine sends and never answer,
	// until the engine closes its write end (EndOfComms).
	for {
		if _, err := ch.Read(1); err != nil {
			return
		}
		if ch.EndOfComms() {
			return
		}
	}
}

const (
	greetingSequence    = "POKGAME-GREETING"
	binaryModeSequence  = "BINARY"
	defaultLabel        = "default"
)

// readLineBlocking reads one '\n'-terminated line, blocking by retrying
// against the channel's read buffer until a full line is available or the
// stream ends.
func readLineBlocking(ch *netio.Channel) (string, bool, error) {
	for {
		s, ok, err := ch.Line(256)
		if err != nil {
			return "", false, err
		}
		if ok {
			return s, true, nil
		}
		if ch.EndOfComms() {
			return "", false, io.EOF
		}
	}
}
