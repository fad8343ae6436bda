package console_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/console"
)

func newTestConsole(t *testing.T, input string) (*console.Console, *engine.GameInfo, *bytes.Buffer) {
	t.Helper()
	tiles, err := catalog.NewTileCatalog(4, 1)
	if err != nil {
		t.Fatalf("NewTileCatalog: %v", err)
	}
	game := engine.NewGameInfo(tiles)

	var logBuf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logBuf, nil))

	c := console.New(game, log).WithReader(strings.NewReader(input))
	return c, game, &logBuf
}

func TestConsoleRunsStatusCommand(t *testing.T) {
	c, _, logBuf := newTestConsole(t, "status\n")
	c.Run(context.Background())

	if !strings.Contains(logBuf.String(), "context") {
		t.Fatalf("expected status output to mention context, got %q", logBuf.String())
	}
}

func TestConsoleStopCommandStopsTheGame(t *testing.T) {
	c, game, _ := newTestConsole(t, "stop\n")
	if !game.Running() {
		t.Fatal("expected game to start running")
	}

	c.Run(context.Background())

	if game.Running() {
		t.Fatal("expected stop command to halt the game")
	}
}

func TestConsoleUnknownCommandLogsError(t *testing.T) {
	c, _, logBuf := newTestConsole(t, "frobnicate\n")
	c.Run(context.Background())

	if !strings.Contains(logBuf.String(), "unknown command") {
		t.Fatalf("expected an unknown command error, got %q", logBuf.String())
	}
}

func TestConsoleRegisterOverridesBuiltin(t *testing.T) {
	c, game, logBuf := newTestConsole(t, "about\n")
	c.Register(console.Command{
		Name: "about",
		Run: func(*engine.GameInfo, []string) string {
			return "custom build info"
		},
	})
	_ = game

	c.Run(context.Background())

	if !strings.Contains(logBuf.String(), "custom build info") {
		t.Fatalf("expected overridden about command output, got %q", logBuf.String())
	}
}

func TestConsoleIgnoresBlankLines(t *testing.T) {
	c, _, logBuf := newTestConsole(t, "\n\n   \nabout\n")
	c.Run(context.Background())

	if !strings.Contains(logBuf.String(), "pokgame engine console") {
		t.Fatalf("expected about command to still run after blank lines, got %q", logBuf.String())
	}
}
