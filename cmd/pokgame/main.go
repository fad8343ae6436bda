// Command pokgame is the engine's process entrypoint: it loads
// configuration, builds a GameInfo, wires a version peer (spawned
// subprocess or the built-in default scenario), and supervises the
// renderer, update and I/O loops until one of them exits or the process
// receives an interrupt, grounded on original_source/src/pokgame.c's
// main() and spec.md §5's three-loop lifecycle.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pokgame/engine"
	"github.com/pokgame/engine/catalog"
	"github.com/pokgame/engine/console"
	"github.com/pokgame/engine/ioloop"
	"github.com/pokgame/engine/netio"
	"github.com/pokgame/engine/renderer"
	"github.com/pokgame/engine/update"
	"github.com/pokgame/engine/version"
)

// noopKeyboard stands in for the platform input backend, which spec.md's
// PURPOSE & SCOPE places outside the engine: no key is ever reported
// down, so the update loop's input handling is a no-op until a real
// backend is wired in by the embedder.
type noopKeyboard struct{}

func (noopKeyboard) Refresh()             {}
func (noopKeyboard) Down(engine.Key) bool { return false }

func main() {
	configPath := flag.String("config", "pokgame.toml", "path to the engine configuration file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if err := run(*configPath, log); err != nil {
		log.Error("pokgame exited with an error", "err", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	uc, err := engine.LoadUserConfig(configPath)
	if err != nil {
		return err
	}
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	defer conf.Provider.Close()

	tiles, err := catalog.NewTileCatalog(1, 0)
	if err != nil {
		return err
	}
	game := engine.NewGameInfo(tiles)
	game.Provider = conf.Provider

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, proc, err := dialVersionPeer(ctx, conf)
	if err != nil {
		return err
	}
	if proc != nil {
		defer func() { _ = proc.Close(conf.ShutdownGrace) }()
	}

	group, gctx := errgroup.WithContext(ctx)

	ioLoop := ioloop.NewLoop(game, ch, conf.IOTimeout, log.With("loop", "io"))
	group.Go(func() error {
		return ioLoop.Run(gctx)
	})

	updateLoop := update.NewLoop(game, noopKeyboard{})
	group.Go(func() error {
		ticker := time.NewTicker(conf.UpdateTick)
		defer ticker.Stop()
		for game.Running() {
			select {
			case <-gctx.Done():
				game.Stop()
				return gctx.Err()
			case <-ticker.C:
				updateLoop.Step(conf.UpdateTick)
			}
		}
		return nil
	})

	renderLoop := renderer.NewLoop(game)
	group.Go(func() error {
		renderLoop.Run(gctx)
		return nil
	})

	if uc.Console.Enabled {
		cons := console.New(game, log.With("component", "console"))
		group.Go(func() error {
			cons.Run(gctx)
			return nil
		})
	}

	err = group.Wait()
	game.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// dialVersionPeer opens a netio.Channel to either a spawned version
// subprocess or the built-in default scenario, per conf.VersionPath,
// matching spec.md §1's "or a local 'default' scenario" alternative.
func dialVersionPeer(ctx context.Context, conf engine.Config) (*netio.Channel, *version.Process, error) {
	if conf.VersionPath == "default" {
		rw := version.Default(version.RunDefaultScenario)
		return netio.NewChannel(rw), nil, nil
	}
	ch, proc, err := version.Spawn(ctx, conf.VersionPath, conf.VersionArgs...)
	if err != nil {
		return nil, nil, err
	}
	return ch, proc, nil
}
