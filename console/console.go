// Package console provides an operator CLI for a running GameInfo,
// adapted from server/console/console.go: a bufio.Scanner-backed reader
// when stdin is piped, c-bata/go-prompt's interactive line editor
// otherwise, with command completion and bounded history.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	prompt "github.com/c-bata/go-prompt"
	"github.com/mattn/go-runewidth"

	"github.com/pokgame/engine"
)

const (
	defaultPromptPrefix = "> "
	maxHistoryEntries    = 128
)

// Command is one operator command. Args excludes the command name
// itself; the return value is printed as the command's output.
type Command struct {
	Name    string
	Usage   string
	Run     func(game *engine.GameInfo, args []string) string
}

// Console reads commands from an io.Reader (defaulting to os.Stdin) and
// runs them against the bound GameInfo.
type Console struct {
	game    *engine.GameInfo
	log     *slog.Logger
	reader  io.Reader
	history []string
	start   time.Time

	commands map[string]Command
}

// New returns a Console bound to game. The console reads from os.Stdin
// and logs command output through log.
func New(game *engine.GameInfo, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	c := &Console{
		game:     game,
		log:      log,
		reader:   os.Stdin,
		start:    time.Now(),
		commands: make(map[string]Command),
	}
	c.registerBuiltins()
	return c
}

// WithReader sets a custom reader for the console input, enabling
// testing the console without relying on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Register installs or replaces a command.
func (c *Console) Register(cmd Command) {
	c.commands[strings.ToLower(cmd.Name)] = cmd
}

func (c *Console) registerBuiltins() {
	c.Register(Command{Name: "status", Usage: "status — show the current game context, run state and map", Run: cmdStatus})
	c.Register(Command{Name: "about", Usage: "about — print engine build information", Run: cmdAbout})
	c.Register(Command{Name: "tick", Usage: "tick — show the current tile-animation and scroll tick counters", Run: cmdTick})
	c.Register(Command{Name: "stop", Usage: "stop — clear the control flag, signaling the update loop to exit", Run: cmdStop})
}

// Run starts consuming commands from the console. It blocks until ctx is
// cancelled or the underlying reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := prompt.Input(defaultPromptPrefix, c.complete,
			prompt.OptionTitle("pokgame console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	input := strings.TrimSpace(strings.TrimPrefix(line, "/"))
	if input == "" {
		return
	}
	c.history = append(c.history, input)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	cmd, ok := c.commands[name]
	if !ok {
		c.log.Error("unknown command", "name", name)
		return
	}
	if out := cmd.Run(c.game, args); out != "" {
		c.log.Info(out)
	}
}

func (c *Console) complete(doc prompt.Document) []prompt.Suggest {
	word := strings.TrimPrefix(doc.GetWordBeforeCursor(), "/")
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	suggestions := make([]prompt.Suggest, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, prompt.Suggest{Text: name, Description: c.commands[name].Usage})
	}
	return prompt.FilterHasPrefix(suggestions, word, true)
}

func cmdStatus(game *engine.GameInfo, _ []string) string {
	rows := [][2]string{
		{"context", fmt.Sprint(game.Context)},
		{"running", fmt.Sprint(game.Running())},
		{"map", fmt.Sprint(game.MapRC.Map)},
	}
	var b strings.Builder
	width := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > width {
			width = w
		}
	}
	for _, r := range rows {
		pad := width - runewidth.StringWidth(r[0])
		fmt.Fprintf(&b, "%s%s : %s\n", r[0], strings.Repeat(" ", pad), r[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func cmdAbout(*engine.GameInfo, []string) string {
	return "pokgame engine console"
}

func cmdTick(game *engine.GameInfo, _ []string) string {
	return fmt.Sprintf("tile_ani_ticks=%d scroll_ticks=%d", game.MapRC.TileAniTicks, game.MapRC.ScrollTicks)
}

func cmdStop(game *engine.GameInfo, _ []string) string {
	game.Stop()
	return "stopping"
}
