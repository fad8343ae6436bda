package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/pokgame/engine/world/provider"
)

// UserConfig is the serialisable TOML form of a run's configuration,
// mirroring server.UserConfig/DefaultConfig's two-struct split: one
// struct round-trips through a file, the other (Config) carries resolved,
// live values (an open provider.Provider, a *slog.Logger).
type UserConfig struct {
	Version struct {
		// Path is the executable to spawn as the version peer. The
		// special value "default" (the zero value) selects the built-in
		// scenario from engine/version.Default instead of a subprocess.
		Path string
		Args []string
		// ShutdownGraceMS bounds how long Process.Close waits for the
		// peer to exit on its own before it is killed.
		ShutdownGraceMS uint32
	}
	Timing struct {
		// UpdateTickMS is the update loop's target sleep-per-tick.
		UpdateTickMS uint32
		// IOTimeoutMS is the I/O loop's per-iteration timeout (spec.md
		// §4.12).
		IOTimeoutMS uint32
	}
	World struct {
		// Provider selects the map chunk persistence backend: "flatfile"
		// (spec.md §6's on-disk DFS format, for static maps) or
		// "leveldb" (for MapFlagDynamic maps that fetch chunks
		// incrementally).
		Provider string
		Folder   string
	}
	Console struct {
		Enabled bool
	}
}

// DefaultUserConfig returns a UserConfig with every field set to the
// value a fresh install should start with, matching the shape (if not
// the content) of server.DefaultConfig.
func DefaultUserConfig() UserConfig {
	var uc UserConfig
	uc.Version.Path = "default"
	uc.Version.ShutdownGraceMS = 3000
	uc.Timing.UpdateTickMS = 20
	uc.Timing.IOTimeoutMS = 50
	uc.World.Provider = "flatfile"
	uc.World.Folder = "world"
	uc.Console.Enabled = true
	return uc
}

// LoadUserConfig reads and decodes a TOML file at path, creating it with
// DefaultUserConfig's values if it does not yet exist, matching
// Whitelist.LoadWhitelist's create-on-first-run behavior.
func LoadUserConfig(path string) (UserConfig, error) {
	uc := DefaultUserConfig()
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := uc.Save(path); werr != nil {
				return uc, werr
			}
			return uc, nil
		}
		return uc, fmt.Errorf("read config: %w", err)
	}
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &uc); err != nil {
			return uc, fmt.Errorf("decode config: %w", err)
		}
	}
	return uc, nil
}

// Save writes uc to path as TOML, creating its parent directory if
// necessary.
func (uc UserConfig) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(uc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Config is the live, resolved counterpart to UserConfig.
type Config struct {
	Log *slog.Logger

	VersionPath     string
	VersionArgs     []string
	ShutdownGrace   time.Duration
	UpdateTick      time.Duration
	IOTimeout       time.Duration
	Provider        provider.Provider
}

// Config resolves uc into a live Config: it opens the configured map
// provider and fills in defaults for anything the caller left zero,
// matching UserConfig.Config's resolve-and-open-providers role in the
// teacher.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.Default()
	}
	conf := Config{
		Log:           log,
		VersionPath:   strings.TrimSpace(uc.Version.Path),
		VersionArgs:   uc.Version.Args,
		ShutdownGrace: durationOrDefault(uc.Version.ShutdownGraceMS, 3000),
		UpdateTick:    durationOrDefault(uc.Timing.UpdateTickMS, 20),
		IOTimeout:     durationOrDefault(uc.Timing.IOTimeoutMS, 50),
	}
	if conf.VersionPath == "" {
		conf.VersionPath = "default"
	}

	switch strings.ToLower(strings.TrimSpace(uc.World.Provider)) {
	case "leveldb":
		p, err := provider.OpenLevelDB(uc.World.Folder)
		if err != nil {
			return conf, fmt.Errorf("open leveldb provider: %w", err)
		}
		conf.Provider = p
	case "", "flatfile":
		conf.Provider = provider.NewFlatFile(uc.World.Folder)
	default:
		return conf, fmt.Errorf("unknown world provider %q", uc.World.Provider)
	}

	return conf, nil
}

func durationOrDefault(ms uint32, fallback uint32) time.Duration {
	if ms == 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
