package engine_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pokgame/engine"
)

func TestLoadUserConfigCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokgame.toml")

	uc, err := engine.LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	want := engine.DefaultUserConfig()
	if uc.Version.Path != want.Version.Path || uc.Timing.UpdateTickMS != want.Timing.UpdateTickMS ||
		uc.World.Provider != want.World.Provider || uc.Console.Enabled != want.Console.Enabled {
		t.Fatalf("LoadUserConfig on a missing file = %+v, want the defaults %+v", uc, want)
	}

	reloaded, err := engine.LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig (second read): %v", err)
	}
	if reloaded.Version.Path != uc.Version.Path || reloaded.Timing.UpdateTickMS != uc.Timing.UpdateTickMS {
		t.Fatalf("reloaded config = %+v, want %+v", reloaded, uc)
	}
}

func TestUserConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pokgame.toml")

	uc := engine.DefaultUserConfig()
	uc.Timing.UpdateTickMS = 33
	uc.World.Provider = "leveldb"
	uc.World.Folder = "saves"
	uc.Console.Enabled = false

	if err := uc.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := engine.LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	if loaded.Timing.UpdateTickMS != uc.Timing.UpdateTickMS || loaded.World.Provider != uc.World.Provider ||
		loaded.World.Folder != uc.World.Folder || loaded.Console.Enabled != uc.Console.Enabled {
		t.Fatalf("loaded = %+v, want %+v", loaded, uc)
	}
}

func TestConfigResolvesFlatFileProvider(t *testing.T) {
	uc := engine.DefaultUserConfig()
	uc.World.Folder = filepath.Join(t.TempDir(), "world")

	conf, err := uc.Config(nil)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	defer conf.Provider.Close()

	if conf.VersionPath != "default" {
		t.Fatalf("VersionPath = %q, want default", conf.VersionPath)
	}
	if conf.UpdateTick != 20*time.Millisecond {
		t.Fatalf("UpdateTick = %v, want 20ms", conf.UpdateTick)
	}
	if conf.Provider == nil {
		t.Fatal("expected a non-nil flatfile provider")
	}
}

func TestConfigResolvesLevelDBProvider(t *testing.T) {
	uc := engine.DefaultUserConfig()
	uc.World.Provider = "leveldb"
	uc.World.Folder = filepath.Join(t.TempDir(), "world")

	conf, err := uc.Config(nil)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	defer conf.Provider.Close()

	if conf.Provider == nil {
		t.Fatal("expected a non-nil leveldb provider")
	}
}

func TestConfigRejectsUnknownProvider(t *testing.T) {
	uc := engine.DefaultUserConfig()
	uc.World.Provider = "s3"

	if _, err := uc.Config(nil); err == nil {
		t.Fatal("expected an error for an unrecognized provider name")
	}
}

func TestConfigZeroTimingFallsBackToDefaults(t *testing.T) {
	uc := engine.DefaultUserConfig()
	uc.World.Folder = filepath.Join(t.TempDir(), "world")
	uc.Timing.UpdateTickMS = 0
	uc.Timing.IOTimeoutMS = 0

	conf, err := uc.Config(nil)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	defer conf.Provider.Close()

	if conf.UpdateTick != 20*time.Millisecond {
		t.Fatalf("UpdateTick = %v, want the 20ms fallback", conf.UpdateTick)
	}
	if conf.IOTimeout != 50*time.Millisecond {
		t.Fatalf("IOTimeout = %v, want the 50ms fallback", conf.IOTimeout)
	}
}
