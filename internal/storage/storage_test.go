package storage

import (
	"os"
	"testing"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.HashMB != 64 {
		t.Errorf("expected 64MB default hash, got %d", cfg.HashMB)
	}
	if cfg.UseNNUE {
		t.Errorf("expected NNUE disabled by default")
	}
	if cfg.SyzygyProbeDepth != 1 {
		t.Errorf("expected default syzygy probe depth 1, got %d", cfg.SyzygyProbeDepth)
	}
}

func TestStorageSaveLoadConfigRoundTrips(t *testing.T) {
	store, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageAt: %v", err)
	}
	defer store.Close()

	cfg := &EngineConfig{
		HashMB:           256,
		UseNNUE:          true,
		NNUEPath:         "/tmp/chessplay.nnue",
		SyzygyPath:       "/tmp/syzygy",
		SyzygyProbeDepth: 4,
	}
	if err := store.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.HashMB != 256 || !loaded.UseNNUE || loaded.NNUEPath != "/tmp/chessplay.nnue" ||
		loaded.SyzygyPath != "/tmp/syzygy" || loaded.SyzygyProbeDepth != 4 {
		t.Errorf("loaded config %+v does not match saved %+v", loaded, cfg)
	}
	if loaded.LastUpdated.IsZero() {
		t.Errorf("expected LastUpdated to be stamped on save")
	}
}

func TestStorageLoadConfigDefaultsWhenUnset(t *testing.T) {
	store, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageAt: %v", err)
	}
	defer store.Close()

	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HashMB != DefaultEngineConfig().HashMB {
		t.Errorf("expected default hash size when nothing saved, got %d", cfg.HashMB)
	}
}

func TestStorageFirstLaunch(t *testing.T) {
	store, err := NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageAt: %v", err)
	}
	defer store.Close()

	first, err := store.IsFirstLaunch()
	if err != nil {
		t.Fatalf("IsFirstLaunch: %v", err)
	}
	if !first {
		t.Errorf("expected first launch to be true for a fresh database")
	}

	if err := store.MarkFirstLaunchComplete(); err != nil {
		t.Fatalf("MarkFirstLaunchComplete: %v", err)
	}

	first, err = store.IsFirstLaunch()
	if err != nil {
		t.Fatalf("IsFirstLaunch after mark: %v", err)
	}
	if first {
		t.Errorf("expected first launch to be false after marking complete")
	}
}

func TestDataPaths(t *testing.T) {
	// Test that GetDataDir returns a valid path
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
