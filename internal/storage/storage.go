package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyEngineConfig = "engine_config"
	keyFirstLaunch  = "first_launch"
)

// EngineConfig persists the UCI options a player has configured so a
// headless engine restart (new process, same "setoption" session from a
// GUI's point of view) comes back up the way it was left rather than
// reverting to compiled-in defaults.
type EngineConfig struct {
	HashMB           int       `json:"hash_mb"`
	UseNNUE          bool      `json:"use_nnue"`
	NNUEPath         string    `json:"nnue_path"`
	SyzygyPath       string    `json:"syzygy_path"`
	SyzygyProbeDepth int       `json:"syzygy_probe_depth"`
	LastUpdated      time.Time `json:"last_updated"`
}

// DefaultEngineConfig returns the configuration a fresh install starts
// with, matching the defaults `handleUCI` advertises over the protocol.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		HashMB:           64,
		UseNNUE:          false,
		SyzygyProbeDepth: 1,
	}
}

// Storage wraps BadgerDB for persistent storage of engine configuration.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database at the platform-specific data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return NewStorageAt(dbDir)
}

// NewStorageAt opens the database at an explicit directory, so callers
// (and tests) that don't want the platform-specific location can supply
// their own, mirroring tablebase.NewBadgerCachedProber's dir parameter.
func NewStorageAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	var firstLaunch bool = true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			firstLaunch = true
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SaveConfig persists the engine configuration.
func (s *Storage) SaveConfig(cfg *EngineConfig) error {
	cfg.LastUpdated = time.Now()

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyEngineConfig), data)
	})
}

// LoadConfig loads the engine configuration, returning defaults if none
// has been saved yet.
func (s *Storage) LoadConfig() (*EngineConfig, error) {
	cfg := DefaultEngineConfig()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyEngineConfig))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, cfg)
		})
	})

	return cfg, err
}
