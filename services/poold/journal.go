package main

import (
	"fmt"
	"os"
	"path/filepath"

	"vusdpool/services/poold/config"
	"vusdpool/storage"
)

// openJournal opens the KV backend that holds the ledger snapshot.
func openJournal(cfg config.JournalConfig) (storage.Database, error) {
	switch cfg.Backend {
	case config.JournalMemory:
		return storage.NewMemDB(), nil
	case config.JournalLevelDB, config.JournalBolt:
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	if cfg.Backend == config.JournalBolt {
		db, err := storage.NewBoltDB(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open bolt journal: %w", err)
		}
		return db, nil
	}
	db, err := storage.NewLevelDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open leveldb journal: %w", err)
	}
	return db, nil
}
