// Package store provides crash-safe account-snapshot persistence using
// JSON files.
//
// Each run's account snapshot is stored as a separate file:
// run_<runID>.json. Writes use atomic file replacement (write to .tmp, then
// rename) to prevent corruption from partial writes or crashes mid-save.
// cmd/backtest calls SaveAccount once with a run's final snapshot;
// LoadAccount reads a saved snapshot back. The run loop itself persists
// nothing.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xtitan6/tradecore/internal/account"
)

// Store persists account snapshots to JSON files in a designated directory.
// All operations are mutex-protected to prevent concurrent file corruption.
type Store struct {
	dir string     // directory containing run_*.json files
	mu  sync.Mutex // serializes all file operations
}

// Open creates a store backed by the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// SaveAccount atomically persists the account snapshot for a run.
// It writes to a .tmp file first, then renames over the target to ensure
// the file is never left in a partial state (crash-safe).
func (s *Store) SaveAccount(runID string, acc account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}

	path := s.runPath(runID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	return os.Rename(tmp, path)
}

// LoadAccount restores the account snapshot for a run from disk.
// Returns nil, nil if no saved snapshot exists (fresh run).
func (s *Store) LoadAccount(runID string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read account: %w", err)
	}

	var acc account.Account
	if err := json.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &acc, nil
}

func (s *Store) runPath(runID string) string {
	return filepath.Join(s.dir, "run_"+runID+".json")
}
