package signals

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the ledger as a JSON file. Writes go through a temp file
// and rename so a crash mid-write never leaves a truncated ledger behind.
type Store struct {
	path string
}

// NewStore builds a store rooted at the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger from disk. A missing or malformed file returns an
// empty ledger rather than an error: both mean the history must be rebuilt,
// and NeedsReplay reports true for the empty ledger.
func (s *Store) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLedger(), nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", s.path, err)
	}

	led := NewLedger()
	if err := json.Unmarshal(data, led); err != nil {
		return NewLedger(), nil
	}
	return led, nil
}

// Save writes the ledger atomically.
func (s *Store) Save(led *Ledger) error {
	data, err := json.MarshalIndent(led, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger %s: %w", s.path, err)
	}
	return nil
}
