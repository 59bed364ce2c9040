// Package store persists the single session snapshot across restarts.
//
// Persistence is a convenience, never a correctness dependency: callers
// treat every error from this package as "no snapshot" or "not saved" and
// carry on.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/prodchat/chatctl/internal/shared/types"
)

// Store is a single mutable snapshot slot.
type Store interface {
	// Load returns the stored snapshot, or nil when none exists.
	// Malformed stored data reads as nil with no error.
	Load() (*types.Snapshot, error)
	// Save overwrites the slot with the given snapshot.
	Save(snap *types.Snapshot) error
	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear() error
}

// FileStore keeps the snapshot as one JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a snapshot store at the given file path. Parent
// directories are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the snapshot file.
func (s *FileStore) Load() (*types.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap types.Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		// Corrupt data is indistinguishable from absence.
		return nil, nil
	}
	if snap.SessionID == "" {
		return nil, nil
	}
	if snap.Messages == nil {
		snap.Messages = []types.Message{}
	}
	return &snap, nil
}

// Save atomically replaces the snapshot file via tmp-file + rename.
func (s *FileStore) Save(snap *types.Snapshot) error {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
