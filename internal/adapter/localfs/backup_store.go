package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bornholm/quill/internal/core/model"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/kirsle/configdir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// BackupStore persists pending-change records as namespaced files under a
// local data directory, outside the primary store, so that a terminally
// failed save survives a restart.
type BackupStore struct {
	fs  afero.Fs
	dir string
}

func NewBackupStore(fs afero.Fs, dir string) *BackupStore {
	return &BackupStore{
		fs:  fs,
		dir: dir,
	}
}

// DefaultDir returns the per-user local data directory for backup records,
// creating it if needed.
func DefaultDir() (string, error) {
	dir := configdir.LocalConfig("quill")

	if err := configdir.MakePath(dir); err != nil {
		return "", errors.WithStack(err)
	}

	return dir, nil
}

// SavePending implements port.BackupStore.
func (s *BackupStore) SavePending(ctx context.Context, change model.PendingChange) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	data, err := json.Marshal(change)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := afero.WriteFile(s.fs, s.path(change.Identifier), data, 0o644); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// GetPending implements port.BackupStore.
func (s *BackupStore) GetPending(ctx context.Context, id model.NodeID) (*model.PendingChange, error) {
	data, err := afero.ReadFile(s.fs, s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		return nil, errors.WithStack(err)
	}

	var change model.PendingChange

	if err := json.Unmarshal(data, &change); err != nil {
		return nil, errors.WithStack(err)
	}

	return &change, nil
}

// ClearPending implements port.BackupStore.
func (s *BackupStore) ClearPending(ctx context.Context, id model.NodeID) error {
	if err := s.fs.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *BackupStore) path(id model.NodeID) string {
	return filepath.Join(s.dir, fmt.Sprintf("unsaved_doc_%s.json", id))
}

var _ port.BackupStore = &BackupStore{}
