package setup

import (
	"context"

	"github.com/bornholm/quill/internal/adapter/localfs"
	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var getBackupStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.BackupStore, error) {
	dir := conf.Storage.Backup.Dir
	if dir == "" {
		defaultDir, err := localfs.DefaultDir()
		if err != nil {
			return nil, errors.Wrap(err, "could not resolve local data directory")
		}

		dir = defaultDir
	}

	return localfs.NewBackupStore(afero.NewOsFs(), dir), nil
})
