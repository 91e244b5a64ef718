package setup

import (
	"context"

	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/editor/handle"
	"github.com/bornholm/quill/internal/editor/lifecycle"
	"github.com/pkg/errors"
)

var getHandleRegistry = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*handle.Registry, error) {
	return handle.NewRegistry(), nil
})

var getLifecycleManager = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*lifecycle.Manager, error) {
	registry, err := getHandleRegistry(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	nodeManager, err := getNodeManager(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create node manager from config")
	}

	backups, err := getBackupStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create backup store from config")
	}

	manager := lifecycle.NewManager(registry, nodeManager, backups,
		lifecycle.WithDebounceInterval(conf.Editor.DebounceInterval),
		lifecycle.WithMaxSaveRetries(conf.Editor.MaxSaveRetries),
		lifecycle.WithSaveBaseBackoff(conf.Editor.SaveBaseBackoff),
	)

	return manager, nil
})

// NewLifecycleManagerFromConfig wires the document lifecycle on top of the
// node manager and the pending change backup store. Repeated calls share
// the same manager: the lifecycle is single-document-focus.
func NewLifecycleManagerFromConfig(ctx context.Context, conf *config.Config) (*lifecycle.Manager, error) {
	manager, err := getLifecycleManager(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return manager, nil
}
