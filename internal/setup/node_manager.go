package setup

import (
	"context"

	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/core/service"
	"github.com/pkg/errors"
)

var getNodeManager = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.NodeManager, error) {
	store, err := getNodeStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create store from config")
	}

	index, err := getIndexFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create index from config")
	}

	return service.NewNodeManager(store, index), nil
})
