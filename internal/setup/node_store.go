package setup

import (
	"context"

	gormAdapter "github.com/bornholm/quill/internal/adapter/gorm"
	"github.com/bornholm/quill/internal/config"
	"github.com/bornholm/quill/internal/core/port"
	"github.com/pkg/errors"
)

var getNodeStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.NodeStore, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create database from config")
	}

	return gormAdapter.NewNodeStore(db), nil
})
